// internal/domain/audio/message.go
package audio

import (
	"context"
	"strings"

	"planetary_hour_notifier/internal/domain/planetary"
)

// Message types understood by foreground contexts.
const (
	MessageTypePlaySound        = "play-sound"
	MessageTypePermissionDenied = "permission-denied"
)

// Message is sent from the background worker to foreground contexts.
// Delivery is unordered, at-most-once and unacknowledged.
type Message struct {
	Type   string `json:"type"`
	Label  string `json:"label,omitempty"`
	Planet string `json:"planet,omitempty"` // same as Label, for older clients
	Asset  string `json:"asset,omitempty"`
	Count  int    `json:"count,omitempty"`
}

// NewPlaySound builds the play request for label.
func NewPlaySound(label planetary.Label, assetURL string) Message {
	return Message{
		Type:   MessageTypePlaySound,
		Label:  label.String(),
		Planet: label.String(),
		Asset:  assetURL,
	}
}

// ConnectedContext is a reachable foreground peer.
type ConnectedContext interface {
	ID() string
	// Post queues msg without blocking and reports whether it was accepted.
	Post(msg Message) bool
}

// ContextRegistry lists the foreground contexts reachable right now.
// Callers must query it on every use; membership changes at any time.
type ContextRegistry interface {
	Contexts() []ConnectedContext
}

// AssetResolver maps a label to the URL of its audio asset.
type AssetResolver interface {
	AssetURL(label planetary.Label) string
}

// PathResolver resolves labels to "<base>/<Label>.wav".
type PathResolver struct {
	BaseURL string
}

func (r PathResolver) AssetURL(label planetary.Label) string {
	return strings.TrimRight(r.BaseURL, "/") + "/" + label.String() + ".wav"
}

// Fetcher loads asset bytes.
type Fetcher interface {
	Fetch(ctx context.Context, assetURL string) ([]byte, error)
}

// Clip is a decoded audio asset ready for playback.
type Clip struct {
	Raw        []byte
	SampleRate int
	Channels   int
	BitDepth   int
	Frames     int
}

// Decoder turns raw asset bytes into a Clip.
type Decoder interface {
	Decode(data []byte) (*Clip, error)
}

// Player plays a clip inside the background process.
type Player interface {
	// Available reports whether this host can play audio without a foreground context.
	Available() bool
	Play(ctx context.Context, clip *Clip) error
}
