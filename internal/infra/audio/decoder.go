package audio

import (
	"bytes"
	"fmt"

	"planetary_hour_notifier/internal/domain/alert"
	domainAudio "planetary_hour_notifier/internal/domain/audio"

	"github.com/go-audio/wav"
)

// WavDecoder validates and decodes RIFF/WAVE assets.
type WavDecoder struct{}

// Decode reads the whole PCM stream so a truncated or corrupt file is caught
// before anything is handed to the player. Failures wrap alert.ErrDecodeError.
func (WavDecoder) Decode(data []byte) (*domainAudio.Clip, error) {
	dec := wav.NewDecoder(bytes.NewReader(data))
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("%w: not a valid wav file", alert.ErrDecodeError)
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", alert.ErrDecodeError, err)
	}
	if buf == nil || buf.Format == nil || buf.Format.NumChannels == 0 {
		return nil, fmt.Errorf("%w: missing format chunk", alert.ErrDecodeError)
	}
	return &domainAudio.Clip{
		Raw:        data,
		SampleRate: int(dec.SampleRate),
		Channels:   buf.Format.NumChannels,
		BitDepth:   int(dec.BitDepth),
		Frames:     buf.NumFrames(),
	}, nil
}
