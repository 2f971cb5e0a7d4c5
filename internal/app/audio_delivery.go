// internal/app/audio_delivery.go
package app

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"planetary_hour_notifier/internal/domain/alert"
	"planetary_hour_notifier/internal/domain/audio"
	"planetary_hour_notifier/internal/domain/planetary"
	"planetary_hour_notifier/internal/infra/metrics"

	"github.com/sirupsen/logrus"
)

// Audio delivery paths.
const (
	PathForeground = "foreground"
	PathBackground = "background"
	PathNone       = "none"
)

const defaultPlaybackTimeout = 2 * time.Minute

// PlayResult describes what Play did. Background playback continues after
// Play returns; its outcome arrives on Done.
type PlayResult struct {
	Path    string
	Posted  int  // foreground contexts that accepted the request
	Dropped int  // foreground contexts whose buffer was full
	Skipped bool // a background playback was already running
	Err     error
	Done    <-chan error
}

// AudioPlayer plays the cue for a label.
type AudioPlayer interface {
	Play(ctx context.Context, label planetary.Label) PlayResult
}

// AudioDelivery prefers foreground contexts and falls back to fetching,
// decoding and playing the asset in the background process. At most one
// background playback runs at a time.
type AudioDelivery struct {
	registry audio.ContextRegistry
	resolver audio.AssetResolver
	fetcher  audio.Fetcher
	decoder  audio.Decoder
	player   audio.Player
	logger   *logrus.Entry

	PlaybackTimeout time.Duration

	playing atomic.Bool
	wg      sync.WaitGroup
}

func NewAudioDelivery(
	registry audio.ContextRegistry,
	resolver audio.AssetResolver,
	fetcher audio.Fetcher,
	decoder audio.Decoder,
	player audio.Player,
	logger *logrus.Entry,
) *AudioDelivery {
	return &AudioDelivery{
		registry:        registry,
		resolver:        resolver,
		fetcher:         fetcher,
		decoder:         decoder,
		player:          player,
		logger:          logger,
		PlaybackTimeout: defaultPlaybackTimeout,
	}
}

func (d *AudioDelivery) Play(ctx context.Context, label planetary.Label) PlayResult {
	assetURL := d.resolver.AssetURL(label)
	logCtx := d.logger.WithFields(logrus.Fields{"label": label.String(), "asset": assetURL})

	var contexts []audio.ConnectedContext
	if d.registry != nil {
		contexts = d.registry.Contexts()
	}
	if len(contexts) > 0 {
		res := PlayResult{Path: PathForeground}
		msg := audio.NewPlaySound(label, assetURL)
		for _, c := range contexts {
			if c.Post(msg) {
				res.Posted++
			} else {
				res.Dropped++
				logCtx.WithField("context_id", c.ID()).Warn("Foreground context buffer full, play request dropped")
			}
		}
		logCtx.WithFields(logrus.Fields{"posted": res.Posted, "dropped": res.Dropped}).Info("Play request posted to foreground contexts")
		metrics.RecordAudio(PathForeground, "posted")
		return res
	}

	if d.player == nil || !d.player.Available() {
		logCtx.Warn("No foreground context and no background player; skipping audio")
		metrics.RecordAudio(PathNone, "unreachable")
		return PlayResult{Path: PathNone, Err: alert.ErrDeliveryUnreachable}
	}

	if !d.playing.CompareAndSwap(false, true) {
		logCtx.Info("Background playback still running; skipping this cue")
		metrics.RecordAudio(PathBackground, "skipped")
		return PlayResult{Path: PathBackground, Skipped: true}
	}

	done := make(chan error, 1)
	d.wg.Add(1)
	// Detached from the tick: playback may outlive it and is never preempted.
	playCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.PlaybackTimeout)
	go func() {
		defer d.wg.Done()
		defer cancel()
		defer d.playing.Store(false)

		err := d.playBackground(playCtx, assetURL)
		if err != nil {
			logCtx.WithError(err).Warn("Background audio playback failed")
			metrics.RecordAudio(PathBackground, "failed")
		} else {
			logCtx.Info("Background audio playback finished")
			metrics.RecordAudio(PathBackground, "ok")
		}
		done <- err
		close(done)
	}()

	return PlayResult{Path: PathBackground, Done: done}
}

func (d *AudioDelivery) playBackground(ctx context.Context, assetURL string) error {
	data, err := d.fetcher.Fetch(ctx, assetURL)
	if err != nil {
		return err
	}
	clip, err := d.decoder.Decode(data)
	if err != nil {
		return err
	}
	if err := d.player.Play(ctx, clip); err != nil {
		return fmt.Errorf("%w: %v", alert.ErrDeliveryUnreachable, err)
	}
	return nil
}

// Wait blocks until any running background playback has finished.
func (d *AudioDelivery) Wait() {
	d.wg.Wait()
}
