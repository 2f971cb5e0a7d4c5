package app

import (
	"context"
	"errors"
	"sync"

	"planetary_hour_notifier/internal/domain/alert"
	"planetary_hour_notifier/internal/domain/audio"
	"planetary_hour_notifier/internal/domain/planetary"
	"planetary_hour_notifier/internal/infra/logger"
)

var testLogger = logger.Discard()

type showCall struct {
	Label planetary.Label
	Slot  planetary.HourSlot
}

type fakeSink struct {
	mu    sync.Mutex
	calls []showCall
	err   error
}

func (f *fakeSink) Show(_ context.Context, label planetary.Label, slot planetary.HourSlot) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, showCall{label, slot})
	return f.err
}

func (f *fakeSink) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeAudio struct {
	mu     sync.Mutex
	labels []planetary.Label
	result PlayResult
}

func (f *fakeAudio) Play(_ context.Context, label planetary.Label) PlayResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.labels = append(f.labels, label)
	return f.result
}

func (f *fakeAudio) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.labels)
}

type fakeSurface struct {
	keys     []string
	payloads []alert.Payload
	err      error
}

func (f *fakeSurface) UpsertAlert(_ context.Context, key string, payload alert.Payload) error {
	f.keys = append(f.keys, key)
	f.payloads = append(f.payloads, payload)
	return f.err
}

type fakeContext struct {
	id       string
	full     bool
	mu       sync.Mutex
	messages []audio.Message
}

func (c *fakeContext) ID() string { return c.id }

func (c *fakeContext) Post(msg audio.Message) bool {
	if c.full {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, msg)
	return true
}

type fakeRegistry struct {
	contexts []audio.ConnectedContext
}

func (r *fakeRegistry) Contexts() []audio.ConnectedContext { return r.contexts }

type fakeFetcher struct {
	mu    sync.Mutex
	urls  []string
	data  []byte
	err   error
	block chan struct{}
}

func (f *fakeFetcher) Fetch(ctx context.Context, assetURL string) ([]byte, error) {
	f.mu.Lock()
	f.urls = append(f.urls, assetURL)
	f.mu.Unlock()
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.data, f.err
}

func (f *fakeFetcher) fetched() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.urls...)
}

type fakeDecoder struct {
	err error
}

func (d fakeDecoder) Decode(data []byte) (*audio.Clip, error) {
	if d.err != nil {
		return nil, d.err
	}
	return &audio.Clip{Raw: data}, nil
}

type fakePlayer struct {
	available bool
	mu        sync.Mutex
	played    int
	err       error
}

func (p *fakePlayer) Available() bool { return p.available }

func (p *fakePlayer) Play(_ context.Context, _ *audio.Clip) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.played++
	return p.err
}

func (p *fakePlayer) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.played
}

type failingState struct{}

func (failingState) IsDue(context.Context, planetary.HourSlot) (bool, error) {
	return false, errors.New("state unavailable")
}
func (failingState) Record(context.Context, planetary.HourSlot, planetary.Label) error {
	return errors.New("state unavailable")
}
func (failingState) Claim(context.Context, planetary.HourSlot, planetary.Label) (bool, error) {
	return false, errors.New("state unavailable")
}
func (failingState) Last(context.Context) (planetary.HourSlot, error) {
	return planetary.HourSlot{}, errors.New("state unavailable")
}
func (failingState) Reset(context.Context) error { return nil }
