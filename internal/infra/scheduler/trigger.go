package scheduler

import (
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Trigger is a recurring wake-up source. Registering a tag that is already
// registered replaces the previous registration.
type Trigger interface {
	Register(tag string, fire func()) error
	Deregister(tag string)
	Stop()
}

// CronTrigger fires on a cron schedule ("@every 60s", "*/5 * * * *", ...).
type CronTrigger struct {
	mu      sync.Mutex
	engine  *cron.Cron
	spec    string
	entries map[string]cron.EntryID
}

// NewCronTrigger validates spec and builds a trigger whose jobs recover from panics.
func NewCronTrigger(spec string, loc *time.Location, logger *logrus.Entry) (*CronTrigger, error) {
	if _, err := cron.ParseStandard(spec); err != nil {
		return nil, fmt.Errorf("invalid wake-up spec %q: %w", spec, err)
	}
	if loc == nil {
		loc = time.Local
	}
	cronLogger := cron.PrintfLogger(logger)
	return &CronTrigger{
		engine: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(cronLogger),
			cron.WithChain(cron.Recover(cronLogger)),
		),
		spec:    spec,
		entries: make(map[string]cron.EntryID),
	}, nil
}

func (t *CronTrigger) Register(tag string, fire func()) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if id, ok := t.entries[tag]; ok {
		t.engine.Remove(id)
		delete(t.entries, tag)
	}
	id, err := t.engine.AddFunc(t.spec, fire)
	if err != nil {
		return fmt.Errorf("could not register wake-up %q: %w", tag, err)
	}
	t.entries[tag] = id
	t.engine.Start() // no-op when already running
	return nil
}

func (t *CronTrigger) Deregister(tag string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if id, ok := t.entries[tag]; ok {
		t.engine.Remove(id)
		delete(t.entries, tag)
	}
}

// Registered returns the number of live registrations.
func (t *CronTrigger) Registered() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.engine.Entries())
}

// Stop halts the engine and waits for running jobs.
func (t *CronTrigger) Stop() {
	ctx := t.engine.Stop() // Stops the scheduler from adding new jobs, waits for running jobs.
	<-ctx.Done()
}

// ManualTrigger fires only when told to. Tests and host callbacks use it to
// inject ticks.
type ManualTrigger struct {
	mu    sync.Mutex
	fires map[string]func()
}

func NewManualTrigger() *ManualTrigger {
	return &ManualTrigger{fires: make(map[string]func())}
}

func (t *ManualTrigger) Register(tag string, fire func()) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.fires[tag] = fire
	return nil
}

func (t *ManualTrigger) Deregister(tag string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.fires, tag)
}

// Fire runs the registration for tag and reports whether one existed.
func (t *ManualTrigger) Fire(tag string) bool {
	t.mu.Lock()
	fire, ok := t.fires[tag]
	t.mu.Unlock()
	if ok {
		fire()
	}
	return ok
}

// Registered returns the number of live registrations.
func (t *ManualTrigger) Registered() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.fires)
}

func (t *ManualTrigger) Stop() {}

var (
	_ Trigger = (*CronTrigger)(nil)
	_ Trigger = (*ManualTrigger)(nil)
)
