package scheduler

import (
	"context"
	"sync"
	"time"

	"planetary_hour_notifier/internal/app" // For TickProcessor interface

	"github.com/sirupsen/logrus"
)

// State is the scheduler lifecycle position.
type State string

const (
	StateIdle      State = "idle"
	StateArmed     State = "armed"
	StateTicking   State = "ticking"
	StateSuspended State = "suspended"
)

const defaultTickTimeout = 1 * time.Minute

type HourScheduler struct {
	mu       sync.Mutex
	state    State
	inflight int

	trigger     Trigger
	processor   app.TickProcessor
	tag         string
	logger      *logrus.Entry
	now         func() time.Time
	tickTimeout time.Duration
}

func NewHourScheduler(
	trigger Trigger,
	processor app.TickProcessor,
	tag string, // e.g., "planetary-hour-check"
	logger *logrus.Entry,
) *HourScheduler {
	return &HourScheduler{
		state:       StateIdle,
		trigger:     trigger,
		processor:   processor,
		tag:         tag,
		logger:      logger,
		now:         time.Now,
		tickTimeout: defaultTickTimeout,
	}
}

// Arm registers the recurring wake-up. It is called once activation
// completes and may be called again after a host restart; the trigger
// replaces any earlier registration under the same tag.
func (s *HourScheduler) Arm() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateArmed || s.state == StateTicking {
		s.logger.WithField("tag", s.tag).Info("Scheduler already armed, replacing wake-up registration")
	}
	if err := s.trigger.Register(s.tag, s.fire); err != nil {
		s.logger.WithError(err).Error("Could not register wake-up")
		return err
	}
	if s.inflight > 0 {
		s.state = StateTicking
	} else {
		s.state = StateArmed
	}
	s.logger.WithField("tag", s.tag).Info("Scheduler armed")
	return nil
}

// Suspend deregisters the wake-up. Ticks already running finish normally.
func (s *HourScheduler) Suspend() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.trigger.Deregister(s.tag)
	s.state = StateSuspended
	s.logger.WithField("tag", s.tag).Info("Scheduler suspended")
}

// Stop suspends the scheduler and stops the trigger source.
func (s *HourScheduler) Stop() {
	s.logger.Info("Stopping scheduler...")
	s.Suspend()
	s.trigger.Stop()
	s.logger.Info("Scheduler gracefully stopped.")
}

// State returns the current lifecycle state.
func (s *HourScheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *HourScheduler) fire() {
	s.Tick(s.now())
}

// Tick processes one wake-up at now. Every trigger source ends here, so tick
// handling does not depend on which one fired. Ticks outside Armed/Ticking
// are ignored. Overlapping ticks are allowed; the processor's atomic slot
// claim keeps them from double-delivering.
func (s *HourScheduler) Tick(now time.Time) (*app.TickOutcome, bool) {
	s.mu.Lock()
	if s.state != StateArmed && s.state != StateTicking {
		state := s.state
		s.mu.Unlock()
		s.logger.WithField("state", state).Debug("Wake-up ignored, scheduler not armed")
		return nil, false
	}
	s.inflight++
	s.state = StateTicking
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.inflight--
		if s.inflight == 0 && s.state == StateTicking {
			s.state = StateArmed
		}
		s.mu.Unlock()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), s.tickTimeout)
	defer cancel()

	out, err := s.processor.ProcessTick(ctx, now)
	if err != nil {
		s.logger.WithError(err).Error("Error during wake-up processing")
	}
	return out, true
}
