// internal/app/alert_service.go
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"planetary_hour_notifier/internal/domain/alert"
	"planetary_hour_notifier/internal/domain/planetary"
	"planetary_hour_notifier/internal/infra/metrics"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// TickProcessor handles one wake-up. It is what every trigger source ends up calling.
type TickProcessor interface {
	ProcessTick(ctx context.Context, now time.Time) (*TickOutcome, error)
}

// TickOutcome summarizes one processed wake-up.
type TickOutcome struct {
	ID       string
	Reading  planetary.Reading
	Due      bool
	AlertErr error
	Audio    PlayResult
}

// Status is a point-in-time view for status endpoints and bot commands.
type Status struct {
	Label             planetary.Label
	Slot              planetary.HourSlot
	LastDelivered     planetary.HourSlot
	PermissionWarning bool
	DeniedCount       int
}

// HourAlertService resolves the current hour on each tick and, on a slot
// transition, raises the alert and the audio cue.
type HourAlertService struct {
	clock       planetary.HourClock
	state       alert.StateRepository
	sink        NotificationSink
	audio       AudioPlayer
	permissions *PermissionTracker
	logger      *logrus.Entry
}

var _ TickProcessor = (*HourAlertService)(nil)

func NewHourAlertService(
	clock planetary.HourClock,
	state alert.StateRepository,
	sink NotificationSink,
	audioPlayer AudioPlayer,
	permissions *PermissionTracker,
	logger *logrus.Entry,
) *HourAlertService {
	return &HourAlertService{
		clock:       clock,
		state:       state,
		sink:        sink,
		audio:       audioPlayer,
		permissions: permissions,
		logger:      logger,
	}
}

// ProcessTick runs HourClock, the atomic due-check, and, when due, both
// deliveries. Delivery failures are logged and reported in the outcome but
// never returned as errors; only clock and state failures are.
func (s *HourAlertService) ProcessTick(ctx context.Context, now time.Time) (*TickOutcome, error) {
	out := &TickOutcome{ID: uuid.NewString()}
	logCtx := s.logger.WithField("tick_id", out.ID)

	reading, err := s.clock.LabelFor(now)
	if err != nil {
		metrics.RecordTick("error")
		return out, fmt.Errorf("failed to resolve planetary hour: %w", err)
	}
	out.Reading = reading
	logCtx = logCtx.WithFields(logrus.Fields{"label": reading.Label.String(), "slot": reading.Slot.String()})

	due, err := s.state.Claim(ctx, reading.Slot, reading.Label)
	if err != nil {
		metrics.RecordTick("error")
		return out, fmt.Errorf("failed to claim slot %s: %w", reading.Slot, err)
	}
	if !due {
		logCtx.Debug("Slot already delivered, nothing to do")
		metrics.RecordTick("skipped")
		return out, nil
	}
	out.Due = true
	metrics.RecordTick("due")
	logCtx.Info("New planetary hour, delivering alert and audio cue")

	// The two deliveries are independent: neither result gates the other.
	out.Audio = s.audio.Play(ctx, reading.Label)
	if out.Audio.Err != nil {
		logCtx.WithError(out.Audio.Err).Warn("Audio cue not delivered")
	}

	out.AlertErr = s.sink.Show(ctx, reading.Label, reading.Slot)
	s.trackAlertResult(logCtx, out.AlertErr)

	return out, nil
}

func (s *HourAlertService) trackAlertResult(logCtx *logrus.Entry, err error) {
	switch {
	case err == nil:
		metrics.RecordAlert("shown")
		s.permissions.RecordAllowed()
		logCtx.Info("Alert shown")
	case errors.Is(err, alert.ErrPermissionDenied):
		metrics.RecordAlert("permission_denied")
		if s.permissions.RecordDenied() {
			logCtx.WithError(err).Error("Alert permission denied repeatedly; the user will be asked on next foreground contact")
		} else {
			logCtx.WithError(err).Warn("Alert permission denied")
		}
	default:
		metrics.RecordAlert("failed")
		logCtx.WithError(err).Warn("Alert surface failed")
	}
}

// Status reports the hour at now alongside the delivery state.
func (s *HourAlertService) Status(ctx context.Context, now time.Time) (*Status, error) {
	reading, err := s.clock.LabelFor(now)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve planetary hour: %w", err)
	}
	last, err := s.state.Last(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read alert state: %w", err)
	}
	warn, denied := s.permissions.Warning()
	return &Status{
		Label:             reading.Label,
		Slot:              reading.Slot,
		LastDelivered:     last,
		PermissionWarning: warn,
		DeniedCount:       denied,
	}, nil
}

// PermissionWarning exposes the tracker for foreground contact hooks.
func (s *HourAlertService) PermissionWarning() (bool, int) {
	return s.permissions.Warning()
}
