// internal/domain/planetary/clock.go
package planetary

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidTime is returned for zero timestamps or timestamps before the clock epoch.
var ErrInvalidTime = errors.New("invalid timestamp for hour clock")

// Reading is the result of resolving a timestamp on an HourClock.
type Reading struct {
	Label Label
	Slot  HourSlot
	Start time.Time // beginning of the period containing the timestamp
}

// HourClock maps a timestamp to the current planetary hour.
// Implementations must be pure and deterministic.
type HourClock interface {
	LabelFor(t time.Time) (Reading, error)
}

// Policy names accepted by NewHourClock.
const (
	PolicyElapsed = "elapsed"
	PolicyDayHour = "day-hour"
)

// NewHourClock builds the clock for the named boundary policy.
func NewHourClock(policy string, period time.Duration, loc *time.Location) (HourClock, error) {
	if period <= 0 {
		return nil, fmt.Errorf("hour period must be positive, got %s", period)
	}
	if loc == nil {
		loc = time.UTC
	}
	switch policy {
	case "", PolicyElapsed:
		return &ElapsedClock{Period: period, Location: loc, Epoch: time.Unix(0, 0).In(loc)}, nil
	case PolicyDayHour:
		return &DayHourClock{Period: period, Location: loc}, nil
	default:
		return nil, fmt.Errorf("unknown hour policy %q", policy)
	}
}

// ElapsedClock counts whole periods since Epoch and takes that count mod 7.
// Epoch's own period is Sun. The cycle never resets, so LabelFor(t) equals
// LabelFor(t + 7*Period) for every valid t.
type ElapsedClock struct {
	Period   time.Duration
	Location *time.Location
	Epoch    time.Time
}

func (c *ElapsedClock) LabelFor(t time.Time) (Reading, error) {
	if t.IsZero() || t.Before(c.Epoch) {
		return Reading{}, fmt.Errorf("%w: %s", ErrInvalidTime, t)
	}
	elapsed := int64(t.Sub(c.Epoch) / c.Period)
	start := c.Epoch.Add(time.Duration(elapsed) * c.Period).In(c.Location)
	return Reading{
		Label: LabelAt(elapsed),
		Slot:  NewHourSlot(start, c.Period),
		Start: start,
	}, nil
}

// DayHourClock restarts the cycle at local midnight: the label is the period
// index within the day mod 7. Periods that do not divide a day evenly leave a
// short final bucket.
type DayHourClock struct {
	Period   time.Duration
	Location *time.Location
}

func (c *DayHourClock) LabelFor(t time.Time) (Reading, error) {
	if t.IsZero() || t.Unix() < 0 {
		return Reading{}, fmt.Errorf("%w: %s", ErrInvalidTime, t)
	}
	local := t.In(c.Location)
	midnight := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, c.Location)
	bucket := int64(local.Sub(midnight) / c.Period)
	start := midnight.Add(time.Duration(bucket) * c.Period)
	return Reading{
		Label: LabelAt(bucket),
		Slot:  NewHourSlot(start, c.Period),
		Start: start,
	}, nil
}
