// internal/domain/planetary/slot.go
package planetary

import (
	"fmt"
	"time"
)

// HourSlot identifies one scheduling period: the calendar date plus the bucket
// number within that date. Two wake-ups inside the same period share a slot.
type HourSlot struct {
	Date   string // YYYY-MM-DD in the clock's location
	Bucket int    // zero-based period index within Date
}

const slotDateLayout = "2006-01-02"

// NewHourSlot builds the slot that contains start, bucketed by period.
func NewHourSlot(start time.Time, period time.Duration) HourSlot {
	midnight := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())
	return HourSlot{
		Date:   start.Format(slotDateLayout),
		Bucket: int(start.Sub(midnight) / period),
	}
}

// IsZero reports whether the slot is unset.
func (s HourSlot) IsZero() bool {
	return s.Date == ""
}

func (s HourSlot) String() string {
	if s.IsZero() {
		return "none"
	}
	return fmt.Sprintf("%s#%02d", s.Date, s.Bucket)
}
