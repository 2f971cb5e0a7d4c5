// internal/domain/alert/record.go
package alert

import (
	"fmt"
	"time"

	"planetary_hour_notifier/internal/domain/planetary"
)

// TagPrefix matches the identifier scheme the web client already uses.
const TagPrefix = "planet-hour-"

// Payload is what the alert surface renders.
type Payload struct {
	Title    string
	Body     string
	Icon     string
	Tag      string // stable dedup identifier
	Renotify bool   // re-alert the user when replacing an existing alert

	Label planetary.Label
	Slot  planetary.HourSlot
}

// NewPayload builds the alert for label. When perSlot is set the tag also
// carries the slot, so alerts from earlier hours stay distinguishable.
func NewPayload(label planetary.Label, slot planetary.HourSlot, icon string, renotify, perSlot bool) Payload {
	return Payload{
		Title:    fmt.Sprintf("Planetary Hour: %s", label),
		Body:     fmt.Sprintf("It's the hour of %s", label),
		Icon:     icon,
		Tag:      Tag(label, slot, perSlot),
		Renotify: renotify,
		Label:    label,
		Slot:     slot,
	}
}

// Text renders the payload for surfaces that only carry plain text.
func (p Payload) Text() string {
	return p.Title + "\n" + p.Body
}

// Tag derives the deterministic alert identifier.
func Tag(label planetary.Label, slot planetary.HourSlot, perSlot bool) string {
	if perSlot && !slot.IsZero() {
		return fmt.Sprintf("%s%s-%s-%02d", TagPrefix, label, slot.Date, slot.Bucket)
	}
	return TagPrefix + label.String()
}

// Record is a delivered alert as tracked by the sink. Re-raising a payload
// with the same Tag replaces the record instead of adding a second one.
type Record struct {
	Tag       string
	ChatID    int64
	MessageID string
	Label     planetary.Label
	Slot      planetary.HourSlot
	UpdatedAt time.Time
}
