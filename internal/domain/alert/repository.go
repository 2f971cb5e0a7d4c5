// internal/domain/alert/repository.go
package alert

import (
	"context"

	"planetary_hour_notifier/internal/domain/planetary"
)

// StateRepository holds the last slot an alert was delivered for.
// The host may wipe it at any time; callers must tolerate an empty state.
type StateRepository interface {
	// IsDue reports whether nothing is recorded yet or the recorded slot differs.
	IsDue(ctx context.Context, slot planetary.HourSlot) (bool, error)
	// Record sets the last delivered slot. Recording the same slot twice is a no-op.
	Record(ctx context.Context, slot planetary.HourSlot, label planetary.Label) error
	// Claim performs IsDue and Record as one atomic decision and reports
	// whether the caller won the slot.
	Claim(ctx context.Context, slot planetary.HourSlot, label planetary.Label) (bool, error)
	// Last returns the recorded slot, or a zero slot when none is recorded.
	Last(ctx context.Context) (planetary.HourSlot, error)
	// Reset forgets the recorded slot.
	Reset(ctx context.Context) error
}

// MessageRepository maps alert tags to the host messages that display them.
type MessageRepository interface {
	GetByTag(ctx context.Context, tag string) (*Record, error)
	Upsert(ctx context.Context, rec *Record) error
	DeleteByTag(ctx context.Context, tag string) error
}
