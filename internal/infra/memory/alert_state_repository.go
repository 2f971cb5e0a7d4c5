// Package memory keeps alert state in process memory. It is used when no
// database is configured and is lost whenever the host restarts the worker.
package memory

import (
	"context"
	"sync"

	"planetary_hour_notifier/internal/domain/alert"
	"planetary_hour_notifier/internal/domain/planetary"
)

type AlertStateRepository struct {
	mu    sync.Mutex
	last  planetary.HourSlot
	label planetary.Label
}

var _ alert.StateRepository = (*AlertStateRepository)(nil)

func NewAlertStateRepository() *AlertStateRepository {
	return &AlertStateRepository{}
}

func (r *AlertStateRepository) IsDue(_ context.Context, slot planetary.HourSlot) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last != slot, nil
}

func (r *AlertStateRepository) Record(_ context.Context, slot planetary.HourSlot, label planetary.Label) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.last, r.label = slot, label
	return nil
}

func (r *AlertStateRepository) Claim(_ context.Context, slot planetary.HourSlot, label planetary.Label) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.last == slot {
		return false, nil
	}
	r.last, r.label = slot, label
	return true, nil
}

func (r *AlertStateRepository) Last(_ context.Context) (planetary.HourSlot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last, nil
}

func (r *AlertStateRepository) Reset(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.last = planetary.HourSlot{}
	return nil
}
