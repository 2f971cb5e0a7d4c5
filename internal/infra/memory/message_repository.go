package memory

import (
	"context"
	"sync"

	"planetary_hour_notifier/internal/domain/alert"
)

// MessageRepository is an in-memory alert.MessageRepository.
type MessageRepository struct {
	mu      sync.Mutex
	records map[string]alert.Record
}

var _ alert.MessageRepository = (*MessageRepository)(nil)

func NewMessageRepository() *MessageRepository {
	return &MessageRepository{records: make(map[string]alert.Record)}
}

func (r *MessageRepository) GetByTag(_ context.Context, tag string) (*alert.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[tag]
	if !ok {
		return nil, alert.ErrMessageNotFound
	}
	return &rec, nil
}

func (r *MessageRepository) Upsert(_ context.Context, rec *alert.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[rec.Tag] = *rec
	return nil
}

func (r *MessageRepository) DeleteByTag(_ context.Context, tag string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.records, tag)
	return nil
}

// Len returns the number of stored records.
func (r *MessageRepository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records)
}
