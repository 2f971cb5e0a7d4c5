// internal/infra/database/postgres_message_repository.go
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"planetary_hour_notifier/internal/domain/alert"
	"planetary_hour_notifier/internal/domain/planetary"
)

type PostgresMessageRepository struct {
	db *sql.DB
}

var _ alert.MessageRepository = (*PostgresMessageRepository)(nil)

func NewPostgresMessageRepository(db *sql.DB) *PostgresMessageRepository {
	return &PostgresMessageRepository{db: db}
}

func (r *PostgresMessageRepository) GetByTag(ctx context.Context, tag string) (*alert.Record, error) {
	query := `SELECT tag, chat_id, message_id, label, slot_date, slot_bucket, updated_at
               FROM alert_messages WHERE tag = $1`
	var (
		rec   alert.Record
		label string
	)
	err := r.db.QueryRowContext(ctx, query, tag).Scan(&rec.Tag, &rec.ChatID, &rec.MessageID, &label, &rec.Slot.Date, &rec.Slot.Bucket, &rec.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, alert.ErrMessageNotFound
		}
		return nil, fmt.Errorf("error getting alert message by tag: %w", err)
	}
	rec.Label, err = planetary.ParseLabel(label)
	if err != nil {
		return nil, fmt.Errorf("error decoding alert message %s: %w", tag, err)
	}
	return &rec, nil
}

func (r *PostgresMessageRepository) Upsert(ctx context.Context, rec *alert.Record) error {
	query := `INSERT INTO alert_messages (tag, chat_id, message_id, label, slot_date, slot_bucket, updated_at)
               VALUES ($1, $2, $3, $4, $5, $6, NOW())
               ON CONFLICT (tag) DO UPDATE
               SET chat_id = EXCLUDED.chat_id, message_id = EXCLUDED.message_id, label = EXCLUDED.label,
                   slot_date = EXCLUDED.slot_date, slot_bucket = EXCLUDED.slot_bucket, updated_at = EXCLUDED.updated_at
               RETURNING updated_at`
	err := r.db.QueryRowContext(ctx, query, rec.Tag, rec.ChatID, rec.MessageID, rec.Label.String(), rec.Slot.Date, rec.Slot.Bucket).Scan(&rec.UpdatedAt)
	if err != nil {
		return fmt.Errorf("error upserting alert message: %w", err)
	}
	return nil
}

func (r *PostgresMessageRepository) DeleteByTag(ctx context.Context, tag string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM alert_messages WHERE tag = $1`, tag); err != nil {
		return fmt.Errorf("error deleting alert message: %w", err)
	}
	return nil
}
