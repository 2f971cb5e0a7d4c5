// internal/infra/database/postgres_alert_state_repository.go
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"planetary_hour_notifier/internal/domain/alert"
	"planetary_hour_notifier/internal/domain/planetary"
)

// PostgresAlertStateRepository persists the last delivered slot in a single
// row keyed by worker name, so it survives worker restarts.
type PostgresAlertStateRepository struct {
	db     *sql.DB
	worker string
}

var _ alert.StateRepository = (*PostgresAlertStateRepository)(nil)

func NewPostgresAlertStateRepository(db *sql.DB, worker string) *PostgresAlertStateRepository {
	return &PostgresAlertStateRepository{db: db, worker: worker}
}

func (r *PostgresAlertStateRepository) IsDue(ctx context.Context, slot planetary.HourSlot) (bool, error) {
	last, err := r.Last(ctx)
	if err != nil {
		return false, err
	}
	return last != slot, nil
}

func (r *PostgresAlertStateRepository) Record(ctx context.Context, slot planetary.HourSlot, label planetary.Label) error {
	query := `INSERT INTO alert_state (worker, slot_date, slot_bucket, label, recorded_at)
               VALUES ($1, $2, $3, $4, NOW())
               ON CONFLICT (worker) DO UPDATE
               SET slot_date = EXCLUDED.slot_date, slot_bucket = EXCLUDED.slot_bucket,
                   label = EXCLUDED.label, recorded_at = EXCLUDED.recorded_at`
	if _, err := r.db.ExecContext(ctx, query, r.worker, slot.Date, slot.Bucket, label.String()); err != nil {
		return fmt.Errorf("error recording alert state: %w", err)
	}
	return nil
}

// Claim only writes when the stored slot differs, and RETURNING tells us
// whether this statement was the one that wrote. Concurrent claims for the
// same slot serialize on the row lock, so exactly one wins.
func (r *PostgresAlertStateRepository) Claim(ctx context.Context, slot planetary.HourSlot, label planetary.Label) (bool, error) {
	query := `INSERT INTO alert_state (worker, slot_date, slot_bucket, label, recorded_at)
               VALUES ($1, $2, $3, $4, NOW())
               ON CONFLICT (worker) DO UPDATE
               SET slot_date = EXCLUDED.slot_date, slot_bucket = EXCLUDED.slot_bucket,
                   label = EXCLUDED.label, recorded_at = EXCLUDED.recorded_at
               WHERE alert_state.slot_date <> EXCLUDED.slot_date OR alert_state.slot_bucket <> EXCLUDED.slot_bucket
               RETURNING worker`
	var worker string
	err := r.db.QueryRowContext(ctx, query, r.worker, slot.Date, slot.Bucket, label.String()).Scan(&worker)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("error claiming alert slot: %w", err)
	}
	return true, nil
}

func (r *PostgresAlertStateRepository) Last(ctx context.Context) (planetary.HourSlot, error) {
	query := `SELECT slot_date, slot_bucket FROM alert_state WHERE worker = $1`
	var slot planetary.HourSlot
	err := r.db.QueryRowContext(ctx, query, r.worker).Scan(&slot.Date, &slot.Bucket)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return planetary.HourSlot{}, nil
		}
		return planetary.HourSlot{}, fmt.Errorf("error reading alert state: %w", err)
	}
	return slot, nil
}

func (r *PostgresAlertStateRepository) Reset(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM alert_state WHERE worker = $1`, r.worker); err != nil {
		return fmt.Errorf("error resetting alert state: %w", err)
	}
	return nil
}
