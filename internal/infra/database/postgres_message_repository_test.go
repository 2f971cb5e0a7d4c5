package database

import (
	"context"
	"testing"
	"time"

	"planetary_hour_notifier/internal/domain/alert"
	"planetary_hour_notifier/internal/domain/planetary"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageRepository_GetByTag(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPostgresMessageRepository(db)
	now := time.Now()

	mock.ExpectQuery(`SELECT tag, chat_id, message_id, label, slot_date, slot_bucket, updated_at`).
		WithArgs("planet-hour-Moon").
		WillReturnRows(sqlmock.NewRows([]string{"tag", "chat_id", "message_id", "label", "slot_date", "slot_bucket", "updated_at"}).
			AddRow("planet-hour-Moon", int64(42), "7", "Moon", "2026-10-18", 10, now))

	rec, err := repo.GetByTag(context.Background(), "planet-hour-Moon")
	require.NoError(t, err)
	assert.Equal(t, planetary.Moon, rec.Label)
	assert.Equal(t, "7", rec.MessageID)
	assert.Equal(t, testSlot, rec.Slot)
}

func TestMessageRepository_GetByTagMissing(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPostgresMessageRepository(db)

	mock.ExpectQuery(`SELECT tag`).WithArgs("planet-hour-Sun").
		WillReturnRows(sqlmock.NewRows([]string{"tag", "chat_id", "message_id", "label", "slot_date", "slot_bucket", "updated_at"}))

	_, err := repo.GetByTag(context.Background(), "planet-hour-Sun")
	assert.ErrorIs(t, err, alert.ErrMessageNotFound)
}

func TestMessageRepository_UpsertAndDelete(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPostgresMessageRepository(db)
	now := time.Now()

	mock.ExpectQuery(`INSERT INTO alert_messages`).
		WithArgs("planet-hour-Moon", int64(42), "8", "Moon", "2026-10-18", 10).
		WillReturnRows(sqlmock.NewRows([]string{"updated_at"}).AddRow(now))
	mock.ExpectExec(`DELETE FROM alert_messages`).
		WithArgs("planet-hour-Moon").
		WillReturnResult(sqlmock.NewResult(0, 1))

	rec := &alert.Record{Tag: "planet-hour-Moon", ChatID: 42, MessageID: "8", Label: planetary.Moon, Slot: testSlot}
	require.NoError(t, repo.Upsert(context.Background(), rec))
	assert.Equal(t, now, rec.UpdatedAt)

	require.NoError(t, repo.DeleteByTag(context.Background(), "planet-hour-Moon"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
