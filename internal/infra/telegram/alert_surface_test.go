package telegram

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"planetary_hour_notifier/internal/app"
	"planetary_hour_notifier/internal/domain/alert"
	"planetary_hour_notifier/internal/domain/planetary"
	"planetary_hour_notifier/internal/infra/logger"
	"planetary_hour_notifier/internal/infra/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/telebot.v3"
)

type sentMessage struct {
	ChatID int64
	Text   string
	Silent bool
}

type fakeClient struct {
	nextID  int
	sent    []sentMessage
	edited  []telebot.StoredMessage
	deleted []telebot.StoredMessage

	sendErr   error
	editErr   error
	deleteErr error
}

func (f *fakeClient) SendMessage(chatID int64, text string, options *telebot.SendOptions) (*telebot.StoredMessage, error) {
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	f.nextID++
	f.sent = append(f.sent, sentMessage{ChatID: chatID, Text: text, Silent: options.DisableNotification})
	return &telebot.StoredMessage{MessageID: strconv.Itoa(f.nextID), ChatID: chatID}, nil
}

func (f *fakeClient) EditMessage(msg telebot.StoredMessage, _ string, _ *telebot.SendOptions) error {
	f.edited = append(f.edited, msg)
	return f.editErr
}

func (f *fakeClient) DeleteMessage(msg telebot.StoredMessage) error {
	f.deleted = append(f.deleted, msg)
	return f.deleteErr
}

var slot = planetary.HourSlot{Date: "2026-10-18", Bucket: 10}

func payload(renotify bool) alert.Payload {
	return alert.NewPayload(planetary.Moon, slot, "", renotify, false)
}

func TestAlertSurface_FirstAlertIsSent(t *testing.T) {
	client := &fakeClient{}
	repo := memory.NewMessageRepository()
	s := NewAlertSurface(client, repo, 42, logger.Discard())

	require.NoError(t, s.UpsertAlert(context.Background(), "planet-hour-Moon", payload(true)))

	require.Len(t, client.sent, 1)
	assert.Equal(t, sentMessage{ChatID: 42, Text: "Planetary Hour: Moon\nIt's the hour of Moon"}, client.sent[0])
	rec, err := repo.GetByTag(context.Background(), "planet-hour-Moon")
	require.NoError(t, err)
	assert.Equal(t, "1", rec.MessageID)
	assert.Equal(t, planetary.Moon, rec.Label)
}

func TestAlertSurface_RenotifyReplacesMessage(t *testing.T) {
	client := &fakeClient{}
	repo := memory.NewMessageRepository()
	s := NewAlertSurface(client, repo, 42, logger.Discard())
	ctx := context.Background()

	require.NoError(t, s.UpsertAlert(ctx, "planet-hour-Moon", payload(true)))
	require.NoError(t, s.UpsertAlert(ctx, "planet-hour-Moon", payload(true)))

	assert.Len(t, client.sent, 2)
	assert.Equal(t, []telebot.StoredMessage{{MessageID: "1", ChatID: 42}}, client.deleted)
	assert.Equal(t, 1, repo.Len(), "one visible alert per tag")
	rec, err := repo.GetByTag(ctx, "planet-hour-Moon")
	require.NoError(t, err)
	assert.Equal(t, "2", rec.MessageID)
}

func TestAlertSurface_SilentReplaceEditsInPlace(t *testing.T) {
	client := &fakeClient{}
	repo := memory.NewMessageRepository()
	s := NewAlertSurface(client, repo, 42, logger.Discard())
	ctx := context.Background()

	require.NoError(t, s.UpsertAlert(ctx, "planet-hour-Moon", payload(false)))
	client.editErr = errors.New("telegram: Bad Request: message is not modified (400)")
	require.NoError(t, s.UpsertAlert(ctx, "planet-hour-Moon", payload(false)))

	assert.Len(t, client.sent, 1)
	assert.Len(t, client.edited, 1)
	assert.Empty(t, client.deleted)
}

func TestAlertSurface_SilentReplaceOfDeletedMessageSendsQuietly(t *testing.T) {
	client := &fakeClient{}
	repo := memory.NewMessageRepository()
	s := NewAlertSurface(client, repo, 42, logger.Discard())
	ctx := context.Background()

	require.NoError(t, s.UpsertAlert(ctx, "planet-hour-Moon", payload(false)))
	client.editErr = errors.New("telegram: Bad Request: message to edit not found (400)")
	require.NoError(t, s.UpsertAlert(ctx, "planet-hour-Moon", payload(false)))

	require.Len(t, client.sent, 2)
	assert.True(t, client.sent[1].Silent)
}

func TestAlertSurface_PermissionDenied(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"api error 403", &telebot.Error{Code: 403, Description: "Forbidden: bot was blocked by the user"}},
		{"wrapped forbidden", errors.New("telegram: Forbidden: bot can't initiate conversation with a user (403)")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &fakeClient{sendErr: tt.err}
			s := NewAlertSurface(client, memory.NewMessageRepository(), 42, logger.Discard())
			err := s.UpsertAlert(context.Background(), "planet-hour-Moon", payload(true))
			assert.ErrorIs(t, err, alert.ErrPermissionDenied)
		})
	}
}

func TestAlertSurface_OtherErrorsPassThrough(t *testing.T) {
	client := &fakeClient{sendErr: errors.New("network unreachable")}
	s := NewAlertSurface(client, memory.NewMessageRepository(), 42, logger.Discard())

	err := s.UpsertAlert(context.Background(), "planet-hour-Moon", payload(true))
	require.Error(t, err)
	assert.NotErrorIs(t, err, alert.ErrPermissionDenied)
}

func TestAlertSurface_WorksBehindNotificationSink(t *testing.T) {
	client := &fakeClient{}
	sink := app.NewNotificationSink(NewAlertSurface(client, memory.NewMessageRepository(), 42, logger.Discard()), app.SinkOptions{Renotify: true})

	for i := 0; i < 3; i++ {
		require.NoError(t, sink.Show(context.Background(), planetary.Moon, slot))
	}
	assert.Len(t, client.sent, 3)
	assert.Len(t, client.deleted, 2)
}

func TestFormatStatus(t *testing.T) {
	st := &app.Status{Label: planetary.Moon, Slot: slot, LastDelivered: slot}
	assert.Contains(t, FormatStatus(st), "Current hour: Moon (2026-10-18#10)")
	assert.Contains(t, FormatStatus(st), "delivered normally")

	st.PermissionWarning, st.DeniedCount = true, 4
	assert.Contains(t, FormatStatus(st), "refused 4 times")
}
