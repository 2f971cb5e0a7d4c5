// internal/infra/telegram/alert_surface.go
package telegram

import (
	"context"
	"errors"
	"fmt"

	"planetary_hour_notifier/internal/domain/alert"
	domainTelegram "planetary_hour_notifier/internal/domain/telegram"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

// AlertSurface shows alerts as Telegram messages in one chat. The tag of an
// alert maps to the message that displays it, so re-raising a tag replaces
// that message. With Renotify the old message is deleted and a new one sent,
// which pings the user again; without it the message is edited in place.
type AlertSurface struct {
	client domainTelegram.Client
	repo   alert.MessageRepository
	chatID int64
	logger *logrus.Entry
}

func NewAlertSurface(client domainTelegram.Client, repo alert.MessageRepository, chatID int64, logger *logrus.Entry) *AlertSurface {
	return &AlertSurface{client: client, repo: repo, chatID: chatID, logger: logger}
}

func (s *AlertSurface) UpsertAlert(ctx context.Context, key string, payload alert.Payload) error {
	logCtx := s.logger.WithFields(logrus.Fields{"tag": key, "chat_id": s.chatID, "renotify": payload.Renotify})
	text := payload.Text()

	existing, err := s.repo.GetByTag(ctx, key)
	if err != nil && !errors.Is(err, alert.ErrMessageNotFound) {
		return fmt.Errorf("failed to look up alert %s: %w", key, err)
	}

	silent := false
	if existing != nil {
		stored := telebot.StoredMessage{MessageID: existing.MessageID, ChatID: existing.ChatID}
		if !payload.Renotify {
			err := s.client.EditMessage(stored, text, &telebot.SendOptions{DisableNotification: true})
			switch {
			case err == nil || isNotModified(err):
				logCtx.Debug("Alert updated silently")
				return s.save(ctx, key, payload, existing.MessageID, existing.ChatID)
			case isMessageGone(err):
				// The user removed it; send a fresh one, still without a ping.
				silent = true
			default:
				return classify(err)
			}
		} else if err := s.client.DeleteMessage(stored); err != nil && !isMessageGone(err) {
			if classified := classify(err); errors.Is(classified, alert.ErrPermissionDenied) {
				return classified
			}
			logCtx.WithError(err).Warn("Could not remove superseded alert message")
		}
	}

	sent, err := s.client.SendMessage(s.chatID, text, &telebot.SendOptions{DisableNotification: silent})
	if err != nil {
		return classify(err)
	}
	logCtx.WithField("message_id", sent.MessageID).Info("Alert message sent")
	return s.save(ctx, key, payload, sent.MessageID, sent.ChatID)
}

func (s *AlertSurface) save(ctx context.Context, key string, payload alert.Payload, messageID string, chatID int64) error {
	rec := &alert.Record{
		Tag:       key,
		ChatID:    chatID,
		MessageID: messageID,
		Label:     payload.Label,
		Slot:      payload.Slot,
	}
	if err := s.repo.Upsert(ctx, rec); err != nil {
		return fmt.Errorf("failed to store alert record %s: %w", key, err)
	}
	return nil
}
