// internal/infra/telegram/client.go
package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"planetary_hour_notifier/internal/domain/alert"

	"golang.org/x/time/rate"
	"gopkg.in/telebot.v3"
)

const rateLimitWait = 30 * time.Second

// TelebotAdapter implements the Client interface using the gopkg.in/telebot.v3 library.
type TelebotAdapter struct {
	bot     *telebot.Bot
	limiter *rate.Limiter
}

// NewTelebotAdapter wraps b. ratePerSecond <= 0 disables rate limiting.
func NewTelebotAdapter(b *telebot.Bot, ratePerSecond float64) *TelebotAdapter {
	limit := rate.Inf
	if ratePerSecond > 0 {
		limit = rate.Limit(ratePerSecond)
	}
	return &TelebotAdapter{bot: b, limiter: rate.NewLimiter(limit, 1)}
}

func (tba *TelebotAdapter) wait() error {
	ctx, cancel := context.WithTimeout(context.Background(), rateLimitWait)
	defer cancel()
	return tba.limiter.Wait(ctx)
}

// SendMessage sends a text message to the specified chat.
func (tba *TelebotAdapter) SendMessage(recipientChatID int64, text string, options *telebot.SendOptions) (*telebot.StoredMessage, error) {
	if options == nil {
		options = &telebot.SendOptions{}
	}
	if err := tba.wait(); err != nil {
		return nil, err
	}

	msg, err := tba.bot.Send(&telebot.Chat{ID: recipientChatID}, text, options)
	if err != nil {
		return nil, err
	}
	id, chatID := msg.MessageSig()
	return &telebot.StoredMessage{MessageID: id, ChatID: chatID}, nil
}

// EditMessage replaces the text of a previously sent message.
func (tba *TelebotAdapter) EditMessage(msg telebot.StoredMessage, text string, options *telebot.SendOptions) error {
	if options == nil {
		options = &telebot.SendOptions{}
	}
	if err := tba.wait(); err != nil {
		return err
	}
	_, err := tba.bot.Edit(msg, text, options)
	return err
}

// DeleteMessage removes a previously sent message.
func (tba *TelebotAdapter) DeleteMessage(msg telebot.StoredMessage) error {
	if err := tba.wait(); err != nil {
		return err
	}
	return tba.bot.Delete(msg)
}

// classify maps Telegram API failures onto alert conditions. A 403 means the
// bot was blocked, kicked, or never started by the user.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var tgErr *telebot.Error
	if errors.As(err, &tgErr) && tgErr.Code == 403 {
		return fmt.Errorf("%w: %v", alert.ErrPermissionDenied, err)
	}
	if strings.Contains(err.Error(), "Forbidden") {
		return fmt.Errorf("%w: %v", alert.ErrPermissionDenied, err)
	}
	return err
}

func isNotModified(err error) bool {
	return err != nil && strings.Contains(err.Error(), "message is not modified")
}

func isMessageGone(err error) bool {
	return err != nil && (strings.Contains(err.Error(), "message to edit not found") ||
		strings.Contains(err.Error(), "message to delete not found") ||
		strings.Contains(err.Error(), "message can't be edited") ||
		strings.Contains(err.Error(), "message can't be deleted"))
}
