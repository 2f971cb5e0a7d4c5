// internal/infra/telegram/bot_commands_handler.go
package telegram

import (
	"context"
	"fmt"
	"strings"
	"time"

	"planetary_hour_notifier/internal/app"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

// StatusProvider reports the current hour and delivery state.
type StatusProvider interface {
	Status(ctx context.Context, now time.Time) (*app.Status, error)
}

func RegisterBotCommands(
	ctx context.Context,
	b *telebot.Bot,
	status StatusProvider,
	baseLogger *logrus.Entry, // For contextual logging
) {
	handlerLogger := baseLogger.WithField("handler_group", "commands")

	b.Handle("/start", func(c telebot.Context) error {
		handlerLogger.WithField("command", "/start").WithField("chat_id", c.Chat().ID).Info("Processing /start command")
		return c.Send(fmt.Sprintf("Hello! I announce each planetary hour in this chat. Your chat ID is %d.\n\n/now - current planetary hour\n/status - delivery status", c.Chat().ID))
	})

	b.Handle("/now", func(c telebot.Context) error {
		logCtx := handlerLogger.WithField("command", "/now").WithField("chat_id", c.Chat().ID)
		st, err := status.Status(ctx, time.Now())
		if err != nil {
			logCtx.WithError(err).Error("Error resolving current planetary hour")
			return c.Send("Could not resolve the current planetary hour. Please try again later.")
		}
		logCtx.WithField("label", st.Label.String()).Info("Processing /now command")
		return c.Send(fmt.Sprintf("It's the hour of %s (%s).", st.Label, st.Slot))
	})

	b.Handle("/status", func(c telebot.Context) error {
		logCtx := handlerLogger.WithField("command", "/status").WithField("chat_id", c.Chat().ID)
		st, err := status.Status(ctx, time.Now())
		if err != nil {
			logCtx.WithError(err).Error("Error reading status")
			return c.Send("Could not read the notifier status. Please try again later.")
		}
		logCtx.Info("Processing /status command")
		return c.Send(FormatStatus(st))
	})
}

// FormatStatus renders a status for chat replies.
func FormatStatus(st *app.Status) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Current hour: %s (%s)\n", st.Label, st.Slot)
	fmt.Fprintf(&b, "Last alert delivered for: %s\n", st.LastDelivered)
	if st.PermissionWarning {
		fmt.Fprintf(&b, "Alerts have been refused %d times in a row. Please unblock the bot or re-enable notifications.", st.DeniedCount)
	} else {
		b.WriteString("Alerts are being delivered normally.")
	}
	return b.String()
}
