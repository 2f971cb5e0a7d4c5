// internal/app/notification_sink.go
package app

import (
	"context"

	"planetary_hour_notifier/internal/domain/alert"
	"planetary_hour_notifier/internal/domain/planetary"

	"github.com/sirupsen/logrus"
)

// AlertSurface is the host capability to raise or replace an alert by key.
// Upserting a key that is already displayed replaces it rather than stacking.
type AlertSurface interface {
	UpsertAlert(ctx context.Context, key string, payload alert.Payload) error
}

// NotificationSink presents the visual alert for a planetary hour.
type NotificationSink interface {
	Show(ctx context.Context, label planetary.Label, slot planetary.HourSlot) error
}

// SinkOptions controls how alerts are rendered and keyed.
type SinkOptions struct {
	Icon     string
	Renotify bool
	PerSlot  bool // include the slot in the tag so past hours remain distinct
}

type surfaceSink struct {
	surface AlertSurface
	opts    SinkOptions
}

// NewNotificationSink builds a sink that renders payloads onto surface.
func NewNotificationSink(surface AlertSurface, opts SinkOptions) NotificationSink {
	return &surfaceSink{surface: surface, opts: opts}
}

func (s *surfaceSink) Show(ctx context.Context, label planetary.Label, slot planetary.HourSlot) error {
	payload := alert.NewPayload(label, slot, s.opts.Icon, s.opts.Renotify, s.opts.PerSlot)
	return s.surface.UpsertAlert(ctx, payload.Tag, payload)
}

// LogSurface writes alerts to the log. It stands in for a real surface when
// none is configured.
type LogSurface struct {
	logger *logrus.Entry
}

func NewLogSurface(logger *logrus.Entry) *LogSurface {
	return &LogSurface{logger: logger}
}

func (l *LogSurface) UpsertAlert(_ context.Context, key string, payload alert.Payload) error {
	l.logger.WithFields(logrus.Fields{
		"tag":      key,
		"renotify": payload.Renotify,
		"icon":     payload.Icon,
	}).Infof("%s: %s", payload.Title, payload.Body)
	return nil
}
