package logger

import (
	"context"
	"fmt"
	"log/slog"
)

// AdminNotifier delivers a plain text message to the operations chat.
type AdminNotifier interface {
	SendMessage(msg string)
}

// telegramHandler mirrors records at or above level to a Telegram admin chat
// while passing everything through to the wrapped handler.
type telegramHandler struct {
	next     slog.Handler
	notifier AdminNotifier
	level    slog.Level
}

// SetupTelegramHandler wraps the logger so that warnings and errors are also
// forwarded to the admin bot.
func SetupTelegramHandler(log *slog.Logger, notifier AdminNotifier, level slog.Level) *slog.Logger {
	return slog.New(&telegramHandler{
		next:     log.Handler(),
		notifier: notifier,
		level:    level,
	})
}

func (h *telegramHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *telegramHandler) Handle(ctx context.Context, record slog.Record) error {
	if record.Level >= slog.LevelWarn && record.Level >= h.level {
		text := fmt.Sprintf("*%s* %s", record.Level.String(), record.Message)
		record.Attrs(func(attr slog.Attr) bool {
			text += fmt.Sprintf("\n%s: %s", attr.Key, attr.Value.String())
			return true
		})
		go h.notifier.SendMessage(text)
	}
	return h.next.Handle(ctx, record)
}

func (h *telegramHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &telegramHandler{next: h.next.WithAttrs(attrs), notifier: h.notifier, level: h.level}
}

func (h *telegramHandler) WithGroup(name string) slog.Handler {
	return &telegramHandler{next: h.next.WithGroup(name), notifier: h.notifier, level: h.level}
}
