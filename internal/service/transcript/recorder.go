package transcript

import (
	"context"
	"log/slog"
	"time"

	"ServiceSaathi/entity"
	"ServiceSaathi/internal/lib/sl"
)

// MessageStore persists transcript entries.
type MessageStore interface {
	SaveChatMessage(ctx context.Context, msg entity.ChatMessage) error
}

// Feed pushes transcript entries to live listeners.
type Feed interface {
	BroadcastMessage(msg entity.ChatMessage)
}

// Recorder receives every inbound and outbound chat message, persists it and
// mirrors it onto the live feed. Failures are logged and never surface to
// the conversation.
type Recorder struct {
	store MessageStore
	feed  Feed
	log   *slog.Logger
}

func NewRecorder(store MessageStore, feed Feed, log *slog.Logger) *Recorder {
	return &Recorder{
		store: store,
		feed:  feed,
		log:   log.With(sl.Module("transcript")),
	}
}

func (r *Recorder) OnChatMessage(msg entity.ChatMessage) {
	if r.store != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := r.store.SaveChatMessage(ctx, msg); err != nil {
			r.log.With(slog.String("user_id", msg.UserID), sl.Err(err)).Error("saving chat message")
		}
	}
	if r.feed != nil {
		r.feed.BroadcastMessage(msg)
	}
}
