package transcript

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"ServiceSaathi/entity"
)

type memStore struct {
	saved []entity.ChatMessage
	err   error
}

func (m *memStore) SaveChatMessage(_ context.Context, msg entity.ChatMessage) error {
	if m.err != nil {
		return m.err
	}
	m.saved = append(m.saved, msg)
	return nil
}

type memFeed struct {
	broadcast []entity.ChatMessage
}

func (m *memFeed) BroadcastMessage(msg entity.ChatMessage) {
	m.broadcast = append(m.broadcast, msg)
}

func TestRecorderStoresAndBroadcasts(t *testing.T) {
	store := &memStore{}
	feed := &memFeed{}
	rec := NewRecorder(store, feed, slog.New(slog.DiscardHandler))

	msg := entity.ChatMessage{UserID: "+911", Direction: "inbound", Text: "hi", CreatedAt: time.Now()}
	rec.OnChatMessage(msg)

	assert.Len(t, store.saved, 1)
	assert.Len(t, feed.broadcast, 1)
	assert.Equal(t, "hi", store.saved[0].Text)
}

func TestRecorderWithoutStore(t *testing.T) {
	feed := &memFeed{}
	rec := NewRecorder(nil, feed, slog.New(slog.DiscardHandler))

	rec.OnChatMessage(entity.ChatMessage{UserID: "+911", Text: "hi"})
	assert.Len(t, feed.broadcast, 1)
}

func TestRecorderStoreFailureStillBroadcasts(t *testing.T) {
	store := &memStore{err: context.DeadlineExceeded}
	feed := &memFeed{}
	rec := NewRecorder(store, feed, slog.New(slog.DiscardHandler))

	rec.OnChatMessage(entity.ChatMessage{UserID: "+911", Text: "hi"})
	assert.Len(t, feed.broadcast, 1)
}
