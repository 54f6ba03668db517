package poller_test

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ServiceSaathi/bot/chat"
	"ServiceSaathi/entity"
	"ServiceSaathi/internal/service/gateway"
	"ServiceSaathi/internal/service/poller"
)

const tick = 10 * time.Millisecond

type scriptedStatus struct {
	mu      sync.Mutex
	script  []func() (entity.RequestStatus, error)
	calls   int
	forever func() (entity.RequestStatus, error)
}

func (s *scriptedStatus) Status(_ context.Context, _ string) (entity.RequestStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.calls < len(s.script) {
		fn := s.script[s.calls]
		s.calls++
		return fn()
	}
	s.calls++
	if s.forever != nil {
		return s.forever()
	}
	return entity.StatusProcessing, nil
}

func (s *scriptedStatus) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func transient() (entity.RequestStatus, error) {
	return "", gateway.ErrUnavailable
}

func terminal(status entity.RequestStatus) func() (entity.RequestStatus, error) {
	return func() (entity.RequestStatus, error) { return status, nil }
}

type recordingSender struct {
	mu   sync.Mutex
	sent []string
}

func (s *recordingSender) Send(_, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, text)
	return nil
}

func (s *recordingSender) messages() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.sent...)
}

func seedStore(t *testing.T, store *chat.MemoryStateStorage, userID, requestID string, status entity.RequestStatus) {
	t.Helper()
	state := chat.NewConversationState(userID)
	state.Language = chat.LangEnglish
	state.Applications = append(state.Applications, entity.Application{
		RequestID: requestID,
		Status:    status,
	})
	require.NoError(t, store.Save(context.Background(), state))
}

func TestPollerTerminalAfterTransientErrors(t *testing.T) {
	statuses := &scriptedStatus{script: []func() (entity.RequestStatus, error){
		transient,
		transient,
		transient,
		terminal(entity.StatusSubmitted),
	}}
	sender := &recordingSender{}
	store := chat.NewMemoryStateStorage()
	seedStore(t, store, "+911", "R1", entity.StatusDocumentsUploading)

	reg := poller.NewRegistry(tick, 30, statuses, sender, store, slog.New(slog.DiscardHandler))
	reg.Start("R1", "+911", chat.LangEnglish)

	require.Eventually(t, func() bool {
		return len(sender.messages()) > 0
	}, 2*time.Second, tick)

	// exactly one final message, no duplicates after further ticks
	time.Sleep(5 * tick)
	msgs := sender.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, chat.TextPollerFinal(chat.LangEnglish, "R1", entity.StatusSubmitted), msgs[0])
	assert.False(t, reg.IsActive("R1"))

	// terminal status was written back to the store
	pending, err := store.ListPendingApplications(context.Background())
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestPollerStartIsIdempotent(t *testing.T) {
	statuses := &scriptedStatus{}
	sender := &recordingSender{}
	store := chat.NewMemoryStateStorage()

	reg := poller.NewRegistry(time.Hour, 30, statuses, sender, store, slog.New(slog.DiscardHandler))
	reg.Start("R1", "+911", chat.LangEnglish)
	reg.Start("R1", "+911", chat.LangEnglish)

	assert.True(t, reg.IsActive("R1"))
	reg.Stop("R1")
	assert.False(t, reg.IsActive("R1"))
}

func TestPollerStopIsIdempotentAndSilent(t *testing.T) {
	statuses := &scriptedStatus{forever: terminal(entity.StatusSubmitted)}
	sender := &recordingSender{}
	store := chat.NewMemoryStateStorage()

	reg := poller.NewRegistry(time.Hour, 30, statuses, sender, store, slog.New(slog.DiscardHandler))
	reg.Start("R1", "+911", chat.LangEnglish)
	reg.Stop("R1")
	reg.Stop("R1")

	// the stopped task never polled and never sent anything
	time.Sleep(5 * tick)
	assert.Empty(t, sender.messages())
	assert.Equal(t, 0, statuses.callCount())
}

func TestPollerBudgetExhausted(t *testing.T) {
	statuses := &scriptedStatus{} // processing forever
	sender := &recordingSender{}
	store := chat.NewMemoryStateStorage()

	reg := poller.NewRegistry(tick, 3, statuses, sender, store, slog.New(slog.DiscardHandler))
	reg.Start("R1", "+911", chat.LangMalayalam)

	require.Eventually(t, func() bool {
		return len(sender.messages()) > 0
	}, 2*time.Second, tick)

	msgs := sender.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, chat.TextPollerTimeout(chat.LangMalayalam, "R1"), msgs[0])
	assert.False(t, reg.IsActive("R1"))
	assert.Equal(t, 3, statuses.callCount())
}

func TestPollerRehydrate(t *testing.T) {
	statuses := &scriptedStatus{}
	sender := &recordingSender{}
	store := chat.NewMemoryStateStorage()
	seedStore(t, store, "+911", "R1", entity.StatusDocumentsUploading)
	seedStore(t, store, "+912", "R2", entity.StatusSubmitted) // terminal, skipped

	reg := poller.NewRegistry(time.Hour, 30, statuses, sender, store, slog.New(slog.DiscardHandler))
	require.NoError(t, reg.Rehydrate(context.Background()))

	assert.True(t, reg.IsActive("R1"))
	assert.False(t, reg.IsActive("R2"))
}

func TestPollerRestartAfterStop(t *testing.T) {
	statuses := &scriptedStatus{}
	sender := &recordingSender{}
	store := chat.NewMemoryStateStorage()

	reg := poller.NewRegistry(time.Hour, 30, statuses, sender, store, slog.New(slog.DiscardHandler))
	reg.Start("R1", "+911", chat.LangEnglish)
	reg.Stop("R1")
	reg.Start("R1", "+911", chat.LangEnglish)

	assert.True(t, reg.IsActive("R1"))
	reg.Stop("R1")
}
