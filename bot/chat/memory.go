package chat

import (
	"context"
	"sync"

	"ServiceSaathi/entity"
)

// PendingApplication identifies a submitted application that has not reached
// a terminal status yet; the poller re-registers these at startup.
type PendingApplication struct {
	UserID    string
	RequestID string
	Language  Language
}

// MemoryStateStorage is an in-memory StateStorage, used when Mongo is
// disabled and throughout the tests.
type MemoryStateStorage struct {
	mu     sync.RWMutex
	states map[string]ConversationState
}

func NewMemoryStateStorage() *MemoryStateStorage {
	return &MemoryStateStorage{states: make(map[string]ConversationState)}
}

func (s *MemoryStateStorage) Save(_ context.Context, state *ConversationState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[state.UserID] = *state.Clone()
	return nil
}

func (s *MemoryStateStorage) Load(_ context.Context, userID string) (*ConversationState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.states[userID]
	if !ok {
		return nil, nil
	}
	return state.Clone(), nil
}

// ListPendingApplications returns every stored application whose status is
// not terminal.
func (s *MemoryStateStorage) ListPendingApplications(_ context.Context) ([]PendingApplication, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var pending []PendingApplication
	for _, state := range s.states {
		for _, app := range state.Applications {
			if !app.Status.IsTerminal() {
				pending = append(pending, PendingApplication{
					UserID:    state.UserID,
					RequestID: app.RequestID,
					Language:  state.Language,
				})
			}
		}
	}
	return pending, nil
}

// SetApplicationStatus updates the stored status of one application.
func (s *MemoryStateStorage) SetApplicationStatus(_ context.Context, userID, requestID string, status entity.RequestStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, ok := s.states[userID]
	if !ok {
		return nil
	}
	for i := range state.Applications {
		if state.Applications[i].RequestID == requestID {
			state.Applications[i].Status = status
		}
	}
	s.states[userID] = state
	return nil
}
