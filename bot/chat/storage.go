package chat

import "context"

// StateRepository defines the database operations for conversation state.
type StateRepository interface {
	SaveConversationState(ctx context.Context, state *ConversationState) error
	LoadConversationState(ctx context.Context, userID string) (*ConversationState, error)
}

// MongoStateStorage adapts the database repository to the StateStorage
// interface.
type MongoStateStorage struct {
	repo StateRepository
}

// NewMongoStateStorage creates a new MongoDB conversation state storage.
func NewMongoStateStorage(repo StateRepository) *MongoStateStorage {
	return &MongoStateStorage{repo: repo}
}

func (s *MongoStateStorage) Save(ctx context.Context, state *ConversationState) error {
	return s.repo.SaveConversationState(ctx, state)
}

func (s *MongoStateStorage) Load(ctx context.Context, userID string) (*ConversationState, error) {
	return s.repo.LoadConversationState(ctx, userID)
}
