package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"ServiceSaathi/bot/chat"
	"ServiceSaathi/entity"
)

// SaveConversationState persists a user's conversation state by user_id.
func (m *MongoDB) SaveConversationState(ctx context.Context, state *chat.ConversationState) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(statesCollection)

	state.UpdatedAt = time.Now()

	filter := bson.D{{Key: "user_id", Value: state.UserID}}
	update := bson.D{{Key: "$set", Value: state}}
	opts := options.Update().SetUpsert(true)

	_, err = collection.UpdateOne(ctx, filter, update, opts)
	return err
}

// LoadConversationState retrieves a user's conversation state by user_id.
// Returns nil, nil when the user has never been seen.
func (m *MongoDB) LoadConversationState(ctx context.Context, userID string) (*chat.ConversationState, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(statesCollection)

	filter := bson.D{{Key: "user_id", Value: userID}}

	var state chat.ConversationState
	err = collection.FindOne(ctx, filter).Decode(&state)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}

	return &state, nil
}

// ListPendingApplications scans every conversation state and returns the
// applications whose status is not terminal. Used once at startup to bring
// the status pollers back.
func (m *MongoDB) ListPendingApplications(ctx context.Context) ([]chat.PendingApplication, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(statesCollection)

	filter := bson.D{{Key: "applications.0", Value: bson.D{{Key: "$exists", Value: true}}}}
	cursor, err := collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var pending []chat.PendingApplication
	for cursor.Next(ctx) {
		var state chat.ConversationState
		if err := cursor.Decode(&state); err != nil {
			return nil, err
		}
		for _, app := range state.Applications {
			if !app.Status.IsTerminal() {
				pending = append(pending, chat.PendingApplication{
					UserID:    state.UserID,
					RequestID: app.RequestID,
					Language:  state.Language,
				})
			}
		}
	}
	return pending, cursor.Err()
}

// SetApplicationStatus updates the stored status of one application inside a
// user's conversation state.
func (m *MongoDB) SetApplicationStatus(ctx context.Context, userID, requestID string, status entity.RequestStatus) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(statesCollection)

	filter := bson.D{
		{Key: "user_id", Value: userID},
		{Key: "applications.request_id", Value: requestID},
	}
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "applications.$.status", Value: status},
		{Key: "updated_at", Value: time.Now()},
	}}}

	_, err = collection.UpdateOne(ctx, filter, update)
	return err
}
