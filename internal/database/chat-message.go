package repository

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"ServiceSaathi/entity"
)

const transcriptKeep = 200

// SaveChatMessage inserts a transcript entry and trims the per-user history.
func (m *MongoDB) SaveChatMessage(ctx context.Context, msg entity.ChatMessage) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(messagesCollection)

	if msg.ID.IsZero() {
		msg.ID = primitive.NewObjectID()
	}

	_, err = collection.InsertOne(ctx, msg)
	if err != nil {
		return fmt.Errorf("mongodb insert chat message: %w", err)
	}

	filter := bson.D{{Key: "user_id", Value: msg.UserID}}
	count, err := collection.CountDocuments(ctx, filter)
	if err != nil {
		return fmt.Errorf("mongodb count chat messages: %w", err)
	}

	if count > transcriptKeep {
		opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetSkip(transcriptKeep - 1)
		var cutoff entity.ChatMessage
		err = collection.FindOne(ctx, filter, opts).Decode(&cutoff)
		if err != nil {
			return fmt.Errorf("mongodb find cutoff message: %w", err)
		}

		deleteFilter := bson.D{
			{Key: "user_id", Value: msg.UserID},
			{Key: "created_at", Value: bson.D{{Key: "$lt", Value: cutoff.CreatedAt}}},
		}
		_, err = collection.DeleteMany(ctx, deleteFilter)
		if err != nil {
			return fmt.Errorf("mongodb trim chat messages: %w", err)
		}
	}

	return nil
}

// GetChatMessages returns a user's transcript, newest first.
func (m *MongoDB) GetChatMessages(ctx context.Context, userID string, limit, offset int) ([]entity.ChatMessage, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(messagesCollection)

	filter := bson.D{{Key: "user_id", Value: userID}}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(int64(offset))

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("mongodb find chat messages: %w", err)
	}
	defer cursor.Close(ctx)

	var messages []entity.ChatMessage
	if err = cursor.All(ctx, &messages); err != nil {
		return nil, fmt.Errorf("mongodb decode chat messages: %w", err)
	}

	return messages, nil
}
