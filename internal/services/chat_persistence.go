package services

import (
	"context"
	"log"
	"time"

	"github.com/AnshRaj112/luna-backend/internal/database"
	"github.com/AnshRaj112/luna-backend/internal/models"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const chatMessagesCollection = "chat_messages"

// EnsureChatIndexes configures indexes for the chat_messages collection.
// Called on startup from main after Mongo has connected.
func EnsureChatIndexes(ctx context.Context) error {
	if database.DB == nil {
		return nil
	}
	col := database.DB.Collection(chatMessagesCollection)

	idx := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "session_id", Value: 1},
				{Key: "timestamp", Value: -1},
			},
			Options: options.Index().SetName("idx_session_timestamp"),
		},
	}
	for _, m := range idx {
		if _, err := col.Indexes().CreateOne(ctx, m); err != nil {
			return err
		}
	}
	return nil
}

// RecordChatMessage fills the id and timestamp, pushes the message onto the
// recent list and persists it to Mongo in the background.
func RecordChatMessage(msg models.ChatMessage) models.ChatMessage {
	if msg.MessageID == "" {
		msg.MessageID = uuid.NewString()
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now().UTC()
	}
	PushMessageToRecentCache(msg)
	SaveChatMessageAsync(msg)
	return msg
}

// SaveChatMessageAsync persists a message to MongoDB asynchronously.
// Without Mongo it is a no-op; transcripts then live only in the recent cache.
func SaveChatMessageAsync(msg models.ChatMessage) {
	if database.DB == nil {
		return
	}
	go func(m models.ChatMessage) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		col := database.DB.Collection(chatMessagesCollection)
		if _, err := col.InsertOne(ctx, m); err != nil {
			log.Printf("⚠️ Failed to save chat message for session %s: %v", m.SessionID, err)
		}
	}(msg)
}

// LoadChatMessages returns up to limit messages of a session, oldest first.
// hasMore reports whether older messages exist.
func LoadChatMessages(ctx context.Context, sessionID string, before *time.Time, limit int64) ([]models.ChatMessage, bool, error) {
	if limit <= 0 || limit > 100 {
		limit = chatRecentMaxLen
	}
	if database.DB == nil {
		return []models.ChatMessage{}, false, nil
	}

	col := database.DB.Collection(chatMessagesCollection)

	filter := bson.M{"session_id": sessionID}
	if before != nil {
		filter["timestamp"] = bson.M{"$lt": before.UTC()}
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(limit + 1)

	cur, err := col.Find(ctx, filter, opts)
	if err != nil {
		return nil, false, err
	}
	defer cur.Close(ctx)

	msgs := []models.ChatMessage{}
	for cur.Next(ctx) {
		var m models.ChatMessage
		if err := cur.Decode(&m); err != nil {
			continue
		}
		msgs = append(msgs, m)
	}
	if err := cur.Err(); err != nil {
		return nil, false, err
	}

	hasMore := int64(len(msgs)) > limit
	if hasMore {
		msgs = msgs[:len(msgs)-1]
	}
	reverseMessages(msgs)
	return msgs, hasMore, nil
}

func reverseMessages(msgs []models.ChatMessage) {
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
}
