package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ChatRole string

const (
	RoleUser      ChatRole = "user"
	RoleAssistant ChatRole = "assistant"
	RoleSystem    ChatRole = "system"
)

// ChatMessage is one turn of a conversation. Stored in MongoDB (one document per message)
// and in the Redis recent list.
type ChatMessage struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	MessageID string             `bson:"message_id" json:"id"`
	SessionID string             `bson:"session_id" json:"sessionId"`
	Role      ChatRole           `bson:"role" json:"role"`
	Content   string             `bson:"content" json:"content"`
	Model     string             `bson:"model,omitempty" json:"model,omitempty"`
	Source    string             `bson:"source,omitempty" json:"source,omitempty"` // rules, database, search, openai, safety
	Timestamp time.Time          `bson:"timestamp" json:"timestamp"`
}

// IncomingMessage is the role/content pair sent by chat clients.
type IncomingMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
