package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type FlagType string

const (
	FlagTypeThreat   FlagType = "threat"
	FlagTypeSelfHarm FlagType = "self_harm"
)

// ContentFlag records a chat message the content filter intercepted.
type ContentFlag struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	SessionID string             `bson:"session_id,omitempty" json:"session_id,omitempty"`
	IPAddress string             `bson:"ip_address" json:"ip_address"`
	Type      FlagType           `bson:"type" json:"type"`
	Matched   string             `bson:"matched" json:"matched"`
}
