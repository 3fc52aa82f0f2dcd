package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ResponseFeedback is one rating left on a saved response. The latest label
// is also written onto the response itself.
type ResponseFeedback struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ResponseID string             `bson:"response_id" json:"responseId"`
	Feedback   string             `bson:"feedback" json:"feedback"`
	Rating     *float64           `bson:"rating,omitempty" json:"rating,omitempty"` // 0 (bad) to 1 (good)
	Comment    string             `bson:"comment,omitempty" json:"comment,omitempty"`
	IPAddress  string             `bson:"ip_address,omitempty" json:"ipAddress,omitempty"`
	CreatedAt  time.Time          `bson:"created_at" json:"createdAt"`
}
