package services

import (
	"context"
	"log"
	"time"

	"github.com/AnshRaj112/luna-backend/internal/database"
	"github.com/AnshRaj112/luna-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const feedbackCollection = "response_feedback"

// RecordFeedbackAsync keeps the feedback history in MongoDB. The store only
// holds the latest label per response. No-op without MongoDB.
func RecordFeedbackAsync(fb models.ResponseFeedback) {
	if database.DB == nil {
		return
	}
	go func(f models.ResponseFeedback) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if f.ID.IsZero() {
			f.ID = primitive.NewObjectID()
		}
		if f.CreatedAt.IsZero() {
			f.CreatedAt = time.Now().UTC()
		}
		if _, err := database.DB.Collection(feedbackCollection).InsertOne(ctx, f); err != nil {
			log.Printf("⚠️ Failed to record feedback for %s: %v", f.ResponseID, err)
		}
	}(fb)
}

// ListFeedback returns feedback newest first, optionally for one response,
// with the total matching count. Empty without MongoDB.
func ListFeedback(ctx context.Context, responseID string, limit, skip int64) ([]models.ResponseFeedback, int64, error) {
	if database.DB == nil {
		return []models.ResponseFeedback{}, 0, nil
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	filter := bson.M{}
	if responseID != "" {
		filter["response_id"] = responseID
	}

	coll := database.DB.Collection(feedbackCollection)
	total, err := coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	findOptions := options.Find().
		SetSort(bson.M{"created_at": -1}).
		SetLimit(limit).
		SetSkip(skip)
	cursor, err := coll.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	feedback := []models.ResponseFeedback{}
	if err := cursor.All(ctx, &feedback); err != nil {
		return nil, 0, err
	}
	return feedback, total, nil
}
