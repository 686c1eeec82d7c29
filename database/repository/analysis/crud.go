package analysisRepo

import (
	"context"
	"fmt"
	"time"

	"genzhealth/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Create inserts a saved result and returns its ID.
func (r *mongoSavedResultRepo) Create(ctx context.Context, result models.SavedResult) (string, error) {
	if result.ID == "" {
		result.ID = uuid.New().String()
	}
	if result.SavedAt.IsZero() {
		result.SavedAt = time.Now().UTC()
	}

	if _, err := r.coll.InsertOne(ctx, result); err != nil {
		return "", fmt.Errorf("failed to insert saved analysis: %w", err)
	}
	return result.ID, nil
}

// ListByUser returns a user's saved results, newest first.
func (r *mongoSavedResultRepo) ListByUser(ctx context.Context, userID string) ([]models.SavedResult, error) {
	opts := options.Find().SetSort(bson.D{{Key: "savedAt", Value: -1}})
	cursor, err := r.coll.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	results := []models.SavedResult{}
	if err := cursor.All(ctx, &results); err != nil {
		return nil, err
	}
	return results, nil
}

func (r *mongoSavedResultRepo) CountByUser(ctx context.Context, userID string) (int64, error) {
	return r.coll.CountDocuments(ctx, bson.M{"userId": userID})
}

func (r *mongoSavedResultRepo) EnsureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_id"),
		},
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "savedAt", Value: -1}},
			Options: options.Index().SetName("user_saved_at_idx"),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create saved analysis indexes: %w", err)
	}
	return nil
}
