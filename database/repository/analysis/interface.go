package analysisRepo

import (
	"context"

	"genzhealth/database"
	"genzhealth/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// SavedResultRepository is the history of analyses a user chose to keep.
type SavedResultRepository interface {
	Create(ctx context.Context, result models.SavedResult) (string, error)
	ListByUser(ctx context.Context, userID string) ([]models.SavedResult, error)
	CountByUser(ctx context.Context, userID string) (int64, error)
	EnsureIndexes() error
}

type mongoSavedResultRepo struct {
	coll *mongo.Collection
}

// NewMongoSavedResultRepo returns a SavedResultRepository backed by MongoDB.
func NewMongoSavedResultRepo() SavedResultRepository {
	return &mongoSavedResultRepo{
		coll: database.Database().Collection("saved_analyses"),
	}
}
