package subscriptionRepo

import (
	"context"
	"errors"
	"time"

	"genzhealth/database"
	"genzhealth/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// ErrDuplicateTransaction is returned when a transaction hash was already recorded.
var ErrDuplicateTransaction = errors.New("transaction already recorded")

type SubscriptionRepository interface {
	Create(ctx context.Context, sub models.Subscription) error
	GetByTxHash(ctx context.Context, txHash string) (*models.Subscription, error)
	// ActiveForUser returns the latest-expiring subscription still valid at now, or nil.
	ActiveForUser(ctx context.Context, userID string, now time.Time) (*models.Subscription, error)
	EnsureIndexes() error
}

type mongoSubscriptionRepo struct {
	coll *mongo.Collection
}

func NewMongoSubscriptionRepo() SubscriptionRepository {
	return &mongoSubscriptionRepo{
		coll: database.Database().Collection("subscriptions"),
	}
}
