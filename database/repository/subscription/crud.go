package subscriptionRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"genzhealth/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (r *mongoSubscriptionRepo) Create(ctx context.Context, sub models.Subscription) error {
	_, err := r.coll.InsertOne(ctx, sub)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicateTransaction
	}
	return err
}

func (r *mongoSubscriptionRepo) GetByTxHash(ctx context.Context, txHash string) (*models.Subscription, error) {
	var sub models.Subscription
	err := r.coll.FindOne(ctx, bson.M{"tx_hash": txHash}).Decode(&sub)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *mongoSubscriptionRepo) ActiveForUser(ctx context.Context, userID string, now time.Time) (*models.Subscription, error) {
	filter := bson.M{
		"user_id":    userID,
		"starts_at":  bson.M{"$lte": now},
		"expires_at": bson.M{"$gt": now},
	}
	opts := options.FindOne().SetSort(bson.D{{Key: "expires_at", Value: -1}})

	var sub models.Subscription
	err := r.coll.FindOne(ctx, filter, opts).Decode(&sub)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *mongoSubscriptionRepo) EnsureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "tx_hash", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_tx_hash"),
		},
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "expires_at", Value: -1}},
			Options: options.Index().SetName("user_expires_idx"),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create subscription indexes: %w", err)
	}
	return nil
}
