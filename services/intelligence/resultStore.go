package ai

import (
	"context"
	"encoding/json"
	"time"

	"genzhealth/models"
	"genzhealth/utils"

	"github.com/go-redis/redis/v8"
)

// RedisResultStore keeps the most recent saved analysis for each user.
type RedisResultStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisResultStore(client *redis.Client, ttl time.Duration) *RedisResultStore {
	return &RedisResultStore{client: client, ttl: ttl}
}

func resultKey(userID string) string {
	return utils.LastResultKey + ":" + userID
}

// Get returns ErrNoSavedResult when nothing is stored for userID.
func (s *RedisResultStore) Get(ctx context.Context, userID string) (*models.SavedResult, error) {
	data, err := s.client.Get(ctx, resultKey(userID)).Bytes()
	if err == redis.Nil {
		return nil, ErrNoSavedResult
	}
	if err != nil {
		return nil, err
	}
	var saved models.SavedResult
	if err := json.Unmarshal(data, &saved); err != nil {
		return nil, err
	}
	return &saved, nil
}

func (s *RedisResultStore) Set(ctx context.Context, saved models.SavedResult) error {
	b, err := json.Marshal(saved)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, resultKey(saved.UserID), b, s.ttl).Err()
}

// Clear drops the cached entry for userID.
func (s *RedisResultStore) Clear(ctx context.Context, userID string) error {
	return s.client.Del(ctx, resultKey(userID)).Err()
}
