package utils

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"genzhealth/models"

	"github.com/go-redis/redis/v8"
)

// SaveSession stores session under its ID until ttl elapses.
func SaveSession(ctx context.Context, client *redis.Client, session models.Session, ttl time.Duration) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := client.Set(ctx, AuthCachePrefix+session.ID, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// GetSession returns redis.Nil when no session is stored under sessionID.
func GetSession(ctx context.Context, client *redis.Client, sessionID string) (*models.Session, error) {
	data, err := client.Get(ctx, AuthCachePrefix+sessionID).Bytes()
	if err != nil {
		return nil, err
	}
	var session models.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &session, nil
}

func DeleteSession(ctx context.Context, client *redis.Client, sessionID string) error {
	return client.Del(ctx, AuthCachePrefix+sessionID).Err()
}

// RevokeToken marks a token hash as signed out until ttl elapses.
func RevokeToken(ctx context.Context, client *redis.Client, tokenHash string, ttl time.Duration) error {
	return client.Set(ctx, RevokedTokenPrefix+tokenHash, "1", ttl).Err()
}

func IsTokenRevoked(ctx context.Context, client *redis.Client, tokenHash string) (bool, error) {
	n, err := client.Exists(ctx, RevokedTokenPrefix+tokenHash).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
