package ai

import (
	"context"
	"errors"
	"strings"

	"genzhealth/utils"

	"github.com/go-redis/redis/v8"
)

var ErrEmptyAPIKey = errors.New("api key must not be empty")

// APIKeyStore holds each user's own Gemini API key, sealed at rest.
type APIKeyStore struct {
	client *redis.Client
	sealer *utils.Sealer
}

func NewAPIKeyStore(client *redis.Client, sealer *utils.Sealer) *APIKeyStore {
	return &APIKeyStore{client: client, sealer: sealer}
}

func apiKeyKey(userID string) string {
	return utils.APIKeyKey + ":" + userID
}

func (s *APIKeyStore) SetAPIKey(ctx context.Context, userID, apiKey string) error {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return ErrEmptyAPIKey
	}
	sealed, err := s.sealer.Seal(apiKey)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, apiKeyKey(userID), sealed, 0).Err()
}

// GetAPIKey returns "" with a nil error when the user has not saved a key.
func (s *APIKeyStore) GetAPIKey(ctx context.Context, userID string) (string, error) {
	sealed, err := s.client.Get(ctx, apiKeyKey(userID)).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return s.sealer.Open(sealed)
}

func (s *APIKeyStore) ClearAPIKey(ctx context.Context, userID string) error {
	return s.client.Del(ctx, apiKeyKey(userID)).Err()
}
