package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"genzhealth/models"
	"genzhealth/utils"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

var (
	ErrNoSession      = errors.New("no active session")
	ErrSessionRevoked = errors.New("session was signed out")
	ErrTokenExpired   = errors.New("identity token has expired")
)

// Manager turns identity-provider tokens into explicit sessions. A session is keyed
// by the hash of the token that started it and lives as long as that token.
type Manager struct {
	client *redis.Client
	secret []byte
	logger *zap.Logger
	now    func() time.Time
}

func NewManager(client *redis.Client, secret []byte, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{client: client, secret: secret, logger: logger, now: time.Now}
}

// Start verifies token and stores a fresh session for it.
func (m *Manager) Start(ctx context.Context, token string) (*models.Session, error) {
	claims, err := utils.ParseIdentityToken(token, m.secret)
	if err != nil {
		return nil, err
	}
	id := utils.HashToken(token)
	revoked, err := utils.IsTokenRevoked(ctx, m.client, id)
	if err != nil {
		return nil, fmt.Errorf("check revocation: %w", err)
	}
	if revoked {
		return nil, ErrSessionRevoked
	}

	now := m.now().UTC()
	expiresAt := claims.ExpiresAt
	if expiresAt.IsZero() {
		expiresAt = now.Add(utils.DefaultSessionTTL)
	}
	ttl := expiresAt.Sub(now)
	if ttl <= 0 {
		return nil, ErrTokenExpired
	}

	session := models.Session{
		ID:            id,
		UserID:        claims.Subject,
		Email:         claims.Email,
		WalletAddress: claims.WalletAddress,
		StartedAt:     now,
		ExpiresAt:     expiresAt.UTC(),
	}
	if err := utils.SaveSession(ctx, m.client, session, ttl); err != nil {
		return nil, err
	}
	m.logger.Info("Session started", zap.String("user_id", session.UserID))
	return &session, nil
}

// Get returns the session previously started with token.
func (m *Manager) Get(ctx context.Context, token string) (*models.Session, error) {
	session, err := utils.GetSession(ctx, m.client, utils.HashToken(token))
	if err == redis.Nil {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, err
	}
	if session.Expired(m.now()) {
		return nil, ErrNoSession
	}
	return session, nil
}

// Resolve returns the session for token, starting one if the token is valid but
// has not been seen yet.
func (m *Manager) Resolve(ctx context.Context, token string) (*models.Session, error) {
	session, err := m.Get(ctx, token)
	if errors.Is(err, ErrNoSession) {
		return m.Start(ctx, token)
	}
	return session, err
}

// End signs the session out. The token stays revoked until it would have expired.
func (m *Manager) End(ctx context.Context, token string) error {
	id := utils.HashToken(token)
	ttl := utils.DefaultSessionTTL
	if session, err := utils.GetSession(ctx, m.client, id); err == nil {
		ttl = session.ExpiresAt.Sub(m.now())
	}
	if err := utils.DeleteSession(ctx, m.client, id); err != nil {
		return err
	}
	if ttl > 0 {
		if err := utils.RevokeToken(ctx, m.client, id, ttl); err != nil {
			return err
		}
	}
	m.logger.Info("Session ended")
	return nil
}
