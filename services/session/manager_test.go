package session

import (
	"context"
	"testing"
	"time"

	"genzhealth/utils"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/golang-jwt/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("identity-secret")

func newTestManager(t *testing.T) (*Manager, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewManager(client, testSecret, nil), mr
}

func signToken(t *testing.T, claims jwt.MapClaims, secret []byte) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	require.NoError(t, err)
	return token
}

func TestSessionLifecycle(t *testing.T) {
	m, mr := newTestManager(t)
	ctx := context.Background()
	token := signToken(t, jwt.MapClaims{
		"sub":            "user-1",
		"email":          "ada@example.com",
		"wallet_address": "0x00000000000000000000000000000000000000cc",
		"exp":            time.Now().Add(time.Hour).Unix(),
	}, testSecret)

	_, err := m.Get(ctx, token)
	assert.ErrorIs(t, err, ErrNoSession)

	started, err := m.Start(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", started.UserID)
	assert.Equal(t, "ada@example.com", started.Email)
	assert.Equal(t, "0x00000000000000000000000000000000000000cc", started.WalletAddress)
	assert.Equal(t, utils.HashToken(token), started.ID)
	assert.True(t, mr.Exists(utils.AuthCachePrefix+started.ID))
	ttl := mr.TTL(utils.AuthCachePrefix + started.ID)
	assert.InDelta(t, time.Hour.Seconds(), ttl.Seconds(), 5)

	got, err := m.Get(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, started.UserID, got.UserID)

	require.NoError(t, m.End(ctx, token))
	_, err = m.Get(ctx, token)
	assert.ErrorIs(t, err, ErrNoSession)

	_, err = m.Resolve(ctx, token)
	assert.ErrorIs(t, err, ErrSessionRevoked)
}

func TestResolveStartsSession(t *testing.T) {
	m, _ := newTestManager(t)
	token := signToken(t, jwt.MapClaims{"sub": "user-2"}, testSecret)

	s, err := m.Resolve(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "user-2", s.UserID)
	assert.WithinDuration(t, time.Now().Add(utils.DefaultSessionTTL), s.ExpiresAt, 5*time.Second)
}

func TestStartRejectsBadTokens(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	_, err := m.Start(ctx, "not-a-jwt")
	assert.ErrorIs(t, err, utils.ErrInvalidToken)

	forged := signToken(t, jwt.MapClaims{"sub": "user-1"}, []byte("other-secret"))
	_, err = m.Start(ctx, forged)
	assert.ErrorIs(t, err, utils.ErrInvalidToken)

	expired := signToken(t, jwt.MapClaims{"sub": "user-1", "exp": time.Now().Add(-time.Minute).Unix()}, testSecret)
	_, err = m.Start(ctx, expired)
	assert.ErrorIs(t, err, utils.ErrInvalidToken)

	noSubject := signToken(t, jwt.MapClaims{"email": "x@example.com"}, testSecret)
	_, err = m.Start(ctx, noSubject)
	assert.ErrorIs(t, err, utils.ErrInvalidToken)
}

func TestStartWithoutSecret(t *testing.T) {
	mr := miniredis.RunT(t)
	m := NewManager(redis.NewClient(&redis.Options{Addr: mr.Addr()}), nil, nil)
	_, err := m.Start(context.Background(), "anything")
	assert.ErrorIs(t, err, utils.ErrMissingSecret)
}
