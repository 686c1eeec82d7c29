package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt"
)

// IdentityClaims is the subset of the identity provider's token we rely on.
type IdentityClaims struct {
	Subject       string
	Email         string
	WalletAddress string
	ExpiresAt     time.Time
}

var (
	ErrMissingSecret = errors.New("identity token secret is not configured")
	ErrInvalidToken  = errors.New("invalid token")
)

// HashToken computes a SHA-256 hash of the token string.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// ValidateToken parses and validates a token string and returns the token if valid.
func ValidateToken(tokenString string, secret []byte) (*jwt.Token, error) {
	if len(secret) == 0 {
		return nil, ErrMissingSecret
	}
	return jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// Ensure that the token's signing method is HMAC.
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	})
}

// ParseIdentityToken validates an identity-provider token and extracts the claims
// the session layer needs.
func ParseIdentityToken(tokenString string, secret []byte) (*IdentityClaims, error) {
	token, err := ValidateToken(tokenString, secret)
	if err != nil {
		if errors.Is(err, ErrMissingSecret) {
			return nil, err
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return nil, fmt.Errorf("%w: token does not contain a valid 'sub' claim", ErrInvalidToken)
	}

	out := &IdentityClaims{Subject: sub}
	out.Email, _ = claims["email"].(string)
	out.WalletAddress, _ = claims["wallet_address"].(string)
	if exp, ok := claims["exp"].(float64); ok {
		out.ExpiresAt = time.Unix(int64(exp), 0)
	}
	return out, nil
}

// GenerateToken signs an identity-style token. The server never issues tokens to
// clients; this exists for local tooling and tests.
func GenerateToken(subject, email string, duration time.Duration, secret []byte) (string, error) {
	claims := jwt.MapClaims{
		"sub":   subject,
		"email": email,
		"iat":   time.Now().Unix(),
		"exp":   time.Now().Add(duration).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}
