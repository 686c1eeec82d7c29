package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"genzhealth/models"
	"genzhealth/services/session"
	"genzhealth/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	sessionKey = "session"
	tokenKey   = "sessionToken"
)

// SessionResolver is the part of session.Manager the middleware needs.
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (*models.Session, error)
}

// BearerToken returns the token from an "Authorization: Bearer" header.
func BearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	return token, token != ""
}

// SessionAuthMiddleware resolves the caller's session and stores it on the context
// for SessionFrom.
func SessionAuthMiddleware(resolver SessionResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := BearerToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, utils.ErrorResponse{Message: "Insufficient authorization"})
			return
		}

		sess, err := resolver.Resolve(c.Request.Context(), token)
		if err != nil {
			status := http.StatusUnauthorized
			if !isAuthFailure(err) {
				status = http.StatusInternalServerError
				zap.L().Error("Session lookup failed", zap.Error(err))
			}
			c.AbortWithStatusJSON(status, utils.ErrorResponse{Message: "Insufficient authorization"})
			return
		}

		c.Set(sessionKey, sess)
		c.Set(tokenKey, token)
		c.Next()
	}
}

func isAuthFailure(err error) bool {
	return errors.Is(err, utils.ErrInvalidToken) ||
		errors.Is(err, utils.ErrMissingSecret) ||
		errors.Is(err, session.ErrSessionRevoked) ||
		errors.Is(err, session.ErrTokenExpired) ||
		errors.Is(err, session.ErrNoSession)
}

// SessionFrom returns the session placed on c by SessionAuthMiddleware.
func SessionFrom(c *gin.Context) (*models.Session, bool) {
	v, ok := c.Get(sessionKey)
	if !ok {
		return nil, false
	}
	sess, ok := v.(*models.Session)
	return sess, ok && sess != nil
}

// SessionToken returns the bearer token the session was resolved from.
func SessionToken(c *gin.Context) string {
	return c.GetString(tokenKey)
}
