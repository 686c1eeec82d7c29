package handlers

import (
	"context"
	"errors"
	"net/http"

	"genzhealth/middleware"
	"genzhealth/models"
	"genzhealth/services/session"
	"genzhealth/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SessionService starts and ends sessions from identity-provider tokens.
type SessionService interface {
	Start(ctx context.Context, token string) (*models.Session, error)
	End(ctx context.Context, token string) error
}

type SessionHandler struct {
	Sessions SessionService
}

func NewSessionHandler(sessions SessionService) *SessionHandler {
	return &SessionHandler{Sessions: sessions}
}

// StartSessionHandler exchanges a bearer token for a session.
func (h *SessionHandler) StartSessionHandler(c *gin.Context) {
	token, ok := middleware.BearerToken(c)
	if !ok {
		utils.JSONError(c, http.StatusUnauthorized, "Missing bearer token", "")
		return
	}
	sess, err := h.Sessions.Start(c.Request.Context(), token)
	switch {
	case err == nil:
		c.JSON(http.StatusCreated, sess)
	case errors.Is(err, utils.ErrInvalidToken),
		errors.Is(err, session.ErrTokenExpired),
		errors.Is(err, session.ErrSessionRevoked):
		utils.JSONError(c, http.StatusUnauthorized, "Invalid identity token", err.Error())
	default:
		getLogger(c).Error("Failed to start session", zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "Failed to start session", "")
	}
}

func (h *SessionHandler) GetSessionHandler(c *gin.Context) {
	sess, ok := middleware.SessionFrom(c)
	if !ok {
		utils.JSONError(c, http.StatusUnauthorized, "No active session", "")
		return
	}
	c.JSON(http.StatusOK, sess)
}

func (h *SessionHandler) EndSessionHandler(c *gin.Context) {
	if err := h.Sessions.End(c.Request.Context(), middleware.SessionToken(c)); err != nil {
		getLogger(c).Error("Failed to end session", zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "Failed to sign out", "")
		return
	}
	c.Status(http.StatusNoContent)
}
