package handlers

import (
	"errors"
	"net/http"

	ai "genzhealth/services/intelligence"
	"genzhealth/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type SettingsHandler struct {
	Service ai.AIService
	// ServerKeyConfigured tells clients they do not need their own key.
	ServerKeyConfigured bool
}

func NewSettingsHandler(svc ai.AIService, serverKeyConfigured bool) *SettingsHandler {
	return &SettingsHandler{Service: svc, ServerKeyConfigured: serverKeyConfigured}
}

type apiKeyRequest struct {
	APIKey string `json:"apiKey" binding:"required"`
}

type apiKeyStatus struct {
	Configured          bool   `json:"configured"`
	Masked              string `json:"masked,omitempty"`
	ServerKeyConfigured bool   `json:"serverKeyConfigured"`
}

func (h *SettingsHandler) SetAPIKeyHandler(c *gin.Context) {
	var req apiKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	if err := h.Service.SetAPIKey(c.Request.Context(), currentUserID(c), req.APIKey); err != nil {
		if errors.Is(err, ai.ErrEmptyAPIKey) {
			utils.JSONError(c, http.StatusBadRequest, "API key must not be empty", "")
			return
		}
		getLogger(c).Error("Failed to save API key", zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "Failed to save API key", "")
		return
	}
	c.JSON(http.StatusOK, apiKeyStatus{
		Configured:          true,
		Masked:              utils.MaskSecret(req.APIKey),
		ServerKeyConfigured: h.ServerKeyConfigured,
	})
}

func (h *SettingsHandler) GetAPIKeyHandler(c *gin.Context) {
	key, err := h.Service.GetAPIKey(c.Request.Context(), currentUserID(c))
	if err != nil {
		getLogger(c).Error("Failed to read API key", zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "Failed to read API key", "")
		return
	}
	c.JSON(http.StatusOK, apiKeyStatus{
		Configured:          key != "",
		Masked:              utils.MaskSecret(key),
		ServerKeyConfigured: h.ServerKeyConfigured,
	})
}

func (h *SettingsHandler) ClearAPIKeyHandler(c *gin.Context) {
	if err := h.Service.ClearAPIKey(c.Request.Context(), currentUserID(c)); err != nil {
		getLogger(c).Error("Failed to clear API key", zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "Failed to clear API key", "")
		return
	}
	c.Status(http.StatusNoContent)
}
