package handlers

import (
	"genzhealth/middleware"
	"genzhealth/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// getLogger retrieves a Zap logger from the Gin context or falls back to the global one.
func getLogger(c *gin.Context) *zap.Logger {
	if l, exists := c.Get("logger"); exists {
		if logger, ok := l.(*zap.Logger); ok {
			return logger
		}
	}
	return utils.GetLogger()
}

// currentUserID returns the session's user; routes using it sit behind the session
// middleware, so a missing session is a wiring bug.
func currentUserID(c *gin.Context) string {
	if sess, ok := middleware.SessionFrom(c); ok {
		return sess.UserID
	}
	return ""
}
