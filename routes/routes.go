package routes

import (
	"net/http"
	"time"

	"genzhealth/config"
	"genzhealth/handlers"
	"genzhealth/middleware"
	"genzhealth/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RegisterSessionRoutes registers sign-in and sign-out. Starting a session takes the
// identity token directly; the rest go through the session middleware.
func RegisterSessionRoutes(r *gin.Engine, hb *handlers.HandlerBundle, auth gin.HandlerFunc) {
	r.POST("/api/session", hb.SessionHandler.StartSessionHandler)
	api := r.Group("/api/session")
	{
		api.Use(auth)
		api.GET("", hb.SessionHandler.GetSessionHandler)
		api.DELETE("", hb.SessionHandler.EndSessionHandler)
	}
}

// RegisterAnalysisRoutes registers symptom and image analysis plus saved results.
func RegisterAnalysisRoutes(r *gin.Engine, hb *handlers.HandlerBundle, auth gin.HandlerFunc) {
	api := r.Group("/api/analysis")
	{
		api.Use(auth)
		api.POST("/symptoms", hb.AnalysisHandler.AnalyzeSymptomsHandler)
		api.POST("/image", hb.AnalysisHandler.AnalyzeImageHandler)
		api.POST("/saved", hb.AnalysisHandler.SaveResultHandler)
		api.GET("/saved", hb.AnalysisHandler.ListSavedHandler)
		api.GET("/saved/last", hb.AnalysisHandler.LastResultHandler)
	}
}

// RegisterSettingsRoutes registers the user's Gemini API key endpoints.
func RegisterSettingsRoutes(r *gin.Engine, hb *handlers.HandlerBundle, auth gin.HandlerFunc) {
	api := r.Group("/api/settings")
	{
		api.Use(auth)
		api.PUT("/api-key", hb.SettingsHandler.SetAPIKeyHandler)
		api.GET("/api-key", hb.SettingsHandler.GetAPIKeyHandler)
		api.DELETE("/api-key", hb.SettingsHandler.ClearAPIKeyHandler)
	}
}

// RegisterBookingRoutes sets up the appointment endpoints.
func RegisterBookingRoutes(r *gin.Engine, hb *handlers.HandlerBundle, auth gin.HandlerFunc) {
	bookingGroup := r.Group("/api/booking")
	{
		bookingGroup.Use(auth)
		bookingGroup.GET("/slots", hb.BookingHandler.AvailableSlotsHandler)
		bookingGroup.GET("/availability", hb.BookingHandler.CheckAvailabilityHandler)
		bookingGroup.POST("", hb.BookingHandler.CreateBookingHandler)
		bookingGroup.GET("", hb.BookingHandler.ListBookingsHandler)
		bookingGroup.GET("/:id", hb.BookingHandler.GetBookingHandler)
	}
}

// RegisterSubscriptionRoutes registers the plan catalog and ETH payment confirmation.
func RegisterSubscriptionRoutes(r *gin.Engine, hb *handlers.HandlerBundle, auth gin.HandlerFunc) {
	r.GET("/api/plans", hb.SubscriptionHandler.ListPlansHandler)
	api := r.Group("/api/subscriptions")
	{
		api.Use(auth)
		api.POST("/confirm", hb.SubscriptionHandler.ConfirmPaymentHandler)
		api.GET("/active", hb.SubscriptionHandler.ActivePlanHandler)
	}
}

// RegisterHealthRoute registers the health-check and metrics endpoints.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "services": utils.GetHealthStatus()})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle, sessions middleware.SessionResolver) {
	origins := config.AppConfig.CORSAllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.New(cors.Config{
		AllowOrigins:  origins,
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}))

	auth := middleware.SessionAuthMiddleware(sessions)

	RegisterHealthRoute(r)
	RegisterSessionRoutes(r, hb, auth)
	RegisterAnalysisRoutes(r, hb, auth)
	RegisterSettingsRoutes(r, hb, auth)
	RegisterBookingRoutes(r, hb, auth)
	RegisterSubscriptionRoutes(r, hb, auth)
}
