package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"genzhealth/config"
	"genzhealth/cron"
	"genzhealth/database"
	analysisRepo "genzhealth/database/repository/analysis"
	bookingRepo "genzhealth/database/repository/booking"
	subscriptionRepo "genzhealth/database/repository/subscription"
	"genzhealth/handlers"
	"genzhealth/metrics"
	"genzhealth/middleware"
	"genzhealth/routes"
	"genzhealth/services/booking"
	ai "genzhealth/services/intelligence"
	"genzhealth/services/notification"
	"genzhealth/services/session"
	"genzhealth/services/subscription"
	"genzhealth/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()
	defer logger.Sync() //nolint:errcheck

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	metrics.Register()
	database.InitDB()
	utils.InitRedis()

	// repositories.
	savedRepo := analysisRepo.NewMongoSavedResultRepo()
	bookingsRepo := bookingRepo.NewMongoBookingRepo()
	subsRepo := subscriptionRepo.NewMongoSubscriptionRepo()
	for name, ensure := range map[string]func() error{
		"saved_analyses": savedRepo.EnsureIndexes,
		"bookings":       bookingsRepo.EnsureIndexes,
		"subscriptions":  subsRepo.EnsureIndexes,
	} {
		if err := ensure(); err != nil {
			logger.Sugar().Fatalf("main: failed to create %s indexes: %v", name, err)
		}
	}

	// subscriptions.
	var verifier subscription.PaymentVerifier
	if config.AppConfig.EthRPCURL != "" {
		ethVerifier, err := subscription.DialEthVerifier(config.AppConfig.EthRPCURL, config.AppConfig.TreasuryAddress)
		if err != nil {
			logger.Sugar().Fatalf("main: failed to connect to Ethereum RPC: %v", err)
		}
		verifier = ethVerifier
	} else {
		logger.Warn("ETH_RPC_URL not set, subscription payments are disabled")
	}
	subscriptionService := subscription.NewService(subsRepo, verifier, logger)

	// analysis.
	sealSecret := config.AppConfig.APIKeySealSecret
	if sealSecret == "" {
		logger.Warn("API_KEY_SEAL_SECRET not set, falling back to the identity token secret")
		sealSecret = config.AppConfig.IdentityJWTSecret
	}
	httpClient := &http.Client{Timeout: config.AppConfig.AnalysisTimeout}
	deps := ai.ServiceDeps{
		SymptomRelay:    ai.NewPerplexityRelayClient(config.AppConfig.AnalysisAPIBaseURL, httpClient),
		Gemini:          ai.NewGeminiFactory(config.AppConfig.GeminiModel),
		ServerGeminiKey: config.AppConfig.GeminiAPIKey,
		Results:         ai.NewRedisResultStore(utils.GetCacheClient(), config.AppConfig.LastResultTTL),
		History:         savedRepo,
		Keys:            ai.NewAPIKeyStore(utils.GetCacheClient(), utils.NewSealer(sealSecret)),
		Plans:           subscriptionService,
		MaxImageBytes:   config.AppConfig.MaxImageBytes,
		Logger:          logger,
	}
	// Left nil otherwise so images go to Gemini directly.
	if config.AppConfig.ImageAnalysisURL != "" {
		deps.ImageRelay = ai.NewImageRelayClient(config.AppConfig.ImageAnalysisURL, httpClient)
	}
	aiService := ai.NewDefaultAIService(deps)

	// booking.
	clinicTZ, err := time.LoadLocation(config.AppConfig.ClinicTimezone)
	if err != nil {
		logger.Sugar().Fatalf("main: invalid CLINIC_TIMEZONE %q: %v", config.AppConfig.ClinicTimezone, err)
	}
	var mailer notification.Mailer
	if config.AppConfig.SendgridAPIKey != "" {
		mailer = notification.NewSendgridMailer(
			config.AppConfig.SendgridAPIKey,
			config.AppConfig.SendgridFromName,
			config.AppConfig.SendgridFromEmail,
			clinicTZ,
			logger,
		)
	} else {
		mailer = notification.NewLogMailer(clinicTZ, logger)
	}

	var reminders booking.ReminderScheduler
	var reminderClient *asynq.Client
	var reminderWorker *asynq.Server
	if !config.AppConfig.DisableReminderQueue {
		reminderClient = asynq.NewClient(asynq.RedisClientOpt{
			Addr:     config.AppConfig.RedisAddr,
			Password: config.AppConfig.RedisPassword,
			DB:       config.AppConfig.RedisReminderQueueDB,
		})
		reminders = booking.NewAsynqReminderScheduler(reminderClient, config.AppConfig.ReminderLeadTime)
		reminderWorker = cron.InitReminderWorker(mailer, logger)
	}

	bookingService := booking.NewDefaultBookingService(bookingsRepo, reminders, mailer, booking.NewSlotGrid(clinicTZ), logger)

	// sessions.
	sessions := session.NewManager(utils.GetAuthCacheClient(), []byte(config.AppConfig.IdentityJWTSecret), logger)

	handlerBundle := &handlers.HandlerBundle{
		SessionHandler:      handlers.NewSessionHandler(sessions),
		AnalysisHandler:     handlers.NewAnalysisHandler(aiService, config.AppConfig.MaxImageBytes),
		SettingsHandler:     handlers.NewSettingsHandler(aiService, config.AppConfig.GeminiAPIKey != ""),
		BookingHandler:      handlers.NewBookingHandler(bookingService, logger),
		SubscriptionHandler: handlers.NewSubscriptionHandler(subscriptionService),
	}

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware(config.AppConfig.MaxRequestsPerMin))
	routes.RegisterRoutes(router, handlerBundle, sessions)

	monitorCtx, stopMonitor := context.WithCancel(context.Background())
	defer stopMonitor()
	utils.StartHealthMonitor(
		monitorCtx,
		config.AppConfig.HealthCheckInterval,
		[]*redis.Client{utils.GetCacheClient(), utils.GetAuthCacheClient()},
		database.MongoClient,
	)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), config.AppConfig.ShutdownGracePeriod)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("main: server forced to shutdown", zap.Error(err))
	}
	if reminderWorker != nil {
		reminderWorker.Shutdown()
	}
	if reminderClient != nil {
		if err := reminderClient.Close(); err != nil {
			logger.Warn("main: failed to close reminder queue client", zap.Error(err))
		}
	}
	if err := database.Disconnect(ctx); err != nil {
		logger.Warn("main: failed to disconnect MongoDB", zap.Error(err))
	}

	logger.Info("main: server stopped gracefully")
}
