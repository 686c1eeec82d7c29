package cron

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"genzhealth/config"
	"genzhealth/metrics"
	"genzhealth/models"
	"genzhealth/services/booking"
	"genzhealth/services/notification"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// InitReminderWorker runs the appointment reminder worker in the background and
// returns the server so the caller can shut it down.
func InitReminderWorker(mailer notification.Mailer, logger *zap.Logger) *asynq.Server {
	redisOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisReminderQueueDB,
	}

	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(booking.TypeSendReminder, HandleReminderTask(mailer, logger))

	go func() {
		logger.Info("Starting reminder worker")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			err := srv.Run(mux)
			if err == nil {
				return
			}
			logger.Warn("Reminder worker failed to start",
				zap.Int("attempt", attempts),
				zap.Int("max_attempts", maxAttempts),
				zap.Error(err))
			if attempts == maxAttempts {
				// Bookings still succeed without reminders.
				logger.Error("Reminder worker gave up")
				return
			}
			time.Sleep(time.Duration(attempts*2) * time.Second)
		}
	}()
	return srv
}

// HandleReminderTask delivers one appointment reminder by email.
func HandleReminderTask(mailer notification.Mailer, logger *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p models.ReminderPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			metrics.RemindersTotal.WithLabelValues("invalid").Inc()
			logger.Error("Invalid reminder payload", zap.Error(err))
			return fmt.Errorf("decode reminder: %v: %w", err, asynq.SkipRetry)
		}

		if err := mailer.SendReminder(ctx, p); err != nil {
			metrics.RemindersTotal.WithLabelValues("failed").Inc()
			logger.Warn("Failed to send reminder", zap.String("booking_id", p.BookingID), zap.Error(err))
			return err
		}
		metrics.RemindersTotal.WithLabelValues("sent").Inc()
		logger.Info("Reminder sent",
			zap.String("booking_id", p.BookingID),
			zap.Time("appointment_time", p.AppointmentTime))
		return nil
	}
}
