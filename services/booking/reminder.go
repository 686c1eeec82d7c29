package booking

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"genzhealth/models"

	"github.com/hibiken/asynq"
)

const TypeSendReminder = "reminder:send"

// ReminderScheduler queues a reminder for a confirmed booking.
type ReminderScheduler interface {
	ScheduleReminder(ctx context.Context, booking models.BookingRecord) error
}

func NewReminderTask(payload models.ReminderPayload, fireAt time.Time) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeSendReminder, b)
	opts := []asynq.Option{
		asynq.ProcessAt(fireAt),
		asynq.TaskID("reminder:" + payload.BookingID),
		asynq.MaxRetry(3),
	}
	return task, opts, nil
}

// AsynqReminderScheduler enqueues reminders lead before the appointment. Bookings made
// inside the lead window get their reminder immediately.
type AsynqReminderScheduler struct {
	client *asynq.Client
	lead   time.Duration
	now    func() time.Time
}

func NewAsynqReminderScheduler(client *asynq.Client, lead time.Duration) *AsynqReminderScheduler {
	return &AsynqReminderScheduler{client: client, lead: lead, now: time.Now}
}

func ReminderFireTime(appointment, now time.Time, lead time.Duration) time.Time {
	fireAt := appointment.Add(-lead)
	if fireAt.Before(now) {
		return now
	}
	return fireAt
}

func (s *AsynqReminderScheduler) ScheduleReminder(ctx context.Context, booking models.BookingRecord) error {
	payload := models.ReminderPayload{
		BookingID:       booking.ID,
		Name:            booking.Name,
		Email:           booking.Email,
		AppointmentTime: booking.AppointmentTime,
		Preference:      string(booking.CommunicationPreference),
	}
	task, opts, err := NewReminderTask(payload, ReminderFireTime(booking.AppointmentTime, s.now(), s.lead))
	if err != nil {
		return fmt.Errorf("build reminder task: %w", err)
	}
	if _, err := s.client.EnqueueContext(ctx, task, opts...); err != nil {
		return fmt.Errorf("enqueue reminder: %w", err)
	}
	return nil
}
