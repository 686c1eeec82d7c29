package notification

import (
	"context"

	"genzhealth/models"
)

// Mailer delivers booking emails.
type Mailer interface {
	SendBookingConfirmation(ctx context.Context, booking models.BookingRecord) error
	SendReminder(ctx context.Context, reminder models.ReminderPayload) error
}
