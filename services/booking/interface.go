package booking

import (
	"context"
	"time"

	"genzhealth/models"
)

// BookingService stores simulated appointments.
type BookingService interface {
	SaveBooking(ctx context.Context, userID string, input models.BookingInput) (*models.BookingRecord, error)
	GetBooking(ctx context.Context, id string) (*models.BookingRecord, error)
	ListBookings(ctx context.Context, userID string) ([]models.BookingRecord, error)
	IsTimeSlotAvailable(ctx context.Context, t time.Time) (bool, error)
	AvailableSlots(ctx context.Context, from time.Time) ([]models.AvailableSlot, error)
}
