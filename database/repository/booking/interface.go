package bookingRepo

import (
	"context"
	"errors"
	"time"

	"genzhealth/database"
	"genzhealth/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// ErrDuplicateAppointment is returned when the unique appointment_time index rejects an insert.
var ErrDuplicateAppointment = errors.New("an appointment already exists at that time")

type BookingRepository interface {
	Create(ctx context.Context, booking models.BookingRecord) error
	GetByID(ctx context.Context, id string) (*models.BookingRecord, error)
	ListByUser(ctx context.Context, userID string) ([]models.BookingRecord, error)
	// ListBetween returns bookings with from <= appointment_time < to.
	ListBetween(ctx context.Context, from, to time.Time) ([]models.BookingRecord, error)
	All(ctx context.Context) ([]models.BookingRecord, error)
	EnsureIndexes() error
}

type mongoBookingRepo struct {
	coll *mongo.Collection
}

// NewMongoBookingRepo constructs a MongoDB BookingRepository.
func NewMongoBookingRepo() BookingRepository {
	return &mongoBookingRepo{
		coll: database.Database().Collection("bookings"),
	}
}
