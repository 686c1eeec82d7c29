package booking

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	bookingRepo "genzhealth/database/repository/booking"
	"genzhealth/metrics"
	"genzhealth/models"
	"genzhealth/services/notification"
	"genzhealth/utils"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type DefaultBookingService struct {
	repo      bookingRepo.BookingRepository
	reminders ReminderScheduler
	mailer    notification.Mailer
	grid      SlotGrid
	logger    *zap.Logger
	now       func() time.Time

	// mu serializes the availability scan and insert within this process.
	mu sync.Mutex
}

// NewDefaultBookingService wires the booking service. reminders and mailer may be nil.
func NewDefaultBookingService(
	repo bookingRepo.BookingRepository,
	reminders ReminderScheduler,
	mailer notification.Mailer,
	grid SlotGrid,
	logger *zap.Logger,
) *DefaultBookingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DefaultBookingService{
		repo:      repo,
		reminders: reminders,
		mailer:    mailer,
		grid:      grid,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *DefaultBookingService) SaveBooking(ctx context.Context, userID string, input models.BookingInput) (*models.BookingRecord, error) {
	now := s.now()
	if err := ValidateBookingInput(&input, s.grid, now); err != nil {
		metrics.BookingsTotal.WithLabelValues("invalid").Inc()
		return nil, err
	}

	record := models.BookingRecord{
		ID:                      utils.BookingIDPrefix + uuid.New().String(),
		UserID:                  userID,
		Name:                    input.Name,
		Email:                   input.Email,
		Phone:                   input.Phone,
		Reason:                  input.Reason,
		CommunicationPreference: input.CommunicationPreference,
		AppointmentTime:         input.AppointmentTime.UTC(),
		Status:                  models.BookingStatusConfirmed,
		CreatedAt:               now.UTC(),
	}

	if err := s.insertIfFree(ctx, record); err != nil {
		if errors.Is(err, ErrSlotUnavailable) {
			metrics.BookingsTotal.WithLabelValues("conflict").Inc()
		} else {
			metrics.BookingsTotal.WithLabelValues("error").Inc()
		}
		return nil, err
	}
	metrics.BookingsTotal.WithLabelValues("confirmed").Inc()
	s.logger.Info("Booking confirmed",
		zap.String("booking_id", record.ID),
		zap.String("user_id", userID),
		zap.Time("appointment_time", record.AppointmentTime))

	s.afterBooking(ctx, record)
	return &record, nil
}

func (s *DefaultBookingService) insertIfFree(ctx context.Context, record models.BookingRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	free, err := s.IsTimeSlotAvailable(ctx, record.AppointmentTime)
	if err != nil {
		return fmt.Errorf("check availability: %w", err)
	}
	if !free {
		return ErrSlotUnavailable
	}
	if err := s.repo.Create(ctx, record); err != nil {
		if errors.Is(err, bookingRepo.ErrDuplicateAppointment) {
			return ErrSlotUnavailable
		}
		return fmt.Errorf("store booking: %w", err)
	}
	return nil
}

// afterBooking runs side effects whose failure must not undo a stored booking.
func (s *DefaultBookingService) afterBooking(ctx context.Context, record models.BookingRecord) {
	if s.reminders != nil {
		if err := s.reminders.ScheduleReminder(ctx, record); err != nil {
			s.logger.Warn("Failed to schedule reminder", zap.String("booking_id", record.ID), zap.Error(err))
		}
	}
	if s.mailer != nil {
		if err := s.mailer.SendBookingConfirmation(ctx, record); err != nil {
			s.logger.Warn("Failed to send confirmation email", zap.String("booking_id", record.ID), zap.Error(err))
		}
	}
}

func (s *DefaultBookingService) GetBooking(ctx context.Context, id string) (*models.BookingRecord, error) {
	record, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, err
	}
	return record, nil
}

func (s *DefaultBookingService) ListBookings(ctx context.Context, userID string) ([]models.BookingRecord, error) {
	return s.repo.ListByUser(ctx, userID)
}

// IsTimeSlotAvailable scans every stored booking for one at exactly t.
func (s *DefaultBookingService) IsTimeSlotAvailable(ctx context.Context, t time.Time) (bool, error) {
	all, err := s.repo.All(ctx)
	if err != nil {
		return false, err
	}
	for _, b := range all {
		if b.AppointmentTime.Equal(t) {
			return false, nil
		}
	}
	return true, nil
}

// AvailableSlots returns the grid slots from the given instant that nobody has booked.
func (s *DefaultBookingService) AvailableSlots(ctx context.Context, from time.Time) ([]models.AvailableSlot, error) {
	grid := s.grid.Slots(from)
	if len(grid) == 0 {
		return []models.AvailableSlot{}, nil
	}
	booked, err := s.repo.ListBetween(ctx, grid[0].Start, grid[len(grid)-1].End)
	if err != nil {
		return nil, err
	}
	taken := make(map[int64]bool, len(booked))
	for _, b := range booked {
		taken[b.AppointmentTime.Unix()] = true
	}

	free := make([]models.AvailableSlot, 0, len(grid))
	for _, slot := range grid {
		if !taken[slot.Start.Unix()] {
			free = append(free, slot)
		}
	}
	return free, nil
}
