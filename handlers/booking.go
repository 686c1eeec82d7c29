package handlers

import (
	"errors"
	"net/http"
	"time"

	"genzhealth/models"
	"genzhealth/services/booking"
	"genzhealth/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type BookingHandler struct {
	Service booking.BookingService
	Logger  *zap.Logger
	now     func() time.Time
}

func NewBookingHandler(svc booking.BookingService, logger *zap.Logger) *BookingHandler {
	if logger == nil {
		logger = utils.GetLogger()
	}
	return &BookingHandler{Service: svc, Logger: logger, now: time.Now}
}

func (h *BookingHandler) AvailableSlotsHandler(c *gin.Context) {
	slots, err := h.Service.AvailableSlots(c.Request.Context(), h.now())
	if err != nil {
		h.Logger.Error("Failed to list slots", zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "Failed to load available slots", "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"slots": slots})
}

func (h *BookingHandler) CheckAvailabilityHandler(c *gin.Context) {
	raw := c.Query("time")
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "time must be an RFC3339 timestamp", raw)
		return
	}
	free, err := h.Service.IsTimeSlotAvailable(c.Request.Context(), t)
	if err != nil {
		h.Logger.Error("Availability check failed", zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "Failed to check availability", "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"time": t.UTC(), "available": free})
}

func (h *BookingHandler) CreateBookingHandler(c *gin.Context) {
	var input models.BookingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	record, err := h.Service.SaveBooking(c.Request.Context(), currentUserID(c), input)
	var berr *booking.BookingError
	switch {
	case err == nil:
		c.JSON(http.StatusCreated, record)
	case errors.As(err, &berr):
		c.JSON(http.StatusBadRequest, utils.ErrorResponse{Message: berr.Message, Kind: berr.Code})
	case errors.Is(err, booking.ErrSlotUnavailable):
		utils.JSONError(c, http.StatusConflict, "This time slot is no longer available. Please select another time.", "")
	default:
		h.Logger.Error("Failed to save booking", zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "Failed to save booking", "")
	}
}

func (h *BookingHandler) ListBookingsHandler(c *gin.Context) {
	list, err := h.Service.ListBookings(c.Request.Context(), currentUserID(c))
	if err != nil {
		h.Logger.Error("Failed to list bookings", zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "Failed to load bookings", "")
		return
	}
	if list == nil {
		list = []models.BookingRecord{}
	}
	c.JSON(http.StatusOK, gin.H{"bookings": list})
}

// GetBookingHandler only reveals bookings owned by the caller.
func (h *BookingHandler) GetBookingHandler(c *gin.Context) {
	record, err := h.Service.GetBooking(c.Request.Context(), c.Param("id"))
	if errors.Is(err, booking.ErrBookingNotFound) || (err == nil && record.UserID != currentUserID(c)) {
		utils.JSONError(c, http.StatusNotFound, "Booking not found", "")
		return
	}
	if err != nil {
		h.Logger.Error("Failed to load booking", zap.String("booking_id", c.Param("id")), zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "Failed to load booking", "")
		return
	}
	c.JSON(http.StatusOK, record)
}
