package booking

import (
	"net/mail"
	"strings"
	"time"
	"unicode"

	"genzhealth/models"
)

const (
	minNameLength   = 2
	minPhoneDigits  = 10
	minReasonLength = 5
)

// ValidateBookingInput trims in and checks it against the booking form rules and the
// slot grid.
func ValidateBookingInput(in *models.BookingInput, grid SlotGrid, now time.Time) error {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Reason = strings.TrimSpace(in.Reason)

	if len([]rune(in.Name)) < minNameLength {
		return newBookingError("name", "Name must be at least 2 characters")
	}
	if addr, err := mail.ParseAddress(in.Email); err != nil || addr.Address != in.Email {
		return newBookingError("email", "Please enter a valid email address")
	}
	if countDigits(in.Phone) < minPhoneDigits {
		return newBookingError("phone", "Phone number must be at least 10 digits")
	}
	if len([]rune(in.Reason)) < minReasonLength {
		return newBookingError("reason", "Please describe your reason for the appointment")
	}
	if in.CommunicationPreference == "" {
		in.CommunicationPreference = models.PreferenceVideo
	}
	if !in.CommunicationPreference.Valid() {
		return newBookingError("communicationPreference", "Must be one of chat, call, video")
	}
	if in.AppointmentTime.IsZero() {
		return newBookingError("appointmentTime", "Please select a time slot")
	}
	if !in.AppointmentTime.After(now) {
		return newBookingError("appointmentTime", "Appointment must be in the future")
	}
	if !grid.OnGrid(in.AppointmentTime) {
		return newBookingError("appointmentTime", "Appointments start on the hour, 9:00-17:00 on weekdays, excluding 12:00")
	}
	if !in.AppointmentTime.Before(grid.WindowEnd(now)) {
		return newBookingError("appointmentTime", "Appointments can be booked at most 7 days ahead")
	}
	return nil
}

func countDigits(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsDigit(r) {
			n++
		}
	}
	return n
}
