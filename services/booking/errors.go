package booking

import (
	"errors"
	"fmt"
)

var (
	ErrSlotUnavailable = errors.New("time slot is no longer available")
	ErrBookingNotFound = errors.New("booking not found")
)

// BookingError is a rejected booking form; Code names the offending field.
type BookingError struct {
	Code    string
	Message string
}

func (e *BookingError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func newBookingError(code, msg string) error {
	return &BookingError{Code: code, Message: msg}
}
