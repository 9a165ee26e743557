package bookings

import "errors"

var (
	// ErrBookingNotFound is returned when no booking has the requested id.
	ErrBookingNotFound = errors.New("bookings: booking not found")

	// ErrIncomplete is returned when a required booking field is missing.
	ErrIncomplete = errors.New("bookings: required fields missing")
)
