package bookings

import (
	"fmt"
	"strings"
	"time"
)

// StatusTentative is the status of every booking created from chat.
const StatusTentative = "tentative"

// Booking is a persisted appointment request.
type Booking struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Gender    string    `json:"gender,omitempty"`
	Age       *int      `json:"age,omitempty"`
	Service   string    `json:"service"`
	Date      string    `json:"date"`
	Time      string    `json:"time"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateRequest carries the fields extracted from a booking message.
// Date is YYYY-MM-DD and Time is HH:MM.
type CreateRequest struct {
	Name    string
	Phone   string
	Gender  string
	Age     *int
	Service string
	Date    string
	Time    string
}

// Missing lists the required fields that are empty, in prompt order.
func (r CreateRequest) Missing() []string {
	var missing []string
	if strings.TrimSpace(r.Service) == "" {
		missing = append(missing, "service")
	}
	if strings.TrimSpace(r.Date) == "" {
		missing = append(missing, "date")
	}
	if strings.TrimSpace(r.Time) == "" {
		missing = append(missing, "time")
	}
	if strings.TrimSpace(r.Name) == "" {
		missing = append(missing, "name")
	}
	if strings.TrimSpace(r.Phone) == "" {
		missing = append(missing, "phone")
	}
	return missing
}

// Validate returns ErrIncomplete listing every missing field in Missing order.
func (r CreateRequest) Validate() error {
	if missing := r.Missing(); len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrIncomplete, strings.Join(missing, ", "))
	}
	return nil
}
