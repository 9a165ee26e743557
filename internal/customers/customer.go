// Package customers stores styling profiles captured by the chat assistant.
package customers

import (
	"errors"
	"strings"
	"time"
)

var (
	// ErrMissingName is returned when a profile has no name.
	ErrMissingName = errors.New("customers: name is required")

	// ErrMissingPhone is returned when a profile has no phone number.
	ErrMissingPhone = errors.New("customers: phone is required")

	// ErrCustomerNotFound is returned when no customer has the requested id.
	ErrCustomerNotFound = errors.New("customers: customer not found")
)

// Customer is a saved styling profile.
type Customer struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Gender    string    `json:"gender,omitempty"`
	Age       *int      `json:"age,omitempty"`
	SkinTone  string    `json:"skin_tone,omitempty"`
	FaceShape string    `json:"face_shape,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// SaveRequest carries the profile fields extracted from a message. Only name
// and phone are required.
type SaveRequest struct {
	Name      string
	Phone     string
	Gender    string
	Age       *int
	SkinTone  string
	FaceShape string
}

// Validate checks the required fields.
func (r SaveRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return ErrMissingName
	}
	if strings.TrimSpace(r.Phone) == "" {
		return ErrMissingPhone
	}
	return nil
}
