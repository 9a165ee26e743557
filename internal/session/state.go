// Package session owns per-conversation dialog state and the stores that keep it.
package session

import (
	"context"
	"errors"
	"time"
)

// Phase is what the dialog is waiting for. A session is in exactly one phase,
// so "expecting a profile" and "asked about a profile after booking" can never
// both hold.
type Phase string

const (
	PhaseIdle            Phase = "idle"
	PhaseAwaitingProfile Phase = "awaiting_profile"
	PhaseAwaitingYesNo   Phase = "awaiting_yes_no"
)

// Valid reports whether p is one of the known phases.
func (p Phase) Valid() bool {
	switch p {
	case PhaseIdle, PhaseAwaitingProfile, PhaseAwaitingYesNo:
		return true
	}
	return false
}

// State is the dialog state of one session. LastService is the service of the
// last booking and tailors the follow-up styling advice.
type State struct {
	Phase         Phase     `json:"phase"`
	LastBookingID int64     `json:"last_booking_id,omitempty"`
	LastService   string    `json:"last_service,omitempty"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// New returns the state of a never-seen session.
func New() State {
	return State{Phase: PhaseIdle}
}

// ExpectingProfile is true while face, skin, gender and age are awaited.
func (s State) ExpectingProfile() bool { return s.Phase == PhaseAwaitingProfile }

// AskedProfileAfterBooking is true after a booking until a yes/no is answered.
func (s State) AskedProfileAfterBooking() bool { return s.Phase == PhaseAwaitingYesNo }

func (s State) normalized() State {
	if !s.Phase.Valid() {
		s.Phase = PhaseIdle
	}
	return s
}

// ErrEmptyID is returned when a store is called without a session id.
var ErrEmptyID = errors.New("session: id required")

// Store keeps session state by id. Get returns New() for unknown ids.
type Store interface {
	Get(ctx context.Context, id string) (State, error)
	Put(ctx context.Context, id string, state State) error
	Delete(ctx context.Context, id string) error
}

// Locker serializes work on a single session id. The returned func releases
// the lock and is safe to call more than once.
type Locker interface {
	Lock(ctx context.Context, id string) (unlock func(), err error)
}
