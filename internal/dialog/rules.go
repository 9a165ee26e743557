package dialog

import (
	"context"
	"strconv"
	"strings"

	"github.com/wolfman30/salon-concierge/internal/bookings"
	"github.com/wolfman30/salon-concierge/internal/customers"
	"github.com/wolfman30/salon-concierge/internal/extract"
	"github.com/wolfman30/salon-concierge/internal/session"
	"github.com/wolfman30/salon-concierge/internal/suggest"
)

type turnInput struct {
	text  string
	state session.State
}

func newTurnInput(text string, state session.State) *turnInput {
	return &turnInput{text: text, state: state}
}

type outcome struct {
	reply      string
	next       session.State
	missing    []string
	bookingID  int64
	customerID int64
}

type rule struct {
	intent Intent
	match  func(t *turnInput) bool
	handle func(e *Engine, ctx context.Context, t *turnInput) (outcome, error)
}

// rules are evaluated in order and the first match handles the turn.
var rules = []rule{
	{
		intent: IntentContinuation,
		match:  func(t *turnInput) bool { return t.state.ExpectingProfile() },
		handle: (*Engine).handleContinuation,
	},
	{
		intent: IntentAffirmative,
		match: func(t *turnInput) bool {
			return t.state.AskedProfileAfterBooking() && IsAffirmative(t.text)
		},
		handle: (*Engine).handleAffirmative,
	},
	{
		intent: IntentBooking,
		match:  func(t *turnInput) bool { return IsBookingRequest(t.text) },
		handle: (*Engine).handleBooking,
	},
	{
		// A profile message that already carries a phone is a save even when
		// it mentions face or skin.
		intent: IntentProfileSave,
		match: func(t *turnInput) bool {
			if !IsProfileSave(t.text) {
				return false
			}
			_, ok := extract.Phone(t.text)
			return ok
		},
		handle: (*Engine).handleProfileSave,
	},
	{
		intent: IntentSuggestion,
		match:  func(t *turnInput) bool { return IsSuggestionRequest(t.text) },
		handle: (*Engine).handleSuggestion,
	},
	{
		intent: IntentProfileSave,
		match:  func(t *turnInput) bool { return IsProfileSave(t.text) },
		handle: (*Engine).handleProfileSave,
	},
	{
		intent: IntentFallback,
		match:  func(*turnInput) bool { return true },
		handle: (*Engine).handleFallback,
	},
}

func (e *Engine) handleContinuation(_ context.Context, t *turnInput) (outcome, error) {
	p := e.extractors.Profile(t.text, extract.ContinuationVocabulary)
	if missing := profileMissing(p); len(missing) > 0 {
		return outcome{reply: replyContinuationMissing(missing), next: t.state, missing: missing}, nil
	}
	next := t.state
	next.Phase = session.PhaseIdle
	return outcome{reply: recommend(p, t.state.LastService), next: next}, nil
}

func (e *Engine) handleAffirmative(_ context.Context, t *turnInput) (outcome, error) {
	next := t.state
	next.Phase = session.PhaseAwaitingProfile
	return outcome{reply: replyAskProfile, next: next}, nil
}

func (e *Engine) handleBooking(ctx context.Context, t *turnInput) (outcome, error) {
	f := e.extractors.Booking(t.text)
	req := bookings.CreateRequest{
		Name:    f.Name,
		Phone:   f.Phone,
		Gender:  f.Gender,
		Age:     parseAge(f.Age),
		Service: f.Service,
		Date:    f.Date,
		Time:    f.Time,
	}
	if missing := req.Missing(); len(missing) > 0 {
		return outcome{reply: replyBookingMissing(missing), next: t.state, missing: missing}, nil
	}

	b, err := e.bookings.CreateTentative(ctx, req)
	if err != nil {
		return outcome{}, err
	}
	e.metrics.BookingCreated()
	next := t.state
	next.Phase = session.PhaseAwaitingYesNo
	next.LastBookingID = b.ID
	next.LastService = b.Service
	return outcome{reply: replyBookingCreated(b.ID), next: next, bookingID: b.ID}, nil
}

func (e *Engine) handleProfileSave(ctx context.Context, t *turnInput) (outcome, error) {
	f := e.extractors.Booking(t.text)
	if f.Name == "" || f.Phone == "" {
		var missing []string
		if f.Name == "" {
			missing = append(missing, FieldName)
		}
		if f.Phone == "" {
			missing = append(missing, FieldPhone)
		}
		return outcome{reply: replyProfileNeedsContact, next: t.state, missing: missing}, nil
	}
	p := e.extractors.Profile(t.text, extract.ProfileVocabulary)
	c, err := e.customers.Save(ctx, customers.SaveRequest{
		Name:      f.Name,
		Phone:     f.Phone,
		Gender:    p.Gender,
		Age:       parseAge(p.Age),
		SkinTone:  p.SkinTone,
		FaceShape: p.FaceShape,
	})
	if err != nil {
		return outcome{}, err
	}
	e.metrics.CustomerSaved()
	return outcome{reply: replyProfileSaved(c.Name), next: t.state, customerID: c.ID}, nil
}

func (e *Engine) handleSuggestion(_ context.Context, t *turnInput) (outcome, error) {
	p := e.extractors.Profile(t.text, extract.SuggestionVocabulary)
	if missing := profileMissing(p); len(missing) > 0 {
		return outcome{
			reply:   replySuggestionMissing(missing, extract.SuggestionVocabulary),
			next:    t.state,
			missing: missing,
		}, nil
	}
	return outcome{reply: recommend(p, ""), next: t.state}, nil
}

func (e *Engine) handleFallback(_ context.Context, t *turnInput) (outcome, error) {
	return outcome{reply: replyFallback, next: t.state}, nil
}

func profileMissing(p extract.ProfileFields) []string {
	var missing []string
	if p.FaceShape == "" {
		missing = append(missing, FieldFaceShape)
	}
	if p.SkinTone == "" {
		missing = append(missing, FieldSkinTone)
	}
	if p.Gender == "" {
		missing = append(missing, FieldGender)
	}
	if p.Age == "" {
		missing = append(missing, FieldAge)
	}
	return missing
}

func recommend(p extract.ProfileFields, service string) string {
	age := 0
	if a := parseAge(p.Age); a != nil {
		age = *a
	}
	return suggest.Recommend(suggest.Profile{
		FaceShape: p.FaceShape,
		SkinTone:  p.SkinTone,
		Gender:    p.Gender,
		Age:       age,
		Service:   service,
	})
}

func parseAge(raw string) *int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n <= 0 {
		return nil
	}
	return &n
}
