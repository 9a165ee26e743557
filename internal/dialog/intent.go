// Package dialog runs the per-session chat state machine: it classifies each
// message, extracts fields, asks for what is missing and triggers bookings,
// profile saves and styling suggestions.
package dialog

import "strings"

// Intent names the branch that handled a message.
type Intent string

const (
	IntentEmpty        Intent = "empty"
	IntentContinuation Intent = "profile_continuation"
	IntentAffirmative  Intent = "affirmative"
	IntentBooking      Intent = "booking"
	IntentProfileSave  Intent = "profile_save"
	IntentSuggestion   Intent = "suggestion"
	IntentFallback     Intent = "fallback"
)

var (
	bookingKeywords = []string{"book", "appointment", "reserve", "schedule", "slot", "booked", "booking"}

	// Overlaps bookingKeywords on "haircut" and "color"; rule order decides.
	suggestionKeywords = []string{
		"hairstyle", "haircut", "hair color", "color", "groom", "grooming",
		"product", "products", "face", "skin", "suggest", "recommend",
	}

	affirmatives = map[string]struct{}{
		"yes": {}, "y": {}, "yeah": {}, "sure": {}, "ok": {}, "please": {},
	}
)

// IsBookingRequest reports whether text contains a booking keyword. Matching
// is by substring, so "booking" and "rebook" both count.
func IsBookingRequest(text string) bool {
	return containsAny(strings.ToLower(text), bookingKeywords)
}

// IsSuggestionRequest reports whether text contains a styling keyword.
func IsSuggestionRequest(text string) bool {
	return containsAny(strings.ToLower(text), suggestionKeywords)
}

// IsProfileSave reports whether text starts with "profile" or mentions "my name".
func IsProfileSave(text string) bool {
	lower := strings.ToLower(strings.TrimSpace(text))
	return strings.HasPrefix(lower, "profile") || strings.Contains(lower, "my name")
}

// IsAffirmative reports whether the whole message is a bare yes.
func IsAffirmative(text string) bool {
	_, ok := affirmatives[strings.ToLower(strings.TrimSpace(text))]
	return ok
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
