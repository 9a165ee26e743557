package dialog

import (
	"fmt"
	"strings"

	"github.com/wolfman30/salon-concierge/internal/extract"
)

const (
	ReplyEmpty = "Please type something so I can help."
	ReplyFault = "Sorry, something went wrong on the server. Try rephrasing or try again."

	profileExample = "Example: 'round face, fair skin, female, 28'."
	bookingExample = "Example: 'Book haircut on 2025-12-20 at 15:00 for Rahul 9876543210 (male, 28)'."

	replyAskProfile = "Great! Please tell me your face shape, skin tone (or hair condition), gender and age. " + profileExample

	replyProfileNeedsContact = "To save profile I need at least your name and phone. " +
		"Example: 'My name is Rahul 9876543210, male, 28, round face, fair skin'."

	replyFallback = "I can help with bookings and personalized hairstyle/product suggestions. " +
		"Try: 'Book haircut on 2025-12-20 at 15:00 for Rahul 9876543210 male 28' or " +
		"'Recommend hairstyle for round face fair skin female 28'."
)

// Field keys reported in Result.Missing.
const (
	FieldService   = "service"
	FieldDate      = "date"
	FieldTime      = "time"
	FieldName      = "name"
	FieldPhone     = "phone"
	FieldFaceShape = "face_shape"
	FieldSkinTone  = "skin_tone"
	FieldGender    = "gender"
	FieldAge       = "age"
)

var bookingLabels = map[string]string{
	FieldService: "service (e.g., haircut)",
	FieldDate:    "date (YYYY-MM-DD or DD-MM-YYYY)",
	FieldTime:    "time (e.g., 15:30 or 3pm)",
	FieldName:    "your name",
	FieldPhone:   "phone number",
}

var continuationLabels = map[string]string{
	FieldFaceShape: "face shape",
	FieldSkinTone:  "skin tone or hair condition",
	FieldGender:    "gender",
	FieldAge:       "age",
}

func labels(fields []string, names map[string]string) string {
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		out = append(out, names[f])
	}
	return strings.Join(out, ", ")
}

func replyBookingMissing(fields []string) string {
	return "I can book that. I still need: " + labels(fields, bookingLabels) + ". " + bookingExample
}

func replyBookingCreated(id int64) string {
	return fmt.Sprintf("Done! Tentative booking created (ID %d). We'll confirm once you verify. "+
		"Would you like to add face shape & skin tone for hairstyle suggestions?", id)
}

func replyContinuationMissing(fields []string) string {
	return "Please provide: " + labels(fields, continuationLabels) + ". " + profileExample
}

// replySuggestionMissing lists the accepted words of v so the user knows
// which ones this flow understands.
func replySuggestionMissing(fields []string, v *extract.Vocabulary) string {
	names := map[string]string{
		FieldFaceShape: "face shape (" + strings.Join(v.FaceShapes, "/") + ")",
		FieldSkinTone:  "skin tone (" + strings.Join(v.SkinTones, "/") + ")",
		FieldGender:    "gender (male/female)",
		FieldAge:       "age (number)",
	}
	return "To recommend precisely I need: " + labels(fields, names) + ". " + profileExample
}

func replyProfileSaved(name string) string {
	return fmt.Sprintf("Profile saved for %s. You can now ask 'Recommend hairstyle for me'.", name)
}
