// Package suggest turns a styling profile into haircut, color and product advice.
package suggest

import (
	"fmt"
	"strings"
)

// Profile is the input to Recommend. Age <= 0 means unknown.
type Profile struct {
	FaceShape string
	SkinTone  string
	Gender    string
	Age       int
	// Service, when set, adds a consultation hint for that service.
	Service string
}

// HairCondition is the product-table column, inferred from the skin tone text.
type HairCondition string

const (
	HairDry    HairCondition = "dry"
	HairOily   HairCondition = "oily"
	HairNormal HairCondition = "normal"
)

var productRules = map[string]map[HairCondition][]string{
	"male": {
		HairDry:    {"Hydrating shampoo", "Leave-in conditioner"},
		HairOily:   {"Clarifying shampoo", "Lightweight mattifying cream"},
		HairNormal: {"Balanced shampoo", "Light styling cream"},
	},
	"female": {
		HairDry:    {"Moisture-rich shampoo", "Hair oil"},
		HairOily:   {"Purifying shampoo", "Scalp scrub"},
		HairNormal: {"Sulfate-free shampoo", "heat protectant"},
	},
}

// Recommend builds the advice text. Fragments are joined in a fixed order:
// haircut, color, age note, gender note, service hint, products.
func Recommend(p Profile) string {
	fragments := []string{
		HaircutAdvice(p.FaceShape),
		ColorAdvice(p.SkinTone),
		AgeNote(p.Age),
		GenderNote(p.Gender),
		serviceHint(p.Service),
		"Product suggestions: " + strings.Join(Products(p.Gender, p.SkinTone), ", "),
	}
	out := make([]string, 0, len(fragments))
	for _, f := range fragments {
		if f != "" {
			out = append(out, f)
		}
	}
	return strings.Join(out, " ")
}

// HaircutAdvice maps a face shape to a cut recommendation.
func HaircutAdvice(faceShape string) string {
	switch strings.ToLower(strings.TrimSpace(faceShape)) {
	case "oval", "oval-shaped":
		return "Layered bob or long waves; oval faces suit most styles."
	case "round":
		return "Long layers and side parting to add angles and length."
	case "square":
		return "Soft waves or textured fringe to soften the jawline."
	case "heart":
		return "Chin-length bobs or side swept bangs."
	case "long", "oblong":
		return "Bangs or chin-length layers to shorten the face."
	default:
		return "Classic layered cuts or textured ends usually work well."
	}
}

// ColorAdvice maps a skin tone to a color recommendation by substring.
func ColorAdvice(skinTone string) string {
	skin := strings.ToLower(skinTone)
	switch {
	case strings.Contains(skin, "dark"), strings.Contains(skin, "deep"):
		return "Warm browns, caramel highlights, or rich chestnut."
	case strings.Contains(skin, "olive"):
		return "Warm honey browns or soft balayage pieces."
	case strings.Contains(skin, "fair"):
		return "Ash browns, cool blondes, or soft pastels."
	default:
		return "Neutral browns and honey tones are versatile."
	}
}

// AgeNote returns the age bracket note, or "" when age is unknown.
func AgeNote(age int) string {
	switch {
	case age <= 0:
		return ""
	case age < 25:
		return "Younger clients can try bolder colors and trendier cuts."
	case age < 45:
		return "Mid-age clients benefit from low-maintenance layers and dimension."
	default:
		return "Consider softer, face-framing layers and nourishing treatments."
	}
}

// GenderNote returns grooming advice keyed on the gender prefix.
func GenderNote(gender string) string {
	g := strings.ToLower(strings.TrimSpace(gender))
	switch {
	case strings.HasPrefix(g, "m"):
		return "For men: short textured crops, fades, or classic taper cuts are popular."
	case strings.HasPrefix(g, "f"):
		return "For women: long layers, soft waves, or textured lobs are flattering."
	default:
		return ""
	}
}

// Condition infers the hair condition from the skin tone text.
func Condition(skinTone string) HairCondition {
	skin := strings.ToLower(skinTone)
	switch {
	case strings.Contains(skin, "dry"):
		return HairDry
	case strings.Contains(skin, "oily"):
		return HairOily
	default:
		return HairNormal
	}
}

// Products returns the product list for gender and hair condition. Anything
// not starting with "m" uses the female column.
func Products(gender, skinTone string) []string {
	column := "female"
	if strings.HasPrefix(strings.ToLower(strings.TrimSpace(gender)), "m") {
		column = "male"
	}
	src := productRules[column][Condition(skinTone)]
	out := make([]string, len(src))
	copy(out, src)
	return out
}

func serviceHint(service string) string {
	service = strings.TrimSpace(service)
	if service == "" {
		return ""
	}
	return fmt.Sprintf("For %s, consider scheduling a consultation for exact pricing and timing.", service)
}
