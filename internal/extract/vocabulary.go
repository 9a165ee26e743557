package extract

import (
	"regexp"
	"strings"
)

// Vocabulary is a named set of face-shape and skin-tone words. Different dialog
// flows accept different words, so each flow is bound to its own Vocabulary.
type Vocabulary struct {
	Name       string
	FaceShapes []string
	SkinTones  []string

	facePatterns []*regexp.Regexp
	skinPatterns []*regexp.Regexp
}

// NewVocabulary compiles word-boundary matchers for the given word lists.
// Declaration order is match priority.
func NewVocabulary(name string, faceShapes, skinTones []string) *Vocabulary {
	return &Vocabulary{
		Name:         name,
		FaceShapes:   faceShapes,
		SkinTones:    skinTones,
		facePatterns: compileWords(faceShapes),
		skinPatterns: compileWords(skinTones),
	}
}

var (
	// ContinuationVocabulary is used while a session awaits profile details
	// after a booking or an affirmative answer.
	ContinuationVocabulary = NewVocabulary("continuation",
		[]string{"oval", "round", "square", "heart", "long", "diamond", "oblong"},
		[]string{"fair", "medium", "olive", "dark", "deep", "light", "oily", "dry", "normal"},
	)

	// SuggestionVocabulary is used when a user asks for a recommendation directly.
	SuggestionVocabulary = NewVocabulary("suggestion",
		[]string{"oval", "round", "square", "heart", "diamond"},
		[]string{"fair", "medium", "olive", "dark", "deep"},
	)

	// ProfileVocabulary is used when saving a customer profile.
	ProfileVocabulary = NewVocabulary("profile",
		[]string{"oval", "round", "square", "heart", "long", "diamond"},
		[]string{"fair", "medium", "olive", "dark", "dry", "oily", "normal"},
	)
)

// FaceShape returns the first face-shape word of v found in text.
func (v *Vocabulary) FaceShape(text string) (string, bool) {
	return firstWord(text, v.FaceShapes, v.facePatterns)
}

// SkinTone returns the first skin-tone word of v found in text.
func (v *Vocabulary) SkinTone(text string) (string, bool) {
	return firstWord(text, v.SkinTones, v.skinPatterns)
}

// Has reports whether word belongs to either list of the vocabulary.
func (v *Vocabulary) Has(word string) bool {
	word = strings.ToLower(word)
	for _, w := range v.FaceShapes {
		if w == word {
			return true
		}
	}
	for _, w := range v.SkinTones {
		if w == word {
			return true
		}
	}
	return false
}

func compileWords(words []string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(words))
	for _, w := range words {
		out = append(out, regexp.MustCompile(`(?i)\b`+regexp.QuoteMeta(w)+`\b`))
	}
	return out
}

func firstWord(text string, words []string, patterns []*regexp.Regexp) (string, bool) {
	for i, re := range patterns {
		if re.MatchString(text) {
			return words[i], true
		}
	}
	return "", false
}
