// Package extract recovers structured booking and styling-profile fields from
// free-form chat messages. Every extractor is a pure function of the text.
package extract

import (
	"regexp"
	"strconv"
	"strings"
)

// Func recovers one field from free text, reporting false when absent.
type Func func(text string) (string, bool)

// Services is the bookable service vocabulary; earlier entries win.
var Services = []string{
	"haircut", "hair color", "color", "facial", "nails", "manicure",
	"pedicure", "spa", "groom", "shave", "trim",
}

var (
	datePatterns = []*regexp.Regexp{
		regexp.MustCompile(`\d{4}-\d{2}-\d{2}`),
		regexp.MustCompile(`\d{1,2}-\d{1,2}-\d{4}`),
		regexp.MustCompile(`\d{1,2}/\d{1,2}/\d{4}`),
	}

	timeCandidatePattern = regexp.MustCompile(`(?i)\d{1,2}(?:[:.]\d{2})?\s*(?:am|pm)?`)
	phonePattern         = regexp.MustCompile(`\+?\d[\d\s-]{6,}\d`)
	namePattern          = regexp.MustCompile(`(?i)\b(?:for|my name is|i am|i'm|im)\s+([a-z][a-z]+(?:\s[a-z][a-z]+)?)`)
	malePattern          = regexp.MustCompile(`(?i)\b(?:male|man|mr|m)\b`)
	femalePattern        = regexp.MustCompile(`(?i)\b(?:female|woman|mrs|ms|miss|f)\b`)
	digitRunPattern      = regexp.MustCompile(`\d+`)

	servicePatterns = compileWords(Services)
)

const maskRune = '#'

// Date returns the first date in text as YYYY-MM-DD. Patterns are tried in the
// order YYYY-MM-DD, DD-MM-YYYY, DD/MM/YYYY; within a pattern only the leftmost
// match is considered.
func Date(text string) (string, bool) {
	for _, re := range datePatterns {
		if m := re.FindString(text); m != "" {
			if d, ok := NormalizeDate(m); ok {
				return d, true
			}
		}
	}
	return "", false
}

// Time returns the first standalone clock-like token that normalizes to HH:MM.
// Earlier unrelated numbers can still be read as an hour.
func Time(text string) (string, bool) {
	masked := maskDates(text)
	for _, loc := range timeCandidatePattern.FindAllStringIndex(masked, -1) {
		candidate := strings.TrimRight(masked[loc[0]:loc[1]], " \t\r\n\f")
		if !isolated(masked, loc[0], loc[0]+len(candidate), "+#:./", "#/") {
			continue
		}
		if t, ok := NormalizeTime(candidate); ok {
			return t, true
		}
	}
	return "", false
}

// Service returns the first service word, in vocabulary order, present in text.
func Service(text string) (string, bool) {
	return firstWord(text, Services, servicePatterns)
}

// Phone returns the first 8-15 character digit run, optionally prefixed by +,
// with spaces and hyphens removed.
func Phone(text string) (string, bool) {
	for _, m := range phonePattern.FindAllString(maskDates(text), -1) {
		raw := strings.Map(func(r rune) rune {
			if r == '-' || r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '\f' {
				return -1
			}
			return r
		}, m)
		if len(raw) >= 8 && len(raw) <= 15 {
			return raw, true
		}
	}
	return "", false
}

// Name returns one or two words following a cue such as "for" or "my name is".
func Name(text string) (string, bool) {
	m := namePattern.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	name := strings.TrimSpace(m[1])
	return name, name != ""
}

// Gender returns "male" or "female". When both word sets appear, female wins.
func Gender(text string) (string, bool) {
	gender := ""
	if malePattern.MatchString(text) {
		gender = "male"
	}
	if femalePattern.MatchString(text) {
		gender = "female"
	}
	return gender, gender != ""
}

// Age returns the first standalone two-digit number when it lies in 10-99.
func Age(text string) (string, bool) {
	masked := maskDates(text)
	for _, loc := range digitRunPattern.FindAllStringIndex(masked, -1) {
		if loc[1]-loc[0] != 2 || !isolatedWord(masked, loc[0], loc[1]) {
			continue
		}
		n, err := strconv.Atoi(masked[loc[0]:loc[1]])
		if err != nil || n < 10 || n > 99 {
			return "", false
		}
		return strconv.Itoa(n), true
	}
	return "", false
}

// maskDates overwrites every date-shaped substring so its digits cannot be
// mistaken for a phone number, an hour or an age.
func maskDates(text string) string {
	for _, re := range datePatterns {
		text = re.ReplaceAllStringFunc(text, func(m string) string {
			return strings.Repeat(string(maskRune), len(m))
		})
	}
	return text
}

// isolated reports whether text[start:end] is not glued to digits or to the
// given separator characters on either side.
func isolated(text string, start, end int, before, after string) bool {
	if start > 0 {
		c := text[start-1]
		if isDigit(c) || strings.IndexByte(before, c) >= 0 {
			return false
		}
	}
	if end < len(text) {
		c := text[end]
		if isDigit(c) || strings.IndexByte(after, c) >= 0 {
			return false
		}
	}
	return true
}

// isolatedWord is isolated plus word boundaries. A trailing '.' is accepted
// only when it ends a sentence rather than starting a decimal.
func isolatedWord(text string, start, end int) bool {
	if start > 0 && isWordByte(text[start-1]) {
		return false
	}
	if end < len(text) && isWordByte(text[end]) {
		return false
	}
	if !isolated(text, start, end, "+#:./-", "#:/") {
		return false
	}
	if end+1 < len(text) && text[end] == '.' && isDigit(text[end+1]) {
		return false
	}
	return true
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isWordByte(c byte) bool {
	return isDigit(c) || c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
