package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// CanonicalDateLayout is the YYYY-MM-DD form every extracted date is rendered in.
const CanonicalDateLayout = "2006-01-02"

// dateLayouts are tried in order; the first layout that parses a real calendar
// date wins.
var dateLayouts = []string{
	CanonicalDateLayout, // YYYY-MM-DD
	"2-1-2006",          // DD-MM-YYYY
	"2/1/2006",          // DD/MM/YYYY
}

var (
	clock24Pattern  = regexp.MustCompile(`^(\d{1,2}):(\d{2})$`)
	clock12Pattern  = regexp.MustCompile(`^(\d{1,2}):?(\d{2})?(am|pm)$`)
	bareHourPattern = regexp.MustCompile(`^(\d{1,2})$`)
)

// NormalizeDate canonicalizes a raw date substring to YYYY-MM-DD.
func NormalizeDate(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format(CanonicalDateLayout), true
		}
	}
	return "", false
}

// NormalizeTime canonicalizes a raw time substring to 24-hour HH:MM.
//
// Accepted shapes, in order: H:MM (24h), H[:MM]am/pm (12h), bare H.
// A dot is treated as the hour/minute separator ("15.30").
func NormalizeTime(raw string) (string, bool) {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.ReplaceAll(s, ".", ":")
	s = strings.Join(strings.Fields(s), "")
	if s == "" {
		return "", false
	}

	if m := clock24Pattern.FindStringSubmatch(s); m != nil {
		h, _ := strconv.Atoi(m[1])
		mm, _ := strconv.Atoi(m[2])
		if validClock(h, mm) {
			return formatClock(h, mm), true
		}
	}

	if m := clock12Pattern.FindStringSubmatch(s); m != nil {
		h, _ := strconv.Atoi(m[1])
		mm := 0
		if m[2] != "" {
			mm, _ = strconv.Atoi(m[2])
		}
		switch m[3] {
		case "pm":
			if h != 12 {
				h += 12
			}
		case "am":
			if h == 12 {
				h = 0
			}
		}
		if validClock(h, mm) {
			return formatClock(h, mm), true
		}
	}

	if m := bareHourPattern.FindStringSubmatch(s); m != nil {
		h, _ := strconv.Atoi(m[1])
		if validClock(h, 0) {
			return formatClock(h, 0), true
		}
	}

	return "", false
}

func validClock(h, mm int) bool {
	return h >= 0 && h < 24 && mm >= 0 && mm < 60
}

func formatClock(h, mm int) string {
	return fmt.Sprintf("%02d:%02d", h, mm)
}
