package normalizer

import (
	"regexp"
	"strings"
	"time"

	"cloud.google.com/go/civil"
)

var (
	leadingDate = regexp.MustCompile(`^\d{1,4}[.\-/]\d{1,2}[.\-/]\d{2,4}`)
	timeToken   = regexp.MustCompile(`\d{1,2}:\d{2}(?::\d{2})?`)
)

// dateLayouts are tried in order; the first layout that parses wins.
var dateLayouts = []string{
	"2.1.2006",
	"2.1.06",
	"2/1/2006",
	"2006-1-2",
	"2-1-2006",
}

// ParseDate extracts the date token at the front of raw, ignoring anything
// after it ("17.01.2026 07:43 281543" is 2026-01-17). Impossible calendar
// dates such as 31.02.2024 are rejected.
func ParseDate(raw string) (civil.Date, bool) {
	token := leadingDate.FindString(strings.TrimSpace(raw))
	if token == "" {
		return civil.Date{}, false
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, token); err == nil {
			return civil.DateOf(t), true
		}
	}
	return civil.Date{}, false
}

// ParseTime returns the first HH:MM or HH:MM:SS token found anywhere in raw,
// verbatim.
func ParseTime(raw string) (string, bool) {
	t := timeToken.FindString(raw)
	return t, t != ""
}
