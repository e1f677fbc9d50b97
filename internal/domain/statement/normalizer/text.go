package normalizer

import (
	"regexp"
	"strings"
	"unicode"
)

// decimalGap matches a decimal separator whose one or two fraction digits
// were split by a rendering gap, e.g. "1 500, 7 2" or "500,0 0 ₽". The
// amount must end at a rouble sign, before a trailing balance token, or at
// the end of the text.
var decimalGap = regexp.MustCompile(
	`(\d[.,]) *(\d)(?: +(\d))?( *₽| +\d{1,3}(?: \d{3})*[.,]\d{2}$| *$)`)

// CleanText collapses every run of whitespace (line breaks and NBSP
// included) into a single space and trims the result.
func CleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// NormalizeSpaces maps exotic space runes (NBSP, thin and figure spaces) to a
// plain space while keeping line breaks intact.
func NormalizeSpaces(s string) string {
	return strings.Map(func(r rune) rune {
		if r != '\n' && r != '\r' && unicode.IsSpace(r) {
			return ' '
		}
		return r
	}, s)
}

// Lines splits page text into cleaned, non-empty lines.
func Lines(text string) []string {
	raw := strings.Split(text, "\n")
	lines := make([]string, 0, len(raw))
	for _, line := range raw {
		if line = CleanText(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// RepairDecimalGaps glues fraction digits that the layout pulled apart, so
// "1 500, 7 2" becomes "1 500,72" and "-1 500, 7 ₽" becomes "-1 500,7 ₽".
// Numbers outside an amount position are left alone. The input is expected
// to be CleanText output.
func RepairDecimalGaps(s string) string {
	return decimalGap.ReplaceAllString(s, "${1}${2}${3}${4}")
}
