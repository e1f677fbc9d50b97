// Package normalizer turns raw statement fragments into canonical values:
// locale-ambiguous amounts, dates and times, whitespace-mangled text and
// free-text counterparties. Every extraction path in the statement pipelines
// goes through these functions; none of them reimplement the rules.
package normalizer

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

const currencySymbols = "₽$€£"

var (
	trailingDecimalComma = regexp.MustCompile(`,\d{1,2}$`)
	nonNumeric           = regexp.MustCompile(`[^\d.\-]`)
)

// NormalizeAmount parses a raw amount such as "1 234,56 ₽", "-1,234.56" or
// "+500.00" into an exact signed decimal. It returns false when the fragment
// holds no parseable number.
//
// The comma/dot disambiguation is evaluated in a fixed order:
//  1. currency symbols and every whitespace rune (NBSP included) are dropped
//  2. a trailing ",d" or ",dd" with no dot anywhere marks the comma as decimal
//  3. otherwise, when both comma and dot appear, commas are thousands grouping
//  4. otherwise a lone comma is the decimal separator
//  5. anything left that is not a digit, dot or minus is stripped
func NormalizeAmount(raw string) (decimal.Decimal, bool) {
	s := strings.Map(func(r rune) rune {
		switch {
		case unicode.IsSpace(r), strings.ContainsRune(currencySymbols, r):
			return -1
		case r == '−' || r == '–':
			return '-'
		}
		return r
	}, raw)
	if s == "" || s == "-" {
		return decimal.Zero, false
	}

	hasDot := strings.Contains(s, ".")
	hasComma := strings.Contains(s, ",")

	switch {
	case !hasDot && trailingDecimalComma.MatchString(s):
		i := strings.LastIndex(s, ",")
		s = s[:i] + "." + s[i+1:]
	case hasComma && hasDot:
		s = strings.ReplaceAll(s, ",", "")
	case hasComma:
		s = strings.ReplaceAll(s, ",", ".")
	}

	s = nonNumeric.ReplaceAllString(s, "")
	if s == "" || s == "-" {
		return decimal.Zero, false
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// FormatAmount renders d keeping the scale it was parsed with, so "150,00"
// round-trips as "150.00" rather than "150".
func FormatAmount(d decimal.Decimal) string {
	if exp := d.Exponent(); exp < 0 {
		return d.StringFixed(-exp)
	}
	return d.String()
}
