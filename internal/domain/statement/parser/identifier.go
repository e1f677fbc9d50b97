package parser

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/FACorreiaa/statement-parser/internal/domain/statement/normalizer"
)

// DefaultIdentifierPages is how many leading pages are scanned for the
// account identifier.
const DefaultIdentifierPages = 3

// IdentifierPattern is one way an institution prints the account identifier.
type IdentifierPattern struct {
	Pattern *regexp.Regexp
	// Format turns the submatches into the identifier. Nil returns the first
	// capture group, or the whole match when there is none. An empty result
	// lets the next pattern try.
	Format func(match []string) string
}

// IdentifierExtractor scans the first pages of a document for an account
// number, masked card or contract reference.
type IdentifierExtractor struct {
	patterns  []IdentifierPattern
	pageLimit int
}

// NewIdentifierExtractor creates an extractor. pageLimit <= 0 means
// DefaultIdentifierPages.
func NewIdentifierExtractor(pageLimit int, patterns ...IdentifierPattern) *IdentifierExtractor {
	if pageLimit <= 0 {
		pageLimit = DefaultIdentifierPages
	}
	return &IdentifierExtractor{patterns: patterns, pageLimit: pageLimit}
}

// Extract returns the first identifier found, page by page and pattern by
// pattern, or "" when none of the leading pages has one.
func (e *IdentifierExtractor) Extract(pages []string) string {
	if len(pages) > e.pageLimit {
		pages = pages[:e.pageLimit]
	}

	for _, page := range pages {
		text := normalizer.NormalizeSpaces(page)
		for _, p := range e.patterns {
			m := p.Pattern.FindStringSubmatch(text)
			if m == nil {
				continue
			}
			if id := p.format(m); id != "" {
				return id
			}
		}
	}
	return ""
}

func (p IdentifierPattern) format(m []string) string {
	if p.Format != nil {
		return p.Format(m)
	}
	if len(m) > 1 {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(m[0])
}

// Digits keeps only the digits of the first group (or the whole match).
func Digits(m []string) string {
	src := m[0]
	if len(m) > 1 {
		src = m[1]
	}
	return strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, src)
}

// AccountDigits is Digits, but only accepts a full 20-digit account number.
func AccountDigits(m []string) string {
	if d := Digits(m); len(d) == 20 {
		return d
	}
	return ""
}

// MaskedCard renders the last four card digits as "*1234".
func MaskedCard(m []string) string {
	d := Digits(m)
	if len(d) < 4 {
		return ""
	}
	return "*" + d[len(d)-4:]
}
