package normalizer

import (
	"regexp"
	"strings"
)

// CounterpartyRule extracts a counterparty name from purpose text.
type CounterpartyRule struct {
	Name    string
	Pattern *regexp.Regexp
	// Format builds the counterparty from the submatches. Nil returns the
	// first capture group (or the whole match when there is none).
	Format func(match []string) string
}

func (r CounterpartyRule) apply(text string) string {
	m := r.Pattern.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	if r.Format != nil {
		return r.Format(m)
	}
	if len(m) > 1 {
		return m[1]
	}
	return m[0]
}

// Fixed returns a Format that always yields name.
func Fixed(name string) func([]string) string {
	return func([]string) string { return name }
}

// Prefixed returns a Format that yields prefix followed by the first group.
func Prefixed(prefix string) func([]string) string {
	return func(m []string) string { return prefix + m[1] }
}

// CompactGroup returns the first group with all whitespace removed. Used for
// phone numbers printed as "+7 900 123-45-67".
func CompactGroup(m []string) string {
	return strings.Join(strings.Fields(m[1]), "")
}

// Common rules shared by several institutions.
var (
	RecipientLabelRule = CounterpartyRule{
		Name:    "recipient_label",
		Pattern: regexp.MustCompile(`(?i)получатель:\s*([^.;]+)`),
	}
	LegalEntityRule = CounterpartyRule{
		Name:    "legal_entity",
		Pattern: regexp.MustCompile(`(ООО|ПАО|АО|ИП)\s*["«“]([^"»”]+)["»”]`),
		Format: func(m []string) string {
			return m[1] + " «" + strings.TrimSpace(m[2]) + "»"
		},
	}
	PhoneTransferRule = CounterpartyRule{
		Name:    "phone_transfer",
		Pattern: regexp.MustCompile(`(?i)по\s+номеру\s+телефона\s*(\+?\d[\d\s\-]{6,}\d)`),
		Format:  CompactGroup,
	}
	ContractRule = CounterpartyRule{
		Name:    "contract",
		Pattern: regexp.MustCompile(`(?i)договор[ау]?\s+№?\s*(\d+)`),
		Format:  Prefixed("Договор "),
	}
	AccountReferenceRule = CounterpartyRule{
		Name:    "account_reference",
		Pattern: regexp.MustCompile(`(?i)сч[её]т[ау]?\s+№?\s*(\d+)`),
		Format:  Prefixed("Счёт "),
	}
)

// CounterpartyExtractor applies an ordered rule list; the first rule that
// produces a non-empty value wins.
type CounterpartyExtractor struct {
	rules []CounterpartyRule
}

// NewCounterpartyExtractor creates an extractor over rules, in order.
func NewCounterpartyExtractor(rules ...CounterpartyRule) *CounterpartyExtractor {
	return &CounterpartyExtractor{rules: rules}
}

// Extract returns the counterparty found in text, or "" when no rule matches.
func (e *CounterpartyExtractor) Extract(text string) string {
	if e == nil || text == "" {
		return ""
	}
	for _, rule := range e.rules {
		if name := trimName(rule.apply(text)); name != "" {
			return name
		}
	}
	return ""
}

func trimName(s string) string {
	return strings.Trim(CleanText(s), ` "'„“”,;:`)
}

// PurposeCleaner strips embedded dates, times and boilerplate fragments from
// purpose text before any heuristics look at it.
type PurposeCleaner struct {
	strip []*regexp.Regexp
}

var (
	embeddedDate = regexp.MustCompile(`\b\d{2}\.\d{2}\.\d{4}\b`)
	embeddedTime = regexp.MustCompile(`\b\d{2}:\d{2}(?::\d{2})?\b`)
)

// NewPurposeCleaner returns a cleaner that removes dates, times and any of
// the extra boilerplate patterns.
func NewPurposeCleaner(boilerplate ...*regexp.Regexp) *PurposeCleaner {
	strip := append([]*regexp.Regexp{embeddedDate, embeddedTime}, boilerplate...)
	return &PurposeCleaner{strip: strip}
}

// Clean returns whitespace-normalized text with every strip pattern removed.
func (c *PurposeCleaner) Clean(text string) string {
	if c == nil {
		return CleanText(text)
	}
	for _, re := range c.strip {
		text = re.ReplaceAllString(text, " ")
	}
	return CleanText(text)
}
