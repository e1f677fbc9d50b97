// Package sniffer classifies the header row of an extracted table into
// semantic column roles, using per-institution keyword rules.
package sniffer

import (
	"errors"
	"slices"
	"strings"

	"github.com/cloudflare/ahocorasick"

	"github.com/FACorreiaa/statement-parser/internal/domain/statement/normalizer"
)

// ErrNotTransactionTable is returned when a header lacks a date column or
// any amount-bearing column.
var ErrNotTransactionTable = errors.New("header does not describe a transaction table")

// Role is the semantic meaning of a table column.
type Role string

const (
	RoleDate          Role = "date"
	RoleDatePosted    Role = "date_posted"
	RoleDebit         Role = "debit"
	RoleCredit        Role = "credit"
	RoleAmount        Role = "amount"
	RolePaymentAmount Role = "payment_amount"
	RoleCounterparty  Role = "counterparty"
	RolePurpose       Role = "purpose"
	RoleDescription   Role = "description"
	RoleCategory      Role = "category"
	RoleBalance       Role = "balance"
	RoleStatus        Role = "status"
	RoleCardNumber    Role = "card_number"
	RoleMCC           Role = "mcc"
	RoleCashback      Role = "cashback"
	RoleTaxID         Role = "tax_id"
)

// amountRoles are the roles that can carry a transaction amount.
var amountRoles = []Role{RoleDebit, RoleCredit, RoleAmount, RolePaymentAmount}

// Rule maps header cells to a role. A cell matches when it contains any of
// the keywords, or equals one of them when Exact is set.
type Rule struct {
	Role     Role
	Keywords []string
	Exact    bool
}

// Mapping is a role to column-index assignment for one table.
type Mapping map[Role]int

// Has reports whether role was assigned.
func (m Mapping) Has(role Role) bool {
	_, ok := m[role]
	return ok
}

// Cell returns the raw cell for role in row, or "" when the role is
// unassigned or the row is too short.
func (m Mapping) Cell(row []string, role Role) string {
	idx, ok := m[role]
	if !ok || idx >= len(row) {
		return ""
	}
	return row[idx]
}

// Width is the minimum row length that covers every mapped column.
func (m Mapping) Width() int {
	width := 0
	for _, idx := range m {
		width = max(width, idx+1)
	}
	return width
}

// Mapper classifies header rows with an ordered rule list.
// A Mapper holds no per-call state and may be shared between goroutines.
type Mapper struct {
	rules    []Rule
	keywords *ahocorasick.Matcher
	owners   []int // keyword index -> rule index
}

// NewMapper compiles rules into a Mapper. Rule order is significant: a cell
// takes the role of the first rule that matches it.
func NewMapper(rules []Rule) *Mapper {
	var (
		dict   []string
		owners []int
		seen   = make(map[string]bool)
	)
	rules = slices.Clone(rules)
	for i, rule := range rules {
		keywords := make([]string, len(rule.Keywords))
		for j, kw := range rule.Keywords {
			keywords[j] = strings.ToLower(kw)
		}
		rules[i].Keywords = keywords

		if rule.Exact {
			continue
		}
		for _, kw := range keywords {
			if seen[kw] {
				continue
			}
			seen[kw] = true
			dict = append(dict, kw)
			owners = append(owners, i)
		}
	}

	return &Mapper{
		rules:    rules,
		keywords: ahocorasick.NewStringMatcher(dict),
		owners:   owners,
	}
}

// Map classifies header. The first cell assigned to a role keeps it; later
// cells matching the same role are ignored. ErrNotTransactionTable is
// returned unless the result has a date and at least one amount-bearing role.
func (m *Mapper) Map(header []string) (Mapping, error) {
	mapping := make(Mapping)
	for col, cell := range header {
		text := strings.ToLower(normalizer.CleanText(cell))
		if text == "" {
			continue
		}

		ruleIdx := m.classify(text)
		if ruleIdx < 0 {
			continue
		}
		role := m.rules[ruleIdx].Role
		if mapping.Has(role) {
			continue
		}
		mapping[role] = col
	}

	if !mapping.Has(RoleDate) || !slices.ContainsFunc(amountRoles, mapping.Has) {
		return nil, ErrNotTransactionTable
	}
	return mapping, nil
}

// Recognizes reports whether any cell of row matches a rule, i.e. whether the
// row reads as a header at all, valid or not.
func (m *Mapper) Recognizes(row []string) bool {
	for _, cell := range row {
		text := strings.ToLower(normalizer.CleanText(cell))
		if text != "" && m.classify(text) >= 0 {
			return true
		}
	}
	return false
}

// classify returns the index of the first rule matching cell, or -1.
func (m *Mapper) classify(cell string) int {
	best := -1
	for _, hit := range m.keywords.MatchThreadSafe([]byte(cell)) {
		if owner := m.owners[hit]; best < 0 || owner < best {
			best = owner
		}
	}

	for i, rule := range m.rules {
		if best >= 0 && i >= best {
			break
		}
		if rule.Exact && slices.Contains(rule.Keywords, cell) {
			return i
		}
	}
	return best
}
