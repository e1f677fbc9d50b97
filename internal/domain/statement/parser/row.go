// Package parser turns extracted statement content into canonical
// transactions: table rows under a header mapping, free-flowing page text
// split into blocks, and the account identifier printed on early pages.
//
// Nothing here returns an error for bad input. Every function reports
// whether it produced a value and the caller folds the results.
package parser

import (
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/statement-parser/internal/domain/statement"
	"github.com/FACorreiaa/statement-parser/internal/domain/statement/normalizer"
	"github.com/FACorreiaa/statement-parser/internal/domain/statement/sniffer"
)

// CompletedStatuses are the status cell values that mean the operation went
// through. Compared after lowercasing.
var CompletedStatuses = []string{"ok", "выполнена", "проведена"}

// RowConfig is the per-institution part of the row algorithm.
type RowConfig struct {
	// AmountRoles are tried in order when the table has a single amount
	// column instead of a debit/credit pair.
	AmountRoles []sniffer.Role
	// Unsigned is the direction of an amount with no explicit sign. The
	// zero value rejects such rows.
	Unsigned statement.Direction
	// CreditFirst checks the credit column before the debit column when a
	// table has both.
	CreditFirst bool
	// CompletedStatuses filters rows by the status column when one is
	// mapped. Blank statuses always pass. Nil disables the filter.
	CompletedStatuses []string

	CounterpartyRole sniffer.Role
	PurposeRoles     []sniffer.Role

	// Counterparty runs over the cleaned purpose when the row has no
	// counterparty cell.
	Counterparty *normalizer.CounterpartyExtractor
	// Purpose cleans every purpose cell. Nil means the default cleaner,
	// which strips embedded dates and times.
	Purpose *normalizer.PurposeCleaner
}

// RowParser converts table rows into transactions.
type RowParser struct {
	config RowConfig
}

// NewRowParser creates a row parser. AmountRoles defaults to the plain
// amount column.
func NewRowParser(config RowConfig) *RowParser {
	if len(config.AmountRoles) == 0 {
		config.AmountRoles = []sniffer.Role{sniffer.RoleAmount}
	}
	if config.Purpose == nil {
		config.Purpose = normalizer.NewPurposeCleaner()
	}
	return &RowParser{config: config}
}

// Parse converts one data row. It reports false when the row is too short
// for the mapping, its date does not parse, no non-zero amount resolves or
// its status is not a completed one.
func (p *RowParser) Parse(mapping sniffer.Mapping, row []string) (statement.Transaction, bool) {
	if len(row) < mapping.Width() {
		return statement.Transaction{}, false
	}

	rawDate := mapping.Cell(row, sniffer.RoleDate)
	date, ok := normalizer.ParseDate(rawDate)
	if !ok {
		return statement.Transaction{}, false
	}

	if !p.statusCompleted(mapping.Cell(row, sniffer.RoleStatus)) {
		return statement.Transaction{}, false
	}

	amount, direction, ok := p.resolveAmount(mapping, row)
	if !ok {
		return statement.Transaction{}, false
	}

	tx := statement.Transaction{
		Date:      date,
		Amount:    amount,
		Direction: direction,
	}
	tx.Time, _ = normalizer.ParseTime(rawDate)

	for _, role := range p.config.PurposeRoles {
		if purpose := p.config.Purpose.Clean(mapping.Cell(row, role)); purpose != "" {
			tx.Purpose = purpose
			break
		}
	}

	if p.config.CounterpartyRole != "" {
		tx.Counterparty = normalizer.CleanText(mapping.Cell(row, p.config.CounterpartyRole))
	}
	if tx.Counterparty == "" {
		tx.Counterparty = p.config.Counterparty.Extract(tx.Purpose)
	}

	if balance, ok := normalizer.NormalizeAmount(mapping.Cell(row, sniffer.RoleBalance)); ok {
		tx.Balance = decimal.NewNullDecimal(balance)
	}

	return tx, true
}

func (p *RowParser) resolveAmount(mapping sniffer.Mapping, row []string) (decimal.Decimal, statement.Direction, bool) {
	debit, debitOK := nonZeroAmount(mapping.Cell(row, sniffer.RoleDebit))
	credit, creditOK := nonZeroAmount(mapping.Cell(row, sniffer.RoleCredit))

	if mapping.Has(sniffer.RoleDebit) && mapping.Has(sniffer.RoleCredit) {
		switch {
		case p.config.CreditFirst && creditOK:
			return credit.Abs(), statement.DirectionIncome, true
		case debitOK:
			return debit.Abs(), statement.DirectionExpense, true
		case creditOK:
			return credit.Abs(), statement.DirectionIncome, true
		}
		return decimal.Zero, "", false
	}

	for _, role := range p.config.AmountRoles {
		raw := mapping.Cell(row, role)
		value, ok := nonZeroAmount(raw)
		if !ok {
			continue
		}
		direction := p.signedDirection(raw, value)
		if direction == "" {
			return decimal.Zero, "", false
		}
		return value.Abs(), direction, true
	}

	// One-sided tables: only a debit or only a credit column.
	switch {
	case debitOK:
		return debit.Abs(), statement.DirectionExpense, true
	case creditOK:
		return credit.Abs(), statement.DirectionIncome, true
	}
	return decimal.Zero, "", false
}

func (p *RowParser) signedDirection(raw string, value decimal.Decimal) statement.Direction {
	switch {
	case value.IsNegative():
		return statement.DirectionExpense
	case strings.HasPrefix(strings.TrimSpace(raw), "+"):
		return statement.DirectionIncome
	}
	return p.config.Unsigned
}

func (p *RowParser) statusCompleted(raw string) bool {
	status := strings.ToLower(normalizer.CleanText(raw))
	if status == "" || p.config.CompletedStatuses == nil {
		return true
	}
	return slices.Contains(p.config.CompletedStatuses, status)
}

func nonZeroAmount(raw string) (decimal.Decimal, bool) {
	value, ok := normalizer.NormalizeAmount(raw)
	if !ok || value.IsZero() {
		return decimal.Zero, false
	}
	return value, true
}
