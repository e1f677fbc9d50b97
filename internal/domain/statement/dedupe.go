package statement

import (
	"strings"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/statement-parser/internal/domain/statement/normalizer"
)

const counterpartyKeyLimit = 50

// DedupeKey builds the composite key used to suppress duplicates across
// overlapping statement imports. Purpose, balance and time never affect it.
func DedupeKey(accountID string, date civil.Date, amount decimal.Decimal, direction Direction, counterparty string) string {
	parts := []string{
		accountID,
		date.String(),
		normalizer.FormatAmount(amount),
		string(direction),
	}
	if counterparty != "" {
		parts = append(parts, truncateRunes(counterparty, counterpartyKeyLimit))
	}
	return strings.Join(parts, "|")
}

// DedupeKey is DedupeKey over the transaction's own fields.
func (t Transaction) DedupeKey(accountID string) string {
	return DedupeKey(accountID, t.Date, t.Amount, t.Direction, t.Counterparty)
}

func truncateRunes(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit])
}
