// Package statement holds the canonical transaction model produced by the
// institution pipelines, plus the helpers that operate on finished records:
// deduplication keys and per-document summaries.
package statement

import (
	"encoding/json"
	"errors"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/statement-parser/internal/domain/statement/normalizer"
)

// ErrParseFailed is the only error a pipeline surfaces: the document could
// not be opened or decoded at all. The underlying cause is wrapped with it.
var ErrParseFailed = errors.New("failed to parse document")

// Direction is the cash-flow sign of a transaction.
type Direction string

const (
	DirectionIncome  Direction = "income"
	DirectionExpense Direction = "expense"
	// DirectionUnknown is emitted only when nothing in the row or block
	// determines the sign.
	DirectionUnknown Direction = "unknown"
)

// Transaction is one canonical statement record.
// Amount is always a non-negative magnitude; the sign lives in Direction.
type Transaction struct {
	Date         civil.Date
	Time         string // HH:MM or HH:MM:SS as printed, "" when absent
	Amount       decimal.Decimal
	Direction    Direction
	Counterparty string
	Purpose      string
	Balance      decimal.NullDecimal
}

// Result is what a pipeline returns for one document.
type Result struct {
	Transactions      []Transaction
	AccountIdentifier string
	Stats             Stats
}

// Stats accumulates what happened while folding over a document. Skipped
// rows and rejected tables are data-quality signals, not errors.
type Stats struct {
	Pages           int  `json:"pages"`
	TablesSeen      int  `json:"tables_seen"`
	TablesRejected  int  `json:"tables_rejected"`
	TablesContinued int  `json:"tables_continued"`
	RowsSeen        int  `json:"rows_seen"`
	RowsSkipped     int  `json:"rows_skipped"`
	TextFlow        bool `json:"text_flow"`
	BlocksSeen      int  `json:"blocks_seen"`
	BlocksDropped   int  `json:"blocks_dropped"`
	// Strategy names the extraction path that produced the transactions:
	// a table strategy, "text-flow", or "" when nothing was produced.
	Strategy string `json:"strategy,omitempty"`
}

type transactionJSON struct {
	Date         string    `json:"date"`
	Time         *string   `json:"time"`
	Amount       string    `json:"amount"`
	Direction    Direction `json:"direction"`
	Counterparty *string   `json:"counterparty"`
	Purpose      *string   `json:"purpose"`
	Balance      *string   `json:"balance"`
	DedupeKey    string    `json:"dedupe_key,omitempty"`
}

// MarshalJSON renders the transaction with an ISO date, string amounts that
// keep their scale and nulls for absent optional fields.
func (t Transaction) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.wire())
}

func (t Transaction) wire() transactionJSON {
	out := transactionJSON{
		Date:         t.Date.String(),
		Time:         optional(t.Time),
		Amount:       normalizer.FormatAmount(t.Amount),
		Direction:    t.Direction,
		Counterparty: optional(t.Counterparty),
		Purpose:      optional(t.Purpose),
	}
	if t.Balance.Valid {
		b := normalizer.FormatAmount(t.Balance.Decimal)
		out.Balance = &b
	}
	return out
}

// Record is a transaction paired with its deduplication key.
type Record struct {
	Transaction
	DedupeKey string
}

// MarshalJSON renders the transaction fields plus "dedupe_key".
func (r Record) MarshalJSON() ([]byte, error) {
	out := r.wire()
	out.DedupeKey = r.DedupeKey
	return json.Marshal(out)
}

// Records keys every transaction against the document's account identifier.
func Records(accountID string, txs []Transaction) []Record {
	records := make([]Record, len(txs))
	for i, tx := range txs {
		records[i] = Record{Transaction: tx, DedupeKey: tx.DedupeKey(accountID)}
	}
	return records
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
