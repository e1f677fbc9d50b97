// Package money provides currency-safe totals over statement amounts using
// integer minor units and the Fowler Money pattern. Parsed amounts stay as
// exact decimals; Money is used where values are summed and displayed.
package money

import (
	"encoding/json"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// RUB is the currency of every supported statement and the fallback for
// unknown codes.
const RUB = "RUB"

// Money is a go-money value. A nil *Money reads as zero.
type Money struct {
	m *money.Money
}

func (m *Money) empty() bool { return m == nil || m.m == nil }

// New creates Money from minor units (kopecks for RUB).
func New(amountMinor int64, currencyCode string) *Money {
	return &Money{m: money.New(amountMinor, currencyCode)}
}

// NewFromDecimal converts a parsed amount, rounding half away from zero to
// the currency's minor unit.
func NewFromDecimal(amount decimal.Decimal, currencyCode string) *Money {
	currency := money.GetCurrency(currencyCode)
	if currency == nil {
		currencyCode, currency = RUB, money.GetCurrency(RUB)
	}
	minor := amount.Shift(int32(currency.Fraction)).Round(0).IntPart()
	return New(minor, currencyCode)
}

// Zero returns zero in currencyCode.
func Zero(currencyCode string) *Money {
	return New(0, currencyCode)
}

// Amount is the value in minor units.
func (m *Money) Amount() int64 {
	if m.empty() {
		return 0
	}
	return m.m.Amount()
}

// Currency is the ISO-4217 code, or "" for nil.
func (m *Money) Currency() string {
	if m.empty() {
		return ""
	}
	return m.m.Currency().Code
}

func (m *Money) IsZero() bool {
	return m.empty() || m.m.IsZero()
}

// Add fails when the currencies differ.
func (m *Money) Add(other *Money) (*Money, error) {
	switch {
	case m.empty():
		return other, nil
	case other.empty():
		return m, nil
	}
	sum, err := m.m.Add(other.m)
	if err != nil {
		return nil, err
	}
	return &Money{m: sum}, nil
}

// Sub fails when the currencies differ.
func (m *Money) Sub(other *Money) (*Money, error) {
	switch {
	case other.empty():
		return m, nil
	case m.empty():
		return &Money{m: other.m.Negative()}, nil
	}
	diff, err := m.m.Subtract(other.m)
	if err != nil {
		return nil, err
	}
	return &Money{m: diff}, nil
}

// MustAdd is Add for values known to share a currency.
func (m *Money) MustAdd(other *Money) *Money {
	sum, err := m.Add(other)
	if err != nil {
		panic(err)
	}
	return sum
}

// Display formats with the currency's grapheme, e.g. "1,234.56 ₽".
func (m *Money) Display() string {
	if m.empty() {
		return Zero(RUB).Display()
	}
	return m.m.Display()
}

// String is the fixed-scale decimal value, e.g. "1234.56".
func (m *Money) String() string {
	if m.empty() {
		return "0.00"
	}
	return m.ToDecimal().StringFixed(int32(m.m.Currency().Fraction))
}

// ToDecimal converts back to an exact decimal.
func (m *Money) ToDecimal() decimal.Decimal {
	if m.empty() {
		return decimal.Zero
	}
	return decimal.NewFromInt(m.m.Amount()).Shift(-int32(m.m.Currency().Fraction))
}

// MarshalJSON renders minor units, the decimal value and the display form.
func (m *Money) MarshalJSON() ([]byte, error) {
	if m.empty() {
		return json.Marshal(nil)
	}
	return json.Marshal(struct {
		Amount   int64  `json:"amount"`
		Value    string `json:"value"`
		Currency string `json:"currency"`
		Display  string `json:"display"`
	}{m.Amount(), m.String(), m.Currency(), m.Display()})
}
