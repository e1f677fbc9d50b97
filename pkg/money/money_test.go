package money

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFromDecimal(t *testing.T) {
	tests := []struct {
		name     string
		amount   string
		currency string
		minor    int64
		code     string
	}{
		{name: "roubles", amount: "1234.56", currency: RUB, minor: 123456, code: RUB},
		{name: "rounds half away from zero", amount: "0.005", currency: RUB, minor: 1, code: RUB},
		{name: "integer", amount: "500", currency: "EUR", minor: 50000, code: "EUR"},
		{name: "unknown currency falls back to RUB", amount: "1.10", currency: "XXX_UNKNOWN", minor: 110, code: RUB},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewFromDecimal(decimal.RequireFromString(tt.amount), tt.currency)
			assert.Equal(t, tt.minor, m.Amount())
			assert.Equal(t, tt.code, m.Currency())
		})
	}
}

func TestMoney_Arithmetic(t *testing.T) {
	a := New(10050, RUB)
	b := New(2525, RUB)

	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.Equal(t, "125.75", sum.String())

	diff, err := b.Sub(a)
	require.NoError(t, err)
	assert.Equal(t, "-75.25", diff.String())

	_, err = a.Add(New(1, "USD"))
	assert.Error(t, err)

	assert.Panics(t, func() { a.MustAdd(New(1, "EUR")) })
}

func TestMoney_NilReceiver(t *testing.T) {
	var m *Money

	assert.True(t, m.IsZero())
	assert.Equal(t, int64(0), m.Amount())
	assert.Equal(t, "0.00", m.String())

	sum, err := m.Add(New(100, RUB))
	require.NoError(t, err)
	assert.Equal(t, int64(100), sum.Amount())

	diff, err := m.Sub(New(100, RUB))
	require.NoError(t, err)
	assert.Equal(t, int64(-100), diff.Amount())
}

func TestMoney_MarshalJSON(t *testing.T) {
	data, err := json.Marshal(New(123456, RUB))
	require.NoError(t, err)
	assert.JSONEq(t, `{"amount":123456,"value":"1234.56","currency":"RUB","display":"1,234.56 ₽"}`, string(data))

	var nilMoney *Money
	data, err = json.Marshal(nilMoney)
	require.NoError(t, err)
	assert.Equal(t, "null", string(data))
}

func TestMoney_ToDecimal(t *testing.T) {
	m := New(-9999, RUB)
	assert.True(t, decimal.RequireFromString("-99.99").Equal(m.ToDecimal()))
}
