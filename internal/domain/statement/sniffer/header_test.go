package sniffer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testRules = []Rule{
	{Role: RoleDate, Keywords: []string{"дата операц", "дата опер"}},
	{Role: RoleDatePosted, Keywords: []string{"дата списан"}},
	{Role: RoleCounterparty, Keywords: []string{"контрагент", "получатель"}},
	{Role: RolePurpose, Keywords: []string{"назначение"}},
	{Role: RoleDebit, Keywords: []string{"дебет", "расход", "списание"}},
	{Role: RoleCredit, Keywords: []string{"кредит", "приход", "зачисление"}},
	{Role: RoleBalance, Keywords: []string{"остаток", "баланс"}},
	{Role: RoleAmount, Keywords: []string{"сумма"}},
	{Role: RoleStatus, Keywords: []string{"статус"}},
	{Role: RoleDate, Keywords: []string{"Дата"}, Exact: true},
}

func TestMapper_Map(t *testing.T) {
	mapper := NewMapper(testRules)

	t.Run("debit and credit statement", func(t *testing.T) {
		header := []string{"Дата\nоперации", "Контрагент", "Назначение платежа", "Сумма по дебету", "Сумма по кредиту", "Остаток"}

		mapping, err := mapper.Map(header)
		require.NoError(t, err)
		assert.Equal(t, Mapping{
			RoleDate:         0,
			RoleCounterparty: 1,
			RolePurpose:      2,
			RoleDebit:        3,
			RoleCredit:       4,
			RoleBalance:      5,
		}, mapping)
	})

	t.Run("single amount column with exact date header", func(t *testing.T) {
		mapping, err := mapper.Map([]string{"Дата", "Сумма", "Остаток"})
		require.NoError(t, err)
		assert.Equal(t, Mapping{RoleDate: 0, RoleAmount: 1, RoleBalance: 2}, mapping)
	})

	t.Run("first assignment wins", func(t *testing.T) {
		mapping, err := mapper.Map([]string{"Дата операции", "Сумма", "Дата операции (МСК)", "Сумма в валюте"})
		require.NoError(t, err)
		assert.Equal(t, 0, mapping[RoleDate])
		assert.Equal(t, 1, mapping[RoleAmount])
		assert.Len(t, mapping, 2)
	})

	t.Run("earlier rule beats later rule within one cell", func(t *testing.T) {
		// "сумма расхода" hits both the debit and the amount keyword.
		mapping, err := mapper.Map([]string{"Дата", "Сумма расхода"})
		require.NoError(t, err)
		assert.Equal(t, Mapping{RoleDate: 0, RoleDebit: 1}, mapping)
	})

	t.Run("empty cells are ignored", func(t *testing.T) {
		mapping, err := mapper.Map([]string{"", "Дата операции", "", "Сумма"})
		require.NoError(t, err)
		assert.Equal(t, Mapping{RoleDate: 1, RoleAmount: 3}, mapping)
	})

	t.Run("exact rule does not match substrings", func(t *testing.T) {
		_, err := mapper.Map([]string{"Датаграмма", "Сумма"})
		assert.ErrorIs(t, err, ErrNotTransactionTable)
	})
}

func TestMapper_RejectsTablesWithoutDate(t *testing.T) {
	mapper := NewMapper(testRules)

	headers := [][]string{
		{"Сумма", "Остаток"},
		{"Контрагент", "Дебет", "Кредит", "Остаток", "Статус"},
		{"Назначение", "Сумма", "Сумма", "Получатель"},
		{"№", "Документ"},
		{},
	}

	for _, header := range headers {
		mapping, err := mapper.Map(header)
		assert.ErrorIs(t, err, ErrNotTransactionTable, "header %v", header)
		assert.Nil(t, mapping)
	}
}

func TestMapper_RejectsTablesWithoutAmount(t *testing.T) {
	mapper := NewMapper(testRules)

	_, err := mapper.Map([]string{"Дата операции", "Назначение", "Остаток"})
	assert.ErrorIs(t, err, ErrNotTransactionTable)
}

func TestMapper_Recognizes(t *testing.T) {
	mapper := NewMapper(testRules)

	tests := []struct {
		name string
		row  []string
		want bool
	}{
		{name: "incomplete header", row: []string{"Итого", "Сумма за период"}, want: true},
		{name: "exact keyword", row: []string{" дата ", ""}, want: true},
		{name: "data row", row: []string{"02.03.2024", "+1 000,00", "11 000,00"}, want: false},
		{name: "blank row", row: []string{"", " "}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, mapper.Recognizes(tt.row))
		})
	}
}

func TestMapping_Cell(t *testing.T) {
	mapping := Mapping{RoleDate: 0, RoleAmount: 3}
	row := []string{"01.03.2024", "x", "y"}

	assert.Equal(t, "01.03.2024", mapping.Cell(row, RoleDate))
	assert.Equal(t, "", mapping.Cell(row, RoleAmount), "short row")
	assert.Equal(t, "", mapping.Cell(row, RoleBalance), "unmapped role")
	assert.Equal(t, 4, mapping.Width())
}

func BenchmarkMapper_Map(b *testing.B) {
	mapper := NewMapper(testRules)
	header := []string{"Дата операции", "Контрагент", "Назначение платежа", "Дебет", "Кредит", "Остаток"}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = mapper.Map(header)
	}
}
