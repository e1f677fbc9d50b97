package parser

import (
	"regexp"
	"testing"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/statement-parser/internal/domain/statement"
	"github.com/FACorreiaa/statement-parser/internal/domain/statement/normalizer"
)

var testFlowConfig = FlowConfig{
	ServiceLine: regexp.MustCompile(`^(Итого|Остаток на|Продолжение)`),
	Grammar: regexp.MustCompile(
		`^(?P<date>\d{2}\.\d{2}\.\d{4})\s+(?P<time>\d{2}:\d{2})\s+(?P<code>\d{3,})\s+(?P<category>.+?)\s+` +
			`(?P<sign>[+\-−])?(?P<amount>\d{1,3}(?: \d{3})*,\d{2})(?:\s+(?P<balance>\d{1,3}(?: \d{3})*,\d{2}))?$`),
	DirectionKeywords: []DirectionKeyword{
		{Keyword: "Перевод на карту", Direction: statement.DirectionIncome},
		{Keyword: "Рестораны", Direction: statement.DirectionExpense},
	},
	Counterparty: normalizer.NewCounterpartyExtractor(normalizer.LegalEntityRule, normalizer.PhoneTransferRule),
	Purpose:      normalizer.NewPurposeCleaner(),
}

func TestFlowParser_Segment(t *testing.T) {
	parser := NewFlowParser(testFlowConfig)

	pages := []string{
		"Выписка по счёту\nПериод 01.03.2024 - 31.03.2024\n" +
			"01.03.2024 10:15 123456 Рестораны 1 250,00 8 750,00\n" +
			"Кафе ООО \"Ромашка\"\n" +
			"Итого по странице\n" +
			"мусор после итогов",
		"02.03.2024 09:00 654321 Перевод на карту +500,00\n" +
			"по номеру телефона +7 900 123-45-67",
	}

	blocks := parser.Segment(pages)
	require.Len(t, blocks, 2)
	assert.Equal(t, "01.03.2024 10:15 123456 Рестораны 1 250,00 8 750,00", blocks[0].Header)
	assert.Equal(t, []string{`Кафе ООО "Ромашка"`}, blocks[0].Body)
	assert.Equal(t, []string{"по номеру телефона +7 900 123-45-67"}, blocks[1].Body)
}

func TestFlowParser_Parse(t *testing.T) {
	parser := NewFlowParser(testFlowConfig)

	result := parser.Parse([]string{
		"01.03.2024 10:15 123456 Рестораны 1 250,00 8 750,00\nКафе ООО \"Ромашка\" 01.03.2024\n" +
			"02.03.2024 09:00 654321 Перевод на карту +500,00\nпо номеру телефона +7 900 123-45-67\n" +
			"03.03.2024 11:11 777777 Прочие операции 3 000,00\n",
	})

	assert.Equal(t, 3, result.Blocks)
	assert.Equal(t, 0, result.Dropped)
	require.Len(t, result.Transactions, 3)

	restaurant := result.Transactions[0]
	assert.Equal(t, civil.Date{Year: 2024, Month: 3, Day: 1}, restaurant.Date)
	assert.Equal(t, "10:15", restaurant.Time)
	assert.Equal(t, statement.DirectionExpense, restaurant.Direction)
	assert.True(t, dec("1250").Equal(restaurant.Amount))
	assert.True(t, dec("8750").Equal(restaurant.Balance.Decimal))
	assert.Equal(t, `Кафе ООО "Ромашка"`, restaurant.Purpose)
	assert.Equal(t, "ООО «Ромашка»", restaurant.Counterparty)

	transfer := result.Transactions[1]
	assert.Equal(t, statement.DirectionIncome, transfer.Direction)
	assert.True(t, dec("500").Equal(transfer.Amount))
	assert.False(t, transfer.Balance.Valid)
	assert.Equal(t, "+7900123-45-67", transfer.Counterparty)

	other := result.Transactions[2]
	assert.Equal(t, statement.DirectionExpense, other.Direction, "falls back to the default direction")
	assert.Equal(t, "Прочие операции", other.Purpose, "empty body falls back to the category")
	assert.Empty(t, other.Counterparty)
}

func TestFlowParser_DropsBlocksFailingGrammar(t *testing.T) {
	parser := NewFlowParser(testFlowConfig)

	result := parser.Parse([]string{
		"01.03.2024 10:15 123456 Рестораны 1 250,00\n" +
			"05.03.2024 12:00 нет суммы в этой строке\n" +
			"06.03.2024 12:00 999 Рестораны 0,00\n",
	})

	assert.Equal(t, 3, result.Blocks)
	assert.Equal(t, 2, result.Dropped)
	require.Len(t, result.Transactions, 1)
	assert.True(t, dec("1250").Equal(result.Transactions[0].Amount))
}

func TestFlowParser_RepairsSplitDecimals(t *testing.T) {
	parser := NewFlowParser(testFlowConfig)

	tx, ok := parser.ParseBlock(Block{Header: "07.03.2024 08:30 111 Рестораны 99,9 9"})
	require.True(t, ok)
	assert.Equal(t, "99.99", normalizer.FormatAmount(tx.Amount))
}

func TestFlowParser_NoGrammar(t *testing.T) {
	result := NewFlowParser(FlowConfig{}).Parse([]string{"01.03.2024 10:15 anything 1,00"})
	assert.Empty(t, result.Transactions)
	assert.Zero(t, result.Blocks)
}

func TestFlowParser_TimeFromBody(t *testing.T) {
	parser := NewFlowParser(FlowConfig{
		BlockStart:       regexp.MustCompile(`^\d{2}\.\d{2}\.\d{4}\s`),
		Grammar:          regexp.MustCompile(`^(?P<date>\d{2}\.\d{2}\.\d{4})\s+(?P<category>.+?)\s+(?P<amount>[+\-]?[\d ]+,\d{2})$`),
		DefaultDirection: statement.DirectionIncome,
	})

	result := parser.Parse([]string{"15.01.2026 Пополнение 10 000,00\nоперация в 14:05"})
	require.Len(t, result.Transactions, 1)
	tx := result.Transactions[0]
	assert.Equal(t, "14:05", tx.Time)
	assert.Equal(t, statement.DirectionIncome, tx.Direction)
	assert.True(t, dec("10000").Equal(tx.Amount))
}

func TestFlowParser_WholeBlock(t *testing.T) {
	parser := NewFlowParser(FlowConfig{
		BlockStart:  regexp.MustCompile(`\b\d{2}\.\d{2}\.\d{4}\b`),
		ServiceLine: regexp.MustCompile(`^(Пополнения:|Расходы:|Итого)`),
		Grammar: regexp.MustCompile(
			`(?P<date>\d{2}\.\d{2}\.\d{4}).*?(?P<sign>[+\-−])\s*(?P<amount>\d[\d ]*(?:[.,]\d{1,2})?)\s*₽`),
		WholeBlock: true,
		Purpose:    normalizer.NewPurposeCleaner(regexp.MustCompile(`(?i)номер карты\s*\d{3,}`)),
		Counterparty: normalizer.NewCounterpartyExtractor(
			normalizer.PhoneTransferRule,
			normalizer.ContractRule,
		),
	})

	result := parser.Parse([]string{
		"Движение средств за период 01.01.2026 - 31.01.2026\n" +
			"05.01.2026 14:22 Оплата в KOFEINYA\n" +
			"Номер карты 5521 -350,00 ₽\n" +
			"07.01.2026 Внешний перевод по номеру телефона +7 900 111-22-33\n" +
			"+12 000, 5 0 ₽\n" +
			"Пополнения: 12 000,50 ₽\n",
	})

	assert.Equal(t, 3, result.Blocks)
	assert.Equal(t, 1, result.Dropped, "period header has no amount")
	require.Len(t, result.Transactions, 2)

	coffee := result.Transactions[0]
	assert.Equal(t, statement.DirectionExpense, coffee.Direction)
	assert.Equal(t, "350.00", normalizer.FormatAmount(coffee.Amount))
	assert.Equal(t, "14:22", coffee.Time)
	assert.Equal(t, "Оплата в KOFEINYA", coffee.Purpose)

	transfer := result.Transactions[1]
	assert.Equal(t, statement.DirectionIncome, transfer.Direction)
	assert.Equal(t, "12000.50", normalizer.FormatAmount(transfer.Amount))
	assert.Empty(t, transfer.Time)
	assert.Equal(t, "+7900111-22-33", transfer.Counterparty)
}
