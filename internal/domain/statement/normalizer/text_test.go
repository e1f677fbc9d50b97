package normalizer

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanText(t *testing.T) {
	assert.Equal(t, "Дата операции", CleanText("Дата\nоперации"))
	assert.Equal(t, "ООО Ромашка", CleanText("  ООО  Ромашка \t"))
	assert.Equal(t, "", CleanText(" \n "))
}

func TestLines(t *testing.T) {
	text := "Выписка по счёту\n\n  17.01.2026   07:43   281543\r\nИтого"
	assert.Equal(t, []string{"Выписка по счёту", "17.01.2026 07:43 281543", "Итого"}, Lines(text))
}

func TestNormalizeSpaces(t *testing.T) {
	assert.Equal(t, "40702 810\n1", NormalizeSpaces("40702 810\n1"))
}

func TestRepairDecimalGaps(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "split fraction after comma", input: "Прочие операции 1 500, 7 2", want: "Прочие операции 1 500,72"},
		{name: "split fraction before rouble sign", input: "+500,0 0 ₽", want: "+500,00 ₽"},
		{name: "split dot fraction", input: "-1 000. 5 0 ₽", want: "-1 000.50 ₽"},
		{name: "intact amount and balance", input: "1 000,00 5 000,00", want: "1 000,00 5 000,00"},
		{name: "intact date and time", input: "17.01.2026 07:43 281543", want: "17.01.2026 07:43 281543"},
		{name: "one digit fraction followed by number", input: "100,5 200,00", want: "100,5 200,00"},
		{name: "single split digit before rouble sign", input: "-1 500, 7 ₽", want: "-1 500,7 ₽"},
		{name: "split fraction before balance", input: "Прочие 1 500, 7 2 48 312,07", want: "Прочие 1 500,72 48 312,07"},
		{name: "gap outside an amount position", input: "Договор 12, 3 4 от банка", want: "Договор 12, 3 4 от банка"},
		{name: "list of numbers mid text", input: "пункты 1, 2 и 3 ₽ нет", want: "пункты 1, 2 и 3 ₽ нет"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RepairDecimalGaps(tt.input))
		})
	}
}

func TestCounterpartyExtractor_Extract(t *testing.T) {
	extractor := NewCounterpartyExtractor(
		RecipientLabelRule,
		PhoneTransferRule,
		ContractRule,
		AccountReferenceRule,
		CounterpartyRule{
			Name:    "interest",
			Pattern: regexp.MustCompile(`Проценты на остаток`),
			Format:  Fixed("АО «ТБанк»"),
		},
		LegalEntityRule,
	)

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "recipient label", input: "Оплата по счёту. Получатель: ИП Иванов И.И.; НДС не облагается", want: "ИП Иванов И"},
		{name: "phone transfer", input: "Внешний перевод по номеру телефона +7 900 123-45-67", want: "+7900123-45-67"},
		{name: "contract", input: "Погашение по договору 5012345678", want: "Договор 5012345678"},
		{name: "account reference", input: "Перевод на счет 40817810000000000001", want: "Счёт 40817810000000000001"},
		{name: "fixed phrase", input: "Проценты на остаток по счету", want: "АО «ТБанк»"},
		{name: "legal entity", input: "Оплата ООО \"Ромашка\" за услуги", want: "ООО «Ромашка»"},
		{name: "legal entity with guillemets", input: "Комиссия ПАО «Сбербанк»", want: "ПАО «Сбербанк»"},
		{name: "no match", input: "Покупка в магазине", want: ""},
		{name: "empty", input: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractor.Extract(tt.input))
		})
	}
}

func TestPurposeCleaner_Clean(t *testing.T) {
	cleaner := NewPurposeCleaner(regexp.MustCompile(`(?i)номер карты\s*\d{3,}`))

	got := cleaner.Clean("17.01.2026 07:43 Оплата\nв Пятёрочка  Номер карты 1234")
	assert.Equal(t, "Оплата в Пятёрочка", got)

	var nilCleaner *PurposeCleaner
	assert.Equal(t, "a b", nilCleaner.Clean(" a \n b "))
}
