package pipeline

import (
	"regexp"

	"github.com/FACorreiaa/statement-parser/internal/domain/statement"
	"github.com/FACorreiaa/statement-parser/internal/domain/statement/document"
	"github.com/FACorreiaa/statement-parser/internal/domain/statement/normalizer"
	"github.com/FACorreiaa/statement-parser/internal/domain/statement/parser"
	"github.com/FACorreiaa/statement-parser/internal/domain/statement/sniffer"
)

// SberPipeline parses Sberbank statements. Business accounts print debit
// and credit columns, personal statements a single amount where an unsigned
// value is a charge and "+" marks a credit.
type SberPipeline struct {
	runner
}

var _ InstitutionPipeline = (*SberPipeline)(nil)

// NewSber creates the Sberbank pipeline.
func NewSber(extractor document.Extractor) *SberPipeline {
	return &SberPipeline{runner: newRunner(Sber, extractor, sberSpec)}
}

// Parse extracts the statement in data.
func (p *SberPipeline) Parse(data []byte) (*statement.Result, error) {
	return p.parse(data)
}

var sberCounterparty = normalizer.NewCounterpartyExtractor(
	normalizer.RecipientLabelRule,
	normalizer.LegalEntityRule,
	normalizer.PhoneTransferRule,
)

var sberSpec = spec{
	headers: []sniffer.Rule{
		{Role: sniffer.RoleDate, Keywords: []string{"дата операц", "дата опер"}},
		{Role: sniffer.RoleDatePosted, Keywords: []string{"дата списан"}},
		{Role: sniffer.RoleCounterparty, Keywords: []string{"контрагент", "получатель", "плательщик", "корреспондент"}},
		{Role: sniffer.RolePurpose, Keywords: []string{"назначение", "основание"}},
		{Role: sniffer.RoleDebit, Keywords: []string{"дебет", "расход", "списание"}},
		{Role: sniffer.RoleCredit, Keywords: []string{"кредит", "приход", "зачисление"}},
		{Role: sniffer.RoleBalance, Keywords: []string{"остаток", "баланс"}},
		{Role: sniffer.RoleAmount, Keywords: []string{"сумма"}},
		{Role: sniffer.RolePurpose, Keywords: []string{"категория", "операция", "описание"}},
		{Role: sniffer.RoleTaxID, Keywords: []string{"инн"}},
		{Role: sniffer.RoleDate, Keywords: []string{"дата"}},
	},

	row: parser.RowConfig{
		Unsigned:         statement.DirectionExpense,
		CounterpartyRole: sniffer.RoleCounterparty,
		PurposeRoles:     []sniffer.Role{sniffer.RolePurpose},
		Counterparty:     sberCounterparty,
		Purpose:          normalizer.NewPurposeCleaner(),
	},

	// Personal statements without ruling:
	// 17.01.2026 07:43 281543 Супермаркеты 1 250,00 48 312,07
	flow: parser.FlowConfig{
		ServiceLine: regexp.MustCompile(`(?i)^(Итого|Остаток на|Продолжение|С уважением|Руководитель|Дата формирования|Страница \d+)`),
		Grammar: regexp.MustCompile(
			`^(?P<date>\d{2}\.\d{2}\.\d{4})\s+(?P<time>\d{2}:\d{2})\s+(?P<code>\d{3,})\s+(?P<category>.+?)\s+` +
				`(?P<sign>[+\-−])?(?P<amount>\d{1,3}(?: \d{3})*,\d{2})(?:\s+(?P<balance>\d{1,3}(?: \d{3})*,\d{2}))?$`),
		DirectionKeywords: []parser.DirectionKeyword{
			{Keyword: "перевод на карту", Direction: statement.DirectionIncome},
			{Keyword: "зачисление", Direction: statement.DirectionIncome},
			{Keyword: "выдача наличных", Direction: statement.DirectionExpense},
			{Keyword: "рестораны", Direction: statement.DirectionExpense},
			{Keyword: "прочие операции", Direction: statement.DirectionExpense},
		},
		DefaultDirection: statement.DirectionExpense,
		Counterparty:     sberCounterparty,
		Purpose:          normalizer.NewPurposeCleaner(),
	},

	identifiers: []parser.IdentifierPattern{
		{Pattern: regexp.MustCompile(`\b(40\d{18})\b`)},
		{
			// 40817 810 6 3812 1486773
			Pattern: regexp.MustCompile(`(40\d{3}\s+\d{3}\s+\d\s+\d{4}\s+\d{7})`),
			Format:  parser.AccountDigits,
		},
		{Pattern: regexp.MustCompile(`(?i)(?:(?:номер\s*)?сч[её]т[а]?|р/?с)\s*[:№]?\s*(\d{20})`)},
	},
}
