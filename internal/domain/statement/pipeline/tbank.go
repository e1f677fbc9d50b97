package pipeline

import (
	"regexp"

	"github.com/FACorreiaa/statement-parser/internal/domain/statement"
	"github.com/FACorreiaa/statement-parser/internal/domain/statement/document"
	"github.com/FACorreiaa/statement-parser/internal/domain/statement/normalizer"
	"github.com/FACorreiaa/statement-parser/internal/domain/statement/parser"
	"github.com/FACorreiaa/statement-parser/internal/domain/statement/sniffer"
)

// TBankPipeline parses T-Bank card and current account statements.
type TBankPipeline struct {
	runner
}

var _ InstitutionPipeline = (*TBankPipeline)(nil)

// NewTBank creates the T-Bank card pipeline.
func NewTBank(extractor document.Extractor) *TBankPipeline {
	return &TBankPipeline{runner: newRunner(TBank, extractor, tbankSpec)}
}

// Parse extracts the statement in data.
func (p *TBankPipeline) Parse(data []byte) (*statement.Result, error) {
	return p.parse(data)
}

// Shared by the card and deposit statements, which print the same
// flowing-text layout when the tables are unruled.
var (
	tbankBlockStart  = regexp.MustCompile(`\b\d{2}\.\d{2}\.\d{4}\b`)
	tbankServiceLine = regexp.MustCompile(`(?i)^(Пополнения:|Расходы:|Итого|Исходящий остаток|С уважением|Руководитель)`)
	tbankFlowGrammar = regexp.MustCompile(
		`(?P<date>\d{2}\.\d{2}\.\d{4}).*?(?P<sign>[+\-−])\s*(?P<amount>\d[\d ]*(?:[.,]\d{1,2})?)\s*₽`)
	// Every signed rouble amount is cut: blocks repeat the charge in the
	// card currency after the operation amount.
	tbankPurpose = normalizer.NewPurposeCleaner(
		regexp.MustCompile(`(?i)номер карты\s*\d{3,}`),
		regexp.MustCompile(`[+\-−]\s*\d[\d ]*(?:[.,]\d{1,2})?\s*₽`),
	)
)

var tbankCounterparty = normalizer.NewCounterpartyExtractor(
	normalizer.PhoneTransferRule,
	normalizer.ContractRule,
	normalizer.AccountReferenceRule,
	normalizer.CounterpartyRule{
		Name:    "interest",
		Pattern: regexp.MustCompile(`Проценты на остаток`),
		Format:  normalizer.Fixed("АО «ТБанк»"),
	},
)

var tbankSpec = spec{
	headers: []sniffer.Rule{
		{Role: sniffer.RoleDate, Keywords: []string{"дата операц"}},
		{Role: sniffer.RoleDate, Keywords: []string{"дата"}, Exact: true},
		{Role: sniffer.RoleDatePosted, Keywords: []string{"дата платеж", "дата списан"}},
		{Role: sniffer.RoleAmount, Keywords: []string{"сумма операц"}},
		{Role: sniffer.RolePaymentAmount, Keywords: []string{"сумма платеж"}},
		{Role: sniffer.RoleAmount, Keywords: []string{"сумма"}},
		{Role: sniffer.RoleDescription, Keywords: []string{"описание", "операция", "назначение"}},
		{Role: sniffer.RoleCategory, Keywords: []string{"категория"}},
		{Role: sniffer.RoleBalance, Keywords: []string{"остаток"}},
		{Role: sniffer.RoleStatus, Keywords: []string{"статус"}},
		{Role: sniffer.RoleCardNumber, Keywords: []string{"номер карты", "карта"}},
		{Role: sniffer.RoleMCC, Keywords: []string{"mcc"}},
		{Role: sniffer.RoleCashback, Keywords: []string{"кэшбэк", "кешбэк", "cashback"}},
	},

	// Card statements sign charges; an unsigned amount is a credit. The
	// description column names the merchant and the category is the purpose.
	row: parser.RowConfig{
		AmountRoles:       []sniffer.Role{sniffer.RolePaymentAmount, sniffer.RoleAmount},
		Unsigned:          statement.DirectionIncome,
		CompletedStatuses: parser.CompletedStatuses,
		CounterpartyRole:  sniffer.RoleDescription,
		PurposeRoles:      []sniffer.Role{sniffer.RoleCategory},
		Counterparty:      tbankCounterparty,
		Purpose:           tbankPurpose,
	},

	flow: parser.FlowConfig{
		BlockStart:   tbankBlockStart,
		ServiceLine:  tbankServiceLine,
		Grammar:      tbankFlowGrammar,
		WholeBlock:   true,
		Counterparty: tbankCounterparty,
		Purpose:      tbankPurpose,
	},

	identifiers: []parser.IdentifierPattern{
		{Pattern: regexp.MustCompile(`\*{1,2}\s*(\d{4})`), Format: parser.MaskedCard},
		{Pattern: regexp.MustCompile(`\d{4}\s*\d{2}\*{2}\s*\*{4}\s*(\d{4})`), Format: parser.MaskedCard},
	},
	identifierColumn: sniffer.RoleCardNumber,
	identifierFormat: parser.MaskedCard,
}
