package pipeline

import (
	"regexp"

	"github.com/FACorreiaa/statement-parser/internal/domain/statement"
	"github.com/FACorreiaa/statement-parser/internal/domain/statement/document"
	"github.com/FACorreiaa/statement-parser/internal/domain/statement/normalizer"
	"github.com/FACorreiaa/statement-parser/internal/domain/statement/parser"
	"github.com/FACorreiaa/statement-parser/internal/domain/statement/sniffer"
)

// OzonPipeline parses Ozon Bank account statements. Every amount carries an
// explicit sign; rows without one are not transactions.
type OzonPipeline struct {
	runner
}

var _ InstitutionPipeline = (*OzonPipeline)(nil)

// NewOzon creates the Ozon Bank pipeline.
func NewOzon(extractor document.Extractor) *OzonPipeline {
	return &OzonPipeline{runner: newRunner(Ozon, extractor, ozonSpec)}
}

// Parse extracts the statement in data.
func (p *OzonPipeline) Parse(data []byte) (*statement.Result, error) {
	return p.parse(data)
}

var ozonCounterparty = normalizer.NewCounterpartyExtractor(
	normalizer.RecipientLabelRule,
	normalizer.LegalEntityRule,
)

var ozonSpec = spec{
	headers: []sniffer.Rule{
		{Role: sniffer.RoleDate, Keywords: []string{"дата операц", "дата"}},
		{Role: sniffer.RolePurpose, Keywords: []string{"назначение", "описание"}},
		{Role: sniffer.RoleAmount, Keywords: []string{"сумма"}},
		{Role: sniffer.RoleCounterparty, Keywords: []string{"контрагент", "получатель"}},
		{Role: sniffer.RoleBalance, Keywords: []string{"остаток"}},
	},

	row: parser.RowConfig{
		CounterpartyRole: sniffer.RoleCounterparty,
		PurposeRoles:     []sniffer.Role{sniffer.RolePurpose},
		Counterparty:     ozonCounterparty,
		Purpose:          normalizer.NewPurposeCleaner(),
	},

	flow: parser.FlowConfig{
		ServiceLine: regexp.MustCompile(`(?i)^(Итого|Входящий остаток|Исходящий остаток|Страница \d+)`),
		Grammar: regexp.MustCompile(
			`^(?P<date>\d{2}\.\d{2}\.\d{4})\s+(?P<time>\d{2}:\d{2}(?::\d{2})?)\s+(?P<category>.*?)\s*` +
				`(?P<sign>[+\-−])\s?(?P<amount>\d{1,3}(?: \d{3})*(?:[.,]\d{2})?)\s*(?:₽|RUB)?$`),
		Counterparty: ozonCounterparty,
		Purpose:      normalizer.NewPurposeCleaner(),
	},

	identifiers: []parser.IdentifierPattern{
		{Pattern: regexp.MustCompile(`\b(40\d{18})\b`)},
		{
			Pattern: regexp.MustCompile(`(?i)Номер\s+сч[её]та\s*[:№]?\s*([0-9 \-]{10,})`),
			Format:  parser.AccountDigits,
		},
	},
}
