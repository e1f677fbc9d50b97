package pipeline

import (
	"regexp"
	"strings"

	"github.com/FACorreiaa/statement-parser/internal/domain/statement"
	"github.com/FACorreiaa/statement-parser/internal/domain/statement/document"
	"github.com/FACorreiaa/statement-parser/internal/domain/statement/normalizer"
	"github.com/FACorreiaa/statement-parser/internal/domain/statement/parser"
	"github.com/FACorreiaa/statement-parser/internal/domain/statement/sniffer"
)

// TBankDepositPipeline parses T-Bank deposit and savings account statements.
// The account holder is the only party, so the counterparty is a label for
// the kind of movement.
type TBankDepositPipeline struct {
	runner
}

var _ InstitutionPipeline = (*TBankDepositPipeline)(nil)

// NewTBankDeposit creates the T-Bank deposit pipeline.
func NewTBankDeposit(extractor document.Extractor) *TBankDepositPipeline {
	return &TBankDepositPipeline{runner: newRunner(TBankDeposit, extractor, depositSpec)}
}

// Parse extracts the statement in data.
func (p *TBankDepositPipeline) Parse(data []byte) (*statement.Result, error) {
	return p.parse(data)
}

var depositCounterparty = normalizer.NewCounterpartyExtractor(
	normalizer.CounterpartyRule{
		Name:    "interest",
		Pattern: regexp.MustCompile(`(?i)процент|%`),
		Format:  normalizer.Fixed("Начисление процентов"),
	},
	normalizer.CounterpartyRule{
		Name:    "top_up",
		Pattern: regexp.MustCompile(`(?i)пополнение|перевод`),
		Format:  normalizer.Fixed("Пополнение"),
	},
	normalizer.CounterpartyRule{
		Name:    "withdrawal",
		Pattern: regexp.MustCompile(`(?i)списание|вывод`),
		Format:  normalizer.Fixed("Списание"),
	},
	normalizer.PhoneTransferRule,
	normalizer.ContractRule,
)

var depositSpec = spec{
	headers: []sniffer.Rule{
		{Role: sniffer.RoleDate, Keywords: []string{"дата"}},
		{Role: sniffer.RoleCredit, Keywords: []string{"приход", "зачисление", "кредит", "пополнение"}},
		{Role: sniffer.RoleDebit, Keywords: []string{"расход", "списание", "дебет", "снятие"}},
		{Role: sniffer.RoleAmount, Keywords: []string{"сумма"}},
		{Role: sniffer.RoleDescription, Keywords: []string{"операция", "описание", "назначение", "основание"}},
		{Role: sniffer.RoleBalance, Keywords: []string{"остаток", "баланс"}},
	},

	row: parser.RowConfig{
		Unsigned:     statement.DirectionIncome,
		CreditFirst:  true,
		PurposeRoles: []sniffer.Role{sniffer.RoleDescription},
		Counterparty: depositCounterparty,
		Purpose:      tbankPurpose,
	},

	flow: parser.FlowConfig{
		BlockStart:   tbankBlockStart,
		ServiceLine:  tbankServiceLine,
		Grammar:      tbankFlowGrammar,
		WholeBlock:   true,
		Counterparty: depositCounterparty,
		Purpose:      tbankPurpose,
	},

	identifiers: []parser.IdentifierPattern{
		{
			// "Номер договора: 8012345678", "Договор № 5-12/2024". The
			// number must start with a digit so prose like "по договору"
			// never matches.
			Pattern: regexp.MustCompile(`(?i)(?:номер\s+договора\s*[№#]?|договор[а-я]*\s*[№#:])\s*:?\s*(\d[\w\-/]*)`),
			Format: func(m []string) string {
				return strings.TrimRight(m[1], ".,;")
			},
		},
		{Pattern: regexp.MustCompile(`\b(42\d{18})\b`)},
	},
}
