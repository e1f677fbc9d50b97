package parser

import (
	"regexp"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/statement-parser/internal/domain/statement"
	"github.com/FACorreiaa/statement-parser/internal/domain/statement/normalizer"
)

// DefaultBlockStart opens a transaction block at a "dd.mm.yyyy hh:mm" prefix.
var DefaultBlockStart = regexp.MustCompile(`^\d{2}\.\d{2}\.\d{4}\s+\d{2}:\d{2}`)

// DirectionKeyword infers a direction from category or body text when the
// amount carries no sign.
type DirectionKeyword struct {
	Keyword   string
	Direction statement.Direction
}

// FlowConfig is the per-institution grammar of a flowing-text statement.
type FlowConfig struct {
	// BlockStart marks the first line of a transaction. Nil means
	// DefaultBlockStart.
	BlockStart *regexp.Regexp
	// ServiceLine closes the current block without opening a new one:
	// totals, signatures, page continuation notices.
	ServiceLine *regexp.Regexp
	// Grammar parses the first line of a block. Named groups: date and
	// amount are required, time, code, category, sign and balance optional.
	Grammar *regexp.Regexp
	// WholeBlock matches Grammar against the header and body joined, for
	// layouts that print the amount on a later line than the date. The
	// purpose is then the block text with the matched amount cut out.
	WholeBlock bool

	DirectionKeywords []DirectionKeyword
	// DefaultDirection applies when neither a sign nor a keyword decides.
	// Empty means expense.
	DefaultDirection statement.Direction

	Counterparty *normalizer.CounterpartyExtractor
	Purpose      *normalizer.PurposeCleaner
}

// Block is one transaction's worth of text lines.
type Block struct {
	Header string
	Body   []string
}

// FlowResult is what the fallback parser folds out of a document.
type FlowResult struct {
	Transactions []statement.Transaction
	Blocks       int
	Dropped      int
}

// FlowParser is the text-flow fallback used when no table produced rows.
type FlowParser struct {
	config FlowConfig
}

// NewFlowParser creates a parser for config.
func NewFlowParser(config FlowConfig) *FlowParser {
	if config.BlockStart == nil {
		config.BlockStart = DefaultBlockStart
	}
	if config.DefaultDirection == "" {
		config.DefaultDirection = statement.DirectionExpense
	}
	config.DirectionKeywords = slices.Clone(config.DirectionKeywords)
	for i, kw := range config.DirectionKeywords {
		config.DirectionKeywords[i].Keyword = strings.ToLower(kw.Keyword)
	}
	return &FlowParser{config: config}
}

// Parse segments the pages into blocks and parses each one. Blocks whose
// header fails the grammar or whose amount does not normalize are dropped.
func (p *FlowParser) Parse(pages []string) FlowResult {
	var result FlowResult
	if p.config.Grammar == nil {
		return result
	}

	for _, block := range p.Segment(pages) {
		result.Blocks++
		tx, ok := p.ParseBlock(block)
		if !ok {
			result.Dropped++
			continue
		}
		result.Transactions = append(result.Transactions, tx)
	}
	return result
}

// Segment splits page text into blocks. Lines before the first block start
// and lines after a service line are discarded.
func (p *FlowParser) Segment(pages []string) []Block {
	var (
		blocks  []Block
		current *Block
	)
	flush := func() {
		if current != nil {
			blocks = append(blocks, *current)
			current = nil
		}
	}

	for _, page := range pages {
		for _, line := range normalizer.Lines(page) {
			switch {
			case p.config.BlockStart.MatchString(line):
				flush()
				current = &Block{Header: line}
			case p.config.ServiceLine != nil && p.config.ServiceLine.MatchString(line):
				flush()
			case current != nil:
				current.Body = append(current.Body, line)
			}
		}
	}
	flush()
	return blocks
}

// ParseBlock parses a single block.
func (p *FlowParser) ParseBlock(block Block) (statement.Transaction, bool) {
	grammar := p.config.Grammar
	amountIdx := grammar.SubexpIndex("amount")
	if amountIdx < 0 {
		return statement.Transaction{}, false
	}

	line := block.Header
	if p.config.WholeBlock {
		line = normalizer.CleanText(block.Header + " " + strings.Join(block.Body, " "))
	}
	line = normalizer.RepairDecimalGaps(line)

	m := grammar.FindStringSubmatchIndex(line)
	if m == nil {
		return statement.Transaction{}, false
	}
	group := func(name string) string {
		i := grammar.SubexpIndex(name)
		if i < 0 || m[2*i] < 0 {
			return ""
		}
		return strings.TrimSpace(line[m[2*i]:m[2*i+1]])
	}

	date, ok := normalizer.ParseDate(group("date"))
	if !ok {
		return statement.Transaction{}, false
	}
	amount, ok := normalizer.NormalizeAmount(group("amount"))
	if !ok || amount.IsZero() {
		return statement.Transaction{}, false
	}

	body := strings.Join(block.Body, " ")
	if p.config.WholeBlock {
		cut := m[2*amountIdx]
		if i := grammar.SubexpIndex("sign"); i >= 0 && m[2*i] >= 0 {
			cut = m[2*i]
		}
		body = line[:cut] + " " + line[m[1]:]
	}
	category := normalizer.CleanText(group("category"))

	tx := statement.Transaction{
		Date:      date,
		Amount:    amount.Abs(),
		Direction: p.direction(group("sign"), amount, category+" "+body),
	}

	tx.Time = group("time")
	if tx.Time == "" {
		tx.Time, _ = normalizer.ParseTime(body)
	}

	if raw := group("balance"); raw != "" {
		if balance, ok := normalizer.NormalizeAmount(raw); ok {
			tx.Balance = decimal.NewNullDecimal(balance)
		}
	}

	tx.Purpose = p.config.Purpose.Clean(body)
	if tx.Purpose == "" {
		tx.Purpose = category
	}
	tx.Counterparty = p.config.Counterparty.Extract(normalizer.CleanText(category + " " + tx.Purpose))

	return tx, true
}

func (p *FlowParser) direction(sign string, amount decimal.Decimal, text string) statement.Direction {
	switch {
	case sign == "+":
		return statement.DirectionIncome
	case sign == "-" || sign == "−" || amount.IsNegative():
		return statement.DirectionExpense
	}

	text = strings.ToLower(text)
	for _, kw := range p.config.DirectionKeywords {
		if strings.Contains(text, kw.Keyword) {
			return kw.Direction
		}
	}
	return p.config.DefaultDirection
}
