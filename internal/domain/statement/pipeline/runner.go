package pipeline

import (
	"fmt"

	"github.com/FACorreiaa/statement-parser/internal/domain/statement"
	"github.com/FACorreiaa/statement-parser/internal/domain/statement/document"
	"github.com/FACorreiaa/statement-parser/internal/domain/statement/normalizer"
	"github.com/FACorreiaa/statement-parser/internal/domain/statement/parser"
	"github.com/FACorreiaa/statement-parser/internal/domain/statement/sniffer"
)

// StrategyTextFlow is reported in Stats.Strategy when the transactions came
// from the text-flow fallback.
const StrategyTextFlow = "text-flow"

// spec is the per-institution configuration of the shared algorithm.
type spec struct {
	headers     []sniffer.Rule
	row         parser.RowConfig
	flow        parser.FlowConfig
	identifiers []parser.IdentifierPattern

	// identifierColumn is read from table rows when no identifier pattern
	// matched the page text.
	identifierColumn sniffer.Role
	identifierFormat func([]string) string
}

// runner executes a spec. It is embedded by every institution pipeline.
type runner struct {
	institution Institution
	extractor   document.Extractor

	mapper     *sniffer.Mapper
	rows       *parser.RowParser
	flow       *parser.FlowParser
	identifier *parser.IdentifierExtractor

	identifierColumn sniffer.Role
	identifierFormat func([]string) string
}

func newRunner(inst Institution, extractor document.Extractor, s spec) runner {
	format := s.identifierFormat
	if format == nil {
		format = parser.Digits
	}
	return runner{
		institution:      inst,
		extractor:        extractor,
		mapper:           sniffer.NewMapper(s.headers),
		rows:             parser.NewRowParser(s.row),
		flow:             parser.NewFlowParser(s.flow),
		identifier:       parser.NewIdentifierExtractor(parser.DefaultIdentifierPages, s.identifiers...),
		identifierColumn: s.identifierColumn,
		identifierFormat: format,
	}
}

// Institution reports which bank the pipeline parses.
func (r runner) Institution() Institution { return r.institution }

// fold is the state threaded through pages, tables and rows.
type fold struct {
	result *statement.Result

	// last is the mapping of the previous accepted table. A following table
	// of the same width without a recognizable header continues it.
	last      sniffer.Mapping
	lastWidth int

	columnID string
}

func (r runner) parse(data []byte) (result *statement.Result, err error) {
	doc, err := r.extractor.Open(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", statement.ErrParseFailed, err)
	}
	defer doc.Close()

	defer func() {
		if rec := recover(); rec != nil {
			result = nil
			err = fmt.Errorf("%w: %v", statement.ErrParseFailed, rec)
		}
	}()

	pages := doc.Pages()
	acc := &fold{result: &statement.Result{Transactions: []statement.Transaction{}}}
	acc.result.Stats.Pages = len(pages)

	texts := make([]string, len(pages))
	for i, page := range pages {
		texts[i] = page.PlainText()
		r.foldPage(page, acc)
	}

	if len(acc.result.Transactions) == 0 {
		r.foldFlow(texts, acc)
	}

	acc.result.AccountIdentifier = r.identifier.Extract(texts)
	if acc.result.AccountIdentifier == "" {
		acc.result.AccountIdentifier = acc.columnID
	}
	return acc.result, nil
}

// foldPage uses the first strategy that finds any table on the page.
func (r runner) foldPage(page document.Page, acc *fold) {
	for _, strategy := range document.Strategies {
		tables := page.Tables(strategy)
		if len(tables) == 0 {
			continue
		}
		for _, table := range tables {
			r.foldTable(table, strategy, acc)
		}
		return
	}
}

func (r runner) foldTable(table document.Table, strategy document.Strategy, acc *fold) {
	stats := &acc.result.Stats
	stats.TablesSeen++
	if len(table) == 0 {
		stats.TablesRejected++
		return
	}

	rows := table[1:]
	mapping, err := r.mapper.Map(table[0])
	if err != nil {
		if !r.continues(table[0], acc) {
			stats.TablesRejected++
			return
		}
		mapping, rows = acc.last, table
		stats.TablesContinued++
	}
	acc.last, acc.lastWidth = mapping, len(table[0])

	for _, row := range rows {
		stats.RowsSeen++

		if acc.columnID == "" && r.identifierColumn != "" {
			if cell := mapping.Cell(row, r.identifierColumn); cell != "" {
				acc.columnID = r.identifierFormat([]string{cell})
			}
		}

		tx, ok := r.rows.Parse(mapping, row)
		if !ok {
			stats.RowsSkipped++
			continue
		}
		if stats.Strategy == "" {
			stats.Strategy = string(strategy)
		}
		acc.result.Transactions = append(acc.result.Transactions, tx)
	}
}

// continues reports whether a table without a usable header carries on the
// previous accepted table across a page break: same width, no header keyword
// anywhere in its first row, and a date where the previous mapping expects
// one. Totals and summary tables fail at least one of these.
func (r runner) continues(first document.Row, acc *fold) bool {
	if acc.last == nil || len(first) != acc.lastWidth {
		return false
	}
	if r.mapper.Recognizes(first) {
		return false
	}
	_, ok := normalizer.ParseDate(acc.last.Cell(first, sniffer.RoleDate))
	return ok
}

func (r runner) foldFlow(texts []string, acc *fold) {
	flow := r.flow.Parse(texts)

	stats := &acc.result.Stats
	stats.TextFlow = true
	stats.BlocksSeen = flow.Blocks
	stats.BlocksDropped = flow.Dropped
	if len(flow.Transactions) > 0 {
		stats.Strategy = StrategyTextFlow
		acc.result.Transactions = flow.Transactions
	}
}
