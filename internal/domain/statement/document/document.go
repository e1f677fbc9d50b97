// Package document is the boundary between raw PDF bytes and the statement
// pipelines. An Extractor opens a byte buffer into a Document whose pages
// expose plain text and tables found by one of two layout strategies.
package document

import "errors"

var (
	// ErrEmptyDocument is returned by Open for zero-length input or a PDF
	// without pages.
	ErrEmptyDocument = errors.New("document has no pages")
	// ErrInvalidPDF is returned by preflight validation.
	ErrInvalidPDF = errors.New("invalid pdf")
)

// Strategy selects how a page is cut into tables.
type Strategy string

const (
	// StrategyRuledLines builds a grid from the drawn cell borders.
	StrategyRuledLines Strategy = "ruled-lines"
	// StrategyTextBoundaries infers columns from where words line up.
	StrategyTextBoundaries Strategy = "text-boundaries"
)

// Strategies lists the table strategies in the order pipelines try them.
var Strategies = []Strategy{StrategyRuledLines, StrategyTextBoundaries}

// Row is one table row. An empty string marks an absent cell.
type Row []string

// Table is a list of rows, the header first.
type Table []Row

// Page is one page of an opened document.
type Page interface {
	PlainText() string
	Tables(strategy Strategy) []Table
}

// Document is an opened statement. Close must be called once the caller is
// done with the pages.
type Document interface {
	Pages() []Page
	Close() error
}

// Extractor opens raw document bytes.
type Extractor interface {
	Open(data []byte) (Document, error)
}
