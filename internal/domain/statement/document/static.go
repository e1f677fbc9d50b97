package document

import "sync/atomic"

// StaticPage is an in-memory page with prebuilt tables per strategy.
type StaticPage struct {
	Text   string
	Layout map[Strategy][]Table
}

func (p StaticPage) PlainText() string { return p.Text }

func (p StaticPage) Tables(strategy Strategy) []Table { return p.Layout[strategy] }

// StaticDocument is an in-memory Document. It records how many times it was
// closed.
type StaticDocument struct {
	PageList []Page
	closed   atomic.Int32
}

// NewStaticDocument wraps pages into a document.
func NewStaticDocument(pages ...Page) *StaticDocument {
	return &StaticDocument{PageList: pages}
}

func (d *StaticDocument) Pages() []Page { return d.PageList }

func (d *StaticDocument) Close() error {
	d.closed.Add(1)
	return nil
}

// Closed reports how many times Close was called.
func (d *StaticDocument) Closed() int { return int(d.closed.Load()) }

// StaticExtractor hands out the same document for every Open call, or Err
// when it is set. Used by tests and by callers that already hold decoded
// content.
type StaticExtractor struct {
	Doc *StaticDocument
	Err error
}

func (e StaticExtractor) Open(data []byte) (Document, error) {
	if e.Err != nil {
		return nil, e.Err
	}
	if e.Doc == nil {
		return nil, ErrEmptyDocument
	}
	return e.Doc, nil
}
