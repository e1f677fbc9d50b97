package document

import (
	"bytes"
	"fmt"

	"github.com/ledongthuc/pdf"
)

// PDFExtractor decodes PDFs with ledongthuc/pdf and rebuilds page layout
// from the positioned glyphs and rectangles of each content stream.
type PDFExtractor struct {
	validate bool
}

// Option configures a PDFExtractor.
type Option func(*PDFExtractor)

// WithValidation runs pdfcpu preflight validation before decoding.
func WithValidation(on bool) Option {
	return func(e *PDFExtractor) {
		e.validate = on
	}
}

// NewPDFExtractor creates an extractor.
func NewPDFExtractor(opts ...Option) *PDFExtractor {
	e := &PDFExtractor{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Open decodes every page up front. The decoder panics on malformed content
// streams; that is recovered and returned as an error.
func (e *PDFExtractor) Open(data []byte) (doc Document, err error) {
	if len(data) == 0 {
		return nil, ErrEmptyDocument
	}
	if e.validate {
		if err := Validate(data); err != nil {
			return nil, err
		}
	}

	defer func() {
		if r := recover(); r != nil {
			doc = nil
			err = fmt.Errorf("decode pdf: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}

	total := reader.NumPage()
	if total == 0 {
		return nil, ErrEmptyDocument
	}

	pages := make([]Page, 0, total)
	for i := 1; i <= total; i++ {
		p := reader.Page(i)
		if p.V.IsNull() {
			pages = append(pages, NewLayoutPage(nil, nil))
			continue
		}
		pages = append(pages, layoutFromContent(p.Content()))
	}

	return &pdfDocument{pages: pages}, nil
}

func layoutFromContent(c pdf.Content) *LayoutPage {
	glyphs := make([]Glyph, 0, len(c.Text))
	for _, t := range c.Text {
		glyphs = append(glyphs, Glyph{X: t.X, Y: t.Y, W: t.W, Size: t.FontSize, S: t.S})
	}
	segments := make([]Segment, 0, len(c.Rect))
	for _, r := range c.Rect {
		segments = append(segments, Segment{X0: r.Min.X, Y0: r.Min.Y, X1: r.Max.X, Y1: r.Max.Y})
	}
	return NewLayoutPage(glyphs, segments)
}

// pdfDocument holds fully decoded pages, so Close has nothing to release.
type pdfDocument struct {
	pages []Page
}

func (d *pdfDocument) Pages() []Page { return d.pages }

func (d *pdfDocument) Close() error { return nil }
