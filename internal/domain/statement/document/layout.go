package document

import (
	"math"
	"slices"
	"sort"
	"strings"
	"unicode/utf8"
)

// Geometry thresholds. Relative ones are multiples of the font size,
// absolute ones are PDF points.
const (
	lineTolerance = 0.5 // baseline drift still counted as the same line
	spaceGap      = 0.2 // gap that renders as a space between glyphs
	columnGap     = 1.0 // gap that splits a line into separate cells

	edgeThickness = 2.0 // rects thinner than this are rules, not boxes
	snapTolerance = 3.0 // edges or column starts closer than this merge
	minColumnHits = 3   // a column start must line up at least this often

	defaultFontSize = 10.0
)

// Glyph is one positioned text fragment, usually a single character. X and Y
// are the baseline origin in PDF user space, Y growing upwards.
type Glyph struct {
	X, Y float64
	W    float64
	Size float64
	S    string
}

func (g Glyph) size() float64 {
	if g.Size > 0 {
		return g.Size
	}
	return defaultFontSize
}

// width falls back to half an em per rune when the font carries no widths.
func (g Glyph) width() float64 {
	if g.W > 0 {
		return g.W
	}
	return float64(utf8.RuneCountInString(g.S)) * g.size() * 0.5
}

func (g Glyph) right() float64 { return g.X + g.width() }

func (g Glyph) blank() bool { return strings.TrimSpace(g.S) == "" }

// Segment is a drawn rectangle: a table rule when thin, a cell box otherwise.
type Segment struct {
	X0, Y0, X1, Y1 float64
}

func (s Segment) normalized() Segment {
	if s.X0 > s.X1 {
		s.X0, s.X1 = s.X1, s.X0
	}
	if s.Y0 > s.Y1 {
		s.Y0, s.Y1 = s.Y1, s.Y0
	}
	return s
}

type textLine struct {
	y      float64
	glyphs []Glyph
}

type chunk struct {
	x0   float64
	text string
}

// LayoutPage reconstructs text lines and tables from page geometry.
type LayoutPage struct {
	glyphs   []Glyph
	segments []Segment
	lines    []textLine
}

// NewLayoutPage builds a page from its glyphs and drawn rectangles.
func NewLayoutPage(glyphs []Glyph, segments []Segment) *LayoutPage {
	return &LayoutPage{
		glyphs:   glyphs,
		segments: segments,
		lines:    groupLines(glyphs),
	}
}

// PlainText returns the page text top to bottom, one line per baseline.
func (p *LayoutPage) PlainText() string {
	out := make([]string, 0, len(p.lines))
	for _, l := range p.lines {
		if t := l.text(); t != "" {
			out = append(out, t)
		}
	}
	return strings.Join(out, "\n")
}

// Tables returns at most one table per page for either strategy.
func (p *LayoutPage) Tables(strategy Strategy) []Table {
	var t Table
	switch strategy {
	case StrategyRuledLines:
		t = p.ruledTable()
	case StrategyTextBoundaries:
		t = p.boundaryTable()
	}
	if len(t) < 2 {
		return nil
	}
	return []Table{t}
}

func groupLines(glyphs []Glyph) []textLine {
	sorted := make([]Glyph, 0, len(glyphs))
	for _, g := range glyphs {
		if !g.blank() {
			sorted = append(sorted, g)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Y > sorted[j].Y
	})

	var lines []textLine
	for _, g := range sorted {
		if n := len(lines); n > 0 && math.Abs(lines[n-1].y-g.Y) <= lineTolerance*g.size() {
			lines[n-1].glyphs = append(lines[n-1].glyphs, g)
			continue
		}
		lines = append(lines, textLine{y: g.Y, glyphs: []Glyph{g}})
	}
	for i := range lines {
		sort.SliceStable(lines[i].glyphs, func(a, b int) bool {
			return lines[i].glyphs[a].X < lines[i].glyphs[b].X
		})
	}
	return lines
}

// chunks splits the line wherever the gap between glyphs exceeds split ems.
func (l textLine) chunks(split float64) []chunk {
	var (
		out []chunk
		b   strings.Builder
	)
	for i, g := range l.glyphs {
		if i == 0 {
			out = append(out, chunk{x0: g.X})
		} else {
			prev := l.glyphs[i-1]
			gap := g.X - prev.right()
			size := max(prev.size(), g.size())
			switch {
			case gap > split*size:
				out[len(out)-1].text = squeeze(b.String())
				b.Reset()
				out = append(out, chunk{x0: g.X})
			case gap > spaceGap*size:
				b.WriteByte(' ')
			}
		}
		b.WriteString(g.S)
	}
	if len(out) > 0 {
		out[len(out)-1].text = squeeze(b.String())
	}
	return out
}

func (l textLine) text() string {
	parts := make([]string, 0, 4)
	for _, c := range l.chunks(columnGap) {
		if c.text != "" {
			parts = append(parts, c.text)
		}
	}
	return strings.Join(parts, " ")
}

func squeeze(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// boundaryTable infers columns from chunk start positions that line up
// across at least minColumnHits lines. The table begins at the first line
// filling at least half the columns. Later single-cell lines are wrapped
// text and are appended to the row above.
func (p *LayoutPage) boundaryTable() Table {
	lineChunks := make([][]chunk, len(p.lines))
	var starts []float64
	for i, l := range p.lines {
		lineChunks[i] = l.chunks(columnGap)
		if len(lineChunks[i]) < 2 {
			continue
		}
		for _, c := range lineChunks[i] {
			starts = append(starts, c.x0)
		}
	}

	columns := cluster(starts, minColumnHits)
	if len(columns) < 2 {
		return nil
	}

	var table Table
	for _, chunks := range lineChunks {
		row := make(Row, len(columns))
		filled := 0
		for _, c := range chunks {
			col := columnOf(columns, c.x0)
			if row[col] == "" {
				row[col] = c.text
				filled++
			} else {
				row[col] += " " + c.text
			}
		}

		switch {
		case len(table) == 0:
			if filled >= 2 && filled*2 >= len(columns) {
				table = append(table, row)
			}
		case filled >= 2:
			table = append(table, row)
		case filled == 1:
			prev := table[len(table)-1]
			for col, cell := range row {
				if cell == "" {
					continue
				}
				if prev[col] == "" {
					prev[col] = cell
				} else {
					prev[col] += "\n" + cell
				}
			}
		}
	}
	return table
}

func columnOf(columns []float64, x float64) int {
	col := 0
	for i, start := range columns {
		if start <= x+snapTolerance {
			col = i
		}
	}
	return col
}

// ruledTable builds a grid from thin rules and box outlines, then drops every
// glyph into the cell containing its centre. Rows with no text are dropped.
func (p *LayoutPage) ruledTable() Table {
	var xs, ys []float64
	for _, s := range p.segments {
		s = s.normalized()
		w, h := s.X1-s.X0, s.Y1-s.Y0
		switch {
		case w <= edgeThickness && h > edgeThickness:
			xs = append(xs, (s.X0+s.X1)/2)
		case h <= edgeThickness && w > edgeThickness:
			ys = append(ys, (s.Y0+s.Y1)/2)
		case w > edgeThickness && h > edgeThickness:
			xs = append(xs, s.X0, s.X1)
			ys = append(ys, s.Y0, s.Y1)
		}
	}

	xs = cluster(xs, 1)
	ys = cluster(ys, 1)
	if len(xs) < 3 || len(ys) < 3 {
		return nil
	}
	slices.Reverse(ys)

	cols, rows := len(xs)-1, len(ys)-1
	cells := make([][][]Glyph, rows)
	for r := range cells {
		cells[r] = make([][]Glyph, cols)
	}

	for _, g := range p.glyphs {
		if g.blank() {
			continue
		}
		cx := g.X + g.width()/2
		cy := g.Y + g.size()*0.3

		col, row := -1, -1
		for i := 0; i < cols; i++ {
			if cx >= xs[i] && cx < xs[i+1] {
				col = i
				break
			}
		}
		for j := 0; j < rows; j++ {
			if cy <= ys[j] && cy > ys[j+1] {
				row = j
				break
			}
		}
		if col < 0 || row < 0 {
			continue
		}
		cells[row][col] = append(cells[row][col], g)
	}

	var table Table
	for _, rowCells := range cells {
		row := make(Row, cols)
		empty := true
		for c, glyphs := range rowCells {
			row[c] = cellText(glyphs)
			if row[c] != "" {
				empty = false
			}
		}
		if !empty {
			table = append(table, row)
		}
	}
	return table
}

func cellText(glyphs []Glyph) string {
	if len(glyphs) == 0 {
		return ""
	}
	var lines []string
	for _, l := range groupLines(glyphs) {
		if t := l.text(); t != "" {
			lines = append(lines, t)
		}
	}
	return strings.Join(lines, "\n")
}

// cluster sorts values and merges runs closer than snapTolerance, keeping
// the mean of every run with at least minHits members.
func cluster(values []float64, minHits int) []float64 {
	if len(values) == 0 {
		return nil
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)

	var (
		out   []float64
		sum   = sorted[0]
		count = 1
	)
	flush := func() {
		if count >= minHits {
			out = append(out, sum/float64(count))
		}
	}
	for i := 1; i < len(sorted); i++ {
		if sorted[i]-sorted[i-1] <= snapTolerance {
			sum += sorted[i]
			count++
			continue
		}
		flush()
		sum, count = sorted[i], 1
	}
	flush()
	return out
}
