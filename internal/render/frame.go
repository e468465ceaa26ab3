// Frame builds the render.Command closures that draw swiftpick's
// three-region screen (spec §4.5/§6): the match list, the count/
// spinner status line, and the prompt line with its cursor. It is the
// only place that turns UI/search state into screen.Driver calls.
//
// Grounded on github.com/dshills/keystorm's internal/renderer.Renderer
// (the same "take a snapshot of state, emit a sequence of driver
// calls" shape), narrowed from a scrolling text-buffer viewport down
// to swiftpick's fixed list-plus-prompt layout.
package render

import (
	"fmt"

	"github.com/dshills/swiftpick/internal/corpus"
	"github.com/dshills/swiftpick/internal/screen"
)

// Spinner is the sequence of glyphs for the status-line spinner (spec
// §4.5). drawStatus shows the glyph at ListFrame.Spinner whenever
// ListFrame.Count is below ListFrame.Total, and a blank otherwise; it
// does not track whether the Reader has finished loading.
var Spinner = []rune{'-', '\\', '|', '/'}

// ListFrame is everything T4/T2 know about the current screen state
// that T3 needs in order to draw it.
type ListFrame struct {
	Matches    []corpus.Match
	VCursor    int
	IsSelected func(line string) bool
	Query      string
	CursorX    int
	Count      int
	Total      int
	Spinner    int
	MultiMode  bool

	// SelectedCount is the number of multi-selected lines (spec §4.5's
	// "matches/count (n_selected)"). Zero means the "(n)" suffix is
	// omitted.
	SelectedCount int

	// Progress is a 0-100 percentage from the Searcher's current match
	// cycle (spec §4.4 step 5). Zero means no progress suffix is drawn;
	// the Searcher itself resets this to 0 when a cycle returns, so a
	// finished cycle's percentage never lingers.
	Progress int
}

// Draw returns a Command that paints one full frame: the result list
// (bottom-up, match i on screen row rows-3-i, just above the status
// line), then the count/spinner line on rows-2, then the prompt line on
// rows-1.
func Draw(f ListFrame) Command {
	return func(d screen.Driver) {
		cols, rows := d.Size()
		d.Clear()

		listRows := rows - 2
		if listRows < 0 {
			listRows = 0
		}

		for row := 0; row < listRows; row++ {
			y := rows - 3 - row
			if y < 0 {
				break
			}
			idx := row
			if idx >= len(f.Matches) {
				d.ClearToEOL(0, y)
				continue
			}
			drawRow(d, y, cols, f.Matches[idx], idx == f.VCursor, f.IsSelected != nil && f.IsSelected(f.Matches[idx].Line.Text))
		}

		drawStatus(d, rows-2, cols, f)
		drawPrompt(d, rows-1, cols, f)

		if rows > 0 {
			d.ShowCursor(clamp(2+f.CursorX, 0, cols-1), rows-1)
		}
		d.Refresh()
	}
}

func drawRow(d screen.Driver, y, cols int, m corpus.Match, current, selected bool) {
	trimmed := Trim(m.Line.Text, m.Offsets, cols-2)
	toks := Tokenize(trimmed)

	x := 0
	marker := ' '
	switch {
	case current && selected:
		marker = '>'
	case current:
		marker = '>'
	case selected:
		marker = '+'
	}
	base := screen.DefaultStyle
	if current {
		base = base.Highlighted()
	}
	d.SetCell(0, y, marker, base)
	x = 2

	for _, t := range toks {
		st := base
		if t.Highlighted {
			st.Attr |= screen.AttrBold
		}
		for _, r := range t.Text {
			if x >= cols {
				break
			}
			d.SetCell(x, y, r, st)
			x++
		}
	}
	d.ClearToEOL(x, y)
}

func drawStatus(d screen.Driver, y, cols int, f ListFrame) {
	spin := ' '
	if f.Count < f.Total {
		spin = Spinner[f.Spinner%len(Spinner)]
	}
	text := fmt.Sprintf("  %d/%d %c", len(f.Matches), f.Total, spin)
	if f.SelectedCount > 0 {
		text += fmt.Sprintf(" (%d)", f.SelectedCount)
	}
	if f.Progress > 0 {
		text += fmt.Sprintf(" %d%%", f.Progress)
	}
	x := 0
	for _, r := range text {
		if x >= cols {
			break
		}
		d.SetCell(x, y, r, screen.DefaultStyle)
		x++
	}
	d.ClearToEOL(x, y)
}

func drawPrompt(d screen.Driver, y, cols int, f ListFrame) {
	d.SetCell(0, y, '>', screen.DefaultStyle)
	d.SetCell(1, y, ' ', screen.DefaultStyle)
	x := 2
	for _, r := range f.Query {
		if x >= cols {
			break
		}
		d.SetCell(x, y, r, screen.DefaultStyle)
		x++
	}
	d.ClearToEOL(x, y)
}
