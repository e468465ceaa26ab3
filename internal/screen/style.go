package screen

import "github.com/gdamore/tcell/v2"

// Attr is a small bitmask of visual attributes, kept independent of
// tcell's own AttrMask so callers never import tcell directly.
type Attr uint8

const (
	AttrNone Attr = 0
	AttrBold Attr = 1 << iota
	AttrReverse
	AttrDim
)

// Style bundles a foreground/background color pair with an attribute
// mask. A Color with Default set maps to the terminal's default color
// via tcell.ColorDefault, matching §6's "use_default_colors when
// available"; the zero Color is RGB black.
type Style struct {
	FG, BG Color
	Attr   Attr
}

// DefaultStyle is plain text on the terminal's default colors.
var DefaultStyle = Style{FG: Color{Default: true}, BG: Color{Default: true}}

func (s Style) tcell() tcell.Style {
	st := tcell.StyleDefault.Foreground(s.FG.tcell()).Background(s.BG.tcell())
	if s.Attr&AttrBold != 0 {
		st = st.Bold(true)
	}
	if s.Attr&AttrReverse != 0 {
		st = st.Reverse(true)
	}
	if s.Attr&AttrDim != 0 {
		st = st.Dim(true)
	}
	return st
}

// Highlighted returns s with reverse video applied, used for the whole
// row under the cursor (spec §4.5); matched-offset tokens are drawn bold
// instead.
func (s Style) Highlighted() Style {
	s.Attr |= AttrReverse
	return s
}
