// Palette selection for the screen driver: truecolor when the
// terminal advertises it, else the nearest of the 256-color cube, else
// the 8-color ANSI fallback — per spec §6 ("256-color palette when
// $TERM contains "256", else 8-color fallback").
//
// Grounded on internal/renderer/color.go's Color type (an RGB struct
// with an Indexed/Default escape hatch), adapted here to delegate the
// actual nearest-color search to go-colorful's Lab-space distance
// instead of keystorm's unimplemented indexed-color path, since
// go-colorful is a pack dependency with exactly this capability and
// keystorm's own Color never actually performs a palette reduction.
package screen

import (
	"os"
	"strings"

	"github.com/gdamore/tcell/v2"
	colorful "github.com/lucasb-eyer/go-colorful"
)

// Color is a terminal color: either the terminal default (Default set)
// or an RGB value, downgraded when drawn to whatever palette width Init
// detected.
type Color struct {
	R, G, B uint8
	Default bool
}

// ColorFromRGB builds a true-color value.
func ColorFromRGB(r, g, b uint8) Color { return Color{R: r, G: g, B: b} }

// mode tracks the palette downgrade chosen at Init.
type mode int

const (
	modeTruecolor mode = iota
	mode256
	mode8
)

var activeMode = modeTruecolor

// detectMode inspects $TERM/$COLORTERM to pick the palette width, per
// spec §6.
func detectMode() mode {
	if ct := os.Getenv("COLORTERM"); strings.Contains(ct, "truecolor") || strings.Contains(ct, "24bit") {
		return modeTruecolor
	}
	term := os.Getenv("TERM")
	if strings.Contains(term, "256") {
		return mode256
	}
	if strings.Contains(term, "color") {
		return mode8
	}
	return mode8
}

func (c Color) tcell() tcell.Color {
	if c.Default {
		return tcell.ColorDefault
	}
	switch activeMode {
	case modeTruecolor:
		return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
	case mode256:
		return nearest256(c)
	default:
		return nearest8(c)
	}
}

// nearest256 maps an RGB color to the closest entry in tcell's 256
// xterm palette by CIE76 distance in Lab space, via go-colorful.
func nearest256(c Color) tcell.Color {
	target := colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}

	var best tcell.Color
	bestDist := -1.0
	for i := 0; i < 256; i++ {
		cand := tcell.PaletteColor(i)
		r, g, b := cand.RGB()
		cf := colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}
		d := target.DistanceCIE76(cf)
		if bestDist < 0 || d < bestDist {
			bestDist = d
			best = cand
		}
	}
	return best
}

// nearest8 further restricts the search to the first 8 (non-bright)
// ANSI entries, for terminals that advertise only basic color.
func nearest8(c Color) tcell.Color {
	target := colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}

	var best tcell.Color
	bestDist := -1.0
	for i := 0; i < 8; i++ {
		cand := tcell.PaletteColor(i)
		r, g, b := cand.RGB()
		cf := colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}
		d := target.DistanceCIE76(cf)
		if bestDist < 0 || d < bestDist {
			bestDist = d
			best = cand
		}
	}
	return best
}
