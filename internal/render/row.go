// Row trimming and offset-to-token splitting for a single candidate
// line, per spec §4.5 "Rendering a row". Width accounting uses
// mattn/go-runewidth so CJK/Hangul codepoints count as 2 cells, others
// as 1 — exactly the table spec §4.5 calls for.
package render

import (
	"github.com/mattn/go-runewidth"

	"github.com/dshills/swiftpick/internal/corpus"
)

// Token is one contiguous run of a rendered row, either plain or
// highlighted (falling inside a match offset).
type Token struct {
	Text        string
	Highlighted bool
}

// TrimmedRow is a line already cut to fit width W, with its offsets
// translated into the trimmed coordinate space.
type TrimmedRow struct {
	Text    string
	Offsets []corpus.Offset
}

// Trim implements step 1 of spec §4.5: if the line's display width
// exceeds W, truncate either the right side (appending "..") when the
// rightmost offset still fits in W-2, or the left side (prepending
// "..") otherwise, shifting offsets accordingly.
func Trim(line string, offsets []corpus.Offset, w int) TrimmedRow {
	if runewidth.StringWidth(line) <= w || w <= 2 {
		return TrimmedRow{Text: line, Offsets: offsets}
	}

	rightmostEnd := 0
	for _, o := range offsets {
		if o.End > rightmostEnd {
			rightmostEnd = o.End
		}
	}

	if runewidth.StringWidth(line[:minInt(rightmostEnd, len(line))]) <= w-2 {
		return trimRight(line, offsets, w)
	}
	return trimLeft(line, offsets, w)
}

func trimRight(line string, offsets []corpus.Offset, w int) TrimmedRow {
	limit := w - 2
	cut := 0
	width := 0
	for i, r := range line {
		rw := runewidth.RuneWidth(r)
		if width+rw > limit {
			break
		}
		width += rw
		cut = i + runeLen(r)
	}
	return TrimmedRow{Text: line[:cut] + "..", Offsets: offsets}
}

func trimLeft(line string, offsets []corpus.Offset, w int) TrimmedRow {
	limit := w - 2
	// Walk from the end, keeping the trailing run of runes that fits in
	// limit cells.
	type pos struct {
		byteIdx int
		width   int
	}
	var cuts []pos
	width := 0
	for i := len(line); i > 0; {
		r, size := decodeLastRune(line[:i])
		rw := runewidth.RuneWidth(r)
		if width+rw > limit {
			break
		}
		width += rw
		i -= size
		cuts = append(cuts, pos{byteIdx: i, width: width})
	}
	start := len(line)
	if len(cuts) > 0 {
		start = cuts[len(cuts)-1].byteIdx
	}

	trimmedChars := start
	shift := 2 - trimmedChars

	out := make([]corpus.Offset, 0, len(offsets))
	for _, o := range offsets {
		begin := o.Begin + shift
		end := o.End + shift
		if begin < 2 {
			begin = 2
		}
		if end < begin {
			continue
		}
		out = append(out, corpus.Offset{Begin: begin, End: end})
	}

	return TrimmedRow{Text: ".." + line[start:], Offsets: out}
}

// Tokenize implements step 2 of spec §4.5: split the (possibly
// trimmed) line into alternating plain/highlighted tokens along the
// sorted, non-overlapping offset list, dropping empty segments.
func Tokenize(row TrimmedRow) []Token {
	line := row.Text
	offs := mergeSortedOffsets(row.Offsets)

	var toks []Token
	pos := 0
	for _, o := range offs {
		begin := clamp(o.Begin, 0, len(line))
		end := clamp(o.End, 0, len(line))
		if begin > pos {
			toks = append(toks, Token{Text: line[pos:begin]})
		}
		if end > begin {
			toks = append(toks, Token{Text: line[begin:end], Highlighted: true})
		}
		if end > pos {
			pos = end
		}
	}
	if pos < len(line) {
		toks = append(toks, Token{Text: line[pos:]})
	}
	if len(toks) == 0 {
		return []Token{{Text: line}}
	}
	return toks
}

// mergeSortedOffsets sorts offsets by Begin and collapses overlaps, so
// Tokenize never double-emits a highlighted region.
func mergeSortedOffsets(offs []corpus.Offset) []corpus.Offset {
	if len(offs) == 0 {
		return nil
	}
	sorted := make([]corpus.Offset, len(offs))
	copy(sorted, offs)
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && sorted[j-1].Begin > sorted[j].Begin; j-- {
			sorted[j-1], sorted[j] = sorted[j], sorted[j-1]
		}
	}

	merged := sorted[:1]
	for _, o := range sorted[1:] {
		last := &merged[len(merged)-1]
		if o.Begin <= last.End {
			if o.End > last.End {
				last.End = o.End
			}
			continue
		}
		merged = append(merged, o)
	}
	return merged
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func runeLen(r rune) int {
	switch {
	case r < 0x80:
		return 1
	case r < 0x800:
		return 2
	case r < 0x10000:
		return 3
	default:
		return 4
	}
}

func decodeLastRune(s string) (rune, int) {
	if s == "" {
		return 0, 0
	}
	i := len(s) - 1
	for i > 0 && isUTF8Continuation(s[i]) {
		i--
	}
	for _, r := range s[i:] {
		return r, len(s) - i
	}
	return 0, 0
}

func isUTF8Continuation(b byte) bool { return b&0xC0 == 0x80 }
