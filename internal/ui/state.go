package ui

import "unicode/utf8"

// QueryState is the (text, cursor_x) pair spec §3 says is "owned by UI
// loop, published atomically to Searcher" via a `key` event.
type QueryState struct {
	Text    string
	CursorX int // rune index into Text
}

// InsertRune inserts r at CursorX and advances the cursor.
func (q *QueryState) InsertRune(r rune) {
	runes := []rune(q.Text)
	out := make([]rune, 0, len(runes)+1)
	out = append(out, runes[:q.CursorX]...)
	out = append(out, r)
	out = append(out, runes[q.CursorX:]...)
	q.Text = string(out)
	q.CursorX++
}

// DeleteBack removes the rune before the cursor, if any.
func (q *QueryState) DeleteBack() {
	if q.CursorX == 0 {
		return
	}
	runes := []rune(q.Text)
	q.Text = string(append(runes[:q.CursorX-1], runes[q.CursorX:]...))
	q.CursorX--
}

// DeleteForward removes the rune under the cursor, if any.
func (q *QueryState) DeleteForward() {
	runes := []rune(q.Text)
	if q.CursorX >= len(runes) {
		return
	}
	q.Text = string(append(runes[:q.CursorX], runes[q.CursorX+1:]...))
}

// Home/End/Left/Right implement Ctrl-A/E/B/F (spec §4.5).
func (q *QueryState) Home()  { q.CursorX = 0 }
func (q *QueryState) End()   { q.CursorX = utf8.RuneCountInString(q.Text) }
func (q *QueryState) Left()  { if q.CursorX > 0 { q.CursorX-- } }
func (q *QueryState) Right() {
	if q.CursorX < utf8.RuneCountInString(q.Text) {
		q.CursorX++
	}
}

// WordLeft moves the cursor to the start of the previous
// whitespace-delimited word (Alt-B).
func (q *QueryState) WordLeft() {
	runes := []rune(q.Text)
	i := q.CursorX
	for i > 0 && isSpace(runes[i-1]) {
		i--
	}
	for i > 0 && !isSpace(runes[i-1]) {
		i--
	}
	q.CursorX = i
}

// WordRight moves the cursor to the end of the next word (Alt-F).
func (q *QueryState) WordRight() {
	runes := []rune(q.Text)
	i := q.CursorX
	for i < len(runes) && isSpace(runes[i]) {
		i++
	}
	for i < len(runes) && !isSpace(runes[i]) {
		i++
	}
	q.CursorX = i
}

// KillToStart deletes from the start of the line to the cursor,
// returning the killed text for the yank buffer (Ctrl-U).
func (q *QueryState) KillToStart() string {
	runes := []rune(q.Text)
	killed := string(runes[:q.CursorX])
	q.Text = string(runes[q.CursorX:])
	q.CursorX = 0
	return killed
}

// KillWordBack deletes the previous word, returning it for the yank
// buffer (Ctrl-W).
func (q *QueryState) KillWordBack() string {
	runes := []rune(q.Text)
	start := q.CursorX
	for start > 0 && isSpace(runes[start-1]) {
		start--
	}
	for start > 0 && !isSpace(runes[start-1]) {
		start--
	}
	killed := string(runes[start:q.CursorX])
	q.Text = string(append(runes[:start], runes[q.CursorX:]...))
	q.CursorX = start
	return killed
}

// Yank inserts s at the cursor (Ctrl-Y).
func (q *QueryState) Yank(s string) {
	runes := []rune(q.Text)
	ins := []rune(s)
	out := make([]rune, 0, len(runes)+len(ins))
	out = append(out, runes[:q.CursorX]...)
	out = append(out, ins...)
	out = append(out, runes[q.CursorX:]...)
	q.Text = string(out)
	q.CursorX += len(ins)
}

func isSpace(r rune) bool { return r == ' ' || r == '\t' }

// SelectionSet is an insertion-ordered set of selected line keys
// (spec §4.5's multi-select, invariant 8.5: "toggling twice leaves
// selected unchanged"). Keyed by line text, which is unique enough for
// a finder over distinct candidate lines.
type SelectionSet struct {
	present map[string]struct{}
	order   []string
}

// NewSelectionSet creates an empty set.
func NewSelectionSet() *SelectionSet {
	return &SelectionSet{present: make(map[string]struct{})}
}

// Toggle flips key's membership, appending to Order on insertion and
// removing (without reordering the rest) on deletion.
func (s *SelectionSet) Toggle(key string) {
	if _, ok := s.present[key]; ok {
		delete(s.present, key)
		for i, k := range s.order {
			if k == key {
				s.order = append(s.order[:i], s.order[i+1:]...)
				break
			}
		}
		return
	}
	s.present[key] = struct{}{}
	s.order = append(s.order, key)
}

// Has reports whether key is currently selected.
func (s *SelectionSet) Has(key string) bool {
	_, ok := s.present[key]
	return ok
}

// Order returns selected keys in the order they were selected (spec
// scenario S6: "Enter emits exactly A\nC\nB\n").
func (s *SelectionSet) Order() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Len reports how many lines are currently selected.
func (s *SelectionSet) Len() int { return len(s.order) }
