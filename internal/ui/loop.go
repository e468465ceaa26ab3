// Loop is T4: it owns QueryState and view state, translates decoded
// screen events into Actions, mutates state, and publishes `key`
// events to the Searcher on every query/cursor change (spec §4.5).
package ui

import (
	"sync/atomic"
	"time"

	"github.com/dshills/swiftpick/internal/atomicx"
	"github.com/dshills/swiftpick/internal/bus"
	"github.com/dshills/swiftpick/internal/corpus"
	"github.com/dshills/swiftpick/internal/screen"
	"github.com/dshills/swiftpick/internal/search"
)

// Outcome is what the loop decided to do on exit.
type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomeCommit
	OutcomeAbort
)

// Loop drives T4's keystroke→action→state-update cycle.
type Loop struct {
	Driver      screen.Driver
	Bus         *bus.Bus
	Results     *atomicx.Cell[[]corpus.Match]
	Spinner     *atomicx.Cell[int]
	Count       *atomicx.Cell[int]
	MultiSelect bool

	Query     QueryState
	VCursor   int
	Selection *SelectionSet
	yank      string
	seq       uint64

	lastClickTime time.Time
	lastClickRow  int

	outcome Outcome
}

// NewLoop constructs a Loop over an already-published Worker's state.
func NewLoop(d screen.Driver, b *bus.Bus, results *atomicx.Cell[[]corpus.Match], spinner, count *atomicx.Cell[int], multi bool) *Loop {
	return &Loop{
		Driver:      d,
		Bus:         b,
		Results:     results,
		Spinner:     spinner,
		Count:       count,
		MultiSelect: multi,
		Selection:   NewSelectionSet(),
	}
}

// Step applies one decoded event, publishing a `key` event if the
// query or cursor changed. It returns the outcome; OutcomeNone means
// keep looping.
func (l *Loop) Step(ev screen.Event) Outcome {
	action := Resolve(ev, l.MultiSelect)
	before := l.Query

	switch action {
	case ActionInsertRune:
		l.Query.InsertRune(ev.Rune)
	case ActionDeleteBack:
		l.Query.DeleteBack()
	case ActionDeleteForward:
		l.Query.DeleteForward()
	case ActionCursorHome:
		l.Query.Home()
	case ActionCursorEnd:
		l.Query.End()
	case ActionCursorLeft:
		l.Query.Left()
	case ActionCursorRight:
		l.Query.Right()
	case ActionWordLeft:
		l.Query.WordLeft()
	case ActionWordRight:
		l.Query.WordRight()
	case ActionKillToStart:
		l.yank = l.Query.KillToStart()
	case ActionKillWordBack:
		l.yank = l.Query.KillWordBack()
	case ActionYank:
		l.Query.Yank(l.yank)
	case ActionVCursorDown:
		l.moveVCursor(-1)
	case ActionVCursorUp:
		l.moveVCursor(1)
	case ActionPageBottom:
		l.VCursor = 0
	case ActionPageTop:
		l.VCursor = l.maxRows()
	case ActionToggleSelectDown:
		l.toggleCurrent()
		l.moveVCursor(-1)
	case ActionToggleSelectUp:
		l.toggleCurrent()
		l.moveVCursor(1)
	case ActionCommit:
		l.outcome = OutcomeCommit
		return OutcomeCommit
	case ActionAbort:
		if ev.Key != screen.KeyCtrlD || l.Query.Text == "" {
			l.outcome = OutcomeAbort
			return OutcomeAbort
		}
	case ActionRedraw:
		l.Driver.PostResize()
	case ActionMouseClick:
		l.handleMouseClick(ev)
	case ActionMouseScrollUp:
		l.moveVCursor(1)
	case ActionMouseScrollDown:
		l.moveVCursor(-1)
	}

	if l.Query != before {
		l.publishKey()
	}
	if l.outcome != OutcomeNone {
		return l.outcome
	}
	return OutcomeNone
}

func (l *Loop) maxRows() int {
	_, rows := l.Driver.Size()
	n := rows - 2
	if n < 0 {
		n = 0
	}
	return n
}

func (l *Loop) moveVCursor(delta int) {
	l.VCursor += delta
	if l.VCursor < 0 {
		l.VCursor = 0
	}
	if max := l.maxRows(); l.VCursor > max {
		l.VCursor = max
	}
}

func (l *Loop) currentLine() (string, bool) {
	results := l.Results.Load()
	if l.VCursor < 0 || l.VCursor >= len(results) {
		return "", false
	}
	return results[l.VCursor].Line.Text, true
}

func (l *Loop) toggleCurrent() {
	if line, ok := l.currentLine(); ok {
		l.Selection.Toggle(line)
	}
}

// handleMouseClick implements spec §4.5's "mouse click row r: set
// vcursor; shift-click also toggles selection; second click within
// 0.5s = commit". ev.MouseY is a screen row (0 at the top); the list
// is drawn bottom-up per render.Draw's `y = rows-3-row` (frame.go), so
// the click has to be inverted back into a match index before it can
// become VCursor.
func (l *Loop) handleMouseClick(ev screen.Event) {
	_, rows := l.Driver.Size()
	idx := rows - 3 - ev.MouseY
	if idx < 0 {
		idx = 0
	}
	if max := l.maxRows(); idx > max {
		idx = max
	}
	l.VCursor = idx

	if ev.MouseShift {
		l.toggleCurrent()
	}

	now := time.Now()
	if idx == l.lastClickRow && now.Sub(l.lastClickTime) < 500*time.Millisecond {
		l.outcome = OutcomeCommit
	}
	l.lastClickTime = now
	l.lastClickRow = idx
}

// Outcome returns the last decided outcome (OutcomeNone if Step hasn't
// produced a terminal decision yet).
func (l *Loop) Outcome() Outcome { return l.outcome }

func (l *Loop) publishKey() {
	seq := atomic.AddUint64(&l.seq, 1)
	l.Bus.Emit(bus.KindKey, search.QuerySnapshot{Text: l.Query.Text, CursorX: l.Query.CursorX, Sequence: seq})
}

// Picks returns the committed selection in selection order (multi-
// select) or the single line under vcursor.
func (l *Loop) Picks() []string {
	if l.MultiSelect && l.Selection.Len() > 0 {
		return l.Selection.Order()
	}
	if line, ok := l.currentLine(); ok {
		return []string{line}
	}
	return nil
}
