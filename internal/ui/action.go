// Package ui implements the UI loop (T4, spec §4.5): the keystroke →
// action → state-update cycle and multi-select. The scripting
// short-circuits (filter mode, select-1/exit-0) live in internal/app.
//
// Grounded on github.com/dshills/keystorm's internal/input/key package
// for the key-decoding shape (a Key enum plus a ModMask, see
// translateKey in internal/screen) and on spec.md §9's explicit
// instruction to "flatten cyclic closures into a plain enum dispatched
// by a single handler" — the source fzf's key bindings are a
// mutually-referential dictionary of closures (Ctrl-P reuses Ctrl-K's
// closure, Enter references `pick`); here that collapses into Action
// plus one switch in Loop.Step.
package ui

// Action is the flat enum every decoded key/mouse event resolves to
// before Loop.Step applies it to the loop's state (spec.md §9).
type Action int

const (
	ActionNone Action = iota
	ActionInsertRune
	ActionDeleteBack
	ActionDeleteForward
	ActionCursorHome
	ActionCursorEnd
	ActionCursorLeft
	ActionCursorRight
	ActionWordLeft
	ActionWordRight
	ActionKillToStart
	ActionKillWordBack
	ActionYank
	ActionVCursorDown // Ctrl-J/Ctrl-N/Down: vcursor - 1, toward bottom of list
	ActionVCursorUp   // Ctrl-K/Ctrl-P/Up: vcursor + 1
	ActionPageBottom  // PgDn: vcursor = 0
	ActionPageTop     // PgUp: vcursor = max_rows
	ActionToggleSelectDown
	ActionToggleSelectUp
	ActionCommit
	ActionAbort
	ActionRedraw
	ActionMouseClick
	ActionMouseScrollUp
	ActionMouseScrollDown
)
