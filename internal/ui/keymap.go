package ui

import "github.com/dshills/swiftpick/internal/screen"

// Resolve translates a decoded screen.Event into the fixed Action
// table of spec §4.5. Ctrl-P/Ctrl-K/Up all resolve to the same
// ActionVCursorUp, Enter and Ctrl-M both resolve to ActionCommit, etc.
// — the "flatten cyclic closures" instruction of spec.md §9.
func Resolve(ev screen.Event, multiSelect bool) Action {
	switch ev.Kind {
	case screen.EventRune:
		return ActionInsertRune

	case screen.EventKey:
		switch ev.Key {
		case screen.KeyCtrlH, screen.KeyBackspace:
			return ActionDeleteBack
		case screen.KeyDelete:
			return ActionDeleteForward
		case screen.KeyCtrlA, screen.KeyHome:
			return ActionCursorHome
		case screen.KeyCtrlE, screen.KeyEnd:
			return ActionCursorEnd
		case screen.KeyCtrlB, screen.KeyLeft:
			return ActionCursorLeft
		case screen.KeyCtrlF, screen.KeyRight:
			return ActionCursorRight
		case screen.KeyAltB:
			return ActionWordLeft
		case screen.KeyAltF:
			return ActionWordRight
		case screen.KeyCtrlU:
			return ActionKillToStart
		case screen.KeyCtrlW:
			return ActionKillWordBack
		case screen.KeyCtrlY:
			return ActionYank
		case screen.KeyCtrlJ, screen.KeyCtrlN, screen.KeyDown:
			return ActionVCursorDown
		case screen.KeyCtrlK, screen.KeyCtrlP, screen.KeyUp:
			return ActionVCursorUp
		case screen.KeyPgDn:
			return ActionPageBottom
		case screen.KeyPgUp:
			return ActionPageTop
		case screen.KeyTab:
			if multiSelect {
				return ActionToggleSelectDown
			}
			return ActionNone
		case screen.KeyBacktab:
			if multiSelect {
				return ActionToggleSelectUp
			}
			return ActionNone
		case screen.KeyEnter:
			return ActionCommit
		case screen.KeyCtrlD:
			return ActionAbort // caller checks "empty query" before honoring
		case screen.KeyCtrlC, screen.KeyCtrlG, screen.KeyCtrlQ, screen.KeyEsc:
			return ActionAbort
		case screen.KeyCtrlL:
			return ActionRedraw
		default:
			return ActionNone
		}

	case screen.EventMouse:
		switch ev.MouseKind {
		case screen.MouseClick:
			return ActionMouseClick
		case screen.MouseScrollUp:
			return ActionMouseScrollUp
		case screen.MouseScrollDown:
			return ActionMouseScrollDown
		default:
			return ActionNone
		}

	default:
		return ActionNone
	}
}
