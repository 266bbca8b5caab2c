package terminal

import (
	"github.com/gdamore/tcell/v2"

	"github.com/cory-johannsen/tilequest/internal/hud"
)

// MenuKey maps a terminal key press to a menu key. Arrows, WASD and vi keys
// move; Enter and space confirm; Escape and Backspace cancel.
func MenuKey(ev *tcell.EventKey) (hud.Key, bool) {
	switch ev.Key() {
	case tcell.KeyUp:
		return hud.KeyUp, true
	case tcell.KeyDown:
		return hud.KeyDown, true
	case tcell.KeyLeft:
		return hud.KeyLeft, true
	case tcell.KeyRight:
		return hud.KeyRight, true
	case tcell.KeyEnter:
		return hud.KeyConfirm, true
	case tcell.KeyEscape, tcell.KeyBackspace, tcell.KeyBackspace2:
		return hud.KeyCancel, true
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'w', 'k':
			return hud.KeyUp, true
		case 's', 'j':
			return hud.KeyDown, true
		case 'a', 'h':
			return hud.KeyLeft, true
		case 'd', 'l':
			return hud.KeyRight, true
		case ' ':
			return hud.KeyConfirm, true
		}
	}
	return 0, false
}

// isQuit reports whether ev asks to leave the game.
func isQuit(ev *tcell.EventKey) bool {
	if ev.Key() == tcell.KeyCtrlC {
		return true
	}
	return ev.Key() == tcell.KeyRune && (ev.Rune() == 'q' || ev.Rune() == 'Q')
}
