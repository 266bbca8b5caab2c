package terminal

import (
	"github.com/gdamore/tcell/v2"

	"github.com/cory-johannsen/tilequest/internal/hud"
)

// Layout of the bottom panel, in rows from the bottom of the screen.
const (
	panelHeight = 8
	menuWidth   = 24
)

// drawMenu draws the command menu in the bottom-left corner.
func drawMenu(screen tcell.Screen, v hud.View) {
	_, h := screen.Size()
	top := h - panelHeight
	drawText(screen, 1, top, v.Title, styleText.Bold(true))
	for i, opt := range v.Options {
		row := top + 1 + i
		if row >= h {
			break
		}
		style := styleText
		marker := "  "
		if i == v.Cursor {
			style = styleCursor
			marker = "> "
		}
		drawText(screen, 1, row, marker+opt, style)
	}
}

// drawMessages draws the newest narration to the right of the menu.
func drawMessages(screen tcell.Screen, msgs []string) {
	_, h := screen.Size()
	top := h - panelHeight
	if len(msgs) > panelHeight {
		msgs = msgs[len(msgs)-panelHeight:]
	}
	for i, m := range msgs {
		style := styleDim
		if i == len(msgs)-1 {
			style = styleText
		}
		drawText(screen, menuWidth+2, top+i, m, style)
	}
}

// drawLines draws lines starting at row y, one per row.
func drawLines(screen tcell.Screen, x, y int, lines []string, style tcell.Style) {
	for i, l := range lines {
		drawText(screen, x, y+i, l, style)
	}
}
