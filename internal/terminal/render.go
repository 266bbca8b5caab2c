// Package terminal hosts combat in a text terminal through tcell: it draws
// the battlefield and the command menu and feeds key presses to the HUD.
package terminal

import (
	"fmt"
	"unicode/utf8"

	"github.com/gdamore/tcell/v2"

	"github.com/cory-johannsen/tilequest/internal/game/combat"
)

// Battlefield pixels per terminal cell.
const (
	cellWidth  = 4
	cellHeight = 8
)

var (
	styleText       = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	styleDim        = tcell.StyleDefault.Foreground(tcell.ColorGray)
	stylePlayer     = tcell.StyleDefault.Foreground(tcell.ColorAqua)
	styleMonster    = tcell.StyleDefault.Foreground(tcell.ColorRed)
	styleProjectile = tcell.StyleDefault.Foreground(tcell.ColorFuchsia).Bold(true)
	styleLoss       = tcell.StyleDefault.Foreground(tcell.ColorOrangeRed)
	styleGain       = tcell.StyleDefault.Foreground(tcell.ColorLime)
	styleCursor     = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
)

// Renderer draws one combat frame onto a tcell screen.
type Renderer struct {
	screen tcell.Screen
}

// NewRenderer returns a Renderer drawing onto screen.
//
// Precondition: screen must be initialised.
func NewRenderer(screen tcell.Screen) *Renderer {
	return &Renderer{screen: screen}
}

// DrawCombatant draws c as its initial with a name and health label. Players
// stand on the right so their label goes to the right of the glyph; monster
// labels go to the left.
func (r *Renderer) DrawCombatant(c *combat.Combatant, highlighted, targeted bool) {
	x, y := cellOf(c.Position)
	style := styleMonster
	if c.Kind == combat.KindPlayer {
		style = stylePlayer
	}
	glyph, _ := utf8.DecodeRuneInString(c.Name())
	if c.IsDeadOrDying() {
		glyph = 'x'
		style = styleDim
	}
	if highlighted {
		style = style.Reverse(true)
	}
	if targeted {
		style = style.Underline(true).Foreground(tcell.ColorYellow)
	}
	r.screen.SetContent(x, y, glyph, nil, style)

	label := fmt.Sprintf("%s %d/%d", c.Name(), c.Statistics().HealthPoints, c.MaxStatistics().HealthPoints)
	if c.Kind == combat.KindPlayer {
		drawText(r.screen, x+2, y, label, styleText)
	} else {
		drawText(r.screen, x-1-utf8.RuneCountInString(label), y, label, styleText)
	}
}

// DrawProjectile draws a spell as '*' and a thrown item as 'o'.
func (r *Renderer) DrawProjectile(p combat.Projectile) {
	x, y := cellOf(p.Position)
	glyph := '*'
	if p.Kind == combat.ActionItem {
		glyph = 'o'
	}
	r.screen.SetContent(x, y, glyph, nil, styleProjectile)
}

// DrawEffect draws a floating statistic change such as "HP-5".
func (r *Renderer) DrawEffect(e combat.FloatingEffect) {
	x, y := cellOf(e.Position)
	style := styleGain
	if e.Amount < 0 {
		style = styleLoss
	}
	drawText(r.screen, x, y-1, fmt.Sprintf("%s%+d", e.Label, e.Amount), style)
}

func cellOf(p combat.Vec2) (int, int) {
	return int(p.X) / cellWidth, int(p.Y) / cellHeight
}

// drawText writes s starting at (x, y), clipping anything left of column 0.
func drawText(screen tcell.Screen, x, y int, s string, style tcell.Style) int {
	for _, ch := range s {
		if x >= 0 {
			screen.SetContent(x, y, ch, nil, style)
		}
		x++
	}
	return x
}
