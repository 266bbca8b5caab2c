// Package hud turns abstract key presses into combat commands. It is input
// and rendering agnostic: hosts map their own keys to Key and draw View.
package hud

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/tilequest/internal/game/combat"
	"github.com/cory-johannsen/tilequest/internal/game/inventory"
)

// Key is a host-independent menu input.
type Key int

const (
	KeyUp Key = iota
	KeyDown
	KeyLeft
	KeyRight
	KeyConfirm
	KeyCancel
)

// Mode is the menu page currently shown.
type Mode int

const (
	ModeTop Mode = iota
	ModeSpell
	ModeItem
	ModeTarget
)

// Top-level choices in display order.
var topChoices = []string{"Attack", "Spell", "Item", "Defend", "Flee"}

const (
	choiceAttack = iota
	choiceSpell
	choiceItem
	choiceDefend
	choiceFlee
)

// Engine is the part of combat.Engine the menu drives.
type Engine interface {
	Session() (*combat.Session, error)
	Commit(a *combat.Action) error
	AttemptFlee() error
	SetTargets(primaryID string, adjacentCount int) error
	ClearTargets() error
}

// View is what the host draws for the menu.
type View struct {
	Title   string
	Options []string
	Cursor  int
}

// Menu is the player's command menu. It acts only while the session awaits a
// player command and resets whenever the highlighted combatant changes.
type Menu struct {
	engine Engine
	pack   *inventory.Pack
	items  *inventory.Registry
	logger *zap.Logger

	mode    Mode
	cursor  int
	owner   string
	spells  []*combat.Action
	useable []*combat.Action
	pending *combat.Action
	targets []*combat.Combatant
	back    Mode
}

// NewMenu returns a menu committing through engine. pack and items supply
// the Item page.
func NewMenu(engine Engine, pack *inventory.Pack, items *inventory.Registry, logger *zap.Logger) *Menu {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Menu{engine: engine, pack: pack, items: items, logger: logger}
}

// Mode returns the current page.
func (m *Menu) Mode() Mode { return m.mode }

// Reset returns to the top page.
func (m *Menu) Reset() {
	m.mode = ModeTop
	m.cursor = 0
	m.pending = nil
	m.targets = nil
	m.spells = nil
	m.useable = nil
}

// actor returns the highlighted player, or nil when no command is expected.
func (m *Menu) actor() (*combat.Session, *combat.Combatant) {
	s, err := m.engine.Session()
	if err != nil || !s.AwaitingPlayerCommand() {
		return nil, nil
	}
	h := s.Highlighted()
	if h.ID != m.owner {
		m.owner = h.ID
		m.Reset()
	}
	return s, h
}

// HandleKey applies one key press. Keys arriving while no player command is
// expected are ignored. Errors come from the engine rejecting a command.
func (m *Menu) HandleKey(k Key) error {
	s, actor := m.actor()
	if actor == nil {
		return nil
	}
	switch m.mode {
	case ModeTop:
		return m.handleTop(s, actor, k)
	case ModeSpell:
		return m.handleList(s, m.spells, k)
	case ModeItem:
		return m.handleList(s, m.useable, k)
	case ModeTarget:
		return m.handleTarget(k)
	}
	return nil
}

func (m *Menu) move(k Key, n int) {
	if n == 0 {
		return
	}
	switch k {
	case KeyUp, KeyLeft:
		m.cursor = (m.cursor - 1 + n) % n
	case KeyDown, KeyRight:
		m.cursor = (m.cursor + 1) % n
	}
}

func (m *Menu) handleTop(s *combat.Session, actor *combat.Combatant, k Key) error {
	if k != KeyConfirm {
		m.move(k, len(topChoices))
		return nil
	}
	switch m.cursor {
	case choiceAttack:
		a, err := combat.NewMeleeAction(actor)
		if err != nil {
			return err
		}
		m.aim(s, a, ModeTop)
	case choiceSpell:
		m.spells = m.spells[:0]
		for _, sp := range actor.BattleSpells() {
			a, err := combat.NewSpellAction(actor, sp)
			if err != nil {
				return err
			}
			m.spells = append(m.spells, a)
		}
		m.mode, m.cursor = ModeSpell, 0
	case choiceItem:
		m.useable = m.useable[:0]
		for _, st := range m.pack.Items() {
			def, ok := m.items.Item(st.ItemDefID)
			if !ok || !def.UsableInBattle {
				continue
			}
			a, err := combat.NewItemAction(actor, def)
			if err != nil {
				return err
			}
			m.useable = append(m.useable, a)
		}
		m.mode, m.cursor = ModeItem, 0
	case choiceDefend:
		a, err := combat.NewDefendAction(actor)
		if err != nil {
			return err
		}
		return m.commit(a)
	case choiceFlee:
		if err := m.engine.AttemptFlee(); err != nil {
			return err
		}
		m.Reset()
	}
	return nil
}

func (m *Menu) handleList(s *combat.Session, list []*combat.Action, k Key) error {
	switch k {
	case KeyCancel:
		m.Reset()
	case KeyConfirm:
		if len(list) == 0 {
			return nil
		}
		a := list[m.cursor]
		if !a.IsCharacterValidUser(s.Highlighted()) {
			m.logger.Debug("menu choice not usable", zap.Stringer("action", a))
			return nil
		}
		m.aim(s, a, m.mode)
	default:
		m.move(k, len(list))
	}
	return nil
}

// aim switches to target selection for a. Offensive actions cycle over
// living monsters, others over living players.
func (m *Menu) aim(s *combat.Session, a *combat.Action, back Mode) {
	m.pending = a
	m.back = back
	m.targets = s.Living(!a.IsOffensive())
	m.mode, m.cursor = ModeTarget, 0
	m.preview()
}

func (m *Menu) preview() {
	if len(m.targets) == 0 || m.pending == nil {
		return
	}
	if err := m.engine.SetTargets(m.targets[m.cursor].ID, m.pending.AdjacentTargets()); err != nil {
		m.logger.Debug("target preview", zap.Error(err))
	}
}

func (m *Menu) handleTarget(k Key) error {
	switch k {
	case KeyCancel:
		back := m.back
		m.pending, m.targets = nil, nil
		m.mode, m.cursor = back, 0
		return m.engine.ClearTargets()
	case KeyConfirm:
		if len(m.targets) == 0 {
			return nil
		}
		a, err := m.pending.WithTarget(m.targets[m.cursor])
		if err != nil {
			return err
		}
		return m.commit(a)
	default:
		m.move(k, len(m.targets))
		m.preview()
		return nil
	}
}

func (m *Menu) commit(a *combat.Action) error {
	if err := m.engine.Commit(a); err != nil {
		return fmt.Errorf("committing %s: %w", a, err)
	}
	m.Reset()
	return nil
}

// View describes the current page, or an empty View while the menu is idle.
func (m *Menu) View() View {
	_, actor := m.actor()
	if actor == nil {
		return View{}
	}
	v := View{Cursor: m.cursor}
	switch m.mode {
	case ModeTop:
		v.Title = actor.Name()
		v.Options = append(v.Options, topChoices...)
	case ModeSpell:
		v.Title = "Spell"
		for _, a := range m.spells {
			v.Options = append(v.Options, fmt.Sprintf("%s (%d MP)", a.Spell.Name, a.Spell.MagicPointCost))
		}
	case ModeItem:
		v.Title = "Item"
		for _, a := range m.useable {
			v.Options = append(v.Options, fmt.Sprintf("%s x%d", a.Item.Name, m.pack.Count(a.Item.ID)))
		}
	case ModeTarget:
		v.Title = "Target"
		for _, c := range m.targets {
			hp := c.Statistics().HealthPoints
			v.Options = append(v.Options, fmt.Sprintf("%s %d/%d", c.Name(), hp, c.MaxStatistics().HealthPoints))
		}
	}
	return v
}
