package combat

import (
	"fmt"

	"github.com/cory-johannsen/tilequest/internal/game/inventory"
	"github.com/cory-johannsen/tilequest/internal/game/ruleset"
)

// ActionKind identifies what a combatant does on its turn.
type ActionKind int

const (
	ActionMelee ActionKind = iota
	ActionSpell
	ActionItem
	ActionDefend
)

// String returns the human-readable name of the ActionKind.
func (k ActionKind) String() string {
	switch k {
	case ActionMelee:
		return "melee"
	case ActionSpell:
		return "spell"
	case ActionItem:
		return "item"
	case ActionDefend:
		return "defend"
	default:
		return "unknown"
	}
}

// Stage is one phase of an action's fixed lifecycle. Stages only move forward,
// one at a time, and are never revisited.
type Stage int

const (
	StageNotStarted Stage = iota
	StagePreparing
	StageAdvancing
	StageExecuting
	StageReturning
	StageFinishing
	StageComplete
)

// String returns a human-readable stage label.
func (s Stage) String() string {
	switch s {
	case StageNotStarted:
		return "not_started"
	case StagePreparing:
		return "preparing"
	case StageAdvancing:
		return "advancing"
	case StageExecuting:
		return "executing"
	case StageReturning:
		return "returning"
	case StageFinishing:
		return "finishing"
	case StageComplete:
		return "complete"
	default:
		return "unknown"
	}
}

// Projectile is a spell or thrown item in flight.
type Projectile struct {
	Kind        ActionKind
	Position    Vec2
	Destination Vec2
}

// Action is a staged behavior performed by one combatant. Kind selects which
// payload is meaningful: Spell for ActionSpell, Item for ActionItem.
// Combatants are referenced by ID; the owning Session resolves them.
type Action struct {
	Kind        ActionKind
	CombatantID string
	TargetID    string
	Spell       *ruleset.Spell
	Item        *inventory.ItemDef

	stage        Stage
	secondaryIDs []string
	projectile   *Projectile
	approach     Vec2
	fizzled      bool
}

// NewMeleeAction returns a weapon attack by actor. A target must be set with
// WithTarget before it is committed.
func NewMeleeAction(actor *Combatant) (*Action, error) {
	if actor == nil {
		return nil, fmt.Errorf("%w: melee action needs a combatant", ErrInvalidArgument)
	}
	return &Action{Kind: ActionMelee, CombatantID: actor.ID}, nil
}

// NewSpellAction returns a cast of spell by actor.
//
// Precondition: spell must be usable in battle.
func NewSpellAction(actor *Combatant, spell *ruleset.Spell) (*Action, error) {
	if actor == nil || spell == nil {
		return nil, fmt.Errorf("%w: spell action needs a combatant and a spell", ErrInvalidArgument)
	}
	if !spell.UsableInBattle {
		return nil, fmt.Errorf("%w: spell %q cannot be used in battle", ErrInvalidArgument, spell.ID)
	}
	return &Action{Kind: ActionSpell, CombatantID: actor.ID, Spell: spell}, nil
}

// NewItemAction returns a use of one unit of item by actor.
//
// Precondition: item must be usable in battle.
func NewItemAction(actor *Combatant, item *inventory.ItemDef) (*Action, error) {
	if actor == nil || item == nil {
		return nil, fmt.Errorf("%w: item action needs a combatant and an item", ErrInvalidArgument)
	}
	if !item.UsableInBattle {
		return nil, fmt.Errorf("%w: item %q cannot be used in battle", ErrInvalidArgument, item.ID)
	}
	return &Action{Kind: ActionItem, CombatantID: actor.ID, Item: item}, nil
}

// NewDefendAction returns a defensive stance by actor. It needs no target.
func NewDefendAction(actor *Combatant) (*Action, error) {
	if actor == nil {
		return nil, fmt.Errorf("%w: defend action needs a combatant", ErrInvalidArgument)
	}
	return &Action{Kind: ActionDefend, CombatantID: actor.ID}, nil
}

// WithTarget returns a fresh, unstarted copy of a aimed at target.
// Actions that need no target ignore it and accept nil.
func (a *Action) WithTarget(target *Combatant) (*Action, error) {
	out := &Action{
		Kind:        a.Kind,
		CombatantID: a.CombatantID,
		Spell:       a.Spell,
		Item:        a.Item,
	}
	if !a.IsTargetNeeded() {
		return out, nil
	}
	if target == nil {
		return nil, fmt.Errorf("%w: %s action needs a target", ErrInvalidArgument, a.Kind)
	}
	out.TargetID = target.ID
	return out, nil
}

// Stage returns the current lifecycle stage.
func (a *Action) Stage() Stage { return a.stage }

// SecondaryTargetIDs returns the adjacent targets captured when the action was committed.
func (a *Action) SecondaryTargetIDs() []string { return a.secondaryIDs }

// Projectile returns the projectile in flight, if any.
func (a *Action) Projectile() (Projectile, bool) {
	if a.projectile == nil {
		return Projectile{}, false
	}
	return *a.projectile, true
}

// IsOffensive reports whether the action is aimed at the opposing side.
func (a *Action) IsOffensive() bool {
	switch a.Kind {
	case ActionMelee:
		return true
	case ActionSpell:
		return a.Spell.Offensive
	case ActionItem:
		return a.Item.Offensive
	default:
		return false
	}
}

// IsTargetNeeded reports whether the action must be aimed before commit.
func (a *Action) IsTargetNeeded() bool { return a.Kind != ActionDefend }

// AdjacentTargets returns how many neighbours on each side of the primary target are also hit.
func (a *Action) AdjacentTargets() int {
	switch a.Kind {
	case ActionSpell:
		return a.Spell.AdjacentTargets
	case ActionItem:
		return a.Item.AdjacentTargets
	default:
		return 0
	}
}

// IsCharacterValidUser reports whether actor can currently perform the action.
func (a *Action) IsCharacterValidUser(actor *Combatant) bool {
	if actor == nil || actor.ID != a.CombatantID {
		return false
	}
	if a.Kind == ActionSpell {
		return actor.Statistics().MagicPoints >= a.Spell.MagicPointCost
	}
	return true
}

// Heuristic scores the action for AI ranking, roughly proportional to its expected effect.
func (a *Action) Heuristic(actor *Combatant) float64 {
	switch a.Kind {
	case ActionMelee:
		return actor.DamageRange().Average()
	case ActionSpell:
		return float64(actor.Statistics().MagicalOffense) + a.Spell.TargetEffectRange.AverageHealth()
	case ActionItem:
		return a.Item.TargetEffectRange.AverageHealth()
	default:
		return 0
	}
}

// String describes the action for logs.
func (a *Action) String() string {
	switch a.Kind {
	case ActionSpell:
		return fmt.Sprintf("%s casts %s at %s", a.CombatantID, a.Spell.Name, a.TargetID)
	case ActionItem:
		return fmt.Sprintf("%s uses %s on %s", a.CombatantID, a.Item.Name, a.TargetID)
	case ActionDefend:
		return fmt.Sprintf("%s defends", a.CombatantID)
	default:
		return fmt.Sprintf("%s attacks %s", a.CombatantID, a.TargetID)
	}
}
