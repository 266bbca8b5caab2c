package ai

import "github.com/cory-johannsen/tilequest/internal/game/combat"

// CombatantState captures a combatant's state at decision time.
type CombatantState struct {
	ID    string
	Name  string
	Kind  combat.Kind
	HP    int
	MaxHP int
	Dead  bool
}

// HPPercent returns current HP as a percentage of MaxHP; 0 if MaxHP == 0.
func (c *CombatantState) HPPercent() float64 {
	if c.MaxHP <= 0 {
		return 0
	}
	return float64(c.HP) / float64(c.MaxHP) * 100
}

// IsDamaged reports whether the combatant is alive and below its maximum HP.
func (c *CombatantState) IsDamaged() bool {
	return !c.Dead && c.HP < c.MaxHP
}

// WorldState is the snapshot one monster decides from.
//
// Invariant: Self must not be nil and must appear in Combatants.
type WorldState struct {
	Self       *CombatantState
	Combatants []*CombatantState
}

// EnemiesOf returns the living combatants on the other side from Self, in roster order.
func (ws *WorldState) EnemiesOf() []*CombatantState {
	var out []*CombatantState
	for _, c := range ws.Combatants {
		if !c.Dead && c.Kind != ws.Self.Kind {
			out = append(out, c)
		}
	}
	return out
}

// AlliesOf returns the living combatants on Self's side, Self included.
func (ws *WorldState) AlliesOf() []*CombatantState {
	var out []*CombatantState
	for _, c := range ws.Combatants {
		if !c.Dead && c.Kind == ws.Self.Kind {
			out = append(out, c)
		}
	}
	return out
}

// WeakestDamagedAlly returns the living ally with the lowest HP among those
// below their maximum, or nil when nobody on Self's side is hurt.
//
// Postcondition: ties are broken by roster order.
func (ws *WorldState) WeakestDamagedAlly() *CombatantState {
	var weakest *CombatantState
	for _, c := range ws.AlliesOf() {
		if !c.IsDamaged() {
			continue
		}
		if weakest == nil || c.HP < weakest.HP {
			weakest = c
		}
	}
	return weakest
}
