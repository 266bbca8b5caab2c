package ai

import "github.com/cory-johannsen/tilequest/internal/game/combat"

// BuildWorldState snapshots s from self's point of view.
//
// Precondition: s and self must not be nil; self belongs to s.
// Postcondition: ws.Self.ID == self.ID; every combatant of both sides is represented.
func BuildWorldState(s *combat.Session, self *combat.Combatant) *WorldState {
	ws := &WorldState{}
	add := func(c *combat.Combatant) {
		st := &CombatantState{
			ID:    c.ID,
			Name:  c.Name(),
			Kind:  c.Kind,
			HP:    c.Statistics().HealthPoints,
			MaxHP: c.MaxStatistics().HealthPoints,
			Dead:  !c.IsAlive(),
		}
		if c.ID == self.ID {
			ws.Self = st
		}
		ws.Combatants = append(ws.Combatants, st)
	}
	for _, c := range s.Players() {
		add(c)
	}
	for _, c := range s.Monsters() {
		add(c)
	}
	return ws
}
