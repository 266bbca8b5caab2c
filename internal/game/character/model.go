// Package character defines the persistent party: players whose statistics
// survive combat through a modifier overlay, and the shared pack and purse.
package character

import (
	"time"

	"github.com/cory-johannsen/tilequest/internal/game/inventory"
	"github.com/cory-johannsen/tilequest/internal/game/ruleset"
	"github.com/cory-johannsen/tilequest/internal/game/stats"
)

// Player represents a party member's persistent state.
//
// ID is set by the persistence layer; a zero value indicates an unsaved player.
type Player struct {
	ID int64

	Name       string
	Class      *ruleset.Class
	Level      int
	Experience int
	Equipment  inventory.Equipment

	// Modifiers overlays the maximum statistics. Every channel stays in
	// [-max, 0] so current statistics never exceed the maximum or drop below zero.
	Modifiers stats.Value

	CreatedAt time.Time
	UpdatedAt time.Time
}

// MaxStatistics returns class statistics at the player's level plus equipment buffs.
func (p *Player) MaxStatistics() stats.Value {
	return p.Class.StatisticsAt(p.Level).Add(p.Equipment.Buff())
}

// Statistics returns the current statistics: maximum plus modifiers.
func (p *Player) Statistics() stats.Value {
	return p.MaxStatistics().Add(p.Modifiers)
}

// IsAlive reports whether current health is above zero.
func (p *Player) IsAlive() bool {
	return p.Statistics().HealthPoints > 0
}

// ApplyModifier adds delta to the modifier overlay and clamps it.
//
// Postcondition: 0 <= Statistics() channel <= MaxStatistics() channel for every channel.
func (p *Player) ApplyModifier(delta stats.Value) {
	max := p.MaxStatistics()
	p.Modifiers = p.Modifiers.Add(delta).
		ApplyMaximum(stats.Value{}).
		ApplyMinimum(max.Negate())
}

// Restore clears every modifier, returning the player to full statistics.
func (p *Player) Restore() {
	p.Modifiers = stats.Value{}
}

// SpellIDs returns the spells the player knows at its current level.
func (p *Player) SpellIDs() []string {
	return p.Class.SpellsAt(p.Level)
}

// GainExperience adds xp and raises Level to match.
//
// Postcondition: returns the number of levels gained (>= 0).
func (p *Player) GainExperience(xp int) int {
	if xp <= 0 {
		return 0
	}
	p.Experience += xp
	next := p.Class.LevelForExperience(p.Experience)
	if next <= p.Level {
		return 0
	}
	gained := next - p.Level
	p.Level = next
	return gained
}
