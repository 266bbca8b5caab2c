package npc

import (
	"github.com/cory-johannsen/tilequest/internal/game/ruleset"
	"github.com/cory-johannsen/tilequest/internal/game/stats"
)

// Instance is an ephemeral monster created for one combat and discarded after it.
type Instance struct {
	// ID uniquely identifies this runtime instance.
	ID string
	// Name is copied from the template for display.
	Name     string
	Level    int
	Template *Template
	Class    *ruleset.Class
	// Spells holds the resolved spell definitions named by the template.
	Spells []*ruleset.Spell

	max     stats.Value
	current stats.Value
}

// NewInstance creates a monster at full statistics.
//
// Precondition: id must be non-empty; tmpl and class must be non-nil.
// Postcondition: Statistics() equals MaxStatistics().
func NewInstance(id string, tmpl *Template, class *ruleset.Class, spells []*ruleset.Spell) *Instance {
	max := class.StatisticsAt(tmpl.Level)
	return &Instance{
		ID:       id,
		Name:     tmpl.Name,
		Level:    tmpl.Level,
		Template: tmpl,
		Class:    class,
		Spells:   spells,
		max:      max,
		current:  max,
	}
}

// MaxStatistics returns the statistics the instance spawned with.
func (i *Instance) MaxStatistics() stats.Value { return i.max }

// Statistics returns the current statistics.
func (i *Instance) Statistics() stats.Value { return i.current }

// ApplyModifier adds delta to the current statistics, clamped to [0, max].
func (i *Instance) ApplyModifier(delta stats.Value) {
	i.current = i.current.Add(delta).ApplyMinimum(stats.Value{}).ApplyMaximum(i.max)
}

// IsDead reports whether the instance has zero or fewer health points.
func (i *Instance) IsDead() bool {
	return i.current.HealthPoints <= 0
}

// HealthDescription returns a visible health state string for the HUD.
//
// Postcondition: Returns a non-empty string.
func (i *Instance) HealthDescription() string {
	if i.current.HealthPoints <= 0 {
		return "dead"
	}
	pct := float64(i.current.HealthPoints) / float64(i.max.HealthPoints)
	switch {
	case pct >= 1.0:
		return "unharmed"
	case pct >= 0.85:
		return "barely scratched"
	case pct >= 0.60:
		return "lightly wounded"
	case pct >= 0.40:
		return "moderately wounded"
	case pct >= 0.20:
		return "heavily wounded"
	default:
		return "critically wounded"
	}
}
