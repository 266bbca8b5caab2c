package stats

import "github.com/cory-johannsen/tilequest/internal/game/dice"

// Range holds an independent randomized range per channel.
type Range struct {
	HealthPoints    dice.IntRange `yaml:"health_points"`
	MagicPoints     dice.IntRange `yaml:"magic_points"`
	PhysicalOffense dice.IntRange `yaml:"physical_offense"`
	PhysicalDefense dice.IntRange `yaml:"physical_defense"`
	MagicalOffense  dice.IntRange `yaml:"magical_offense"`
	MagicalDefense  dice.IntRange `yaml:"magical_defense"`
}

func (r Range) channel(c Channel) dice.IntRange {
	switch c {
	case HealthPoints:
		return r.HealthPoints
	case MagicPoints:
		return r.MagicPoints
	case PhysicalOffense:
		return r.PhysicalOffense
	case PhysicalDefense:
		return r.PhysicalDefense
	case MagicalOffense:
		return r.MagicalOffense
	case MagicalDefense:
		return r.MagicalDefense
	default:
		return dice.IntRange{}
	}
}

func (r *Range) set(c Channel, ir dice.IntRange) {
	switch c {
	case HealthPoints:
		r.HealthPoints = ir
	case MagicPoints:
		r.MagicPoints = ir
	case PhysicalOffense:
		r.PhysicalOffense = ir
	case PhysicalDefense:
		r.PhysicalDefense = ir
	case MagicalOffense:
		r.MagicalOffense = ir
	case MagicalDefense:
		r.MagicalDefense = ir
	}
}

// Generate rolls every channel independently.
//
// Precondition: src must not be nil.
func (r Range) Generate(src dice.Source) Value {
	var v Value
	for _, c := range Channels {
		v = v.With(c, r.channel(c).Roll(src))
	}
	return v
}

// AverageHealth returns the midpoint of the health channel.
func (r Range) AverageHealth() float64 {
	return r.HealthPoints.Average()
}

// AddToNonZero shifts by amount every channel whose range is not zero-valued.
// Channels the range does not touch stay at zero.
func (r Range) AddToNonZero(amount int) Range {
	out := r
	for _, c := range Channels {
		ir := r.channel(c)
		if ir.IsZero() {
			continue
		}
		out.set(c, ir.Shift(amount))
	}
	return out
}

// Validate reports the first malformed channel range.
func (r Range) Validate() error {
	for _, c := range Channels {
		if err := r.channel(c).Validate(); err != nil {
			return err
		}
	}
	return nil
}
