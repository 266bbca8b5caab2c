// Package stats models the six-channel statistics vector shared by players and
// monsters, the randomized ranges rolled to produce one, and the round-scoped
// stack of temporary modifiers applied during combat.
package stats

import (
	"fmt"
	"strings"
)

// Value is a six-channel statistics vector. It is a plain value type and is
// freely copied.
type Value struct {
	HealthPoints    int `yaml:"health_points"`
	MagicPoints     int `yaml:"magic_points"`
	PhysicalOffense int `yaml:"physical_offense"`
	PhysicalDefense int `yaml:"physical_defense"`
	MagicalOffense  int `yaml:"magical_offense"`
	MagicalDefense  int `yaml:"magical_defense"`
}

// Channel identifies one statistic of a Value.
type Channel int

const (
	HealthPoints Channel = iota
	MagicPoints
	PhysicalOffense
	PhysicalDefense
	MagicalOffense
	MagicalDefense
)

// Channels lists every channel in display order.
var Channels = []Channel{HealthPoints, MagicPoints, PhysicalOffense, PhysicalDefense, MagicalOffense, MagicalDefense}

// Label returns the two-letter label used for floating combat numbers.
func (c Channel) Label() string {
	switch c {
	case HealthPoints:
		return "HP"
	case MagicPoints:
		return "MP"
	case PhysicalOffense:
		return "PO"
	case PhysicalDefense:
		return "PD"
	case MagicalOffense:
		return "MO"
	case MagicalDefense:
		return "MD"
	default:
		return "??"
	}
}

// Get returns the value of channel c.
func (v Value) Get(c Channel) int {
	switch c {
	case HealthPoints:
		return v.HealthPoints
	case MagicPoints:
		return v.MagicPoints
	case PhysicalOffense:
		return v.PhysicalOffense
	case PhysicalDefense:
		return v.PhysicalDefense
	case MagicalOffense:
		return v.MagicalOffense
	case MagicalDefense:
		return v.MagicalDefense
	default:
		return 0
	}
}

// With returns a copy of v with channel c set to n.
func (v Value) With(c Channel, n int) Value {
	switch c {
	case HealthPoints:
		v.HealthPoints = n
	case MagicPoints:
		v.MagicPoints = n
	case PhysicalOffense:
		v.PhysicalOffense = n
	case PhysicalDefense:
		v.PhysicalDefense = n
	case MagicalOffense:
		v.MagicalOffense = n
	case MagicalDefense:
		v.MagicalDefense = n
	}
	return v
}

// Add returns the component-wise sum of v and o.
func (v Value) Add(o Value) Value {
	return Value{
		HealthPoints:    v.HealthPoints + o.HealthPoints,
		MagicPoints:     v.MagicPoints + o.MagicPoints,
		PhysicalOffense: v.PhysicalOffense + o.PhysicalOffense,
		PhysicalDefense: v.PhysicalDefense + o.PhysicalDefense,
		MagicalOffense:  v.MagicalOffense + o.MagicalOffense,
		MagicalDefense:  v.MagicalDefense + o.MagicalDefense,
	}
}

// Sub returns the component-wise difference v - o.
func (v Value) Sub(o Value) Value {
	return v.Add(o.Negate())
}

// Negate returns v with every channel sign-flipped.
func (v Value) Negate() Value {
	return Value{
		HealthPoints:    -v.HealthPoints,
		MagicPoints:     -v.MagicPoints,
		PhysicalOffense: -v.PhysicalOffense,
		PhysicalDefense: -v.PhysicalDefense,
		MagicalOffense:  -v.MagicalOffense,
		MagicalDefense:  -v.MagicalDefense,
	}
}

// ApplyMinimum raises every channel of v that is below the matching channel of min.
//
// Postcondition: every channel of the result is >= the matching channel of min.
func (v Value) ApplyMinimum(min Value) Value {
	for _, c := range Channels {
		if v.Get(c) < min.Get(c) {
			v = v.With(c, min.Get(c))
		}
	}
	return v
}

// ApplyMaximum lowers every channel of v that is above the matching channel of max.
//
// Postcondition: every channel of the result is <= the matching channel of max.
func (v Value) ApplyMaximum(max Value) Value {
	for _, c := range Channels {
		if v.Get(c) > max.Get(c) {
			v = v.With(c, max.Get(c))
		}
	}
	return v
}

// IsZero reports whether every channel is zero.
func (v Value) IsZero() bool {
	return v == Value{}
}

// ModifierString renders the non-zero channels as signed modifiers,
// e.g. "HP +5, MP -3". A zero Value renders as the empty string.
func (v Value) ModifierString() string {
	var parts []string
	for _, c := range Channels {
		n := v.Get(c)
		if n == 0 {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s %+d", c.Label(), n))
	}
	return strings.Join(parts, ", ")
}
