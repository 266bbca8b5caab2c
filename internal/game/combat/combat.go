// Package combat implements the frame-driven, turn-based combat engine: the
// combatants on both sides, the staged actions they perform, the turn and
// flee state machines, and the rewards handed out when a fight ends.
//
// Nothing in this package is safe for concurrent use. The host calls Update,
// Draw and the HUD-facing methods from a single game loop.
package combat

import "math"

// Kind distinguishes player combatants from monster combatants.
type Kind int

const (
	KindPlayer Kind = iota
	KindMonster
)

// String returns "player" or "monster".
func (k Kind) String() string {
	if k == KindPlayer {
		return "player"
	}
	return "monster"
}

// CharacterState is the visible state of a combatant.
type CharacterState int

const (
	StateIdle CharacterState = iota
	StateWalking
	StateDefending
	StateDodging
	StateHit
	StateDying
	StateDead
)

// String returns a human-readable state label.
func (s CharacterState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateWalking:
		return "walking"
	case StateDefending:
		return "defending"
	case StateDodging:
		return "dodging"
	case StateHit:
		return "hit"
	case StateDying:
		return "dying"
	case StateDead:
		return "dead"
	default:
		return "unknown"
	}
}

// EndingState records how a combat finished.
type EndingState int

const (
	EndingNone EndingState = iota
	EndingVictory
	EndingLoss
	EndingFled
)

// String returns a human-readable ending label.
func (e EndingState) String() string {
	switch e {
	case EndingVictory:
		return "victory"
	case EndingLoss:
		return "loss"
	case EndingFled:
		return "fled"
	default:
		return "none"
	}
}

// Vec2 is a screen position in pixels.
type Vec2 struct {
	X, Y float64
}

// Sub returns v - o.
func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{v.X - o.X, v.Y - o.Y} }

// Add returns v + o.
func (v Vec2) Add(o Vec2) Vec2 { return Vec2{v.X + o.X, v.Y + o.Y} }

// Len returns the Euclidean length of v.
func (v Vec2) Len() float64 { return math.Hypot(v.X, v.Y) }

// MoveToward returns v moved up to step pixels toward dest and whether dest was reached.
func (v Vec2) MoveToward(dest Vec2, step float64) (Vec2, bool) {
	d := dest.Sub(v)
	dist := d.Len()
	if dist <= step || dist == 0 {
		return dest, true
	}
	return Vec2{v.X + d.X/dist*step, v.Y + d.Y/dist*step}, false
}

// MaxCombatantsPerSide bounds both rosters.
const MaxCombatantsPerSide = 5

// Fixed screen slots. Players stand on the right facing left.
var (
	playerSlots = [MaxCombatantsPerSide]Vec2{
		{X: 240, Y: 72}, {X: 256, Y: 96}, {X: 240, Y: 120}, {X: 256, Y: 144}, {X: 240, Y: 168},
	}
	monsterSlots = [MaxCombatantsPerSide]Vec2{
		{X: 64, Y: 72}, {X: 48, Y: 96}, {X: 64, Y: 120}, {X: 48, Y: 144}, {X: 64, Y: 168},
	}
)
