package combat

import "time"

// Delay is a frame-driven countdown. It advances only when the host passes
// elapsed frame time to Advance, so a stalled frame resumes where it stopped.
// The zero value is an inactive Delay.
type Delay struct {
	remaining time.Duration
	active    bool
}

// Start arms the delay for duration, replacing any countdown in progress.
//
// Precondition: duration > 0.
// Postcondition: Active() is true.
func (d *Delay) Start(duration time.Duration) {
	d.remaining = duration
	d.active = true
}

// Stop disarms the delay. Safe to call multiple times.
//
// Postcondition: Active() is false.
func (d *Delay) Stop() {
	d.active = false
	d.remaining = 0
}

// Advance subtracts dt and reports whether the delay fired during this call.
// A fired delay is no longer active.
func (d *Delay) Advance(dt time.Duration) bool {
	if !d.active {
		return false
	}
	d.remaining -= dt
	if d.remaining > 0 {
		return false
	}
	d.Stop()
	return true
}

// Active reports whether the delay is counting down.
func (d *Delay) Active() bool { return d.active }

// Remaining returns the time left before the delay fires.
func (d *Delay) Remaining() time.Duration { return d.remaining }

// TurnFlow is what the session does when its delay fires outside a flee.
type TurnFlow int

const (
	FlowNoDelay TurnFlow = iota
	FlowStartCombat
	FlowEndCharacterTurn
	FlowEndRound
)

// String returns a human-readable flow label.
func (f TurnFlow) String() string {
	switch f {
	case FlowNoDelay:
		return "no_delay"
	case FlowStartCombat:
		return "start_combat"
	case FlowEndCharacterTurn:
		return "end_character_turn"
	case FlowEndRound:
		return "end_round"
	default:
		return "unknown"
	}
}

// FleeState tracks a flee attempt. It only leaves FleeIdle during the players' turn.
type FleeState int

const (
	FleeIdle FleeState = iota
	FleeAttempting
	FleeSucceeded
)

// String returns a human-readable flee label.
func (f FleeState) String() string {
	switch f {
	case FleeIdle:
		return "idle"
	case FleeAttempting:
		return "attempting"
	case FleeSucceeded:
		return "succeeded"
	default:
		return "unknown"
	}
}
