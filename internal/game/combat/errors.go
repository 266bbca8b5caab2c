package combat

import "errors"

var (
	// ErrNoActiveCombat is returned by turn-scoped accessors when no combat is running.
	ErrNoActiveCombat = errors.New("combat: no active combat")
	// ErrCombatActive is returned when starting a combat while one is running.
	ErrCombatActive = errors.New("combat: a combat is already active")
	// ErrInvalidRoster is returned when either side has zero or more than five combatants.
	ErrInvalidRoster = errors.New("combat: invalid roster")
	// ErrInvalidArgument is returned for missing or unusable constructor arguments.
	ErrInvalidArgument = errors.New("combat: invalid argument")
	// ErrNotPlayersTurn is returned when a player command arrives outside the players' turn.
	ErrNotPlayersTurn = errors.New("combat: not the players' turn")
)
