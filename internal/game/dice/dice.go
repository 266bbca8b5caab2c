// Package dice provides the randomness abstraction and integer ranges used by
// the tilequest combat engine.
package dice

// Source is the randomness provider for every roll in the engine.
//
// Implementations used by a single Engine are called from one goroutine only.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
}
