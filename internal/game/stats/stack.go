package stats

// entry is one temporary modifier and the rounds it has left.
type entry struct {
	delta     Value
	remaining int
}

// Stack tracks round-limited statistic modifiers for one combatant.
// It is not safe for concurrent use; the caller must serialise access.
type Stack struct {
	entries []entry
}

// Add pushes delta for duration rounds. Durations <= 0 are ignored.
//
// Postcondition: if duration > 0, Total includes delta until duration calls to Advance.
func (s *Stack) Add(delta Value, duration int) {
	if duration <= 0 || delta.IsZero() {
		return
	}
	s.entries = append(s.entries, entry{delta: delta, remaining: duration})
}

// Advance decrements every entry by one round and drops entries that reach zero.
func (s *Stack) Advance() {
	kept := s.entries[:0]
	for _, e := range s.entries {
		e.remaining--
		if e.remaining > 0 {
			kept = append(kept, e)
		}
	}
	s.entries = kept
}

// Total returns the sum of all active deltas.
func (s *Stack) Total() Value {
	var total Value
	for _, e := range s.entries {
		total = total.Add(e.delta)
	}
	return total
}

// Len returns the number of active entries.
func (s *Stack) Len() int { return len(s.entries) }

// Clear removes every entry.
func (s *Stack) Clear() { s.entries = nil }
