package dice

import "fmt"

// IntRange is an inclusive integer range rolled uniformly.
//
// Invariant: Min <= Max after Validate succeeds.
type IntRange struct {
	Min int `yaml:"min"`
	Max int `yaml:"max"`
}

// Validate reports whether the range is well formed.
func (r IntRange) Validate() error {
	if r.Min > r.Max {
		return fmt.Errorf("dice: range min (%d) must be <= max (%d)", r.Min, r.Max)
	}
	return nil
}

// IsZero reports whether both bounds are zero.
func (r IntRange) IsZero() bool { return r.Min == 0 && r.Max == 0 }

// Roll returns a uniformly distributed value in [Min, Max].
// A range with Min >= Max always returns Min.
//
// Precondition: src must not be nil.
func (r IntRange) Roll(src Source) int {
	spread := r.Max - r.Min
	if spread <= 0 {
		return r.Min
	}
	return r.Min + src.Intn(spread+1)
}

// Average returns the midpoint of the range.
func (r IntRange) Average() float64 {
	return float64(r.Min+r.Max) / 2
}

// Shift returns the range with n added to both bounds.
func (r IntRange) Shift(n int) IntRange {
	return IntRange{Min: r.Min + n, Max: r.Max + n}
}

// Add returns the component-wise sum of two ranges.
func (r IntRange) Add(o IntRange) IntRange {
	return IntRange{Min: r.Min + o.Min, Max: r.Max + o.Max}
}

// String returns "min-max".
func (r IntRange) String() string {
	return fmt.Sprintf("%d-%d", r.Min, r.Max)
}
