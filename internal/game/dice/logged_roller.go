package dice

import "go.uber.org/zap"

// Roller wraps a Source and logger to provide logged rolling.
// All rolls are logged at debug level with a caller-supplied label and the result.
type Roller struct {
	src    Source
	logger *zap.Logger
}

// NewLoggedRoller creates a Roller that rolls with src and logs each roll to logger.
//
// Precondition: src and logger must be non-nil.
func NewLoggedRoller(src Source, logger *zap.Logger) *Roller {
	return &Roller{src: src, logger: logger}
}

// Source returns the underlying Source so that range helpers can share it.
func (r *Roller) Source() Source { return r.src }

// Intn returns a value in [0, n) and logs it.
//
// Precondition: n > 0.
func (r *Roller) Intn(label string, n int) int {
	v := r.src.Intn(n)
	r.logger.Debug("roll",
		zap.String("label", label),
		zap.Int("n", n),
		zap.Int("result", v),
	)
	return v
}

// Range rolls rng and logs the result.
func (r *Roller) Range(label string, rng IntRange) int {
	v := rng.Roll(r.src)
	r.logger.Debug("range roll",
		zap.String("label", label),
		zap.Stringer("range", rng),
		zap.Int("result", v),
	)
	return v
}

// Percent reports whether a d100 roll (0-99) lands below pct.
// pct <= 0 never succeeds and pct >= 100 always succeeds.
func (r *Roller) Percent(label string, pct int) bool {
	roll := r.src.Intn(100)
	ok := roll < pct
	r.logger.Debug("percent roll",
		zap.String("label", label),
		zap.Int("chance", pct),
		zap.Int("roll", roll),
		zap.Bool("success", ok),
	)
	return ok
}
