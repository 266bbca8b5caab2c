// Package observability builds the structured logger shared by the host and
// the combat engine.
package observability

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/cory-johannsen/tilequest/internal/config"
)

// rootName tags every entry so a shared log file can be filtered by process.
const rootName = "tilequest"

// NewLogger builds a logger writing to cfg.File, or stderr when File is empty.
// The terminal host sets File because stderr output would tear the screen.
//
// Precondition: cfg.Level is one of "debug", "info", "warn", "error".
// Precondition: cfg.Format is "json" or "console".
// Postcondition: Returns a logger named "tilequest" or a non-nil error.
func NewLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("log level %q: %w", cfg.Level, err)
	}
	enc, err := newEncoder(cfg.Format)
	if err != nil {
		return nil, err
	}

	sink := "stderr"
	if cfg.File != "" {
		sink = cfg.File
	}
	out, _, err := zap.Open(sink)
	if err != nil {
		return nil, fmt.Errorf("opening log sink %q: %w", sink, err)
	}

	core := zapcore.NewCore(enc, out, zap.NewAtomicLevelAt(level))
	return zap.New(core,
		zap.AddCaller(),
		zap.ErrorOutput(out),
		zap.AddStacktrace(zapcore.ErrorLevel),
	).Named(rootName), nil
}

func newEncoder(format string) (zapcore.Encoder, error) {
	ec := zap.NewProductionEncoderConfig()
	ec.EncodeTime = zapcore.ISO8601TimeEncoder
	switch format {
	case "json":
		return zapcore.NewJSONEncoder(ec), nil
	case "console":
		ec.EncodeLevel = zapcore.CapitalLevelEncoder
		return zapcore.NewConsoleEncoder(ec), nil
	}
	return nil, fmt.Errorf("unknown log format %q", format)
}
