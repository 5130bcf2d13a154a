// Package logger builds the *zap.SugaredLogger instances threaded through the
// storage, index and segment packages. It exists so every component logs with
// the same field names and level policy instead of each constructing zap by hand.
package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Format selects the zap encoder used for log output.
type Format string

const (
	// FormatJSON emits structured JSON lines, suited to production log shipping.
	FormatJSON Format = "json"
	// FormatConsole emits human-readable colorized lines, suited to local development.
	FormatConsole Format = "console"
)

// Options controls how New builds the underlying zap core.
type Options struct {
	// Level is the minimum level that will be logged. Defaults to "info".
	Level string
	// Format selects FormatJSON or FormatConsole. Defaults to FormatJSON.
	Format Format
	// Development enables zap's development mode (stack traces from warn level up).
	Development bool
}

// OptionFunc mutates Options during construction.
type OptionFunc func(*Options)

// WithLevel overrides the minimum logged level (debug, info, warn, error).
func WithLevel(level string) OptionFunc {
	return func(o *Options) { o.Level = level }
}

// WithFormat overrides the output encoding.
func WithFormat(format Format) OptionFunc {
	return func(o *Options) { o.Format = format }
}

// WithDevelopment toggles zap's development mode.
func WithDevelopment(enabled bool) OptionFunc {
	return func(o *Options) { o.Development = enabled }
}

func defaultOptions() *Options {
	return &Options{Level: "info", Format: FormatJSON, Development: false}
}

// New builds a *zap.SugaredLogger from the given options, falling back to
// info-level JSON output on stderr when none are supplied.
func New(opts ...OptionFunc) (*zap.SugaredLogger, error) {
	options := defaultOptions()
	for _, opt := range opts {
		opt(options)
	}

	var level zapcore.Level
	if err := level.Set(options.Level); err != nil {
		return nil, fmt.Errorf("logger: invalid level %q: %w", options.Level, err)
	}

	var cfg zap.Config
	if options.Format == FormatConsole {
		cfg = zap.NewDevelopmentConfig()
		cfg.Encoding = "console"
	} else {
		cfg = zap.NewProductionConfig()
		cfg.Encoding = "json"
	}
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.Development = options.Development

	base, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("logger: failed to build zap core: %w", err)
	}
	return base.Sugar(), nil
}

// NewNop returns a logger that discards everything, useful in tests that only
// care about return values and not log output.
func NewNop() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}
