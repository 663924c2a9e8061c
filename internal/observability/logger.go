// Package observability sets up logging, metrics and tracing.
package observability

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLevel parses level into an adjustable logging level. The returned level
// can be changed while the logger built on it is running.
func NewLevel(level string) (zap.AtomicLevel, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return zap.AtomicLevel{}, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return zap.NewAtomicLevelAt(lvl), nil
}

// NewLogger builds the service logger: JSON production output in production,
// human-readable development output elsewhere.
func NewLogger(production bool, level zap.AtomicLevel) (*zap.Logger, error) {
	var cfg zap.Config
	if production {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = level
	return cfg.Build()
}
