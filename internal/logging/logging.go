// Package logging builds the process zap logger and adapts it to the
// calculation engine's Logger seam.
package logging

import (
	"go.uber.org/zap"
)

// NewLogger builds a zap logger: development config (console, debug level)
// when verbose, production config otherwise.
func NewLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.DisableStacktrace = true
	return cfg.Build()
}

// EngineLogger adapts a zap SugaredLogger to the calculation.Logger interface.
type EngineLogger struct {
	S *zap.SugaredLogger
}

func (l EngineLogger) Debugf(format string, args ...any) { l.S.Debugf(format, args...) }
func (l EngineLogger) Infof(format string, args ...any)  { l.S.Infof(format, args...) }
func (l EngineLogger) Warnf(format string, args ...any)  { l.S.Warnf(format, args...) }
func (l EngineLogger) Errorf(format string, args ...any) { l.S.Errorf(format, args...) }
