package logging

import (
	"go.uber.org/zap"
)

// New returns the process logger. Verbose switches to the development
// config: human-readable output and debug level enabled.
func New(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
