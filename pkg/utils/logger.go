// Package utils holds small helpers shared across the service.
package utils

import "go.uber.org/zap"

// NewLogger builds the service logger. Debug selects the development config
// (console output, debug level); otherwise production (JSON, info level).
func NewLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
