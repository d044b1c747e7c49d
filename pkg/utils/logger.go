package utils

import "go.uber.org/zap"

// NewLogger returns the process logger. When debug is true, uses development
// config (human-readable, debug level) so pattern reloads and per-request
// detail are visible; otherwise uses production config (JSON, info level).
func NewLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
