package utils

import (
	"os"

	"go.uber.org/zap"
)

// NewLogger builds the process-wide structured logger. Development mode is
// selected with LOG_MODE=dev.
func NewLogger() *zap.Logger {
	var (
		logger *zap.Logger
		err    error
	)
	if os.Getenv("LOG_MODE") == "dev" {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		// zap's stock configs never fail to build; fall back anyway.
		return zap.NewNop()
	}
	return logger
}
