package logging

import (
	"go.uber.org/zap"
)

// New returns a development console logger unless env is "production".
func New(env string) (*zap.Logger, error) {
	if env == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
