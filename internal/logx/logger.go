package logx

import (
	"go.uber.org/zap"
)

var L = zap.NewNop()

// Init builds the process logger. Anything but "prod" gets the development
// config for local readability.
func Init(env string) error {
	cfg := zap.NewProductionConfig()
	if env != "prod" {
		cfg = zap.NewDevelopmentConfig()
	}

	logger, err := cfg.Build()
	if err != nil {
		return err
	}

	L = logger
	return nil
}
