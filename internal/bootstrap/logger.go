package bootstrap

import (
	"fmt"

	"page-marker/internal/config"

	"go.uber.org/zap"
)

// newLogger writes to stderr; stdout belongs to the console.
func newLogger(conf *config.Config) (*zap.Logger, error) {
	var zapConfig zap.Config

	if conf.AppConfig.Debug {
		zapConfig = zap.NewDevelopmentConfig()
	} else {
		zapConfig = zap.NewProductionConfig()
	}

	zapConfig.DisableStacktrace = true
	zapConfig.OutputPaths = []string{"stderr"}

	level, err := zap.ParseAtomicLevel(conf.AppConfig.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("parse LOG_LEVEL: %w", err)
	}
	zapConfig.Level = level

	logger, err := zapConfig.Build()
	if err != nil {
		return nil, err
	}

	return logger, nil
}
