package logger

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/CLDWare/csi-survey-backend/config"
)

var logLevels = map[string]zapcore.Level{
	"debug": zapcore.DebugLevel,
	"info":  zapcore.InfoLevel,
	"warn":  zapcore.WarnLevel,
	"error": zapcore.ErrorLevel,
}

// New builds the application logger from configuration.
// Development environments get a console encoder, everything else JSON.
func New(cfg *config.Config) (*zap.Logger, error) {
	level, ok := logLevels[strings.ToLower(cfg.Logging.Level)]
	if !ok {
		level = zapcore.InfoLevel
	}

	var zcfg zap.Config
	if cfg.IsDevelopment() {
		zcfg = zap.NewDevelopmentConfig()
	} else {
		zcfg = zap.NewProductionConfig()
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)

	log, err := zcfg.Build(zap.Fields(
		zap.String("app", cfg.App.Name),
		zap.String("version", cfg.App.Version),
	))
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return log, nil
}

// Must is New for entry points. It falls back to zap's production logger
// when the configured one cannot be built.
func Must(cfg *config.Config) *zap.Logger {
	log, err := New(cfg)
	if err != nil {
		fallback, _ := zap.NewProduction()
		fallback.Error("Falling back to default logger", zap.Error(err))
		return fallback
	}
	return log
}
