package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds the production JSON logger. An empty level means info.
func NewLogger(level string) (*zap.SugaredLogger, error) {
	atomicLevel := zap.NewAtomicLevelAt(zap.InfoLevel)
	if len(level) > 0 {
		parsed, err := zap.ParseAtomicLevel(level)
		if err != nil {
			return nil, fmt.Errorf("parsing log level %s: %w", level, err)
		}
		atomicLevel = parsed
	}

	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.Level = atomicLevel
	baseLogger, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return baseLogger.Sugar(), nil
}

func NewTestLogger() *zap.SugaredLogger {
	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncoderConfig.TimeKey = "timestamp"
	return zap.Must(cfg.Build()).Sugar()
}
