package app

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"toolcatalog/internal/infra/config"
)

// Logging bundles the process logger with the level it is built on so the
// level can be changed while running.
type Logging struct {
	Logger *zap.Logger
	Level  zap.AtomicLevel
}

// NewLogging builds a production JSON logger at info level.
func NewLogging() (Logging, error) {
	level := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	cfg := zap.NewProductionConfig()
	cfg.Level = level
	logger, err := cfg.Build()
	if err != nil {
		return Logging{}, err
	}
	return Logging{Logger: logger, Level: level}, nil
}

// NewNopLogging discards every entry.
func NewNopLogging() Logging {
	return Logging{Logger: zap.NewNop(), Level: zap.NewAtomicLevel()}
}

// ApplyLevel switches the live level. Unknown names are logged and ignored.
func (l Logging) ApplyLevel(name string) {
	level, err := config.ParseLevel(name)
	if err != nil {
		l.Logger.Warn("invalid log level", zap.String("level", name), zap.Error(err))
		return
	}
	if l.Level.Level() == level {
		return
	}
	l.Level.SetLevel(level)
	l.Logger.Info("log level changed", zap.String("level", level.String()))
}
