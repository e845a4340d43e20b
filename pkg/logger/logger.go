package logger

import (
	"strings"

	"go.uber.org/zap"
)

// Log is the process-wide structured logger. It is a no-op until Init runs,
// so packages can log unconditionally (tests never call Init).
var Log = zap.NewNop().Sugar()

func Init(mode string) error {
	var cfg zap.Config
	switch strings.ToLower(mode) {
	case "prod", "production":
		// JSON encoder for log shipping
		cfg = zap.NewProductionConfig()
	default:
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)

	zapLogger, err := cfg.Build()
	if err != nil {
		return err
	}
	Log = zapLogger.Sugar()
	return nil
}

func Sync() {
	_ = Log.Sync()
}
