package common

import "go.uber.org/zap"

// Log is the package-level structured logger for the storage and execution
// core. Subsystems derive a named child, e.g. Log.Named("buffer"),
// Log.Named("hash"), Log.Named("lockmgr"), so log output can be filtered
// per layer.
var Log *zap.Logger

func init() {
	var cfg zap.Config
	if EnableDebug {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	}
	l, err := cfg.Build()
	if err != nil {
		l = zap.NewNop()
	}
	Log = l
}
