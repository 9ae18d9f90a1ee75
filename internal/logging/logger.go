package logging

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/vitaminmoo/iqos-tool/internal/config"
)

// New builds the process logger. Verbose forces debug level, which is where
// frame hex dumps and every routed characteristic are logged.
func New(cfg config.LoggingConfig, verbose bool) (*zap.Logger, error) {
	var zcfg zap.Config
	if strings.EqualFold(cfg.Format, "json") {
		zcfg = zap.NewProductionConfig()
		zcfg.Sampling = nil
	} else {
		zcfg = zap.NewDevelopmentConfig()
		zcfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zcfg.DisableStacktrace = true
	}

	level := cfg.Level
	if verbose {
		level = "debug"
	}
	if level == "" {
		level = "info"
	}
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, err
	}
	zcfg.Level = lvl

	out := "stderr"
	if cfg.File != "" {
		out = cfg.File
	}
	zcfg.OutputPaths = []string{out}
	zcfg.ErrorOutputPaths = []string{out}

	return zcfg.Build(zap.AddCaller(), zap.AddStacktrace(zap.ErrorLevel))
}
