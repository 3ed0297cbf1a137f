// Package logging builds the process-wide *zap.SugaredLogger.
package logging

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"
)

// Config is the logging subsystem's configuration, embedded in the
// daemon's top-level Config.
type Config struct {
	Level zapcore.Level `yaml:"level"`
}

// Init builds a console-encoded logger writing to stderr, colorized
// when stderr is a terminal. component is stamped onto every line
// through zap's logger name (e.g. "vlcbbridged") so logs from this
// single-route, single-adapter daemon stay identifiable once
// aggregated alongside other services. There is no admin surface that
// changes the level at runtime, so Init hands back just the logger and
// an error rather than also exposing the underlying zap.AtomicLevel.
func Init(cfg *Config, component string) (*zap.SugaredLogger, error) {
	encoderConfig := zap.NewDevelopmentEncoderConfig()

	if term.IsTerminal(int(os.Stderr.Fd())) {
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	}

	zapCfg := zap.Config{
		Level:            zap.NewAtomicLevelAt(cfg.Level),
		Development:      false,
		Encoding:         "console",
		EncoderConfig:    encoderConfig,
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	}

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, fmt.Errorf("initialize logger: %w", err)
	}

	return logger.Sugar().Named(component), nil
}
