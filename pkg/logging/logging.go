// Package logging builds the zap loggers used by the CLI and the server.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/rustyeddy/quantops/pkg/scan"
)

// New returns a logger for level (debug, info, warn, error) writing to
// stderr, so command output on stdout stays clean. format is "json" or
// "console"; empty keeps the level's default encoding.
func New(level, format string) (*zap.Logger, error) {
	var config zap.Config

	switch level {
	case "debug":
		config = zap.NewDevelopmentConfig()
	case "", "info":
		config = zap.NewProductionConfig()
	case "warn":
		config = zap.NewProductionConfig()
		config.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		config = zap.NewProductionConfig()
		config.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	default:
		return nil, fmt.Errorf("unknown log level %q", level)
	}

	switch format {
	case "":
	case "json", "console":
		config.Encoding = format
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}
	if config.Encoding == "console" {
		config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	config.OutputPaths = []string{"stderr"}
	config.ErrorOutputPaths = []string{"stderr"}

	return config.Build()
}

// Report logs every skipped item of rep at WARN and a summary at INFO.
func Report(log *zap.Logger, what string, rep scan.Report) {
	for _, s := range rep.Skipped {
		log.Warn("skipped",
			zap.String("op", what),
			zap.String("source", s.Source),
			zap.String("reason", s.Reason),
		)
	}
	log.Info(what,
		zap.Int("processed", rep.Processed),
		zap.Int("skipped", rep.SkippedCount()),
	)
}
