// Package logger builds the process logger from configuration.
package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"buildsync-backend/pkg/config"

	"github.com/charmbracelet/log"
)

// New returns a logger writing to stderr.
func New(cfg *config.Config) *log.Logger {
	return NewWithWriter(os.Stderr, cfg)
}

// NewWithWriter returns a logger writing to w, configured by cfg.
func NewWithWriter(w io.Writer, cfg *config.Config) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Prefix:          "buildsync",
	})
	if cfg == nil {
		return logger
	}

	level, err := log.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil {
		level = log.InfoLevel
	}
	if cfg.Debug {
		level = log.DebugLevel
		logger.SetReportCaller(true)
	}
	logger.SetLevel(level)

	switch strings.ToLower(cfg.LogFormat) {
	case "json":
		logger.SetFormatter(log.JSONFormatter)
	case "logfmt":
		logger.SetFormatter(log.LogfmtFormatter)
	default:
		logger.SetFormatter(log.TextFormatter)
	}
	return logger
}
