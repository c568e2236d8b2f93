// Package logging builds the application logger from the configuration.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/ginjaninja78/invoicer/internal/config"
)

// New returns a logger writing to stderr and, when cfg.LogFile is set, to
// that file as well. The returned closer releases the log file; it is never
// nil.
func New(cfg *config.Config, verbose bool) (*logrus.Logger, io.Closer, error) {
	logger := logrus.New()

	switch strings.ToLower(cfg.LogFormat) {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	default:
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("parse log level: %w", err)
	}
	if verbose {
		level = logrus.DebugLevel
	}
	logger.SetLevel(level)

	if cfg.LogFile == "" {
		logger.SetOutput(os.Stderr)
		return logger, nopCloser{}, nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0755); err != nil {
		return nil, nil, fmt.Errorf("create log directory: %w", err)
	}
	file, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	logger.SetOutput(io.MultiWriter(os.Stderr, file))

	return logger, file, nil
}

// LogError logs err with the module and operation it came from.
func LogError(logger logrus.FieldLogger, module, op string, data any, err error) {
	fields := logrus.Fields{
		"module": module,
		"op":     op,
	}
	if data != nil {
		fields["data"] = data
	}
	logger.WithFields(fields).Error(err.Error())
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
