package logging

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/ginjaninja78/invoicer/internal/config"
)

func TestNew_LevelAndFormat(t *testing.T) {
	tests := []struct {
		name    string
		level   string
		format  string
		verbose bool
		want    logrus.Level
		json    bool
	}{
		{"info text", "info", "text", false, logrus.InfoLevel, false},
		{"warn json", "warn", "json", false, logrus.WarnLevel, true},
		{"upper-case json", "INFO", "JSON", false, logrus.InfoLevel, true},
		{"verbose overrides", "error", "text", true, logrus.DebugLevel, false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{LogLevel: tt.level, LogFormat: tt.format}

			logger, closer, err := New(cfg, tt.verbose)
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			defer closer.Close()

			if logger.GetLevel() != tt.want {
				t.Errorf("level = %v; want %v", logger.GetLevel(), tt.want)
			}
			if _, ok := logger.Formatter.(*logrus.JSONFormatter); ok != tt.json {
				t.Errorf("JSON formatter = %v; want %v", ok, tt.json)
			}
		})
	}
}

func TestNew_LogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "invoicer.log")
	cfg := &config.Config{LogLevel: "info", LogFormat: "json", LogFile: path}

	logger, closer, err := New(cfg, false)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	LogError(logger, "store", "upsert", map[string]string{"invoiceNo": "IN-1"}, errors.New("disk full"))
	closer.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	for _, want := range []string{`"module":"store"`, `"op":"upsert"`, "disk full"} {
		if !strings.Contains(string(data), want) {
			t.Errorf("log %q missing %s", data, want)
		}
	}
}

func TestNew_BadLevel(t *testing.T) {
	if _, _, err := New(&config.Config{LogLevel: "loud"}, false); err == nil {
		t.Error("New() accepted an unknown level")
	}
}
