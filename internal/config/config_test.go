package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

// chdir changes the working directory for the duration of the test,
// mirroring testing.T.Chdir (Go 1.24+) on older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(old) })
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
database_path: `+filepath.Join(dir, "db", "inv.db")+`
input_dir: `+filepath.Join(dir, "in")+`
output_dir: `+filepath.Join(dir, "out")+`
log_level: debug
log_format: json
archive_on_success: false
archive_timestamp_subdirs: true
spreadsheet:
  sheet_name: Invoices
csv:
  delimiter: ";"
`)

	cfg, err := Load(path, true)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.LogLevel != "debug" || cfg.LogFormat != "json" {
		t.Errorf("log settings = %s/%s", cfg.LogLevel, cfg.LogFormat)
	}
	if cfg.ShouldArchive() {
		t.Error("ShouldArchive() = true; want false")
	}
	if !cfg.ArchiveTimestampSubdirs {
		t.Error("ArchiveTimestampSubdirs = false; want true")
	}
	if cfg.Spreadsheet.SheetName != "Invoices" || cfg.Spreadsheet.HeaderRow != 1 {
		t.Errorf("Spreadsheet = %+v", cfg.Spreadsheet)
	}
	if cfg.CSV.DelimiterRune() != ';' {
		t.Errorf("DelimiterRune() = %q; want ';'", cfg.CSV.DelimiterRune())
	}
	if cfg.ExportNameFormat != "invoices_{timestamp}_{uuid}.xml" {
		t.Errorf("ExportNameFormat default = %q", cfg.ExportNameFormat)
	}

	for _, d := range []string{"in", "out", "db"} {
		if _, err := os.Stat(filepath.Join(dir, d)); err != nil {
			t.Errorf("directory %s not created: %v", d, err)
		}
	}
}

func TestLoad_MissingFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	if _, err := Load(filepath.Join(dir, "absent.yaml"), true); err == nil {
		t.Error("Load(required) of a missing file succeeded")
	}

	cfg, err := Load(filepath.Join(dir, "absent.yaml"), false)
	if err != nil {
		t.Fatalf("Load(optional) error = %v", err)
	}
	if cfg.DatabasePath != "./data/invoices.db" || !cfg.ShouldArchive() {
		t.Errorf("defaults not applied: %+v", cfg)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"bad level", "log_level: loud\n"},
		{"bad format", "log_format: xml\n"},
		{"long delimiter", "csv:\n  delimiter: ';;'\n"},
		{"negative header row", "spreadsheet:\n  header_row: -1\n"},
		{"not yaml", "database_path: [\n"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			chdir(t, dir)

			if _, err := Load(writeConfig(t, dir, tt.body), true); err == nil {
				t.Errorf("Load() accepted %q", tt.body)
			}
		})
	}
}

func TestDelimiterRune_Tab(t *testing.T) {
	if r := (CSVSettings{Delimiter: `\t`}).DelimiterRune(); r != '\t' {
		t.Errorf("DelimiterRune() = %q; want tab", r)
	}
}
