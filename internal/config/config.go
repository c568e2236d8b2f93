// =============================================================================
// Invoicer - Configuration Module
// =============================================================================
//
// This module loads the application configuration from a YAML file.
//
// CONFIGURATION FILE (config.yaml):
//   - database_path          SQLite file holding invoices and line items
//   - input_dir / output_dir where `import` and `export` read and write
//   - *_archive_dir          where processed files are moved or copied
//   - log_*                  logrus level, format and optional log file
//   - export_name_format     output file naming pattern
//   - spreadsheet / csv      tabular import settings
//
// Unset keys take defaults. A missing file is an error only when the caller
// named the file explicitly.
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultPath is the config file read when --config is not given.
const DefaultPath = "./config.yaml"

// =============================================================================
// MAIN CONFIGURATION STRUCTURE
// =============================================================================

// Config holds the global application configuration.
type Config struct {
	// =========================================================================
	// STORAGE SETTINGS
	// =========================================================================

	// DatabasePath is the SQLite database file.
	// Default: "./data/invoices.db"
	DatabasePath string `yaml:"database_path"`

	// =========================================================================
	// DIRECTORY SETTINGS
	// =========================================================================

	// InputDir is scanned by `import` when no file arguments are given.
	// Default: "./input"
	InputDir string `yaml:"input_dir"`

	// OutputDir receives exported documents and import summary logs.
	// Default: "./output"
	OutputDir string `yaml:"output_dir"`

	// InputArchiveDir receives input files after a successful import.
	// Default: "./input_archive"
	InputArchiveDir string `yaml:"input_archive_dir"`

	// OutputArchiveDir receives a copy of every exported document.
	// Default: "./output_archive"
	OutputArchiveDir string `yaml:"output_archive_dir"`

	// ArchiveOnSuccess moves imported input files to InputArchiveDir.
	// Default: true
	ArchiveOnSuccess *bool `yaml:"archive_on_success"`

	// ArchiveTimestampSubdirs files archived copies under YYYY/MM/DD
	// subdirectories of the archive directories.
	// Default: false
	ArchiveTimestampSubdirs bool `yaml:"archive_timestamp_subdirs"`

	// =========================================================================
	// LOGGING SETTINGS
	// =========================================================================

	// LogFile is an optional log file written in addition to stderr.
	// Default: "" (stderr only)
	LogFile string `yaml:"log_file"`

	// LogLevel controls the verbosity of logging.
	// Valid values: "debug", "info", "warn", "error"
	// Default: "info"
	LogLevel string `yaml:"log_level"`

	// LogFormat selects the logrus formatter: "text" or "json".
	// Default: "text"
	LogFormat string `yaml:"log_format"`

	// =========================================================================
	// OUTPUT SETTINGS
	// =========================================================================

	// ExportNameFormat defines the exported file name.
	// Placeholders:
	//   {uuid}      - A random UUID
	//   {timestamp} - Current timestamp (YYYYMMDD_HHMMSS)
	//   {date}      - Current date (YYYYMMDD)
	//   {time}      - Current time (HHMMSS)
	//   {count}     - Number of invoices in the document
	//
	// Default: "invoices_{timestamp}_{uuid}.xml"
	ExportNameFormat string `yaml:"export_name_format"`

	// =========================================================================
	// IMPORT SETTINGS
	// =========================================================================

	Spreadsheet SpreadsheetSettings `yaml:"spreadsheet"`
	CSV         CSVSettings         `yaml:"csv"`
}

// SpreadsheetSettings contains settings for reading XLSX workbooks.
type SpreadsheetSettings struct {
	// SheetName selects a sheet by name. Empty means the first sheet.
	SheetName string `yaml:"sheet_name"`

	// HeaderRow is the 1-based row holding the column headers.
	// Default: 1
	HeaderRow int `yaml:"header_row"`
}

// CSVSettings contains settings for parsing CSV files.
type CSVSettings struct {
	// Delimiter is the field separator, a single character.
	// Common values: "," (comma), ";" (semicolon), "\t" (tab)
	// Default: ","
	Delimiter string `yaml:"delimiter"`
}

// ShouldArchive reports whether imported files are archived.
func (c *Config) ShouldArchive() bool {
	return c.ArchiveOnSuccess == nil || *c.ArchiveOnSuccess
}

// DelimiterRune returns the CSV delimiter as a rune.
func (c CSVSettings) DelimiterRune() rune {
	if c.Delimiter == `\t` {
		return '\t'
	}
	return []rune(c.Delimiter)[0]
}

// =============================================================================
// CONFIGURATION LOADING FUNCTIONS
// =============================================================================

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// Load loads the configuration from a YAML file.
//
// PARAMETERS:
//   - configPath: The path to the configuration file.
//   - required:   Whether a missing file is an error. When false, a missing
//     file yields the defaults.
//
// RETURNS:
//   - A pointer to the Config struct.
//   - An error if the file cannot be read, parsed or validated.
func Load(configPath string, required bool) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if errors.Is(err, os.ErrNotExist) && !required {
		cfg := Default()
		return cfg, validate(cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for any unset configuration options.
func applyDefaults(cfg *Config) {
	if cfg.DatabasePath == "" {
		cfg.DatabasePath = "./data/invoices.db"
	}
	if cfg.InputDir == "" {
		cfg.InputDir = "./input"
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = "./output"
	}
	if cfg.InputArchiveDir == "" {
		cfg.InputArchiveDir = "./input_archive"
	}
	if cfg.OutputArchiveDir == "" {
		cfg.OutputArchiveDir = "./output_archive"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
	}
	if cfg.ExportNameFormat == "" {
		cfg.ExportNameFormat = "invoices_{timestamp}_{uuid}.xml"
	}
	if cfg.Spreadsheet.HeaderRow == 0 {
		cfg.Spreadsheet.HeaderRow = 1
	}
	if cfg.CSV.Delimiter == "" {
		cfg.CSV.Delimiter = ","
	}
}

// validate checks option values and creates the working directories.
func validate(cfg *Config) error {
	switch strings.ToLower(cfg.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("log_level %q is not one of debug, info, warn, error", cfg.LogLevel)
	}

	switch strings.ToLower(cfg.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("log_format %q is not one of text, json", cfg.LogFormat)
	}

	if cfg.Spreadsheet.HeaderRow < 1 {
		return fmt.Errorf("spreadsheet.header_row must be at least 1, got %d", cfg.Spreadsheet.HeaderRow)
	}

	if cfg.CSV.Delimiter != `\t` && len([]rune(cfg.CSV.Delimiter)) != 1 {
		return fmt.Errorf("csv.delimiter must be a single character, got %q", cfg.CSV.Delimiter)
	}

	// Create directories that don't exist yet.
	dirs := []string{
		cfg.InputDir,
		cfg.OutputDir,
		filepath.Dir(cfg.DatabasePath),
	}

	for _, dir := range dirs {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return fmt.Errorf("failed to create directory %s: %w", dir, err)
			}
		}
	}

	return nil
}
