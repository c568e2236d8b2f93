// =============================================================================
// Invoicer - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. Every other command
// (import, save, list, show, export, sample, version) is attached to it.
//
// COBRA CLI STRUCTURE:
//   rootCmd (invoicer)
//   ├── importCmd  (invoicer import [files...])
//   ├── saveCmd    (invoicer save <file.json>)
//   ├── listCmd    (invoicer list)
//   ├── showCmd    (invoicer show <invoiceNo>)
//   ├── exportCmd  (invoicer export)
//   ├── sampleCmd  (invoicer sample)
//   └── versionCmd (invoicer version)
//
// CONFIGURATION:
//   The root command is responsible for:
//   1. Setting up global flags (--config, --verbose)
//   2. Loading the configuration file
//   3. Setting up logging
//   4. Opening the invoice database for commands that need it
//
// =============================================================================

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ginjaninja78/invoicer/internal/config"
	"github.com/ginjaninja78/invoicer/internal/logging"
	"github.com/ginjaninja78/invoicer/internal/store/sqlite"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the main configuration file.
// This can be overridden using the --config flag.
var cfgFile string

// verbose enables debug logging when set to true.
var verbose bool

// These are populated by the root PersistentPreRunE.
var (
	appConfig *config.Config
	logger    *logrus.Logger
	logCloser io.Closer
	dbStore   *sqlite.SQLiteStore
)

// skipSetupAnnotation marks commands that run without config, logger or
// database.
const skipSetupAnnotation = "invoicer/skip-setup"

// busyTimeoutMS bounds how long a write waits on a lock held by another
// invoicer process sharing the database file.
const busyTimeoutMS = 5000

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "invoicer",
	Short: "Invoicer - GST invoice store with bulk import and tax totals",
	Long: `Invoicer keeps invoices and their line items in a local SQLite database,
imports them in bulk from JSON, XLSX and CSV files, and renders them with
CGST/SGST or IGST tax rows, totals and the amount in words.

Key Features:
  - Single-record save that overwrites by invoice number
  - Bulk import that skips invoice numbers already stored
  - Concurrent inserts with a {success, duplicates} summary
  - XML export of every stored invoice with computed totals
  - Automatic archival of imported files

Example Usage:
  invoicer sample > invoice.json        # Write the sample invoice
  invoicer save invoice.json            # Save (or overwrite) it
  invoicer import                       # Import every file in the input directory
  invoicer import march.xlsx            # Import one workbook
  invoicer show IN-761                  # Print one invoice with taxes
  invoicer export                       # Export all invoices as XML`,

	SilenceUsage: true,

	Annotations: map[string]string{skipSetupAnnotation: "true"},

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Annotations[skipSetupAnnotation] == "true" {
			return nil
		}
		return setup(cmd)
	},

	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return teardown()
	},

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute runs the root command. It is called by main.main().
// An interrupt cancels the command context so in-flight imports stop.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		// PersistentPostRunE is skipped when RunE fails.
		teardown()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// SETUP AND TEARDOWN
// =============================================================================

// setup loads the configuration, builds the logger and opens the database.
// A config file named explicitly with --config must exist; the default one
// is optional.
func setup(cmd *cobra.Command) error {
	cfg, err := config.Load(cfgFile, cmd.Flags().Changed("config"))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	appConfig = cfg

	logger, logCloser, err = logging.New(cfg, verbose)
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}

	dbStore, err = sqlite.New(sqlite.Config{
		DBPath:        cfg.DatabasePath,
		WAL:           true,
		BusyTimeoutMS: busyTimeoutMS,
	})
	if err != nil {
		logging.LogError(logger, "cmd", "open_store", cfg.DatabasePath, err)
		return fmt.Errorf("failed to open database: %w", err)
	}

	logger.WithField("database", dbStore.Path()).Debug("Database opened")
	return nil
}

// teardown releases the database and the log file. It is safe to call more
// than once.
func teardown() error {
	var firstErr error

	if dbStore != nil {
		if err := dbStore.Close(); err != nil {
			firstErr = fmt.Errorf("failed to close database: %w", err)
		}
		dbStore = nil
	}

	if logCloser != nil {
		if err := logCloser.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("failed to close log file: %w", err)
		}
		logCloser = nil
	}

	return firstErr
}

// =============================================================================
// INITIALIZATION
// =============================================================================

// init sets up the global flags.
func init() {
	// --config flag: Allows the user to specify a custom configuration file.
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		config.DefaultPath,
		"Path to the configuration file",
	)

	// --verbose flag: Enables debug logging.
	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable verbose output for debugging",
	)
}
