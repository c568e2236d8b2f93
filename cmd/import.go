// =============================================================================
// Invoicer - Import Command
// =============================================================================
//
// This file defines the 'import' command, which bulk-imports invoices from
// JSON, XLSX and CSV files. Invoice numbers already stored are skipped and
// reported; imports never overwrite.
//
// COMMAND USAGE:
//   invoicer import [files...] [flags]
//
// FLAGS:
//   --json       : Print each file's summary as JSON
//   --dry-run    : List the files that would be imported without importing
//
// IMPORT PIPELINE:
//   1. Collect input files (arguments, or every supported file in input_dir)
//   2. For each file, in name order:
//      a. Decode and normalize the candidates
//      b. Insert them concurrently, skipping duplicates
//      c. Print the {success, duplicates} summary
//      d. Archive the file if it came from input_dir
//   3. Write the import summary log to output_dir
//
// =============================================================================

package cmd

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/invoicer/internal/importer"
	"github.com/ginjaninja78/invoicer/internal/logging"
	"github.com/ginjaninja78/invoicer/internal/xlsxparser"
	"github.com/ginjaninja78/invoicer/pkg/utils"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

// importJSON prints summaries as JSON instead of text.
var importJSON bool

// importDryRun lists the input files without importing them.
var importDryRun bool

// =============================================================================
// IMPORT COMMAND DEFINITION
// =============================================================================

// importCmd represents the 'import' command.
var importCmd = &cobra.Command{
	Use:   "import [files...]",
	Short: "Bulk-import invoices from JSON, XLSX or CSV files",
	Long: `The import command reads invoices from the given files, or from every
.json, .xlsx and .csv file in the input directory when no file is given.

JSON files hold an array of invoice documents. XLSX and CSV files hold one
line item per row, with the column layout printed by 'invoicer sample --xlsx'.
Rows without an invoiceNo are skipped with a warning.

Invoices whose number is already stored are skipped and listed as duplicates.
One invalid invoice rejects the whole file.

On success, files taken from the input directory are moved to the input
archive. Files that fail stay in place and processing continues with the
next file.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runImport(cmd, args)
	},
}

// =============================================================================
// INITIALIZATION
// =============================================================================

// init registers the import command with the root command and sets up flags.
func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().BoolVar(
		&importJSON,
		"json",
		false,
		"Print each file's summary as JSON",
	)

	importCmd.Flags().BoolVar(
		&importDryRun,
		"dry-run",
		false,
		"List the files that would be imported without importing them",
	)
}

// =============================================================================
// MAIN IMPORT FUNCTION
// =============================================================================

// runImport imports every input file and returns an error if any failed.
func runImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	run := utils.ImportRunSummary{StartTime: time.Now()}

	fm := utils.NewFileManager(
		appConfig.InputDir,
		appConfig.OutputDir,
		appConfig.InputArchiveDir,
		appConfig.OutputArchiveDir,
	)
	fm.ArchiveOnSuccess = appConfig.ShouldArchive()
	fm.UseTimestampSubdirs = appConfig.ArchiveTimestampSubdirs

	// =========================================================================
	// STEP 1: COLLECT INPUT FILES
	// =========================================================================

	files := args
	fromInputDir := len(args) == 0
	if fromInputDir {
		if err := fm.EnsureDirectories(); err != nil {
			return err
		}

		discovered, err := fm.DiscoverInputFiles(importer.Supported)
		if err != nil {
			return fmt.Errorf("failed to discover input files: %w", err)
		}
		files = discovered
	}

	if len(files) == 0 {
		fmt.Fprintf(out, "No importable files found in %s\n", appConfig.InputDir)
		return nil
	}

	logger.WithField("files", len(files)).Info("Starting import")

	if importDryRun {
		for _, f := range files {
			fmt.Fprintf(out, "  would import %s\n", f)
		}
		return nil
	}

	// =========================================================================
	// STEP 2: IMPORT EACH FILE
	// =========================================================================
	// Files run one after another. Candidates inside a file are inserted
	// concurrently by the importer.

	recorder := &importer.Recorder{}
	im := importer.New(dbStore,
		importer.WithEventSink(importer.MultiSink(importer.LogSink(logger), recorder)),
		importer.WithSpreadsheetOptions(xlsxparser.Options{
			SheetName: appConfig.Spreadsheet.SheetName,
			HeaderRow: appConfig.Spreadsheet.HeaderRow,
		}),
		importer.WithCSVDelimiter(appConfig.CSV.DelimiterRune()),
	)

	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("import interrupted: %w", err)
		}

		recorder.Reset()
		summary, err := im.ImportFile(ctx, file)
		if err != nil {
			logging.LogError(logger, "import", "import_file", file, err)
			run.FailedFiles = append(run.FailedFiles, utils.FailedFileInfo{
				InputFile:    file,
				ErrorMessage: err.Error(),
			})
			fmt.Fprintf(out, "  ✗ %s: %v\n", filepath.Base(file), err)
			continue
		}

		info := utils.ImportedFileInfo{
			InputFile:  file,
			BatchID:    summary.BatchID,
			Inserted:   summary.Success,
			Duplicates: summary.Duplicates,
			Warnings:   warnings(recorder.Events()),
		}

		if fromInputDir {
			archived, err := fm.ArchiveInputFile(file)
			if err != nil {
				logging.LogError(logger, "import", "archive_input", file, err)
			} else {
				info.ArchivePath = archived
			}
		}

		run.ImportedFiles = append(run.ImportedFiles, info)

		if err := printImportSummary(cmd, file, summary); err != nil {
			return err
		}
	}

	// =========================================================================
	// STEP 3: WRITE SUMMARY
	// =========================================================================

	run.EndTime = time.Now()

	if fromInputDir {
		path, err := utils.WriteSummaryLog(run, appConfig.OutputDir)
		if err != nil {
			logging.LogError(logger, "import", "write_summary", appConfig.OutputDir, err)
		} else {
			logger.WithField("path", path).Info("Import summary written")
		}
	}

	if !importJSON {
		fmt.Fprintln(out, "\n=== Import Complete ===")
		fmt.Fprintf(out, "Total files:        %d\n", len(files))
		fmt.Fprintf(out, "Imported:           %d\n", len(run.ImportedFiles))
		fmt.Fprintf(out, "Failed:             %d\n", len(run.FailedFiles))
		fmt.Fprintf(out, "Invoices inserted:  %d\n", run.TotalInserted())
		fmt.Fprintf(out, "Duplicates skipped: %d\n", run.TotalDuplicates())
		fmt.Fprintf(out, "Time elapsed:       %s\n", run.EndTime.Sub(run.StartTime))
	}

	if n := len(run.FailedFiles); n > 0 {
		return fmt.Errorf("%d of %d file(s) failed to import", n, len(files))
	}
	return nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// printImportSummary writes one file's outcome.
func printImportSummary(cmd *cobra.Command, file string, summary *importer.Summary) error {
	out := cmd.OutOrStdout()

	if importJSON {
		enc := json.NewEncoder(out)
		return enc.Encode(struct {
			File string `json:"file"`
			*importer.Summary
		}{File: file, Summary: summary})
	}

	fmt.Fprintf(out, "  ✓ %s: %d imported, %d duplicate(s)\n",
		filepath.Base(file), summary.Success, len(summary.Duplicates))
	for _, no := range summary.Duplicates {
		fmt.Fprintf(out, "      duplicate %s\n", no)
	}
	return nil
}

// warnings keeps the skipped-row warnings. Duplicates are already listed in
// the summary.
func warnings(events []importer.Event) []string {
	var out []string
	for _, e := range events {
		if e.Kind == importer.KindSkippedRow {
			out = append(out, e.Message)
		}
	}
	return out
}
