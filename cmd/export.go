// =============================================================================
// Invoicer - Export Command
// =============================================================================
//
// This file defines the 'export' command, which writes every stored invoice,
// with computed taxes and totals, to one XML document in the output
// directory. A copy of the document is kept in the output archive.
//
// COMMAND USAGE:
//   invoicer export [flags]
//
// FLAGS:
//   --invoice     : Export only the named invoice (repeatable)
//   --stdout      : Write the document to standard output instead of a file
//   --per-invoice-numbering : Restart item numbering for each invoice
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/invoicer/internal/logging"
	"github.com/ginjaninja78/invoicer/internal/types"
	"github.com/ginjaninja78/invoicer/internal/xmlwriter"
	"github.com/ginjaninja78/invoicer/pkg/utils"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var (
	exportInvoices          []string
	exportStdout            bool
	exportPerInvoiceNumbers bool
)

// exportCmd represents the 'export' command.
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export stored invoices as an XML document",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runExport(cmd)
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringSliceVar(
		&exportInvoices,
		"invoice",
		nil,
		"Export only these invoice numbers",
	)

	exportCmd.Flags().BoolVar(
		&exportStdout,
		"stdout",
		false,
		"Write the document to standard output",
	)

	exportCmd.Flags().BoolVar(
		&exportPerInvoiceNumbers,
		"per-invoice-numbering",
		false,
		"Restart line item numbering for each invoice",
	)
}

// =============================================================================
// MAIN EXPORT FUNCTION
// =============================================================================

func runExport(cmd *cobra.Command) error {
	ctx := cmd.Context()

	// =========================================================================
	// STEP 1: LOAD INVOICES
	// =========================================================================

	var invoices []*types.Invoice
	if len(exportInvoices) > 0 {
		for _, no := range exportInvoices {
			inv, err := dbStore.GetInvoice(ctx, no)
			if err != nil {
				return fmt.Errorf("failed to load invoice %q: %w", no, err)
			}
			invoices = append(invoices, inv)
		}
	} else {
		all, err := dbStore.FetchAllInvoices(ctx)
		if err != nil {
			return fmt.Errorf("failed to fetch invoices: %w", err)
		}
		invoices = all
	}

	// =========================================================================
	// STEP 2: GENERATE XML
	// =========================================================================

	opts := xmlwriter.DefaultGenerateOptions()
	opts.GeneratedAt = time.Now().UTC().Truncate(time.Second)
	opts.LineItemNumberingGlobal = !exportPerInvoiceNumbers

	doc, err := xmlwriter.GenerateWithOptions(invoices, opts)
	if err != nil {
		return fmt.Errorf("failed to generate XML: %w", err)
	}

	if exportStdout {
		_, err := cmd.OutOrStdout().Write(doc)
		return err
	}

	// =========================================================================
	// STEP 3: WRITE AND ARCHIVE
	// =========================================================================

	fm := utils.NewFileManager(
		appConfig.InputDir,
		appConfig.OutputDir,
		appConfig.InputArchiveDir,
		appConfig.OutputArchiveDir,
	)
	fm.ArchiveOnSuccess = appConfig.ShouldArchive()
	fm.UseTimestampSubdirs = appConfig.ArchiveTimestampSubdirs

	name := utils.GenerateOutputFileName(
		appConfig.ExportNameFormat,
		map[string]string{"count": strconv.Itoa(len(invoices))},
		".xml",
	)
	outputPath := filepath.Join(appConfig.OutputDir, name)

	if err := os.WriteFile(outputPath, doc, 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}

	archived, err := fm.ArchiveOutputFile(outputPath)
	if err != nil {
		// The export itself succeeded.
		logging.LogError(logger, "export", "archive_output", outputPath, err)
	} else if archived != outputPath {
		logger.WithField("path", archived).Debug("Export archived")
	}

	logger.WithField("path", outputPath).WithField("invoices", len(invoices)).Info("Export written")
	fmt.Fprintf(cmd.OutOrStdout(), "Exported %d invoice(s) to %s\n", len(invoices), outputPath)
	return nil
}
