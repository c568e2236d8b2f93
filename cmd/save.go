// =============================================================================
// Invoicer - Save Command
// =============================================================================
//
// This file defines the 'save' command, the single-record save path. A saved
// invoice overwrites any stored invoice with the same number, keeping its id
// and replacing all of its line items.
//
// COMMAND USAGE:
//   invoicer save <file.json | ->
//
// INPUT:
//   One invoice document, or an array of them, as printed by 'invoicer sample'.
//   "-" reads from standard input.
//
// =============================================================================

package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/invoicer/internal/logging"
	"github.com/ginjaninja78/invoicer/internal/store"
	"github.com/ginjaninja78/invoicer/internal/types"
	"github.com/ginjaninja78/invoicer/internal/validation"
)

// saveCmd represents the 'save' command.
var saveCmd = &cobra.Command{
	Use:   "save <file.json | ->",
	Short: "Save an invoice, overwriting any invoice with the same number",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSave(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(saveCmd)
}

func runSave(cmd *cobra.Command, path string) error {
	data, err := readInput(cmd, path)
	if err != nil {
		return err
	}

	invoices, err := decodeInvoices(data)
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}

	out := cmd.OutOrStdout()
	for _, inv := range invoices {
		id, err := dbStore.UpsertInvoice(cmd.Context(), inv)
		if err != nil {
			if errors.Is(err, store.ErrInvalidInvoice) {
				printFieldErrors(cmd.ErrOrStderr(), inv.InvoiceNo, err)
			}
			logging.LogError(logger, "save", "upsert_invoice", inv.InvoiceNo, err)
			return fmt.Errorf("failed to save invoice %q: %w", inv.InvoiceNo, err)
		}

		logger.WithField("invoiceNo", inv.InvoiceNo).WithField("id", id).Info("Invoice saved")
		fmt.Fprintf(out, "Saved invoice %s (id %d, %d items)\n", inv.InvoiceNo, id, len(inv.Items))
	}

	return nil
}

// decodeInvoices accepts a single invoice object or an array of them.
func decodeInvoices(data []byte) ([]*types.Invoice, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, errors.New("empty input")
	}

	if trimmed[0] == '[' {
		var invoices []*types.Invoice
		if err := json.Unmarshal(trimmed, &invoices); err != nil {
			return nil, err
		}
		return invoices, nil
	}

	var inv types.Invoice
	if err := json.Unmarshal(trimmed, &inv); err != nil {
		return nil, err
	}
	return []*types.Invoice{&inv}, nil
}

func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("failed to read standard input: %w", err)
		}
		return data, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}

func printFieldErrors(w io.Writer, invoiceNo string, err error) {
	fields := validation.Fields(err)
	if len(fields) == 0 {
		return
	}

	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintf(w, "Invoice %q is invalid:\n", invoiceNo)
	for _, name := range names {
		fmt.Fprintf(w, "  %-24s %s\n", name, fields[name])
	}
}
