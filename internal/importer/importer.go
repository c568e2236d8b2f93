// =============================================================================
// Invoicer - Bulk Importer
// =============================================================================
//
// This module persists batches of invoice candidates, skipping any whose
// invoice number is already stored. Imports never overwrite; the single-save
// path (store.UpsertInvoice) is the only way to change a stored invoice.
//
// IMPORT PIPELINE:
//   1. Decode the input (JSON array, XLSX first sheet, or CSV export)
//   2. Normalize tabular rows into invoices with one line item each,
//      dropping rows that lack an invoice number
//   3. Mark candidates whose number is already stored as duplicates, then
//      validate the rest; one invalid new candidate rejects the batch
//   4. Insert the remaining candidates concurrently with InsertInvoiceIfAbsent
//   5. Report {success, duplicates}
//
// CONCURRENCY:
//   Each candidate runs in its own goroutine. The store serializes the
//   per-candidate transactions, so of two candidates sharing an invoice
//   number exactly one is inserted and the other is reported as duplicate.
//   A hard failure of any candidate cancels the rest and rejects the batch;
//   candidates already committed stay committed.
//
// =============================================================================

package importer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/ginjaninja78/invoicer/internal/csvparser"
	"github.com/ginjaninja78/invoicer/internal/store"
	"github.com/ginjaninja78/invoicer/internal/types"
	"github.com/ginjaninja78/invoicer/internal/validation"
	"github.com/ginjaninja78/invoicer/internal/xlsxparser"
)

// ErrUnsupportedFormat is returned by ImportFile for unknown extensions.
var ErrUnsupportedFormat = errors.New("unsupported import format")

// =============================================================================
// SUMMARY STRUCTURE
// =============================================================================

// Summary is the outcome of one import batch.
type Summary struct {
	// BatchID identifies the batch in events and logs.
	BatchID string `json:"batchId"`

	// Success is the number of invoices inserted.
	Success int `json:"success"`

	// Duplicates lists the skipped invoice numbers in candidate order.
	Duplicates []string `json:"duplicates"`
}

// =============================================================================
// IMPORTER STRUCTURE
// =============================================================================

// Store is the part of the record store an import needs.
type Store interface {
	ExistsByInvoiceNo(ctx context.Context, invoiceNo string) (bool, error)
	InsertInvoiceIfAbsent(ctx context.Context, inv *types.Invoice) (id int64, inserted bool, err error)
}

// Importer runs bulk imports against a store.
type Importer struct {
	store Store
	sink  EventSink

	spreadsheet xlsxparser.Options
	delimiter   rune
}

// Option configures an Importer.
type Option func(*Importer)

// WithEventSink sets the receiver of progress events. Events are dropped
// when no sink is set.
func WithEventSink(sink EventSink) Option {
	return func(im *Importer) {
		if sink != nil {
			im.sink = sink
		}
	}
}

// WithSpreadsheetOptions sets the sheet and header row read from workbooks.
func WithSpreadsheetOptions(opts xlsxparser.Options) Option {
	return func(im *Importer) {
		im.spreadsheet = opts
	}
}

// WithCSVDelimiter sets the CSV field separator.
func WithCSVDelimiter(r rune) Option {
	return func(im *Importer) {
		im.delimiter = r
	}
}

// New creates an Importer writing to s.
func New(s Store, opts ...Option) *Importer {
	im := &Importer{
		store:     s,
		sink:      discard,
		delimiter: ',',
	}
	for _, opt := range opts {
		opt(im)
	}
	return im
}

// =============================================================================
// BATCH IMPORT
// =============================================================================

type outcome int

const (
	outcomePending outcome = iota
	outcomeInserted
	outcomeDuplicate
)

// ImportBatch inserts every candidate whose invoice number is not stored
// yet. On success the inserted candidates carry their new ids.
//
// A candidate whose number is already stored, or is taken by a valid
// candidate of the same batch, is a duplicate even when its own fields are
// invalid.
//
// RETURNS:
//   - A Summary with the inserted count and the skipped invoice numbers.
//   - An error if any other candidate is invalid or any insert fails. No
//     summary is returned in that case.
func (im *Importer) ImportBatch(ctx context.Context, candidates []types.Invoice) (*Summary, error) {
	return im.run(ctx, uuid.NewString(), candidates)
}

func (im *Importer) run(ctx context.Context, batchID string, candidates []types.Invoice) (*Summary, error) {
	total := len(candidates)

	im.emit(batchID, LevelInfo, "", fmt.Sprintf("Starting import of %d invoices...", total))

	outcomes, err := im.screen(ctx, batchID, candidates)
	if err != nil {
		return nil, err
	}

	g, gctx := errgroup.WithContext(ctx)
	for i := range candidates {
		i := i
		if outcomes[i] != outcomePending {
			continue
		}
		inv := &candidates[i]

		g.Go(func() error {
			im.emit(batchID, LevelInfo, inv.InvoiceNo,
				fmt.Sprintf("Processing invoice %d/%d: %s", i+1, total, inv.InvoiceNo))

			id, inserted, err := im.store.InsertInvoiceIfAbsent(gctx, inv)
			if err != nil {
				im.emit(batchID, LevelError, inv.InvoiceNo,
					fmt.Sprintf("Error adding invoice %s: %v", inv.InvoiceNo, err))
				return err
			}

			if !inserted {
				im.duplicate(batchID, inv.InvoiceNo)
				outcomes[i] = outcomeDuplicate
				return nil
			}

			im.emit(batchID, LevelInfo, inv.InvoiceNo,
				fmt.Sprintf("Invoice %s added with ID: %d (%d items)", inv.InvoiceNo, id, len(inv.Items)))
			outcomes[i] = outcomeInserted
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		im.emit(batchID, LevelError, "", fmt.Sprintf("Import failed: %v", err))
		return nil, fmt.Errorf("import batch %s: %w", batchID, err)
	}

	summary := &Summary{
		BatchID:    batchID,
		Duplicates: []string{},
	}
	for i, o := range outcomes {
		switch o {
		case outcomeInserted:
			summary.Success++
		case outcomeDuplicate:
			summary.Duplicates = append(summary.Duplicates, candidates[i].InvoiceNo)
		}
	}

	im.emit(batchID, LevelInfo, "", fmt.Sprintf("Successfully imported %d invoices", summary.Success))
	if n := len(summary.Duplicates); n > 0 {
		im.sink.Emit(Event{
			BatchID: batchID,
			Time:    time.Now(),
			Level:   LevelWarn,
			Kind:    KindDuplicates,
			Message: fmt.Sprintf("Skipped %d duplicate invoices: %s", n, strings.Join(summary.Duplicates, ", ")),
		})
	}

	return summary, nil
}

// screen marks stored invoice numbers as duplicates and validates the rest.
// An invalid candidate sharing its number with a valid one of the batch can
// never be inserted and is a duplicate too; any other invalid candidate
// rejects the batch.
func (im *Importer) screen(ctx context.Context, batchID string, candidates []types.Invoice) ([]outcome, error) {
	total := len(candidates)
	outcomes := make([]outcome, total)

	type rejection struct {
		index int
		err   error
	}
	var rejected []rejection
	claimed := make(map[string]bool)

	for i := range candidates {
		inv := &candidates[i]

		if inv.InvoiceNo != "" {
			exists, err := im.store.ExistsByInvoiceNo(ctx, inv.InvoiceNo)
			if err != nil {
				im.emit(batchID, LevelError, inv.InvoiceNo,
					fmt.Sprintf("Error checking invoice %s: %v", inv.InvoiceNo, err))
				return nil, fmt.Errorf("candidate %d: %w", i+1, err)
			}
			if exists {
				im.duplicate(batchID, inv.InvoiceNo)
				outcomes[i] = outcomeDuplicate
				continue
			}
		}

		if err := validation.ValidateInvoice(inv); err != nil {
			rejected = append(rejected, rejection{index: i, err: err})
			continue
		}
		claimed[inv.InvoiceNo] = true
	}

	for _, r := range rejected {
		inv := &candidates[r.index]
		if inv.InvoiceNo != "" && claimed[inv.InvoiceNo] {
			im.duplicate(batchID, inv.InvoiceNo)
			outcomes[r.index] = outcomeDuplicate
			continue
		}

		im.emit(batchID, LevelError, inv.InvoiceNo,
			fmt.Sprintf("Invoice %d/%d rejected: %v", r.index+1, total, r.err))
		return nil, fmt.Errorf("candidate %d: %w: %w", r.index+1, store.ErrInvalidInvoice, r.err)
	}

	return outcomes, nil
}

func (im *Importer) duplicate(batchID, invoiceNo string) {
	im.emit(batchID, LevelWarn, invoiceNo, fmt.Sprintf("Duplicate invoice found: %s. Skipping...", invoiceNo))
}

// =============================================================================
// INPUT DECODERS
// =============================================================================

// ImportJSON imports a JSON array of invoice documents.
func (im *Importer) ImportJSON(ctx context.Context, data []byte) (*Summary, error) {
	var candidates []types.Invoice
	if err := json.Unmarshal(data, &candidates); err != nil {
		return nil, fmt.Errorf("failed to parse JSON invoices: %w", err)
	}
	return im.ImportBatch(ctx, candidates)
}

// ImportSpreadsheet imports the rows of an XLSX workbook.
func (im *Importer) ImportSpreadsheet(ctx context.Context, data []byte) (*Summary, error) {
	table, err := xlsxparser.Parse(data, im.spreadsheet)
	if err != nil {
		return nil, fmt.Errorf("failed to parse spreadsheet: %w", err)
	}
	return im.importTable(ctx, table)
}

// ImportCSV imports a CSV export of the spreadsheet layout.
func (im *Importer) ImportCSV(ctx context.Context, data []byte) (*Summary, error) {
	table, err := csvparser.Parse(data, im.delimiter)
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	return im.importTable(ctx, table)
}

// ImportFile imports a file, choosing the decoder by extension
// (.json, .xlsx, .csv).
func (im *Importer) ImportFile(ctx context.Context, path string) (*Summary, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		return im.ImportJSON(ctx, data)

	case ".xlsx":
		table, err := xlsxparser.ParseFile(path, im.spreadsheet)
		if err != nil {
			return nil, fmt.Errorf("failed to parse spreadsheet %s: %w", filepath.Base(path), err)
		}
		return im.importTable(ctx, table)

	case ".csv":
		table, err := csvparser.ParseFile(path, im.delimiter)
		if err != nil {
			return nil, fmt.Errorf("failed to parse CSV %s: %w", filepath.Base(path), err)
		}
		return im.importTable(ctx, table)
	}

	return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Base(path))
}

// Supported reports whether ImportFile can decode path.
func Supported(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".xlsx", ".csv":
		return true
	}
	return false
}

func (im *Importer) importTable(ctx context.Context, table *types.Table) (*Summary, error) {
	candidates, skipped, err := normalizeTable(table)
	if err != nil {
		return nil, fmt.Errorf("failed to read invoice rows: %w", err)
	}

	batchID := uuid.NewString()
	for _, n := range skipped {
		im.sink.Emit(Event{
			BatchID: batchID,
			Time:    time.Now(),
			Level:   LevelWarn,
			Kind:    KindSkippedRow,
			Message: fmt.Sprintf("Row %d is missing invoiceNo. Skipping...", n),
		})
	}
	im.emit(batchID, LevelInfo, "",
		fmt.Sprintf("Formatted %d valid invoices from %d rows of %s", len(candidates), len(table.Rows), table.Source))

	return im.run(ctx, batchID, candidates)
}

func (im *Importer) emit(batchID string, level Level, invoiceNo, msg string) {
	im.sink.Emit(Event{
		BatchID:   batchID,
		Time:      time.Now(),
		Level:     level,
		InvoiceNo: invoiceNo,
		Message:   msg,
	})
}
