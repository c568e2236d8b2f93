// =============================================================================
// Invoicer - XLSX Workbook Parser
// =============================================================================
//
// This module reads invoice rows from an XLSX workbook. One sheet is read
// (the first one unless a sheet name is configured); its header row names
// the columns and every following non-empty row becomes a types.Row.
//
// SHEET STRUCTURE (Expected Layout):
//
//   | invoiceNo | invoiceDate | sellerName | ... | itemUnitPrice | itemQuantity | ... |
//   |-----------|-------------|------------|-----|---------------|--------------|-----|
//   | IN-761    | 28.10.2019  | Varasiddhi | ... | 538.1         | 1            | ... |
//
// Column order does not matter; columns are matched by header text. Cell
// values are read raw (unformatted), so numbers arrive as plain digits.
//
// =============================================================================

package xlsxparser

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/invoicer/internal/types"
)

// Options controls which part of the workbook is read.
type Options struct {
	// SheetName selects the sheet. Empty means the first sheet.
	SheetName string

	// HeaderRow is the 1-based row holding the column headers.
	// Default: 1
	HeaderRow int
}

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// ParseFile reads a workbook from disk.
func ParseFile(path string, opts Options) (*types.Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read workbook: %w", err)
	}
	return Parse(data, opts)
}

// Parse reads a workbook from memory and returns its data rows.
//
// PARAMETERS:
//   - data: The raw XLSX bytes.
//   - opts: Sheet selection and header row.
//
// RETURNS:
//   - A Table whose rows are keyed by header text. Row numbers are the
//     sheet's own 1-based row numbers.
//   - An error if the bytes are not a workbook or the sheet is missing.
func Parse(data []byte, opts Options) (*types.Table, error) {
	if opts.HeaderRow <= 0 {
		opts.HeaderRow = 1
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheetName, err := selectSheet(f, opts.SheetName)
	if err != nil {
		return nil, err
	}

	rows, err := f.GetRows(sheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read rows of sheet %q: %w", sheetName, err)
	}

	table := &types.Table{
		Source: sheetName,
		Rows:   []types.Row{},
	}

	// A sheet with no header row has no data either.
	if len(rows) < opts.HeaderRow {
		return table, nil
	}

	columns := headerColumns(rows[opts.HeaderRow-1])
	for _, c := range columns {
		table.Headers = append(table.Headers, c.name)
	}

	for i := opts.HeaderRow; i < len(rows); i++ {
		row := rows[i]

		// Skip empty rows.
		if isRowEmpty(row) {
			continue
		}

		fields := make(map[string]string, len(columns))
		for _, c := range columns {
			if c.index < len(row) {
				fields[c.name] = strings.TrimSpace(row[c.index])
			}
		}

		table.Rows = append(table.Rows, types.Row{
			Number: i + 1,
			Fields: fields,
		})
	}

	return table, nil
}

// selectSheet returns the requested sheet, or the first one when name is "".
func selectSheet(f *excelize.File, name string) (string, error) {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return "", fmt.Errorf("workbook has no sheets")
	}

	if name == "" {
		return sheets[0], nil
	}

	for _, s := range sheets {
		if s == name {
			return s, nil
		}
	}
	return "", fmt.Errorf("workbook has no sheet named %q (sheets: %s)", name, strings.Join(sheets, ", "))
}

// =============================================================================
// WORKBOOK WRITER
// =============================================================================

// Write renders headers and rows as a single-sheet workbook. It is the
// inverse of Parse with default options and produces import templates.
func Write(w io.Writer, sheetName string, headers []string, rows [][]string) error {
	f := excelize.NewFile()
	defer f.Close()

	if sheetName != "" && sheetName != "Sheet1" {
		if err := f.SetSheetName("Sheet1", sheetName); err != nil {
			return fmt.Errorf("failed to name sheet: %w", err)
		}
	} else {
		sheetName = "Sheet1"
	}

	if err := writeRow(f, sheetName, 1, headers); err != nil {
		return err
	}
	for i, row := range rows {
		if err := writeRow(f, sheetName, i+2, row); err != nil {
			return err
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, rowNum int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return err
	}

	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}

	if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
		return fmt.Errorf("failed to write row %d: %w", rowNum, err)
	}
	return nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

type column struct {
	index int
	name  string
}

// headerColumns returns the named columns of a header row. Columns with an
// empty header are ignored.
func headerColumns(header []string) []column {
	var cols []column
	for i, h := range header {
		h = strings.TrimSpace(h)
		if h == "" {
			continue
		}
		cols = append(cols, column{index: i, name: h})
	}
	return cols
}

// isRowEmpty checks if a row contains only empty cells.
func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
