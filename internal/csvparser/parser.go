// =============================================================================
// Invoicer - CSV Parser Module
// =============================================================================
//
// This module parses CSV exports of the invoice import sheet. The first
// record is the header row; it uses the same column names as the XLSX layout,
// so both parsers produce the same types.Table.
//
// FEATURES:
//   - Configurable single-character delimiter (comma, semicolon, tab, pipe)
//   - Quoted fields, including multi-line addresses
//   - UTF-8 byte order mark written by spreadsheet exports is stripped
//   - Row numbers are source line numbers, for error reporting
//
// =============================================================================

package csvparser

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ginjaninja78/invoicer/internal/types"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// ParseFile reads a CSV file from disk.
func ParseFile(path string, delimiter rune) (*types.Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	table, err := Parse(data, delimiter)
	if err != nil {
		return nil, err
	}
	table.Source = filepath.Base(path)
	return table, nil
}

// Parse reads CSV bytes and returns the parsed rows.
//
// PARAMETERS:
//   - data: The raw CSV bytes.
//   - delimiter: The field separator. Zero means comma.
//
// RETURNS:
//   - A Table with one Row per non-empty record after the header.
//   - An error if the CSV is malformed or has no header row.
func Parse(data []byte, delimiter rune) (*types.Table, error) {
	data = bytes.TrimPrefix(data, utf8BOM)

	reader := csv.NewReader(bytes.NewReader(data))
	configureReader(reader, delimiter)

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("CSV file is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header row: %w", err)
	}

	headers := cleanHeaders(header)

	table := &types.Table{
		Source:  "csv",
		Headers: headers,
		Rows:    []types.Row{},
	}

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV: %w", err)
		}

		// Skip empty rows.
		if isRowEmpty(record) {
			continue
		}

		line, _ := reader.FieldPos(0)

		fields := make(map[string]string, len(headers))
		for i, h := range headers {
			if h == "" || i >= len(record) {
				continue
			}
			fields[h] = strings.TrimSpace(record[i])
		}

		table.Rows = append(table.Rows, types.Row{
			Number: line,
			Fields: fields,
		})
	}

	return table, nil
}

// configureReader configures the CSV reader.
func configureReader(reader *csv.Reader, delimiter rune) {
	if delimiter == 0 {
		delimiter = ','
	}
	reader.Comma = delimiter

	// Allow variable number of fields per row; exports often drop
	// trailing empty cells.
	reader.FieldsPerRecord = -1

	// Allow lazy quotes (quotes that don't follow strict CSV rules).
	reader.LazyQuotes = true

	reader.TrimLeadingSpace = true
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// cleanHeaders trims header values. Empty headers stay empty and their
// column is ignored.
func cleanHeaders(headers []string) []string {
	cleaned := make([]string, len(headers))
	for i, header := range headers {
		cleaned[i] = strings.TrimSpace(header)
	}
	return cleaned
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
