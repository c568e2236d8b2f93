package xlsxparser

import (
	"bytes"
	"testing"

	"github.com/xuri/excelize/v2"
)

func buildWorkbook(t *testing.T, sheet string, rows [][]interface{}) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	if sheet != "Sheet1" {
		if _, err := f.NewSheet(sheet); err != nil {
			t.Fatalf("NewSheet() error = %v", err)
		}
	}

	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		r := row
		if err := f.SetSheetRow(sheet, cell, &r); err != nil {
			t.Fatalf("SetSheetRow() error = %v", err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("WriteToBuffer() error = %v", err)
	}
	return buf.Bytes()
}

func TestParse_FirstSheet(t *testing.T) {
	data := buildWorkbook(t, "Sheet1", [][]interface{}{
		{"invoiceNo", "itemUnitPrice", "", "itemQuantity"},
		{"IN-1", 538.1, "ignored", 2},
		{nil, nil, nil, nil},
		{"  IN-2 ", "10", nil, nil},
	})

	table, err := Parse(data, Options{})
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if table.Source != "Sheet1" {
		t.Errorf("Source = %q", table.Source)
	}
	if len(table.Headers) != 3 {
		t.Errorf("Headers = %v; want 3 named columns", table.Headers)
	}
	if len(table.Rows) != 2 {
		t.Fatalf("len(Rows) = %d; want 2", len(table.Rows))
	}

	first := table.Rows[0]
	if first.Number != 2 || first.Get("invoiceNo") != "IN-1" || first.Get("itemUnitPrice") != "538.1" || first.Get("itemQuantity") != "2" {
		t.Errorf("first row = %+v", first)
	}

	second := table.Rows[1]
	if second.Number != 4 || second.Get("invoiceNo") != "IN-2" || second.Get("itemQuantity") != "" {
		t.Errorf("second row = %+v", second)
	}
}

func TestParse_NamedSheetAndHeaderRow(t *testing.T) {
	data := buildWorkbook(t, "Invoices", [][]interface{}{
		{"Exported from billing"},
		{"invoiceNo", "orderNo"},
		{"IN-9", "ORD-1"},
	})

	table, err := Parse(data, Options{SheetName: "Invoices", HeaderRow: 2})
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(table.Rows) != 1 || table.Rows[0].Get("orderNo") != "ORD-1" || table.Rows[0].Number != 3 {
		t.Errorf("Rows = %+v", table.Rows)
	}

	if _, err := Parse(data, Options{SheetName: "Missing"}); err == nil {
		t.Error("Parse() with unknown sheet succeeded")
	}
}

func TestParse_NotAWorkbook(t *testing.T) {
	if _, err := Parse([]byte("invoiceNo,orderNo\n"), Options{}); err == nil {
		t.Error("Parse() accepted CSV bytes")
	}
}

func TestWrite_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	headers := []string{"invoiceNo", "itemDescription"}
	rows := [][]string{{"IN-1", "Shirt"}, {"IN-2", "Saree"}}

	if err := Write(&buf, "Invoices", headers, rows); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	table, err := Parse(buf.Bytes(), Options{})
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if table.Source != "Invoices" || len(table.Rows) != 2 || table.Rows[1].Get("itemDescription") != "Saree" {
		t.Errorf("round trip = %+v", table)
	}
}
