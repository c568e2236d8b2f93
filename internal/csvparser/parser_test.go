package csvparser

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		delimiter rune
		wantRows  int
		wantNums  []int
		check     func(t *testing.T, get func(row int, col string) string)
	}{
		{
			name:      "comma with quoted multi-line address",
			input:     "invoiceNo,sellerAddress,itemUnitPrice\nIN-1,\"75, 3rd Cross\nBengaluru\",538.1\nIN-2,Mysuru,\"1,200.50\"\n",
			delimiter: ',',
			wantRows:  2,
			wantNums:  []int{2, 4},
			check: func(t *testing.T, get func(int, string) string) {
				if got := get(0, "sellerAddress"); got != "75, 3rd Cross\nBengaluru" {
					t.Errorf("sellerAddress = %q", got)
				}
				if got := get(1, "itemUnitPrice"); got != "1,200.50" {
					t.Errorf("itemUnitPrice = %q", got)
				}
			},
		},
		{
			name:      "semicolon with BOM and blank line",
			input:     "\xEF\xBB\xBFinvoiceNo;orderNo\nIN-1;ORD-1\n;\nIN-3\n",
			delimiter: ';',
			wantRows:  2,
			wantNums:  []int{2, 4},
			check: func(t *testing.T, get func(int, string) string) {
				if got := get(0, "invoiceNo"); got != "IN-1" {
					t.Errorf("invoiceNo = %q; BOM not stripped?", got)
				}
				if got := get(1, "orderNo"); got != "" {
					t.Errorf("short row orderNo = %q; want empty", got)
				}
			},
		},
		{
			name:      "default delimiter",
			input:     "invoiceNo, orderNo\nIN-1, ORD-1\n",
			delimiter: 0,
			wantRows:  1,
			wantNums:  []int{2},
			check: func(t *testing.T, get func(int, string) string) {
				if got := get(0, "orderNo"); got != "ORD-1" {
					t.Errorf("orderNo = %q", got)
				}
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			table, err := Parse([]byte(tt.input), tt.delimiter)
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if len(table.Rows) != tt.wantRows {
				t.Fatalf("len(Rows) = %d; want %d", len(table.Rows), tt.wantRows)
			}
			for i, n := range tt.wantNums {
				if table.Rows[i].Number != n {
					t.Errorf("Rows[%d].Number = %d; want %d", i, table.Rows[i].Number, n)
				}
			}
			tt.check(t, func(row int, col string) string { return table.Rows[row].Get(col) })
		})
	}
}

func TestParse_Empty(t *testing.T) {
	if _, err := Parse(nil, ','); err == nil {
		t.Error("Parse(empty) succeeded")
	}
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "march.csv")
	if err := os.WriteFile(path, []byte("invoiceNo\nIN-1\n"), 0644); err != nil {
		t.Fatal(err)
	}

	table, err := ParseFile(path, ',')
	if err != nil {
		t.Fatalf("ParseFile() error = %v", err)
	}
	if table.Source != "march.csv" || len(table.Rows) != 1 {
		t.Errorf("table = %+v", table)
	}
}
