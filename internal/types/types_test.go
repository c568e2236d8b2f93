package types

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
)

func TestInvoiceJSONShape(t *testing.T) {
	raw := `{
		"invoiceNo": "IN-761",
		"placeOfSupply": "KARNATAKA",
		"placeOfDelivery": "KARNATAKA",
		"sellerDetails": {"name": "Varasiddhi Silk Exports", "address": "75, 3rd Cross\nBENGALURU", "gstNo": "29AACFV3325K1ZY"},
		"billingDetails": {"name": "Madhu B", "address": "1st Floor", "stateCode": "29"},
		"shippingDetails": {"name": "Madhu B", "address": "1st Floor", "stateCode": "29"},
		"items": [{"description": "Shirt", "unitPrice": 538.1, "quantity": 1, "discount": 0}]
	}`

	var inv Invoice
	if err := json.Unmarshal([]byte(raw), &inv); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}

	if inv.InvoiceNo != "IN-761" {
		t.Errorf("InvoiceNo = %q; want IN-761", inv.InvoiceNo)
	}
	if len(inv.Items) != 1 {
		t.Fatalf("len(Items) = %d; want 1", len(inv.Items))
	}
	if !inv.Items[0].UnitPrice.Equal(decimal.RequireFromString("538.1")) {
		t.Errorf("UnitPrice = %s; want 538.1", inv.Items[0].UnitPrice)
	}
	if got := inv.SellerDetails.AddressLines(); len(got) != 2 || got[1] != "BENGALURU" {
		t.Errorf("AddressLines() = %v", got)
	}
	if inv.BankDetails != nil {
		t.Errorf("BankDetails = %+v; want nil", inv.BankDetails)
	}
}

func TestBankDetailsIsEmpty(t *testing.T) {
	tests := []struct {
		name string
		bank *BankDetails
		want bool
	}{
		{"nil", nil, true},
		{"blank fields", &BankDetails{BankName: "  "}, true},
		{"account set", &BankDetails{AccountNo: "1234"}, false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.bank.IsEmpty(); got != tt.want {
				t.Errorf("IsEmpty() = %v; want %v", got, tt.want)
			}
		})
	}
}

func TestRowGet(t *testing.T) {
	row := Row{Number: 2, Fields: map[string]string{"invoiceNo": "  IN-1 "}}
	if got := row.Get("invoiceNo"); got != "IN-1" {
		t.Errorf("Get(invoiceNo) = %q; want IN-1", got)
	}
	if got := row.Get("missing"); got != "" {
		t.Errorf("Get(missing) = %q; want empty", got)
	}
}
