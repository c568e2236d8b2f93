package validation

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/invoicer/internal/types"
)

func validInvoice() *types.Invoice {
	return &types.Invoice{
		InvoiceNo: "IN-1",
		Items: []types.LineItem{
			{Description: "Shirt", UnitPrice: decimal.NewFromFloat(538.1), Quantity: 1},
		},
	}
}

func TestValidateInvoice_Valid(t *testing.T) {
	if err := ValidateInvoice(validInvoice()); err != nil {
		t.Fatalf("ValidateInvoice() error: %v", err)
	}
}

func TestValidateInvoice_Failures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(inv *types.Invoice)
		field  string
		rule   string
	}{
		{"missing invoiceNo", func(inv *types.Invoice) { inv.InvoiceNo = "" }, "invoiceNo", "required"},
		{"zero quantity", func(inv *types.Invoice) { inv.Items[0].Quantity = 0 }, "items[0].quantity", "gte"},
		{"negative price", func(inv *types.Invoice) { inv.Items[0].UnitPrice = decimal.NewFromInt(-1) }, "items[0].unitPrice", "gte"},
		{"negative discount", func(inv *types.Invoice) { inv.Items[0].Discount = decimal.NewFromFloat(-0.5) }, "items[0].discount", "gte"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			inv := validInvoice()
			tt.mutate(inv)

			err := ValidateInvoice(inv)
			if err == nil {
				t.Fatal("ValidateInvoice() returned nil; want error")
			}

			fields := Fields(err)
			if fields[tt.field] != tt.rule {
				t.Errorf("Fields() = %v; want %s -> %s", fields, tt.field, tt.rule)
			}
		})
	}
}

func TestValidateInvoice_NoItemsIsAllowed(t *testing.T) {
	inv := validInvoice()
	inv.Items = nil
	if err := ValidateInvoice(inv); err != nil {
		t.Errorf("ValidateInvoice() error: %v; an invoice without items is accepted by the store", err)
	}
}

func TestFormatErrors(t *testing.T) {
	if got := FormatErrors(nil); got != "no validation errors" {
		t.Errorf("FormatErrors(nil) = %q", got)
	}

	errs := []*ValidationError{
		{InvoiceNo: "IN-1", Field: "items[0].quantity", Rule: "gte", Param: "1", Value: "0"},
	}
	got := FormatErrors(errs)
	if !strings.Contains(got, "1 validation error(s)") || !strings.Contains(got, "gte=1") {
		t.Errorf("FormatErrors() = %q", got)
	}
}
