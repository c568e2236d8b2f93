package importer

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/invoicer/internal/types"
)

// Column headers of the tabular import layout. Each row is one invoice with
// exactly one line item.
const (
	ColInvoiceNo         = "invoiceNo"
	ColInvoiceDetails    = "invoiceDetails"
	ColInvoiceDate       = "invoiceDate"
	ColOrderNo           = "orderNo"
	ColOrderDate         = "orderDate"
	ColSellerName        = "sellerName"
	ColSellerAddress     = "sellerAddress"
	ColSellerPanNo       = "sellerPanNo"
	ColSellerGstNo       = "sellerGstNo"
	ColBillingName       = "billingName"
	ColBillingAddress    = "billingAddress"
	ColBillingStateCode  = "billingStateCode"
	ColShippingName      = "shippingName"
	ColShippingAddress   = "shippingAddress"
	ColShippingStateCode = "shippingStateCode"
	ColPlaceOfSupply     = "placeOfSupply"
	ColPlaceOfDelivery   = "placeOfDelivery"
	ColItemDescription   = "itemDescription"
	ColItemUnitPrice     = "itemUnitPrice"
	ColItemQuantity      = "itemQuantity"
	ColItemDiscount      = "itemDiscount"
	ColBankName          = "bankName"
	ColAccountNo         = "accountNo"
	ColIfscCode          = "ifscCode"
	ColBranch            = "branch"
)

// Columns lists the tabular layout in template order.
var Columns = []string{
	ColInvoiceNo, ColInvoiceDetails, ColInvoiceDate, ColOrderNo, ColOrderDate,
	ColSellerName, ColSellerAddress, ColSellerPanNo, ColSellerGstNo,
	ColBillingName, ColBillingAddress, ColBillingStateCode,
	ColShippingName, ColShippingAddress, ColShippingStateCode,
	ColPlaceOfSupply, ColPlaceOfDelivery,
	ColItemDescription, ColItemUnitPrice, ColItemQuantity, ColItemDiscount,
	ColBankName, ColAccountNo, ColIfscCode, ColBranch,
}

// normalizeTable maps rows to invoice candidates. Rows without an invoice
// number are returned in skipped, by row number, and produce no candidate.
func normalizeTable(table *types.Table) (candidates []types.Invoice, skipped []int, err error) {
	for _, row := range table.Rows {
		if row.Get(ColInvoiceNo) == "" {
			skipped = append(skipped, row.Number)
			continue
		}

		inv, err := normalizeRow(row)
		if err != nil {
			return nil, nil, fmt.Errorf("%s row %d: %w", table.Source, row.Number, err)
		}
		candidates = append(candidates, inv)
	}
	return candidates, skipped, nil
}

func normalizeRow(row types.Row) (types.Invoice, error) {
	price, err := parseAmount(row.Get(ColItemUnitPrice))
	if err != nil {
		return types.Invoice{}, fmt.Errorf("%s: %w", ColItemUnitPrice, err)
	}
	discount, err := parseAmount(row.Get(ColItemDiscount))
	if err != nil {
		return types.Invoice{}, fmt.Errorf("%s: %w", ColItemDiscount, err)
	}
	quantity, err := parseQuantity(row.Get(ColItemQuantity))
	if err != nil {
		return types.Invoice{}, fmt.Errorf("%s: %w", ColItemQuantity, err)
	}

	inv := types.Invoice{
		InvoiceNo:      row.Get(ColInvoiceNo),
		InvoiceDetails: row.Get(ColInvoiceDetails),
		InvoiceDate:    row.Get(ColInvoiceDate),
		OrderNo:        row.Get(ColOrderNo),
		OrderDate:      row.Get(ColOrderDate),
		SellerDetails: types.Party{
			Name:    row.Get(ColSellerName),
			Address: row.Get(ColSellerAddress),
			PanNo:   row.Get(ColSellerPanNo),
			GstNo:   row.Get(ColSellerGstNo),
		},
		BillingDetails: types.Party{
			Name:      row.Get(ColBillingName),
			Address:   row.Get(ColBillingAddress),
			StateCode: row.Get(ColBillingStateCode),
		},
		ShippingDetails: types.Party{
			Name:      row.Get(ColShippingName),
			Address:   row.Get(ColShippingAddress),
			StateCode: row.Get(ColShippingStateCode),
		},
		PlaceOfSupply:   row.Get(ColPlaceOfSupply),
		PlaceOfDelivery: row.Get(ColPlaceOfDelivery),
		Items: []types.LineItem{{
			Description: row.Get(ColItemDescription),
			UnitPrice:   price,
			Quantity:    quantity,
			Discount:    discount,
		}},
	}

	bank := &types.BankDetails{
		BankName:  row.Get(ColBankName),
		AccountNo: row.Get(ColAccountNo),
		IfscCode:  row.Get(ColIfscCode),
		Branch:    row.Get(ColBranch),
	}
	if !bank.IsEmpty() {
		inv.BankDetails = bank
	}

	return inv, nil
}

// parseAmount reads a money cell. Empty is zero; thousands separators are
// accepted.
func parseAmount(s string) (decimal.Decimal, error) {
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%q is not a number", s)
	}
	return d, nil
}

// parseQuantity reads a quantity cell. Empty is one; "2.0" is accepted,
// "2.5" is not.
func parseQuantity(s string) (int, error) {
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return 1, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("%q is not a number", s)
	}
	if !d.Equal(d.Truncate(0)) {
		return 0, fmt.Errorf("%q is not a whole number", s)
	}
	return int(d.IntPart()), nil
}

// TableRow lays out one line item of inv in Columns order. A tabular import
// reads each row as its own invoice, so a template holds one row per invoice.
func TableRow(inv *types.Invoice, item types.LineItem) []string {
	bank := inv.BankDetails
	if bank == nil {
		bank = &types.BankDetails{}
	}

	return []string{
		inv.InvoiceNo, inv.InvoiceDetails, inv.InvoiceDate, inv.OrderNo, inv.OrderDate,
		inv.SellerDetails.Name, inv.SellerDetails.Address, inv.SellerDetails.PanNo, inv.SellerDetails.GstNo,
		inv.BillingDetails.Name, inv.BillingDetails.Address, inv.BillingDetails.StateCode,
		inv.ShippingDetails.Name, inv.ShippingDetails.Address, inv.ShippingDetails.StateCode,
		inv.PlaceOfSupply, inv.PlaceOfDelivery,
		item.Description, item.UnitPrice.String(), fmt.Sprint(item.Quantity), item.Discount.String(),
		bank.BankName, bank.AccountNo, bank.IfscCode, bank.Branch,
	}
}
