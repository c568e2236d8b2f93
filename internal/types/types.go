// =============================================================================
// Invoicer - Shared Types
// =============================================================================
//
// This package contains the data model shared by every other package. Types
// are kept here to avoid import cycles between:
//   - store
//   - importer
//   - billing
//   - xmlwriter
//
// The JSON field names are the document shape accepted by the JSON importer
// and printed by the `sample` command.
//
// =============================================================================

package types

import (
	"strings"

	"github.com/shopspring/decimal"
)

// =============================================================================
// INVOICE TYPES
// =============================================================================

// Invoice is a single invoice together with its line items.
//
// The store persists the invoice and its items as separate records; Items is
// populated on read by joining through the item foreign key.
type Invoice struct {
	// ID is assigned by the store. Zero for records that were never saved.
	ID int64 `json:"id,omitempty"`

	// InvoiceNo is the business key. It is unique across the store.
	InvoiceNo string `json:"invoiceNo" validate:"required"`

	InvoiceDetails string `json:"invoiceDetails,omitempty"`
	InvoiceDate    string `json:"invoiceDate,omitempty"`
	OrderNo        string `json:"orderNo,omitempty"`
	OrderDate      string `json:"orderDate,omitempty"`

	SellerDetails   Party `json:"sellerDetails"`
	BillingDetails  Party `json:"billingDetails"`
	ShippingDetails Party `json:"shippingDetails"`

	// PlaceOfSupply and PlaceOfDelivery decide the tax split. They are
	// compared case-sensitively.
	PlaceOfSupply   string `json:"placeOfSupply,omitempty"`
	PlaceOfDelivery string `json:"placeOfDelivery,omitempty"`

	IsTaxPayableUnderReverseCharge bool `json:"isTaxPayableUnderReverseCharge"`

	BankDetails *BankDetails `json:"bankDetails,omitempty"`

	Items []LineItem `json:"items" validate:"dive"`
}

// LineItem is one billed line of an invoice.
type LineItem struct {
	// ID is assigned by the store.
	ID int64 `json:"id,omitempty"`

	// InvoiceID is the foreign key to the owning invoice.
	InvoiceID int64 `json:"invoiceId,omitempty"`

	Description string `json:"description"`

	// UnitPrice is the price of a single unit.
	UnitPrice decimal.Decimal `json:"unitPrice" validate:"gte=0"`

	// Quantity is the number of units.
	Quantity int `json:"quantity" validate:"gte=1"`

	// Discount is an absolute amount taken off the line, not a percentage.
	Discount decimal.Decimal `json:"discount" validate:"gte=0"`
}

// Party is a seller, billing or shipping party.
type Party struct {
	Name string `json:"name"`

	// Address may span several lines separated by "\n".
	Address string `json:"address"`

	PanNo     string `json:"panNo,omitempty"`
	GstNo     string `json:"gstNo,omitempty"`
	StateCode string `json:"stateCode,omitempty"`
}

// BankDetails holds the payee account printed on the invoice.
type BankDetails struct {
	BankName  string `json:"bankName"`
	AccountNo string `json:"accountNo"`
	IfscCode  string `json:"ifscCode"`
	Branch    string `json:"branch"`
}

// IsEmpty reports whether no bank field is set.
func (b *BankDetails) IsEmpty() bool {
	if b == nil {
		return true
	}
	return strings.TrimSpace(b.BankName) == "" &&
		strings.TrimSpace(b.AccountNo) == "" &&
		strings.TrimSpace(b.IfscCode) == "" &&
		strings.TrimSpace(b.Branch) == ""
}

// AddressLines splits a multi-line address.
func (p Party) AddressLines() []string {
	if p.Address == "" {
		return nil
	}
	return strings.Split(p.Address, "\n")
}

// =============================================================================
// TABULAR INPUT TYPES
// =============================================================================

// Table is a parsed tabular input (spreadsheet sheet or CSV export).
// Both the xlsxparser and the csvparser produce this type.
type Table struct {
	// Source names where the table came from (sheet name or file name).
	Source string

	// Headers contains the column headers in sheet order.
	Headers []string

	// Rows contains the non-empty data rows.
	Rows []Row
}

// Row is a single data row keyed by column header.
type Row struct {
	// Number is the 1-based row number in the source, for error reporting.
	Number int

	// Fields maps header -> trimmed cell value.
	Fields map[string]string
}

// Get returns the trimmed value of a column, or "" when the column is absent.
func (r Row) Get(header string) string {
	return strings.TrimSpace(r.Fields[header])
}
