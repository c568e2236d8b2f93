// =============================================================================
// Invoicer - XML Writer Module
// =============================================================================
//
// This module renders stored invoices, with their computed taxes and totals,
// as an XML document. It is the machine-readable counterpart of the printed
// invoice.
//
// XML STRUCTURE:
//
//   <invoices count="2">                       <!-- Root element -->
//     <invoice n="1" id="7" invoiceNo="IN-761"> <!-- Invoice with index -->
//       <invoiceDate>28.10.2019</invoiceDate>
//       <seller>...</seller>
//       <items>
//         <item n="1">                          <!-- Global item numbering -->
//           <unitPrice>538.10</unitPrice>
//           <tax label="CGST" rate="9">48.43</tax>
//           <tax label="SGST" rate="9">48.43</tax>
//           <totalAmount>634.96</totalAmount>
//         </item>
//       </items>
//       <totals>...</totals>
//     </invoice>
//   </invoices>
//
// Money is written with two decimals. Item numbering continues across
// invoices, so every <item n> in a document is unique.
//
// =============================================================================

package xmlwriter

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"time"

	"github.com/ginjaninja78/invoicer/internal/billing"
	"github.com/ginjaninja78/invoicer/internal/types"
)

// =============================================================================
// XML GENERATION OPTIONS
// =============================================================================

// GenerateOptions contains options for XML generation.
type GenerateOptions struct {
	// Indent is the string used for indentation.
	// Default: "  " (two spaces)
	Indent string

	// IncludeXMLDeclaration determines whether to include the XML declaration.
	// Default: true
	IncludeXMLDeclaration bool

	// GeneratedAt is written as the root "generated" attribute when set.
	GeneratedAt time.Time

	// LineItemNumberingGlobal numbers items 1, 2, 3... across all invoices.
	// If false, numbering restarts for each invoice.
	// Default: true
	LineItemNumberingGlobal bool
}

// DefaultGenerateOptions returns the default generation options.
func DefaultGenerateOptions() GenerateOptions {
	return GenerateOptions{
		Indent:                  "  ",
		IncludeXMLDeclaration:   true,
		LineItemNumberingGlobal: true,
	}
}

// =============================================================================
// DOCUMENT ELEMENTS
// =============================================================================

type document struct {
	XMLName   xml.Name     `xml:"invoices"`
	Count     int          `xml:"count,attr"`
	Generated string       `xml:"generated,attr,omitempty"`
	Invoices  []invoiceXML `xml:"invoice"`
}

type invoiceXML struct {
	N              int       `xml:"n,attr"`
	ID             int64     `xml:"id,attr,omitempty"`
	InvoiceNo      string    `xml:"invoiceNo,attr"`
	InvoiceDetails string    `xml:"invoiceDetails,omitempty"`
	InvoiceDate    string    `xml:"invoiceDate"`
	OrderNo        string    `xml:"orderNo"`
	OrderDate      string    `xml:"orderDate"`
	Seller         partyXML  `xml:"seller"`
	Billing        partyXML  `xml:"billing"`
	Shipping       partyXML  `xml:"shipping"`
	PlaceOfSupply  string    `xml:"placeOfSupply"`
	PlaceOfDeliv   string    `xml:"placeOfDelivery"`
	ReverseCharge  string    `xml:"reverseCharge"`
	TaxType        string    `xml:"taxType"`
	Items          []itemXML `xml:"items>item"`
	Totals         totalsXML `xml:"totals"`
	Bank           *bankXML  `xml:"bank,omitempty"`
}

type partyXML struct {
	Name      string   `xml:"name"`
	Address   []string `xml:"address>line"`
	PanNo     string   `xml:"panNo,omitempty"`
	GstNo     string   `xml:"gstNo,omitempty"`
	StateCode string   `xml:"stateCode,omitempty"`
}

type itemXML struct {
	N           int      `xml:"n,attr"`
	Description string   `xml:"description"`
	UnitPrice   string   `xml:"unitPrice"`
	Quantity    int      `xml:"quantity"`
	Discount    string   `xml:"discount"`
	NetAmount   string   `xml:"netAmount"`
	Taxes       []taxXML `xml:"tax"`
	TotalAmount string   `xml:"totalAmount"`
}

type taxXML struct {
	Label  string `xml:"label,attr"`
	Rate   string `xml:"rate,attr"`
	Amount string `xml:",chardata"`
}

type totalsXML struct {
	Net           string `xml:"net"`
	Tax           string `xml:"tax"`
	Grand         string `xml:"grand"`
	AmountInWords string `xml:"amountInWords"`
}

type bankXML struct {
	BankName  string `xml:"bankName"`
	AccountNo string `xml:"accountNo"`
	IfscCode  string `xml:"ifscCode"`
	Branch    string `xml:"branch"`
}

// =============================================================================
// XML GENERATION FUNCTIONS
// =============================================================================

// Generate renders invoices with the default options.
func Generate(invoices []*types.Invoice) ([]byte, error) {
	return GenerateWithOptions(invoices, DefaultGenerateOptions())
}

// GenerateWithOptions renders invoices as an XML document.
//
// PARAMETERS:
//   - invoices: The invoices to render, in document order.
//   - options: Formatting options.
//
// RETURNS:
//   - The XML document as a byte slice.
//   - An error if marshaling fails.
func GenerateWithOptions(invoices []*types.Invoice, options GenerateOptions) ([]byte, error) {
	doc := buildDocument(invoices, options)

	var buf bytes.Buffer
	if options.IncludeXMLDeclaration {
		buf.WriteString(xml.Header)
	}

	enc := xml.NewEncoder(&buf)
	enc.Indent("", options.Indent)
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("failed to marshal XML: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to flush XML: %w", err)
	}
	buf.WriteByte('\n')

	return buf.Bytes(), nil
}

// buildDocument converts invoices to document elements.
func buildDocument(invoices []*types.Invoice, options GenerateOptions) *document {
	doc := &document{
		Count:    len(invoices),
		Invoices: make([]invoiceXML, 0, len(invoices)),
	}
	if !options.GeneratedAt.IsZero() {
		doc.Generated = options.GeneratedAt.Format(time.RFC3339)
	}

	itemIndex := 0
	for i, inv := range invoices {
		if !options.LineItemNumberingGlobal {
			itemIndex = 0
		}
		doc.Invoices = append(doc.Invoices, buildInvoiceElement(inv, i+1, &itemIndex))
	}

	return doc
}

// buildInvoiceElement renders one invoice. itemIndex is the running item
// number and is advanced past this invoice's items.
func buildInvoiceElement(inv *types.Invoice, n int, itemIndex *int) invoiceXML {
	summary := billing.Compute(inv)

	el := invoiceXML{
		N:              n,
		ID:             inv.ID,
		InvoiceNo:      inv.InvoiceNo,
		InvoiceDetails: inv.InvoiceDetails,
		InvoiceDate:    inv.InvoiceDate,
		OrderNo:        inv.OrderNo,
		OrderDate:      inv.OrderDate,
		Seller:         buildParty(inv.SellerDetails),
		Billing:        buildParty(inv.BillingDetails),
		Shipping:       buildParty(inv.ShippingDetails),
		PlaceOfSupply:  inv.PlaceOfSupply,
		PlaceOfDeliv:   inv.PlaceOfDelivery,
		ReverseCharge:  yesNo(inv.IsTaxPayableUnderReverseCharge),
		TaxType:        taxType(summary.IntraState),
		Totals: totalsXML{
			Net:           billing.FormatAmount(summary.NetTotal),
			Tax:           billing.FormatAmount(summary.TaxTotal),
			Grand:         billing.FormatAmount(summary.GrandTotal),
			AmountInWords: summary.AmountInWords,
		},
	}

	for i, item := range inv.Items {
		*itemIndex++
		lt := summary.Lines[i]

		itemEl := itemXML{
			N:           *itemIndex,
			Description: item.Description,
			UnitPrice:   billing.FormatAmount(item.UnitPrice),
			Quantity:    item.Quantity,
			Discount:    billing.FormatAmount(item.Discount),
			NetAmount:   billing.FormatAmount(lt.Net),
			TotalAmount: billing.FormatAmount(lt.Total),
		}
		for _, c := range lt.Components {
			itemEl.Taxes = append(itemEl.Taxes, taxXML{
				Label:  c.Label,
				Rate:   c.Rate.String(),
				Amount: billing.FormatAmount(c.Amount),
			})
		}
		el.Items = append(el.Items, itemEl)
	}

	if !inv.BankDetails.IsEmpty() {
		el.Bank = &bankXML{
			BankName:  inv.BankDetails.BankName,
			AccountNo: inv.BankDetails.AccountNo,
			IfscCode:  inv.BankDetails.IfscCode,
			Branch:    inv.BankDetails.Branch,
		}
	}

	return el
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

func buildParty(p types.Party) partyXML {
	return partyXML{
		Name:      p.Name,
		Address:   p.AddressLines(),
		PanNo:     p.PanNo,
		GstNo:     p.GstNo,
		StateCode: p.StateCode,
	}
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

func taxType(intraState bool) string {
	if intraState {
		return billing.LabelCGST + "+" + billing.LabelSGST
	}
	return billing.LabelIGST
}
