// Package billing computes line amounts, GST and invoice totals.
//
// Every function here is pure; callers re-run Compute whenever the invoice
// changes.
package billing

import (
	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/invoicer/internal/types"
)

// Tax labels printed on the invoice.
const (
	LabelCGST = "CGST"
	LabelSGST = "SGST"
	LabelIGST = "IGST"
)

var (
	// TotalRate is the GST rate applied to every line: 18%. Intra-state
	// supplies print it as two 9% halves.
	TotalRate = decimal.NewFromInt(18)

	hundred = decimal.NewFromInt(100)
	two     = decimal.NewFromInt(2)
)

// TaxComponent is one printed tax row of a line (CGST, SGST or IGST).
type TaxComponent struct {
	Label  string
	Rate   decimal.Decimal // percent
	Amount decimal.Decimal
}

// LineTotals holds the computed amounts of a single line item.
type LineTotals struct {
	Net        decimal.Decimal
	Tax        decimal.Decimal
	Total      decimal.Decimal
	Components []TaxComponent
}

// Summary holds the computed amounts of a whole invoice.
type Summary struct {
	IntraState    bool
	Lines         []LineTotals
	NetTotal      decimal.Decimal
	TaxTotal      decimal.Decimal
	GrandTotal    decimal.Decimal
	AmountInWords string
}

// IsIntraState reports whether supply and delivery are in the same place.
// The comparison is exact and case-sensitive.
func IsIntraState(inv *types.Invoice) bool {
	return inv.PlaceOfSupply == inv.PlaceOfDelivery
}

// ComputeLine computes net, tax and total for one item.
//
//	net   = unitPrice * quantity - discount
//	tax   = net * 18%
//	total = net + tax
//
// The split only changes how tax is printed: intra-state shows CGST and SGST
// of tax/2 each, inter-state shows a single IGST row.
func ComputeLine(item types.LineItem, intraState bool) LineTotals {
	net := item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))).Sub(item.Discount)
	tax := net.Mul(TotalRate).Div(hundred)

	lt := LineTotals{
		Net:   net,
		Tax:   tax,
		Total: net.Add(tax),
	}

	if intraState {
		halfRate := TotalRate.Div(two)
		halfTax := tax.Div(two)
		lt.Components = []TaxComponent{
			{Label: LabelCGST, Rate: halfRate, Amount: halfTax},
			{Label: LabelSGST, Rate: halfRate, Amount: halfTax},
		}
	} else {
		lt.Components = []TaxComponent{
			{Label: LabelIGST, Rate: TotalRate, Amount: tax},
		}
	}

	return lt
}

// Compute computes every line and the invoice totals. AmountInWords spells
// the floor of the grand total; fractional currency is not spelled.
func Compute(inv *types.Invoice) Summary {
	s := Summary{
		IntraState: IsIntraState(inv),
		Lines:      make([]LineTotals, 0, len(inv.Items)),
		NetTotal:   decimal.Zero,
		TaxTotal:   decimal.Zero,
		GrandTotal: decimal.Zero,
	}

	for _, item := range inv.Items {
		lt := ComputeLine(item, s.IntraState)
		s.Lines = append(s.Lines, lt)
		s.NetTotal = s.NetTotal.Add(lt.Net)
		s.TaxTotal = s.TaxTotal.Add(lt.Tax)
		s.GrandTotal = s.GrandTotal.Add(lt.Total)
	}

	s.AmountInWords = NumberToWords(s.GrandTotal.Floor().IntPart())
	return s
}

// FormatAmount renders money with two decimals, as printed on the invoice.
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}
