// =============================================================================
// Invoicer - Show Command
// =============================================================================
//
// This file defines the 'show' command, which prints one stored invoice as
// a text preview of the printed tax invoice: parties, line table with the
// CGST/SGST or IGST rows, totals and the amount in words.
//
// COMMAND USAGE:
//   invoicer show <invoiceNo>
//
// =============================================================================

package cmd

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/invoicer/internal/billing"
	"github.com/ginjaninja78/invoicer/internal/store"
	"github.com/ginjaninja78/invoicer/internal/types"
)

// showCmd represents the 'show' command.
var showCmd = &cobra.Command{
	Use:   "show <invoiceNo>",
	Short: "Print an invoice with its tax breakdown and totals",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		inv, err := dbStore.GetInvoice(cmd.Context(), args[0])
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("invoice %q not found", args[0])
		}
		if err != nil {
			return fmt.Errorf("failed to load invoice %q: %w", args[0], err)
		}
		return renderInvoice(cmd.OutOrStdout(), inv)
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
}

// =============================================================================
// TEXT RENDERING
// =============================================================================

// renderInvoice writes the invoice preview to w.
func renderInvoice(w io.Writer, inv *types.Invoice) error {
	s := billing.Compute(inv)

	fmt.Fprintln(w, "Tax Invoice/Bill of Supply/Cash Memo")
	fmt.Fprintln(w, "(Original for Recipient)")
	fmt.Fprintln(w)

	writeParty(w, "Sold By", inv.SellerDetails)
	if inv.SellerDetails.PanNo != "" {
		fmt.Fprintf(w, "  PAN No: %s\n", inv.SellerDetails.PanNo)
	}
	if inv.SellerDetails.GstNo != "" {
		fmt.Fprintf(w, "  GST Registration No: %s\n", inv.SellerDetails.GstNo)
	}
	fmt.Fprintln(w)

	writeParty(w, "Billing Address", inv.BillingDetails)
	fmt.Fprintf(w, "  State/UT Code: %s\n\n", inv.BillingDetails.StateCode)
	writeParty(w, "Shipping Address", inv.ShippingDetails)
	fmt.Fprintf(w, "  State/UT Code: %s\n\n", inv.ShippingDetails.StateCode)

	fmt.Fprintf(w, "Place of supply:   %s\n", inv.PlaceOfSupply)
	fmt.Fprintf(w, "Place of delivery: %s\n\n", inv.PlaceOfDelivery)

	fmt.Fprintf(w, "Order Number:    %s\n", inv.OrderNo)
	fmt.Fprintf(w, "Order Date:      %s\n", displayDate(inv.OrderDate))
	fmt.Fprintf(w, "Invoice Number:  %s\n", inv.InvoiceNo)
	fmt.Fprintf(w, "Invoice Details: %s\n", inv.InvoiceDetails)
	fmt.Fprintf(w, "Invoice Date:    %s\n\n", displayDate(inv.InvoiceDate))

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Sl.\tDescription\tUnit Price\tQty\tNet Amount\tTax Rate\tTax Type\tTax Amount\tTotal Amount")
	for i, item := range inv.Items {
		lt := s.Lines[i]
		for j, c := range lt.Components {
			if j == 0 {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\t%s%%\t%s\t%s\t%s\n",
					i+1,
					item.Description,
					billing.FormatAmount(item.UnitPrice),
					item.Quantity,
					billing.FormatAmount(lt.Net),
					c.Rate.String(),
					c.Label,
					billing.FormatAmount(c.Amount),
					billing.FormatAmount(lt.Total),
				)
				continue
			}
			fmt.Fprintf(tw, "\t\t\t\t\t%s%%\t%s\t%s\t\n", c.Rate.String(), c.Label, billing.FormatAmount(c.Amount))
		}
	}
	fmt.Fprintf(tw, "TOTAL:\t\t\t\t%s\t\t\t%s\t%s\n",
		billing.FormatAmount(s.NetTotal),
		billing.FormatAmount(s.TaxTotal),
		billing.FormatAmount(s.GrandTotal),
	)
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(w, "\nAmount in Words:\n%s only\n\n", s.AmountInWords)

	if !inv.BankDetails.IsEmpty() {
		b := inv.BankDetails
		fmt.Fprintln(w, "Bank Details:")
		fmt.Fprintf(w, "  Bank Name:  %s\n", b.BankName)
		fmt.Fprintf(w, "  Account No: %s\n", b.AccountNo)
		fmt.Fprintf(w, "  IFSC Code:  %s\n", b.IfscCode)
		fmt.Fprintf(w, "  Branch:     %s\n\n", b.Branch)
	}

	fmt.Fprintf(w, "Whether tax is payable under reverse charge: %s\n", yesNo(inv.IsTaxPayableUnderReverseCharge))
	return nil
}

func writeParty(w io.Writer, title string, p types.Party) {
	fmt.Fprintf(w, "%s:\n", title)
	fmt.Fprintf(w, "  %s\n", p.Name)
	for _, line := range p.AddressLines() {
		fmt.Fprintf(w, "  %s\n", strings.TrimSpace(line))
	}
}

// displayDate prints ISO dates as DD.MM.YYYY and anything else unchanged.
func displayDate(s string) string {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return s
	}
	return t.Format("02.01.2006")
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
