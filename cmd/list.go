// =============================================================================
// Invoicer - List Command
// =============================================================================
//
// This file defines the 'list' command, which prints every stored invoice
// with its line item count and computed totals.
//
// COMMAND USAGE:
//   invoicer list [--json]
//
// =============================================================================

package cmd

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/invoicer/internal/billing"
)

// listJSON prints the invoices with their items as a JSON array.
var listJSON bool

// listCmd represents the 'list' command.
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored invoices with totals",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runList(cmd)
	},
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().BoolVar(
		&listJSON,
		"json",
		false,
		"Print invoices and their items as JSON",
	)
}

func runList(cmd *cobra.Command) error {
	invoices, err := dbStore.FetchAllInvoices(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to fetch invoices: %w", err)
	}

	out := cmd.OutOrStdout()

	if listJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(invoices)
	}

	if len(invoices) == 0 {
		fmt.Fprintln(out, "No invoices stored.")
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "ID\tINVOICE NO\tDATE\tBILLED TO\tITEMS\tTAX\tTOTAL\t")
	for _, inv := range invoices {
		s := billing.Compute(inv)
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\t%s\t%s\t\n",
			inv.ID,
			inv.InvoiceNo,
			inv.InvoiceDate,
			inv.BillingDetails.Name,
			len(inv.Items),
			billing.FormatAmount(s.TaxTotal),
			billing.FormatAmount(s.GrandTotal),
		)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(out, "\n%d invoice(s)\n", len(invoices))
	return nil
}
