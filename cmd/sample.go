// =============================================================================
// Invoicer - Sample Command
// =============================================================================
//
// This file defines the 'sample' command, which prints a filled-in invoice
// as JSON. The output is a valid input for 'save', and wrapped in an array
// for 'import'. With --xlsx it also writes an import workbook in the tabular
// column layout.
//
// COMMAND USAGE:
//   invoicer sample [--array] [--xlsx template.xlsx]
//
// =============================================================================

package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/ginjaninja78/invoicer/internal/importer"
	"github.com/ginjaninja78/invoicer/internal/types"
	"github.com/ginjaninja78/invoicer/internal/xlsxparser"
)

var (
	sampleArray bool
	sampleXLSX  string
)

// sampleCmd represents the 'sample' command.
var sampleCmd = &cobra.Command{
	Use:   "sample",
	Short: "Print a sample invoice as JSON",
	Args:  cobra.NoArgs,

	Annotations: map[string]string{skipSetupAnnotation: "true"},

	RunE: func(cmd *cobra.Command, args []string) error {
		inv := sampleInvoice()

		if sampleXLSX != "" {
			if err := writeTemplate(sampleXLSX, inv); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Wrote import template %s\n", sampleXLSX)
		}

		var doc any = inv
		if sampleArray {
			doc = []*types.Invoice{inv}
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	},
}

func init() {
	rootCmd.AddCommand(sampleCmd)

	sampleCmd.Flags().BoolVar(
		&sampleArray,
		"array",
		false,
		"Wrap the invoice in an array, the shape 'import' reads",
	)

	sampleCmd.Flags().StringVar(
		&sampleXLSX,
		"xlsx",
		"",
		"Also write an XLSX import template to this path",
	)
}

// sampleInvoice returns an intra-state invoice with two items and no bank
// details.
func sampleInvoice() *types.Invoice {
	buyerAddress := strings.Join([]string{
		"Eurofins IT Solutions India Pvt Ltd., 1st Floor,",
		"Maruti Platinum, Lakshminarayana Pura, AECS",
		"Layou",
		"BENGALURU, KARNATAKA, 560037",
		"IN",
	}, "\n")

	buyer := types.Party{
		Name:      "Madhu B",
		Address:   buyerAddress,
		StateCode: "29",
	}

	shirt := func(desc string) types.LineItem {
		return types.LineItem{
			Description: desc,
			UnitPrice:   decimal.RequireFromString("538.1"),
			Quantity:    1,
			Discount:    decimal.Zero,
		}
	}

	return &types.Invoice{
		InvoiceNo:      "IN-761",
		InvoiceDetails: "KA-310565025-1920",
		InvoiceDate:    "2023-10-28",
		OrderNo:        "403-3225714-7676307",
		OrderDate:      "2023-10-28",
		SellerDetails: types.Party{
			Name:    "Varasiddhi Silk Exports",
			Address: "75, 3rd Cross, Lalbagh Road\nBENGALURU, KARNATAKA, 560027\nIN",
			PanNo:   "AACFV3325K",
			GstNo:   "29AACFV3325K1ZY",
		},
		BillingDetails:  buyer,
		ShippingDetails: buyer,
		PlaceOfSupply:   "KARNATAKA",
		PlaceOfDelivery: "KARNATAKA",
		Items: []types.LineItem{
			shirt("Varasiddhi Silks Men's Formal Shirt (SH-05-42, Navy Blue, 42) | B07KGF3KW8 ( SH-05--42 )"),
			shirt("Varasiddhi Silks Men's Formal Shirt (SH-05-40, Navy Blue, 40) | B07KGCS2X7 ( SH-05--40 )"),
		},
	}
}

// writeTemplate writes inv's first item as the single data row of an
// import workbook.
func writeTemplate(path string, inv *types.Invoice) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create template: %w", err)
	}
	defer f.Close()

	rows := [][]string{importer.TableRow(inv, inv.Items[0])}
	if err := xlsxparser.Write(f, "Invoices", importer.Columns, rows); err != nil {
		return err
	}
	return f.Sync()
}
