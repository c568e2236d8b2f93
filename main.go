// =============================================================================
// Invoicer - Main Entry Point
// =============================================================================
//
// This is the main entry point for the Invoicer CLI application. It delegates
// command execution to the cmd package.
//
// USAGE:
//   invoicer import [files...]  - Bulk-import invoices, skipping duplicates
//   invoicer save <file.json>   - Save one invoice, overwriting by number
//   invoicer list               - List stored invoices with totals
//   invoicer show <invoiceNo>   - Print one invoice with its tax breakdown
//   invoicer export             - Export stored invoices as XML
//   invoicer sample             - Print a sample invoice
//   invoicer version            - Display the application version
//
// ARCHITECTURE:
//   - cmd/           : CLI command definitions (Cobra)
//   - internal/      : Core business logic (not for external import)
//   - pkg/           : Shared file utilities
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/invoicer/cmd"
)

func main() {
	cmd.Execute()
}
