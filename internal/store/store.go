// Package store defines the invoice record store.
//
// The store holds two collections: invoices, keyed by a store-assigned id
// and uniquely indexed by invoice number, and line items, each referencing
// its invoice by foreign key.
package store

import (
	"context"
	"errors"

	"github.com/ginjaninja78/invoicer/internal/types"
)

var (
	// ErrNotFound is returned when no invoice has the requested number.
	ErrNotFound = errors.New("invoice not found")

	// ErrInvalidInvoice wraps validation failures rejected before any write.
	ErrInvalidInvoice = errors.New("invalid invoice")
)

// Store is the persistence contract used by the CLI and the importer.
type Store interface {
	// Lifecycle
	Close() error

	Reader
	Writer
}

// Reader defines read-side operations.
type Reader interface {
	// FetchAllInvoices returns every invoice in id order, each with its
	// line items attached.
	FetchAllInvoices(ctx context.Context) ([]*types.Invoice, error)

	// GetInvoice returns one invoice with its items, or ErrNotFound.
	GetInvoice(ctx context.Context, invoiceNo string) (*types.Invoice, error)

	// ExistsByInvoiceNo is a point lookup on the unique invoice number index.
	ExistsByInvoiceNo(ctx context.Context, invoiceNo string) (bool, error)
}

// Writer defines write-side operations.
type Writer interface {
	// UpsertInvoice inserts the invoice, or overwrites the existing record
	// with the same invoice number keeping its id, then replaces all of its
	// line items. The invoice row and items are written atomically.
	UpsertInvoice(ctx context.Context, inv *types.Invoice) (int64, error)

	// InsertInvoiceIfAbsent inserts the invoice and its items unless an
	// invoice with the same number exists. inserted is false on collision;
	// the existing record is left untouched.
	InsertInvoiceIfAbsent(ctx context.Context, inv *types.Invoice) (id int64, inserted bool, err error)
}
