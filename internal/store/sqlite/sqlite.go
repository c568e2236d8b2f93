// Package sqlite provides the SQLite implementation of store.Store.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	sqlite3 "github.com/mattn/go-sqlite3"

	"github.com/ginjaninja78/invoicer/internal/store"
	"github.com/ginjaninja78/invoicer/internal/types"
	"github.com/ginjaninja78/invoicer/internal/validation"
)

// SchemaVersion is recorded in the meta table of every database.
const SchemaVersion = 1

// Config holds configuration for the SQLite store.
type Config struct {
	// Path to the SQLite database file.
	DBPath string

	// WAL enables WAL mode so readers in other processes do not block.
	WAL bool

	// BusyTimeoutMS is how long a write waits on a lock held by another
	// process before failing. Zero uses the driver default.
	BusyTimeoutMS int
}

// SQLiteStore is the SQLite implementation of store.Store.
type SQLiteStore struct {
	db   *sql.DB
	path string
	cfg  Config
}

var _ store.Store = (*SQLiteStore)(nil)

// New opens (creating if needed) the database and initializes the schema.
func New(cfg Config) (*SQLiteStore, error) {
	if cfg.DBPath == "" {
		return nil, fmt.Errorf("database path is empty")
	}

	// Ensure directory exists
	dir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	// Build DSN
	dsn := cfg.DBPath + "?_foreign_keys=on"
	if cfg.WAL {
		dsn += "&_journal_mode=WAL"
	}
	if cfg.BusyTimeoutMS > 0 {
		dsn += fmt.Sprintf("&_busy_timeout=%d", cfg.BusyTimeoutMS)
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// One connection: every operation, including the concurrent per-record
	// imports, is serialized on it.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	s := &SQLiteStore{
		db:   db,
		path: cfg.DBPath,
		cfg:  cfg,
	}

	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return s, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *SQLiteStore) Path() string {
	return s.path
}

// ────────────────────────────────────────────────────────────────────────────────
// Schema Initialization
// ────────────────────────────────────────────────────────────────────────────────

func (s *SQLiteStore) initSchema() error {
	schema := `
-- Meta table for store metadata
CREATE TABLE IF NOT EXISTS meta (
	key   TEXT PRIMARY KEY,
	value TEXT
);

-- Invoices; party and bank value objects are JSON
CREATE TABLE IF NOT EXISTS invoices (
	id                INTEGER PRIMARY KEY AUTOINCREMENT,
	invoice_no        TEXT NOT NULL,
	invoice_details   TEXT NOT NULL DEFAULT '',
	invoice_date      TEXT NOT NULL DEFAULT '',
	order_no          TEXT NOT NULL DEFAULT '',
	order_date        TEXT NOT NULL DEFAULT '',
	seller            TEXT NOT NULL,
	billing           TEXT NOT NULL,
	shipping          TEXT NOT NULL,
	place_of_supply   TEXT NOT NULL DEFAULT '',
	place_of_delivery TEXT NOT NULL DEFAULT '',
	reverse_charge    INTEGER NOT NULL DEFAULT 0,
	bank              TEXT
);

-- Line items; money is stored as decimal text
CREATE TABLE IF NOT EXISTS invoice_items (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	invoice_id  INTEGER NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	unit_price  TEXT NOT NULL,
	quantity    INTEGER NOT NULL,
	discount    TEXT NOT NULL,
	FOREIGN KEY (invoice_id) REFERENCES invoices(id)
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_invoices_invoice_no ON invoices(invoice_no);
CREATE INDEX IF NOT EXISTS idx_invoice_items_invoice_id ON invoice_items(invoice_id);
`

	_, err := s.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("execute schema: %w", err)
	}

	// Set schema version
	_, err = s.db.Exec(`INSERT OR REPLACE INTO meta (key, value) VALUES (?, ?)`,
		"schema_version", fmt.Sprintf("%d", SchemaVersion))
	return err
}

// ────────────────────────────────────────────────────────────────────────────────
// Write Operations
// ────────────────────────────────────────────────────────────────────────────────

// UpsertInvoice inserts or overwrites the invoice keyed by invoice number and
// replaces its items. On success inv.ID and the item ids are set.
func (s *SQLiteStore) UpsertInvoice(ctx context.Context, inv *types.Invoice) (int64, error) {
	if err := validate(inv); err != nil {
		return 0, err
	}

	row, err := encodeInvoice(inv)
	if err != nil {
		return 0, err
	}

	var (
		id      int64
		itemIDs []int64
	)

	err = s.withTx(ctx, func(tx *sql.Tx) error {
		existing, found, err := lookupID(ctx, tx, inv.InvoiceNo)
		if err != nil {
			return err
		}

		if found {
			id = existing
			if err := updateInvoice(ctx, tx, id, row); err != nil {
				return err
			}
		} else {
			id, err = insertInvoice(ctx, tx, row)
			if err != nil {
				return err
			}
		}

		// Replace items wholesale
		if _, err := tx.ExecContext(ctx, `DELETE FROM invoice_items WHERE invoice_id = ?`, id); err != nil {
			return fmt.Errorf("delete items of invoice %q: %w", inv.InvoiceNo, err)
		}

		itemIDs, err = insertItems(ctx, tx, id, inv.Items)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("upsert invoice %q: %w", inv.InvoiceNo, err)
	}

	stampIDs(inv, id, itemIDs)
	return id, nil
}

// InsertInvoiceIfAbsent inserts the invoice and its items unless the invoice
// number is taken. A unique-index violation is reported as a collision, not
// an error.
func (s *SQLiteStore) InsertInvoiceIfAbsent(ctx context.Context, inv *types.Invoice) (int64, bool, error) {
	if err := validate(inv); err != nil {
		return 0, false, err
	}

	row, err := encodeInvoice(inv)
	if err != nil {
		return 0, false, err
	}

	var (
		id       int64
		itemIDs  []int64
		inserted bool
	)

	err = s.withTx(ctx, func(tx *sql.Tx) error {
		_, found, err := lookupID(ctx, tx, inv.InvoiceNo)
		if err != nil {
			return err
		}
		if found {
			return nil
		}

		id, err = insertInvoice(ctx, tx, row)
		if err != nil {
			if isUniqueViolation(err) {
				return nil
			}
			return err
		}

		itemIDs, err = insertItems(ctx, tx, id, inv.Items)
		if err != nil {
			return err
		}

		inserted = true
		return nil
	})
	if err != nil {
		return 0, false, fmt.Errorf("insert invoice %q: %w", inv.InvoiceNo, err)
	}
	if !inserted {
		return 0, false, nil
	}

	stampIDs(inv, id, itemIDs)
	return id, true, nil
}

// ────────────────────────────────────────────────────────────────────────────────
// Read Operations
// ────────────────────────────────────────────────────────────────────────────────

// FetchAllInvoices returns every invoice in id order with items attached.
func (s *SQLiteStore) FetchAllInvoices(ctx context.Context) ([]*types.Invoice, error) {
	var invoices []*types.Invoice

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx, `SELECT `+invoiceColumns+` FROM invoices ORDER BY id`)
		if err != nil {
			return fmt.Errorf("query invoices: %w", err)
		}

		for rows.Next() {
			inv, err := scanInvoice(rows)
			if err != nil {
				rows.Close()
				return err
			}
			invoices = append(invoices, inv)
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return fmt.Errorf("iterate invoices: %w", err)
		}
		rows.Close()

		// Items are read after the invoice cursor is closed; the store
		// runs on a single connection.
		for _, inv := range invoices {
			if inv.Items, err = fetchItems(ctx, tx, inv.ID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if invoices == nil {
		invoices = []*types.Invoice{}
	}
	return invoices, nil
}

// GetInvoice returns one invoice with its items.
func (s *SQLiteStore) GetInvoice(ctx context.Context, invoiceNo string) (*types.Invoice, error) {
	var inv *types.Invoice

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE invoice_no = ?`, invoiceNo)

		var err error
		inv, err = scanInvoice(row)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: %s", store.ErrNotFound, invoiceNo)
		}
		if err != nil {
			return err
		}

		inv.Items, err = fetchItems(ctx, tx, inv.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return inv, nil
}

// ExistsByInvoiceNo reports whether an invoice with the number exists.
func (s *SQLiteStore) ExistsByInvoiceNo(ctx context.Context, invoiceNo string) (bool, error) {
	_, found, err := lookupID(ctx, s.db, invoiceNo)
	return found, err
}

// ────────────────────────────────────────────────────────────────────────────────
// Helpers
// ────────────────────────────────────────────────────────────────────────────────

// queryer is satisfied by *sql.DB and *sql.Tx.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *SQLiteStore) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func validate(inv *types.Invoice) error {
	if err := validation.ValidateInvoice(inv); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidInvoice, err)
	}
	return nil
}

func lookupID(ctx context.Context, q queryer, invoiceNo string) (int64, bool, error) {
	var id int64
	err := q.QueryRowContext(ctx, `SELECT id FROM invoices WHERE invoice_no = ?`, invoiceNo).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("lookup invoice %q: %w", invoiceNo, err)
	}
	return id, true, nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
}

// invoiceRow is an invoice flattened to column values.
type invoiceRow struct {
	invoiceNo, details, date, orderNo, orderDate string
	seller, billing, shipping                    string
	supply, delivery                             string
	reverseCharge                                bool
	bank                                         sql.NullString
}

func encodeInvoice(inv *types.Invoice) (*invoiceRow, error) {
	seller, err := json.Marshal(inv.SellerDetails)
	if err != nil {
		return nil, fmt.Errorf("encode seller: %w", err)
	}
	billing, err := json.Marshal(inv.BillingDetails)
	if err != nil {
		return nil, fmt.Errorf("encode billing: %w", err)
	}
	shipping, err := json.Marshal(inv.ShippingDetails)
	if err != nil {
		return nil, fmt.Errorf("encode shipping: %w", err)
	}

	row := &invoiceRow{
		invoiceNo:     inv.InvoiceNo,
		details:       inv.InvoiceDetails,
		date:          inv.InvoiceDate,
		orderNo:       inv.OrderNo,
		orderDate:     inv.OrderDate,
		seller:        string(seller),
		billing:       string(billing),
		shipping:      string(shipping),
		supply:        inv.PlaceOfSupply,
		delivery:      inv.PlaceOfDelivery,
		reverseCharge: inv.IsTaxPayableUnderReverseCharge,
	}

	if inv.BankDetails != nil {
		bank, err := json.Marshal(inv.BankDetails)
		if err != nil {
			return nil, fmt.Errorf("encode bank details: %w", err)
		}
		row.bank = sql.NullString{String: string(bank), Valid: true}
	}

	return row, nil
}

func insertInvoice(ctx context.Context, tx *sql.Tx, r *invoiceRow) (int64, error) {
	const query = `INSERT INTO invoices (
		invoice_no, invoice_details, invoice_date, order_no, order_date,
		seller, billing, shipping, place_of_supply, place_of_delivery,
		reverse_charge, bank
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	res, err := tx.ExecContext(ctx, query,
		r.invoiceNo, r.details, r.date, r.orderNo, r.orderDate,
		r.seller, r.billing, r.shipping, r.supply, r.delivery,
		r.reverseCharge, r.bank,
	)
	if err != nil {
		return 0, fmt.Errorf("insert invoice row: %w", err)
	}
	return res.LastInsertId()
}

func updateInvoice(ctx context.Context, tx *sql.Tx, id int64, r *invoiceRow) error {
	const query = `UPDATE invoices SET
		invoice_details = ?, invoice_date = ?, order_no = ?, order_date = ?,
		seller = ?, billing = ?, shipping = ?,
		place_of_supply = ?, place_of_delivery = ?,
		reverse_charge = ?, bank = ?
	WHERE id = ?`

	_, err := tx.ExecContext(ctx, query,
		r.details, r.date, r.orderNo, r.orderDate,
		r.seller, r.billing, r.shipping,
		r.supply, r.delivery,
		r.reverseCharge, r.bank,
		id,
	)
	if err != nil {
		return fmt.Errorf("update invoice row %d: %w", id, err)
	}
	return nil
}

func insertItems(ctx context.Context, tx *sql.Tx, invoiceID int64, items []types.LineItem) ([]int64, error) {
	if len(items) == 0 {
		return nil, nil
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO invoice_items (
		invoice_id, description, unit_price, quantity, discount
	) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return nil, fmt.Errorf("prepare item insert: %w", err)
	}
	defer stmt.Close()

	ids := make([]int64, 0, len(items))
	for i, item := range items {
		res, err := stmt.ExecContext(ctx, invoiceID, item.Description, item.UnitPrice, item.Quantity, item.Discount)
		if err != nil {
			return nil, fmt.Errorf("insert item %d: %w", i+1, err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func stampIDs(inv *types.Invoice, id int64, itemIDs []int64) {
	inv.ID = id
	for i := range inv.Items {
		inv.Items[i].InvoiceID = id
		if i < len(itemIDs) {
			inv.Items[i].ID = itemIDs[i]
		}
	}
}

const invoiceColumns = `id, invoice_no, invoice_details, invoice_date, order_no, order_date,
	seller, billing, shipping, place_of_supply, place_of_delivery, reverse_charge, bank`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanInvoice(sc rowScanner) (*types.Invoice, error) {
	var (
		inv                       types.Invoice
		seller, billing, shipping string
		bank                      sql.NullString
	)

	err := sc.Scan(
		&inv.ID, &inv.InvoiceNo, &inv.InvoiceDetails, &inv.InvoiceDate, &inv.OrderNo, &inv.OrderDate,
		&seller, &billing, &shipping, &inv.PlaceOfSupply, &inv.PlaceOfDelivery,
		&inv.IsTaxPayableUnderReverseCharge, &bank,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan invoice: %w", err)
	}

	if err := json.Unmarshal([]byte(seller), &inv.SellerDetails); err != nil {
		return nil, fmt.Errorf("decode seller of invoice %d: %w", inv.ID, err)
	}
	if err := json.Unmarshal([]byte(billing), &inv.BillingDetails); err != nil {
		return nil, fmt.Errorf("decode billing of invoice %d: %w", inv.ID, err)
	}
	if err := json.Unmarshal([]byte(shipping), &inv.ShippingDetails); err != nil {
		return nil, fmt.Errorf("decode shipping of invoice %d: %w", inv.ID, err)
	}
	if bank.Valid {
		inv.BankDetails = &types.BankDetails{}
		if err := json.Unmarshal([]byte(bank.String), inv.BankDetails); err != nil {
			return nil, fmt.Errorf("decode bank details of invoice %d: %w", inv.ID, err)
		}
	}

	return &inv, nil
}

func fetchItems(ctx context.Context, q queryer, invoiceID int64) ([]types.LineItem, error) {
	rows, err := q.QueryContext(ctx, `SELECT id, invoice_id, description, unit_price, quantity, discount
		FROM invoice_items WHERE invoice_id = ? ORDER BY id`, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("query items of invoice %d: %w", invoiceID, err)
	}
	defer rows.Close()

	items := []types.LineItem{}
	for rows.Next() {
		var item types.LineItem
		if err := rows.Scan(&item.ID, &item.InvoiceID, &item.Description, &item.UnitPrice, &item.Quantity, &item.Discount); err != nil {
			return nil, fmt.Errorf("scan item of invoice %d: %w", invoiceID, err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
