/*
Package sqlite provides a SQLite-backed implementation of the billing
storage interfaces.

PURPOSE:
  Implements billing.ChargeStore and billing.ClientStore using SQLite.
  In production the same patterns apply to PostgreSQL - only minor SQL
  dialect differences.

KEY TABLES:
  clients: Client roster with billing day, default rate and lifecycle state
  charges: Billing obligations, one row per persisted charge

INDEXES:
  idx_charges_client:     Per-client charge lists (plan conflict scans)
  idx_charges_due_date:   Window queries for projection and the sweeper
  idx_charges_status:     Overdue sweeps

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  multiple readers don't block, single writer at a time.

USAGE:
  store, err := sqlite.New("./data/billing.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - billing/store.go: Interface definitions
  - billing/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"github.com/vinculo/billing-engine/billing"
)

// Store implements billing.ChargeStore and billing.ClientStore.
type Store struct {
	db *sql.DB
}

// New creates a SQLite store at the given path. Use ":memory:" for an
// in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS clients (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		billing_day TEXT NOT NULL DEFAULT '1',
		rate TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'active',
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS charges (
		id TEXT PRIMARY KEY,
		client_id TEXT NOT NULL,
		client_name TEXT NOT NULL DEFAULT '',
		due_date TEXT NOT NULL,
		amount TEXT NOT NULL,
		status TEXT NOT NULL,
		paid_date TEXT,
		notes TEXT NOT NULL DEFAULT '',
		penalty_percent TEXT,
		installment_number INTEGER NOT NULL DEFAULT 0,
		installment_total INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_charges_client
		ON charges(client_id);
	CREATE INDEX IF NOT EXISTS idx_charges_due_date
		ON charges(due_date);
	CREATE INDEX IF NOT EXISTS idx_charges_status
		ON charges(status);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// CHARGES
// =============================================================================

const chargeColumns = `id, client_id, client_name, due_date, amount, status,
	paid_date, notes, penalty_percent, installment_number, installment_total, created_at`

func (s *Store) SaveCharge(ctx context.Context, ch billing.Charge) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO charges (`+chargeColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ch.ID, ch.ClientID, ch.ClientName,
		ch.DueDate.Format("2006-01-02"),
		ch.Amount.String(), string(ch.Status),
		nullableDate(ch.PaidDate), ch.Notes, nullableDecimal(ch.PenaltyPercent),
		ch.InstallmentNumber, ch.InstallmentTotal,
		timestamp(ch.CreatedAt))
	return err
}

func (s *Store) GetCharge(ctx context.Context, id string) (*billing.Charge, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+chargeColumns+` FROM charges WHERE id = ?`, id)
	ch, err := scanCharge(row)
	if err == sql.ErrNoRows {
		return nil, billing.ErrChargeNotFound
	}
	if err != nil {
		return nil, err
	}
	return &ch, nil
}

func (s *Store) UpdateCharge(ctx context.Context, ch billing.Charge) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE charges SET client_id = ?, client_name = ?, due_date = ?,
			amount = ?, status = ?, paid_date = ?, notes = ?,
			penalty_percent = ?, installment_number = ?, installment_total = ?
		WHERE id = ?`,
		ch.ClientID, ch.ClientName, ch.DueDate.Format("2006-01-02"),
		ch.Amount.String(), string(ch.Status),
		nullableDate(ch.PaidDate), ch.Notes, nullableDecimal(ch.PenaltyPercent),
		ch.InstallmentNumber, ch.InstallmentTotal,
		ch.ID)
	if err != nil {
		return err
	}
	return requireAffected(res, billing.ErrChargeNotFound)
}

func (s *Store) DeleteCharge(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM charges WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireAffected(res, billing.ErrChargeNotFound)
}

func (s *Store) ListCharges(ctx context.Context) ([]billing.Charge, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+chargeColumns+` FROM charges ORDER BY due_date`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectCharges(rows)
}

func (s *Store) ListChargesByClient(ctx context.Context, clientID string) ([]billing.Charge, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+chargeColumns+` FROM charges WHERE client_id = ? ORDER BY due_date`,
		clientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectCharges(rows)
}

// =============================================================================
// CLIENTS
// =============================================================================

func (s *Store) SaveClient(ctx context.Context, c billing.Client) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO clients (id, name, billing_day, rate, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.BillingDay, c.Rate, string(c.Status),
		c.CreatedAt.Format("2006-01-02"))
	return err
}

func (s *Store) GetClient(ctx context.Context, id string) (*billing.Client, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, billing_day, rate, status, created_at
		FROM clients WHERE id = ?`, id)
	c, err := scanClient(row)
	if err == sql.ErrNoRows {
		return nil, billing.ErrClientNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Store) UpdateClient(ctx context.Context, c billing.Client) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE clients SET name = ?, billing_day = ?, rate = ?, status = ?
		WHERE id = ?`,
		c.Name, c.BillingDay, c.Rate, string(c.Status), c.ID)
	if err != nil {
		return err
	}
	return requireAffected(res, billing.ErrClientNotFound)
}

func (s *Store) ListClients(ctx context.Context) ([]billing.Client, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, billing_day, rate, status, created_at
		FROM clients ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []billing.Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Reset drops all rows. Used by the demo scenario loader.
func (s *Store) Reset(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM charges`); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `DELETE FROM clients`)
	return err
}

// =============================================================================
// SCAN HELPERS
// =============================================================================

type scanner interface {
	Scan(dest ...any) error
}

func scanCharge(row scanner) (billing.Charge, error) {
	var (
		ch         billing.Charge
		dueDate    string
		amount     string
		status     string
		paidDate   sql.NullString
		penaltyPct sql.NullString
		createdAt  string
	)
	err := row.Scan(&ch.ID, &ch.ClientID, &ch.ClientName, &dueDate, &amount,
		&status, &paidDate, &ch.Notes, &penaltyPct,
		&ch.InstallmentNumber, &ch.InstallmentTotal, &createdAt)
	if err != nil {
		return billing.Charge{}, err
	}

	ch.Status = billing.ChargeStatus(status)
	if ch.DueDate, err = time.Parse("2006-01-02", dueDate); err != nil {
		return billing.Charge{}, fmt.Errorf("bad due_date %q: %w", dueDate, err)
	}
	if ch.Amount, err = decimal.NewFromString(amount); err != nil {
		return billing.Charge{}, fmt.Errorf("bad amount %q: %w", amount, err)
	}
	if paidDate.Valid {
		d, err := time.Parse("2006-01-02", paidDate.String)
		if err != nil {
			return billing.Charge{}, fmt.Errorf("bad paid_date %q: %w", paidDate.String, err)
		}
		ch.PaidDate = &d
	}
	if penaltyPct.Valid {
		p, err := decimal.NewFromString(penaltyPct.String)
		if err != nil {
			return billing.Charge{}, fmt.Errorf("bad penalty_percent %q: %w", penaltyPct.String, err)
		}
		ch.PenaltyPercent = &p
	}
	if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
		ch.CreatedAt = t
	}
	return ch, nil
}

func scanClient(row scanner) (billing.Client, error) {
	var (
		c         billing.Client
		status    string
		createdAt string
	)
	err := row.Scan(&c.ID, &c.Name, &c.BillingDay, &c.Rate, &status, &createdAt)
	if err != nil {
		return billing.Client{}, err
	}
	c.Status = billing.ClientStatus(status)
	if c.CreatedAt, err = time.Parse("2006-01-02", createdAt); err != nil {
		return billing.Client{}, fmt.Errorf("bad created_at %q: %w", createdAt, err)
	}
	return c, nil
}

func collectCharges(rows *sql.Rows) ([]billing.Charge, error) {
	var out []billing.Charge
	for rows.Next() {
		ch, err := scanCharge(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, ch)
	}
	return out, rows.Err()
}

func requireAffected(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}

func nullableDate(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format("2006-01-02")
}

func nullableDecimal(d *decimal.Decimal) any {
	if d == nil {
		return nil
	}
	return d.String()
}

func timestamp(t time.Time) string {
	if t.IsZero() {
		t = time.Now().UTC()
	}
	return t.Format(time.RFC3339)
}
