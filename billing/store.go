/*
store.go - Persistence interfaces for clients and charges

PURPOSE:
  Defines the boundary between the billing logic and the database. The
  engine itself is pure; everything that touches storage goes through
  these interfaces so SQLite and in-memory implementations are
  interchangeable.

WRITE SEMANTICS:
  Persistence calls are independent and sequential. A multi-installment
  plan is persisted one charge at a time with no transaction or rollback;
  a partial failure leaves earlier installments created. Callers re-fetch
  and re-project after mutations, so a full reload is the consistency
  guarantee.

IMPLEMENTATIONS:
  - store/sqlite: Production SQLite store
  - billing/store: In-memory store for tests and dev
*/
package billing

import "context"

// ChargeStore persists billing obligations.
type ChargeStore interface {
	// SaveCharge inserts a new charge.
	SaveCharge(ctx context.Context, ch Charge) error

	// GetCharge returns a charge by ID, or ErrChargeNotFound.
	GetCharge(ctx context.Context, id string) (*Charge, error)

	// UpdateCharge replaces an existing charge, or ErrChargeNotFound.
	UpdateCharge(ctx context.Context, ch Charge) error

	// DeleteCharge removes a charge, or ErrChargeNotFound.
	DeleteCharge(ctx context.Context, id string) error

	// ListCharges returns every persisted charge.
	ListCharges(ctx context.Context) ([]Charge, error)

	// ListChargesByClient returns a client's charges.
	ListChargesByClient(ctx context.Context, clientID string) ([]Charge, error)
}

// ClientStore persists client records.
type ClientStore interface {
	// SaveClient inserts a new client.
	SaveClient(ctx context.Context, c Client) error

	// GetClient returns a client by ID, or ErrClientNotFound.
	GetClient(ctx context.Context, id string) (*Client, error)

	// UpdateClient replaces an existing client, or ErrClientNotFound.
	UpdateClient(ctx context.Context, c Client) error

	// ListClients returns the full roster.
	ListClients(ctx context.Context) ([]Client, error)
}
