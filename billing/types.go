/*
Package billing provides the core billing engine for the placement agency.

PURPOSE:
  This package contains the pure domain logic behind the agency's monthly
  billing ("mensalidades"): resolving charge statuses from wall-clock dates,
  generating installment plans, projecting the charges a reporting window
  should contain, and applying late-payment penalties.

KEY CONCEPTS IN THIS FILE (types.go):
  - Charge: One monthly billing obligation owed by a client
  - Client: The billing-relevant subset of a client company record
  - ChargeStatus / ClientStatus: Lifecycle enumerations

DESIGN PRINCIPLES:
  1. Purity: Every computation takes explicit inputs and returns outputs;
     persistence is hidden behind store interfaces (store.go)
  2. Precision: Uses decimal.Decimal to avoid floating-point money errors
  3. Determinism: "Today" is always an injected Clock, never the system
     clock buried inside a comparison

USAGE:
  charge := billing.Charge{
      ClientID: "cli-1",
      DueDate:  billing.NewDate(2024, time.March, 10),
      Amount:   decimal.NewFromFloat(350),
      Status:   billing.StatusOpen,
  }

SEE ALSO:
  - status.go: Status resolution from due dates
  - plan.go: Installment plan generation
  - projection.go: Dashboard projection engine
*/
package billing

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// CHARGE - One monthly billing obligation ("mensalidade")
// =============================================================================

type ChargeStatus string

const (
	StatusPaid    ChargeStatus = "paid"
	StatusOverdue ChargeStatus = "overdue"
	StatusOpen    ChargeStatus = "open"
)

// Charge is a single billing obligation owed by a client. A charge with an
// empty ID exists only as an in-memory forecast and has no persisted record.
type Charge struct {
	ID         string
	ClientID   string
	ClientName string

	// DueDate is a calendar date; time-of-day carries no meaning and is
	// normalized to midnight UTC at every boundary.
	DueDate time.Time

	Amount decimal.Decimal
	Status ChargeStatus

	// PaidDate is set iff Status == StatusPaid.
	PaidDate *time.Time

	// Notes tags plan-generated charges and penalty annotations.
	Notes string

	// PenaltyPercent is set once a late fee has been applied; Amount
	// already reflects the surcharge.
	PenaltyPercent *decimal.Decimal

	// InstallmentNumber/Total identify position within a generated plan.
	// Both are zero for standalone charges.
	InstallmentNumber int
	InstallmentTotal  int

	CreatedAt time.Time
}

// IsPaid reports whether the charge has been settled.
func (c Charge) IsPaid() bool { return c.Status == StatusPaid }

// MarkPaid settles the charge on the given day, maintaining the
// paid <=> PaidDate invariant.
func (c Charge) MarkPaid(on time.Time) Charge {
	day := NormalizeDate(on)
	c.Status = StatusPaid
	c.PaidDate = &day
	return c
}

// MarkUnpaid reverts a settled charge; the status is re-resolved from the
// due date against the clock.
func (c Charge) MarkUnpaid(clock Clock) Charge {
	c.PaidDate = nil
	c.Status = ResolveStatus(c.DueDate, false, clock)
	return c
}

// =============================================================================
// CLIENT - Billing-relevant subset of a client company
// =============================================================================

type ClientStatus string

const (
	ClientActive     ClientStatus = "active"
	ClientInProgress ClientStatus = "in-progress"
	ClientBlocked    ClientStatus = "blocked"
	ClientInactive   ClientStatus = "inactive"
)

// ValidClientStatus reports whether s is one of the known lifecycle states.
func ValidClientStatus(s ClientStatus) bool {
	switch s {
	case ClientActive, ClientInProgress, ClientBlocked, ClientInactive:
		return true
	}
	return false
}

// Client is the billing view of a client company.
type Client struct {
	ID   string
	Name string

	// BillingDay is the raw stored value: either a bare day-of-month
	// ("15") or, for legacy records, a full "YYYY-MM-DD" string of which
	// only the day component is meaningful. Parse with ParseBillingDay.
	BillingDay string

	// Rate is the default monthly amount as localized currency text,
	// e.g. "R$ 350,00". Parse with ParseAmount.
	Rate string

	// CreatedAt is the enrollment date; the projection engine never
	// synthesizes charges for months before it.
	CreatedAt time.Time

	Status ClientStatus
}

// Billable reports whether the client should appear on the billing dashboard.
func (c Client) Billable() bool {
	return c.Status == ClientActive || c.Status == ClientInProgress
}
