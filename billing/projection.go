/*
projection.go - Period projection for the billing dashboard

PURPOSE:
  Computes the set of charges that SHOULD exist for a reporting window:
  one row per (client, month) for every month the client was already
  enrolled. Stored charges are used where present; otherwise a forecast
  row is synthesized from the client's billing day and default rate.

KEY INSIGHT:
  The projection is a pure, repeatable function of (roster, charges,
  window, today). It performs no I/O and never persists anything: a
  forecast row only becomes a real charge when a user action (e.g.
  "mark as paid") forces creation.

FUTURE CHARGES:
  A due date strictly after today is always a forecast of an open
  obligation - the projection forces its status to open - UNLESS a
  persisted charge explicitly says paid. A pre-paid future installment
  must display as paid.

DUE DATE DRIFT:
  When a stored charge's day-of-month disagrees with the client's
  configured billing day (after month-length clamping), the canonical
  recomputed date wins for display and the row is flagged so callers can
  log the inconsistency. The stored record is never silently trusted,
  and never reconciled back to storage.

EXAMPLE:
  engine := &billing.ProjectionEngine{Clock: clock}
  rows, err := engine.Project(billing.ProjectionInput{
      Clients: roster,
      Charges: persisted,
      Window:  &window,
  })

SEE ALSO:
  - status.go: Status resolution for synthesized rows
  - period.go: Window defaulting and month iteration
*/
package billing

import "time"

// =============================================================================
// PROJECTION ENGINE
// =============================================================================

// ProjectionEngine synthesizes the dashboard view of a reporting window.
type ProjectionEngine struct {
	Clock Clock
}

// ProjectionInput carries the full roster and charge set plus an optional
// window; a nil window defaults to the clock's current month.
type ProjectionInput struct {
	Clients []Client
	Charges []Charge
	Window  *Period
}

// ProjectedCharge is one dashboard row. Forecast rows have no persisted
// record (empty Charge.ID).
type ProjectedCharge struct {
	Charge

	// Forecast is true when the row was synthesized in-memory.
	Forecast bool

	// DueDateDrift is true when a stored due date's day-of-month
	// disagreed with the client's configured billing day; DueDate holds
	// the canonical recomputed date and StoredDueDate the original.
	DueDateDrift  bool
	StoredDueDate time.Time
}

// Project computes one row per (client, month) pair for every month inside
// the window that the client was already enrolled in. The result carries no
// ordering guarantee; callers sort by due date when displaying.
func (pe *ProjectionEngine) Project(in ProjectionInput) ([]ProjectedCharge, error) {
	clock := pe.Clock
	if clock == nil {
		clock = SystemClock{}
	}

	window := CurrentMonth(clock)
	if in.Window != nil {
		window = NewPeriod(in.Window.Start, in.Window.End)
	}
	if !window.Valid() {
		return nil, ErrInvalidPeriod
	}

	// First stored charge per (client, period) wins.
	stored := make(map[chargeKey]Charge)
	for _, ch := range in.Charges {
		k := chargeKey{ClientID: ch.ClientID, Period: KeyOf(ch.DueDate)}
		if _, ok := stored[k]; !ok {
			stored[k] = ch
		}
	}

	today := clock.Today()
	months := window.Months()
	rows := make([]ProjectedCharge, 0, len(in.Clients)*len(months))

	for _, client := range in.Clients {
		enrolled := KeyOf(NormalizeDate(client.CreatedAt))
		billingDay := ParseBillingDay(client.BillingDay)

		for _, month := range months {
			if month.Before(enrolled) {
				continue
			}

			canonical := month.Date(billingDay)
			row := ProjectedCharge{}

			if ch, ok := stored[chargeKey{ClientID: client.ID, Period: month}]; ok {
				row.Charge = ch
				if ch.DueDate.Day() != canonical.Day() {
					row.DueDateDrift = true
					row.StoredDueDate = ch.DueDate
					row.DueDate = canonical
				}
			} else {
				row.Forecast = true
				row.Charge = Charge{
					ClientID:   client.ID,
					ClientName: client.Name,
					DueDate:    canonical,
					Amount:     Round2(ParseAmount(client.Rate)),
					Status:     ResolveStatus(canonical, false, clock),
				}
			}

			// A future charge is always a forecast of an open obligation,
			// unless a persisted record explicitly says paid.
			if row.DueDate.After(today) && row.Status != StatusPaid {
				row.Status = StatusOpen
			}

			rows = append(rows, row)
		}
	}
	return rows, nil
}

type chargeKey struct {
	ClientID string
	Period   DateKey
}
