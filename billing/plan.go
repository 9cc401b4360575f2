/*
plan.go - Installment plan generation

PURPOSE:
  Turns a recurring-plan description (first due date, cadence, count,
  per-installment amount) into a batch of charge records with computed due
  dates, refusing the whole batch when any installment would land on a month
  already occupied by an unpaid charge.

DUE DATE ARITHMETIC:
  Installment i is due at firstDueDate + i*cadence months, with the
  day-of-month clamped to the target month's length. A plan starting
  Jan 31 monthly produces Feb 28/29, never Mar 2/3.

CONFLICT POLICY:
  Before creating anything, every planned month is checked against the
  client's existing charges. Any unpaid charge in a planned month aborts
  generation entirely (no partial creation) and reports the conflicting
  month. A suggested alternative start is searched by shifting the start
  forward 1..24 months and accepting the first shift for which ALL
  installments land conflict-free; if none exists, no suggestion is made.

SEE ALSO:
  - status.go: Status resolution applied to each accepted charge
  - errors.go: ValidationError and ScheduleConflictError
*/
package billing

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =============================================================================
// PLAN SPEC
// =============================================================================

// PlanCadences are the recurrence intervals (in months) the admin UI offers.
var PlanCadences = []int{1, 2, 3, 6, 12}

// MaxPlanInstallments bounds plan length at ten years of monthly charges.
const MaxPlanInstallments = 120

// suggestionSearchMonths bounds the forward search for an alternative start.
const suggestionSearchMonths = 24

// PlanSpec describes a batch of recurring charges to generate.
type PlanSpec struct {
	Description       string
	FirstDueDate      time.Time
	CadenceMonths     int
	InstallmentCount  int
	InstallmentAmount decimal.Decimal
}

// Validate checks the plan parameters. It reports the first problem found;
// nothing is created on failure.
func (s PlanSpec) Validate() error {
	if s.Description == "" {
		return &ValidationError{Field: "description", Message: "required"}
	}
	if s.FirstDueDate.IsZero() {
		return &ValidationError{Field: "first_due_date", Message: "required"}
	}
	if !validCadence(s.CadenceMonths) {
		return &ValidationError{Field: "cadence_months", Message: fmt.Sprintf("must be one of %v", PlanCadences)}
	}
	if !validInstallmentCount(s.InstallmentCount) {
		return &ValidationError{Field: "installment_count", Message: fmt.Sprintf("must be 1 or a multiple of 3, at most %d", MaxPlanInstallments)}
	}
	if !s.InstallmentAmount.IsPositive() {
		return &ValidationError{Field: "installment_amount", Message: "must be positive"}
	}
	return nil
}

func validCadence(n int) bool {
	for _, c := range PlanCadences {
		if n == c {
			return true
		}
	}
	return false
}

// The admin UI offers counts of 1, 3, 6, 9, 12, 18, ... up to 120.
func validInstallmentCount(n int) bool {
	if n == 1 {
		return true
	}
	return n >= 3 && n <= MaxPlanInstallments && n%3 == 0
}

// =============================================================================
// GENERATION
// =============================================================================

// GeneratePlan produces the plan's charge records for a client, given the
// client's existing charge list. On a schedule conflict it returns a
// ScheduleConflictError and creates nothing.
func GeneratePlan(client Client, spec PlanSpec, existing []Charge, clock Clock) ([]Charge, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	// Months already holding an unpaid charge are occupied. Paid months
	// can be reused: the obligation there is settled.
	occupied := make(map[DateKey]bool)
	for _, ch := range existing {
		if !ch.IsPaid() {
			occupied[KeyOf(ch.DueDate)] = true
		}
	}

	firstKey := KeyOf(NormalizeDate(spec.FirstDueDate))
	if conflict, ok := firstConflict(firstKey, spec.CadenceMonths, spec.InstallmentCount, occupied); ok {
		return nil, &ScheduleConflictError{
			Month:          conflict,
			SuggestedStart: suggestStart(spec, occupied),
		}
	}

	today := clock.Today()
	charges := make([]Charge, 0, spec.InstallmentCount)
	for i := 0; i < spec.InstallmentCount; i++ {
		due := AddMonthsClamped(spec.FirstDueDate, i*spec.CadenceMonths)
		charges = append(charges, Charge{
			ID:                uuid.NewString(),
			ClientID:          client.ID,
			ClientName:        client.Name,
			DueDate:           due,
			Amount:            Round2(spec.InstallmentAmount),
			Status:            ResolveStatus(due, false, clock),
			Notes:             fmt.Sprintf("%s - installment %d of %d", spec.Description, i+1, spec.InstallmentCount),
			InstallmentNumber: i + 1,
			InstallmentTotal:  spec.InstallmentCount,
			CreatedAt:         today,
		})
	}
	return charges, nil
}

// firstConflict returns the earliest planned month already occupied.
func firstConflict(first DateKey, cadence, count int, occupied map[DateKey]bool) (DateKey, bool) {
	for i := 0; i < count; i++ {
		key := first.AddMonths(i * cadence)
		if occupied[key] {
			return key, true
		}
	}
	return DateKey{}, false
}

// suggestStart searches forward 1..24 months for a start where every
// installment lands on a free month. Returns nil when no shift works.
func suggestStart(spec PlanSpec, occupied map[DateKey]bool) *time.Time {
	firstKey := KeyOf(NormalizeDate(spec.FirstDueDate))
	for shift := 1; shift <= suggestionSearchMonths; shift++ {
		if _, conflict := firstConflict(firstKey.AddMonths(shift), spec.CadenceMonths, spec.InstallmentCount, occupied); !conflict {
			suggested := AddMonthsClamped(spec.FirstDueDate, shift)
			return &suggested
		}
	}
	return nil
}
