package billing_test

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/vinculo/billing-engine/billing"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func testClient() billing.Client {
	return billing.Client{
		ID:         "cli-1",
		Name:       "Acme Ltda",
		BillingDay: "10",
		Rate:       "R$ 350,00",
		CreatedAt:  billing.NewDate(2023, time.June, 1),
		Status:     billing.ClientActive,
	}
}

func amount(v float64) decimal.Decimal { return decimal.NewFromFloat(v) }

func openCharge(clientID string, due time.Time) billing.Charge {
	return billing.Charge{
		ID:       "ch-" + due.Format("2006-01"),
		ClientID: clientID,
		DueDate:  due,
		Amount:   amount(350),
		Status:   billing.StatusOpen,
	}
}

// =============================================================================
// VALIDATION
// =============================================================================

func TestGeneratePlan_Validation(t *testing.T) {
	clock := billing.NewFixedClock(2024, time.January, 1)
	base := billing.PlanSpec{
		Description:       "Monthly fee",
		FirstDueDate:      billing.NewDate(2024, time.February, 10),
		CadenceMonths:     1,
		InstallmentCount:  12,
		InstallmentAmount: amount(350),
	}

	cases := []struct {
		name   string
		mutate func(*billing.PlanSpec)
	}{
		{"missing description", func(s *billing.PlanSpec) { s.Description = "" }},
		{"zero first due date", func(s *billing.PlanSpec) { s.FirstDueDate = time.Time{} }},
		{"bad cadence", func(s *billing.PlanSpec) { s.CadenceMonths = 5 }},
		{"bad count", func(s *billing.PlanSpec) { s.InstallmentCount = 7 }},
		{"count too large", func(s *billing.PlanSpec) { s.InstallmentCount = 123 }},
		{"zero amount", func(s *billing.PlanSpec) { s.InstallmentAmount = decimal.Zero }},
		{"negative amount", func(s *billing.PlanSpec) { s.InstallmentAmount = amount(-1) }},
	}

	for _, c := range cases {
		spec := base
		c.mutate(&spec)
		charges, err := billing.GeneratePlan(testClient(), spec, nil, clock)
		if !errors.Is(err, billing.ErrValidation) {
			t.Errorf("%s: expected validation error, got %v", c.name, err)
		}
		if charges != nil {
			t.Errorf("%s: expected no charges on validation failure", c.name)
		}
	}
}

// =============================================================================
// DUE DATE ARITHMETIC
// =============================================================================

func TestGeneratePlan_ClampsDueDatesToMonthLength(t *testing.T) {
	// GIVEN: A 12-installment monthly plan starting Jan 31 of a leap year
	// WHEN: Generating
	// THEN: Every due date is the 31st clamped to the real month end

	clock := billing.NewFixedClock(2024, time.January, 1)
	spec := billing.PlanSpec{
		Description:       "Annual placement",
		FirstDueDate:      billing.NewDate(2024, time.January, 31),
		CadenceMonths:     1,
		InstallmentCount:  12,
		InstallmentAmount: amount(350),
	}

	charges, err := billing.GeneratePlan(testClient(), spec, nil, clock)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(charges) != 12 {
		t.Fatalf("expected 12 charges, got %d", len(charges))
	}

	wantDays := []int{31, 29, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}
	for i, ch := range charges {
		want := billing.NewDate(2024, time.Month(i+1), wantDays[i])
		if !ch.DueDate.Equal(want) {
			t.Errorf("installment %d: due %v, want %v",
				i+1, ch.DueDate.Format("2006-01-02"), want.Format("2006-01-02"))
		}
		if ch.InstallmentNumber != i+1 || ch.InstallmentTotal != 12 {
			t.Errorf("installment %d: got position %d/%d",
				i+1, ch.InstallmentNumber, ch.InstallmentTotal)
		}
	}
}

func TestGeneratePlan_StatusResolvedAtCreation(t *testing.T) {
	// GIVEN: Today is mid-plan
	// WHEN: Generating a plan that starts in the past
	// THEN: Past installments are overdue, today-or-later are open

	clock := billing.NewFixedClock(2024, time.March, 10)
	spec := billing.PlanSpec{
		Description:       "Catch-up plan",
		FirstDueDate:      billing.NewDate(2024, time.February, 10),
		CadenceMonths:     1,
		InstallmentCount:  3,
		InstallmentAmount: amount(100),
	}

	charges, err := billing.GeneratePlan(testClient(), spec, nil, clock)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantStatuses := []billing.ChargeStatus{billing.StatusOverdue, billing.StatusOpen, billing.StatusOpen}
	for i, ch := range charges {
		if ch.Status != wantStatuses[i] {
			t.Errorf("installment %d: status %v, want %v", i+1, ch.Status, wantStatuses[i])
		}
	}
}

// =============================================================================
// CONFLICT POLICY
// =============================================================================

func TestGeneratePlan_RefusesOccupiedMonth(t *testing.T) {
	// GIVEN: An existing open charge in March 2024
	// WHEN: Generating Feb/Mar/Apr monthly installments
	// THEN: The whole plan is refused naming March 2024, with a suggestion

	clock := billing.NewFixedClock(2024, time.January, 15)
	existing := []billing.Charge{openCharge("cli-1", billing.NewDate(2024, time.March, 10))}

	spec := billing.PlanSpec{
		Description:       "Quarterly batch",
		FirstDueDate:      billing.NewDate(2024, time.February, 10),
		CadenceMonths:     1,
		InstallmentCount:  3,
		InstallmentAmount: amount(350),
	}

	charges, err := billing.GeneratePlan(testClient(), spec, existing, clock)
	if charges != nil {
		t.Fatal("expected no charges on conflict")
	}

	var conflict *billing.ScheduleConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ScheduleConflictError, got %v", err)
	}
	if conflict.Month != (billing.DateKey{Year: 2024, Month: time.March}) {
		t.Errorf("conflict month = %v, want March 2024", conflict.Month)
	}
	if conflict.SuggestedStart == nil {
		t.Fatal("expected a suggested start within 24 months")
	}
	// Shifting by 2 months (Apr/May/Jun) is the first conflict-free start.
	want := billing.NewDate(2024, time.April, 10)
	if !conflict.SuggestedStart.Equal(want) {
		t.Errorf("suggested start = %v, want %v",
			conflict.SuggestedStart.Format("2006-01-02"), want.Format("2006-01-02"))
	}
}

func TestGeneratePlan_PaidMonthsAreNotConflicts(t *testing.T) {
	// GIVEN: The March obligation is already settled
	// WHEN: Generating Feb/Mar/Apr
	// THEN: Generation proceeds - only unpaid charges occupy a month

	clock := billing.NewFixedClock(2024, time.January, 15)
	paid := openCharge("cli-1", billing.NewDate(2024, time.March, 10)).MarkPaid(billing.NewDate(2024, time.March, 5))

	spec := billing.PlanSpec{
		Description:       "Quarterly batch",
		FirstDueDate:      billing.NewDate(2024, time.February, 10),
		CadenceMonths:     1,
		InstallmentCount:  3,
		InstallmentAmount: amount(350),
	}

	charges, err := billing.GeneratePlan(testClient(), spec, []billing.Charge{paid}, clock)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(charges) != 3 {
		t.Fatalf("expected 3 charges, got %d", len(charges))
	}
}

func TestGeneratePlan_NoSuggestionWhenEverythingOccupied(t *testing.T) {
	// GIVEN: Open charges blocking every month for the next three years
	// WHEN: Generating a monthly plan
	// THEN: The refusal carries no suggested start

	clock := billing.NewFixedClock(2024, time.January, 15)
	var existing []billing.Charge
	start := billing.NewDate(2024, time.January, 10)
	for i := 0; i < 36; i++ {
		existing = append(existing, openCharge("cli-1", billing.AddMonthsClamped(start, i)))
	}

	spec := billing.PlanSpec{
		Description:       "Blocked plan",
		FirstDueDate:      billing.NewDate(2024, time.February, 10),
		CadenceMonths:     1,
		InstallmentCount:  6,
		InstallmentAmount: amount(350),
	}

	_, err := billing.GeneratePlan(testClient(), spec, existing, clock)
	var conflict *billing.ScheduleConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ScheduleConflictError, got %v", err)
	}
	if conflict.SuggestedStart != nil {
		t.Errorf("expected no suggestion, got %v", conflict.SuggestedStart.Format("2006-01-02"))
	}
}

func TestGeneratePlan_CadenceSkipsOccupiedOffMonths(t *testing.T) {
	// GIVEN: An open charge in March and a bimonthly plan Feb/Apr/Jun
	// WHEN: Generating
	// THEN: March is not a planned month, so there is no conflict

	clock := billing.NewFixedClock(2024, time.January, 15)
	existing := []billing.Charge{openCharge("cli-1", billing.NewDate(2024, time.March, 10))}

	spec := billing.PlanSpec{
		Description:       "Bimonthly",
		FirstDueDate:      billing.NewDate(2024, time.February, 10),
		CadenceMonths:     2,
		InstallmentCount:  3,
		InstallmentAmount: amount(350),
	}

	charges, err := billing.GeneratePlan(testClient(), spec, existing, clock)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	wantMonths := []time.Month{time.February, time.April, time.June}
	for i, ch := range charges {
		if ch.DueDate.Month() != wantMonths[i] {
			t.Errorf("installment %d in %v, want %v", i+1, ch.DueDate.Month(), wantMonths[i])
		}
	}
}
