package billing_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vinculo/billing-engine/billing"
)

func TestApplyPenalty_TenPercent(t *testing.T) {
	// GIVEN: An overdue charge of 100.00
	// WHEN: A 10% late fee is applied
	// THEN: The amount becomes 110.00 and the percent is recorded

	clock := billing.NewFixedClock(2024, time.July, 1)
	ch := openCharge("cli-1", billing.NewDate(2024, time.June, 10))
	ch.Amount = amount(100)

	got, err := billing.ApplyPenalty(ch, decimal.NewFromInt(10), clock)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Amount.StringFixed(2) != "110.00" {
		t.Errorf("amount %v, want 110.00", got.Amount)
	}
	if got.PenaltyPercent == nil || !got.PenaltyPercent.Equal(decimal.NewFromInt(10)) {
		t.Errorf("penalty percent %v, want 10", got.PenaltyPercent)
	}
	if !strings.Contains(got.Notes, "10% late fee applied on 2024-07-01") {
		t.Errorf("note %q missing late fee entry", got.Notes)
	}
}

func TestApplyPenalty_RecomputesFromCurrentAmount(t *testing.T) {
	// GIVEN: A charge already carrying a 10% penalty (100.00 -> 110.00)
	// WHEN: A further 5% is applied
	// THEN: The result is 115.50 and PenaltyPercent reflects the latest rate

	clock := billing.NewFixedClock(2024, time.July, 1)
	ch := openCharge("cli-1", billing.NewDate(2024, time.June, 10))
	ch.Amount = amount(100)

	once, err := billing.ApplyPenalty(ch, decimal.NewFromInt(10), clock)
	if err != nil {
		t.Fatalf("first application: %v", err)
	}
	twice, err := billing.ApplyPenalty(once, decimal.NewFromInt(5), clock)
	if err != nil {
		t.Fatalf("second application: %v", err)
	}

	if twice.Amount.StringFixed(2) != "115.50" {
		t.Errorf("amount %v, want 115.50", twice.Amount)
	}
	if twice.PenaltyPercent == nil || !twice.PenaltyPercent.Equal(decimal.NewFromInt(5)) {
		t.Errorf("penalty percent %v, want 5", twice.PenaltyPercent)
	}
	if strings.Count(twice.Notes, "late fee applied") != 2 {
		t.Errorf("notes should accumulate both applications:\n%s", twice.Notes)
	}
}

func TestApplyPenalty_RoundsToCents(t *testing.T) {
	clock := billing.NewFixedClock(2024, time.July, 1)
	ch := openCharge("cli-1", billing.NewDate(2024, time.June, 10))
	ch.Amount = amount(333.33)

	got, err := billing.ApplyPenalty(ch, decimal.NewFromInt(2), clock)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 333.33 * 1.02 = 339.9966 -> 340.00
	if got.Amount.StringFixed(2) != "340.00" {
		t.Errorf("amount %v, want 340.00", got.Amount)
	}
}

func TestApplyPenalty_RejectsNonPositivePercent(t *testing.T) {
	clock := billing.NewFixedClock(2024, time.July, 1)
	ch := openCharge("cli-1", billing.NewDate(2024, time.June, 10))
	ch.Amount = amount(100)

	for _, pct := range []decimal.Decimal{decimal.Zero, decimal.NewFromInt(-5)} {
		_, err := billing.ApplyPenalty(ch, pct, clock)
		if !errors.Is(err, billing.ErrValidation) {
			t.Errorf("percent %v: expected validation error, got %v", pct, err)
		}
	}
}
