package billing

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// PENALTY APPLICATION - Percentage surcharge on an overdue charge
// =============================================================================

var oneHundred = decimal.NewFromInt(100)

// ApplyPenalty recomputes a charge's amount with a percentage surcharge:
// amount <- round2(amount * (1 + percent/100)). It records the percent and
// appends a timestamped note.
//
// Re-application recomputes from the CURRENT (already-penalized) amount:
// 100.00 + 10% = 110.00, then a further 5% yields 115.50 with
// PenaltyPercent = 5. Callers pass the intended final percent, not a delta.
func ApplyPenalty(ch Charge, percent decimal.Decimal, clock Clock) (Charge, error) {
	if !percent.IsPositive() {
		return Charge{}, &ValidationError{Field: "percent", Message: "must be positive"}
	}

	factor := decimal.NewFromInt(1).Add(percent.Div(oneHundred))
	ch.Amount = Round2(ch.Amount.Mul(factor))
	p := percent
	ch.PenaltyPercent = &p

	note := fmt.Sprintf("%s%% late fee applied on %s",
		percent.String(), clock.Today().Format("2006-01-02"))
	if ch.Notes != "" {
		ch.Notes += "\n"
	}
	ch.Notes += note

	return ch, nil
}
