package api

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vinculo/billing-engine/billing"
	"github.com/vinculo/billing-engine/billing/store"
)

func TestSweepMarksPastDueChargesOverdue(t *testing.T) {
	// GIVEN: Open charges on both sides of today, plus a settled one
	// WHEN: A sweep runs
	// THEN: Only the past-due open charge flips to overdue

	ctx := context.Background()
	mem := store.NewMemory()
	clock := billing.NewFixedClock(2024, time.June, 20)

	pastDue := billing.Charge{
		ID: "ch-past", ClientID: "cli-1",
		DueDate: billing.NewDate(2024, time.June, 10),
		Amount:  decimal.NewFromInt(350),
		Status:  billing.StatusOpen,
	}
	future := billing.Charge{
		ID: "ch-future", ClientID: "cli-1",
		DueDate: billing.NewDate(2024, time.July, 10),
		Amount:  decimal.NewFromInt(350),
		Status:  billing.StatusOpen,
	}
	paid := billing.Charge{
		ID: "ch-paid", ClientID: "cli-1",
		DueDate: billing.NewDate(2024, time.May, 10),
		Amount:  decimal.NewFromInt(350),
		Status:  billing.StatusOpen,
	}.MarkPaid(billing.NewDate(2024, time.May, 9))

	for _, ch := range []billing.Charge{pastDue, future, paid} {
		require.NoError(t, mem.SaveCharge(ctx, ch))
	}

	sweeper := NewOverdueSweeper(mem, clock)
	sweeper.Sweep()

	got, err := mem.GetCharge(ctx, "ch-past")
	require.NoError(t, err)
	assert.Equal(t, billing.StatusOverdue, got.Status)

	got, err = mem.GetCharge(ctx, "ch-future")
	require.NoError(t, err)
	assert.Equal(t, billing.StatusOpen, got.Status)

	got, err = mem.GetCharge(ctx, "ch-paid")
	require.NoError(t, err)
	assert.Equal(t, billing.StatusPaid, got.Status)
}

func TestSweepIsIdempotent(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	clock := billing.NewFixedClock(2024, time.June, 20)

	require.NoError(t, mem.SaveCharge(ctx, billing.Charge{
		ID: "ch-1", ClientID: "cli-1",
		DueDate: billing.NewDate(2024, time.June, 10),
		Amount:  decimal.NewFromInt(350),
		Status:  billing.StatusOpen,
	}))

	sweeper := NewOverdueSweeper(mem, clock)
	sweeper.Sweep()
	sweeper.Sweep() // second pass finds nothing to change

	got, err := mem.GetCharge(ctx, "ch-1")
	require.NoError(t, err)
	assert.Equal(t, billing.StatusOverdue, got.Status)
}
