/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built scenarios that populate the database with realistic
	data for testing and demos. Each scenario creates clients and charges
	that demonstrate specific billing situations.

AVAILABLE SCENARIOS:

	agency-basic:  Three active clients with mixed paid/open charges
	overdue-mix:   Overdue charges, an applied penalty, and a blocked client

HOW SCENARIOS WORK:
 1. Reset database (clear all data)
 2. Create clients
 3. Create charges relative to today, so statuses come out right
    regardless of when the scenario is loaded

USAGE VIA API:

	POST /api/scenarios/load
	{"id": "overdue-mix"}

NOTE:

	Scenarios reset the database. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: ListScenarios, LoadScenario live here as methods
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/vinculo/billing-engine/billing"
)

// =============================================================================
// SCENARIO CATALOG
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "agency-basic",
		Name:        "Agency basics",
		Description: "Three active clients with mixed paid and open charges",
	},
	{
		ID:          "overdue-mix",
		Name:        "Overdue mix",
		Description: "Overdue charges, an applied penalty, and a blocked client",
	},
}

// ListScenarios returns the demo catalog.
// GET /api/scenarios
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"scenarios": scenarios,
		"current":   h.currentScenario,
	})
}

// LoadScenario resets the database and loads a demo dataset.
// POST /api/scenarios/load
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	ctx := r.Context()
	if err := h.Store.Reset(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}

	var err error
	switch req.ID {
	case "agency-basic":
		err = h.loadAgencyBasic(ctx)
	case "overdue-mix":
		err = h.loadOverdueMix(ctx)
	default:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Unknown scenario: %s", req.ID), nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load scenario", err)
		return
	}

	h.currentScenario = req.ID
	writeJSON(w, http.StatusOK, map[string]any{"loaded": req.ID})
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

func (h *Handler) loadAgencyBasic(ctx context.Context) error {
	today := h.Clock.Today()

	clients := []billing.Client{
		{ID: "cli-acme", Name: "Acme Ltda", BillingDay: "5", Rate: "R$ 350,00",
			CreatedAt: today.AddDate(0, -6, 0), Status: billing.ClientActive},
		{ID: "cli-vega", Name: "Vega Contabilidade", BillingDay: "15", Rate: "R$ 420,00",
			CreatedAt: today.AddDate(0, -3, 0), Status: billing.ClientActive},
		{ID: "cli-norte", Name: "Norte Engenharia", BillingDay: "28", Rate: "R$ 500,00",
			CreatedAt: today.AddDate(0, -1, 0), Status: billing.ClientInProgress},
	}
	for _, c := range clients {
		if err := h.Store.SaveClient(ctx, c); err != nil {
			return err
		}
	}

	// Last month paid, this month open for the two older clients.
	for _, c := range clients[:2] {
		day := billing.ParseBillingDay(c.BillingDay)
		lastMonth := billing.KeyOf(today).AddMonths(-1).Date(day)
		if err := h.seedCharge(ctx, c, lastMonth, true); err != nil {
			return err
		}
		thisMonth := billing.KeyOf(today).Date(day)
		if err := h.seedCharge(ctx, c, thisMonth, false); err != nil {
			return err
		}
	}
	return nil
}

func (h *Handler) loadOverdueMix(ctx context.Context) error {
	today := h.Clock.Today()

	late := billing.Client{ID: "cli-atlas", Name: "Atlas Log", BillingDay: "10",
		Rate: "R$ 380,00", CreatedAt: today.AddDate(0, -5, 0), Status: billing.ClientActive}
	blocked := billing.Client{ID: "cli-oeste", Name: "Oeste Filmes", BillingDay: "20",
		Rate: "R$ 300,00", CreatedAt: today.AddDate(0, -4, 0), Status: billing.ClientBlocked}
	for _, c := range []billing.Client{late, blocked} {
		if err := h.Store.SaveClient(ctx, c); err != nil {
			return err
		}
	}

	// Two months overdue for the late client, the older one with a penalty.
	day := billing.ParseBillingDay(late.BillingDay)
	twoBack := billing.KeyOf(today).AddMonths(-2).Date(day)
	if err := h.seedCharge(ctx, late, twoBack, false); err != nil {
		return err
	}
	oneBack := billing.KeyOf(today).AddMonths(-1).Date(day)
	if err := h.seedCharge(ctx, late, oneBack, false); err != nil {
		return err
	}

	charges, err := h.Store.ListChargesByClient(ctx, late.ID)
	if err != nil {
		return err
	}
	for _, ch := range charges {
		if !ch.DueDate.Equal(twoBack) {
			continue
		}
		penalized, err := billing.ApplyPenalty(ch, decimal.NewFromInt(10), h.Clock)
		if err != nil {
			return err
		}
		if err := h.Store.UpdateCharge(ctx, penalized); err != nil {
			return err
		}
	}
	return nil
}

func (h *Handler) seedCharge(ctx context.Context, c billing.Client, due time.Time, paid bool) error {
	ch := billing.Charge{
		ID:         uuid.NewString(),
		ClientID:   c.ID,
		ClientName: c.Name,
		DueDate:    due,
		Amount:     billing.Round2(billing.ParseAmount(c.Rate)),
		Status:     billing.ResolveStatus(due, paid, h.Clock),
		CreatedAt:  h.Clock.Today(),
	}
	if paid {
		ch = ch.MarkPaid(due)
	}
	return h.Store.SaveCharge(ctx, ch)
}
