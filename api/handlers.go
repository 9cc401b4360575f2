/*
handlers.go - HTTP API handlers for the billing back-office

PURPOSE:
  Exposes the billing engine via REST API. Handles HTTP request/response,
  JSON serialization, and delegates to the billing package.

ENDPOINTS:
  Clients:
    GET    /api/clients                    List the roster
    POST   /api/clients                    Enroll a client
    GET    /api/clients/{id}               Get client details
    PUT    /api/clients/{id}/status        Transition lifecycle state
    GET    /api/clients/{id}/charges       Client's charge history
    POST   /api/clients/{id}/plans         Generate an installment plan

  Charges:
    GET    /api/charges                    List charges (?client_id=)
    POST   /api/charges                    Record a standalone charge
    PUT    /api/charges/{id}               Edit due date/amount/notes
    POST   /api/charges/{id}/pay           Mark paid
    POST   /api/charges/{id}/unpay         Revert to unpaid
    POST   /api/charges/{id}/penalty       Apply a late fee

  Dashboard:
    GET    /api/dashboard                  Period projection (?from=&to=)
    GET    /api/dashboard/export           XLSX download of the projection

  Scenarios:
    GET    /api/scenarios                  List demo datasets
    POST   /api/scenarios/load             Load a demo dataset

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Client or charge not found
  - 409: Schedule conflict (with conflicting month + suggested start)
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
  - billing: The engine everything delegates to
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/vinculo/billing-engine/billing"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Store is everything the handlers need from persistence.
type Store interface {
	billing.ChargeStore
	billing.ClientStore

	// Reset drops all data. Used by the demo scenario loader.
	Reset(ctx context.Context) error
}

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store Store
	Clock billing.Clock

	engine *billing.ProjectionEngine

	// Track currently loaded demo scenario
	currentScenario string
}

// NewHandler creates a handler over the given store. A nil clock means the
// system clock.
func NewHandler(store Store, clock billing.Clock) *Handler {
	if clock == nil {
		clock = billing.SystemClock{}
	}
	return &Handler{
		Store:  store,
		Clock:  clock,
		engine: &billing.ProjectionEngine{Clock: clock},
	}
}

// =============================================================================
// CLIENT HANDLERS
// =============================================================================

// ListClients returns the roster; ?billable=true keeps only clients that
// still accrue charges (active or in-progress).
func (h *Handler) ListClients(w http.ResponseWriter, r *http.Request) {
	clients, err := h.Store.ListClients(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list clients", err)
		return
	}

	billableOnly := r.URL.Query().Get("billable") == "true"
	dtos := make([]ClientDTO, 0, len(clients))
	for _, c := range clients {
		if billableOnly && !c.Billable() {
			continue
		}
		dtos = append(dtos, toClientDTO(c))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetClient returns a single client.
func (h *Handler) GetClient(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	client, err := h.Store.GetClient(r.Context(), id)
	if err != nil {
		h.writeDomainError(w, "Failed to get client", err)
		return
	}
	writeJSON(w, http.StatusOK, toClientDTO(*client))
}

// CreateClient enrolls a new client.
func (h *Handler) CreateClient(w http.ResponseWriter, r *http.Request) {
	var req CreateClientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required", nil)
		return
	}

	createdAt := h.Clock.Today()
	if req.CreatedAt != "" {
		d, ok := parseDate(req.CreatedAt)
		if !ok {
			writeError(w, http.StatusBadRequest, "Invalid created_at format (use YYYY-MM-DD)", nil)
			return
		}
		createdAt = d
	}

	client := billing.Client{
		ID:         req.ID,
		Name:       req.Name,
		BillingDay: req.BillingDay,
		Rate:       req.Rate,
		CreatedAt:  createdAt,
		Status:     billing.ClientActive,
	}
	if client.ID == "" {
		client.ID = uuid.NewString()
	}

	if err := h.Store.SaveClient(r.Context(), client); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create client", err)
		return
	}
	writeJSON(w, http.StatusCreated, toClientDTO(client))
}

// UpdateClientStatus transitions a client's lifecycle state. Entering
// blocked/inactive releases the client's open charges.
func (h *Handler) UpdateClientStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req UpdateClientStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	client, released, err := billing.TransitionClientStatus(
		r.Context(), h.Store, h.Store, id, billing.ClientStatus(req.Status))
	if err != nil {
		h.writeDomainError(w, "Failed to update client status", err)
		return
	}

	writeJSON(w, http.StatusOK, ClientStatusResponse{
		Client:          toClientDTO(*client),
		ReleasedCharges: released,
	})
}

// ListClientCharges returns a client's charge history, due date ascending.
func (h *Handler) ListClientCharges(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if _, err := h.Store.GetClient(r.Context(), id); err != nil {
		h.writeDomainError(w, "Failed to get client", err)
		return
	}

	charges, err := h.Store.ListChargesByClient(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list charges", err)
		return
	}

	sort.Slice(charges, func(i, j int) bool {
		return charges[i].DueDate.Before(charges[j].DueDate)
	})
	writeJSON(w, http.StatusOK, toChargeDTOs(charges))
}

// =============================================================================
// PLAN HANDLERS
// =============================================================================

// CreatePlan generates and persists an installment plan for a client.
// A schedule conflict refuses the whole plan with 409 before anything is
// persisted. Persistence itself is sequential with no rollback: a failure
// partway leaves earlier installments created, and the caller re-fetches.
func (h *Handler) CreatePlan(w http.ResponseWriter, r *http.Request) {
	clientID := chi.URLParam(r, "id")

	var req CreatePlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	firstDue, ok := parseDate(req.FirstDueDate)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid first_due_date format (use YYYY-MM-DD)", nil)
		return
	}

	client, err := h.Store.GetClient(r.Context(), clientID)
	if err != nil {
		h.writeDomainError(w, "Failed to get client", err)
		return
	}

	existing, err := h.Store.ListChargesByClient(r.Context(), clientID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list charges", err)
		return
	}

	spec := billing.PlanSpec{
		Description:       req.Description,
		FirstDueDate:      firstDue,
		CadenceMonths:     req.CadenceMonths,
		InstallmentCount:  req.InstallmentCount,
		InstallmentAmount: decimal.NewFromFloat(req.InstallmentAmount),
	}

	charges, err := billing.GeneratePlan(*client, spec, existing, h.Clock)
	if err != nil {
		h.writeDomainError(w, "Failed to generate plan", err)
		return
	}

	for i, ch := range charges {
		if err := h.Store.SaveCharge(r.Context(), ch); err != nil {
			log.Printf("[Plan] persist failed after %d of %d installments for client %s: %v",
				i, len(charges), clientID, err)
			writeError(w, http.StatusInternalServerError, "Failed to persist plan", err)
			return
		}
	}

	writeJSON(w, http.StatusCreated, PlanResponse{Created: toChargeDTOs(charges)})
}

// =============================================================================
// CHARGE HANDLERS
// =============================================================================

// ListCharges returns all charges, optionally filtered by ?client_id=.
func (h *Handler) ListCharges(w http.ResponseWriter, r *http.Request) {
	var (
		charges []billing.Charge
		err     error
	)
	if clientID := r.URL.Query().Get("client_id"); clientID != "" {
		charges, err = h.Store.ListChargesByClient(r.Context(), clientID)
	} else {
		charges, err = h.Store.ListCharges(r.Context())
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list charges", err)
		return
	}

	sort.Slice(charges, func(i, j int) bool {
		return charges[i].DueDate.Before(charges[j].DueDate)
	})
	writeJSON(w, http.StatusOK, toChargeDTOs(charges))
}

// CreateCharge records a standalone charge. This is also how a forecast row
// from the dashboard becomes real: posting it here persists it.
func (h *Handler) CreateCharge(w http.ResponseWriter, r *http.Request) {
	var req CreateChargeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	dueDate, ok := parseDate(req.DueDate)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid due_date format (use YYYY-MM-DD)", nil)
		return
	}

	client, err := h.Store.GetClient(r.Context(), req.ClientID)
	if err != nil {
		h.writeDomainError(w, "Failed to get client", err)
		return
	}

	charge := billing.Charge{
		ID:         uuid.NewString(),
		ClientID:   client.ID,
		ClientName: client.Name,
		DueDate:    dueDate,
		Amount:     billing.Round2(billing.ParseAmount(req.Amount)),
		Status:     billing.ResolveStatus(dueDate, false, h.Clock),
		Notes:      req.Notes,
		CreatedAt:  h.Clock.Today(),
	}

	if err := h.Store.SaveCharge(r.Context(), charge); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create charge", err)
		return
	}
	writeJSON(w, http.StatusCreated, toChargeDTO(charge))
}

// UpdateCharge edits a charge's due date, amount, or notes. Unpaid charges
// get their status re-resolved against the (possibly new) due date.
func (h *Handler) UpdateCharge(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req UpdateChargeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	charge, err := h.Store.GetCharge(r.Context(), id)
	if err != nil {
		h.writeDomainError(w, "Failed to get charge", err)
		return
	}

	if req.DueDate != "" {
		dueDate, ok := parseDate(req.DueDate)
		if !ok {
			writeError(w, http.StatusBadRequest, "Invalid due_date format (use YYYY-MM-DD)", nil)
			return
		}
		charge.DueDate = dueDate
	}
	if req.Amount != "" {
		charge.Amount = billing.Round2(billing.ParseAmount(req.Amount))
	}
	if req.Notes != "" {
		charge.Notes = req.Notes
	}
	if charge.Status != billing.StatusPaid {
		charge.Status = billing.ResolveStatus(charge.DueDate, false, h.Clock)
	}

	if err := h.Store.UpdateCharge(r.Context(), *charge); err != nil {
		h.writeDomainError(w, "Failed to update charge", err)
		return
	}
	writeJSON(w, http.StatusOK, toChargeDTO(*charge))
}

// PayCharge marks a charge as paid; paid_date defaults to today.
func (h *Handler) PayCharge(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req PayChargeRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body", err)
			return
		}
	}

	paidDate := h.Clock.Today()
	if req.PaidDate != "" {
		d, ok := parseDate(req.PaidDate)
		if !ok {
			writeError(w, http.StatusBadRequest, "Invalid paid_date format (use YYYY-MM-DD)", nil)
			return
		}
		paidDate = d
	}

	charge, err := h.Store.GetCharge(r.Context(), id)
	if err != nil {
		h.writeDomainError(w, "Failed to get charge", err)
		return
	}

	updated := charge.MarkPaid(paidDate)
	if err := h.Store.UpdateCharge(r.Context(), updated); err != nil {
		h.writeDomainError(w, "Failed to update charge", err)
		return
	}
	writeJSON(w, http.StatusOK, toChargeDTO(updated))
}

// UnpayCharge reverts a settled charge to its date-resolved status.
func (h *Handler) UnpayCharge(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	charge, err := h.Store.GetCharge(r.Context(), id)
	if err != nil {
		h.writeDomainError(w, "Failed to get charge", err)
		return
	}

	updated := charge.MarkUnpaid(h.Clock)
	if err := h.Store.UpdateCharge(r.Context(), updated); err != nil {
		h.writeDomainError(w, "Failed to update charge", err)
		return
	}
	writeJSON(w, http.StatusOK, toChargeDTO(updated))
}

// ApplyPenalty applies a percentage late fee to a charge.
func (h *Handler) ApplyPenalty(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req PenaltyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	charge, err := h.Store.GetCharge(r.Context(), id)
	if err != nil {
		h.writeDomainError(w, "Failed to get charge", err)
		return
	}

	updated, err := billing.ApplyPenalty(*charge, decimal.NewFromFloat(req.Percent), h.Clock)
	if err != nil {
		h.writeDomainError(w, "Failed to apply penalty", err)
		return
	}

	if err := h.Store.UpdateCharge(r.Context(), updated); err != nil {
		h.writeDomainError(w, "Failed to update charge", err)
		return
	}
	writeJSON(w, http.StatusOK, toChargeDTO(updated))
}

// =============================================================================
// DASHBOARD
// =============================================================================

// Dashboard returns the projected billing view of a reporting window.
// GET /api/dashboard?from=YYYY-MM-DD&to=YYYY-MM-DD (defaults to this month)
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	rows, window, err := h.projectWindow(r)
	if err != nil {
		h.writeDomainError(w, "Failed to project dashboard", err)
		return
	}

	dtos := make([]ChargeDTO, len(rows))
	var totals TotalsDTO
	for i, row := range rows {
		dtos[i] = toProjectedDTO(row)
		amount, _ := row.Amount.Float64()
		switch row.Status {
		case billing.StatusPaid:
			totals.Paid += amount
		case billing.StatusOverdue:
			totals.Overdue += amount
		default:
			totals.Open += amount
		}
	}

	writeJSON(w, http.StatusOK, DashboardResponse{
		From:   window.Start.Format("2006-01-02"),
		To:     window.End.Format("2006-01-02"),
		Rows:   dtos,
		Totals: totals,
	})
}

// projectWindow parses the window query, runs the projection, and sorts the
// rows by due date for display. Due-date drift is logged here, once per row.
func (h *Handler) projectWindow(r *http.Request) ([]billing.ProjectedCharge, billing.Period, error) {
	window := billing.CurrentMonth(h.Clock)
	from, to := r.URL.Query().Get("from"), r.URL.Query().Get("to")
	if from != "" || to != "" {
		start, okFrom := parseDate(from)
		end, okTo := parseDate(to)
		if !okFrom || !okTo {
			return nil, window, &billing.ValidationError{
				Field: "from/to", Message: "both bounds required as YYYY-MM-DD",
			}
		}
		window = billing.NewPeriod(start, end)
	}

	clients, err := h.Store.ListClients(r.Context())
	if err != nil {
		return nil, window, err
	}
	charges, err := h.Store.ListCharges(r.Context())
	if err != nil {
		return nil, window, err
	}

	rows, err := h.engine.Project(billing.ProjectionInput{
		Clients: clients,
		Charges: charges,
		Window:  &window,
	})
	if err != nil {
		return nil, window, err
	}

	for _, row := range rows {
		if row.DueDateDrift {
			log.Printf("[Dashboard] due-date drift for client %s: stored %s, billing day gives %s",
				row.ClientID,
				row.StoredDueDate.Format("2006-01-02"),
				row.DueDate.Format("2006-01-02"))
		}
	}

	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].DueDate.Equal(rows[j].DueDate) {
			return rows[i].DueDate.Before(rows[j].DueDate)
		}
		return rows[i].ClientName < rows[j].ClientName
	})
	return rows, window, nil
}

// =============================================================================
// HELPERS
// =============================================================================

func (h *Handler) writeDomainError(w http.ResponseWriter, message string, err error) {
	var conflict *billing.ScheduleConflictError
	if errors.As(err, &conflict) {
		resp := ConflictResponse{
			Error:         conflict.Error(),
			Code:          "schedule_conflict",
			ConflictMonth: conflict.Month.String(),
		}
		if conflict.SuggestedStart != nil {
			resp.SuggestedStart = conflict.SuggestedStart.Format("2006-01-02")
		}
		writeJSON(w, http.StatusConflict, resp)
		return
	}

	switch {
	case billing.IsNotFound(err):
		writeError(w, http.StatusNotFound, message, err)
	case billing.IsClientError(err):
		writeError(w, http.StatusBadRequest, message, err)
	default:
		writeError(w, http.StatusInternalServerError, message, err)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
