/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model (decimal amounts, time.Time dates) from the
  external API contract: amounts cross the wire as float64 plus a
  pre-formatted display string, dates as YYYY-MM-DD.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

VALIDATION:
  Validation is done in handlers and the billing package, not in DTOs.
  DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - billing/types.go: The domain model behind them
*/
package api

import (
	"time"

	"github.com/vinculo/billing-engine/billing"
)

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

// ClientDTO represents a client in API responses.
type ClientDTO struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	BillingDay string `json:"billing_day"`
	Rate       string `json:"rate"`
	Status     string `json:"status"`
	CreatedAt  string `json:"created_at"`
}

// CreateClientRequest is the request to enroll a client.
type CreateClientRequest struct {
	ID         string `json:"id,omitempty"`
	Name       string `json:"name"`
	BillingDay string `json:"billing_day"`
	Rate       string `json:"rate"`
	CreatedAt  string `json:"created_at,omitempty"` // defaults to today
}

// UpdateClientStatusRequest transitions a client's lifecycle state.
type UpdateClientStatusRequest struct {
	Status string `json:"status"`
}

// ClientStatusResponse reports a transition and its billing side effect.
type ClientStatusResponse struct {
	Client          ClientDTO `json:"client"`
	ReleasedCharges int       `json:"released_charges"`
}

// ChargeDTO represents a charge in API responses.
type ChargeDTO struct {
	ID                string   `json:"id,omitempty"`
	ClientID          string   `json:"client_id"`
	ClientName        string   `json:"client_name,omitempty"`
	DueDate           string   `json:"due_date"`
	Amount            float64  `json:"amount"`
	AmountDisplay     string   `json:"amount_display"`
	Status            string   `json:"status"`
	PaidDate          string   `json:"paid_date,omitempty"`
	Notes             string   `json:"notes,omitempty"`
	PenaltyPercent    *float64 `json:"penalty_percent,omitempty"`
	InstallmentNumber int      `json:"installment_number,omitempty"`
	InstallmentTotal  int      `json:"installment_total,omitempty"`
	Forecast          bool     `json:"forecast,omitempty"`
	DueDateDrift      bool     `json:"due_date_drift,omitempty"`
}

// CreateChargeRequest is the request to record a standalone charge.
type CreateChargeRequest struct {
	ClientID string `json:"client_id"`
	DueDate  string `json:"due_date"`
	Amount   string `json:"amount"` // localized currency text, lenient
	Notes    string `json:"notes,omitempty"`
}

// UpdateChargeRequest edits a charge's due date, amount, or notes.
// Empty fields are left unchanged.
type UpdateChargeRequest struct {
	DueDate string `json:"due_date,omitempty"`
	Amount  string `json:"amount,omitempty"`
	Notes   string `json:"notes,omitempty"`
}

// PayChargeRequest settles a charge; PaidDate defaults to today.
type PayChargeRequest struct {
	PaidDate string `json:"paid_date,omitempty"`
}

// PenaltyRequest applies a percentage surcharge.
type PenaltyRequest struct {
	Percent float64 `json:"percent"`
}

// CreatePlanRequest generates a batch of installment charges.
type CreatePlanRequest struct {
	Description       string  `json:"description"`
	FirstDueDate      string  `json:"first_due_date"`
	CadenceMonths     int     `json:"cadence_months"`
	InstallmentCount  int     `json:"installment_count"`
	InstallmentAmount float64 `json:"installment_amount"`
}

// PlanResponse lists the charges a plan created.
type PlanResponse struct {
	Created []ChargeDTO `json:"created"`
}

// ConflictResponse is returned with HTTP 409 when a plan is refused.
type ConflictResponse struct {
	Error          string `json:"error"`
	Code           string `json:"code"`
	ConflictMonth  string `json:"conflict_month"`
	SuggestedStart string `json:"suggested_start,omitempty"`
}

// DashboardResponse is the projected billing view of a reporting window.
type DashboardResponse struct {
	From   string      `json:"from"`
	To     string      `json:"to"`
	Rows   []ChargeDTO `json:"rows"`
	Totals TotalsDTO   `json:"totals"`
}

// TotalsDTO aggregates a dashboard window by status.
type TotalsDTO struct {
	Paid    float64 `json:"paid"`
	Overdue float64 `json:"overdue"`
	Open    float64 `json:"open"`
}

// ScenarioDTO represents a demo dataset.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// LoadScenarioRequest selects a demo dataset to load.
type LoadScenarioRequest struct {
	ID string `json:"id"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toClientDTO(c billing.Client) ClientDTO {
	return ClientDTO{
		ID:         c.ID,
		Name:       c.Name,
		BillingDay: c.BillingDay,
		Rate:       c.Rate,
		Status:     string(c.Status),
		CreatedAt:  c.CreatedAt.Format("2006-01-02"),
	}
}

func toChargeDTO(ch billing.Charge) ChargeDTO {
	amount, _ := ch.Amount.Float64()
	dto := ChargeDTO{
		ID:                ch.ID,
		ClientID:          ch.ClientID,
		ClientName:        ch.ClientName,
		DueDate:           ch.DueDate.Format("2006-01-02"),
		Amount:            amount,
		AmountDisplay:     billing.FormatAmount(ch.Amount),
		Status:            string(ch.Status),
		Notes:             ch.Notes,
		InstallmentNumber: ch.InstallmentNumber,
		InstallmentTotal:  ch.InstallmentTotal,
	}
	if ch.PaidDate != nil {
		dto.PaidDate = ch.PaidDate.Format("2006-01-02")
	}
	if ch.PenaltyPercent != nil {
		p, _ := ch.PenaltyPercent.Float64()
		dto.PenaltyPercent = &p
	}
	return dto
}

func toChargeDTOs(charges []billing.Charge) []ChargeDTO {
	dtos := make([]ChargeDTO, len(charges))
	for i, ch := range charges {
		dtos[i] = toChargeDTO(ch)
	}
	return dtos
}

func toProjectedDTO(row billing.ProjectedCharge) ChargeDTO {
	dto := toChargeDTO(row.Charge)
	dto.Forecast = row.Forecast
	dto.DueDateDrift = row.DueDateDrift
	return dto
}

func parseDate(s string) (time.Time, bool) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, false
	}
	return billing.NormalizeDate(t), true
}
