package entity

import (
	"time"

	"github.com/garyjia/claimdesk/internal/domain/workflow"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Claim is a single hourly-work payment request
type Claim struct {
	ID           string         `json:"id"`
	Position     int            `json:"position"`
	LecturerName string         `json:"lecturer_name"`
	HoursWorked  float64        `json:"hours_worked"`
	HourlyRate   float64        `json:"hourly_rate"`
	TotalAmount  float64        `json:"total_amount"`
	Notes        string         `json:"notes"`
	DocumentPath string         `json:"document_path"`
	Status       workflow.State `json:"status"`
	SubmittedAt  time.Time      `json:"submitted_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// NewClaim creates a pending claim; the total is fixed here and never recomputed
func NewClaim(lecturer string, hours, rate float64, notes, documentPath string, now time.Time) *Claim {
	return &Claim{
		ID:           uuid.NewString(),
		Position:     -1,
		LecturerName: lecturer,
		HoursWorked:  hours,
		HourlyRate:   rate,
		TotalAmount:  ComputeTotal(hours, rate),
		Notes:        notes,
		DocumentPath: documentPath,
		Status:       workflow.StatePending,
		SubmittedAt:  now,
		UpdatedAt:    now,
	}
}

// ComputeTotal multiplies hours by rate in decimal. The product is kept
// unrounded; cents only appear when the total is formatted for display.
func ComputeTotal(hours, rate float64) float64 {
	return decimal.NewFromFloat(hours).
		Mul(decimal.NewFromFloat(rate)).
		InexactFloat64()
}

// Clone returns a copy that callers may hold without seeing later mutations
func (c *Claim) Clone() *Claim {
	if c == nil {
		return nil
	}
	copied := *c
	return &copied
}

// StatusLabel returns the display form of the status
func (c *Claim) StatusLabel() string {
	return c.Status.Label()
}

// ClaimFilter narrows a claim listing
type ClaimFilter struct {
	Status workflow.State
}

// Matches reports whether claim passes the filter; a zero filter matches everything
func (f ClaimFilter) Matches(claim *Claim) bool {
	return f.Status == "" || claim.Status == f.Status
}

// StatusSummary aggregates claims sharing one status
type StatusSummary struct {
	Count int     `json:"count"`
	Total float64 `json:"total"`
}

// ClaimSummary aggregates the whole store
type ClaimSummary struct {
	Count    int                              `json:"count"`
	Total    float64                          `json:"total"`
	ByStatus map[workflow.State]StatusSummary `json:"by_status"`
}

// Summarize builds a ClaimSummary from claims, summing totals in decimal
func Summarize(claims []*Claim) ClaimSummary {
	totals := make(map[workflow.State]decimal.Decimal)
	counts := make(map[workflow.State]int)
	grand := decimal.Zero

	for _, claim := range claims {
		amount := decimal.NewFromFloat(claim.TotalAmount)
		totals[claim.Status] = totals[claim.Status].Add(amount)
		counts[claim.Status]++
		grand = grand.Add(amount)
	}

	summary := ClaimSummary{
		Count:    len(claims),
		Total:    grand.InexactFloat64(),
		ByStatus: make(map[workflow.State]StatusSummary, len(workflow.States())),
	}
	for _, state := range workflow.States() {
		summary.ByStatus[state] = StatusSummary{
			Count: counts[state],
			Total: totals[state].InexactFloat64(),
		}
	}
	return summary
}
