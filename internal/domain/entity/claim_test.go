package entity

import (
	"testing"
	"time"

	"github.com/garyjia/claimdesk/internal/domain/workflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClaim(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	claim := NewClaim("J. Smith", 10, 25.5, "March tutorials", `C:\a.pdf`, now)

	require.NotNil(t, claim)
	assert.NotEmpty(t, claim.ID)
	assert.Equal(t, -1, claim.Position, "position is assigned by the store")
	assert.Equal(t, 255.0, claim.TotalAmount)
	assert.Equal(t, workflow.StatePending, claim.Status)
	assert.Equal(t, "Pending", claim.StatusLabel())
	assert.Equal(t, `C:\a.pdf`, claim.DocumentPath)
	assert.Equal(t, now, claim.SubmittedAt)
	assert.Equal(t, now, claim.UpdatedAt)

	other := NewClaim("J. Smith", 10, 25.5, "", `C:\a.pdf`, now)
	assert.NotEqual(t, claim.ID, other.ID)
}

func TestComputeTotal(t *testing.T) {
	tests := []struct {
		name  string
		hours float64
		rate  float64
		want  float64
	}{
		{"whole numbers", 8, 100, 800},
		{"fractional rate", 10, 25.5, 255},
		{"float artefacts removed", 0.1, 3, 0.3},
		{"sub-cent hours kept", 1.333, 1, 1.333},
		{"sub-cent product kept", 0.5, 0.01, 0.005},
		{"four decimal places", 7.25, 13.33, 96.6425},
		{"not whole cents", 1.333, 3, 3.999},
		{"zero hours", 0, 450, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ComputeTotal(tt.hours, tt.rate))
		})
	}
}

func TestClaim_Clone(t *testing.T) {
	claim := NewClaim("A", 1, 2, "", "/a.pdf", time.Now())
	copied := claim.Clone()

	copied.Status = workflow.StateApproved
	assert.Equal(t, workflow.StatePending, claim.Status)

	var missing *Claim
	assert.Nil(t, missing.Clone())
}

func TestClaimFilter_Matches(t *testing.T) {
	claim := NewClaim("A", 1, 2, "", "/a.pdf", time.Now())

	assert.True(t, ClaimFilter{}.Matches(claim))
	assert.True(t, ClaimFilter{Status: workflow.StatePending}.Matches(claim))
	assert.False(t, ClaimFilter{Status: workflow.StateApproved}.Matches(claim))
}

func TestSummarize(t *testing.T) {
	now := time.Now()
	a := NewClaim("A", 10, 25.5, "", "/a.pdf", now)
	b := NewClaim("B", 2, 0.1, "", "/b.pdf", now)
	c := NewClaim("C", 3, 0.1, "", "/c.pdf", now)
	c.Status = workflow.StateApproved

	summary := Summarize([]*Claim{a, b, c})

	assert.Equal(t, 3, summary.Count)
	assert.Equal(t, 255.5, summary.Total)
	assert.Equal(t, StatusSummary{Count: 2, Total: 255.2}, summary.ByStatus[workflow.StatePending])
	assert.Equal(t, StatusSummary{Count: 1, Total: 0.3}, summary.ByStatus[workflow.StateApproved])
	assert.Equal(t, StatusSummary{}, summary.ByStatus[workflow.StateRejected])
}

func TestHasAllowedExtension(t *testing.T) {
	allowed := DefaultDocumentExtensions()

	tests := []struct {
		path string
		want bool
	}{
		{"/claims/timesheet.pdf", true},
		{"/claims/TIMESHEET.PDF", true},
		{`C:\claims\hours.docx`, true},
		{"hours.xlsx", true},
		{"hours.doc", false},
		{"hours.xls", false},
		{"hours", false},
		{"archive.pdf.zip", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, HasAllowedExtension(tt.path, allowed))
		})
	}
}
