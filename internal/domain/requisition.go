package domain

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

type RequisitionStatus string

const (
	RequisitionDraft     RequisitionStatus = "draft"
	RequisitionOpen      RequisitionStatus = "open"
	RequisitionOnHold    RequisitionStatus = "on_hold"
	RequisitionFilled    RequisitionStatus = "filled"
	RequisitionCancelled RequisitionStatus = "cancelled"
)

// IsClosed reports whether the requisition no longer accepts pipeline changes.
func (s RequisitionStatus) IsClosed() bool {
	return s == RequisitionFilled || s == RequisitionCancelled
}

type Urgency string

const (
	UrgencyLow      Urgency = "low"
	UrgencyMedium   Urgency = "medium"
	UrgencyHigh     Urgency = "high"
	UrgencyCritical Urgency = "critical"
)

const weightTolerance = 1e-6

// ScoreWeights are the per-requisition weights of the composite score.
type ScoreWeights struct {
	Culture float64 `json:"culture" mapstructure:"culture"`
	Skills  float64 `json:"skills" mapstructure:"skills"`
	Resume  float64 `json:"resume" mapstructure:"resume"`
}

// DefaultWeights is the 30/40/30 split used when a requisition sets none.
func DefaultWeights() ScoreWeights {
	return ScoreWeights{Culture: 0.30, Skills: 0.40, Resume: 0.30}
}

// IsZero reports whether no weight was provided at all.
func (w ScoreWeights) IsZero() bool {
	return w.Culture == 0 && w.Skills == 0 && w.Resume == 0
}

// Validate requires non-negative weights summing to 1.0.
func (w ScoreWeights) Validate() error {
	if w.Culture < 0 || w.Skills < 0 || w.Resume < 0 {
		return Invalid("weights", "weights must not be negative")
	}
	sum := w.Culture + w.Skills + w.Resume
	if math.Abs(sum-1) > weightTolerance {
		return Invalid("weights", "weights must sum to 1.0, got %.4f", sum)
	}
	return nil
}

type Requisition struct {
	ID                string            `json:"id"`
	TenantID          string            `json:"tenant_id"`
	Title             string            `json:"title"`
	Department        string            `json:"department,omitempty"`
	SalaryMin         decimal.Decimal   `json:"salary_min"`
	SalaryMax         decimal.Decimal   `json:"salary_max"`
	Currency          string            `json:"currency"`
	RequiredSkills    []string          `json:"required_skills"`
	PreferredSkills   []string          `json:"preferred_skills"`
	Weights           ScoreWeights      `json:"weights"`
	Urgency           Urgency           `json:"urgency"`
	NumberOfPositions int               `json:"number_of_positions"`
	PositionsFilled   int               `json:"positions_filled"`
	Status            RequisitionStatus `json:"status"`
	ClosedDate        *time.Time        `json:"closed_date,omitempty"`
	Version           int               `json:"version"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
}

// Validate checks write-time invariants.
func (r *Requisition) Validate() error {
	if r.TenantID == "" {
		return Invalid("tenant_id", "is required")
	}
	if r.Title == "" {
		return Invalid("title", "is required")
	}
	if r.NumberOfPositions < 1 {
		return Invalid("number_of_positions", "must be at least 1")
	}
	if r.PositionsFilled < 0 || r.PositionsFilled > r.NumberOfPositions {
		return Invalid("positions_filled", "must be between 0 and %d", r.NumberOfPositions)
	}
	if r.SalaryMin.IsNegative() || r.SalaryMax.IsNegative() {
		return Invalid("salary", "range must not be negative")
	}
	if !r.SalaryMax.IsZero() && r.SalaryMax.LessThan(r.SalaryMin) {
		return Invalid("salary", "max is below min")
	}
	return r.Weights.Validate()
}

// RecordHire counts one accepted offer and closes the requisition once full.
// It reports whether the requisition became filled.
func (r *Requisition) RecordHire(now time.Time) (bool, error) {
	if r.Status.IsClosed() {
		return false, &TransitionError{
			Entity:  "requisition",
			ID:      r.ID,
			Current: string(r.Status),
			Action:  "fill a position",
		}
	}
	r.PositionsFilled++
	r.UpdatedAt = now
	if r.PositionsFilled >= r.NumberOfPositions {
		r.Status = RequisitionFilled
		closed := now
		r.ClosedDate = &closed
		return true, nil
	}
	return false, nil
}

func (r Requisition) Clone() Requisition {
	r.RequiredSkills = cloneStrings(r.RequiredSkills)
	r.PreferredSkills = cloneStrings(r.PreferredSkills)
	r.ClosedDate = cloneTime(r.ClosedDate)
	return r
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func cloneFloat(in *float64) *float64 {
	if in == nil {
		return nil
	}
	v := *in
	return &v
}

func cloneTime(in *time.Time) *time.Time {
	if in == nil {
		return nil
	}
	v := *in
	return &v
}
