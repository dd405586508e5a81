package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OfferStatus string

const (
	OfferDraft           OfferStatus = "draft"
	OfferPendingApproval OfferStatus = "pending_approval"
	OfferApproved        OfferStatus = "approved"
	OfferSent            OfferStatus = "sent"
	OfferNegotiating     OfferStatus = "negotiating"
	OfferAccepted        OfferStatus = "accepted"
	OfferRejected        OfferStatus = "rejected"
	OfferExpired         OfferStatus = "expired"
	OfferWithdrawn       OfferStatus = "withdrawn"
)

func (s OfferStatus) IsTerminal() bool {
	switch s {
	case OfferAccepted, OfferRejected, OfferExpired, OfferWithdrawn:
		return true
	}
	return false
}

// IsActive is the complement of IsTerminal; a candidate holds at most one active offer.
func (s OfferStatus) IsActive() bool { return !s.IsTerminal() }

// Terms is the negotiable part of an offer.
type Terms struct {
	Salary    decimal.Decimal `json:"salary"`
	Bonus     decimal.Decimal `json:"bonus"`
	Equity    decimal.Decimal `json:"equity"`
	Currency  string          `json:"currency"`
	StartDate *time.Time      `json:"start_date,omitempty"`
}

// Snapshot is one entry of an offer's negotiation history.
type Snapshot struct {
	Version    int         `json:"version"`
	Status     OfferStatus `json:"status"`
	Terms      Terms       `json:"terms"`
	Note       string      `json:"note,omitempty"`
	RecordedAt time.Time   `json:"recorded_at"`
}

type Offer struct {
	ID                 string      `json:"id"`
	TenantID           string      `json:"tenant_id"`
	CandidateID        string      `json:"candidate_id"`
	RequisitionID      string      `json:"requisition_id"`
	Terms              Terms       `json:"terms"`
	Status             OfferStatus `json:"status"`
	Version            int         `json:"version"`
	SentDate           *time.Time  `json:"sent_date,omitempty"`
	ExpiryDate         *time.Time  `json:"expiry_date,omitempty"`
	RespondedAt        *time.Time  `json:"responded_at,omitempty"`
	NegotiationHistory []Snapshot  `json:"negotiation_history"`
	Notes              string      `json:"notes,omitempty"`
	CreatedAt          time.Time   `json:"created_at"`
	UpdatedAt          time.Time   `json:"updated_at"`
}

// Validate checks the terms; money is kept at two decimal places.
func (t Terms) Validate() error {
	if !t.Salary.IsPositive() {
		return Invalid("salary", "must be positive")
	}
	if t.Bonus.IsNegative() {
		return Invalid("bonus", "must not be negative")
	}
	if t.Equity.IsNegative() {
		return Invalid("equity", "must not be negative")
	}
	if t.Currency == "" {
		return Invalid("currency", "is required")
	}
	return nil
}

// Normalize rounds money to cents.
func (t Terms) Normalize() Terms {
	t.Salary = t.Salary.Round(2)
	t.Bonus = t.Bonus.Round(2)
	t.Equity = t.Equity.Round(2)
	return t
}

func (t Terms) Clone() Terms {
	t.StartDate = cloneTime(t.StartDate)
	return t
}

func (o Offer) Clone() Offer {
	o.Terms = o.Terms.Clone()
	o.SentDate = cloneTime(o.SentDate)
	o.ExpiryDate = cloneTime(o.ExpiryDate)
	o.RespondedAt = cloneTime(o.RespondedAt)
	if o.NegotiationHistory != nil {
		h := make([]Snapshot, len(o.NegotiationHistory))
		for i, s := range o.NegotiationHistory {
			s.Terms = s.Terms.Clone()
			h[i] = s
		}
		o.NegotiationHistory = h
	}
	return o
}
