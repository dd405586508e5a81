// Package offer enforces the offer lifecycle.
package offer

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"hiring-pipeline/internal/domain"
)

// DefaultValidity is how long a sent offer stays open.
const DefaultValidity = 7 * 24 * time.Hour

type Action string

const (
	ActionUpdate    Action = "update"
	ActionSubmit    Action = "submit"
	ActionApprove   Action = "approve"
	ActionSend      Action = "send"
	ActionNegotiate Action = "negotiate"
	ActionRevise    Action = "revise"
	ActionAccept    Action = "accept"
	ActionReject    Action = "reject"
	ActionWithdraw  Action = "withdraw"
	ActionExpire    Action = "expire"
)

// allowed lists the source states of each action. Withdraw is handled separately.
var allowed = map[Action][]domain.OfferStatus{
	ActionUpdate:    {domain.OfferDraft, domain.OfferPendingApproval, domain.OfferApproved},
	ActionSubmit:    {domain.OfferDraft},
	ActionApprove:   {domain.OfferPendingApproval},
	ActionSend:      {domain.OfferDraft, domain.OfferApproved},
	ActionNegotiate: {domain.OfferSent, domain.OfferNegotiating},
	ActionRevise:    {domain.OfferNegotiating},
	ActionAccept:    {domain.OfferSent, domain.OfferNegotiating},
	ActionReject:    {domain.OfferSent, domain.OfferNegotiating},
	ActionExpire:    {domain.OfferSent, domain.OfferNegotiating},
}

// ParseAction validates an action name.
func ParseAction(s string) (Action, error) {
	a := Action(s)
	if _, ok := allowed[a]; ok || a == ActionWithdraw {
		return a, nil
	}
	return "", domain.Invalid("action", "unknown offer action %q", s)
}

// Change is a partial update of the offer terms.
type Change struct {
	Salary    *decimal.Decimal `mapstructure:"salary"`
	Bonus     *decimal.Decimal `mapstructure:"bonus"`
	Equity    *decimal.Decimal `mapstructure:"equity"`
	Currency  *string          `mapstructure:"currency"`
	StartDate *time.Time       `mapstructure:"start_date"`
	Note      string           `mapstructure:"note"`
}

// Empty reports whether no term is touched.
func (c Change) Empty() bool {
	return c.Salary == nil && c.Bonus == nil && c.Equity == nil && c.Currency == nil && c.StartDate == nil
}

func (c Change) applyTo(t domain.Terms) domain.Terms {
	if c.Salary != nil {
		t.Salary = *c.Salary
	}
	if c.Bonus != nil {
		t.Bonus = *c.Bonus
	}
	if c.Equity != nil {
		t.Equity = *c.Equity
	}
	if c.Currency != nil {
		t.Currency = *c.Currency
	}
	if c.StartDate != nil {
		sd := *c.StartDate
		t.StartDate = &sd
	}
	return t.Normalize()
}

// Machine applies actions against a clock.
type Machine struct {
	Now      func() time.Time
	Validity time.Duration
}

// NewMachine returns a machine on the wall clock with the default validity.
func NewMachine() Machine {
	return Machine{Now: time.Now, Validity: DefaultValidity}
}

func (m Machine) now() time.Time {
	if m.Now == nil {
		return time.Now().UTC()
	}
	return m.Now().UTC()
}

func (m Machine) validity() time.Duration {
	if m.Validity <= 0 {
		return DefaultValidity
	}
	return m.Validity
}

// Expired reports whether a sent offer is past its expiry at now.
func Expired(o domain.Offer, now time.Time) bool {
	return o.ExpiryDate != nil && now.After(*o.ExpiryDate)
}

// Apply returns the offer after action a with its version bumped by one.
// The input is not modified.
func (m Machine) Apply(o domain.Offer, a Action, ch Change) (domain.Offer, error) {
	now := m.now()

	if o.Status.IsTerminal() {
		return o, refuse(o, a, "offer is final")
	}
	if a != ActionWithdraw && !permitted(a, o.Status) {
		if _, known := allowed[a]; !known {
			return o, domain.Invalid("action", "unknown offer action %q", a)
		}
		return o, refuse(o, a, "")
	}

	next := o.Clone()
	switch a {
	case ActionUpdate:
		if ch.Empty() {
			return o, domain.Invalid("terms", "update changes nothing")
		}
		next.Terms = ch.applyTo(next.Terms)
		if err := next.Terms.Validate(); err != nil {
			return o, err
		}
	case ActionSubmit:
		next.Status = domain.OfferPendingApproval
	case ActionApprove:
		next.Status = domain.OfferApproved
	case ActionSend:
		if err := next.Terms.Validate(); err != nil {
			return o, err
		}
		next.Status = domain.OfferSent
		m.stamp(&next, now)
	case ActionNegotiate:
		if ch.Empty() {
			return o, domain.Invalid("terms", "a counter offer needs at least one term")
		}
		counter := ch.applyTo(next.Terms)
		if err := counter.Validate(); err != nil {
			return o, err
		}
		next.NegotiationHistory = append(next.NegotiationHistory, snapshot(o, ch.Note, now))
		next.Terms = counter
		next.Status = domain.OfferNegotiating
	case ActionRevise:
		revised := ch.applyTo(next.Terms)
		if err := revised.Validate(); err != nil {
			return o, err
		}
		next.NegotiationHistory = append(next.NegotiationHistory, snapshot(o, ch.Note, now))
		next.Terms = revised
		next.Status = domain.OfferSent
		m.stamp(&next, now)
	case ActionAccept:
		if Expired(o, now) {
			return o, refuse(o, a, fmt.Sprintf("offer expired at %s", o.ExpiryDate.Format(time.RFC3339)))
		}
		next.Status = domain.OfferAccepted
		next.RespondedAt = &now
	case ActionReject:
		next.Status = domain.OfferRejected
		next.RespondedAt = &now
	case ActionWithdraw:
		next.Status = domain.OfferWithdrawn
	case ActionExpire:
		if !Expired(o, now) {
			return o, refuse(o, a, "offer has not reached its expiry date")
		}
		next.Status = domain.OfferExpired
	}

	if ch.Note != "" && a != ActionNegotiate && a != ActionRevise {
		next.Notes = appendNote(next.Notes, ch.Note)
	}
	next.Version = o.Version + 1
	next.UpdatedAt = now
	return next, nil
}

func (m Machine) stamp(o *domain.Offer, now time.Time) {
	sent := now
	expiry := now.Add(m.validity())
	o.SentDate = &sent
	o.ExpiryDate = &expiry
}

func snapshot(o domain.Offer, note string, now time.Time) domain.Snapshot {
	return domain.Snapshot{
		Version:    o.Version,
		Status:     o.Status,
		Terms:      o.Terms.Clone(),
		Note:       note,
		RecordedAt: now,
	}
}

func appendNote(notes, note string) string {
	if notes == "" {
		return note
	}
	return notes + "\n" + note
}

func permitted(a Action, s domain.OfferStatus) bool {
	for _, from := range allowed[a] {
		if from == s {
			return true
		}
	}
	return false
}

func refuse(o domain.Offer, a Action, reason string) error {
	return &domain.TransitionError{
		Entity:  "offer",
		ID:      o.ID,
		Current: string(o.Status),
		Action:  string(a),
		Reason:  reason,
	}
}
