package offer

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"

	"hiring-pipeline/internal/domain"
)

var t0 = time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC)

func clock(at time.Time) func() time.Time { return func() time.Time { return at } }

func draft() domain.Offer {
	return domain.Offer{
		ID:      "o-1",
		Status:  domain.OfferDraft,
		Version: 1,
		Terms: domain.Terms{
			Salary:   decimal.RequireFromString("120000"),
			Currency: "USD",
		},
	}
}

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestSendStampsExpiry(t *testing.T) {
	t.Parallel()

	m := Machine{Now: clock(t0)}
	sent, err := m.Apply(draft(), ActionSend, Change{})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if sent.Status != domain.OfferSent || sent.Version != 2 {
		t.Fatalf("unexpected offer %+v", sent)
	}
	if !sent.SentDate.Equal(t0) || !sent.ExpiryDate.Equal(t0.Add(7*24*time.Hour)) {
		t.Fatalf("unexpected dates sent=%v expiry=%v", sent.SentDate, sent.ExpiryDate)
	}
}

func TestApprovalPath(t *testing.T) {
	t.Parallel()

	m := Machine{Now: clock(t0)}
	o := draft()
	for _, a := range []Action{ActionSubmit, ActionApprove, ActionSend} {
		var err error
		o, err = m.Apply(o, a, Change{})
		if err != nil {
			t.Fatalf("%s: %v", a, err)
		}
	}
	if o.Status != domain.OfferSent || o.Version != 4 {
		t.Fatalf("expected sent at version 4, got %s at %d", o.Status, o.Version)
	}
}

func TestThreeNegotiationRoundsBumpVersionToFour(t *testing.T) {
	t.Parallel()

	m := Machine{Now: clock(t0)}
	o := draft()
	o.Status = domain.OfferSent
	o.SentDate = &t0
	expiry := t0.Add(DefaultValidity)
	o.ExpiryDate = &expiry

	salaries := []string{"125000", "130000", "128000"}
	for _, s := range salaries {
		var err error
		o, err = m.Apply(o, ActionNegotiate, Change{Salary: dec(s)})
		if err != nil {
			t.Fatalf("negotiate %s: %v", s, err)
		}
	}
	if o.Version != 4 {
		t.Fatalf("expected version 4, got %d", o.Version)
	}
	if o.Status != domain.OfferNegotiating {
		t.Fatalf("expected negotiating, got %s", o.Status)
	}
	if len(o.NegotiationHistory) != 3 {
		t.Fatalf("expected 3 snapshots, got %d", len(o.NegotiationHistory))
	}
	got := []string{}
	for _, s := range o.NegotiationHistory {
		got = append(got, s.Terms.Salary.String())
	}
	if diff := cmp.Diff([]string{"120000", "125000", "130000"}, got); diff != "" {
		t.Fatalf("history mismatch (-want +got):\n%s", diff)
	}
	if !o.Terms.Salary.Equal(decimal.RequireFromString("128000")) {
		t.Fatalf("expected current salary 128000, got %s", o.Terms.Salary)
	}
}

func TestAcceptAfterExpiryIsInvalid(t *testing.T) {
	t.Parallel()

	sent, err := Machine{Now: clock(t0)}.Apply(draft(), ActionSend, Change{})
	if err != nil {
		t.Fatalf("send: %v", err)
	}

	late := Machine{Now: clock(t0.Add(DefaultValidity + time.Second))}
	_, err = late.Apply(sent, ActionAccept, Change{})
	if !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected invalid transition, got %v", err)
	}

	onTime := Machine{Now: clock(t0.Add(DefaultValidity))}
	accepted, err := onTime.Apply(sent, ActionAccept, Change{})
	if err != nil {
		t.Fatalf("accept at expiry instant: %v", err)
	}
	if accepted.Status != domain.OfferAccepted || accepted.RespondedAt == nil {
		t.Fatalf("unexpected offer %+v", accepted)
	}

	expired, err := late.Apply(sent, ActionExpire, Change{})
	if err != nil {
		t.Fatalf("expire: %v", err)
	}
	if expired.Status != domain.OfferExpired {
		t.Fatalf("expected expired, got %s", expired.Status)
	}
	if _, err := onTime.Apply(sent, ActionExpire, Change{}); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expire before expiry: expected invalid transition, got %v", err)
	}
}

func TestTerminalOffersRejectEveryAction(t *testing.T) {
	t.Parallel()

	m := Machine{Now: clock(t0)}
	actions := []Action{ActionUpdate, ActionSubmit, ActionApprove, ActionSend, ActionNegotiate,
		ActionRevise, ActionAccept, ActionReject, ActionWithdraw, ActionExpire}
	for _, s := range []domain.OfferStatus{domain.OfferAccepted, domain.OfferRejected, domain.OfferExpired, domain.OfferWithdrawn} {
		o := draft()
		o.Status = s
		for _, a := range actions {
			if _, err := m.Apply(o, a, Change{Salary: dec("1")}); !errors.Is(err, domain.ErrInvalidTransition) {
				t.Fatalf("%s + %s: expected invalid transition, got %v", s, a, err)
			}
		}
	}
}

func TestIllegalMoves(t *testing.T) {
	t.Parallel()

	m := Machine{Now: clock(t0)}
	tests := []struct {
		from domain.OfferStatus
		a    Action
	}{
		{domain.OfferPendingApproval, ActionSend},
		{domain.OfferDraft, ActionAccept},
		{domain.OfferDraft, ActionNegotiate},
		{domain.OfferSent, ActionUpdate},
		{domain.OfferSent, ActionRevise},
		{domain.OfferApproved, ActionApprove},
	}
	for _, tt := range tests {
		o := draft()
		o.Status = tt.from
		if _, err := m.Apply(o, tt.a, Change{Salary: dec("1")}); !errors.Is(err, domain.ErrInvalidTransition) {
			t.Errorf("%s + %s: expected invalid transition, got %v", tt.from, tt.a, err)
		}
	}
}

func TestReviseResendsWithFreshExpiry(t *testing.T) {
	t.Parallel()

	sent, _ := Machine{Now: clock(t0)}.Apply(draft(), ActionSend, Change{})
	countered, err := Machine{Now: clock(t0.Add(24 * time.Hour))}.Apply(sent, ActionNegotiate, Change{Salary: dec("140000")})
	if err != nil {
		t.Fatalf("negotiate: %v", err)
	}
	later := t0.Add(48 * time.Hour)
	revised, err := Machine{Now: clock(later)}.Apply(countered, ActionRevise, Change{Salary: dec("132500.005"), Note: "meet in the middle"})
	if err != nil {
		t.Fatalf("revise: %v", err)
	}
	if revised.Status != domain.OfferSent || revised.Version != 4 {
		t.Fatalf("expected sent at version 4, got %s at %d", revised.Status, revised.Version)
	}
	if !revised.ExpiryDate.Equal(later.Add(DefaultValidity)) {
		t.Fatalf("expiry not re-stamped: %v", revised.ExpiryDate)
	}
	if revised.Terms.Salary.String() != "132500.01" {
		t.Fatalf("expected salary rounded to cents, got %s", revised.Terms.Salary)
	}
	if n := len(revised.NegotiationHistory); n != 2 || revised.NegotiationHistory[1].Note != "meet in the middle" {
		t.Fatalf("unexpected history %+v", revised.NegotiationHistory)
	}
}

func TestWithdrawFromAnyActiveState(t *testing.T) {
	t.Parallel()

	m := Machine{Now: clock(t0)}
	for _, s := range []domain.OfferStatus{domain.OfferDraft, domain.OfferPendingApproval, domain.OfferApproved, domain.OfferSent, domain.OfferNegotiating} {
		o := draft()
		o.Status = s
		next, err := m.Apply(o, ActionWithdraw, Change{Note: "role frozen"})
		if err != nil {
			t.Fatalf("withdraw from %s: %v", s, err)
		}
		if next.Status != domain.OfferWithdrawn || next.Notes != "role frozen" {
			t.Fatalf("unexpected offer %+v", next)
		}
	}
}

func TestApplyValidatesTerms(t *testing.T) {
	t.Parallel()

	m := Machine{Now: clock(t0)}
	if _, err := m.Apply(draft(), ActionUpdate, Change{Salary: dec("-5")}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := m.Apply(draft(), ActionUpdate, Change{}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error for empty update, got %v", err)
	}
	if _, err := m.Apply(draft(), Action("promote"), Change{}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error for unknown action, got %v", err)
	}
}
