package workflow

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"hiring-pipeline/internal/candidate"
	"hiring-pipeline/internal/domain"
	"hiring-pipeline/internal/offer"
	"hiring-pipeline/internal/storage"
	"hiring-pipeline/internal/trigger"
)

// OfferParams are the inputs of CreateOffer. RequisitionID defaults to the
// candidate's requisition.
type OfferParams struct {
	TenantID      string       `json:"tenant_id"`
	CandidateID   string       `json:"candidate_id"`
	RequisitionID string       `json:"requisition_id,omitempty"`
	Terms         domain.Terms `json:"terms"`
	Notes         string       `json:"notes,omitempty"`
}

type OfferResult struct {
	Outcome
	Offer       domain.Offer          `json:"offer"`
	Candidate   *domain.Candidate     `json:"candidate,omitempty"`
	Requisition *domain.Requisition   `json:"requisition,omitempty"`
	Transition  *candidate.Transition `json:"transition,omitempty"`
}

// CreateOffer drafts an offer and moves the candidate to the offer status.
// A candidate holds at most one active offer, and the requisition must be open.
func (s *Service) CreateOffer(ctx context.Context, p OfferParams) (OfferResult, error) {
	if p.TenantID == "" {
		return OfferResult{}, domain.Invalid("tenant_id", "is required")
	}
	if p.CandidateID == "" {
		return OfferResult{}, domain.Invalid("candidate_id", "is required")
	}
	terms := p.Terms.Normalize()
	if err := terms.Validate(); err != nil {
		return OfferResult{}, err
	}

	var res OfferResult
	err := s.store.InTx(ctx, func(ctx context.Context, tx storage.Repo) error {
		res = OfferResult{}
		c, err := tx.GetCandidate(ctx, p.TenantID, p.CandidateID)
		if err != nil {
			return err
		}
		reqID := p.RequisitionID
		if reqID == "" {
			reqID = c.RequisitionID
		}
		if reqID != c.RequisitionID {
			return domain.Invalid("requisition_id", "candidate applied to requisition %q", c.RequisitionID)
		}
		req, err := tx.GetRequisition(ctx, p.TenantID, reqID)
		if err != nil {
			return err
		}
		if req.Status != domain.RequisitionOpen {
			return &domain.TransitionError{
				Entity:  "requisition",
				ID:      req.ID,
				Current: string(req.Status),
				Action:  "extend offers",
			}
		}

		active, err := storage.ActiveOffer(ctx, tx, p.TenantID, c.ID)
		switch {
		case err == nil:
			return &domain.TransitionError{
				Entity:  "candidate",
				ID:      c.ID,
				Current: string(c.Status),
				Action:  "receive another offer",
				Reason:  "offer " + active.ID + " is still " + string(active.Status),
			}
		case !errors.Is(err, domain.ErrNotFound):
			return err
		}

		tr, err := candidate.Apply(c, candidate.OfferExtended{})
		if err != nil {
			return err
		}
		cand := tr.Candidate
		s.bump(&cand, c.Version)
		if err := tx.UpdateCandidate(ctx, &cand, c.Version); err != nil {
			return err
		}
		tr.Candidate = cand

		now := s.clock()
		o := domain.Offer{
			ID:                 s.newID(),
			TenantID:           p.TenantID,
			CandidateID:        c.ID,
			RequisitionID:      req.ID,
			Terms:              terms,
			Status:             domain.OfferDraft,
			Version:            1,
			NegotiationHistory: []domain.Snapshot{},
			Notes:              p.Notes,
			CreatedAt:          now,
			UpdatedAt:          now,
		}
		if err := tx.CreateOffer(ctx, &o); err != nil {
			return err
		}

		if req.Currency != "" && terms.Currency != req.Currency {
			res.warn("offer currency %s differs from requisition currency %s", terms.Currency, req.Currency)
		}
		if !req.SalaryMin.IsZero() && terms.Salary.LessThan(req.SalaryMin) {
			res.warn("salary %s is below the requisition minimum %s", terms.Salary.StringFixed(2), req.SalaryMin.StringFixed(2))
		}
		if !req.SalaryMax.IsZero() && terms.Salary.GreaterThan(req.SalaryMax) {
			res.warn("salary %s is above the requisition maximum %s", terms.Salary.StringFixed(2), req.SalaryMax.StringFixed(2))
		}

		res.Offer, res.Candidate, res.Transition = o, &cand, &tr
		res.emit(offerEvent(trigger.EventOfferCreated, o))
		return nil
	})
	if err != nil {
		return OfferResult{}, err
	}

	s.logFor(p.TenantID, zap.String("candidate_id", p.CandidateID)).Info("offer created",
		zap.String("offer_id", res.Offer.ID),
		zap.String("salary", res.Offer.Terms.Salary.StringFixed(2)),
		zap.String("currency", res.Offer.Terms.Currency),
	)
	return res, nil
}

// TransitionOffer applies action to the offer. The payload carries term
// changes and a note; unknown keys are rejected. The offer is re-read inside
// the transaction, so a concurrent change either refuses the action or fails
// with domain.ErrConcurrencyConflict.
//
// Accepting fills a requisition position and hires the candidate in the same
// transaction.
func (s *Service) TransitionOffer(ctx context.Context, tenantID, offerID, action string, payload map[string]any) (OfferResult, error) {
	a, err := offer.ParseAction(action)
	if err != nil {
		return OfferResult{}, err
	}
	change, err := offer.DecodeChange(payload)
	if err != nil {
		return OfferResult{}, err
	}

	var res OfferResult
	err = s.store.InTx(ctx, func(ctx context.Context, tx storage.Repo) error {
		var err error
		res, err = s.transitionOffer(ctx, tx, tenantID, offerID, a, change)
		return err
	})
	if err != nil {
		return OfferResult{}, err
	}

	s.logFor(tenantID, zap.String("offer_id", offerID)).Info("offer transitioned",
		zap.String("action", string(a)),
		zap.String("status", string(res.Offer.Status)),
		zap.Int("version", res.Offer.Version),
	)
	return res, nil
}

func (s *Service) transitionOffer(ctx context.Context, tx storage.Repo, tenantID, offerID string, a offer.Action, change offer.Change) (OfferResult, error) {
	o, err := tx.GetOffer(ctx, tenantID, offerID)
	if err != nil {
		return OfferResult{}, err
	}
	next, err := s.offers.Apply(o, a, change)
	if err != nil {
		return OfferResult{}, err
	}
	if err := tx.UpdateOffer(ctx, &next, o.Version); err != nil {
		return OfferResult{}, err
	}
	res := OfferResult{Offer: next}

	switch a {
	case offer.ActionSend, offer.ActionRevise:
		res.emit(offerEvent(trigger.EventOfferSent, next))
	case offer.ActionAccept:
		if err := s.fillPosition(ctx, tx, next, &res); err != nil {
			return OfferResult{}, err
		}
		if err := s.moveCandidate(ctx, tx, next, candidate.OfferAccepted{}, true, &res); err != nil {
			return OfferResult{}, err
		}
	case offer.ActionReject:
		if err := s.moveCandidate(ctx, tx, next, candidate.OfferDeclined{}, false, &res); err != nil {
			return OfferResult{}, err
		}
		res.emit(offerEvent(trigger.EventOfferRejected, next))
	case offer.ActionWithdraw:
		if err := s.moveCandidate(ctx, tx, next, candidate.OfferWithdrawn{}, false, &res); err != nil {
			return OfferResult{}, err
		}
		res.emit(offerEvent(trigger.EventOfferWithdrawn, next))
	case offer.ActionExpire:
		res.emit(offerEvent(trigger.EventOfferExpired, next))
	}
	return res, nil
}

// fillPosition records the hire on the requisition and closes it once full.
func (s *Service) fillPosition(ctx context.Context, tx storage.Repo, o domain.Offer, res *OfferResult) error {
	req, err := tx.GetRequisition(ctx, o.TenantID, o.RequisitionID)
	if err != nil {
		return err
	}
	next := req.Clone()
	filled, err := next.RecordHire(s.clock())
	if err != nil {
		return err
	}
	next.Version = req.Version + 1
	if err := tx.UpdateRequisition(ctx, &next, req.Version); err != nil {
		return err
	}
	res.Requisition = &next

	events := []trigger.Event{offerEvent(trigger.EventOfferAccepted, o)}
	if filled {
		events = append(events, trigger.Event{
			Type:          trigger.EventRequisitionFilled,
			TenantID:      o.TenantID,
			RequisitionID: next.ID,
			OccurredAt:    next.UpdatedAt,
		})
	}
	res.emit(events...)
	return nil
}

// moveCandidate applies e to the offer's candidate. When strict is false a
// refused transition only adds a warning.
func (s *Service) moveCandidate(ctx context.Context, tx storage.Repo, o domain.Offer, e candidate.Event, strict bool, res *OfferResult) error {
	c, err := tx.GetCandidate(ctx, o.TenantID, o.CandidateID)
	if err != nil {
		return err
	}
	tr, err := candidate.Apply(c, e)
	if err != nil {
		if strict {
			return err
		}
		res.Candidate = &c
		return retained(&res.Outcome, err)
	}
	next := tr.Candidate
	s.bump(&next, c.Version)
	if err := tx.UpdateCandidate(ctx, &next, c.Version); err != nil {
		return err
	}
	tr.Candidate = next
	res.Candidate, res.Transition = &next, &tr
	return nil
}

func offerEvent(t trigger.EventType, o domain.Offer) trigger.Event {
	return trigger.Event{
		Type:          t,
		TenantID:      o.TenantID,
		RequisitionID: o.RequisitionID,
		CandidateID:   o.CandidateID,
		OfferID:       o.ID,
		OccurredAt:    o.UpdatedAt,
	}
}

type ExpireResult struct {
	Outcome
	Expired []domain.Offer `json:"expired"`
	Failed  int            `json:"failed"`
}

// PendingExpiry lists offers past their expiry date across all tenants.
func (s *Service) PendingExpiry(ctx context.Context, limit int) ([]domain.Offer, error) {
	return s.store.ListExpiredOffers(ctx, s.clock(), limit)
}

// ExpireOffers marks every overdue sent or negotiating offer as expired. Each
// offer is its own transaction; offers that changed concurrently are counted
// as failed and left for the next sweep. The candidate is left as is.
func (s *Service) ExpireOffers(ctx context.Context, limit int) (ExpireResult, error) {
	start := time.Now()
	due, err := s.PendingExpiry(ctx, limit)
	if err != nil {
		return ExpireResult{}, err
	}

	var res ExpireResult
	for _, o := range due {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		var out OfferResult
		err := s.store.InTx(ctx, func(ctx context.Context, tx storage.Repo) error {
			var err error
			out, err = s.transitionOffer(ctx, tx, o.TenantID, o.ID, offer.ActionExpire, offer.Change{})
			return err
		})
		if err != nil {
			res.Failed++
			res.warn("offer %s not expired: %v", o.ID, err)
			s.logFor(o.TenantID, zap.String("offer_id", o.ID)).Warn("offer expiry failed", zap.Error(err))
			continue
		}
		res.Expired = append(res.Expired, out.Offer)
		res.Triggers = append(res.Triggers, out.Triggers...)
	}

	s.log.Info("offer expiry sweep finished",
		zap.Int("due", len(due)),
		zap.Int("expired", len(res.Expired)),
		zap.Int("failed", res.Failed),
		zap.Duration("took", time.Since(start)),
	)
	return res, nil
}
