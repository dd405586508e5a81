package workflow

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"hiring-pipeline/internal/candidate"
	"hiring-pipeline/internal/domain"
	"hiring-pipeline/internal/offer"
	"hiring-pipeline/internal/storage"
	"hiring-pipeline/internal/trigger"
)

// CreateRequisition stores a new requisition. Missing weights take the
// configured default; weights that are given must sum to 1.0.
func (s *Service) CreateRequisition(ctx context.Context, r domain.Requisition) (domain.Requisition, error) {
	now := s.clock()
	r.ID = s.newID()
	if r.Weights.IsZero() {
		r.Weights = s.weights
	}
	if r.Status == "" {
		r.Status = domain.RequisitionOpen
	}
	if r.Urgency == "" {
		r.Urgency = domain.UrgencyMedium
	}
	if r.NumberOfPositions == 0 {
		r.NumberOfPositions = 1
	}
	r.SalaryMin = r.SalaryMin.Round(2)
	r.SalaryMax = r.SalaryMax.Round(2)
	r.PositionsFilled = 0
	r.ClosedDate = nil
	r.Version = 1
	r.CreatedAt, r.UpdatedAt = now, now

	if r.Status.IsClosed() {
		return domain.Requisition{}, domain.Invalid("status", "a new requisition cannot be %s", r.Status)
	}
	if err := r.Validate(); err != nil {
		return domain.Requisition{}, err
	}
	if err := s.store.CreateRequisition(ctx, &r); err != nil {
		return domain.Requisition{}, err
	}
	s.logFor(r.TenantID).Info("requisition created", zap.String("requisition_id", r.ID))
	return r, nil
}

// CreateCandidate adds an applicant to an open requisition.
func (s *Service) CreateCandidate(ctx context.Context, c domain.Candidate) (domain.Candidate, error) {
	if err := c.Validate(); err != nil {
		return domain.Candidate{}, err
	}
	req, err := s.store.GetRequisition(ctx, c.TenantID, c.RequisitionID)
	if err != nil {
		return domain.Candidate{}, err
	}
	if req.Status != domain.RequisitionOpen {
		return domain.Candidate{}, &domain.TransitionError{
			Entity:  "requisition",
			ID:      req.ID,
			Current: string(req.Status),
			Action:  "accept candidates",
		}
	}

	now := s.clock()
	c.ID = s.newID()
	c.Status = domain.CandidateApplied
	c.Stage = domain.StageApplication
	c.ResumeScore, c.SkillsScore, c.CultureScore, c.ExperienceScore, c.OverallScore = nil, nil, nil, nil, nil
	c.AIRecommendation = ""
	c.InterviewRound = 0
	c.Version = 1
	c.CreatedAt, c.UpdatedAt = now, now

	if err := s.store.CreateCandidate(ctx, &c); err != nil {
		return domain.Candidate{}, err
	}
	s.logFor(c.TenantID).Info("candidate created",
		zap.String("candidate_id", c.ID),
		zap.String("requisition_id", c.RequisitionID),
	)
	return c, nil
}

type CandidateResult struct {
	Outcome
	Candidate  domain.Candidate     `json:"candidate"`
	Transition candidate.Transition `json:"transition"`
	Offer      *domain.Offer        `json:"offer,omitempty"`
}

// UpdateCandidateStatus applies a recruiter action: reject, withdraw, hold or
// reactivate. Rejecting or withdrawing a candidate withdraws their active offer.
func (s *Service) UpdateCandidateStatus(ctx context.Context, tenantID, candidateID, action, reason string) (CandidateResult, error) {
	ev, err := candidate.ManualEvent(action, reason)
	if err != nil {
		return CandidateResult{}, err
	}

	var res CandidateResult
	err = s.store.InTx(ctx, func(ctx context.Context, tx storage.Repo) error {
		res = CandidateResult{}
		c, err := tx.GetCandidate(ctx, tenantID, candidateID)
		if err != nil {
			return err
		}
		tr, err := candidate.Apply(c, ev)
		if err != nil {
			return err
		}
		next := tr.Candidate
		s.bump(&next, c.Version)
		if err := tx.UpdateCandidate(ctx, &next, c.Version); err != nil {
			return err
		}
		tr.Candidate = next
		res.Candidate, res.Transition = next, tr

		if next.Status != domain.CandidateRejected && next.Status != domain.CandidateWithdrawn {
			return nil
		}
		active, err := storage.ActiveOffer(ctx, tx, tenantID, candidateID)
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		withdrawn, err := s.offers.Apply(active, offer.ActionWithdraw, offer.Change{Note: "candidate " + string(next.Status)})
		if err != nil {
			return err
		}
		if err := tx.UpdateOffer(ctx, &withdrawn, active.Version); err != nil {
			return err
		}
		res.Offer = &withdrawn
		res.emit(trigger.Event{
			Type:          trigger.EventOfferWithdrawn,
			TenantID:      tenantID,
			RequisitionID: withdrawn.RequisitionID,
			CandidateID:   candidateID,
			OfferID:       withdrawn.ID,
			OccurredAt:    withdrawn.UpdatedAt,
		})
		return nil
	})
	if err != nil {
		return CandidateResult{}, err
	}

	s.logFor(tenantID, zap.String("candidate_id", candidateID)).Info("candidate status updated",
		zap.String("action", action),
		zap.String("from", string(res.Transition.From)),
		zap.String("to", string(res.Transition.To)),
	)
	return res, nil
}

// bump advances the candidate's version past prev.
func (s *Service) bump(c *domain.Candidate, prev int) {
	c.Version = prev + 1
	c.UpdatedAt = s.clock()
}
