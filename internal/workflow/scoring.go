package workflow

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"hiring-pipeline/internal/assessment"
	"hiring-pipeline/internal/candidate"
	"hiring-pipeline/internal/domain"
	"hiring-pipeline/internal/scoring"
	"hiring-pipeline/internal/storage"
	"hiring-pipeline/internal/trigger"
)

type ScoreResult struct {
	Outcome
	Candidate  domain.Candidate      `json:"candidate"`
	Score      scoring.Result        `json:"score"`
	Transition *candidate.Transition `json:"transition,omitempty"`
	// Ready is false when an assessment type was missing and scored as 0.
	Ready bool `json:"ready"`
}

// AggregateCandidateScore recomputes the composite score from the stored
// assessments, writes it onto the candidate and applies the resulting tier.
// Missing assessment types count as zero and are reported as warnings.
func (s *Service) AggregateCandidateScore(ctx context.Context, tenantID, candidateID string) (ScoreResult, error) {
	var res ScoreResult
	err := s.store.InTx(ctx, func(ctx context.Context, tx storage.Repo) error {
		var err error
		res, err = s.aggregateScore(ctx, tx, tenantID, candidateID)
		return err
	})
	if err != nil {
		return ScoreResult{}, err
	}

	s.logFor(tenantID, zap.String("candidate_id", candidateID)).Info("candidate scored",
		zap.Float64("composite", res.Score.Composite),
		zap.String("tier", string(res.Score.Tier)),
		zap.Bool("ready", res.Ready),
		zap.Int("warnings", len(res.Warnings)),
	)
	return res, nil
}

func (s *Service) aggregateScore(ctx context.Context, tx storage.Repo, tenantID, candidateID string) (ScoreResult, error) {
	c, err := tx.GetCandidate(ctx, tenantID, candidateID)
	if err != nil {
		return ScoreResult{}, err
	}
	req, err := tx.GetRequisition(ctx, tenantID, c.RequisitionID)
	if err != nil {
		return ScoreResult{}, err
	}
	assessments, err := tx.ListAssessments(ctx, tenantID, candidateID)
	if err != nil {
		return ScoreResult{}, err
	}

	score := scoring.Aggregate(assessments, req.Weights)
	res := ScoreResult{Score: score, Ready: score.Complete()}
	res.Warnings = append(res.Warnings, score.Warnings...)

	next := c.Clone()
	score.Apply(&next)
	// Scores are recorded even when the machine refuses to move the candidate.
	tr, err := candidate.Apply(next, candidate.TierAssigned{Tier: score.Tier})
	if err != nil {
		if err := retained(&res.Outcome, err); err != nil {
			return ScoreResult{}, err
		}
	} else {
		next = tr.Candidate
		res.Transition = &tr
		if tr.Note != "" {
			res.warn("%s", tr.Note)
		}
	}

	s.bump(&next, c.Version)
	if err := tx.UpdateCandidate(ctx, &next, c.Version); err != nil {
		return ScoreResult{}, err
	}
	if res.Transition != nil {
		res.Transition.Candidate = next
	}
	res.Candidate = next
	res.emit(trigger.Event{
		Type:          trigger.EventCandidateScored,
		TenantID:      tenantID,
		RequisitionID: next.RequisitionID,
		CandidateID:   next.ID,
		Tier:          score.Tier,
		OccurredAt:    next.UpdatedAt,
	})
	return res, nil
}

type AssessmentResult struct {
	Outcome
	Assessments []domain.Assessment `json:"assessments"`
	// Score is set once every assessment type is on record.
	Score *ScoreResult `json:"score,omitempty"`
}

// ErrNoScorer is returned by AssessResume when no LLM scorer is wired in.
var ErrNoScorer = errors.New("no resume scorer configured")

// RecordAssessment stores a manual or externally produced assessment and
// re-aggregates the candidate once all three types exist.
func (s *Service) RecordAssessment(ctx context.Context, a domain.Assessment) (AssessmentResult, error) {
	if a.Source == "" {
		a.Source = domain.SourceManual
	}
	return s.recordAssessments(ctx, a.TenantID, a.CandidateID, []domain.Assessment{a})
}

// AssessResume scores the resume with the configured scorer and records the
// three assessments. Provider failures yield degraded assessments, not errors.
func (s *Service) AssessResume(ctx context.Context, tenantID, candidateID, resumeText string) (AssessmentResult, error) {
	if s.scorer == nil {
		return AssessmentResult{}, ErrNoScorer
	}
	c, err := s.store.GetCandidate(ctx, tenantID, candidateID)
	if err != nil {
		return AssessmentResult{}, err
	}
	req, err := s.store.GetRequisition(ctx, tenantID, c.RequisitionID)
	if err != nil {
		return AssessmentResult{}, err
	}

	assessments := s.scorer.ScoreAll(ctx, assessment.Request{
		TenantID:    tenantID,
		CandidateID: candidateID,
		ResumeText:  resumeText,
		Requisition: req,
	})
	return s.recordAssessments(ctx, tenantID, candidateID, assessments)
}

func (s *Service) recordAssessments(ctx context.Context, tenantID, candidateID string, in []domain.Assessment) (AssessmentResult, error) {
	now := s.clock()
	for i := range in {
		a := &in[i]
		a.ID = s.newID()
		a.TenantID, a.CandidateID = tenantID, candidateID
		if a.CreatedAt.IsZero() {
			a.CreatedAt = now
		}
		if err := a.Validate(); err != nil {
			return AssessmentResult{}, err
		}
		a.Finalize()
	}

	var res AssessmentResult
	err := s.store.InTx(ctx, func(ctx context.Context, tx storage.Repo) error {
		res = AssessmentResult{Assessments: in}
		if _, err := tx.GetCandidate(ctx, tenantID, candidateID); err != nil {
			return err
		}
		for i := range in {
			if err := tx.InsertAssessment(ctx, &in[i]); err != nil {
				return err
			}
		}

		all, err := tx.ListAssessments(ctx, tenantID, candidateID)
		if err != nil {
			return err
		}
		if !coversAllTypes(all) {
			// The aggregate reports degraded inputs itself once it runs.
			for _, a := range in {
				if a.Degraded {
					res.warn("%s assessment is degraded: %s", a.Type, a.DegradedReason)
				}
			}
			return nil
		}
		score, err := s.aggregateScore(ctx, tx, tenantID, candidateID)
		if err != nil {
			return err
		}
		res.Score = &score
		res.Triggers = append(res.Triggers, score.Triggers...)
		res.Warnings = append(res.Warnings, score.Warnings...)
		return nil
	})
	if err != nil {
		return AssessmentResult{}, err
	}

	s.logFor(tenantID, zap.String("candidate_id", candidateID)).Info("assessments recorded",
		zap.Int("count", len(in)),
		zap.Bool("aggregated", res.Score != nil),
	)
	return res, nil
}

func coversAllTypes(as []domain.Assessment) bool {
	seen := map[domain.AssessmentType]bool{}
	for _, a := range as {
		seen[a.Type] = true
	}
	for _, t := range domain.AssessmentTypes {
		if !seen[t] {
			return false
		}
	}
	return true
}
