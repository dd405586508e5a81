package workflow

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"hiring-pipeline/internal/candidate"
	"hiring-pipeline/internal/consensus"
	"hiring-pipeline/internal/domain"
	"hiring-pipeline/internal/storage"
	"hiring-pipeline/internal/trigger"
)

type ScheduleResult struct {
	Outcome
	Interview  domain.Interview     `json:"interview"`
	Candidate  domain.Candidate     `json:"candidate"`
	Transition candidate.Transition `json:"transition"`
}

// ScheduleInterview opens an interview round and moves the candidate into it.
func (s *Service) ScheduleInterview(ctx context.Context, i domain.Interview) (ScheduleResult, error) {
	for n, id := range i.ExpectedInterviewers {
		i.ExpectedInterviewers[n] = strings.TrimSpace(id)
	}
	if err := i.Validate(); err != nil {
		return ScheduleResult{}, err
	}

	var res ScheduleResult
	err := s.store.InTx(ctx, func(ctx context.Context, tx storage.Repo) error {
		c, err := tx.GetCandidate(ctx, i.TenantID, i.CandidateID)
		if err != nil {
			return err
		}
		tr, err := candidate.Apply(c, candidate.InterviewScheduled{Round: i.Round})
		if err != nil {
			return err
		}
		next := tr.Candidate
		s.bump(&next, c.Version)
		if err := tx.UpdateCandidate(ctx, &next, c.Version); err != nil {
			return err
		}

		now := s.clock()
		iv := i.Clone()
		iv.ID = s.newID()
		iv.Status = domain.InterviewScheduled
		iv.Scores = domain.CategoryScores{}
		iv.OverallScore, iv.Recommendation, iv.AggregatedAt = nil, "", nil
		iv.Strengths, iv.Weaknesses, iv.Concerns = nil, nil, nil
		iv.Version = 1
		iv.CreatedAt, iv.UpdatedAt = now, now
		if err := tx.CreateInterview(ctx, &iv); err != nil {
			return err
		}

		tr.Candidate = next
		res = ScheduleResult{Interview: iv, Candidate: next, Transition: tr}
		return nil
	})
	if err != nil {
		return ScheduleResult{}, err
	}

	s.logFor(i.TenantID, zap.String("candidate_id", i.CandidateID)).Info("interview scheduled",
		zap.String("interview_id", res.Interview.ID),
		zap.Int("round", res.Interview.Round),
		zap.Int("panel", len(res.Interview.ExpectedInterviewers)),
	)
	return res, nil
}

type FeedbackResult struct {
	Outcome
	Feedback      domain.Feedback `json:"feedback"`
	FeedbackCount int             `json:"feedback_count"`
	ExpectedCount int             `json:"expected_count"`
	// AllFeedbackCollected is true once every expected interviewer submitted.
	AllFeedbackCollected bool `json:"all_feedback_collected"`
	// Consensus is set when this submission completed the panel.
	Consensus *InterviewResult `json:"consensus,omitempty"`
}

// SubmitInterviewFeedback records one interviewer's feedback. Each interviewer
// submits at most once per interview; a second submission fails with
// domain.ErrDuplicateFeedback. The submission that completes the expected
// panel aggregates the interview.
func (s *Service) SubmitInterviewFeedback(ctx context.Context, tenantID, interviewID string, fb domain.Feedback) (FeedbackResult, error) {
	fb.InterviewerID = strings.TrimSpace(fb.InterviewerID)
	if err := fb.Validate(); err != nil {
		return FeedbackResult{}, err
	}

	var res FeedbackResult
	err := s.store.InTx(ctx, func(ctx context.Context, tx storage.Repo) error {
		iv, err := tx.LockInterview(ctx, tenantID, interviewID)
		if err != nil {
			return err
		}
		if iv.Aggregated() || !iv.Status.AcceptsFeedback() {
			return &domain.TransitionError{
				Entity:  "interview",
				ID:      iv.ID,
				Current: string(iv.Status),
				Action:  "accept feedback",
			}
		}
		id, ok := iv.PanelMember(fb.InterviewerID)
		if !ok {
			return domain.Invalid("interviewer_id", "%q is not on the interview panel", fb.InterviewerID)
		}
		fb.InterviewerID = id

		fb.ID = s.newID()
		fb.TenantID, fb.InterviewID = tenantID, interviewID
		fb.SubmittedAt = s.clock()
		if err := tx.InsertFeedback(ctx, &fb); err != nil {
			return err
		}

		all, err := tx.ListFeedback(ctx, tenantID, interviewID)
		if err != nil {
			return err
		}
		res = FeedbackResult{
			Feedback:      fb,
			FeedbackCount: len(all),
			ExpectedCount: len(iv.ExpectedInterviewers),
		}
		res.AllFeedbackCollected = res.ExpectedCount > 0 && consensus.Ready(res.FeedbackCount, res.ExpectedCount)
		return nil
	})
	if err != nil {
		return FeedbackResult{}, err
	}

	log := s.logFor(tenantID, zap.String("interview_id", interviewID))
	log.Info("feedback submitted",
		zap.String("interviewer_id", fb.InterviewerID),
		zap.Int("count", res.FeedbackCount),
		zap.Int("expected", res.ExpectedCount),
	)

	if !res.AllFeedbackCollected {
		return res, nil
	}
	done, err := s.CompleteInterview(ctx, tenantID, interviewID)
	if err != nil {
		// The feedback itself is stored; aggregation can be retried explicitly.
		log.Warn("automatic aggregation failed", zap.Error(err))
		res.warn("feedback recorded but aggregation failed: %v", err)
		return res, nil
	}
	res.Consensus = &done
	res.Triggers = append(res.Triggers, done.Triggers...)
	res.Warnings = append(res.Warnings, done.Warnings...)
	return res, nil
}

type InterviewResult struct {
	Outcome
	Interview domain.Interview `json:"interview"`
	// Consensus is nil when the result was already stored or not ready.
	Consensus  *consensus.Result     `json:"consensus,omitempty"`
	Candidate  *domain.Candidate     `json:"candidate,omitempty"`
	Transition *candidate.Transition `json:"transition,omitempty"`

	FeedbackCount        int  `json:"feedback_count"`
	ExpectedCount        int  `json:"expected_count"`
	AllFeedbackCollected bool `json:"all_feedback_collected"`
	AlreadyAggregated    bool `json:"already_aggregated"`
}

// CompleteInterview aggregates the interview's feedback into a consensus and
// hands it to the candidate machine. It runs at most once per interview: later
// calls, including the loser of a concurrent race, return the stored result.
// With feedback missing from the expected panel nothing is aggregated and
// AllFeedbackCollected is false.
func (s *Service) CompleteInterview(ctx context.Context, tenantID, interviewID string) (InterviewResult, error) {
	var res InterviewResult
	err := s.store.InTx(ctx, func(ctx context.Context, tx storage.Repo) error {
		var err error
		res, err = s.completeInterview(ctx, tx, tenantID, interviewID)
		return err
	})
	if errors.Is(err, domain.ErrConcurrencyConflict) {
		iv, getErr := s.store.GetInterview(ctx, tenantID, interviewID)
		if getErr == nil && iv.Aggregated() {
			return storedResult(iv), nil
		}
	}
	if err != nil {
		return InterviewResult{}, err
	}

	if !res.AlreadyAggregated && res.AllFeedbackCollected {
		s.logFor(tenantID, zap.String("interview_id", interviewID)).Info("interview aggregated",
			zap.String("recommendation", string(res.Interview.Recommendation)),
			zap.Int("feedback", res.FeedbackCount),
		)
	}
	return res, nil
}

func (s *Service) completeInterview(ctx context.Context, tx storage.Repo, tenantID, interviewID string) (InterviewResult, error) {
	iv, err := tx.LockInterview(ctx, tenantID, interviewID)
	if err != nil {
		return InterviewResult{}, err
	}
	if iv.Aggregated() {
		return storedResult(iv), nil
	}
	if !iv.Status.AcceptsFeedback() {
		return InterviewResult{}, &domain.TransitionError{
			Entity:  "interview",
			ID:      iv.ID,
			Current: string(iv.Status),
			Action:  "complete",
		}
	}

	feedback, err := tx.ListFeedback(ctx, tenantID, interviewID)
	if err != nil {
		return InterviewResult{}, err
	}
	res := InterviewResult{
		Interview:     iv,
		FeedbackCount: len(feedback),
		ExpectedCount: len(iv.ExpectedInterviewers),
	}
	if !consensus.Ready(res.FeedbackCount, res.ExpectedCount) {
		return res, nil
	}
	res.AllFeedbackCollected = true

	agg := consensus.Aggregate(feedback)
	now := s.clock()
	next := iv.Clone()
	next.Scores = agg.Scores
	next.OverallScore = domain.Float(agg.OverallScore)
	next.Recommendation = agg.Recommendation
	next.Strengths, next.Weaknesses, next.Concerns = agg.Strengths, agg.Weaknesses, agg.Concerns
	next.Status = domain.InterviewCompleted
	next.AggregatedAt = &now
	next.Version = iv.Version + 1
	next.UpdatedAt = now
	if err := tx.SaveAggregation(ctx, &next, iv.Version); err != nil {
		return InterviewResult{}, err
	}
	res.Interview = next
	res.Consensus = &agg

	c, err := tx.GetCandidate(ctx, tenantID, iv.CandidateID)
	if err != nil {
		return InterviewResult{}, err
	}
	tr, err := candidate.Apply(c, candidate.ConsensusReached{Recommendation: agg.Recommendation, Round: iv.Round})
	if err != nil {
		// The consensus stays on the interview even if the candidate moved on.
		if err := retained(&res.Outcome, err); err != nil {
			return InterviewResult{}, err
		}
		res.Candidate = &c
	} else {
		cand := tr.Candidate
		s.bump(&cand, c.Version)
		if err := tx.UpdateCandidate(ctx, &cand, c.Version); err != nil {
			return InterviewResult{}, err
		}
		tr.Candidate = cand
		res.Candidate, res.Transition = &cand, &tr
		if tr.Note != "" {
			res.warn("%s", tr.Note)
		}
	}

	res.emit(trigger.Event{
		Type:           trigger.EventInterviewConsensus,
		TenantID:       tenantID,
		RequisitionID:  c.RequisitionID,
		CandidateID:    iv.CandidateID,
		InterviewID:    iv.ID,
		Recommendation: agg.Recommendation,
		Round:          iv.Round,
		OccurredAt:     now,
	})
	return res, nil
}

func storedResult(iv domain.Interview) InterviewResult {
	return InterviewResult{
		Interview:            iv,
		ExpectedCount:        len(iv.ExpectedInterviewers),
		AllFeedbackCollected: true,
		AlreadyAggregated:    true,
	}
}
