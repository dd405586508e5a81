package candidate

import (
	"errors"
	"testing"

	"hiring-pipeline/internal/domain"
)

func candidateIn(status domain.CandidateStatus, stage domain.Stage) domain.Candidate {
	return domain.Candidate{ID: "c-1", Status: status, Stage: stage}
}

func TestApplyTierFromApplied(t *testing.T) {
	t.Parallel()

	tests := []struct {
		tier       domain.Tier
		wantStatus domain.CandidateStatus
		wantStage  domain.Stage
	}{
		{domain.TierStrongHire, domain.CandidateScreening, domain.StageTechnicalAssessment},
		{domain.TierHire, domain.CandidateScreening, domain.StagePhoneScreen},
		{domain.TierMaybe, domain.CandidateScreening, domain.StageResumeReview},
		{domain.TierPass, domain.CandidateRejected, domain.StageApplication},
		{domain.TierStrongPass, domain.CandidateRejected, domain.StageApplication},
	}
	for _, tt := range tests {
		t.Run(string(tt.tier), func(t *testing.T) {
			t.Parallel()
			tr, err := Apply(candidateIn(domain.CandidateApplied, domain.StageApplication), TierAssigned{Tier: tt.tier})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tr.To != tt.wantStatus || tr.ToStage != tt.wantStage {
				t.Fatalf("expected %s/%s, got %s/%s", tt.wantStatus, tt.wantStage, tr.To, tr.ToStage)
			}
			if tr.Candidate.AIRecommendation != tt.tier {
				t.Fatalf("tier not recorded: %s", tr.Candidate.AIRecommendation)
			}
		})
	}
}

func TestApplyTierRetainsInterviewStatus(t *testing.T) {
	t.Parallel()

	c := candidateIn(domain.CandidateInterview, domain.StageBehavioralInterview)
	tr, err := Apply(c, TierAssigned{Tier: domain.TierStrongPass})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tr.Changed() {
		t.Fatalf("expected status to be retained, got %s/%s", tr.To, tr.ToStage)
	}
	if tr.Candidate.AIRecommendation != domain.TierStrongPass {
		t.Fatalf("tier not recorded")
	}
}

func TestApplyConsensus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		rec        domain.Recommendation
		round      int
		wantStatus domain.CandidateStatus
		wantStage  domain.Stage
		wantRound  int
	}{
		{"strong yes", domain.RecommendStrongYes, 1, domain.CandidateOffer, domain.StageOffer, 1},
		{"yes first round", domain.RecommendYes, 1, domain.CandidateInterview, domain.StageBehavioralInterview, 2},
		{"yes second round", domain.RecommendYes, 2, domain.CandidateInterview, domain.StageFinalInterview, 3},
		{"yes final round", domain.RecommendYes, 3, domain.CandidateOffer, domain.StageReferenceCheck, 3},
		{"maybe", domain.RecommendMaybe, 1, domain.CandidateInterview, domain.StageTechnicalAssessment, 1},
		{"no", domain.RecommendNo, 2, domain.CandidateRejected, domain.StageTechnicalAssessment, 1},
		{"strong no", domain.RecommendStrongNo, 1, domain.CandidateRejected, domain.StageTechnicalAssessment, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := candidateIn(domain.CandidateInterview, domain.StageTechnicalAssessment)
			c.InterviewRound = 1
			if tt.round == 3 {
				c.InterviewRound = 3
			}
			tr, err := Apply(c, ConsensusReached{Recommendation: tt.rec, Round: tt.round})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tr.To != tt.wantStatus || tr.ToStage != tt.wantStage {
				t.Fatalf("expected %s/%s, got %s/%s", tt.wantStatus, tt.wantStage, tr.To, tr.ToStage)
			}
			if tr.Candidate.InterviewRound != tt.wantRound {
				t.Fatalf("expected round %d, got %d", tt.wantRound, tr.Candidate.InterviewRound)
			}
		})
	}
}

func TestTerminalCandidatesRejectEveryEvent(t *testing.T) {
	t.Parallel()

	events := []Event{
		TierAssigned{Tier: domain.TierStrongHire},
		InterviewScheduled{Round: 1},
		ConsensusReached{Recommendation: domain.RecommendStrongYes, Round: 1},
		OfferExtended{},
		OfferAccepted{},
		OfferDeclined{},
		OfferWithdrawn{},
		Reject{},
		Withdraw{},
		Hold{},
		Reactivate{},
	}
	for _, status := range []domain.CandidateStatus{domain.CandidateHired, domain.CandidateRejected, domain.CandidateWithdrawn} {
		for _, e := range events {
			_, err := Apply(candidateIn(status, domain.StageHired), e)
			if !errors.Is(err, domain.ErrInvalidTransition) {
				t.Fatalf("%s + %s: expected invalid transition, got %v", status, e.Name(), err)
			}
			var te *domain.TransitionError
			if !errors.As(err, &te) || te.Current != string(status) {
				t.Fatalf("expected transition error carrying current state, got %v", err)
			}
		}
	}
}

func TestOfferOutcomes(t *testing.T) {
	t.Parallel()

	offered := candidateIn(domain.CandidateOffer, domain.StageOffer)

	tr, err := Apply(offered, OfferAccepted{})
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	if tr.To != domain.CandidateHired || tr.ToStage != domain.StageHired {
		t.Fatalf("expected hired/hired, got %s/%s", tr.To, tr.ToStage)
	}

	for _, e := range []Event{OfferDeclined{}, OfferWithdrawn{}} {
		tr, err := Apply(offered, e)
		if err != nil {
			t.Fatalf("%s: %v", e.Name(), err)
		}
		if tr.To != domain.CandidateRejected {
			t.Fatalf("%s: expected rejected, got %s", e.Name(), tr.To)
		}
	}

	if _, err := Apply(candidateIn(domain.CandidateScreening, domain.StagePhoneScreen), OfferAccepted{}); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("accept outside offer: expected invalid transition, got %v", err)
	}
}

func TestInterviewScheduled(t *testing.T) {
	t.Parallel()

	tr, err := Apply(candidateIn(domain.CandidateScreening, domain.StagePhoneScreen), InterviewScheduled{Round: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tr.To != domain.CandidateInterview || tr.ToStage != domain.StageBehavioralInterview || tr.Candidate.InterviewRound != 2 {
		t.Fatalf("unexpected transition %+v", tr)
	}

	if _, err := Apply(candidateIn(domain.CandidateApplied, domain.StageApplication), InterviewScheduled{Round: 1}); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected invalid transition from applied, got %v", err)
	}
	if _, err := Apply(candidateIn(domain.CandidateScreening, domain.StagePhoneScreen), InterviewScheduled{Round: 0}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error for round 0, got %v", err)
	}
}

func TestHoldAndReactivate(t *testing.T) {
	t.Parallel()

	c := candidateIn(domain.CandidateInterview, domain.StageFinalInterview)
	c.InterviewRound = 3

	held, err := Apply(c, Hold{Reason: "budget freeze"})
	if err != nil {
		t.Fatalf("hold: %v", err)
	}
	if held.To != domain.CandidateOnHold || held.Note != "budget freeze" {
		t.Fatalf("unexpected hold transition %+v", held)
	}
	if _, err := Apply(held.Candidate, Hold{}); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("double hold: expected invalid transition, got %v", err)
	}

	back, err := Apply(held.Candidate, Reactivate{})
	if err != nil {
		t.Fatalf("reactivate: %v", err)
	}
	if back.To != domain.CandidateInterview || back.ToStage != domain.StageFinalInterview {
		t.Fatalf("expected interview/final_interview, got %s/%s", back.To, back.ToStage)
	}
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	t.Parallel()

	c := candidateIn(domain.CandidateApplied, domain.StageApplication)
	c.Strengths = []string{"Go"}
	tr, err := Apply(c, TierAssigned{Tier: domain.TierHire})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	tr.Candidate.Strengths[0] = "changed"
	if c.Status != domain.CandidateApplied || c.Strengths[0] != "Go" {
		t.Fatalf("input candidate was mutated: %+v", c)
	}
}

func TestEndToEndHireTier(t *testing.T) {
	t.Parallel()

	tr, err := Apply(candidateIn(domain.CandidateApplied, domain.StageApplication), TierAssigned{Tier: domain.TierHire})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tr.To != domain.CandidateScreening || tr.ToStage != domain.StagePhoneScreen {
		t.Fatalf("expected screening/phone_screen, got %s/%s", tr.To, tr.ToStage)
	}
}

func TestManualEvent(t *testing.T) {
	t.Parallel()

	e, err := ManualEvent("withdraw", "accepted elsewhere")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w, ok := e.(Withdraw); !ok || w.Reason != "accepted elsewhere" {
		t.Fatalf("unexpected event %#v", e)
	}
	if _, err := ManualEvent("promote", ""); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
