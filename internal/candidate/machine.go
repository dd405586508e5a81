// Package candidate derives candidate status and stage from pipeline events.
package candidate

import (
	"fmt"

	"hiring-pipeline/internal/domain"
)

// FinalRound is the first round whose yes consensus leads to an offer.
const FinalRound = 3

// Transition describes one applied event.
type Transition struct {
	Event     string                 `json:"event"`
	From      domain.CandidateStatus `json:"from"`
	To        domain.CandidateStatus `json:"to"`
	FromStage domain.Stage           `json:"from_stage"`
	ToStage   domain.Stage           `json:"to_stage"`
	Note      string                 `json:"note,omitempty"`
	Candidate domain.Candidate       `json:"candidate"`
}

// Changed reports whether status or stage moved.
func (t Transition) Changed() bool {
	return t.From != t.To || t.FromStage != t.ToStage
}

// StageForRound maps an interview round onto its stage.
func StageForRound(round int) domain.Stage {
	switch {
	case round <= 1:
		return domain.StageTechnicalAssessment
	case round == 2:
		return domain.StageBehavioralInterview
	default:
		return domain.StageFinalInterview
	}
}

// Apply returns the candidate after e. The input is not modified.
// Terminal candidates reject every event.
func Apply(c domain.Candidate, e Event) (Transition, error) {
	next := c.Clone()
	tr := Transition{
		Event:     e.Name(),
		From:      c.Status,
		FromStage: c.Stage,
	}

	if c.Status.IsTerminal() {
		return tr, refuse(c, e, "candidate is in a terminal state")
	}

	var err error
	switch ev := e.(type) {
	case TierAssigned:
		err = applyTier(&next, ev, &tr)
	case InterviewScheduled:
		err = applyInterview(&next, ev)
	case ConsensusReached:
		err = applyConsensus(&next, ev, &tr)
	case OfferExtended:
		if !in(c.Status, domain.CandidateScreening, domain.CandidateInterview, domain.CandidateOffer) {
			err = refuse(c, e, "")
			break
		}
		next.Status, next.Stage = domain.CandidateOffer, domain.StageOffer
	case OfferAccepted:
		if c.Status != domain.CandidateOffer {
			err = refuse(c, e, "")
			break
		}
		next.Status, next.Stage = domain.CandidateHired, domain.StageHired
	case OfferDeclined, OfferWithdrawn:
		next.Status = domain.CandidateRejected
	case Reject:
		next.Status = domain.CandidateRejected
		tr.Note = ev.Reason
	case Withdraw:
		next.Status = domain.CandidateWithdrawn
		tr.Note = ev.Reason
	case Hold:
		if c.Status == domain.CandidateOnHold {
			err = refuse(c, e, "already on hold")
			break
		}
		next.Status = domain.CandidateOnHold
		tr.Note = ev.Reason
	case Reactivate:
		if c.Status != domain.CandidateOnHold {
			err = refuse(c, e, "candidate is not on hold")
			break
		}
		next.Status = statusForStage(c)
	default:
		err = fmt.Errorf("unsupported candidate event %T", e)
	}
	if err != nil {
		return tr, err
	}

	tr.To, tr.ToStage = next.Status, next.Stage
	tr.Candidate = next
	return tr, nil
}

func applyTier(c *domain.Candidate, ev TierAssigned, tr *Transition) error {
	if !ev.Tier.Valid() {
		return domain.Invalid("tier", "unknown tier %q", ev.Tier)
	}
	c.AIRecommendation = ev.Tier
	if !in(c.Status, domain.CandidateApplied, domain.CandidateScreening) {
		tr.Note = "tier recorded, status retained"
		return nil
	}
	switch ev.Tier {
	case domain.TierStrongHire:
		c.Status, c.Stage = domain.CandidateScreening, domain.StageTechnicalAssessment
	case domain.TierHire:
		c.Status, c.Stage = domain.CandidateScreening, domain.StagePhoneScreen
	case domain.TierMaybe:
		c.Status, c.Stage = domain.CandidateScreening, domain.StageResumeReview
		tr.Note = "held for manual review"
	default:
		c.Status = domain.CandidateRejected
	}
	return nil
}

func applyInterview(c *domain.Candidate, ev InterviewScheduled) error {
	if ev.Round < 1 {
		return domain.Invalid("round", "must be at least 1")
	}
	if !in(c.Status, domain.CandidateScreening, domain.CandidateInterview) {
		return refuse(*c, ev, "")
	}
	c.Status = domain.CandidateInterview
	c.Stage = StageForRound(ev.Round)
	c.InterviewRound = ev.Round
	return nil
}

func applyConsensus(c *domain.Candidate, ev ConsensusReached, tr *Transition) error {
	if c.Status != domain.CandidateInterview {
		return refuse(*c, ev, "")
	}
	switch ev.Recommendation {
	case domain.RecommendStrongYes:
		c.Status, c.Stage = domain.CandidateOffer, domain.StageOffer
	case domain.RecommendYes:
		if ev.Round >= FinalRound {
			c.Status, c.Stage = domain.CandidateOffer, domain.StageReferenceCheck
			break
		}
		c.InterviewRound = ev.Round + 1
		c.Stage = StageForRound(c.InterviewRound)
		tr.Note = fmt.Sprintf("advanced to round %d", c.InterviewRound)
	case domain.RecommendMaybe:
		tr.Note = "additional assessment requested"
	case domain.RecommendNo, domain.RecommendStrongNo:
		c.Status = domain.CandidateRejected
	default:
		return domain.Invalid("recommendation", "unknown recommendation %q", ev.Recommendation)
	}
	return nil
}

// statusForStage recovers the status a held candidate returns to.
func statusForStage(c domain.Candidate) domain.CandidateStatus {
	switch c.Stage {
	case domain.StageApplication, "":
		return domain.CandidateApplied
	case domain.StageResumeReview, domain.StagePhoneScreen:
		return domain.CandidateScreening
	case domain.StageTechnicalAssessment:
		if c.InterviewRound > 0 {
			return domain.CandidateInterview
		}
		return domain.CandidateScreening
	case domain.StageBehavioralInterview, domain.StageFinalInterview:
		return domain.CandidateInterview
	default:
		return domain.CandidateOffer
	}
}

func refuse(c domain.Candidate, e Event, reason string) error {
	return &domain.TransitionError{
		Entity:  "candidate",
		ID:      c.ID,
		Current: string(c.Status),
		Action:  e.Name(),
		Reason:  reason,
	}
}

func in(s domain.CandidateStatus, set ...domain.CandidateStatus) bool {
	for _, v := range set {
		if s == v {
			return true
		}
	}
	return false
}
