package candidate

import "hiring-pipeline/internal/domain"

// Event is a pipeline event the candidate machine understands.
type Event interface {
	Name() string
}

// TierAssigned follows a score aggregation.
type TierAssigned struct{ Tier domain.Tier }

// InterviewScheduled moves the candidate into the given round.
type InterviewScheduled struct{ Round int }

// ConsensusReached carries the outcome of an aggregated interview round.
type ConsensusReached struct {
	Recommendation domain.Recommendation
	Round          int
}

type (
	OfferExtended  struct{}
	OfferAccepted  struct{}
	OfferDeclined  struct{}
	OfferWithdrawn struct{}
)

// Manual recruiter actions.
type (
	Reject     struct{ Reason string }
	Withdraw   struct{ Reason string }
	Hold       struct{ Reason string }
	Reactivate struct{}
)

func (TierAssigned) Name() string       { return "tier_assigned" }
func (InterviewScheduled) Name() string { return "interview_scheduled" }
func (ConsensusReached) Name() string   { return "consensus_reached" }
func (OfferExtended) Name() string      { return "offer_extended" }
func (OfferAccepted) Name() string      { return "offer_accepted" }
func (OfferDeclined) Name() string      { return "offer_declined" }
func (OfferWithdrawn) Name() string     { return "offer_withdrawn" }
func (Reject) Name() string             { return "reject" }
func (Withdraw) Name() string           { return "withdraw" }
func (Hold) Name() string               { return "hold" }
func (Reactivate) Name() string         { return "reactivate" }

// ManualEvent resolves a recruiter action name.
func ManualEvent(action, reason string) (Event, error) {
	switch action {
	case "reject":
		return Reject{Reason: reason}, nil
	case "withdraw":
		return Withdraw{Reason: reason}, nil
	case "hold":
		return Hold{Reason: reason}, nil
	case "reactivate":
		return Reactivate{}, nil
	}
	return nil, domain.Invalid("action", "unknown candidate action %q", action)
}
