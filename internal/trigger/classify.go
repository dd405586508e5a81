// Package trigger maps pipeline events onto downstream notifications.
package trigger

import (
	"sort"
	"time"

	"hiring-pipeline/internal/candidate"
	"hiring-pipeline/internal/domain"
)

type EventType string

const (
	EventCandidateScored    EventType = "candidate.scored"
	EventInterviewConsensus EventType = "interview.consensus"
	EventOfferCreated       EventType = "offer.created"
	EventOfferSent          EventType = "offer.sent"
	EventOfferAccepted      EventType = "offer.accepted"
	EventOfferRejected      EventType = "offer.rejected"
	EventOfferExpired       EventType = "offer.expired"
	EventOfferWithdrawn     EventType = "offer.withdrawn"
	EventRequisitionFilled  EventType = "requisition.filled"
)

type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
	PriorityLow      Priority = "low"
)

// Rank orders priorities, lower is more urgent.
func (p Priority) Rank() int {
	switch p {
	case PriorityCritical:
		return 0
	case PriorityHigh:
		return 1
	case PriorityMedium:
		return 2
	default:
		return 3
	}
}

const (
	TargetOnboarding        = "onboarding"
	TargetSkills            = "skills"
	TargetStructurePlanning = "structure_planning"
	TargetHiring            = "hiring"
	TargetRecruiting        = "recruiting"
	TargetNotifications     = "notifications"
)

// Event is a completed pipeline event.
type Event struct {
	Type           EventType             `json:"type"`
	TenantID       string                `json:"tenant_id"`
	RequisitionID  string                `json:"requisition_id,omitempty"`
	CandidateID    string                `json:"candidate_id,omitempty"`
	InterviewID    string                `json:"interview_id,omitempty"`
	OfferID        string                `json:"offer_id,omitempty"`
	Tier           domain.Tier           `json:"tier,omitempty"`
	Recommendation domain.Recommendation `json:"recommendation,omitempty"`
	Round          int                   `json:"round,omitempty"`
	OccurredAt     time.Time             `json:"occurred_at"`
}

// Trigger is a typed, prioritized notification for one downstream module.
type Trigger struct {
	Type     string         `json:"type"`
	Priority Priority       `json:"priority"`
	Target   string         `json:"target"`
	Event    EventType      `json:"event"`
	TenantID string         `json:"tenant_id"`
	Payload  map[string]any `json:"payload"`
}

type rule struct {
	kind     string
	priority Priority
	target   string
}

var (
	onboarding      = rule{"onboarding_trigger", PriorityCritical, TargetOnboarding}
	skillsSeed      = rule{"skills_profile_seed", PriorityMedium, TargetSkills}
	structureUpdate = rule{"structure_update", PriorityHigh, TargetStructurePlanning}
	offerGeneration = rule{"offer_generation_required", PriorityHigh, TargetHiring}
	moreAssessment  = rule{"additional_assessment_required", PriorityMedium, TargetHiring}
	rejected        = rule{"candidate_rejected", PriorityLow, TargetNotifications}
	fastTrack       = rule{"fast_track_review", PriorityHigh, TargetHiring}
	offerApproval   = rule{"offer_approval_required", PriorityMedium, TargetHiring}
	offerNotice     = rule{"candidate_offer_notification", PriorityMedium, TargetNotifications}
	reopenReview    = rule{"requisition_reopen_review", PriorityMedium, TargetRecruiting}
	withdrawnNotice = rule{"offer_withdrawn_notice", PriorityLow, TargetNotifications}
)

// Classify returns the triggers for e, most urgent first. Events with no
// downstream interest yield nil.
func Classify(e Event) []Trigger {
	var rules []rule
	switch e.Type {
	case EventOfferAccepted:
		rules = []rule{onboarding, skillsSeed}
	case EventRequisitionFilled:
		rules = []rule{structureUpdate}
	case EventInterviewConsensus:
		switch e.Recommendation {
		case domain.RecommendStrongYes:
			rules = []rule{offerGeneration}
		case domain.RecommendYes:
			if e.Round >= candidate.FinalRound {
				rules = []rule{offerGeneration}
			}
		case domain.RecommendMaybe:
			rules = []rule{moreAssessment}
		case domain.RecommendNo, domain.RecommendStrongNo:
			rules = []rule{rejected}
		}
	case EventCandidateScored:
		if e.Tier == domain.TierStrongHire {
			rules = []rule{fastTrack}
		}
	case EventOfferCreated:
		rules = []rule{offerApproval}
	case EventOfferSent:
		rules = []rule{offerNotice}
	case EventOfferRejected, EventOfferExpired:
		rules = []rule{reopenReview}
	case EventOfferWithdrawn:
		rules = []rule{withdrawnNotice}
	}
	if len(rules) == 0 {
		return nil
	}

	out := make([]Trigger, 0, len(rules))
	for _, r := range rules {
		out = append(out, Trigger{
			Type:     r.kind,
			Priority: r.priority,
			Target:   r.target,
			Event:    e.Type,
			TenantID: e.TenantID,
			Payload:  payload(e),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Priority.Rank() < out[j].Priority.Rank()
	})
	return out
}

// ClassifyAll merges the triggers of several events, most urgent first.
// Equal priorities keep event order.
func ClassifyAll(events ...Event) []Trigger {
	var out []Trigger
	for _, e := range events {
		out = append(out, Classify(e)...)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Priority.Rank() < out[j].Priority.Rank()
	})
	return out
}

func payload(e Event) map[string]any {
	p := map[string]any{}
	set := func(k, v string) {
		if v != "" {
			p[k] = v
		}
	}
	set("requisition_id", e.RequisitionID)
	set("candidate_id", e.CandidateID)
	set("interview_id", e.InterviewID)
	set("offer_id", e.OfferID)
	set("tier", string(e.Tier))
	set("recommendation", string(e.Recommendation))
	if e.Round > 0 {
		p["round"] = e.Round
	}
	if !e.OccurredAt.IsZero() {
		p["occurred_at"] = e.OccurredAt.UTC().Format(time.RFC3339)
	}
	return p
}
