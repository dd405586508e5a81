package trigger

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"hiring-pipeline/internal/domain"
)

type summary struct {
	Type     string
	Priority Priority
	Target   string
}

func summarize(ts []Trigger) []summary {
	var out []summary
	for _, t := range ts {
		out = append(out, summary{t.Type, t.Priority, t.Target})
	}
	return out
}

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		event Event
		want  []summary
	}{
		{
			name:  "offer accepted",
			event: Event{Type: EventOfferAccepted},
			want: []summary{
				{"onboarding_trigger", PriorityCritical, TargetOnboarding},
				{"skills_profile_seed", PriorityMedium, TargetSkills},
			},
		},
		{
			name:  "requisition filled",
			event: Event{Type: EventRequisitionFilled},
			want:  []summary{{"structure_update", PriorityHigh, TargetStructurePlanning}},
		},
		{
			name:  "strong yes consensus",
			event: Event{Type: EventInterviewConsensus, Recommendation: domain.RecommendStrongYes, Round: 1},
			want:  []summary{{"offer_generation_required", PriorityHigh, TargetHiring}},
		},
		{
			name:  "final round yes",
			event: Event{Type: EventInterviewConsensus, Recommendation: domain.RecommendYes, Round: 3},
			want:  []summary{{"offer_generation_required", PriorityHigh, TargetHiring}},
		},
		{
			name:  "early round yes",
			event: Event{Type: EventInterviewConsensus, Recommendation: domain.RecommendYes, Round: 1},
			want:  nil,
		},
		{
			name:  "maybe consensus",
			event: Event{Type: EventInterviewConsensus, Recommendation: domain.RecommendMaybe, Round: 2},
			want:  []summary{{"additional_assessment_required", PriorityMedium, TargetHiring}},
		},
		{
			name:  "no consensus",
			event: Event{Type: EventInterviewConsensus, Recommendation: domain.RecommendNo},
			want:  []summary{{"candidate_rejected", PriorityLow, TargetNotifications}},
		},
		{
			name:  "strong hire score",
			event: Event{Type: EventCandidateScored, Tier: domain.TierStrongHire},
			want:  []summary{{"fast_track_review", PriorityHigh, TargetHiring}},
		},
		{
			name:  "plain hire score",
			event: Event{Type: EventCandidateScored, Tier: domain.TierHire},
			want:  nil,
		},
		{
			name:  "offer expired",
			event: Event{Type: EventOfferExpired},
			want:  []summary{{"requisition_reopen_review", PriorityMedium, TargetRecruiting}},
		},
		{
			name:  "offer withdrawn",
			event: Event{Type: EventOfferWithdrawn},
			want:  []summary{{"offer_withdrawn_notice", PriorityLow, TargetNotifications}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if diff := cmp.Diff(tt.want, summarize(Classify(tt.event))); diff != "" {
				t.Fatalf("triggers mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestClassifyPayload(t *testing.T) {
	t.Parallel()

	at := time.Date(2025, 5, 1, 8, 30, 0, 0, time.UTC)
	ts := Classify(Event{
		Type:          EventOfferAccepted,
		TenantID:      "t-1",
		CandidateID:   "c-1",
		OfferID:       "o-1",
		RequisitionID: "r-1",
		OccurredAt:    at,
	})
	want := map[string]any{
		"candidate_id":   "c-1",
		"offer_id":       "o-1",
		"requisition_id": "r-1",
		"occurred_at":    "2025-05-01T08:30:00Z",
	}
	if diff := cmp.Diff(want, ts[0].Payload); diff != "" {
		t.Fatalf("payload mismatch (-want +got):\n%s", diff)
	}
	if ts[0].TenantID != "t-1" || ts[0].Event != EventOfferAccepted {
		t.Fatalf("unexpected trigger %+v", ts[0])
	}
}

func TestClassifyAllSortsAcrossEvents(t *testing.T) {
	t.Parallel()

	ts := ClassifyAll(Event{Type: EventRequisitionFilled}, Event{Type: EventOfferAccepted})
	got := []string{}
	for _, tr := range ts {
		got = append(got, tr.Type)
	}
	want := []string{"onboarding_trigger", "structure_update", "skills_profile_seed"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
}
