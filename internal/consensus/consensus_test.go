package consensus

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"hiring-pipeline/internal/domain"
)

func votes(recs ...domain.Recommendation) []domain.Feedback {
	out := make([]domain.Feedback, len(recs))
	for i, r := range recs {
		out[i] = domain.Feedback{
			InterviewerID:  string(rune('a' + i)),
			Recommendation: r,
			SubmittedAt:    time.Date(2025, 3, 1, 10, i, 0, 0, time.UTC),
		}
	}
	return out
}

func TestAggregateRecommendation(t *testing.T) {
	t.Parallel()

	const (
		sy = domain.RecommendStrongYes
		y  = domain.RecommendYes
		m  = domain.RecommendMaybe
		n  = domain.RecommendNo
		sn = domain.RecommendStrongNo
	)

	tests := []struct {
		name string
		recs []domain.Recommendation
		want domain.Recommendation
	}{
		{"veto beats two strong yes", []domain.Recommendation{sy, sy, sn}, sn},
		{"veto alone", []domain.Recommendation{y, y, y, y, sn}, sn},
		{"supermajority with strong yes", []domain.Recommendation{sy, y, y}, sy},
		{"strong yes without supermajority", []domain.Recommendation{sy, m, n}, m},
		{"exactly sixty percent", []domain.Recommendation{sy, y, y, n, n}, sy},
		{"yes without strong yes is plurality", []domain.Recommendation{y, y, n}, y},
		{"plurality no", []domain.Recommendation{n, n, y}, n},
		{"tie yes and no goes to no", []domain.Recommendation{y, n}, n},
		{"tie maybe and yes goes to maybe", []domain.Recommendation{y, m}, m},
		{"single vote", []domain.Recommendation{y}, y},
		{"no votes", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Aggregate(votes(tt.recs...)).Recommendation
			if got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestAggregateIsOrderIndependent(t *testing.T) {
	t.Parallel()

	fb := votes(domain.RecommendYes, domain.RecommendNo, domain.RecommendMaybe, domain.RecommendYes, domain.RecommendNo)
	fb[0].Strengths = []string{"clear"}
	fb[3].Strengths = []string{"Clear", "fast"}

	forward := Aggregate(fb)
	reversed := make([]domain.Feedback, len(fb))
	for i := range fb {
		reversed[len(fb)-1-i] = fb[i]
	}
	backward := Aggregate(reversed)

	if diff := cmp.Diff(forward, backward); diff != "" {
		t.Fatalf("aggregate depends on order (-forward +backward):\n%s", diff)
	}
	if forward.Recommendation != domain.RecommendNo {
		t.Fatalf("expected tie between yes and no to resolve to no, got %s", forward.Recommendation)
	}
}

func TestAggregateScores(t *testing.T) {
	t.Parallel()

	fb := votes(domain.RecommendYes, domain.RecommendYes)
	fb[0].Scores = domain.CategoryScores{
		Technical:     domain.Float(4),
		Communication: domain.Float(3),
		Culture:       domain.Float(5),
	}
	fb[1].Scores = domain.CategoryScores{
		Technical:     domain.Float(5),
		Communication: domain.Float(4),
	}
	fb[0].Concerns = []string{"relocation"}
	fb[1].Concerns = []string{"Relocation", "notice period"}

	res := Aggregate(fb)

	want := domain.CategoryScores{
		Technical:      domain.Float(4.5),
		Communication:  domain.Float(3.5),
		ProblemSolving: domain.Float(0),
		Culture:        domain.Float(5),
		Leadership:     domain.Float(0),
	}
	if diff := cmp.Diff(want, res.Scores); diff != "" {
		t.Fatalf("scores mismatch (-want +got):\n%s", diff)
	}
	if res.OverallScore != 2.6 {
		t.Fatalf("expected overall 2.6, got %v", res.OverallScore)
	}
	if diff := cmp.Diff([]string{"relocation", "notice period"}, res.Concerns); diff != "" {
		t.Fatalf("concerns mismatch (-want +got):\n%s", diff)
	}
	if res.FeedbackCount != 2 {
		t.Fatalf("expected 2 feedback, got %d", res.FeedbackCount)
	}
}

func TestReady(t *testing.T) {
	t.Parallel()

	tests := []struct {
		count, expected int
		want            bool
	}{
		{0, 0, false},
		{1, 0, true},
		{2, 3, false},
		{3, 3, true},
		{4, 3, true},
	}
	for _, tt := range tests {
		if got := Ready(tt.count, tt.expected); got != tt.want {
			t.Errorf("Ready(%d, %d) = %v, want %v", tt.count, tt.expected, got, tt.want)
		}
	}
}
