// Package consensus folds interviewer feedback into one interview outcome.
package consensus

import (
	"sort"

	"hiring-pipeline/internal/domain"
	"hiring-pipeline/internal/scoring"
)

// SupermajorityPercent is the share of positive votes a strong_yes needs to carry.
const SupermajorityPercent = 60

// tieOrder ranks recommendations for plurality ties: nearest to maybe first,
// the more conservative one on equal distance.
var tieOrder = map[domain.Recommendation]int{
	domain.RecommendMaybe:     0,
	domain.RecommendNo:        1,
	domain.RecommendYes:       2,
	domain.RecommendStrongNo:  3,
	domain.RecommendStrongYes: 4,
}

type Result struct {
	Scores         domain.CategoryScores         `json:"scores"`
	OverallScore   float64                       `json:"overall_score"`
	Recommendation domain.Recommendation         `json:"recommendation"`
	Votes          map[domain.Recommendation]int `json:"votes"`
	FeedbackCount  int                           `json:"feedback_count"`
	Strengths      []string                      `json:"strengths"`
	Weaknesses     []string                      `json:"weaknesses"`
	Concerns       []string                      `json:"concerns"`
}

// Ready reports whether enough feedback arrived to aggregate. With no
// expected panel a single submission is enough.
func Ready(count, expected int) bool {
	if expected <= 0 {
		return count > 0
	}
	return count >= expected
}

// Aggregate averages the category scores and derives the consensus vote.
// The result does not depend on the order of feedback.
func Aggregate(feedback []domain.Feedback) Result {
	ordered := make([]domain.Feedback, len(feedback))
	copy(ordered, feedback)
	sort.SliceStable(ordered, func(i, j int) bool {
		if !ordered[i].SubmittedAt.Equal(ordered[j].SubmittedAt) {
			return ordered[i].SubmittedAt.Before(ordered[j].SubmittedAt)
		}
		return ordered[i].InterviewerID < ordered[j].InterviewerID
	})

	res := Result{
		Votes:         map[domain.Recommendation]int{},
		FeedbackCount: len(ordered),
	}

	var sums, counts [5]float64
	var strengths, weaknesses, concerns [][]string
	for _, f := range ordered {
		for i, s := range f.Scores.Named() {
			if s.Value == nil {
				continue
			}
			sums[i] += *s.Value
			counts[i]++
		}
		if f.Recommendation.Valid() {
			res.Votes[f.Recommendation]++
		}
		strengths = append(strengths, f.Strengths)
		weaknesses = append(weaknesses, f.Weaknesses)
		concerns = append(concerns, f.Concerns)
	}

	var avgs [5]float64
	var total float64
	for i := range sums {
		if counts[i] > 0 {
			avgs[i] = sums[i] / counts[i]
		}
		total += avgs[i]
	}
	res.Scores = domain.CategoryScores{
		Technical:      domain.Float(domain.RoundScore(avgs[0])),
		Communication:  domain.Float(domain.RoundScore(avgs[1])),
		ProblemSolving: domain.Float(domain.RoundScore(avgs[2])),
		Culture:        domain.Float(domain.RoundScore(avgs[3])),
		Leadership:     domain.Float(domain.RoundScore(avgs[4])),
	}
	res.OverallScore = domain.RoundScore(total / float64(len(avgs)))
	res.Recommendation = Decide(res.Votes)
	res.Strengths = scoring.Union(strengths...)
	res.Weaknesses = scoring.Union(weaknesses...)
	res.Concerns = scoring.Union(concerns...)
	return res
}

// Decide applies veto, supermajority and plurality in that order.
// It returns an empty recommendation when there are no votes.
func Decide(votes map[domain.Recommendation]int) domain.Recommendation {
	total := 0
	for _, n := range votes {
		total += n
	}
	if total == 0 {
		return ""
	}
	if votes[domain.RecommendStrongNo] > 0 {
		return domain.RecommendStrongNo
	}
	positive := votes[domain.RecommendStrongYes] + votes[domain.RecommendYes]
	if votes[domain.RecommendStrongYes] > 0 && positive*100 >= SupermajorityPercent*total {
		return domain.RecommendStrongYes
	}

	var best domain.Recommendation
	bestCount := -1
	for rec, n := range votes {
		if n == 0 {
			continue
		}
		if n > bestCount || (n == bestCount && tieOrder[rec] < tieOrder[best]) {
			best, bestCount = rec, n
		}
	}
	return best
}
