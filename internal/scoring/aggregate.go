// Package scoring turns a candidate's assessments into a composite score and tier.
package scoring

import (
	"fmt"
	"sort"
	"strings"

	"hiring-pipeline/internal/domain"
)

// Result is the outcome of one aggregation.
type Result struct {
	Composite  float64                 `json:"composite"`
	Tier       domain.Tier             `json:"tier"`
	Resume     *float64                `json:"resume,omitempty"`
	Skills     *float64                `json:"skills,omitempty"`
	Culture    *float64                `json:"culture,omitempty"`
	Experience *float64                `json:"experience,omitempty"`
	Strengths  []string                `json:"strengths"`
	Weaknesses []string                `json:"weaknesses"`
	Missing    []domain.AssessmentType `json:"missing,omitempty"`
	Degraded   bool                    `json:"degraded"`
	Warnings   []string                `json:"warnings,omitempty"`
}

// Complete reports whether every assessment type contributed.
func (r Result) Complete() bool { return len(r.Missing) == 0 }

// TierFor maps a composite score onto the fixed thresholds.
func TierFor(score float64) domain.Tier {
	switch {
	case score >= 90:
		return domain.TierStrongHire
	case score >= 75:
		return domain.TierHire
	case score >= 60:
		return domain.TierMaybe
	case score >= 40:
		return domain.TierPass
	default:
		return domain.TierStrongPass
	}
}

// Aggregate combines the latest assessment of each type using w.
// Missing types count as zero and are reported, so the caller sees the bias.
// Zero weights fall back to the default split.
func Aggregate(assessments []domain.Assessment, w domain.ScoreWeights) Result {
	if w.IsZero() {
		w = domain.DefaultWeights()
	}

	ordered := make([]domain.Assessment, len(assessments))
	copy(ordered, assessments)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].CreatedAt.Before(ordered[j].CreatedAt)
	})

	latest := make(map[domain.AssessmentType]domain.Assessment, len(domain.AssessmentTypes))
	var res Result
	strengths := newUnion()
	weaknesses := newUnion()
	for _, a := range ordered {
		if !a.Type.Valid() {
			res.Warnings = append(res.Warnings, fmt.Sprintf("ignored assessment %s with unknown type %q", a.ID, a.Type))
			continue
		}
		// later entries win, ordered is chronological
		latest[a.Type] = a
		strengths.add(a.Strengths...)
		weaknesses.add(a.Weaknesses...)
		if a.ExperienceScore != nil {
			res.Experience = domain.Float(domain.ClampScore(*a.ExperienceScore))
		}
	}

	score := func(t domain.AssessmentType) (*float64, float64) {
		a, ok := latest[t]
		if !ok {
			res.Missing = append(res.Missing, t)
			return nil, 0
		}
		if a.Degraded {
			res.Degraded = true
			reason := a.DegradedReason
			if reason == "" {
				reason = "upstream scoring failed"
			}
			res.Warnings = append(res.Warnings, fmt.Sprintf("%s assessment is degraded: %s", t, reason))
		}
		v := domain.ClampScore(a.OverallScore)
		return &v, v
	}

	var resume, skills, culture float64
	res.Resume, resume = score(domain.AssessmentResumeReview)
	res.Skills, skills = score(domain.AssessmentSkills)
	res.Culture, culture = score(domain.AssessmentCultureFit)

	if len(res.Missing) > 0 {
		names := make([]string, len(res.Missing))
		for i, m := range res.Missing {
			names[i] = string(m)
		}
		res.Warnings = append(res.Warnings, fmt.Sprintf("missing assessments scored as 0: %s", strings.Join(names, ", ")))
	}

	res.Composite = domain.ClampScore(culture*w.Culture + skills*w.Skills + resume*w.Resume)
	res.Tier = TierFor(res.Composite)
	res.Strengths = strengths.items
	res.Weaknesses = weaknesses.items
	return res
}

// Apply writes the aggregate onto the candidate. Status and stage are left
// to the candidate state machine.
func (r Result) Apply(c *domain.Candidate) {
	c.ResumeScore = r.Resume
	c.SkillsScore = r.Skills
	c.CultureScore = r.Culture
	if r.Experience != nil {
		c.ExperienceScore = r.Experience
	}
	c.OverallScore = domain.Float(r.Composite)
	c.AIRecommendation = r.Tier
	c.Strengths = Union(c.Strengths, r.Strengths)
	c.Weaknesses = Union(c.Weaknesses, r.Weaknesses)
}
