package domain

import "time"

type AssessmentType string

const (
	AssessmentResumeReview AssessmentType = "resume_review"
	AssessmentSkills       AssessmentType = "skills"
	AssessmentCultureFit   AssessmentType = "culture_fit"
)

// AssessmentTypes lists the types the composite score consumes.
var AssessmentTypes = []AssessmentType{AssessmentResumeReview, AssessmentSkills, AssessmentCultureFit}

func (t AssessmentType) Valid() bool {
	switch t {
	case AssessmentResumeReview, AssessmentSkills, AssessmentCultureFit:
		return true
	}
	return false
}

type AssessmentSource string

const (
	SourceAI     AssessmentSource = "ai"
	SourceManual AssessmentSource = "manual"
)

// DefaultPassingThreshold is applied when an assessment carries none.
const DefaultPassingThreshold = 70.0

// Assessment is append-only; it is never updated after insert.
type Assessment struct {
	ID               string           `json:"id"`
	TenantID         string           `json:"tenant_id"`
	CandidateID      string           `json:"candidate_id"`
	Type             AssessmentType   `json:"assessment_type"`
	OverallScore     float64          `json:"overall_score"`
	ExperienceScore  *float64         `json:"experience_score,omitempty"`
	PassingThreshold float64          `json:"passing_threshold"`
	Passed           bool             `json:"passed"`
	Strengths        []string         `json:"strengths"`
	Weaknesses       []string         `json:"weaknesses"`
	SkillGaps        []string         `json:"skill_gaps"`
	Source           AssessmentSource `json:"source"`
	Degraded         bool             `json:"degraded"`
	DegradedReason   string           `json:"degraded_reason,omitempty"`
	CreatedAt        time.Time        `json:"created_at"`
}

// Finalize clamps the score, applies the default threshold and derives Passed.
func (a *Assessment) Finalize() {
	a.OverallScore = ClampScore(a.OverallScore)
	if a.ExperienceScore != nil {
		v := ClampScore(*a.ExperienceScore)
		a.ExperienceScore = &v
	}
	if a.PassingThreshold <= 0 {
		a.PassingThreshold = DefaultPassingThreshold
	}
	a.Passed = !a.Degraded && a.OverallScore >= a.PassingThreshold
}

func (a *Assessment) Validate() error {
	if a.TenantID == "" {
		return Invalid("tenant_id", "is required")
	}
	if a.CandidateID == "" {
		return Invalid("candidate_id", "is required")
	}
	if !a.Type.Valid() {
		return Invalid("assessment_type", "unknown type %q", a.Type)
	}
	if a.OverallScore < 0 || a.OverallScore > 100 {
		return Invalid("overall_score", "must be within 0..100")
	}
	if a.ExperienceScore != nil && (*a.ExperienceScore < 0 || *a.ExperienceScore > 100) {
		return Invalid("experience_score", "must be within 0..100")
	}
	return nil
}

func (a Assessment) Clone() Assessment {
	a.ExperienceScore = cloneFloat(a.ExperienceScore)
	a.Strengths = cloneStrings(a.Strengths)
	a.Weaknesses = cloneStrings(a.Weaknesses)
	a.SkillGaps = cloneStrings(a.SkillGaps)
	return a
}
