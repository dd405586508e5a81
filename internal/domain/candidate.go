package domain

import "time"

type CandidateStatus string

const (
	CandidateApplied   CandidateStatus = "applied"
	CandidateScreening CandidateStatus = "screening"
	CandidateInterview CandidateStatus = "interview"
	CandidateOffer     CandidateStatus = "offer"
	CandidateHired     CandidateStatus = "hired"
	CandidateRejected  CandidateStatus = "rejected"
	CandidateWithdrawn CandidateStatus = "withdrawn"
	CandidateOnHold    CandidateStatus = "on_hold"
)

// IsTerminal reports whether no pipeline event may change the candidate again.
func (s CandidateStatus) IsTerminal() bool {
	return s == CandidateHired || s == CandidateRejected || s == CandidateWithdrawn
}

type Stage string

const (
	StageApplication         Stage = "application"
	StageResumeReview        Stage = "resume_review"
	StagePhoneScreen         Stage = "phone_screen"
	StageTechnicalAssessment Stage = "technical_assessment"
	StageBehavioralInterview Stage = "behavioral_interview"
	StageFinalInterview      Stage = "final_interview"
	StageReferenceCheck      Stage = "reference_check"
	StageOffer               Stage = "offer"
	StageHired               Stage = "hired"
)

// Tier is the recommendation bucket derived from a composite score.
type Tier string

const (
	TierStrongHire Tier = "strong_hire"
	TierHire       Tier = "hire"
	TierMaybe      Tier = "maybe"
	TierPass       Tier = "pass"
	TierStrongPass Tier = "strong_pass"
)

func (t Tier) Valid() bool {
	switch t {
	case TierStrongHire, TierHire, TierMaybe, TierPass, TierStrongPass:
		return true
	}
	return false
}

type Candidate struct {
	ID               string          `json:"id"`
	TenantID         string          `json:"tenant_id"`
	RequisitionID    string          `json:"requisition_id"`
	Name             string          `json:"name"`
	Email            string          `json:"email"`
	ResumeScore      *float64        `json:"resume_score,omitempty"`
	SkillsScore      *float64        `json:"skills_score,omitempty"`
	CultureScore     *float64        `json:"culture_score,omitempty"`
	ExperienceScore  *float64        `json:"experience_score,omitempty"`
	OverallScore     *float64        `json:"overall_score,omitempty"`
	Status           CandidateStatus `json:"status"`
	Stage            Stage           `json:"stage"`
	AIRecommendation Tier            `json:"ai_recommendation,omitempty"`
	Strengths        []string        `json:"strengths"`
	Weaknesses       []string        `json:"weaknesses"`
	InterviewRound   int             `json:"interview_round"`
	Version          int             `json:"version"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

func (c *Candidate) Validate() error {
	if c.TenantID == "" {
		return Invalid("tenant_id", "is required")
	}
	if c.RequisitionID == "" {
		return Invalid("requisition_id", "is required")
	}
	if c.Name == "" {
		return Invalid("name", "is required")
	}
	return nil
}

func (c Candidate) Clone() Candidate {
	c.ResumeScore = cloneFloat(c.ResumeScore)
	c.SkillsScore = cloneFloat(c.SkillsScore)
	c.CultureScore = cloneFloat(c.CultureScore)
	c.ExperienceScore = cloneFloat(c.ExperienceScore)
	c.OverallScore = cloneFloat(c.OverallScore)
	c.Strengths = cloneStrings(c.Strengths)
	c.Weaknesses = cloneStrings(c.Weaknesses)
	return c
}
