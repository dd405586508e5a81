package domain

import (
	"strings"
	"time"
)

type InterviewStatus string

const (
	InterviewScheduled  InterviewStatus = "scheduled"
	InterviewInProgress InterviewStatus = "in_progress"
	InterviewCompleted  InterviewStatus = "completed"
	InterviewCancelled  InterviewStatus = "cancelled"
	InterviewNoShow     InterviewStatus = "no_show"
)

// AcceptsFeedback reports whether feedback may still be recorded.
func (s InterviewStatus) AcceptsFeedback() bool {
	return s == InterviewScheduled || s == InterviewInProgress
}

type Recommendation string

const (
	RecommendStrongYes Recommendation = "strong_yes"
	RecommendYes       Recommendation = "yes"
	RecommendMaybe     Recommendation = "maybe"
	RecommendNo        Recommendation = "no"
	RecommendStrongNo  Recommendation = "strong_no"
)

func (r Recommendation) Valid() bool {
	switch r {
	case RecommendStrongYes, RecommendYes, RecommendMaybe, RecommendNo, RecommendStrongNo:
		return true
	}
	return false
}

// CategoryScores holds the five 0..5 interview categories. Nil means unset.
type CategoryScores struct {
	Technical      *float64 `json:"technical,omitempty"`
	Communication  *float64 `json:"communication,omitempty"`
	ProblemSolving *float64 `json:"problem_solving,omitempty"`
	Culture        *float64 `json:"culture,omitempty"`
	Leadership     *float64 `json:"leadership,omitempty"`
}

// Named returns the categories in a fixed order.
func (c CategoryScores) Named() []NamedScore {
	return []NamedScore{
		{"technical", c.Technical},
		{"communication", c.Communication},
		{"problem_solving", c.ProblemSolving},
		{"culture", c.Culture},
		{"leadership", c.Leadership},
	}
}

type NamedScore struct {
	Name  string
	Value *float64
}

func (c CategoryScores) Clone() CategoryScores {
	return CategoryScores{
		Technical:      cloneFloat(c.Technical),
		Communication:  cloneFloat(c.Communication),
		ProblemSolving: cloneFloat(c.ProblemSolving),
		Culture:        cloneFloat(c.Culture),
		Leadership:     cloneFloat(c.Leadership),
	}
}

type Interview struct {
	ID                   string          `json:"id"`
	TenantID             string          `json:"tenant_id"`
	CandidateID          string          `json:"candidate_id"`
	Round                int             `json:"round"`
	Type                 string          `json:"interview_type"`
	ScheduledAt          *time.Time      `json:"scheduled_at,omitempty"`
	ExpectedInterviewers []string        `json:"expected_interviewers"`
	Status               InterviewStatus `json:"status"`
	Scores               CategoryScores  `json:"scores"`
	OverallScore         *float64        `json:"overall_score,omitempty"`
	Recommendation       Recommendation  `json:"recommendation,omitempty"`
	Strengths            []string        `json:"strengths"`
	Weaknesses           []string        `json:"weaknesses"`
	Concerns             []string        `json:"concerns"`
	AggregatedAt         *time.Time      `json:"aggregated_at,omitempty"`
	Version              int             `json:"version"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
}

// Aggregated reports whether consensus has already been written.
func (i *Interview) Aggregated() bool { return i.AggregatedAt != nil }

// PanelMember returns the panel's spelling of id. Without a panel the id is
// lower-cased so case variants still count as one interviewer.
func (i *Interview) PanelMember(id string) (string, bool) {
	if len(i.ExpectedInterviewers) == 0 {
		return strings.ToLower(id), true
	}
	for _, e := range i.ExpectedInterviewers {
		if strings.EqualFold(e, id) {
			return e, true
		}
	}
	return "", false
}

func (i *Interview) Validate() error {
	if i.TenantID == "" {
		return Invalid("tenant_id", "is required")
	}
	if i.CandidateID == "" {
		return Invalid("candidate_id", "is required")
	}
	if i.Round < 1 {
		return Invalid("round", "must be at least 1")
	}
	seen := map[string]bool{}
	for _, e := range i.ExpectedInterviewers {
		key := strings.ToLower(strings.TrimSpace(e))
		if key == "" {
			return Invalid("expected_interviewers", "contains an empty id")
		}
		if seen[key] {
			return Invalid("expected_interviewers", "duplicate interviewer %q", e)
		}
		seen[key] = true
	}
	return nil
}

func (i Interview) Clone() Interview {
	i.ScheduledAt = cloneTime(i.ScheduledAt)
	i.ExpectedInterviewers = cloneStrings(i.ExpectedInterviewers)
	i.Scores = i.Scores.Clone()
	i.OverallScore = cloneFloat(i.OverallScore)
	i.Strengths = cloneStrings(i.Strengths)
	i.Weaknesses = cloneStrings(i.Weaknesses)
	i.Concerns = cloneStrings(i.Concerns)
	i.AggregatedAt = cloneTime(i.AggregatedAt)
	return i
}

// Feedback is one interviewer's immutable submission.
type Feedback struct {
	ID             string         `json:"id"`
	TenantID       string         `json:"tenant_id"`
	InterviewID    string         `json:"interview_id"`
	InterviewerID  string         `json:"interviewer_id"`
	Scores         CategoryScores `json:"scores"`
	Strengths      []string       `json:"strengths"`
	Weaknesses     []string       `json:"weaknesses"`
	Concerns       []string       `json:"concerns"`
	Recommendation Recommendation `json:"recommendation"`
	Notes          string         `json:"notes,omitempty"`
	SubmittedAt    time.Time      `json:"submitted_at"`
}

func (f *Feedback) Validate() error {
	if strings.TrimSpace(f.InterviewerID) == "" {
		return Invalid("interviewer_id", "is required")
	}
	if !f.Recommendation.Valid() {
		return Invalid("recommendation", "unknown recommendation %q", f.Recommendation)
	}
	for _, s := range f.Scores.Named() {
		if s.Value != nil && (*s.Value < 0 || *s.Value > 5) {
			return Invalid(s.Name, "must be within 0..5")
		}
	}
	return nil
}

func (f Feedback) Clone() Feedback {
	f.Scores = f.Scores.Clone()
	f.Strengths = cloneStrings(f.Strengths)
	f.Weaknesses = cloneStrings(f.Weaknesses)
	f.Concerns = cloneStrings(f.Concerns)
	return f
}
