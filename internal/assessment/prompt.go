package assessment

import (
	"fmt"
	"strings"

	"hiring-pipeline/internal/domain"
)

const systemPrompt = "You are an expert technical recruiter. Return only valid JSON."

// maxResumeChars bounds the resume text sent to the provider.
const maxResumeChars = 12000

var focus = map[domain.AssessmentType]string{
	domain.AssessmentResumeReview: "how well the candidate's overall experience and background match the role",
	domain.AssessmentSkills:       "coverage of the required and preferred skills, listing any required skill that is missing as a skill gap",
	domain.AssessmentCultureFit:   "collaboration, communication, ownership and alignment with the team's way of working as evidenced in the resume",
}

func buildPrompt(kind domain.AssessmentType, req Request) string {
	resume := strings.TrimSpace(req.ResumeText)
	if r := []rune(resume); len(r) > maxResumeChars {
		resume = string(r[:maxResumeChars])
	}

	return fmt.Sprintf(`Evaluate this candidate for the position below. Focus on %s.

**Position:** %s
**Department:** %s
**Required skills:** %s
**Preferred skills:** %s

**Resume:**
"""
%s
"""

**Scoring Guidelines:**
- 90-100: exceeds requirements
- 75-89: meets all requirements
- 60-74: meets most requirements
- 40-59: meets some requirements
- 0-39: does not meet requirements

**Response Format (JSON):**
{
  "overall_score": 82.5,
  "experience_score": 75,
  "strengths": ["..."],
  "weaknesses": ["..."],
  "skill_gaps": ["..."],
  "reasoning": "one or two sentences"
}

Return ONLY valid JSON, no markdown formatting.`,
		focus[kind],
		req.Requisition.Title,
		orNone(req.Requisition.Department),
		listOrNone(req.Requisition.RequiredSkills),
		listOrNone(req.Requisition.PreferredSkills),
		resume,
	)
}

func orNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return "None listed"
	}
	return s
}

func listOrNone(items []string) string {
	return orNone(strings.Join(items, ", "))
}
