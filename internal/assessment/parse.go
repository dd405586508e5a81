package assessment

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Score is the provider's answer for one assessment type.
type Score struct {
	OverallScore    float64  `json:"overall_score"`
	ExperienceScore *float64 `json:"experience_score"`
	Strengths       []string `json:"strengths"`
	Weaknesses      []string `json:"weaknesses"`
	SkillGaps       []string `json:"skill_gaps"`
	Reasoning       string   `json:"reasoning"`
}

var errNoJSON = errors.New("no valid JSON found in LLM response")

func parseScore(response string) (Score, error) {
	jsonStr := extractJSON(response)
	if jsonStr == "" {
		return Score{}, errNoJSON
	}

	var raw struct {
		Score
		OverallScore *float64 `json:"overall_score"`
	}
	if err := json.Unmarshal([]byte(jsonStr), &raw); err != nil {
		return Score{}, fmt.Errorf("json parse error: %w", err)
	}
	if raw.OverallScore == nil {
		return Score{}, errors.New("response has no overall_score")
	}
	s := raw.Score
	s.OverallScore = *raw.OverallScore
	return s, nil
}

// extractJSON finds and extracts JSON object from text
// Handles cases where LLM adds markdown or extra text
func extractJSON(text string) string {
	start := -1
	braceCount := 0
	inString := false
	escaped := false

	for i, char := range text {
		if inString {
			switch {
			case escaped:
				escaped = false
			case char == '\\':
				escaped = true
			case char == '"':
				inString = false
			}
			continue
		}
		switch char {
		case '"':
			if start != -1 {
				inString = true
			}
		case '{':
			if start == -1 {
				start = i
			}
			braceCount++
		case '}':
			if start == -1 {
				continue
			}
			braceCount--
			if braceCount == 0 {
				return text[start : i+1]
			}
		}
	}
	return ""
}
