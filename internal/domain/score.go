package domain

import "math"

// RoundScore rounds to two decimal places.
func RoundScore(v float64) float64 {
	return math.Round(v*100) / 100
}

// ClampScore bounds v to 0..100 and rounds it.
func ClampScore(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return RoundScore(v)
}

// Float returns a pointer to v, for optional score fields.
func Float(v float64) *float64 { return &v }
