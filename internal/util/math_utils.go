package util

import (
	"database/sql"
	"math"
)

// ScorePercent converts a correct/total pair into a percentage rounded to
// one decimal place. A zero total yields 0 rather than NaN.
func ScorePercent(correct, total int) float64 {
	if total <= 0 {
		return 0
	}
	return RoundTo1(100 * float64(correct) / float64(total))
}

// RoundTo1 rounds to one decimal place.
func RoundTo1(v float64) float64 {
	return math.Round(v*10) / 10
}

// RoundNullFloat rounds a nullable aggregate to one decimal place, treating
// NULL (no rows) as 0.
func RoundNullFloat(v sql.NullFloat64) float64 {
	if !v.Valid {
		return 0
	}
	return RoundTo1(v.Float64)
}
