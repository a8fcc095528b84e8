package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScorePercent(t *testing.T) {
	tests := []struct {
		name     string
		correct  int
		total    int
		expected float64
	}{
		{"all correct", 10, 10, 100},
		{"none correct", 0, 10, 0},
		{"two thirds", 2, 3, 66.7},
		{"one of seven", 1, 7, 14.3},
		{"zero total", 5, 0, 0},
		{"negative total", 1, -1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ScorePercent(tt.correct, tt.total))
		})
	}
}

func TestBoolToNumber(t *testing.T) {
	assert.Equal(t, 1, BoolToNumber(true))
	assert.Equal(t, 0, BoolToNumber(false))
	assert.True(t, NumberToBool(1))
	assert.False(t, NumberToBool(0))
}
