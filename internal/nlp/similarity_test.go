package nlp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSimilarity(t *testing.T) {
	tests := []struct {
		a, b     string
		expected float64
	}{
		{"order", "order", 1.0},
		{"", "", 1.0},
		{"ordr", "order", 0.8},
		{"servic", "service", 1.0 - 1.0/7.0},
		{"users", "user", 0.8},
		{"orders", "ordr", 1.0 - 2.0/6.0},
		{"abc", "xyz", 0.0},
		{"abc", "", 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.a+"_"+tt.b, func(t *testing.T) {
			assert.InDelta(t, tt.expected, Similarity(tt.a, tt.b), 1e-12)
			assert.InDelta(t, tt.expected, Similarity(tt.b, tt.a), 1e-12)
		})
	}
}

func TestMeetsThreshold(t *testing.T) {
	sim := Similarity("ordr", "order")

	assert.True(t, meetsThreshold(sim, 0.8))
	assert.True(t, meetsThreshold(sim, 0.8-1e-6))
	assert.False(t, meetsThreshold(sim, 0.8+1e-6))
}
