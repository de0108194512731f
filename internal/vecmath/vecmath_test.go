package vecmath

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSimilarity(t *testing.T) {
	tests := []struct {
		name     string
		a, b     []float32
		expected float64
	}{
		{"identical", []float32{1, 0, 0}, []float32{1, 0, 0}, 1.0},
		{"orthogonal", []float32{1, 0, 0}, []float32{0, 1, 0}, 0.0},
		{"opposite", []float32{1, 0, 0}, []float32{-1, 0, 0}, -1.0},
		{"empty", []float32{}, []float32{}, 0.0},
		{"nil", nil, []float32{1}, 0.0},
		{"different lengths uses prefix", []float32{1, 2}, []float32{3, 4, 5}, 11.0},
		{"not renormalized", []float32{2, 0}, []float32{3, 0}, 6.0},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, Similarity(tt.a, tt.b), 1e-6)
		})
	}
}

func TestNormalize(t *testing.T) {
	v := Normalize([]float32{3, 4})
	assert.InDelta(t, 0.6, v[0], 1e-6)
	assert.InDelta(t, 0.8, v[1], 1e-6)
	assert.InDelta(t, 1.0, Similarity(v, v), 1e-6)

	zero := Normalize([]float32{0, 0, 0})
	assert.Equal(t, []float32{0, 0, 0}, zero)

	assert.Empty(t, Normalize(nil))
}

func TestScore(t *testing.T) {
	assert.Equal(t, 1.0, Score(1))
	assert.Equal(t, 0.0, Score(-1))
	assert.Equal(t, 0.5, Score(0))
	assert.Equal(t, 1.0, Score(7))
	assert.Equal(t, 0.0, Score(-3))
	assert.Equal(t, 0.0, Score(math.NaN()))
}
