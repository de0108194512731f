// Package vecmath provides the vector helpers used for scoring embeddings.
package vecmath

import "math"

// Normalize scales v to unit length in place and returns it. A zero vector
// is returned unchanged.
func Normalize(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return v
	}
	norm := math.Sqrt(sum)
	for i := range v {
		v[i] = float32(float64(v[i]) / norm)
	}
	return v
}

// Similarity is the dot product over the shared prefix of a and b. It only
// behaves like cosine similarity when both inputs are already normalized.
func Similarity(a, b []float32) float64 {
	n := min(len(a), len(b))
	var dot float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
	}
	return dot
}

// Score maps a cosine-like similarity into [0, 1].
func Score(sim float64) float64 {
	s := (sim + 1) / 2
	if math.IsNaN(s) || s < 0 {
		return 0
	}
	if s > 1 {
		return 1
	}
	return s
}
