// Package vector provides the small amount of vector math the retrieval
// engine needs: Euclidean norms and cosine similarity over raw float slices.
package vector

import "math"

// Norm returns the Euclidean norm of v, or false when v is empty.
func Norm(v []float64) (float64, bool) {
	if len(v) == 0 {
		return 0, false
	}
	sum := 0.0
	for _, value := range v {
		sum += value * value
	}
	return math.Sqrt(sum), true
}

// Cosine returns the cosine similarity dot(a,b) / (normA * normB).
// It returns false when either vector is empty, the lengths differ, or
// either norm is zero; callers skip such candidates instead of failing.
func Cosine(a []float64, normA float64, b []float64, normB float64) (float64, bool) {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) || normA == 0 || normB == 0 {
		return 0, false
	}
	dot := 0.0
	for i, value := range a {
		dot += value * b[i]
	}
	return dot / (normA * normB), true
}

// CosineVectors computes norms for both vectors and scores them. Convenience
// for callers that have no cached norms.
func CosineVectors(a, b []float64) (float64, bool) {
	normA, ok := Norm(a)
	if !ok {
		return 0, false
	}
	normB, ok := Norm(b)
	if !ok {
		return 0, false
	}
	return Cosine(a, normA, b, normB)
}
