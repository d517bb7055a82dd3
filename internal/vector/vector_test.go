package vector

import (
	"math"
	"testing"
)

func TestNorm(t *testing.T) {
	norm, ok := Norm([]float64{3, 4})
	if !ok {
		t.Fatal("expected a norm for a non-empty vector")
	}
	if math.Abs(norm-5) > 1e-12 {
		t.Errorf("expected norm 5, got %v", norm)
	}

	if _, ok := Norm(nil); ok {
		t.Error("empty vector must not produce a norm")
	}
}

func TestCosine_SelfSimilarity(t *testing.T) {
	v := []float64{0.2, -0.7, 0.4}
	score, ok := CosineVectors(v, v)
	if !ok {
		t.Fatal("expected a score")
	}
	if math.Abs(score-1.0) > 1e-9 {
		t.Errorf("self similarity should be 1.0, got %v", score)
	}
}

func TestCosine_Symmetric(t *testing.T) {
	a := []float64{1, 0.5, -0.25}
	b := []float64{-0.3, 0.8, 0.1}

	ab, okAB := CosineVectors(a, b)
	ba, okBA := CosineVectors(b, a)
	if !okAB || !okBA {
		t.Fatal("expected scores both ways")
	}
	if math.Abs(ab-ba) > 1e-12 {
		t.Errorf("cosine must be symmetric: %v vs %v", ab, ba)
	}
	if ab < -1 || ab > 1 {
		t.Errorf("cosine out of [-1,1]: %v", ab)
	}
}

func TestCosine_SkipConditions(t *testing.T) {
	tests := []struct {
		name  string
		a, b  []float64
		normA float64
		normB float64
	}{
		{"empty a", nil, []float64{1}, 0, 1},
		{"empty b", []float64{1}, nil, 1, 0},
		{"length mismatch", []float64{1, 0}, []float64{1}, 1, 1},
		{"zero norm a", []float64{0, 0}, []float64{1, 0}, 0, 1},
		{"zero norm b", []float64{1, 0}, []float64{0, 0}, 1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, ok := Cosine(tt.a, tt.normA, tt.b, tt.normB); ok {
				t.Error("expected candidate to be skipped")
			}
		})
	}
}

func TestCosine_Orthogonal(t *testing.T) {
	score, ok := CosineVectors([]float64{1, 0, 0}, []float64{0, 1, 0})
	if !ok {
		t.Fatal("expected a score")
	}
	if score != 0 {
		t.Errorf("orthogonal vectors should score 0, got %v", score)
	}
}
