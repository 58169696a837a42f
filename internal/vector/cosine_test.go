package vector

import (
	"math"
	"testing"
)

// TestCosine tests the rescaled cosine similarity contract.
func TestCosine(t *testing.T) {
	tests := []struct {
		name     string
		a        []float64
		b        []float64
		expected float64
	}{
		{
			name:     "identical direction",
			a:        []float64{1, 2, 3},
			b:        []float64{1, 2, 3},
			expected: 100,
		},
		{
			name:     "identical direction different magnitude",
			a:        []float64{1, 2, 3},
			b:        []float64{2, 4, 6},
			expected: 100,
		},
		{
			name:     "opposite direction",
			a:        []float64{1, 0},
			b:        []float64{-1, 0},
			expected: 0,
		},
		{
			name:     "orthogonal",
			a:        []float64{1, 0},
			b:        []float64{0, 1},
			expected: 50,
		},
		{
			name:     "zero vector",
			a:        []float64{0, 0, 0},
			b:        []float64{1, 2, 3},
			expected: NeutralSimilarity,
		},
		{
			name:     "both zero vectors",
			a:        []float64{0, 0},
			b:        []float64{0, 0},
			expected: NeutralSimilarity,
		},
		{
			name:     "empty vectors",
			a:        []float64{},
			b:        []float64{},
			expected: NeutralSimilarity,
		},
		{
			name:     "mismatched lengths",
			a:        []float64{1, 2, 3},
			b:        []float64{1, 2},
			expected: NeutralSimilarity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Cosine(tt.a, tt.b)
			if math.Abs(result-tt.expected) > 0.001 {
				t.Errorf("expected %f, got %f", tt.expected, result)
			}
		})
	}
}

// TestCosineCommutative verifies Cosine(a, b) == Cosine(b, a) for a sample
// of vector pairs including degenerate ones.
func TestCosineCommutative(t *testing.T) {
	pairs := [][2][]float64{
		{{1, 2, 3}, {4, 5, 6}},
		{{5, 5, 5, 5, 5, 5}, {3, 3, 3, 3, 3, 3}},
		{{1, 0}, {-1, 0}},
		{{0, 0}, {1, 1}},
		{{1, 2}, {1, 2, 3}},
	}

	for _, p := range pairs {
		ab := Cosine(p[0], p[1])
		ba := Cosine(p[1], p[0])
		if ab != ba {
			t.Errorf("Cosine(%v, %v)=%f but Cosine reversed=%f", p[0], p[1], ab, ba)
		}
	}
}

// TestCosineRange verifies results stay within [0, 100].
func TestCosineRange(t *testing.T) {
	vectors := [][]float64{
		{1, 2, 3},
		{-1, -2, -3},
		{0.0001, 0, 0},
		{100, -50, 25},
	}

	for _, a := range vectors {
		for _, b := range vectors {
			result := Cosine(a, b)
			if result < 0 || result > 100 {
				t.Errorf("Cosine(%v, %v)=%f out of [0, 100]", a, b, result)
			}
		}
	}
}
