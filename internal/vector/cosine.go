// Package vector provides vector similarity primitives for profile matching.
package vector

import "math"

// NeutralSimilarity is returned for degenerate inputs (zero vectors, empty
// or mismatched-length vectors). Downstream scoring works on a [0, 100]
// scale, so the orthogonal midpoint avoids poisoning weighted sums with
// NaN or an arbitrary extreme.
const NeutralSimilarity = 50.0

// Cosine computes the cosine similarity between two equal-length vectors,
// rescaled to [0, 100]:
//   - 100 = identical direction
//   - 50  = orthogonal, or degenerate input
//   - 0   = opposite direction
//
// Cosine is commutative: Cosine(a, b) == Cosine(b, a) for all inputs.
func Cosine(a, b []float64) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return NeutralSimilarity
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return NeutralSimilarity
	}

	cos := dot / (math.Sqrt(normA) * math.Sqrt(normB))

	// Guard against floating point drift outside [-1, 1]
	if cos > 1 {
		cos = 1
	}
	if cos < -1 {
		cos = -1
	}

	// Rescale [-1, 1] -> [0, 100]
	return (cos + 1) / 2 * 100
}
