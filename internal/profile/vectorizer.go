package profile

import "strings"

// CategoryVFIVector builds the VFI reference vector for a vacancy from its
// category names: the unweighted mean of the known categories' affinity
// rows. Unknown categories are silently dropped; an empty or entirely
// unknown set yields the neutral vector.
func CategoryVFIVector(categories []string) []float64 {
	return meanOfRows(categories, vfiAffinity, NeutralVFI)
}

// CategoryValuesVector builds the values-model reference vector for a
// vacancy from its category names, with the same fallback semantics as
// CategoryVFIVector.
func CategoryValuesVector(categories []string) []float64 {
	return meanOfRows(categories, valuesAffinity, NeutralValues)
}

// meanOfRows averages the affinity rows of the known categories.
func meanOfRows(categories []string, table map[string][]float64, neutral func() []float64) []float64 {
	var sum []float64
	var count int

	for _, name := range categories {
		row, ok := table[NormalizeCategory(name)]
		if !ok {
			continue
		}
		if sum == nil {
			sum = make([]float64, len(row))
		}
		for i := range row {
			sum[i] += row[i]
		}
		count++
	}

	if count == 0 {
		return neutral()
	}

	for i := range sum {
		sum[i] /= float64(count)
	}
	return sum
}

// NormalizeCategory canonicalizes a category name for table lookup and
// overlap comparison: lowercased, trimmed, spaces and dashes collapsed to
// underscores.
func NormalizeCategory(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, "-", "_")
	return s
}
