package scoring

// Fairness correction bounds. The multiplier counteracts popularity
// feedback loops: small organisations get boosted, high-volume ones get
// dampened. This is tunable policy, not a correctness requirement.
const (
	FairnessMax = 1.40
	FairnessMin = 0.70

	fairnessBoostRange   = FairnessMax - 1.0 // 0.4 spread below the small threshold
	fairnessPenaltyRange = 1.0 - FairnessMin // 0.3 spread above the large threshold
)

// FairnessMultiplier returns the correction in [FairnessMin, FairnessMax]
// for an organisation with the given historical swipe volume:
//   - below smallThreshold: linear boost from 1.0 (at the threshold) up to
//     1.4 (at zero swipes; negative counts are treated as zero)
//   - between the thresholds: exactly 1.0
//   - above largeThreshold: linear reduction from 1.0 down to 0.7,
//     saturating at twice the large threshold
func FairnessMultiplier(orgSwipes, smallThreshold, largeThreshold int) float64 {
	if smallThreshold <= 0 || largeThreshold <= smallThreshold {
		return 1.0
	}
	if orgSwipes < 0 {
		orgSwipes = 0
	}

	if orgSwipes < smallThreshold {
		boost := float64(smallThreshold-orgSwipes) / float64(smallThreshold) * fairnessBoostRange
		return 1.0 + boost
	}

	if orgSwipes > largeThreshold {
		penalty := float64(orgSwipes-largeThreshold) / float64(largeThreshold) * fairnessPenaltyRange
		if penalty > fairnessPenaltyRange {
			penalty = fairnessPenaltyRange
		}
		return 1.0 - penalty
	}

	return 1.0
}
