package scoring

import (
	"fmt"
	"strings"
	"time"

	"github.com/helpout/helpout-api/internal/geo"
	"github.com/helpout/helpout-api/internal/profile"
	"github.com/helpout/helpout-api/internal/vector"
)

// Motivation scorer weights. The primary/secondary/overlap split applies
// when the volunteer completed the values questionnaire; otherwise the
// primary model and the literal overlap carry the score alone.
const (
	motivationPrimaryWithValues   = 0.50
	motivationSecondaryWithValues = 0.25
	motivationOverlapWithValues   = 0.25

	motivationPrimaryOnly = 0.65
	motivationOverlapOnly = 0.35

	// neutralOverlapScore is used when the vacancy declares no categories.
	neutralOverlapScore = 50.0

	// strongDimensionThreshold marks a questionnaire dimension worth
	// surfacing as a highlight.
	strongDimensionThreshold = 4.0

	// strongSecondaryCosine gates the secondary-dimension highlight on the
	// values-model similarity actually being high.
	strongSecondaryCosine = 70.0

	// strongMatchThreshold triggers the generic highlight.
	strongMatchThreshold = 82.0
)

// MotivationScore scores the psychometric and interest alignment between
// a volunteer and a vacancy.
func MotivationScore(v *profile.Volunteer, c *Vacancy) Component {
	primary := vector.Cosine(v.EffectiveVFI(), profile.CategoryVFIVector(c.Categories))
	overlap, matched := interestOverlap(v.Interests, c.Categories)

	var score float64
	var secondary float64
	if v.HasValues() {
		secondary = vector.Cosine(v.Values, profile.CategoryValuesVector(c.Categories))
		score = motivationPrimaryWithValues*primary +
			motivationSecondaryWithValues*secondary +
			motivationOverlapWithValues*overlap
	} else {
		score = motivationPrimaryOnly*primary + motivationOverlapOnly*overlap
	}

	var highlights []string
	if matched != "" {
		highlights = append(highlights, fmt.Sprintf("shared interest in %s", matched))
	}
	if name, value := profile.StrongestDimension(v.VFI, profile.VFIDimensions); name != "" && value >= strongDimensionThreshold {
		highlights = append(highlights, fmt.Sprintf("motivated by %s", name))
	}
	if v.HasValues() && secondary >= strongSecondaryCosine {
		if name, value := profile.StrongestDimension(v.Values, profile.ValuesDimensions); name != "" && value >= strongDimensionThreshold {
			highlights = append(highlights, fmt.Sprintf("values %s highly", name))
		}
	}
	if score >= strongMatchThreshold {
		highlights = append(highlights, "strong motivational match")
	}
	if len(highlights) > MaxHighlights {
		highlights = highlights[:MaxHighlights]
	}

	return Component{Score: score, Highlights: highlights}
}

// interestOverlap returns the overlap score on [0, 100] plus the first
// matching category name. Overlap ratio = |interests ∩ categories| /
// |categories|; a vacancy with no categories scores the neutral 50.
func interestOverlap(interests, categories []string) (float64, string) {
	if len(categories) == 0 {
		return neutralOverlapScore, ""
	}

	interestSet := make(map[string]bool, len(interests))
	for _, name := range interests {
		interestSet[profile.NormalizeCategory(name)] = true
	}

	var hits int
	var first string
	for _, name := range categories {
		if interestSet[profile.NormalizeCategory(name)] {
			hits++
			if first == "" {
				first = profile.NormalizeCategory(name)
			}
		}
	}

	return float64(hits) / float64(len(categories)) * 100, first
}

// Distance scorer tiers.
const (
	distanceMissingScore = 55.0
	veryCloseKm          = 2.0
	closeKm              = 5.0
	closeScore           = 90.0
	rangeStartScore      = 85.0
	rangeEndScore        = 40.0
)

// DistanceScore scores geographic accessibility. Remote vacancies always
// score 100; missing coordinates on either side score a neutral 55 rather
// than penalizing incomplete data. Beyond 5 km the score interpolates
// from 85 down to 40 at the volunteer's travel range, floored at 0.
// Out-of-range candidates are expected to have been hard-filtered
// upstream, so the sub-40 tail is a soft signal only.
func DistanceScore(v *profile.Volunteer, c *Vacancy) Component {
	if c.Remote {
		return Component{Score: 100, Highlights: []string{"remote-friendly"}}
	}
	if v.Location == nil || c.Location == nil {
		return Component{Score: distanceMissingScore}
	}

	d := geo.HaversineKm(v.Location.Lat, v.Location.Lng, c.Location.Lat, c.Location.Lng)

	switch {
	case d <= veryCloseKm:
		return Component{
			Score:      100,
			Highlights: []string{fmt.Sprintf("very close by (%.1f km)", d)},
		}
	case d <= closeKm:
		return Component{Score: closeScore, Highlights: []string{"close by"}}
	}

	maxKm := v.TravelRangeKm()
	if maxKm <= closeKm {
		maxKm = closeKm + 1
	}

	score := rangeStartScore - (d-closeKm)/(maxKm-closeKm)*(rangeStartScore-rangeEndScore)
	if score < 0 {
		score = 0
	}
	return Component{Score: score}
}

// Skill scorer neutral scores.
const (
	skillNoneRequiredScore = 70.0
	skillUnknownScore      = 50.0
)

// SkillScore scores skill coverage: the case-insensitive overlap between
// the volunteer's skills and the vacancy's required skills, as a fraction
// of the requirements. No requirements means anyone qualifies (70);
// unknown volunteer skills are not penalized (50).
func SkillScore(v *profile.Volunteer, c *Vacancy) Component {
	if len(c.RequiredSkills) == 0 {
		return Component{Score: skillNoneRequiredScore}
	}
	if len(v.Skills) == 0 {
		return Component{Score: skillUnknownScore}
	}

	have := make(map[string]bool, len(v.Skills))
	for _, s := range v.Skills {
		have[strings.ToLower(strings.TrimSpace(s))] = true
	}

	var hits int
	var matched string
	for _, s := range c.RequiredSkills {
		if have[strings.ToLower(strings.TrimSpace(s))] {
			hits++
			matched = s
		}
	}

	score := float64(hits) / float64(len(c.RequiredSkills)) * 100

	var highlights []string
	switch {
	case hits == 1:
		highlights = []string{fmt.Sprintf("matching skill: %s", matched)}
	case hits >= 2:
		highlights = []string{fmt.Sprintf("%d matching skills", hits)}
	}

	return Component{Score: score, Highlights: highlights}
}

// FreshnessScore scores posting age: linear decay from 100 (created now)
// to 0 at the configured window, floored at 0 for older postings.
func FreshnessScore(c *Vacancy, now time.Time, windowDays int) Component {
	if windowDays <= 0 {
		windowDays = 1
	}

	age := now.Sub(c.CreatedAt)
	if age <= 0 {
		return Component{Score: 100}
	}

	window := time.Duration(windowDays) * 24 * time.Hour
	score := 100 * (1 - float64(age)/float64(window))
	if score < 0 {
		score = 0
	}
	return Component{Score: score}
}
