// Package profile provides the psychometric profile models and the
// vectorizer that makes volunteer profiles and vacancy categories
// comparable for similarity scoring.
package profile

// VFIDimensions lists the six dimensions of the VFI-style motivational
// model in canonical order. Every VFI vector in the system uses this
// ordering; reordering one side without the other silently corrupts
// every similarity computation.
var VFIDimensions = []string{
	"values",
	"understanding",
	"social",
	"career",
	"protection",
	"enhancement",
}

// ValuesDimensions lists the ten dimensions of the values model in
// canonical order. Same ordering invariant as VFIDimensions.
var ValuesDimensions = []string{
	"care",
	"universalism",
	"self_direction",
	"stimulation",
	"hedonism",
	"achievement",
	"power",
	"security",
	"conformity",
	"tradition",
}

// VFI scale bounds (answers scored 1-5 per dimension).
const (
	VFIMin     = 1.0
	VFIMax     = 5.0
	VFINeutral = 3.0
)

// Values scale bounds (answers scored 0-5 per dimension).
const (
	ValuesMin     = 0.0
	ValuesMax     = 5.0
	ValuesNeutral = 2.5
)

// DefaultMaxDistanceKm is the travel range assumed for volunteers who have
// not configured one.
const DefaultMaxDistanceKm = 25.0

// Coordinate is a geographic point in decimal degrees.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Volunteer is an immutable per-request snapshot of a volunteer's profile
// as consumed by the scoring pipeline.
type Volunteer struct {
	ID string `json:"id"`

	// VFI is the six-dimension motivational vector in VFIDimensions order.
	// Nil when the volunteer has not completed the questionnaire; scoring
	// substitutes the neutral vector.
	VFI []float64 `json:"vfi,omitempty"`

	// Values is the optional ten-dimension values vector in
	// ValuesDimensions order.
	Values []float64 `json:"values,omitempty"`

	Interests []string `json:"interests"`
	Skills    []string `json:"skills"`

	Location      *Coordinate `json:"location,omitempty"`
	MaxDistanceKm float64     `json:"max_distance_km"`

	// Embedding is the precomputed text embedding of the profile, used by
	// the semantic pre-filter. Nil when not yet computed.
	Embedding []float32 `json:"-"`
}

// EffectiveVFI returns the volunteer's VFI vector, falling back to the
// neutral vector when the questionnaire is absent.
func (v *Volunteer) EffectiveVFI() []float64 {
	if len(v.VFI) == len(VFIDimensions) {
		return v.VFI
	}
	return NeutralVFI()
}

// HasValues reports whether the volunteer completed the secondary values
// questionnaire.
func (v *Volunteer) HasValues() bool {
	return len(v.Values) == len(ValuesDimensions)
}

// TravelRangeKm returns the configured max travel distance, defaulting to
// DefaultMaxDistanceKm when unset.
func (v *Volunteer) TravelRangeKm() float64 {
	if v.MaxDistanceKm > 0 {
		return v.MaxDistanceKm
	}
	return DefaultMaxDistanceKm
}

// NeutralVFI returns the midpoint VFI vector [3,3,3,3,3,3].
func NeutralVFI() []float64 {
	vec := make([]float64, len(VFIDimensions))
	for i := range vec {
		vec[i] = VFINeutral
	}
	return vec
}

// NeutralValues returns the midpoint values vector [2.5 x10].
func NeutralValues() []float64 {
	vec := make([]float64, len(ValuesDimensions))
	for i := range vec {
		vec[i] = ValuesNeutral
	}
	return vec
}

// StrongestDimension returns the name and value of the highest-scoring
// dimension of vec, using dims for naming. Returns empty name when the
// vector length does not match the dimension list.
func StrongestDimension(vec []float64, dims []string) (string, float64) {
	if len(vec) != len(dims) || len(vec) == 0 {
		return "", 0
	}
	best := 0
	for i := range vec {
		if vec[i] > vec[best] {
			best = i
		}
	}
	return dims[best], vec[best]
}
