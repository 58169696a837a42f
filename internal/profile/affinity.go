package profile

// Static affinity tables mapping each known vacancy category to a
// reference vector describing what kind of person typically resonates
// with that category. The tables are read-only lookup data loaded once at
// process start; there is no runtime mutation path.
//
// Row ordering follows VFIDimensions and ValuesDimensions respectively.

// vfiAffinity maps category name -> VFI reference vector
// (values, understanding, social, career, protection, enhancement; 1-5).
var vfiAffinity = map[string][]float64{
	"environment":    {4.5, 3.8, 3.0, 2.5, 2.8, 3.2},
	"animals":        {4.6, 3.2, 2.6, 2.2, 3.0, 3.4},
	"children":       {4.4, 3.5, 3.8, 2.8, 2.6, 3.6},
	"elderly":        {4.7, 3.0, 3.6, 2.2, 2.8, 3.4},
	"education":      {4.0, 4.6, 3.4, 3.6, 2.4, 3.2},
	"health":         {4.5, 4.0, 3.2, 3.4, 3.0, 3.0},
	"community":      {4.2, 3.2, 4.4, 2.6, 2.8, 3.6},
	"culture":        {3.6, 4.2, 3.8, 3.0, 2.4, 3.8},
	"sports":         {3.4, 3.0, 4.2, 2.8, 2.6, 4.0},
	"crisis_relief":  {4.8, 3.4, 3.0, 2.8, 3.6, 3.0},
	"homelessness":   {4.8, 3.2, 3.2, 2.4, 3.2, 3.2},
	"refugees":       {4.7, 3.8, 3.4, 2.6, 3.0, 3.2},
	"digital_skills": {3.6, 4.4, 3.0, 4.2, 2.4, 3.4},
	"food_support":   {4.5, 2.8, 3.6, 2.2, 3.0, 3.2},
}

// valuesAffinity maps category name -> values reference vector
// (care, universalism, self_direction, stimulation, hedonism, achievement,
// power, security, conformity, tradition; 0-5).
var valuesAffinity = map[string][]float64{
	"environment":    {4.2, 4.8, 3.4, 3.0, 1.8, 2.4, 1.4, 2.6, 2.4, 2.2},
	"animals":        {4.6, 4.4, 3.0, 2.6, 2.0, 2.0, 1.2, 2.4, 2.2, 2.0},
	"children":       {4.8, 3.8, 2.8, 2.8, 2.4, 2.6, 1.6, 3.0, 3.0, 3.0},
	"elderly":        {4.8, 3.6, 2.4, 1.8, 1.8, 2.0, 1.4, 3.2, 3.2, 3.6},
	"education":      {4.0, 4.0, 3.8, 3.0, 2.0, 3.6, 2.2, 2.6, 2.6, 2.4},
	"health":         {4.6, 4.0, 3.0, 2.4, 1.8, 3.0, 1.8, 3.4, 3.0, 2.6},
	"community":      {4.2, 3.8, 3.0, 3.0, 2.8, 2.6, 1.8, 3.0, 3.2, 3.2},
	"culture":        {3.4, 3.8, 4.2, 3.6, 3.2, 3.0, 2.0, 2.2, 2.4, 3.4},
	"sports":         {3.2, 3.0, 3.4, 4.2, 3.6, 3.8, 2.4, 2.4, 2.6, 2.2},
	"crisis_relief":  {4.8, 4.4, 3.0, 3.4, 1.4, 2.8, 1.8, 3.6, 2.8, 2.4},
	"homelessness":   {4.8, 4.6, 2.8, 2.4, 1.6, 2.2, 1.4, 3.0, 2.6, 2.4},
	"refugees":       {4.7, 4.8, 3.0, 2.8, 1.8, 2.4, 1.4, 2.8, 2.4, 2.4},
	"digital_skills": {3.4, 3.4, 4.4, 3.4, 2.4, 4.2, 2.6, 2.6, 2.4, 1.8},
	"food_support":   {4.6, 4.2, 2.6, 2.2, 2.0, 2.0, 1.4, 3.2, 3.0, 3.0},
}

// KnownCategory reports whether the category has affinity rows.
func KnownCategory(name string) bool {
	_, ok := vfiAffinity[name]
	return ok
}

// KnownCategories returns the category names present in the affinity
// tables. Both tables carry the same key set.
func KnownCategories() []string {
	names := make([]string, 0, len(vfiAffinity))
	for name := range vfiAffinity {
		names = append(names, name)
	}
	return names
}
