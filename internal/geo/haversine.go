// Package geo provides geographic distance utilities for proximity scoring.
package geo

import "math"

// EarthRadiusKm is the mean radius of the Earth in kilometres.
const EarthRadiusKm = 6371.0

// HaversineKm computes the great-circle distance in kilometres between two
// coordinates given in decimal degrees.
//
// Accuracy is within ~0.5% at the distances this system cares about
// (volunteer travel ranges); antipodal edge cases are not special-cased.
func HaversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := toRadians(lat1)
	phi2 := toRadians(lat2)
	dPhi := toRadians(lat2 - lat1)
	dLambda := toRadians(lon2 - lon1)

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusKm * c
}

func toRadians(degrees float64) float64 {
	return degrees * math.Pi / 180
}
