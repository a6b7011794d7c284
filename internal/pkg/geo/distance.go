// Package geo provides great-circle distance calculations and
// distance-based ranking/filtering of located candidates.
package geo

import (
	"fmt"
	"math"
)

// EarthRadiusKm is the Earth radius used for all Haversine calculations.
const EarthRadiusKm = 6371.0

// KmToMiles is the conversion factor used for display formatting.
const KmToMiles = 0.621371

// Distance computes the Haversine (great-circle) distance in kilometers
// between two coordinate pairs. Pure and total over valid coordinates;
// callers must pre-filter missing coordinates.
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	latDelta := toRadians(lat2 - lat1)
	lonDelta := toRadians(lon2 - lon1)

	a := math.Sin(latDelta/2)*math.Sin(latDelta/2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*
			math.Sin(lonDelta/2)*math.Sin(lonDelta/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusKm * c
}

// FormatDistance renders a distance for display using three tiers:
// under 8 km (~5 miles) a flat "< 5 miles away", 8-10 km miles rounded to
// one decimal, 10 km and above miles rounded to the nearest integer.
// The thresholds are a UX smoothing rule, not a precision requirement.
func FormatDistance(km float64) string {
	miles := km * KmToMiles

	if km < 8 {
		return "< 5 miles away"
	}
	if km < 10 {
		return fmt.Sprintf("%.1f miles", math.Round(miles*10)/10)
	}
	return fmt.Sprintf("%.0f miles", math.Round(miles))
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
