package geo

import "sort"

// Point is a reference coordinate pair.
type Point struct {
	Latitude  float64
	Longitude float64
}

// Locatable is implemented by candidates that may or may not carry
// coordinates. Candidates without coordinates are excluded from radius
// filters and sort after located candidates.
type Locatable interface {
	Coordinates() (lat, lon float64, ok bool)
}

// Ranked pairs a candidate with its computed distance from the reference
// point. DistanceKm is nil when the candidate has no coordinates.
type Ranked[T Locatable] struct {
	Item       T
	DistanceKm *float64
}

// RankByDistance sorts candidates ascending by distance from the reference
// point without excluding anything. Candidates without coordinates keep
// their relative order and are placed after all located candidates.
func RankByDistance[T Locatable](from Point, items []T) []Ranked[T] {
	ranked := rank(from, items)
	sortRanked(ranked, nil)
	return ranked
}

// FilterAndRank excludes candidates farther than radiusKm from the
// reference point (and all candidates without coordinates), then sorts the
// remainder ascending by distance. The optional secondary comparison
// breaks distance ties; it is also used between two unlocated candidates
// in rank-only results.
func FilterAndRank[T Locatable](from Point, items []T, radiusKm float64, secondary func(a, b T) bool) []Ranked[T] {
	ranked := rank(from, items)

	filtered := ranked[:0]
	for _, r := range ranked {
		if r.DistanceKm != nil && *r.DistanceKm <= radiusKm {
			filtered = append(filtered, r)
		}
	}
	filtered = filtered[:len(filtered):len(filtered)]

	sortRanked(filtered, secondary)
	return filtered
}

func rank[T Locatable](from Point, items []T) []Ranked[T] {
	ranked := make([]Ranked[T], 0, len(items))
	for _, item := range items {
		r := Ranked[T]{Item: item}
		if lat, lon, ok := item.Coordinates(); ok {
			d := Distance(from.Latitude, from.Longitude, lat, lon)
			r.DistanceKm = &d
		}
		ranked = append(ranked, r)
	}
	return ranked
}

func sortRanked[T Locatable](ranked []Ranked[T], secondary func(a, b T) bool) {
	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		switch {
		case a.DistanceKm == nil && b.DistanceKm == nil:
			if secondary != nil {
				return secondary(a.Item, b.Item)
			}
			return false
		case a.DistanceKm == nil:
			return false
		case b.DistanceKm == nil:
			return true
		}
		if *a.DistanceKm != *b.DistanceKm {
			return *a.DistanceKm < *b.DistanceKm
		}
		if secondary != nil {
			return secondary(a.Item, b.Item)
		}
		return false
	})
}
