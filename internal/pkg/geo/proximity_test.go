package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type place struct {
	name string
	lat  *float64
	lon  *float64
}

func (p place) Coordinates() (float64, float64, bool) {
	if p.lat == nil || p.lon == nil {
		return 0, 0, false
	}
	return *p.lat, *p.lon, true
}

func located(name string, lat, lon float64) place {
	return place{name: name, lat: &lat, lon: &lon}
}

var westminster = Point{Latitude: 51.4975, Longitude: -0.1357}

func TestRankByDistanceOrdersNearestFirst(t *testing.T) {
	items := []place{
		located("croydon", 51.3762, -0.0982),
		located("camden", 51.5290, -0.1255),
		located("lambeth", 51.4607, -0.1163),
	}

	ranked := RankByDistance(westminster, items)

	require.Len(t, ranked, 3)
	assert.Equal(t, "camden", ranked[0].Item.name)
	assert.Equal(t, "lambeth", ranked[1].Item.name)
	assert.Equal(t, "croydon", ranked[2].Item.name)
}

func TestRankByDistanceKeepsUnlocatedLast(t *testing.T) {
	items := []place{
		{name: "nowhere"},
		located("camden", 51.5290, -0.1255),
	}

	ranked := RankByDistance(westminster, items)

	require.Len(t, ranked, 2)
	assert.Equal(t, "camden", ranked[0].Item.name)
	require.NotNil(t, ranked[0].DistanceKm)
	assert.Equal(t, "nowhere", ranked[1].Item.name)
	assert.Nil(t, ranked[1].DistanceKm)
}

func TestFilterAndRankExcludesBeyondRadius(t *testing.T) {
	items := []place{
		located("camden", 51.5290, -0.1255),
		located("manchester", 53.4808, -2.2426),
		{name: "nowhere"},
	}

	ranked := FilterAndRank(westminster, items, 10, nil)

	require.Len(t, ranked, 1)
	assert.Equal(t, "camden", ranked[0].Item.name)
}

func TestFilterAndRankRadiusBoundaryIsInclusive(t *testing.T) {
	target := located("camden", 51.5290, -0.1255)
	lat, lon, _ := target.Coordinates()
	exact := Distance(westminster.Latitude, westminster.Longitude, lat, lon)

	ranked := FilterAndRank(westminster, []place{target}, exact, nil)

	require.Len(t, ranked, 1)
}

func TestFilterAndRankUsesSecondaryForTies(t *testing.T) {
	a := located("alpha", 51.5290, -0.1255)
	b := located("beta", 51.5290, -0.1255)

	ranked := FilterAndRank(westminster, []place{b, a}, 10, func(x, y place) bool {
		return x.name < y.name
	})

	require.Len(t, ranked, 2)
	assert.Equal(t, "alpha", ranked[0].Item.name)
	assert.Equal(t, "beta", ranked[1].Item.name)
}
