package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistanceZeroForSamePoint(t *testing.T) {
	assert.Zero(t, Distance(51.5, -0.12, 51.5, -0.12))
}

func TestDistanceIsSymmetric(t *testing.T) {
	d1 := Distance(51.4975, -0.1357, 51.5290, -0.1255)
	d2 := Distance(51.5290, -0.1255, 51.4975, -0.1357)
	assert.InDelta(t, d1, d2, 1e-9)
}

func TestDistanceWestminsterToCamden(t *testing.T) {
	// Westminster to Camden town centres are roughly 3.6 km apart.
	d := Distance(51.4975, -0.1357, 51.5290, -0.1255)
	assert.InDelta(t, 3.6, d, 0.3)
}

func TestDistanceLondonToManchester(t *testing.T) {
	d := Distance(51.5074, -0.1278, 53.4808, -2.2426)
	assert.InDelta(t, 262, d, 5)
}

func TestFormatDistanceUnderEightKm(t *testing.T) {
	assert.Equal(t, "< 5 miles away", FormatDistance(0))
	assert.Equal(t, "< 5 miles away", FormatDistance(4.2))
	assert.Equal(t, "< 5 miles away", FormatDistance(7.999))
}

func TestFormatDistanceMidBand(t *testing.T) {
	// 8 km and up to 10 km show one decimal of miles.
	assert.Equal(t, "5.0 miles", FormatDistance(8))
	assert.Equal(t, "5.6 miles", FormatDistance(9))
	assert.Equal(t, "6.2 miles", FormatDistance(9.999))
}

func TestFormatDistanceTenKmAndAbove(t *testing.T) {
	assert.Equal(t, "6 miles", FormatDistance(10))
	assert.Equal(t, "16 miles", FormatDistance(25))
	assert.Equal(t, "62 miles", FormatDistance(100))
}
