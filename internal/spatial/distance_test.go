package spatial

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// one thousandth of a degree along a meridian
const milliDegreeMeters = 111.19492664455873

func TestDistance(t *testing.T) {
	a := Coordinate{Lat: 41.400, Lng: 2.17}
	b := Coordinate{Lat: 41.401, Lng: 2.17}

	assert.InDelta(t, milliDegreeMeters, Distance(a, b), 1e-6)
	assert.InDelta(t, Distance(a, b), Distance(b, a), 1e-9)
	assert.Zero(t, Distance(a, a))
}

func TestDistanceLongHaul(t *testing.T) {
	// Barcelona to Madrid, roughly 505 km on a sphere
	bcn := Coordinate{Lat: 41.3874, Lng: 2.1686}
	mad := Coordinate{Lat: 40.4168, Lng: -3.7038}

	assert.InDelta(t, 505000, Distance(bcn, mad), 5000)
}

func TestPathLength(t *testing.T) {
	tests := []struct {
		name   string
		points []Coordinate
		want   float64
	}{
		{name: "empty", want: 0},
		{name: "single point", points: []Coordinate{{Lat: 1, Lng: 1}}, want: 0},
		{
			name: "two legs",
			points: []Coordinate{
				{Lat: 0.000, Lng: 0},
				{Lat: 0.001, Lng: 0},
				{Lat: 0.002, Lng: 0},
			},
			want: 2 * milliDegreeMeters,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PathLength(tt.points)
			assert.GreaterOrEqual(t, got, 0.0)
			assert.InDelta(t, tt.want, got, 1e-6)
		})
	}
}
