package spatial

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCellAt(t *testing.T) {
	c := Coordinate{Lat: 57.64911, Lng: 10.40744}

	tests := []struct {
		precision int
		want      Cell
	}{
		{precision: 11, want: "u4pruydqqvj"},
		{precision: 5, want: "u4pru"},
		{precision: 0, want: "u"},
		{precision: 20, want: CellAt(c, MaxCellPrecision)},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CellAt(c, tt.precision), "precision %d", tt.precision)
	}
	assert.Len(t, CellAt(c, 20), MaxCellPrecision)
}

func TestCellBoundsAndCenter(t *testing.T) {
	c := Coordinate{Lat: 57.64911, Lng: 10.40744}
	cell := CellAt(c, 11)

	b := cell.Bounds()
	assert.True(t, b.MinLat <= c.Lat && c.Lat <= b.MaxLat)
	assert.True(t, b.MinLng <= c.Lng && c.Lng <= b.MaxLng)

	center := cell.Center()
	assert.InDelta(t, c.Lat, center.Lat, 1e-4)
	assert.InDelta(t, c.Lng, center.Lng, 1e-4)

	// a prefix cell contains the finer one
	coarse := Cell("u4pru").Bounds()
	assert.True(t, coarse.MinLat <= b.MinLat && b.MaxLat <= coarse.MaxLat)

	assert.Equal(t, Coordinate{}, Cell("").Center())
}

func TestCellPrecisionFor(t *testing.T) {
	assert.Equal(t, 8, CellPrecisionFor(20))
	assert.Equal(t, 6, CellPrecisionFor(1000))
	assert.Equal(t, 1, CellPrecisionFor(1e7))
	assert.Equal(t, MaxCellPrecision, CellPrecisionFor(0.001))
}
