package spatial

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
)

// latLngPattern matches the Takeout degree notation, e.g. "41.4039482°, 2.1791428°".
// Only a prefix match is required; anything after the second degree sign is ignored.
var latLngPattern = regexp.MustCompile(`^([-+]?(?:\d*\.\d+|\d+))°,\s*([-+]?(?:\d*\.\d+|\d+))°`)

// Coordinate is a latitude/longitude pair in degrees.
type Coordinate struct {
	Lat float64
	Lng float64
}

// ParseLatLng extracts a coordinate from a degree string.
// The second return value is false when the string does not match; callers
// treat that as an absent point rather than an error.
func ParseLatLng(s string) (Coordinate, bool) {
	m := latLngPattern.FindStringSubmatch(s)
	if m == nil {
		return Coordinate{}, false
	}

	lat, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return Coordinate{}, false
	}
	lng, err := strconv.ParseFloat(m[2], 64)
	if err != nil {
		return Coordinate{}, false
	}

	return Coordinate{Lat: lat, Lng: lng}, true
}

// Valid reports whether the coordinate lies within the WGS84 degree ranges.
// ParseLatLng does not apply this check.
func (c Coordinate) Valid() bool {
	if math.IsNaN(c.Lat) || math.IsNaN(c.Lng) {
		return false
	}
	return c.Lat >= -90 && c.Lat <= 90 && c.Lng >= -180 && c.Lng <= 180
}

func (c Coordinate) String() string {
	return fmt.Sprintf("%g°, %g°", c.Lat, c.Lng)
}

// MarshalJSON encodes the coordinate as [lat, lng], the shape heatmap layers consume.
func (c Coordinate) MarshalJSON() ([]byte, error) {
	return []byte("[" + strconv.FormatFloat(c.Lat, 'f', -1, 64) + "," +
		strconv.FormatFloat(c.Lng, 'f', -1, 64) + "]"), nil
}
