package spatial

import "strings"

const geohashAlphabet = "0123456789bcdefghjkmnpqrstuvwxyz"

// MaxCellPrecision is the longest geohash a Cell is built with
const MaxCellPrecision = 12

// cellWidths[p-1] is the approximate width in meters, at the equator, of a cell of precision p
var cellWidths = [MaxCellPrecision]float64{
	5000000, 625000, 123000, 19500, 3900, 610, 120, 19, 3.7, 0.6, 0.12, 0.019,
}

// Cell is a geohash cell. Heatmap points are bucketed by the cell their location falls in.
type Cell string

// CellAt returns the cell of the given precision containing c.
// precision is clamped to [1, MaxCellPrecision].
func CellAt(c Coordinate, precision int) Cell {
	precision = min(max(precision, 1), MaxCellPrecision)

	box := world()
	var sb strings.Builder
	sb.Grow(precision)

	lng := true
	for sb.Len() < precision {
		idx := 0
		for i := 0; i < 5; i++ {
			var upper bool
			if lng {
				upper = c.Lng > (box.MinLng+box.MaxLng)/2
			} else {
				upper = c.Lat > (box.MinLat+box.MaxLat)/2
			}
			box.narrow(lng, upper)

			idx <<= 1
			if upper {
				idx |= 1
			}
			lng = !lng
		}
		sb.WriteByte(geohashAlphabet[idx])
	}

	return Cell(sb.String())
}

// Bounds returns the area covered by the cell. Characters outside the
// geohash alphabet are ignored.
func (c Cell) Bounds() Bounds {
	box := world()
	lng := true
	for i := 0; i < len(c); i++ {
		idx := strings.IndexByte(geohashAlphabet, c[i])
		if idx < 0 {
			continue
		}
		for mask := 16; mask > 0; mask >>= 1 {
			box.narrow(lng, idx&mask != 0)
			lng = !lng
		}
	}
	return box
}

// Center returns the midpoint of the cell
func (c Cell) Center() Coordinate {
	b := c.Bounds()
	return Coordinate{
		Lat: (b.MinLat + b.MaxLat) / 2,
		Lng: (b.MinLng + b.MaxLng) / 2,
	}
}

// CellPrecisionFor returns the coarsest precision whose cells are no wider than widthMeters
func CellPrecisionFor(widthMeters float64) int {
	for i, w := range cellWidths {
		if w <= widthMeters {
			return i + 1
		}
	}
	return MaxCellPrecision
}

func world() Bounds {
	return Bounds{MinLat: -90, MinLng: -180, MaxLat: 90, MaxLng: 180}
}

// narrow keeps the upper or lower half of b along one axis
func (b *Bounds) narrow(lng, upper bool) {
	if lng {
		mid := (b.MinLng + b.MaxLng) / 2
		if upper {
			b.MinLng = mid
		} else {
			b.MaxLng = mid
		}
		return
	}

	mid := (b.MinLat + b.MaxLat) / 2
	if upper {
		b.MinLat = mid
	} else {
		b.MaxLat = mid
	}
}
