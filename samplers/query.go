package samplers

import (
	"github.com/paulmach/go.geo"
)

// Bound returns the lng/lat bound of all the parts, or nil if they have no points.
func Bound(parts []*geo.Path) *geo.Bound {
	var bound *geo.Bound
	for _, part := range parts {
		if part == nil || part.Length() == 0 {
			continue
		}

		if bound == nil {
			bound = part.Bound()
		} else {
			bound.Union(part.Bound())
		}
	}

	return bound
}

// Query projects every lng/lat vertex into mercator (EPSG:3857) and
// looks up its value, returning one slice of values per part.
func Query(parts []*geo.Path, valueAt func(mercator *geo.Point) float64) [][]float64 {
	result := make([][]float64, len(parts))
	for i, part := range parts {
		if part == nil {
			continue
		}

		result[i] = make([]float64, part.Length())
		for j := range result[i] {
			point := part.GetAt(j).Clone().Transform(geo.Mercator.Project)
			result[i][j] = valueAt(point)
		}
	}

	return result
}

// Pad grows the lng/lat bound by a fraction of its average dimension,
// but at least by minPadding degrees so single points and straight
// lines still get an area.
func Pad(lnglatBound *geo.Bound, fraction, minPadding float64) *geo.Bound {
	bound := lnglatBound.Clone()

	padding := (bound.Width() + bound.Height()) / 2.0 * fraction
	if padding < minPadding {
		padding = minPadding
	}

	bound.Pad(padding)
	return bound
}
