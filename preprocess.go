package profile

import (
	"math"

	"github.com/paulmach/go.geo"
)

// Preprocess converts the path into an open polyline and densifies it so
// consecutive vertices are no farther apart than length / minPointCount,
// measured geodesically. New points follow the great circle between the
// original vertices. The input path is not modified.
func Preprocess(path *Path, minPointCount int) (*Path, error) {
	return PreprocessWith(path, minPointCount, GreatCircle)
}

// PreprocessWith is Preprocess with the new points placed by interpolate.
func PreprocessWith(path *Path, minPointCount int, interpolate InterpolateFunc) (*Path, error) {
	if err := path.validate(); err != nil {
		return nil, err
	}

	if minPointCount < 1 {
		return nil, ErrMinPointCount
	}

	polyline := path.Clone()
	if polyline.Kind == Polygon {
		polyline = polygonToPolyline(polyline)
	}

	length := 0.0
	for _, part := range polyline.Parts {
		length += part.GeoDistance(true)
	}

	// zero length paths have nothing to densify
	if length == 0 {
		return polyline, nil
	}

	spacing := length / float64(minPointCount)
	for i, part := range polyline.Parts {
		polyline.Parts[i] = densify(part, spacing, interpolate)
	}

	return polyline, nil
}

// polygonToPolyline reinterprets the rings as parts. Rings that are not
// explicitly closed get their first vertex appended.
func polygonToPolyline(polygon *Path) *Path {
	for _, ring := range polygon.Parts {
		if ring.Length() > 1 && !ring.GetAt(0).Equals(ring.GetAt(ring.Length()-1)) {
			ring.Push(ring.GetAt(0).Clone())
		}
	}

	polygon.Kind = Polyline
	return polygon
}

// An InterpolateFunc returns the point at fraction f of the way from a to b.
type InterpolateFunc func(a, b *geo.Point, f float64) *geo.Point

// densify inserts interpolated points into every segment longer than
// spacing. Original vertices are kept as is.
func densify(part *geo.Path, spacing float64, interpolate InterpolateFunc) *geo.Path {
	result := geo.NewPath()
	result.Push(part.GetAt(0).Clone())

	for i := 1; i < part.Length(); i++ {
		a, b := part.GetAt(i-1), part.GetAt(i)

		n := int(math.Ceil(a.GeoDistanceFrom(b, true) / spacing))
		for j := 1; j < n; j++ {
			result.Push(interpolate(a, b, float64(j)/float64(n)))
		}

		result.Push(b.Clone())
	}

	return result
}

// StraightLine interpolates along the straight web mercator line from a to b,
// the path PlanarDistance measures.
func StraightLine(a, b *geo.Point, f float64) *geo.Point {
	pa := a.Clone().Transform(geo.Mercator.Project)
	pb := b.Clone().Transform(geo.Mercator.Project)

	return geo.NewLine(pa, pb).Interpolate(f).Transform(geo.Mercator.Inverse)
}

// GreatCircle returns the point at fraction f along the great circle from a to b.
func GreatCircle(a, b *geo.Point, f float64) *geo.Point {
	lat1, lng1 := deg2rad(a.Lat()), deg2rad(a.Lng())
	lat2, lng2 := deg2rad(b.Lat()), deg2rad(b.Lng())

	sinDLat := math.Sin((lat2 - lat1) / 2)
	sinDLng := math.Sin((lng2 - lng1) / 2)
	delta := 2 * math.Asin(math.Sqrt(sinDLat*sinDLat+math.Cos(lat1)*math.Cos(lat2)*sinDLng*sinDLng))

	sinDelta := math.Sin(delta)
	if sinDelta < 1e-12 {
		// coincident or antipodal, no unique great circle
		return geo.NewLine(a, b).Interpolate(f)
	}

	ka := math.Sin((1-f)*delta) / sinDelta
	kb := math.Sin(f*delta) / sinDelta

	x := ka*math.Cos(lat1)*math.Cos(lng1) + kb*math.Cos(lat2)*math.Cos(lng2)
	y := ka*math.Cos(lat1)*math.Sin(lng1) + kb*math.Cos(lat2)*math.Sin(lng2)
	z := ka*math.Sin(lat1) + kb*math.Sin(lat2)

	return geo.NewPoint(
		rad2deg(math.Atan2(y, x)),
		rad2deg(math.Atan2(z, math.Sqrt(x*x+y*y))),
	)
}

func deg2rad(d float64) float64 { return d * math.Pi / 180.0 }
func rad2deg(r float64) float64 { return r * 180.0 / math.Pi }
