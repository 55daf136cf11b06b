package profile

import (
	"math"
	"testing"

	"github.com/paulmach/go.geo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// metersPerDegree at the equator for the earth radius used by go.geo.
const metersPerDegree = 6378137.0 * math.Pi / 180.0

func square(side float64) *geo.Path {
	d := side / metersPerDegree
	path := geo.NewPath()
	path.Push(geo.NewPoint(0, 0))
	path.Push(geo.NewPoint(d, 0))
	path.Push(geo.NewPoint(d, d))
	path.Push(geo.NewPoint(0, d))
	return path
}

func line(points ...[2]float64) *geo.Path {
	path := geo.NewPath()
	for _, p := range points {
		path.Push(geo.NewPoint(p[0], p[1]))
	}
	return path
}

func TestPreprocessEmptyPath(t *testing.T) {
	cases := map[string]*Path{
		"nil":        nil,
		"no parts":   &Path{},
		"empty part": NewPolyline(geo.NewPath()),
		"nil part":   NewPolyline(line([2]float64{0, 0}), nil),
	}

	for name, path := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Preprocess(path, DefaultMinPointCount)
			assert.ErrorIs(t, err, ErrEmptyPath)
		})
	}
}

func TestPreprocessMinPointCount(t *testing.T) {
	_, err := Preprocess(NewPolyline(line([2]float64{0, 0}, [2]float64{1, 1})), 0)
	assert.ErrorIs(t, err, ErrMinPointCount)
}

func TestPreprocessPolygonClosesRing(t *testing.T) {
	polygon := NewPolygon(square(100))

	// a single point per path length, so no densification
	result, err := Preprocess(polygon, 1)
	require.NoError(t, err)

	assert.Equal(t, Polyline, result.Kind)
	require.Len(t, result.Parts, 1)
	assert.Equal(t, 5, result.Parts[0].Length())
	assert.True(t, result.Parts[0].GetAt(0).Equals(result.Parts[0].GetAt(4)))

	// input is not modified
	assert.Equal(t, Polygon, polygon.Kind)
	assert.Equal(t, 4, polygon.Parts[0].Length())
}

func TestPreprocessClosedRingUnchanged(t *testing.T) {
	ring := square(100)
	ring.Push(ring.GetAt(0).Clone())

	result, err := Preprocess(NewPolygon(ring), 1)
	require.NoError(t, err)
	assert.Equal(t, 5, result.Parts[0].Length())
}

func TestPreprocessDensifiesSquare(t *testing.T) {
	minPointCount := 40
	result, err := Preprocess(NewPolygon(square(100)), minPointCount)
	require.NoError(t, err)
	require.Len(t, result.Parts, 1)

	part := result.Parts[0]
	assert.GreaterOrEqual(t, part.Length(), minPointCount+1)

	spacing := part.GeoDistance(true) / float64(minPointCount)
	for i := 1; i < part.Length(); i++ {
		d := part.GetAt(i - 1).GeoDistanceFrom(part.GetAt(i), true)
		assert.LessOrEqual(t, d, spacing*(1+1e-6), "segment %d", i)
	}
}

func TestPreprocessKeepsOriginalVertices(t *testing.T) {
	parts := []*geo.Path{
		line([2]float64{-122.4, 37.7}, [2]float64{-122.3, 37.8}, [2]float64{-122.2, 37.75}),
		line([2]float64{-122.1, 37.7}, [2]float64{-122.0, 37.7}),
	}

	result, err := Preprocess(NewPolyline(parts...), DefaultMinPointCount)
	require.NoError(t, err)
	require.Len(t, result.Parts, len(parts))

	for i, part := range parts {
		densified := result.Parts[i]
		assert.GreaterOrEqual(t, densified.Length(), part.Length())

		// originals appear in order, first and last are exact
		next := 0
		for j := 0; j < densified.Length() && next < part.Length(); j++ {
			if densified.GetAt(j).Equals(part.GetAt(next)) {
				next++
			}
		}
		assert.Equal(t, part.Length(), next, "part %d originals missing", i)
		assert.True(t, densified.GetAt(0).Equals(part.GetAt(0)))
		assert.True(t, densified.GetAt(densified.Length()-1).Equals(part.GetAt(part.Length()-1)))
	}
}

func TestPreprocessDegenerate(t *testing.T) {
	path := NewPolyline(line([2]float64{10, 10}, [2]float64{10, 10}, [2]float64{10, 10}))

	result, err := Preprocess(path, DefaultMinPointCount)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Parts[0].Length())

	single := NewPolyline(line([2]float64{10, 10}))
	result, err = Preprocess(single, DefaultMinPointCount)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Parts[0].Length())
}

func TestGreatCircle(t *testing.T) {
	a := geo.NewPoint(0, 0)
	b := geo.NewPoint(10, 0)

	mid := GreatCircle(a, b, 0.5)
	assert.InDelta(t, 5.0, mid.Lng(), 1e-9)
	assert.InDelta(t, 0.0, mid.Lat(), 1e-9)

	// equal sub distances along a diagonal
	a = geo.NewPoint(-120, 30)
	b = geo.NewPoint(-100, 50)
	p1 := GreatCircle(a, b, 1.0/3)
	p2 := GreatCircle(a, b, 2.0/3)

	d1 := a.GeoDistanceFrom(p1, true)
	d2 := p1.GeoDistanceFrom(p2, true)
	d3 := p2.GeoDistanceFrom(b, true)
	assert.InDelta(t, d1, d2, 1e-3)
	assert.InDelta(t, d2, d3, 1e-3)

	same := GreatCircle(a, a.Clone(), 0.5)
	assert.True(t, same.Equals(a))
}

func TestStraightLine(t *testing.T) {
	a := geo.NewPoint(7, 46)
	b := geo.NewPoint(8, 46)

	// a straight mercator line keeps the latitude,
	// the great circle bulges towards the pole
	mid := StraightLine(a, b, 0.5)
	assert.InDelta(t, 7.5, mid.Lng(), 1e-9)
	assert.InDelta(t, 46.0, mid.Lat(), 1e-9)
	assert.Greater(t, GreatCircle(a, b, 0.5).Lat(), 46.0)

	end := StraightLine(a, b, 1)
	assert.InDelta(t, 8.0, end.Lng(), 1e-9)
	assert.InDelta(t, 46.0, end.Lat(), 1e-9)
}

func TestPreprocessWithStraightLine(t *testing.T) {
	path := NewPolyline(line([2]float64{7, 46}, [2]float64{8, 46}))

	result, err := PreprocessWith(path, 10, StraightLine)
	require.NoError(t, err)
	require.GreaterOrEqual(t, result.Parts[0].Length(), 11)

	for i := 0; i < result.Parts[0].Length(); i++ {
		assert.InDelta(t, 46.0, result.Parts[0].GetAt(i).Lat(), 1e-9, "vertex %d", i)
	}
}
