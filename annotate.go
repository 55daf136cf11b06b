package profile

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/paulmach/go.geo"
)

// A DistanceFunc measures the distance, in meters, between consecutive vertices.
type DistanceFunc func(a, b *geo.Point) float64

// GeoDistance is the haversine distance between two lng/lat points.
func GeoDistance(a, b *geo.Point) float64 {
	return a.GeoDistanceFrom(b, true)
}

// PlanarDistance is the straight line distance between two lng/lat points
// in web mercator, scaled back to meters at the latitude of the midpoint.
func PlanarDistance(a, b *geo.Point) float64 {
	pa := a.Clone().Transform(geo.Mercator.Project)
	pb := b.Clone().Transform(geo.Mercator.Project)

	return pa.DistanceFrom(pb) / geo.MercatorScaleFactor((a.Lat()+b.Lat())/2)
}

// Annotate queries the sampler for the elevation of every vertex and computes
// the cumulative distance along each part. A failed query is not fatal:
// the vertices it did not cover get an elevation of 0. Only a canceled
// context aborts the annotation.
func (p *Profile) Annotate(ctx context.Context, path *Path) (AnnotatedPath, error) {
	if err := path.validate(); err != nil {
		return nil, err
	}

	if p.Sampler == nil {
		return nil, ErrNilSampler
	}

	elevations, err := p.Sampler.QueryElevation(ctx, path.Parts)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("profile: query elevation: %w", err)
		}

		p.logger().WarnContext(ctx, "elevation query failed, using default elevations",
			slog.Int("vertices", path.VertexCount()),
			slog.Any("error", err))
	}

	distance := p.DistanceFunc
	if distance == nil {
		distance = GeoDistance
	}

	return annotate(path, elevations, distance), nil
}

// annotate zips the elevations with the path vertices and adds the
// cumulative distance, reset at the start of every part.
func annotate(path *Path, elevations [][]float64, distance DistanceFunc) AnnotatedPath {
	result := make(AnnotatedPath, len(path.Parts))
	for i, part := range path.Parts {
		result[i] = make([]Vertex, part.Length())

		along := 0.0
		for j := 0; j < part.Length(); j++ {
			point := part.GetAt(j)
			if j > 0 {
				along += distance(part.GetAt(j-1), point)
			}

			result[i][j] = NewVertex(point.X(), point.Y(), elevationAt(elevations, i, j), along)
		}
	}

	return result
}

func elevationAt(elevations [][]float64, part, index int) float64 {
	if part >= len(elevations) || index >= len(elevations[part]) {
		return 0
	}

	v := elevations[part][index]
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}

	return v
}
