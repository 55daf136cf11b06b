package profile

import (
	"context"
	"math"

	"github.com/paulmach/go.geo"
)

// An ElevationSampler provides terrain elevation for lng/lat points.
// It is the only part of the pipeline that may block.
type ElevationSampler interface {
	// QueryElevation returns one elevation, in meters, per vertex of each part.
	// Missing values should be NaN. Partial results may be returned along
	// with an error, they are used for the vertices they cover.
	QueryElevation(ctx context.Context, parts []*geo.Path) ([][]float64, error)
}

// SamplerFunc adapts a per point lookup into an ElevationSampler.
// The bool result reports if a value is available for the point.
type SamplerFunc func(point *geo.Point) (float64, bool)

// QueryElevation calls f for every vertex.
func (f SamplerFunc) QueryElevation(ctx context.Context, parts []*geo.Path) ([][]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := make([][]float64, len(parts))
	for i, part := range parts {
		result[i] = make([]float64, part.Length())
		for j := range result[i] {
			if v, ok := f(part.GetAt(j)); ok {
				result[i][j] = v
			} else {
				result[i][j] = math.NaN()
			}
		}
	}

	return result, nil
}

// FlatSampler returns a sampler with the same elevation everywhere.
func FlatSampler(elevation float64) SamplerFunc {
	return func(*geo.Point) (float64, bool) {
		return elevation, true
	}
}

// A Presenter displays profile results. Update is called with the output
// of a completed pipeline, Clear when the path is removed.
type Presenter interface {
	Update(samples []Sample, summary Summary)
	Clear()
}
