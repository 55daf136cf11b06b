package profile

import (
	"math"
)

// A Sample is one chart point of the profile.
type Sample struct {
	Distance   float64 `json:"distance"`
	Elevation  float64 `json:"elevation"`
	Coordinate Vertex  `json:"coordinate"`
	Index      int     `json:"index"` // vertex index within its part
}

// Summary holds the statistics of a profile. Min and max are over all
// the vertices of all the parts.
type Summary struct {
	FirstElevation float64 `json:"first_elevation"`
	LastElevation  float64 `json:"last_elevation"`
	MinElevation   float64 `json:"min_elevation"`
	MaxElevation   float64 `json:"max_elevation"`
	MinDistance    float64 `json:"min_distance"`
	MaxDistance    float64 `json:"max_distance"`
}

// Empty reports if the summary was computed from no vertices,
// in which case min and max are still at their ±Inf seeds.
func (s Summary) Empty() bool {
	return math.IsInf(s.MinElevation, 1)
}

// Change is the elevation difference between the last and first vertex.
func (s Summary) Change() float64 {
	return s.LastElevation - s.FirstElevation
}

// Range is the difference between the highest and lowest elevation.
func (s Summary) Range() float64 {
	return s.MaxElevation - s.MinElevation
}

// Reduce walks the annotated path once, in part then vertex order,
// producing one sample per vertex and the summary statistics.
func Reduce(path AnnotatedPath) ([]Sample, Summary) {
	summary := Summary{
		FirstElevation: math.NaN(),
		LastElevation:  math.NaN(),
		MinElevation:   math.Inf(1),
		MaxElevation:   math.Inf(-1),
		MinDistance:    math.Inf(1),
		MaxDistance:    math.Inf(-1),
	}

	samples := make([]Sample, 0, path.VertexCount())
	for _, part := range path {
		for j, v := range part {
			elevation := v.Elevation()
			if math.IsNaN(elevation) {
				elevation = 0
			}

			distance := v.Distance()
			if math.IsNaN(distance) {
				distance = float64(j)
			}

			if len(samples) == 0 {
				summary.FirstElevation = elevation
			}

			summary.MinElevation = math.Min(summary.MinElevation, elevation)
			summary.MaxElevation = math.Max(summary.MaxElevation, elevation)
			summary.MinDistance = math.Min(summary.MinDistance, distance)
			summary.MaxDistance = math.Max(summary.MaxDistance, distance)

			samples = append(samples, Sample{
				Distance:   distance,
				Elevation:  elevation,
				Coordinate: v,
				Index:      j,
			})
		}
	}

	if len(samples) > 0 {
		summary.LastElevation = samples[len(samples)-1].Elevation
	}

	return samples, summary
}

// DefaultSamples is the placeholder series shown before any path is set.
func DefaultSamples() []Sample {
	return []Sample{
		{Distance: 0, Elevation: 100, Index: 0},
		{Distance: 33, Elevation: 500, Index: 1},
		{Distance: 50, Elevation: 1000, Index: 2},
		{Distance: 66, Elevation: 500, Index: 3},
		{Distance: 100, Elevation: 100, Index: 4},
	}
}
