package geojsonio

import (
	"github.com/paulmach/go.geojson"

	"github.com/paulmach/profile"
)

// FeatureCollection returns the annotated path as a single feature with
// [lng, lat, elevation, distance] positions. The summary statistics are
// set as properties when the profile is not empty.
func FeatureCollection(annotated profile.AnnotatedPath, summary profile.Summary) *geojson.FeatureCollection {
	lines := make([][][]float64, 0, len(annotated))
	for _, part := range annotated {
		line := make([][]float64, 0, len(part))
		for _, v := range part {
			line = append(line, []float64{v.X(), v.Y(), v.Elevation(), v.Distance()})
		}

		lines = append(lines, line)
	}

	var f *geojson.Feature
	if len(lines) == 1 {
		f = geojson.NewLineStringFeature(lines[0])
	} else {
		f = geojson.NewMultiLineStringFeature(lines...)
	}

	f.SetProperty("vertex_count", annotated.VertexCount())
	if !summary.Empty() {
		f.SetProperty("first_elevation", summary.FirstElevation)
		f.SetProperty("last_elevation", summary.LastElevation)
		f.SetProperty("min_elevation", summary.MinElevation)
		f.SetProperty("max_elevation", summary.MaxElevation)
		f.SetProperty("min_distance", summary.MinDistance)
		f.SetProperty("max_distance", summary.MaxDistance)
		f.SetProperty("change", summary.Change())
		f.SetProperty("range", summary.Range())
	}

	return geojson.NewFeatureCollection().AddFeature(f)
}
