// Package export writes annotated profiles to formats understood by
// other mapping tools.
package export

import (
	"fmt"
	"io"

	"github.com/twpayne/go-kml/v3"

	"github.com/paulmach/profile"
)

// KML writes the annotated path as a KML document with one placemark per
// part. Coordinates carry the sampled elevation as absolute altitude, so
// viewers draw the line on the terrain surface.
func KML(w io.Writer, name string, annotated profile.AnnotatedPath) error {
	elements := []kml.Element{kml.Name(name)}

	for i, part := range annotated {
		if len(part) == 0 {
			continue
		}

		coords := make([]kml.Coordinate, len(part))
		for j, v := range part {
			coords[j] = kml.Coordinate{
				Lon: v.X(),
				Lat: v.Y(),
				Alt: v.Elevation(),
			}
		}

		elements = append(elements, kml.Placemark(
			kml.Name(fmt.Sprintf("%s %d", name, i+1)),
			kml.Description(fmt.Sprintf("%.1f m", part[len(part)-1].Distance())),
			kml.LineString(
				kml.AltitudeMode(kml.AltitudeModeAbsolute),
				kml.Coordinates(coords...),
			),
		))
	}

	doc := kml.KML(kml.Document(elements...))
	if err := doc.WriteIndent(w, "", "  "); err != nil {
		return fmt.Errorf("export: write kml: %w", err)
	}

	return nil
}
