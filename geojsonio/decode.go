// Package geojsonio converts between GeoJSON and profile paths.
package geojsonio

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/paulmach/go.geo"
	"github.com/paulmach/go.geojson"

	"github.com/paulmach/profile"
)

var (
	// ErrUnsupportedGeometry is returned for GeoJSON without a line or polygon geometry.
	ErrUnsupportedGeometry = errors.New("geojsonio: no line or polygon geometry")

	// ErrInvalidPosition is returned for positions with less than 2 values.
	ErrInvalidPosition = errors.New("geojsonio: position must have at least 2 values")
)

// Decode reads a GeoJSON geometry, feature or feature collection into a path.
// For collections the first line or polygon geometry is used.
func Decode(data []byte) (*profile.Path, error) {
	var object struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &object); err != nil {
		return nil, fmt.Errorf("geojsonio: %w", err)
	}

	switch object.Type {
	case "FeatureCollection":
		fc, err := geojson.UnmarshalFeatureCollection(data)
		if err != nil {
			return nil, fmt.Errorf("geojsonio: %w", err)
		}

		for _, f := range fc.Features {
			if path, err := PathFromGeometry(f.Geometry); !errors.Is(err, ErrUnsupportedGeometry) {
				return path, err
			}
		}

		return nil, ErrUnsupportedGeometry
	case "Feature":
		f, err := geojson.UnmarshalFeature(data)
		if err != nil {
			return nil, fmt.Errorf("geojsonio: %w", err)
		}

		return PathFromGeometry(f.Geometry)
	}

	g, err := geojson.UnmarshalGeometry(data)
	if err != nil {
		return nil, fmt.Errorf("geojsonio: %w", err)
	}

	return PathFromGeometry(g)
}

// PathFromGeometry converts line strings into polyline paths and polygons
// into polygon paths, with one part per line or ring.
func PathFromGeometry(g *geojson.Geometry) (*profile.Path, error) {
	if g == nil {
		return nil, ErrUnsupportedGeometry
	}

	var (
		kind  profile.Kind
		lines [][][]float64
	)

	switch g.Type {
	case geojson.GeometryLineString:
		kind, lines = profile.Polyline, [][][]float64{g.LineString}
	case geojson.GeometryMultiLineString:
		kind, lines = profile.Polyline, g.MultiLineString
	case geojson.GeometryPolygon:
		kind, lines = profile.Polygon, g.Polygon
	case geojson.GeometryMultiPolygon:
		kind = profile.Polygon
		for _, polygon := range g.MultiPolygon {
			lines = append(lines, polygon...)
		}
	case geojson.GeometryCollection:
		for _, child := range g.Geometries {
			if path, err := PathFromGeometry(child); !errors.Is(err, ErrUnsupportedGeometry) {
				return path, err
			}
		}

		return nil, ErrUnsupportedGeometry
	default:
		return nil, ErrUnsupportedGeometry
	}

	path := &profile.Path{Kind: kind, Parts: make([]*geo.Path, 0, len(lines))}
	for _, line := range lines {
		part := geo.NewPath()
		for _, position := range line {
			if len(position) < 2 {
				return nil, ErrInvalidPosition
			}
			part.Push(geo.NewPoint(position[0], position[1]))
		}

		path.Parts = append(path.Parts, part)
	}

	return path, nil
}
