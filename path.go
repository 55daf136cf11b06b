package profile

import (
	"github.com/paulmach/go.geo"
)

// Kind is the declared geometry type of a sketched path.
type Kind int

// The geometry kinds a sketch can produce.
const (
	Polyline Kind = iota
	Polygon
)

func (k Kind) String() string {
	switch k {
	case Polyline:
		return "polyline"
	case Polygon:
		return "polygon"
	}

	return "unknown"
}

// A Path is the raw geometry coming from the sketch surface.
// Parts are open lines for a polyline or rings for a polygon.
// Points are lng/lat (EPSG:4326).
type Path struct {
	Kind  Kind
	Parts []*geo.Path
}

// NewPolyline creates a multi-part polyline path.
func NewPolyline(parts ...*geo.Path) *Path {
	return &Path{Kind: Polyline, Parts: parts}
}

// NewPolygon creates a polygon path where each ring is a part.
func NewPolygon(rings ...*geo.Path) *Path {
	return &Path{Kind: Polygon, Parts: rings}
}

// VertexCount returns the total number of vertices over all the parts.
func (p *Path) VertexCount() int {
	count := 0
	for _, part := range p.Parts {
		if part != nil {
			count += part.Length()
		}
	}

	return count
}

// Clone returns a deep copy of the path.
func (p *Path) Clone() *Path {
	parts := make([]*geo.Path, len(p.Parts))
	for i, part := range p.Parts {
		if part != nil {
			parts[i] = part.Clone()
		}
	}

	return &Path{Kind: p.Kind, Parts: parts}
}

func (p *Path) validate() error {
	if p == nil || len(p.Parts) == 0 {
		return ErrEmptyPath
	}

	for _, part := range p.Parts {
		if part == nil || part.Length() == 0 {
			return ErrEmptyPath
		}
	}

	return nil
}

// A Vertex is an annotated coordinate: x, y, elevation and
// cumulative distance along its part, in that order.
type Vertex [4]float64

// NewVertex creates a vertex from its components.
func NewVertex(x, y, elevation, distance float64) Vertex {
	return Vertex{x, y, elevation, distance}
}

// X is the longitude.
func (v Vertex) X() float64 { return v[0] }

// Y is the latitude.
func (v Vertex) Y() float64 { return v[1] }

// Elevation is the terrain elevation in meters.
func (v Vertex) Elevation() float64 { return v[2] }

// Distance is the cumulative distance, in meters, from the start of the part.
func (v Vertex) Distance() float64 { return v[3] }

// Point returns the 2d location of the vertex.
func (v Vertex) Point() *geo.Point {
	return geo.NewPoint(v[0], v[1])
}

// AnnotatedPath has the same part/vertex structure as the densified path
// but every vertex carries elevation and distance.
type AnnotatedPath [][]Vertex

// VertexCount returns the total number of vertices over all the parts.
func (a AnnotatedPath) VertexCount() int {
	count := 0
	for _, part := range a {
		count += len(part)
	}

	return count
}
