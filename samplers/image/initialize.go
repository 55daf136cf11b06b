// Package image samples elevations from a grayscale heightmap image,
// such as an exported DEM, georeferenced by a lng/lat bound.
package image

import (
	"context"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg" // to support heightmaps in these formats automatically
	_ "image/png"
	"math"
	"os"
	"sync"

	"github.com/paulmach/go.geo"
	"github.com/paulmach/profile/samplers"
)

// A Sampler reads elevations from a heightmap. Black maps to MinElevation
// and white to MaxElevation, with shades of gray linear in between.
type Sampler struct {
	Surface *geo.Surface

	MinElevation float64
	MaxElevation float64

	// SmoothingStdDev is in meters and scaled to match the mercator projection
	// of the surface. Zero, the default, disables smoothing.
	SmoothingStdDev float64

	lnglatBound *geo.Bound

	// guards the lazily smoothed values
	mu     sync.Mutex
	smooth valueAtter
}

type valueAtter interface {
	ValueAt(point *geo.Point) float64
}

// New copies the image into a mercator surface covering the lng/lat bound.
func New(img image.Image, lnglatBound *geo.Bound, minElevation, maxElevation float64) (*Sampler, error) {
	if lnglatBound == nil || lnglatBound.Width() == 0 || lnglatBound.Height() == 0 {
		return nil, samplers.ErrBoundEmpty
	}

	if maxElevation < minElevation {
		return nil, samplers.ErrElevationRange
	}

	bounds := img.Bounds()
	if bounds.Dx() < 2 || bounds.Dy() < 2 {
		return nil, fmt.Errorf("image: heightmap must be at least 2x2 pixels, got %dx%d", bounds.Dx(), bounds.Dy())
	}

	s := &Sampler{
		MinElevation: minElevation,
		MaxElevation: maxElevation,
		lnglatBound:  lnglatBound.Clone(),
	}

	s.Surface = geo.NewSurface(
		geo.NewBoundFromPoints(
			lnglatBound.SouthWest().Clone().Transform(geo.Mercator.Project),
			lnglatBound.NorthEast().Clone().Transform(geo.Mercator.Project),
		),
		bounds.Dx(),
		bounds.Dy(),
	)

	// image rows go north to south, surface rows south to north
	for i := 0; i < bounds.Dy(); i++ {
		offset := bounds.Dy() - 1 - i
		for j := 0; j < bounds.Dx(); j++ {
			s.Surface.Grid[j][offset] = s.elevation(img.At(bounds.Min.X+j, bounds.Min.Y+i))
		}
	}

	return s, nil
}

// Open decodes the PNG or JPEG heightmap at path, see New.
func Open(path string, lnglatBound *geo.Bound, minElevation, maxElevation float64) (*Sampler, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("image: decode %s: %w", path, err)
	}

	return New(img, lnglatBound, minElevation, maxElevation)
}

// elevation maps the luminance of the color onto the elevation range.
// Transparent pixels have no data.
func (s *Sampler) elevation(c color.Color) float64 {
	if _, _, _, a := c.RGBA(); a == 0 {
		return math.NaN()
	}

	gray := color.Gray16Model.Convert(c).(color.Gray16)
	return s.MinElevation + float64(gray.Y)/0xffff*(s.MaxElevation-s.MinElevation)
}

// QueryElevation samples the heightmap at every vertex,
// vertices outside the bound get NaN.
func (s *Sampler) QueryElevation(ctx context.Context, parts []*geo.Path) ([][]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if s.SmoothingStdDev < 0 {
		return nil, samplers.ErrStdDevNegative
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return samplers.Query(parts, s.valueAt), nil
}

// ValueAt returns the elevation at the mercator point.
func (s *Sampler) ValueAt(point *geo.Point) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.valueAt(point)
}

func (s *Sampler) valueAt(point *geo.Point) float64 {
	if !s.Surface.Bound().Contains(point) {
		return math.NaN()
	}

	if s.smooth != nil {
		return s.smooth.ValueAt(point)
	}

	return s.Surface.ValueAt(point)
}
