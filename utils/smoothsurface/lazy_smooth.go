// Package smoothsurface provides lazily smoothed values of a geo.Surface.
package smoothsurface

import (
	"math"

	"github.com/paulmach/go.geo"
)

// LazySmoothSurface provides ValueAt for a surface smoothed vertically and
// horizontally by a kernel. Grid values are only smoothed when requested and
// then cached, which is much cheaper than smoothing the whole surface when
// only the cells along a path are sampled.
// It is not safe for concurrent use.
type LazySmoothSurface struct {
	Surface *geo.Surface
	kernel  []float64

	// indexed by y*Width + x, NaN means not computed yet
	smoothed []float64
	vertical []float64
}

// New creates a new lazy smooth surface using the kernel, which must have an odd length.
func New(surface *geo.Surface, kernel []float64) *LazySmoothSurface {
	if len(kernel)%2 == 0 {
		panic("length of kernel must be odd")
	}

	s := &LazySmoothSurface{
		Surface:  surface,
		smoothed: make([]float64, surface.Width*surface.Height),
		vertical: make([]float64, surface.Width*surface.Height),
	}
	s.SetKernel(kernel)

	return s
}

// SetKernel updates the kernel used and clears the cache.
func (s *LazySmoothSurface) SetKernel(kernel []float64) {
	s.kernel = kernel

	nan := math.NaN()
	for i := range s.smoothed {
		s.smoothed[i] = nan
		s.vertical[i] = nan
	}
}

// ValueAt returns the bilinear interpolation of the smoothed grid at the point.
// Points outside the surface bound return NaN.
func (s *LazySmoothSurface) ValueAt(point *geo.Point) float64 {
	bound := s.Surface.Bound()
	if !bound.Contains(point) {
		return math.NaN()
	}

	w := (point.X() - bound.SouthWest().X()) / bound.Width() * float64(s.Surface.Width-1)
	h := (point.Y() - bound.SouthWest().Y()) / bound.Height() * float64(s.Surface.Height-1)

	xi, yi := int(math.Floor(w)), int(math.Floor(h))
	dx, dy := w-float64(xi), h-float64(yi)

	xi1 := min(xi+1, s.Surface.Width-1)
	yi1 := min(yi+1, s.Surface.Height-1)

	v1 := s.SmoothedGrid(xi, yi)*(1-dx) + s.SmoothedGrid(xi1, yi)*dx
	v2 := s.SmoothedGrid(xi, yi1)*(1-dx) + s.SmoothedGrid(xi1, yi1)*dx

	return v1*(1-dy) + v2*dy
}

// SmoothedGrid is surface.Grid[x][y] smoothed by the kernel in both directions.
func (s *LazySmoothSurface) SmoothedGrid(x, y int) float64 {
	key := y*s.Surface.Width + x
	if v := s.smoothed[key]; !math.IsNaN(v) {
		return v
	}

	v := s.convolve(x, s.Surface.Width, func(k int) float64 {
		return s.verticalValue(k, y)
	})

	s.smoothed[key] = v
	return v
}

// verticalValue is the grid value smoothed only along y.
func (s *LazySmoothSurface) verticalValue(x, y int) float64 {
	key := y*s.Surface.Width + x
	if v := s.vertical[key]; !math.IsNaN(v) {
		return v
	}

	v := s.convolve(y, s.Surface.Height, func(k int) float64 {
		return s.Surface.Grid[x][k]
	})

	s.vertical[key] = v
	return v
}

// convolve applies the kernel centered at i, clamping indexes to [0, limit).
func (s *LazySmoothSurface) convolve(i, limit int, value func(int) float64) float64 {
	size := (len(s.kernel) - 1) / 2

	sum := 0.0
	for j := i - size; j <= i+size; j++ {
		k := max(0, min(j, limit-1))
		sum += s.kernel[j-(i-size)] * value(k)
	}

	return sum
}
