package smoothsurface

import (
	"math"
	"testing"

	"github.com/paulmach/go.geo"
	"github.com/stretchr/testify/assert"
)

func newSurface(width, height int, value func(x, y int) float64) *geo.Surface {
	s := geo.NewSurface(geo.NewBound(0, 10, 0, 10), width, height)
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			s.Grid[x][y] = value(x, y)
		}
	}

	return s
}

func TestFlatSurface(t *testing.T) {
	surface := newSurface(11, 11, func(int, int) float64 { return 250 })
	s := New(surface, []float64{0.25, 0.5, 0.25})

	for _, p := range []*geo.Point{geo.NewPoint(0, 0), geo.NewPoint(3.3, 7.1), geo.NewPoint(9.5, 0.5)} {
		assert.InDelta(t, 250.0, s.ValueAt(p), 1e-9)
	}

	assert.True(t, math.IsNaN(s.ValueAt(geo.NewPoint(11, 5))))
}

func TestStepSurface(t *testing.T) {
	// x < 5 is 0, the rest 100
	surface := newSurface(11, 11, func(x, _ int) float64 {
		if x < 5 {
			return 0
		}
		return 100
	})

	s := New(surface, []float64{0.25, 0.5, 0.25})

	assert.InDelta(t, 25.0, s.SmoothedGrid(4, 5), 1e-9)
	assert.InDelta(t, 75.0, s.SmoothedGrid(5, 5), 1e-9)
	assert.InDelta(t, 0.0, s.SmoothedGrid(0, 0), 1e-9)
	assert.InDelta(t, 100.0, s.SmoothedGrid(10, 10), 1e-9)

	// identity kernel brings back the raw grid
	s.SetKernel([]float64{1})
	assert.InDelta(t, 0.0, s.SmoothedGrid(4, 5), 1e-9)
	assert.InDelta(t, 100.0, s.SmoothedGrid(5, 5), 1e-9)
}

func TestEvenKernelPanics(t *testing.T) {
	surface := newSurface(2, 2, func(int, int) float64 { return 0 })
	assert.Panics(t, func() { New(surface, []float64{0.5, 0.5}) })
}
