package terrainrgb

import (
	"github.com/paulmach/go.geo"
	"github.com/paulmach/profile/utils"
	"github.com/paulmach/profile/utils/smoothsurface"
)

// smooth sets up the LazySmoothSurface with a kernel based on `SmoothingStdDev` (meters).
// Returns nil if no smoothing is needed.
func (s *Sampler) smooth(surface *Surface) valueAtter {
	if s.SmoothingStdDev == 0 {
		return nil
	}

	kernel := utils.Kernel(
		s.SmoothingStdDev,
		geo.MercatorScaleFactor(surface.lnglatBound.Center().Lat()),
		surface.Grid.Bound().Width()/float64(surface.Grid.Width-1),
	)

	if len(kernel) == 1 {
		return nil
	}

	return smoothsurface.New(surface.Grid, kernel)
}
