package image

import (
	"github.com/paulmach/go.geo"
	"github.com/paulmach/profile/samplers"
	"github.com/paulmach/profile/utils"
	"github.com/paulmach/profile/utils/smoothsurface"
)

// Resmooth applies a new smoothing to the heightmap based on
// a potentially updated `SmoothingStdDev`.
func (s *Sampler) Resmooth() error {
	if s.SmoothingStdDev < 0 {
		return samplers.ErrStdDevNegative
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	kernel := utils.Kernel(
		s.SmoothingStdDev,
		geo.MercatorScaleFactor(s.lnglatBound.Center().Lat()),
		s.Surface.Bound().Width()/float64(s.Surface.Width-1),
	)

	if len(kernel) == 1 {
		s.smooth = nil
		return nil
	}

	if lazy, ok := s.smooth.(*smoothsurface.LazySmoothSurface); ok {
		lazy.SetKernel(kernel)
		return nil
	}

	s.smooth = smoothsurface.New(s.Surface, kernel)
	return nil
}
