package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/paulmach/go.geo"

	"github.com/paulmach/profile"
	"github.com/paulmach/profile/config"
	"github.com/paulmach/profile/samplers/image"
	"github.com/paulmach/profile/samplers/terrainrgb"
	"github.com/paulmach/profile/samplers/tilecache"
)

// newSampler builds the elevation source named by the config.
// The returned close func releases the tile cache, if any.
func newSampler(ctx context.Context, cfg config.SamplerConfig, logger *slog.Logger) (profile.ElevationSampler, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Kind {
	case config.SamplerFlat:
		return profile.FlatSampler(cfg.FlatElevation), noop, nil

	case config.SamplerImage:
		b := cfg.ImageBound
		if len(b) != 4 {
			return nil, nil, fmt.Errorf("image sampler: bound must be [west, south, east, north]")
		}

		s, err := image.Open(cfg.ImagePath, geo.NewBound(b[0], b[2], b[1], b[3]), cfg.ImageMin, cfg.ImageMax)
		if err != nil {
			return nil, nil, err
		}

		s.SmoothingStdDev = cfg.SmoothingStdDev
		if err := s.Resmooth(); err != nil {
			return nil, nil, err
		}

		return s, noop, nil

	case config.SamplerTerrainRGB:
		encoding, err := terrainrgb.ParseEncoding(cfg.Encoding)
		if err != nil {
			return nil, nil, err
		}

		s := terrainrgb.New(cfg.URLTemplate, encoding)
		s.Subdomains = cfg.Subdomains
		s.SmoothingStdDev = cfg.SmoothingStdDev
		s.Zoom = cfg.Zoom
		s.MaxSurfaceTileDim = cfg.MaxTileDim
		s.DownloadGoroutines = cfg.DownloadGoroutines
		s.DownloadRetries = cfg.DownloadRetries
		s.Timeout = cfg.Timeout
		s.Logger = logger.With(slog.String("sampler", "terrainrgb"))

		if cfg.CachePath == "" {
			return s, noop, nil
		}

		cache, err := tilecache.Open(ctx, cfg.CachePath)
		if err != nil {
			return nil, nil, err
		}

		s.Cache = cache
		return s, cache.Close, nil
	}

	return nil, nil, fmt.Errorf("unknown sampler %q", cfg.Kind)
}

func newProfile(sampler profile.ElevationSampler, presenter profile.Presenter, cfg *config.Config, logger *slog.Logger) *profile.Profile {
	p := profile.New(sampler, presenter)
	p.MinPointCount = cfg.MinPointCount
	p.Logger = logger
	if !cfg.Geodesic {
		p.UsePlanar()
	}

	return p
}
