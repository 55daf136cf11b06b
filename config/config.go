// Package config loads the profile settings from defaults, an optional
// YAML file, PROFILE_ environment variables and command line flags.
package config

import (
	"errors"
	"fmt"
	"time"
)

// Defaults for the settings, see Config.
const (
	DefaultFile          = "profile.yaml"
	DefaultEnvPrefix     = "PROFILE_"
	DefaultAddr          = ":8080"
	DefaultSamplerKind   = "terrainrgb"
	DefaultURLTemplate   = "https://s3.amazonaws.com/elevation-tiles-prod/terrarium/{z}/{x}/{y}.png"
	DefaultEncoding      = "terrarium"
	DefaultMinPointCount = 250
)

// Sampler kinds.
const (
	SamplerTerrainRGB = "terrainrgb"
	SamplerImage      = "image"
	SamplerFlat       = "flat"
)

// ErrInvalid is wrapped by all the validation errors.
var ErrInvalid = errors.New("config: invalid")

// Config holds all the settings.
type Config struct {
	MinPointCount int           `koanf:"min_point_count"`
	Geodesic      bool          `koanf:"geodesic"`
	Log           LogConfig     `koanf:"log"`
	Server        ServerConfig  `koanf:"server"`
	Sampler       SamplerConfig `koanf:"sampler"`
}

// LogConfig controls the slog handler.
type LogConfig struct {
	Level  string `koanf:"level"`  // debug, info, warn, error
	Format string `koanf:"format"` // text or json
}

// ServerConfig is for the HTTP service.
type ServerConfig struct {
	Addr       string        `koanf:"addr"`
	SessionTTL time.Duration `koanf:"session_ttl"` // idle sessions are dropped after this
}

// SamplerConfig selects and configures the elevation source.
type SamplerConfig struct {
	Kind string `koanf:"kind"`

	// terrainrgb
	URLTemplate        string        `koanf:"url_template"`
	Encoding           string        `koanf:"encoding"`
	Subdomains         []string      `koanf:"subdomains"`
	MaxTileDim         int           `koanf:"max_tile_dim"`
	Zoom               int           `koanf:"zoom"`
	DownloadGoroutines int           `koanf:"download_goroutines"`
	DownloadRetries    int           `koanf:"download_retries"`
	Timeout            time.Duration `koanf:"timeout"`
	CachePath          string        `koanf:"cache_path"`

	// terrainrgb and image
	SmoothingStdDev float64 `koanf:"smoothing_std_dev"`

	// image
	ImagePath  string    `koanf:"image_path"`
	ImageBound []float64 `koanf:"image_bound"` // west, south, east, north
	ImageMin   float64   `koanf:"image_min"`
	ImageMax   float64   `koanf:"image_max"`

	// flat
	FlatElevation float64 `koanf:"flat_elevation"`
}

func defaults() map[string]interface{} {
	return map[string]interface{}{
		"min_point_count":             DefaultMinPointCount,
		"geodesic":                    true,
		"log.level":                   "info",
		"log.format":                  "text",
		"server.addr":                 DefaultAddr,
		"server.session_ttl":          "1h",
		"sampler.kind":                DefaultSamplerKind,
		"sampler.url_template":        DefaultURLTemplate,
		"sampler.encoding":            DefaultEncoding,
		"sampler.max_tile_dim":        4,
		"sampler.zoom":                14,
		"sampler.download_goroutines": 4,
		"sampler.download_retries":    2,
		"sampler.timeout":             "10s",
		"sampler.smoothing_std_dev":   0.0,
		"sampler.image_min":           0.0,
		"sampler.image_max":           255.0,
	}
}

// Validate checks the settings that would otherwise fail deep in a request.
func (c *Config) Validate() error {
	if c.MinPointCount < 1 {
		return fmt.Errorf("%w: min_point_count must be positive, got %d", ErrInvalid, c.MinPointCount)
	}

	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log.format must be text or json, got %q", ErrInvalid, c.Log.Format)
	}

	if c.Server.SessionTTL <= 0 {
		return fmt.Errorf("%w: server.session_ttl must be positive", ErrInvalid)
	}

	if c.Sampler.SmoothingStdDev < 0 {
		return fmt.Errorf("%w: sampler.smoothing_std_dev is negative", ErrInvalid)
	}

	switch c.Sampler.Kind {
	case SamplerTerrainRGB:
		if c.Sampler.URLTemplate == "" {
			return fmt.Errorf("%w: sampler.url_template is required", ErrInvalid)
		}

		switch c.Sampler.Encoding {
		case "mapbox", "terrarium":
		default:
			return fmt.Errorf("%w: sampler.encoding must be mapbox or terrarium, got %q", ErrInvalid, c.Sampler.Encoding)
		}
	case SamplerImage:
		if c.Sampler.ImagePath == "" {
			return fmt.Errorf("%w: sampler.image_path is required", ErrInvalid)
		}

		if len(c.Sampler.ImageBound) != 4 {
			return fmt.Errorf("%w: sampler.image_bound must be [west, south, east, north]", ErrInvalid)
		}

		if c.Sampler.ImageMax < c.Sampler.ImageMin {
			return fmt.Errorf("%w: sampler.image_max below sampler.image_min", ErrInvalid)
		}
	case SamplerFlat:
	default:
		return fmt.Errorf("%w: unknown sampler.kind %q", ErrInvalid, c.Sampler.Kind)
	}

	return nil
}
