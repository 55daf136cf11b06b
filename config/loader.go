package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// sections are the nested config keys, env vars and flags with these
// prefixes are mapped into them, e.g. PROFILE_SAMPLER_URL_TEMPLATE -> sampler.url_template
var sections = []string{"log", "server", "sampler"}

// flagKeys maps the flag names to config keys, other flags are not config.
var flagKeys = map[string]string{
	"min-point-count": "min_point_count",
	"geodesic":        "geodesic",
	"log-format":      "log.format",
	"addr":            "server.addr",
	"log-level":       "log.level",
	"sampler":         "sampler.kind",
	"tile-url":        "sampler.url_template",
	"encoding":        "sampler.encoding",
	"cache":           "sampler.cache_path",
	"smoothing":       "sampler.smoothing_std_dev",
	"zoom":            "sampler.zoom",
	"elevation":       "sampler.flat_elevation",
	"heightmap":       "sampler.image_path",
}

// Load builds the config.
// Precedence (highest to lowest): flags > env vars > config file > defaults
// An empty cfgFile uses ./profile.yaml if it exists.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	// 1. defaults
	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("config: load defaults: %w", err)
	}

	// 2. config file
	if cfgFile == "" {
		if _, err := os.Stat(DefaultFile); err == nil {
			cfgFile = DefaultFile
		}
	}

	if cfgFile != "" {
		if err := k.Load(file.Provider(cfgFile), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", cfgFile, err)
		}
	}

	// 3. environment, PROFILE_ prefix
	if err := k.Load(env.ProviderWithValue(DefaultEnvPrefix, ".", func(name, value string) (string, interface{}) {
		return envKey(name), envValue(value)
	}), nil); err != nil {
		return nil, fmt.Errorf("config: load env vars: %w", err)
	}

	// 4. explicitly set flags
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed {
				return "", nil
			}

			return flagKeys[f.Name], posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("config: load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// envKey transforms PROFILE_SAMPLER_CACHE_PATH into sampler.cache_path.
func envKey(name string) string {
	key := strings.ToLower(strings.TrimPrefix(name, DefaultEnvPrefix))
	for _, s := range sections {
		if strings.HasPrefix(key, s+"_") {
			return s + "." + strings.TrimPrefix(key, s+"_")
		}
	}

	return key
}

// envValue splits comma separated lists, used by sampler.subdomains and sampler.image_bound.
func envValue(value string) interface{} {
	if !strings.Contains(value, ",") {
		return value
	}

	parts := strings.Split(value, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	return parts
}

// NewLogger creates the slog logger described by the config.
func (c LogConfig) NewLogger(w io.Writer) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Level)); err != nil {
		return nil, fmt.Errorf("%w: log.level: %v", ErrInvalid, err)
	}

	opts := &slog.HandlerOptions{Level: level}
	if c.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}

	return slog.New(slog.NewTextHandler(w, opts)), nil
}
