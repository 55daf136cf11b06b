// Package cli provides the command line interface for profile.
package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/paulmach/profile/config"
)

// Version information, set at build time.
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
)

type configKey struct{}
type loggerKey struct{}

// NewRootCmd creates the root command with all the subcommands.
func NewRootCmd() *cobra.Command {
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:   "profile",
		Short: "Elevation profiles along sketched paths",
		Long: `profile samples terrain elevations along lines and polygons and
reduces them into a distance/elevation chart with summary statistics.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "version" {
				return nil
			}

			cfg, err := config.Load(cfgFile, cmd.Flags())
			if err != nil {
				return err
			}

			logger, err := cfg.Log.NewLogger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			ctx := context.WithValue(cmd.Context(), configKey{}, cfg)
			ctx = context.WithValue(ctx, loggerKey{}, logger)
			cmd.SetContext(ctx)

			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default: ./"+config.DefaultFile+")")
	flags.String("log-level", "info", "log level (debug|info|warn|error)")
	flags.String("log-format", "text", "log format (text|json)")
	flags.Int("min-point-count", config.DefaultMinPointCount, "minimum number of points to densify paths into")
	flags.Bool("geodesic", true, "measure and densify along great circles, straight web mercator lines otherwise")
	flags.String("sampler", config.DefaultSamplerKind, "elevation source (terrainrgb|image|flat)")
	flags.String("tile-url", config.DefaultURLTemplate, "terrain tile url template with {z}/{x}/{y}")
	flags.String("encoding", config.DefaultEncoding, "terrain tile encoding (mapbox|terrarium)")
	flags.String("cache", "", "sqlite file to cache terrain tiles in")
	flags.Float64("smoothing", 0, "smoothing standard deviation in meters")
	flags.Int("zoom", 14, "most detailed terrain tile zoom level")
	flags.Float64("elevation", 0, "elevation returned by the flat sampler")
	flags.String("heightmap", "", "heightmap image for the image sampler")

	_ = rootCmd.RegisterFlagCompletionFunc("sampler", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{config.SamplerTerrainRGB, config.SamplerImage, config.SamplerFlat}, cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddCommand(NewComputeCommand())
	rootCmd.AddCommand(NewServeCommand())
	rootCmd.AddCommand(NewVersionCommand())

	return rootCmd
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}

// NewVersionCommand creates the version command.
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "profile %s (%s)\n", Version, GitCommit)
			return err
		},
	}
}

func getConfig(ctx context.Context) *config.Config {
	if c, ok := ctx.Value(configKey{}).(*config.Config); ok {
		return c
	}

	return &config.Config{
		MinPointCount: config.DefaultMinPointCount,
		Geodesic:      true,
		Sampler:       config.SamplerConfig{Kind: config.SamplerFlat},
	}
}

func getLogger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}

	return slog.New(slog.DiscardHandler)
}
