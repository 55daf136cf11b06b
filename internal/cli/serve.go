package cli

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/paulmach/profile/config"
	"github.com/paulmach/profile/server"
)

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve profiles over HTTP",
		Long: `Start an HTTP server where clients open sessions, set the sketched
path of each session and read back the profile, chart and exports.`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}

	cmd.Flags().String("addr", config.DefaultAddr, "address to listen on")

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	cfg := getConfig(ctx)
	logger := getLogger(ctx)

	sampler, closeSampler, err := newSampler(ctx, cfg.Sampler, logger)
	if err != nil {
		return err
	}
	defer closeSampler()

	srvCfg := server.Config{
		Addr:          cfg.Server.Addr,
		Sampler:       sampler,
		MinPointCount: cfg.MinPointCount,
		Planar:        !cfg.Geodesic,
		SessionTTL:    cfg.Server.SessionTTL,
		Logger:        logger,
	}

	logger.Info("starting server",
		slog.String("sampler", cfg.Sampler.Kind),
		slog.Int("min_point_count", cfg.MinPointCount))

	return server.New(srvCfg).Serve(ctx)
}
