package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mmynk/clubhouse/internal/auth"
	"github.com/mmynk/clubhouse/internal/metrics"
	"github.com/mmynk/clubhouse/internal/server"
	"github.com/mmynk/clubhouse/internal/storage/blob"
)

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the API server",
		Long: `Run the Connect API server, the RSVP pages and the static frontend.

The database is migrated on start. Stops gracefully on SIGINT or SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, rootOpts, cmd)
		},
	}
}

func runServe(ctx context.Context, opts *RootOptions, cmd *cobra.Command) error {
	cfg, logger, err := opts.load(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	if err := cfg.ValidateServe(); err != nil {
		return err
	}

	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()
	logger.Info("Storage initialized", "driver", cfg.Database.Driver)

	blobs, err := blob.NewLocalStore(cfg.Blob.Dir, cfg.BlobBaseURL())
	if err != nil {
		return err
	}

	var revoker auth.Revoker = auth.NopRevoker{}
	if cfg.Redis.Enabled {
		client, err := auth.Connect(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			// Sessions keep working; logout just cannot revoke tokens early.
			logger.Warn("Redis unavailable, token revocation disabled", "addr", cfg.Redis.Addr, "error", err)
		} else {
			defer client.Close()
			revoker = auth.NewRedisRevoker(client)
			logger.Info("Token revocation enabled", "addr", cfg.Redis.Addr)
		}
	}

	srv := server.New(cfg, server.Deps{
		Store:   store,
		Blobs:   blobs,
		Revoker: revoker,
		Metrics: metrics.NewRegistry(),
		Logger:  logger,
	})
	return srv.Run(ctx)
}
