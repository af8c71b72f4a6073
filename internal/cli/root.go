// Package cli implements the clubhouse command line.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/mmynk/clubhouse/internal/config"
	"github.com/mmynk/clubhouse/internal/storage/sqlstore"
	"github.com/mmynk/clubhouse/pkg/logging"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	Verbose    bool
	Format     string // "text" | "json" | "yaml"
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json", "yaml"}

// NewRootCommand creates the root command for the clubhouse CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "clubhouse",
		Short: "Clubhouse - members, games and the club ledger",
		Long:  "Clubhouse runs the club's API server and offers maintenance commands for its database.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "path to a YAML config file")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (text|json|yaml)")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewSummaryCommand(opts))
	cmd.AddCommand(NewAdminCommand(opts))

	return cmd
}

// load reads the configuration and installs the logger. Logs go to w so
// they never mix with command output on stdout.
func (o *RootOptions) load(w io.Writer) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return nil, nil, err
	}

	level := cfg.Log.Level
	if o.Verbose {
		level = "debug"
	}
	logFormat := logging.FormatText
	if o.Format == "json" {
		logFormat = logging.FormatJSON
	}
	return cfg, logging.Setup(w, level, logFormat), nil
}

func openStore(ctx context.Context, cfg *config.Config) (*sqlstore.Store, error) {
	store, err := sqlstore.Open(ctx, cfg.Database.Driver, cfg.Database.DSN, sqlstore.Options{
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		QueryTimeout:    cfg.Database.QueryTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", cfg.Database.Driver, err)
	}
	return store, nil
}
