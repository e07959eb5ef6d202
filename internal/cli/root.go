// Package cli implements the followups command line.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"

	"github.com/jwalitptl/followups/internal/config"
	"github.com/jwalitptl/followups/internal/repository/postgres"
	"github.com/jwalitptl/followups/pkg/logger"
)

// RootOptions holds global flags and state shared by all commands.
type RootOptions struct {
	ConfigPath string
	Config     *config.Config

	// OpenDB connects to the configured database. Tests substitute it.
	OpenDB func(ctx context.Context, cfg config.DatabaseConfig) (*sqlx.DB, error)
}

// NewRootCommand creates the root command for the followups CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{OpenDB: postgres.NewDB})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "followups",
		Short: "Clinic follow-up tracker",
		Long:  "Serve the clinic follow-up API and run operator tasks against its database.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.ConfigPath)
			if err != nil {
				return err
			}
			opts.Config = cfg
			logger.Init(logger.Config{
				Level:  cfg.Log.Level,
				Format: cfg.Log.Format,
				Output: cmd.ErrOrStderr(),
			})
			return nil
		},
		SilenceUsage: true,
	}

	// Global flags
	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", os.Getenv("FOLLOWUPS_CONFIG"), "path to config file")

	// Add subcommands
	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewClinicCommand(opts))
	cmd.AddCommand(NewStaffCommand(opts))
	cmd.AddCommand(NewTokenCommand(opts))

	return cmd
}

// withDB opens the database for the duration of fn.
func (opts *RootOptions) withDB(ctx context.Context, fn func(*sqlx.DB) error) error {
	db, err := opts.OpenDB(ctx, opts.Config.Database)
	if err != nil {
		return err
	}
	defer db.Close()
	return fn(db)
}

func (opts *RootOptions) printf(cmd *cobra.Command, format string, args ...interface{}) {
	fmt.Fprintf(cmd.OutOrStdout(), format, args...)
}
