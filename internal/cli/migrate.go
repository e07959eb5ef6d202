package cli

import (
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/jwalitptl/followups/internal/repository/postgres"
)

func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return rootOpts.withDB(ctx, func(db *sqlx.DB) error {
				if err := postgres.Migrate(ctx, db); err != nil {
					return err
				}
				log.Info().Str("driver", db.DriverName()).Msg("schema applied")
				rootOpts.printf(cmd, "schema applied\n")
				return nil
			})
		},
	}
}
