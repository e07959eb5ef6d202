package cli

import (
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"

	"github.com/jwalitptl/followups/internal/repository/postgres"
	"github.com/jwalitptl/followups/internal/service/clinic"
	"github.com/jwalitptl/followups/pkg/validator"
)

func clinicService(db *sqlx.DB) *clinic.Service {
	base := postgres.NewBaseRepository(db)
	return clinic.NewService(
		postgres.NewClinicRepository(base),
		postgres.NewUserProfileRepository(base),
		validator.New(),
	)
}

func NewClinicCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clinic",
		Short: "Manage clinics",
	}
	cmd.AddCommand(newClinicCreateCommand(rootOpts))
	cmd.AddCommand(newClinicListCommand(rootOpts))
	return cmd
}

func newClinicCreateCommand(rootOpts *RootOptions) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Register a clinic and print its code",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return rootOpts.withDB(ctx, func(db *sqlx.DB) error {
				c, err := clinicService(db).CreateClinic(ctx, name)
				if err != nil {
					return err
				}
				rootOpts.printf(cmd, "%s\t%s\t%s\n", c.ID, c.ClinicCode, c.Name)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "clinic name")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newClinicListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List clinics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return rootOpts.withDB(ctx, func(db *sqlx.DB) error {
				clinics, err := clinicService(db).ListClinics(ctx)
				if err != nil {
					return err
				}
				for _, c := range clinics {
					rootOpts.printf(cmd, "%s\t%s\t%s\n", c.ID, c.ClinicCode, c.Name)
				}
				return nil
			})
		},
	}
}
