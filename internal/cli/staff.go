package cli

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
)

func NewStaffCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "staff",
		Short: "Manage staff clinic bindings",
	}
	cmd.AddCommand(newStaffBindCommand(rootOpts))
	return cmd
}

func newStaffBindCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		user       string
		clinicCode string
	)

	cmd := &cobra.Command{
		Use:   "bind",
		Short: "Bind a staff user to a clinic",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := uuid.Parse(user)
			if err != nil {
				return fmt.Errorf("invalid user id %q: %w", user, err)
			}

			ctx := cmd.Context()
			return rootOpts.withDB(ctx, func(db *sqlx.DB) error {
				svc := clinicService(db)
				c, err := svc.GetClinicByCode(ctx, clinicCode)
				if err != nil {
					return err
				}
				p, err := svc.BindUser(ctx, userID, c.ID)
				if err != nil {
					return err
				}
				rootOpts.printf(cmd, "bound %s to %s (%s)\n", p.UserID, c.Name, c.ClinicCode)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "staff user id (UUID)")
	cmd.Flags().StringVar(&clinicCode, "clinic-code", "", "clinic code")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("clinic-code")
	return cmd
}
