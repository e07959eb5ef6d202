package cli

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jwalitptl/followups/pkg/auth"
)

func NewTokenCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Development helpers for staff tokens",
	}
	cmd.AddCommand(newTokenIssueCommand(rootOpts))
	return cmd
}

func newTokenIssueCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		user string
		ttl  time.Duration
	)

	cmd := &cobra.Command{
		Use:   "issue",
		Short: "Sign a staff token with the configured secret",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := uuid.Parse(user)
			if err != nil {
				return fmt.Errorf("invalid user id %q: %w", user, err)
			}
			if ttl <= 0 {
				return fmt.Errorf("ttl must be positive")
			}

			cfg := rootOpts.Config.Auth
			tok, err := auth.NewIssuer(auth.Config{Secret: cfg.JWTSecret, Issuer: cfg.Issuer}).Issue(userID, ttl)
			if err != nil {
				return err
			}
			rootOpts.printf(cmd, "%s\n", tok)
			return nil
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "staff user id (UUID)")
	cmd.Flags().DurationVar(&ttl, "ttl", 12*time.Hour, "token lifetime")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
