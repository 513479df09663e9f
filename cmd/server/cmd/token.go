package cmd

import (
	"fmt"
	"time"

	"github.com/Togather-Foundation/eventreg/internal/auth"
	"github.com/spf13/cobra"
)

type tokenOptions struct {
	subject string
	role    string
	expiry  time.Duration
}

// newTokenCommand mints bearer tokens with the configured secret for manual API testing.
func newTokenCommand(root *rootOptions) *cobra.Command {
	opts := &tokenOptions{}
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token for a user id",
		Long: `Mint a bearer token signed with the configured JWT secret.

The store lives in server memory, so the token only authenticates against a
running server that already holds a user with this id.

Example:
  server token --user-id 01HZY3K0000000000000000000 --role organizer`,
		RunE: func(cmd *cobra.Command, args []string) error {
			role, err := auth.ParseRole(opts.role)
			if err != nil {
				return err
			}
			cfg, err := loadConfig(root)
			if err != nil {
				return fmt.Errorf("config error: %w", err)
			}
			expiry := cfg.Auth.JWTExpiry
			if opts.expiry > 0 {
				expiry = opts.expiry
			}

			token, err := auth.NewJWTManager(cfg.Auth.JWTSecret, expiry, cfg.Auth.JWTIssuer).Generate(opts.subject, string(role))
			if err != nil {
				return fmt.Errorf("generate token: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.subject, "user-id", "", "user id to put in the token subject")
	cmd.Flags().StringVar(&opts.role, "role", "attendee", "role claim (organizer or attendee)")
	cmd.Flags().DurationVar(&opts.expiry, "expiry", 0, "token lifetime (default: JWT_EXPIRY_HOURS)")
	_ = cmd.MarkFlagRequired("user-id")
	return cmd
}
