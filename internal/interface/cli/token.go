package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/yanqian/support-expert/internal/domain/auth"
)

func newTokenCommand(deps *Dependencies) *cobra.Command {
	var (
		subject string
		ttl     time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an admin token",
		Long:  `Signs a bearer token for the teach and sync endpoints with the configured secret.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			resp, err := deps.Auth.IssueToken(cmd.Context(), auth.TokenRequest{Subject: subject, TTL: ttl})
			if err != nil {
				return err
			}
			cmd.Println(resp.Token)
			cmd.PrintErrf("expires at %s\n", resp.ExpiresAt.Format(time.RFC3339))
			return nil
		},
	}
	cmd.Flags().StringVarP(&subject, "subject", "s", "operator", "Who the token is issued to")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "Token lifetime (defaults to auth.tokenTtl)")
	return cmd
}
