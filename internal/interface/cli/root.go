// Package cli implements supportctl, the operator command line.
package cli

import (
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/yanqian/support-expert/internal/domain/auth"
)

// Dependencies are the collaborators the commands need.
type Dependencies struct {
	Auth       auth.Service
	HTTPClient *http.Client
	ServerURL  string
}

// NewRootCommand builds the supportctl command tree.
func NewRootCommand(deps Dependencies) *cobra.Command {
	if deps.HTTPClient == nil {
		deps.HTTPClient = &http.Client{Timeout: 5 * time.Minute}
	}
	root := &cobra.Command{
		Use:           "supportctl",
		Short:         "Operate the support answer service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&deps.ServerURL, "server", deps.ServerURL, "Base URL of the running service")

	root.AddCommand(newTokenCommand(&deps))
	root.AddCommand(newSyncCommand(&deps))
	root.AddCommand(newHashPasswordCommand())
	return root
}
