package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yanqian/support-expert/internal/domain/auth"
	"github.com/yanqian/support-expert/internal/domain/feedsync"
)

func newSyncCommand(deps *Dependencies) *cobra.Command {
	var async bool
	cmd := &cobra.Command{
		Use:   "sync [feed]",
		Short: "Rebuild stores from a feed",
		Long: `Asks the running service to refetch a feed and rebuild its store.
Feeds: products, rules, stopwords, qa, all (default).`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw := string(feedsync.FeedAll)
			if len(args) > 0 {
				raw = args[0]
			}
			feed, err := feedsync.ParseFeed(raw)
			if err != nil {
				return err
			}
			token, err := deps.Auth.IssueToken(cmd.Context(), auth.TokenRequest{Subject: "supportctl"})
			if err != nil {
				return err
			}

			endpoint := strings.TrimRight(deps.ServerURL, "/") + "/api/v1/admin/sync/" + url.PathEscape(string(feed))
			if async {
				endpoint += "?async=true"
			}
			req, err := http.NewRequestWithContext(cmd.Context(), http.MethodPost, endpoint, bytes.NewReader(nil))
			if err != nil {
				return err
			}
			req.Header.Set("Authorization", "Bearer "+token.Token)

			resp, err := deps.HTTPClient.Do(req)
			if err != nil {
				return fmt.Errorf("sync request failed: %w", err)
			}
			defer resp.Body.Close()
			body, err := io.ReadAll(resp.Body)
			if err != nil {
				return err
			}
			if resp.StatusCode == http.StatusAccepted {
				cmd.Printf("Sync of %s queued.\n", feed)
				return nil
			}
			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("sync failed: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
			}

			var payload struct {
				Results []feedsync.Result `json:"results"`
			}
			if err := json.Unmarshal(body, &payload); err != nil {
				return fmt.Errorf("decode sync response: %w", err)
			}
			for _, r := range payload.Results {
				if r.Error != "" {
					cmd.Printf("%-10s failed: %s\n", r.Feed, r.Error)
					continue
				}
				cmd.Printf("%-10s applied=%d skipped=%d in %dms\n", r.Feed, r.Report.Applied, r.Report.Skipped, r.DurationMs)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&async, "async", false, "Queue the sync and return immediately")
	return cmd
}
