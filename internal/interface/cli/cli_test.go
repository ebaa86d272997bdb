package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/support-expert/internal/domain/auth"
	"github.com/yanqian/support-expert/internal/domain/dataset"
	"github.com/yanqian/support-expert/internal/domain/feedsync"
)

func newTestAuth() auth.Service {
	return auth.NewService(auth.Config{Secret: "cli-secret", TokenTTL: time.Hour}, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func execute(t *testing.T, deps Dependencies, args ...string) (string, error) {
	t.Helper()
	root := NewRootCommand(deps)
	out := new(bytes.Buffer)
	root.SetOut(out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestTokenCommandPrintsValidToken(t *testing.T) {
	authSvc := newTestAuth()
	out, err := execute(t, Dependencies{Auth: authSvc}, "token", "--subject", "olga")
	require.NoError(t, err)

	claims, err := authSvc.ValidateToken(context.Background(), strings.TrimSpace(out))
	require.NoError(t, err)
	require.Equal(t, "olga", claims.Subject)
}

func TestSyncCommandPrintsResults(t *testing.T) {
	authSvc := newTestAuth()
	var gotPath, gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"results": []feedsync.Result{
				{Feed: feedsync.FeedRules, Report: dataset.Report{Total: 3, Applied: 2, Skipped: 1}, DurationMs: 4},
			},
		})
	}))
	defer server.Close()

	out, err := execute(t, Dependencies{Auth: authSvc, ServerURL: server.URL}, "sync", "rules")
	require.NoError(t, err)
	require.Equal(t, "/api/v1/admin/sync/rules", gotPath)
	require.True(t, strings.HasPrefix(gotAuth, "Bearer "))
	require.Contains(t, out, "applied=2 skipped=1")
}

func TestSyncCommandAsync(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	out, err := execute(t, Dependencies{Auth: newTestAuth(), ServerURL: server.URL}, "sync", "--async")
	require.NoError(t, err)
	require.Equal(t, "async=true", gotQuery)
	require.Contains(t, out, "Sync of all queued.")
}

func TestSyncCommandReportsServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"code":"sync_error"}}`, http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := execute(t, Dependencies{Auth: newTestAuth(), ServerURL: server.URL}, "sync", "qa")
	require.ErrorContains(t, err, "status 500")
}

func TestSyncCommandRejectsUnknownFeed(t *testing.T) {
	_, err := execute(t, Dependencies{Auth: newTestAuth(), ServerURL: "http://127.0.0.1:0"}, "sync", "orders")
	require.ErrorContains(t, err, "unknown feed")
}

func TestHashPasswordFromStdin(t *testing.T) {
	root := NewRootCommand(Dependencies{Auth: newTestAuth()})
	out := new(bytes.Buffer)
	root.SetOut(out)
	root.SetIn(strings.NewReader("pa55\n"))
	root.SetArgs([]string{"hash-password"})
	require.NoError(t, root.ExecuteContext(context.Background()))

	hash := strings.TrimSpace(out.String())
	svc := auth.NewService(auth.Config{Secret: "s", Admins: map[string]string{"olga": hash}}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	_, err := svc.Login(context.Background(), auth.LoginRequest{Username: "olga", Password: "pa55"})
	require.NoError(t, err)
}
