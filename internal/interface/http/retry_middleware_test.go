package http

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/support-expert/internal/infra/config"
)

func TestWithRetry_ReplaysUpstreamFailures(t *testing.T) {
	var bodies []string
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		bodies = append(bodies, string(data))
		if len(bodies) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = io.WriteString(w, "ok")
	})
	handler := withRetry(inner, config.RetryConfig{Enabled: true, MaxAttempts: 3, BaseBackoff: time.Millisecond}, newTestLogger())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/answers", strings.NewReader(`{"question":"q"}`)))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "ok", rec.Body.String())
	require.Equal(t, []string{`{"question":"q"}`, `{"question":"q"}`}, bodies)
	require.Equal(t, "2", rec.Header().Get(retryAttemptHeader))
}

func TestWithRetry_SkipsExcludedAndClientErrors(t *testing.T) {
	calls := 0
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if r.URL.Path == "/api/v1/answers" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusBadGateway)
	})
	handler := withRetry(inner, config.RetryConfig{
		Enabled:     true,
		MaxAttempts: 3,
		BaseBackoff: time.Millisecond,
		Exclude:     []string{"/api/v1/admin/*"},
	}, newTestLogger())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/admin/sync/all", nil))
	require.Equal(t, http.StatusBadGateway, rec.Code)
	require.Equal(t, 1, calls)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/answers", strings.NewReader("{}")))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, 2, calls)
}

func TestWithRetry_GivesUpAfterMaxAttempts(t *testing.T) {
	calls := 0
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusGatewayTimeout)
	})
	handler := withRetry(inner, config.RetryConfig{Enabled: true, MaxAttempts: 2, BaseBackoff: time.Millisecond}, newTestLogger())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/answers", strings.NewReader("{}")))
	require.Equal(t, http.StatusGatewayTimeout, rec.Code)
	require.Equal(t, 2, calls)
	require.Equal(t, "2", rec.Header().Get(retryAttemptHeader))
}
