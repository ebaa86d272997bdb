package nlp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/support-expert/internal/domain/catalog"
)

func TestClientExtractAndLemmatize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req textRequest
		if r.Method != http.MethodPost || json.NewDecoder(r.Body).Decode(&req) != nil || req.Text != "красные кроссовки" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/entities":
			_, _ = w.Write([]byte(`{"entities":[{"text":"кроссовки","label":"Product"},{"text":"красные","label":"description"}]}`))
		case "/lemmas":
			_, _ = w.Write([]byte(`{"lemmas":["красный","кроссовок"]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL+"/", time.Second)
	require.NoError(t, err)

	entities, err := client.Extract(context.Background(), "красные кроссовки")
	require.NoError(t, err)
	require.Equal(t, []catalog.Entity{
		{Text: "кроссовки", Label: catalog.LabelProduct},
		{Text: "красные", Label: catalog.LabelDescription},
	}, entities)

	lemmas, err := client.Lemmatize(context.Background(), "красные кроссовки")
	require.NoError(t, err)
	require.Equal(t, []string{"красный", "кроссовок"}, lemmas)
}

func TestClientSurfacesServerErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "model not loaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL, time.Second)
	require.NoError(t, err)

	_, err = client.Extract(context.Background(), "text")
	require.ErrorContains(t, err, "status=503")
}

func TestNewClientRequiresURL(t *testing.T) {
	_, err := NewClient(" ", 0)
	require.Error(t, err)
}

func TestGazetteerFindsPhrasesInOrder(t *testing.T) {
	g := NewGazetteer(map[string][]string{
		catalog.LabelProduct:     {"кроссовки", "зимняя куртка"},
		catalog.LabelDescription: {"красные"},
	})

	entities, err := g.Extract(context.Background(), "Есть Красные кроссовки и зимняя куртка?")
	require.NoError(t, err)
	require.Equal(t, []catalog.Entity{
		{Text: "красные", Label: catalog.LabelDescription},
		{Text: "кроссовки", Label: catalog.LabelProduct},
		{Text: "зимняя куртка", Label: catalog.LabelProduct},
	}, entities)
}

func TestTokenLemmatizerLowercases(t *testing.T) {
	lemmas, err := TokenLemmatizer{}.Lemmatize(context.Background(), "Где  Доставка")
	require.NoError(t, err)
	require.Equal(t, []string{"где", "доставка"}, lemmas)
}
