// Package nlp talks to the NER/lemmatizer model server and provides local
// fallbacks for development.
package nlp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/yanqian/support-expert/internal/domain/catalog"
)

// Client calls an HTTP model server exposing /entities and /lemmas.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient builds a model server client.
func NewClient(baseURL string, timeout time.Duration) (*Client, error) {
	url := strings.TrimSpace(baseURL)
	if url == "" {
		return nil, errors.New("nlp base url cannot be empty")
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(url, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

type textRequest struct {
	Text string `json:"text"`
}

type entitiesResponse struct {
	Entities []catalog.Entity `json:"entities"`
}

type lemmasResponse struct {
	Lemmas []string `json:"lemmas"`
}

// Extract implements catalog.EntityExtractor.
func (c *Client) Extract(ctx context.Context, text string) ([]catalog.Entity, error) {
	var out entitiesResponse
	if err := c.post(ctx, "/entities", text, &out); err != nil {
		return nil, err
	}
	return out.Entities, nil
}

// Lemmatize implements rules.Lemmatizer.
func (c *Client) Lemmatize(ctx context.Context, text string) ([]string, error) {
	var out lemmasResponse
	if err := c.post(ctx, "/lemmas", text, &out); err != nil {
		return nil, err
	}
	return out.Lemmas, nil
}

func (c *Client) post(ctx context.Context, path, text string, out any) error {
	payload, err := json.Marshal(textRequest{Text: text})
	if err != nil {
		return fmt.Errorf("encode nlp request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build nlp request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("nlp request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return fmt.Errorf("nlp request error: path=%s status=%d body=%s", path, resp.StatusCode, string(body))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode nlp response: %w", err)
	}
	return nil
}
