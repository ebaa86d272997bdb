// Package feedsync pulls the tabular feeds and rebuilds the in-process stores.
package feedsync

import (
	"context"
	"fmt"
	"strings"

	"github.com/yanqian/support-expert/internal/domain/dataset"
	"github.com/yanqian/support-expert/internal/domain/qacache"
	apperrors "github.com/yanqian/support-expert/pkg/errors"
)

// Feed names a tabular source.
type Feed string

const (
	FeedProducts  Feed = "products"
	FeedRules     Feed = "rules"
	FeedStopwords Feed = "stopwords"
	FeedQA        Feed = "qa"
	// FeedAll expands to every feed above.
	FeedAll Feed = "all"
)

// Feeds lists the concrete feeds in sync order.
func Feeds() []Feed {
	return []Feed{FeedStopwords, FeedRules, FeedQA, FeedProducts}
}

// ParseFeed validates a feed name.
func ParseFeed(raw string) (Feed, error) {
	feed := Feed(strings.ToLower(strings.TrimSpace(raw)))
	switch feed {
	case FeedProducts, FeedRules, FeedStopwords, FeedQA, FeedAll:
		return feed, nil
	default:
		return "", apperrors.Wrap(apperrors.CodeInvalidInput, fmt.Sprintf("unknown feed %q", raw), nil)
	}
}

// Source returns the data rows of a feed, header excluded.
type Source interface {
	Fetch(ctx context.Context, feed Feed) ([][]string, error)
}

// ProductRebuilder reloads the product index.
type ProductRebuilder interface {
	Rebuild(ctx context.Context, rows [][]string) (dataset.Report, error)
}

// TableRebuilder reloads an in-memory snapshot.
type TableRebuilder interface {
	Rebuild(rows [][]string) dataset.Report
}

// QARebuilder reloads the QA cache.
type QARebuilder interface {
	Rebuild(ctx context.Context, pairs []qacache.Pair) (dataset.Report, error)
}

// TriggerQueue defers a sync to a background consumer.
type TriggerQueue interface {
	Enqueue(ctx context.Context, feed Feed) error
}

// Result summarises one feed sync.
type Result struct {
	Feed       Feed           `json:"feed"`
	Report     dataset.Report `json:"report"`
	DurationMs int64          `json:"durationMs"`
	Error      string         `json:"error,omitempty"`
}

// QAPairs converts QA feed rows to cache pairs. Short rows become pairs with
// empty fields so the cache reports them.
func QAPairs(rows [][]string) []qacache.Pair {
	pairs := make([]qacache.Pair, len(rows))
	for i, row := range rows {
		if len(row) > 0 {
			pairs[i].Question = row[0]
		}
		if len(row) > 1 {
			pairs[i].Answer = row[1]
		}
	}
	return pairs
}
