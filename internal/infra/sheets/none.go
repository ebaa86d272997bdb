package sheets

import (
	"context"
	"errors"

	"github.com/yanqian/support-expert/internal/domain/feedsync"
)

// ErrNoSource is returned when feeds are not configured.
var ErrNoSource = errors.New("no feed source configured")

// NoSource rejects every fetch. Stores keep whatever they already hold.
type NoSource struct{}

// Fetch implements feedsync.Source.
func (NoSource) Fetch(context.Context, feedsync.Feed) ([][]string, error) {
	return nil, ErrNoSource
}
