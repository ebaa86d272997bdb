package feedsync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/yanqian/support-expert/internal/domain/dataset"
	apperrors "github.com/yanqian/support-expert/pkg/errors"
	"github.com/yanqian/support-expert/pkg/workerpool"
)

// Targets are the stores a sync rebuilds.
type Targets struct {
	Products  ProductRebuilder
	Rules     TableRebuilder
	Stopwords TableRebuilder
	QA        QARebuilder
}

// Syncer runs feed syncs. Syncs of the same feed never overlap; different
// feeds run in parallel on the worker pool.
type Syncer struct {
	source  Source
	targets Targets
	pool    *workerpool.Pool
	logger  *slog.Logger

	locks map[Feed]*sync.Mutex
}

// NewSyncer wires a syncer.
func NewSyncer(source Source, targets Targets, pool *workerpool.Pool, logger *slog.Logger) *Syncer {
	locks := make(map[Feed]*sync.Mutex)
	for _, feed := range Feeds() {
		locks[feed] = &sync.Mutex{}
	}
	return &Syncer{
		source:  source,
		targets: targets,
		pool:    pool,
		logger:  logger.With("component", "feedsync.syncer"),
		locks:   locks,
	}
}

// Sync refreshes feed, or every feed for FeedAll. Per-feed failures are
// recorded in the results and joined into the returned error.
func (s *Syncer) Sync(ctx context.Context, feed Feed) ([]Result, error) {
	if feed != FeedAll {
		if _, ok := s.locks[feed]; !ok {
			return nil, apperrors.Wrap(apperrors.CodeInvalidInput, fmt.Sprintf("unknown feed %q", feed), nil)
		}
		result, err := s.syncOne(ctx, feed)
		return []Result{result}, err
	}

	feeds := Feeds()
	results := make([]Result, len(feeds))
	jobs := make([]func(context.Context) error, len(feeds))
	for i, f := range feeds {
		i, f := i, f
		jobs[i] = func(ctx context.Context) error {
			var err error
			results[i], err = s.syncOne(ctx, f)
			return err
		}
	}
	errs := s.pool.Run(ctx, jobs...)
	for i, err := range errs {
		if err != nil && results[i].Error == "" {
			results[i] = Result{Feed: feeds[i], Error: err.Error()}
		}
	}
	if err := errors.Join(errs...); err != nil {
		return results, apperrors.Wrap(apperrors.CodeSync, "feed sync failed", err)
	}
	return results, nil
}

// Run syncs every feed each interval until ctx ends. When immediate is set
// the first sync happens before the first tick.
func (s *Syncer) Run(ctx context.Context, interval time.Duration, immediate bool) {
	if immediate {
		s.syncAllLogged(ctx)
	}
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.syncAllLogged(ctx)
		}
	}
}

func (s *Syncer) syncAllLogged(ctx context.Context) {
	if _, err := s.Sync(ctx, FeedAll); err != nil {
		s.logger.Warn("scheduled sync failed", "error", err)
	}
}

func (s *Syncer) syncOne(ctx context.Context, feed Feed) (Result, error) {
	lock := s.locks[feed]
	lock.Lock()
	defer lock.Unlock()

	start := time.Now()
	result := Result{Feed: feed}
	report, err := s.apply(ctx, feed)
	result.Report = report
	result.DurationMs = time.Since(start).Milliseconds()
	if err != nil {
		result.Error = err.Error()
		s.logger.Error("feed sync failed", "feed", feed, "error", err, "durationMs", result.DurationMs)
		return result, err
	}
	if !report.Clean() {
		s.logger.Warn("feed rows skipped", "feed", feed, "issues", report.Summary())
	}
	s.logger.Info("feed synced", "feed", feed, "applied", report.Applied, "skipped", report.Skipped, "durationMs", result.DurationMs)
	return result, nil
}

func (s *Syncer) apply(ctx context.Context, feed Feed) (dataset.Report, error) {
	rows, err := s.source.Fetch(ctx, feed)
	if err != nil {
		return dataset.Report{}, apperrors.Wrap(apperrors.CodeSync, fmt.Sprintf("fetch %s feed failed", feed), err)
	}
	switch feed {
	case FeedProducts:
		return s.targets.Products.Rebuild(ctx, rows)
	case FeedRules:
		return s.targets.Rules.Rebuild(rows), nil
	case FeedStopwords:
		return s.targets.Stopwords.Rebuild(rows), nil
	case FeedQA:
		return s.targets.QA.Rebuild(ctx, QAPairs(rows))
	default:
		return dataset.Report{}, apperrors.Wrap(apperrors.CodeInvalidInput, fmt.Sprintf("unknown feed %q", feed), nil)
	}
}
