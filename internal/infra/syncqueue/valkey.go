package syncqueue

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/support-expert/internal/domain/feedsync"
)

// drainBatch bounds how many queued triggers are coalesced per round.
const drainBatch = 32

type triggerEnvelope struct {
	Feed       feedsync.Feed `json:"feed"`
	EnqueuedAt time.Time     `json:"enqueuedAt"`
}

// ValkeyQueue persists triggers in a Valkey list so any replica can run them.
// Triggers that pile up while a sync runs are coalesced.
type ValkeyQueue struct {
	client      valkey.Client
	queueKey    string
	handler     Handler
	logger      *slog.Logger
	pollTimeout time.Duration

	ctx      context.Context
	cancel   context.CancelFunc
	done     chan struct{}
	stopOnce sync.Once
}

// NewValkeyQueue constructs a Valkey-backed queue.
func NewValkeyQueue(client valkey.Client, queueKey string, logger *slog.Logger) *ValkeyQueue {
	if queueKey == "" {
		queueKey = "feedsync:triggers"
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &ValkeyQueue{
		client:      client,
		queueKey:    queueKey,
		logger:      logger.With("component", "syncqueue.valkey"),
		pollTimeout: 5 * time.Second,
		ctx:         ctx,
		cancel:      cancel,
		done:        make(chan struct{}),
	}
}

// SetHandler starts the consumer. It must be called at most once.
func (q *ValkeyQueue) SetHandler(handler Handler) {
	q.handler = handler
	if handler == nil {
		close(q.done)
		return
	}
	go q.consume()
}

// Enqueue pushes a trigger onto the queue.
func (q *ValkeyQueue) Enqueue(ctx context.Context, feed feedsync.Feed) error {
	encoded, err := json.Marshal(triggerEnvelope{Feed: feed, EnqueuedAt: time.Now().UTC()})
	if err != nil {
		return err
	}
	return q.client.Do(ctx, q.client.B().Lpush().Key(q.queueKey).Element(string(encoded)).Build()).Error()
}

// Close stops the consumer and waits for an in-flight sync to finish.
func (q *ValkeyQueue) Close() {
	q.stopOnce.Do(func() {
		q.cancel()
		if q.handler != nil {
			<-q.done
		}
	})
}

func (q *ValkeyQueue) consume() {
	defer close(q.done)
	for q.ctx.Err() == nil {
		first, err := q.client.Do(q.ctx, q.client.B().Brpop().Key(q.queueKey).Timeout(q.pollTimeout.Seconds()).Build()).AsStrSlice()
		if err != nil {
			if q.ctx.Err() != nil {
				return
			}
			if !valkey.IsValkeyNil(err) {
				q.logger.Warn("valkey queue pop failed", "error", err)
				time.Sleep(time.Second)
			}
			continue
		}
		if len(first) < 2 {
			continue
		}
		payloads := []string{first[1]}
		rest, err := q.client.Do(q.ctx, q.client.B().Rpop().Key(q.queueKey).Count(drainBatch).Build()).AsStrSlice()
		if err != nil && !valkey.IsValkeyNil(err) {
			q.logger.Warn("valkey queue drain failed", "error", err)
		}
		payloads = append(payloads, rest...)

		for _, feed := range q.coalesce(payloads) {
			q.handler(q.ctx, feed)
		}
	}
}

// coalesce decodes payloads into distinct feeds in arrival order. FeedAll
// subsumes everything else.
func (q *ValkeyQueue) coalesce(payloads []string) []feedsync.Feed {
	seen := make(map[feedsync.Feed]bool, len(payloads))
	var feeds []feedsync.Feed
	for _, raw := range payloads {
		var trigger triggerEnvelope
		if err := json.Unmarshal([]byte(raw), &trigger); err != nil {
			q.logger.Warn("valkey queue payload dropped", "error", err)
			continue
		}
		feed, err := feedsync.ParseFeed(string(trigger.Feed))
		if err != nil {
			q.logger.Warn("valkey queue payload dropped", "error", err)
			continue
		}
		if feed == feedsync.FeedAll {
			return []feedsync.Feed{feedsync.FeedAll}
		}
		if !seen[feed] {
			seen[feed] = true
			feeds = append(feeds, feed)
		}
		q.logger.Debug("sync trigger received", "feed", feed, "queuedFor", time.Since(trigger.EnqueuedAt))
	}
	return feeds
}

var _ HandlerQueue = (*ValkeyQueue)(nil)
