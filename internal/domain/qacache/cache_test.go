package qacache_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/support-expert/internal/domain/qacache"
	"github.com/yanqian/support-expert/internal/infra/qarepo"
	"github.com/yanqian/support-expert/internal/infra/qastore"
	apperrors "github.com/yanqian/support-expert/pkg/errors"
)

// textEmbedder gives every distinct text its own one-hot direction, so
// identical texts have distance 0 and different texts distance 2.
type textEmbedder struct {
	calls int
	err   error
	index map[string]int
}

func (e *textEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	e.calls++
	if e.err != nil {
		return nil, e.err
	}
	out := make([][]float32, len(texts))
	if e.index == nil {
		e.index = make(map[string]int)
	}
	for i, text := range texts {
		slot, ok := e.index[text]
		if !ok {
			slot = len(e.index)
			e.index[text] = slot
		}
		vec := make([]float32, 64)
		vec[slot%64] = 3
		out[i] = vec
	}
	return out, nil
}

type failingStore struct{ *qastore.MemoryStore }

func (failingStore) Get(context.Context, string) (qacache.Entry, bool, error) {
	return qacache.Entry{}, false, errors.New("store down")
}

type unclearableStore struct{ *qastore.MemoryStore }

func (unclearableStore) Clear(context.Context) error {
	return errors.New("valkey timeout")
}

// brokenRepository fails every Replace.
type brokenRepository struct{ *qarepo.MemoryRepository }

func (brokenRepository) Replace(context.Context, []qacache.Record) ([]qacache.Record, error) {
	return nil, errors.New("connection reset")
}

func newCache(embedder qacache.Embedder) (*qacache.Cache, *qarepo.MemoryRepository) {
	repo := qarepo.NewMemoryRepository()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return qacache.NewCache(repo, qastore.NewMemoryStore(), embedder, logger), repo
}

func TestLookupOnEmptyCacheMisses(t *testing.T) {
	cache, _ := newCache(&textEmbedder{})

	_, ok, err := cache.Lookup(context.Background(), "where is my order")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestInsertThenLookupIsIgnoringCase(t *testing.T) {
	ctx := context.Background()
	cache, _ := newCache(&textEmbedder{})

	record, err := cache.Insert(ctx, "где мой заказ", "Проверьте статус в личном кабинете")
	require.NoError(t, err)
	require.Equal(t, "0", record.ID)

	match, ok, err := cache.Lookup(ctx, "Где мой заказ")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "Проверьте статус в личном кабинете", match.Record.Answer)

	_, ok, err = cache.Lookup(ctx, "как вернуть товар")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestLookupFallsBackToVectorsWhenStoreFails(t *testing.T) {
	ctx := context.Background()
	repo := qarepo.NewMemoryRepository()
	embedder := &textEmbedder{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := failingStore{MemoryStore: qastore.NewMemoryStore()}
	cache := qacache.NewCache(repo, store, embedder, logger)

	_, err := cache.Insert(ctx, "delivery time", "Two days")
	require.NoError(t, err)

	match, ok, err := cache.Lookup(ctx, "Delivery time")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "Two days", match.Record.Answer)
	require.Less(t, match.Distance, qacache.MatchThreshold)
}

func TestExactHitSkipsEmbedding(t *testing.T) {
	ctx := context.Background()
	embedder := &textEmbedder{}
	cache, _ := newCache(embedder)

	_, err := cache.Insert(ctx, "hello", "hi")
	require.NoError(t, err)
	calls := embedder.calls

	_, ok, err := cache.Lookup(ctx, "HELLO")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, calls, embedder.calls)
}

func TestInsertAssignsSequentialIDs(t *testing.T) {
	ctx := context.Background()
	cache, _ := newCache(&textEmbedder{})

	for i, q := range []string{"a", "b", "c"} {
		record, err := cache.Insert(ctx, q, "answer")
		require.NoError(t, err)
		require.Equal(t, []string{"0", "1", "2"}[i], record.ID)
	}
	count, err := cache.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, 3, count)
}

func TestInsertRejectsBlankInput(t *testing.T) {
	cache, _ := newCache(&textEmbedder{})

	_, err := cache.Insert(context.Background(), "", "answer")
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))
	_, err = cache.Insert(context.Background(), "question", "")
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))
}

func TestRebuildReplacesContentsAndIsIdempotent(t *testing.T) {
	ctx := context.Background()
	cache, _ := newCache(&textEmbedder{})
	_, err := cache.Insert(ctx, "stale question", "stale answer")
	require.NoError(t, err)

	pairs := []qacache.Pair{
		{Question: "Где мой заказ", Answer: "В личном кабинете"},
		{Question: "", Answer: "orphan"},
		{Question: "доставка", Answer: ""},
		{Question: "оплата", Answer: "Картой"},
	}
	for round := 0; round < 2; round++ {
		report, err := cache.Rebuild(ctx, pairs)
		require.NoError(t, err)
		require.Equal(t, 4, report.Total)
		require.Equal(t, 2, report.Applied)
		require.Equal(t, 2, report.Skipped)
		require.Equal(t, 1, report.Issues[0].Row)
		require.Equal(t, 2, report.Issues[1].Row)

		count, err := cache.Count(ctx)
		require.NoError(t, err)
		require.Equal(t, 2, count)
	}

	_, ok, err := cache.Lookup(ctx, "stale question")
	require.NoError(t, err)
	require.False(t, ok)

	match, ok, err := cache.Lookup(ctx, "ОПЛАТА")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "1", match.Record.ID)

	record, err := cache.Insert(ctx, "новый вопрос", "ответ")
	require.NoError(t, err)
	require.Equal(t, "2", record.ID)
}

func TestRebuildEmbeddingFailureLeavesCacheUntouched(t *testing.T) {
	ctx := context.Background()
	embedder := &textEmbedder{}
	cache, _ := newCache(embedder)
	_, err := cache.Insert(ctx, "kept", "yes")
	require.NoError(t, err)

	embedder.err = errors.New("provider unavailable")
	_, err = cache.Rebuild(ctx, []qacache.Pair{{Question: "new", Answer: "no"}})
	require.True(t, apperrors.IsCode(err, apperrors.CodeEmbedding))

	embedder.err = nil
	match, ok, err := cache.Lookup(ctx, "kept")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "yes", match.Record.Answer)
}

func TestLookupRejectsEmptyQuestion(t *testing.T) {
	cache, _ := newCache(&textEmbedder{})
	_, _, err := cache.Lookup(context.Background(), "")
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))
}

func TestRebuildFailsWhenExactStoreCannotBeCleared(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := unclearableStore{MemoryStore: qastore.NewMemoryStore()}
	cache := qacache.NewCache(qarepo.NewMemoryRepository(), store, &textEmbedder{}, logger)

	_, err := cache.Insert(ctx, "доставка", "old answer")
	require.NoError(t, err)

	_, err = cache.Rebuild(ctx, []qacache.Pair{{Question: "доставка", Answer: "new answer"}})
	require.True(t, apperrors.IsCode(err, apperrors.CodeStorage))

	match, ok, err := cache.Lookup(ctx, "доставка")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "old answer", match.Record.Answer)
	count, err := cache.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, count)
}

func TestRebuildServesNewAnswerForRepeatedQuestion(t *testing.T) {
	ctx := context.Background()
	cache, _ := newCache(&textEmbedder{})
	_, err := cache.Insert(ctx, "доставка", "old answer")
	require.NoError(t, err)

	_, err = cache.Rebuild(ctx, []qacache.Pair{{Question: "доставка", Answer: "new answer"}})
	require.NoError(t, err)

	match, ok, err := cache.Lookup(ctx, "Доставка")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "new answer", match.Record.Answer)
	require.Equal(t, "0", match.Record.ID)
}

func TestRebuildRepositoryFailureKeepsPreviousRecords(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	repo := brokenRepository{MemoryRepository: qarepo.NewMemoryRepository()}
	cache := qacache.NewCache(repo, qastore.NewMemoryStore(), &textEmbedder{}, logger)

	_, err := cache.Insert(ctx, "kept", "yes")
	require.NoError(t, err)

	_, err = cache.Rebuild(ctx, []qacache.Pair{
		{Question: "first", Answer: "1"},
		{Question: "second", Answer: "2"},
	})
	require.True(t, apperrors.IsCode(err, apperrors.CodeStorage))

	count, err := cache.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, count)
	match, ok, err := cache.Lookup(ctx, "kept")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "yes", match.Record.Answer)
}
