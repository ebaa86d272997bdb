package qarepo

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/support-expert/internal/domain/qacache"
)

func TestMemoryRepositoryNearestOnEmpty(t *testing.T) {
	repo := NewMemoryRepository()
	_, found, err := repo.Nearest(context.Background(), []float32{1, 0})
	require.NoError(t, err)
	require.False(t, found)
}

func TestMemoryRepositoryAssignsCountIDs(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	first, err := repo.Append(ctx, "a", "A", []float32{1, 0})
	require.NoError(t, err)
	second, err := repo.Append(ctx, "b", "B", []float32{0, 1})
	require.NoError(t, err)
	require.Equal(t, "0", first.ID)
	require.Equal(t, "1", second.ID)

	match, found, err := repo.Nearest(ctx, []float32{0.1, 0.9})
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "B", match.Record.Answer)
	require.InDelta(t, 0.02, match.Distance, 1e-6)

	replaced, err := repo.Replace(ctx, nil)
	require.NoError(t, err)
	require.Empty(t, replaced)
	n, err := repo.Count(ctx)
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestMemoryRepositoryReplaceRenumbersFromZero(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	_, err := repo.Append(ctx, "old", "OLD", []float32{1, 0})
	require.NoError(t, err)

	replaced, err := repo.Replace(ctx, []qacache.Record{
		{ID: "9", Question: "x", Answer: "X", Embedding: []float32{1, 0}},
		{Question: "x", Answer: "Y", Embedding: []float32{1, 0}},
	})
	require.NoError(t, err)
	require.Equal(t, "0", replaced[0].ID)
	require.Equal(t, "1", replaced[1].ID)

	match, found, err := repo.Nearest(ctx, []float32{1, 0})
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "X", match.Record.Answer)

	next, err := repo.Append(ctx, "z", "Z", []float32{0, 1})
	require.NoError(t, err)
	require.Equal(t, "2", next.ID)
}

func TestMemoryRepositoryConcurrentAppendsAreUnique(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		ids = map[string]struct{}{}
	)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rec, err := repo.Append(ctx, "q", "a", []float32{1})
			require.NoError(t, err)
			mu.Lock()
			ids[rec.ID] = struct{}{}
			mu.Unlock()
		}()
	}
	wg.Wait()
	require.Len(t, ids, 32)
}
