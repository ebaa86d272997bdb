package qastore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/support-expert/internal/domain/qacache"
)

func TestMemoryStoreKeepsFirstEntry(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.Save(ctx, qacache.Entry{ID: "0", Question: "q", Answer: "first"}))
	require.NoError(t, store.Save(ctx, qacache.Entry{ID: "1", Question: "q", Answer: "second"}))

	entry, ok, err := store.Get(ctx, "q")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "first", entry.Answer)

	require.NoError(t, store.Clear(ctx))
	_, ok, err = store.Get(ctx, "q")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestValkeyKeysAreNamespaced(t *testing.T) {
	store := NewValkeyStore(nil, "")
	key := store.entryKey("где мой заказ")
	require.Contains(t, key, "qa:exact:")
	require.Len(t, key, len("qa:exact:")+64)
	require.Equal(t, "qa:exact:*", store.pattern())
}
