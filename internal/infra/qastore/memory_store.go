package qastore

import (
	"context"
	"sync"

	"github.com/yanqian/support-expert/internal/domain/qacache"
)

// MemoryStore is an in-memory exact answer store for tests/dev.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]qacache.Entry
}

// NewMemoryStore constructs a store backed by process memory.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]qacache.Entry)}
}

// Get implements qacache.AnswerStore.
func (s *MemoryStore) Get(_ context.Context, question string) (qacache.Entry, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.entries[question]
	return entry, ok, nil
}

// Save implements qacache.AnswerStore. The first entry for a text is kept so
// it agrees with the repository, which resolves distance ties by insertion order.
func (s *MemoryStore) Save(_ context.Context, entry qacache.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.entries[entry.Question]; exists {
		return nil
	}
	s.entries[entry.Question] = entry
	return nil
}

// Clear implements qacache.AnswerStore.
func (s *MemoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]qacache.Entry)
	return nil
}

var _ qacache.AnswerStore = (*MemoryStore)(nil)
