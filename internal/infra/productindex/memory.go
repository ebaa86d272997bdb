package productindex

import (
	"context"
	"sync"

	"github.com/yanqian/support-expert/internal/domain/catalog"
)

// MemoryIndex is an in-memory catalog.Index for tests/dev. Matches come back
// in load order.
type MemoryIndex struct {
	mu   sync.RWMutex
	docs []memoryDoc
}

type memoryDoc struct {
	catalog.ProductDocument
	terms map[string]struct{}
}

// NewMemoryIndex constructs an empty index.
func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{}
}

func (m *MemoryIndex) Search(_ context.Context, q catalog.Query) ([]catalog.ProductDocument, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []catalog.ProductDocument
	for _, doc := range m.docs {
		if q.Limit > 0 && len(out) >= q.Limit {
			break
		}
		if doc.InStock < q.MinStock {
			continue
		}
		if doc.matchesAny(q.Products) && doc.matchesAny(q.Descriptions) {
			out = append(out, doc.ProductDocument)
		}
	}
	return out, nil
}

func (m *MemoryIndex) Replace(_ context.Context, docs []catalog.ProductDocument) error {
	indexed := make([]memoryDoc, 0, len(docs))
	for _, doc := range docs {
		terms := make(map[string]struct{})
		for _, term := range catalog.Terms(doc.Content) {
			terms[term] = struct{}{}
		}
		indexed = append(indexed, memoryDoc{ProductDocument: doc, terms: terms})
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs = indexed
	return nil
}

func (m *MemoryIndex) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs = nil
	return nil
}

func (m *MemoryIndex) Count(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.docs), nil
}

func (d memoryDoc) matchesAny(phrases [][]string) bool {
	for _, phrase := range phrases {
		if d.matchesAll(phrase) {
			return true
		}
	}
	return false
}

func (d memoryDoc) matchesAll(terms []string) bool {
	if len(terms) == 0 {
		return false
	}
	for _, term := range terms {
		if _, ok := d.terms[term]; !ok {
			return false
		}
	}
	return true
}

var _ catalog.Index = (*MemoryIndex)(nil)
