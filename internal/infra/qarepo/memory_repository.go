package qarepo

import (
	"context"
	"strconv"
	"sync"

	"github.com/yanqian/support-expert/internal/domain/qacache"
)

// MemoryRepository is an in-memory qacache.Repository used for tests/dev.
type MemoryRepository struct {
	mu      sync.RWMutex
	records []qacache.Record
}

// NewMemoryRepository constructs a repo backed by memory.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

// Nearest implements qacache.Repository with a linear scan.
func (r *MemoryRepository) Nearest(_ context.Context, embedding []float32) (qacache.Match, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var (
		best   qacache.Match
		hasAny bool
	)
	for _, candidate := range r.records {
		dist := qacache.SquaredDistance(embedding, candidate.Embedding)
		if !hasAny || dist < best.Distance {
			hasAny = true
			best = qacache.Match{Record: candidate, Distance: dist}
		}
	}
	return best, hasAny, nil
}

// Append implements qacache.Repository.
func (r *MemoryRepository) Append(_ context.Context, question, answer string, embedding []float32) (qacache.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	record := qacache.Record{
		ID:        strconv.Itoa(len(r.records)),
		Question:  question,
		Answer:    answer,
		Embedding: append([]float32(nil), embedding...),
	}
	r.records = append(r.records, record)
	return record, nil
}

// Replace implements qacache.Repository.
func (r *MemoryRepository) Replace(_ context.Context, records []qacache.Record) ([]qacache.Record, error) {
	next := make([]qacache.Record, len(records))
	for i, record := range records {
		next[i] = qacache.Record{
			ID:        strconv.Itoa(i),
			Question:  record.Question,
			Answer:    record.Answer,
			Embedding: append([]float32(nil), record.Embedding...),
		}
	}
	r.mu.Lock()
	r.records = next
	r.mu.Unlock()
	return append([]qacache.Record(nil), next...), nil
}

// Count implements qacache.Repository.
func (r *MemoryRepository) Count(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records), nil
}

var _ qacache.Repository = (*MemoryRepository)(nil)
