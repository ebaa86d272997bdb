package qacache

import "context"

// Repository stores question embeddings and answers.
type Repository interface {
	// Nearest returns the closest record by squared Euclidean distance.
	Nearest(ctx context.Context, embedding []float32) (Match, bool, error)
	// Append stores a record whose ID is the current record count. The count
	// and the insert happen under one write lock.
	Append(ctx context.Context, question, answer string, embedding []float32) (Record, error)
	// Replace swaps every record for records in one step, numbering them from
	// 0 in order. On error the previous records are kept.
	Replace(ctx context.Context, records []Record) ([]Record, error)
	Count(ctx context.Context) (int, error)
}

// AnswerStore serves answers for exact (lowercased) question text.
type AnswerStore interface {
	Get(ctx context.Context, question string) (Entry, bool, error)
	Save(ctx context.Context, entry Entry) error
	Clear(ctx context.Context) error
}

// Embedder turns text into fixed-length vectors. It must be deterministic and
// the same function must serve inserts and lookups.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}
