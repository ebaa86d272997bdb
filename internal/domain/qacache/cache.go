// Package qacache answers repeated questions from previously stored answers.
package qacache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/yanqian/support-expert/internal/domain/dataset"
	apperrors "github.com/yanqian/support-expert/pkg/errors"
)

// Cache is the semantic question/answer cache.
type Cache struct {
	repo     Repository
	store    AnswerStore
	embedder Embedder
	logger   *slog.Logger

	// rebuildMu keeps Insert from interleaving with a rebuild.
	rebuildMu sync.RWMutex
}

// NewCache wires the cache.
func NewCache(repo Repository, store AnswerStore, embedder Embedder, logger *slog.Logger) *Cache {
	return &Cache{
		repo:     repo,
		store:    store,
		embedder: embedder,
		logger:   logger.With("component", "qacache.cache"),
	}
}

// Lookup returns the stored answer for a near-duplicate question.
func (c *Cache) Lookup(ctx context.Context, question string) (Match, bool, error) {
	normalized := normalizeQuestion(question)
	if normalized == "" {
		return Match{}, false, apperrors.Wrap(apperrors.CodeInvalidInput, "question cannot be empty", nil)
	}

	entry, ok, err := c.store.Get(ctx, normalized)
	if err != nil {
		c.logger.Warn("exact answer lookup failed", "error", err)
	} else if ok {
		return Match{Record: Record{ID: entry.ID, Question: entry.Question, Answer: entry.Answer}}, true, nil
	}

	embedding, err := c.embedOne(ctx, normalized)
	if err != nil {
		return Match{}, false, err
	}
	match, found, err := c.repo.Nearest(ctx, embedding)
	if err != nil {
		return Match{}, false, apperrors.Wrap(apperrors.CodeStorage, "nearest question lookup failed", err)
	}
	if !found || match.Distance >= MatchThreshold {
		return Match{}, false, nil
	}
	return match, true, nil
}

// Insert stores a new question/answer pair.
func (c *Cache) Insert(ctx context.Context, question, answer string) (Record, error) {
	normalized := normalizeQuestion(question)
	if normalized == "" || strings.TrimSpace(answer) == "" {
		return Record{}, apperrors.Wrap(apperrors.CodeInvalidInput, "question and answer cannot be empty", nil)
	}
	embedding, err := c.embedOne(ctx, normalized)
	if err != nil {
		return Record{}, err
	}

	c.rebuildMu.RLock()
	defer c.rebuildMu.RUnlock()
	return c.appendRecord(ctx, normalized, answer, embedding)
}

// Rebuild replaces the cache contents with pairs. IDs restart at 0. Pairs with
// a blank question or answer are skipped and reported; embedding or storage
// failures abort the rebuild.
func (c *Cache) Rebuild(ctx context.Context, pairs []Pair) (dataset.Report, error) {
	var (
		report    dataset.Report
		questions []string
		answers   []string
	)
	for i, pair := range pairs {
		question := normalizeQuestion(pair.Question)
		switch {
		case strings.TrimSpace(question) == "":
			report.Reject(i, "question is blank")
			continue
		case strings.TrimSpace(pair.Answer) == "":
			report.Reject(i, "answer is missing")
			continue
		}
		questions = append(questions, question)
		answers = append(answers, pair.Answer)
		report.Accept()
	}

	embeddings, err := c.embedMany(ctx, questions)
	if err != nil {
		return report, err
	}
	records := make([]Record, len(questions))
	for i := range questions {
		records[i] = Record{Question: questions[i], Answer: answers[i], Embedding: embeddings[i]}
	}

	c.rebuildMu.Lock()
	defer c.rebuildMu.Unlock()
	// Saves never overwrite, so the store is emptied before the reload.
	if err := c.store.Clear(ctx); err != nil {
		return report, apperrors.Wrap(apperrors.CodeStorage, "clear exact answer store failed", err)
	}
	stored, err := c.repo.Replace(ctx, records)
	if err != nil {
		return report, apperrors.Wrap(apperrors.CodeStorage, "replace question repository failed", err)
	}
	for _, record := range stored {
		c.saveEntry(ctx, record)
	}
	c.logger.Info("qa cache rebuilt", "records", len(stored), "skipped", report.Skipped)
	return report, nil
}

// Count returns the number of stored records.
func (c *Cache) Count(ctx context.Context) (int, error) {
	n, err := c.repo.Count(ctx)
	if err != nil {
		return 0, apperrors.Wrap(apperrors.CodeStorage, "count questions failed", err)
	}
	return n, nil
}

func (c *Cache) appendRecord(ctx context.Context, question, answer string, embedding []float32) (Record, error) {
	record, err := c.repo.Append(ctx, question, answer, embedding)
	if err != nil {
		return Record{}, apperrors.Wrap(apperrors.CodeStorage, "store question failed", err)
	}
	c.saveEntry(ctx, record)
	return record, nil
}

func (c *Cache) saveEntry(ctx context.Context, record Record) {
	entry := Entry{ID: record.ID, Question: record.Question, Answer: record.Answer}
	if err := c.store.Save(ctx, entry); err != nil {
		c.logger.Warn("exact answer save failed", "id", record.ID, "error", err)
	}
}

func (c *Cache) embedOne(ctx context.Context, text string) ([]float32, error) {
	vectors, err := c.embedMany(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (c *Cache) embedMany(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	vectors, err := c.embedder.Embed(ctx, texts)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeEmbedding, "embedding failed", err)
	}
	if len(vectors) != len(texts) {
		return nil, apperrors.Wrap(apperrors.CodeEmbedding, "embedding failed",
			fmt.Errorf("expected %d vectors, got %d", len(texts), len(vectors)))
	}
	out := make([][]float32, len(vectors))
	for i, v := range vectors {
		if len(v) == 0 {
			return nil, apperrors.Wrap(apperrors.CodeEmbedding, "embedding failed", errors.New("embedding response empty"))
		}
		out[i] = Normalize(v)
	}
	return out, nil
}
