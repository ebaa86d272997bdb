package catalog

import (
	"context"
	"log/slog"
	"strings"

	"github.com/yanqian/support-expert/internal/domain/dataset"
	apperrors "github.com/yanqian/support-expert/pkg/errors"
)

// Service answers product questions from the lexical index.
type Service struct {
	index     Index
	extractor EntityExtractor
	logger    *slog.Logger
}

// NewService wires the catalog search service.
func NewService(index Index, extractor EntityExtractor, logger *slog.Logger) *Service {
	return &Service{
		index:     index,
		extractor: extractor,
		logger:    logger.With("component", "catalog.service"),
	}
}

// Search returns up to limit in-stock product contents joined by newlines.
// Questions that name no product or no description yield "" without touching
// the index.
func (s *Service) Search(ctx context.Context, question string, limit int) (string, error) {
	if question == "" {
		return "", apperrors.Wrap(apperrors.CodeInvalidInput, "question cannot be empty", nil)
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	entities, err := s.extractor.Extract(ctx, question)
	if err != nil {
		return "", apperrors.Wrap(apperrors.CodeNLP, "entity extraction failed", err)
	}
	query := Query{MinStock: 1, Limit: limit}
	for _, ent := range entities {
		terms := Terms(ent.Text)
		if len(terms) == 0 {
			continue
		}
		switch ent.Label {
		case LabelProduct:
			query.Products = append(query.Products, terms)
		case LabelDescription:
			query.Descriptions = append(query.Descriptions, terms)
		}
	}
	if len(query.Products) == 0 || len(query.Descriptions) == 0 {
		s.logger.Debug("question lacks product or description entities", "entities", len(entities))
		return "", nil
	}

	docs, err := s.index.Search(ctx, query)
	if err != nil {
		return "", apperrors.Wrap(apperrors.CodeStorage, "product search failed", err)
	}
	if len(docs) > limit {
		docs = docs[:limit]
	}
	contents := make([]string, 0, len(docs))
	for _, doc := range docs {
		contents = append(contents, doc.Content)
	}
	return strings.Join(contents, "\n"), nil
}

// Rebuild replaces the index with rows. Malformed rows are skipped and
// reported; the index is only touched once every row has been parsed.
func (s *Service) Rebuild(ctx context.Context, rows [][]string) (dataset.Report, error) {
	var report dataset.Report
	docs := make([]ProductDocument, 0, len(rows))
	for i, row := range rows {
		doc, err := ParseRow(row)
		if err != nil {
			report.Reject(i, "%v", err)
			continue
		}
		docs = append(docs, doc)
		report.Accept()
	}
	if err := s.index.Replace(ctx, docs); err != nil {
		return report, apperrors.Wrap(apperrors.CodeStorage, "product index rebuild failed", err)
	}
	s.logger.Info("product index rebuilt", "documents", len(docs), "skipped", report.Skipped)
	return report, nil
}

// Clear removes every product document.
func (s *Service) Clear(ctx context.Context) error {
	if err := s.index.Clear(ctx); err != nil {
		return apperrors.Wrap(apperrors.CodeStorage, "product index clear failed", err)
	}
	return nil
}

// Count returns the number of indexed documents.
func (s *Service) Count(ctx context.Context) (int, error) {
	n, err := s.index.Count(ctx)
	if err != nil {
		return 0, apperrors.Wrap(apperrors.CodeStorage, "count products failed", err)
	}
	return n, nil
}
