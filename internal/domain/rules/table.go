// Package rules maps question lemmas to canned store context.
package rules

import (
	"context"
	"log/slog"
	"strings"

	"github.com/yanqian/support-expert/internal/domain/dataset"
	apperrors "github.com/yanqian/support-expert/pkg/errors"
	"github.com/yanqian/support-expert/pkg/snapshot"
)

// triggerSeparator splits the trigger column of a rule row.
const triggerSeparator = ", "

// Lemmatizer reduces text to the base forms of its tokens.
type Lemmatizer interface {
	Lemmatize(ctx context.Context, text string) ([]string, error)
}

// Table resolves store context for a question.
type Table struct {
	entries    *snapshot.Holder[map[string]string]
	lemmatizer Lemmatizer
	logger     *slog.Logger
}

// NewTable constructs an empty rule table.
func NewTable(lemmatizer Lemmatizer, logger *slog.Logger) *Table {
	return &Table{
		entries:    snapshot.New(map[string]string{}),
		lemmatizer: lemmatizer,
		logger:     logger.With("component", "rules.table"),
	}
}

// LookupContext returns the distinct rule values triggered by the question's
// lemmas, newline joined in first-occurrence order.
func (t *Table) LookupContext(ctx context.Context, question string) (string, error) {
	if question == "" {
		return "", apperrors.Wrap(apperrors.CodeInvalidInput, "question cannot be empty", nil)
	}
	entries := t.entries.Get()
	if len(entries) == 0 {
		return "", nil
	}
	lemmas, err := t.lemmatizer.Lemmatize(ctx, stripPunctuation(question))
	if err != nil {
		return "", apperrors.Wrap(apperrors.CodeNLP, "lemmatization failed", err)
	}
	var (
		seen   = make(map[string]struct{}, len(lemmas))
		values []string
	)
	for _, lemma := range lemmas {
		value := entries[lemma]
		if value == "" {
			continue
		}
		if _, dup := seen[value]; dup {
			continue
		}
		seen[value] = struct{}{}
		values = append(values, value)
	}
	return strings.Join(values, "\n"), nil
}

// Rebuild replaces the table. Column 0 holds ", " separated trigger words and
// column 1 the context value; later rows win for shared triggers.
func (t *Table) Rebuild(rows [][]string) dataset.Report {
	var (
		report  dataset.Report
		entries = make(map[string]string, len(rows))
	)
	for i, row := range rows {
		if len(row) < 2 {
			report.Reject(i, "expected 2 columns, got %d", len(row))
			continue
		}
		triggers, value := row[0], row[1]
		if strings.TrimSpace(triggers) == "" {
			report.Reject(i, "trigger column is blank")
			continue
		}
		for _, word := range strings.Split(triggers, triggerSeparator) {
			entries[word] = value
		}
		report.Accept()
	}
	version := t.entries.Replace(entries)
	t.logger.Info("rules rebuilt", "triggers", len(entries), "skipped", report.Skipped, "version", version)
	return report
}

// Len returns the number of trigger words.
func (t *Table) Len() int {
	return len(t.entries.Get())
}

func stripPunctuation(text string) string {
	return strings.Map(func(r rune) rune {
		if r < 128 && strings.ContainsRune(asciiPunctuation, r) {
			return -1
		}
		return r
	}, text)
}

const asciiPunctuation = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"
