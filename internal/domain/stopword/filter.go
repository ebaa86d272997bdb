// Package stopword blocks questions that mention configured substrings.
package stopword

import (
	"log/slog"
	"strings"

	"github.com/yanqian/support-expert/internal/domain/dataset"
	"github.com/yanqian/support-expert/pkg/snapshot"
)

// Filter holds the process-wide stopword set.
type Filter struct {
	words  *snapshot.Holder[[]string]
	logger *slog.Logger
}

// NewFilter constructs an empty filter.
func NewFilter(logger *slog.Logger) *Filter {
	return &Filter{
		words:  snapshot.New[[]string](nil),
		logger: logger.With("component", "stopword.filter"),
	}
}

// Contains reports whether any stopword occurs in text. A non-empty overrides
// list replaces the configured set for this call. Matching is case-sensitive.
func (f *Filter) Contains(text string, overrides []string) bool {
	words := overrides
	if len(words) == 0 {
		words = f.words.Get()
	}
	for _, word := range words {
		if strings.Contains(text, word) {
			return true
		}
	}
	return false
}

// Words returns the current set in source order.
func (f *Filter) Words() []string {
	return append([]string(nil), f.words.Get()...)
}

// Version identifies the current snapshot.
func (f *Filter) Version() uint64 {
	return f.words.Version()
}

// Rebuild replaces the set with every non-blank cell of rows. Rows are
// single-column in the source but extra cells are accepted.
func (f *Filter) Rebuild(rows [][]string) dataset.Report {
	var (
		report dataset.Report
		words  = make([]string, 0, len(rows))
	)
	for i, row := range rows {
		added := 0
		for _, cell := range row {
			if strings.TrimSpace(cell) == "" {
				continue
			}
			words = append(words, cell)
			added++
		}
		if added == 0 {
			report.Reject(i, "row has no stopword")
			continue
		}
		report.Accept()
	}
	version := f.words.Replace(words)
	f.logger.Info("stopwords rebuilt", "words", len(words), "skipped", report.Skipped, "version", version)
	return report
}
