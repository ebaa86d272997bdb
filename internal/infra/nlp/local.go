package nlp

import (
	"context"
	"sort"
	"strings"

	"github.com/yanqian/support-expert/internal/domain/catalog"
)

// Gazetteer tags known words as entities. Each configured phrase is matched
// as a whole-term sequence, case-insensitively.
type Gazetteer struct {
	phrases []gazetteerPhrase
}

type gazetteerPhrase struct {
	terms []string
	label string
}

// NewGazetteer builds an extractor from word lists keyed by entity label.
func NewGazetteer(vocab map[string][]string) *Gazetteer {
	labels := make([]string, 0, len(vocab))
	for label := range vocab {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	g := &Gazetteer{}
	for _, label := range labels {
		for _, word := range vocab[label] {
			terms := catalog.Terms(word)
			if len(terms) == 0 {
				continue
			}
			g.phrases = append(g.phrases, gazetteerPhrase{terms: terms, label: label})
		}
	}
	return g
}

// Extract implements catalog.EntityExtractor. Entities come back in the order
// they occur in text.
func (g *Gazetteer) Extract(_ context.Context, text string) ([]catalog.Entity, error) {
	tokens := catalog.Terms(text)
	var out []catalog.Entity
	for i := range tokens {
		for _, phrase := range g.phrases {
			if hasPrefix(tokens[i:], phrase.terms) {
				out = append(out, catalog.Entity{
					Text:  strings.Join(tokens[i:i+len(phrase.terms)], " "),
					Label: phrase.label,
				})
			}
		}
	}
	return out, nil
}

func hasPrefix(tokens, terms []string) bool {
	if len(tokens) < len(terms) {
		return false
	}
	for i, term := range terms {
		if tokens[i] != term {
			return false
		}
	}
	return true
}

// TokenLemmatizer returns lowercased tokens unchanged. It stands in for a
// real lemmatizer when no model server is configured.
type TokenLemmatizer struct{}

// Lemmatize implements rules.Lemmatizer.
func (TokenLemmatizer) Lemmatize(_ context.Context, text string) ([]string, error) {
	return strings.Fields(strings.ToLower(text)), nil
}
