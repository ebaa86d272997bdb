// Package catalog searches in-stock products mentioned in a customer question.
package catalog

import "context"

// Entity labels produced by the NER model.
const (
	LabelProduct     = "Product"
	LabelDescription = "description"
)

// DefaultLimit is the number of documents returned when the caller passes none.
const DefaultLimit = 2

// Entity is a labelled span found in a question.
type Entity struct {
	Text  string `json:"text"`
	Label string `json:"label"`
}

// EntityExtractor finds named entities in free text.
type EntityExtractor interface {
	Extract(ctx context.Context, text string) ([]Entity, error)
}

// ProductDocument is one searchable product row.
type ProductDocument struct {
	ID      string
	Title   string
	Content string
	Path    string
	InStock int
}

// Query selects documents where at least one product phrase and at least one
// description phrase occur in the content and stock is at least MinStock.
// Each phrase is a list of terms that must all be present.
type Query struct {
	Products     [][]string
	Descriptions [][]string
	MinStock     int
	Limit        int
}

// Index stores product documents for lexical search.
type Index interface {
	// Search returns matching documents in ranking order.
	Search(ctx context.Context, q Query) ([]ProductDocument, error)
	// Replace clears the index and loads docs.
	Replace(ctx context.Context, docs []ProductDocument) error
	Clear(ctx context.Context) error
	Count(ctx context.Context) (int, error)
}
