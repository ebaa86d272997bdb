package catalog

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Source column positions in a product row.
const (
	colID = iota
	colPath
	colModel
	colCategory
	colProduct
	colDescription
	colStockA
	colStockB
	colPrice
	colReserved
	colGender
	colAge
	colFeatures

	rowWidth
)

// ComposeContent renders the searchable text of a product row.
func ComposeContent(row []string) string {
	return fmt.Sprintf("number:%s; модель: %s; категория: %s; продукт: %s; цена: %s; описание: %s; пол: %s; возраст: %s особенности: %s",
		row[colID], row[colModel], row[colCategory], row[colProduct], row[colPrice],
		row[colDescription], row[colGender], row[colAge], row[colFeatures])
}

// ParseRow turns a source row into a document. Stock is the sum of the two
// stock columns.
func ParseRow(row []string) (ProductDocument, error) {
	if len(row) < rowWidth {
		return ProductDocument{}, fmt.Errorf("expected %d columns, got %d", rowWidth, len(row))
	}
	stockA, err := parseStock(row[colStockA])
	if err != nil {
		return ProductDocument{}, fmt.Errorf("stock A: %w", err)
	}
	stockB, err := parseStock(row[colStockB])
	if err != nil {
		return ProductDocument{}, fmt.Errorf("stock B: %w", err)
	}
	id := strings.TrimSpace(row[colID])
	return ProductDocument{
		ID:      id,
		Title:   id,
		Content: ComposeContent(row),
		Path:    row[colPath],
		InStock: stockA + stockB,
	}, nil
}

func parseStock(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%q is not a number", raw)
	}
	if n < 0 {
		return 0, fmt.Errorf("%d is negative", n)
	}
	return n, nil
}

// Terms splits text into lowercased letter/digit runs, the same tokens the
// full-text index produces.
func Terms(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
