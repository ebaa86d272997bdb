package catalog_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/support-expert/internal/domain/catalog"
	"github.com/yanqian/support-expert/internal/infra/productindex"
	apperrors "github.com/yanqian/support-expert/pkg/errors"
)

type stubExtractor struct {
	extractFn func(ctx context.Context, text string) ([]catalog.Entity, error)
	calls     int
}

func (s *stubExtractor) Extract(ctx context.Context, text string) ([]catalog.Entity, error) {
	s.calls++
	if s.extractFn != nil {
		return s.extractFn(ctx, text)
	}
	return nil, nil
}

type countingIndex struct {
	*productindex.MemoryIndex
	searches int
}

func (c *countingIndex) Search(ctx context.Context, q catalog.Query) ([]catalog.ProductDocument, error) {
	c.searches++
	return c.MemoryIndex.Search(ctx, q)
}

func newService(extractor catalog.EntityExtractor) (*catalog.Service, *countingIndex) {
	idx := &countingIndex{MemoryIndex: productindex.NewMemoryIndex()}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return catalog.NewService(idx, extractor, logger), idx
}

func productRows() [][]string {
	return [][]string{
		{"7", "p/path", "ModelX", "Cat", "Prod", "Desc", "3", "2", "100", "", "M", "20", "feat"},
		{"8", "p/8", "Runner", "обувь", "кроссовки", "красные беговые", "1", "0", "5000", "", "M", "30", "лёгкие"},
		{"9", "p/9", "Walker", "обувь", "кроссовки", "красные", "0", "0", "4000", "", "F", "25", ""},
		{"10", "p/10", "Trail", "обувь", "кроссовки", "красные горные", "2", "2", "7000", "", "M", "35", ""},
	}
}

func entities(pairs ...string) func(context.Context, string) ([]catalog.Entity, error) {
	return func(context.Context, string) ([]catalog.Entity, error) {
		out := make([]catalog.Entity, 0, len(pairs)/2)
		for i := 0; i+1 < len(pairs); i += 2 {
			out = append(out, catalog.Entity{Text: pairs[i], Label: pairs[i+1]})
		}
		return out, nil
	}
}

func TestParseRowComposesContentAndSumsStock(t *testing.T) {
	doc, err := catalog.ParseRow(productRows()[0])
	require.NoError(t, err)
	require.Equal(t, "7", doc.Title)
	require.Equal(t, "p/path", doc.Path)
	require.Equal(t, 5, doc.InStock)
	require.Equal(t,
		"number:7; модель: ModelX; категория: Cat; продукт: Prod; цена: 100; описание: Desc; пол: M; возраст: 20 особенности: feat",
		doc.Content)
}

func TestParseRowRejectsMalformedRows(t *testing.T) {
	_, err := catalog.ParseRow([]string{"1", "p"})
	require.Error(t, err)

	row := productRows()[0]
	row[6] = "many"
	_, err = catalog.ParseRow(row)
	require.Error(t, err)

	row = productRows()[0]
	row[7] = "-1"
	_, err = catalog.ParseRow(row)
	require.Error(t, err)
}

func TestRebuildReportsSkippedRowsAndIsIdempotent(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(&stubExtractor{})
	rows := append(productRows(), []string{"short"})

	for round := 0; round < 2; round++ {
		report, err := svc.Rebuild(ctx, rows)
		require.NoError(t, err)
		require.Equal(t, 5, report.Total)
		require.Equal(t, 4, report.Applied)
		require.Equal(t, 1, report.Skipped)
		require.Equal(t, 4, report.Issues[0].Row)

		n, err := svc.Count(ctx)
		require.NoError(t, err)
		require.Equal(t, 4, n)
	}
}

func TestRebuildThenSearchFindsRowSeven(t *testing.T) {
	ctx := context.Background()
	extractor := &stubExtractor{extractFn: entities("Prod", "Product", "Desc", "description")}
	for name, idx := range map[string]catalog.Index{
		"memory": productindex.NewMemoryIndex(),
		"sqlite": openSQLite(t),
	} {
		t.Run(name, func(t *testing.T) {
			svc := catalog.NewService(idx, extractor, slog.New(slog.NewTextHandler(io.Discard, nil)))
			_, err := svc.Rebuild(ctx, productRows())
			require.NoError(t, err)

			got, err := svc.Search(ctx, "есть Prod Desc?", 2)
			require.NoError(t, err)
			require.Contains(t, got, "number:7; модель: ModelX")
			require.NotContains(t, got, "\n")
		})
	}
}

func openSQLite(t *testing.T) catalog.Index {
	t.Helper()
	idx, err := productindex.OpenSQLite(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = idx.Close() })
	return idx
}

func TestSearchReturnsInStockMatchesUpToLimit(t *testing.T) {
	ctx := context.Background()
	extractor := &stubExtractor{extractFn: entities("кроссовки", "Product", "Красные", "description")}
	svc, _ := newService(extractor)
	_, err := svc.Rebuild(ctx, productRows())
	require.NoError(t, err)

	got, err := svc.Search(ctx, "есть красные кроссовки?", 0)
	require.NoError(t, err)
	require.Equal(t,
		"number:8; модель: Runner; категория: обувь; продукт: кроссовки; цена: 5000; описание: красные беговые; пол: M; возраст: 30 особенности: лёгкие\n"+
			"number:10; модель: Trail; категория: обувь; продукт: кроссовки; цена: 7000; описание: красные горные; пол: M; возраст: 35 особенности: ",
		got)

	got, err = svc.Search(ctx, "есть красные кроссовки?", 1)
	require.NoError(t, err)
	require.NotContains(t, got, "\n")
}

func TestSearchWithoutBothCategoriesSkipsIndex(t *testing.T) {
	ctx := context.Background()
	extractor := &stubExtractor{extractFn: entities("кроссовки", "Product", "Nike", "Brand")}
	svc, idx := newService(extractor)
	_, err := svc.Rebuild(ctx, productRows())
	require.NoError(t, err)

	got, err := svc.Search(ctx, "кроссовки Nike", 2)
	require.NoError(t, err)
	require.Empty(t, got)
	require.Zero(t, idx.searches)
}

func TestSearchOnEmptyIndex(t *testing.T) {
	extractor := &stubExtractor{extractFn: entities("куртка", "Product", "зимняя", "description")}
	svc, _ := newService(extractor)

	got, err := svc.Search(context.Background(), "зимняя куртка", 2)
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestSearchErrors(t *testing.T) {
	extractor := &stubExtractor{extractFn: func(context.Context, string) ([]catalog.Entity, error) {
		return nil, errors.New("model crashed")
	}}
	svc, _ := newService(extractor)

	_, err := svc.Search(context.Background(), "", 2)
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))
	require.Zero(t, extractor.calls)

	_, err = svc.Search(context.Background(), "куртка", 2)
	require.True(t, apperrors.IsCode(err, apperrors.CodeNLP))
}

func TestClearEmptiesIndex(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(&stubExtractor{})
	_, err := svc.Rebuild(ctx, productRows())
	require.NoError(t, err)

	require.NoError(t, svc.Clear(ctx))
	n, err := svc.Count(ctx)
	require.NoError(t, err)
	require.Zero(t, n)
}
