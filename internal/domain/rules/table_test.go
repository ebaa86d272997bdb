package rules

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	apperrors "github.com/yanqian/support-expert/pkg/errors"
)

type stubLemmatizer struct {
	lemmas   map[string]string
	err      error
	lastText string
	calls    int
}

func (s *stubLemmatizer) Lemmatize(_ context.Context, text string) ([]string, error) {
	s.calls++
	s.lastText = text
	if s.err != nil {
		return nil, s.err
	}
	var out []string
	for _, token := range strings.Fields(strings.ToLower(text)) {
		if lemma, ok := s.lemmas[token]; ok {
			out = append(out, lemma)
			continue
		}
		out = append(out, token)
	}
	return out, nil
}

func newTestTable(lem Lemmatizer) *Table {
	return NewTable(lem, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestLookupContextJoinsDistinctValuesInOrder(t *testing.T) {
	lem := &stubLemmatizer{lemmas: map[string]string{"доставкой": "доставка", "оплаты": "оплата"}}
	table := newTestTable(lem)
	table.Rebuild([][]string{
		{"доставка, курьер", "Доставка занимает 2 дня."},
		{"оплата", "Оплата картой или наличными."},
	})

	got, err := table.LookupContext(context.Background(), "Что с доставкой, курьер и способы оплаты?")
	require.NoError(t, err)
	require.Equal(t, "Доставка занимает 2 дня.\nОплата картой или наличными.", got)
	require.NotContains(t, lem.lastText, ",")
	require.NotContains(t, lem.lastText, "?")
}

func TestLookupContextMissReturnsEmpty(t *testing.T) {
	table := newTestTable(&stubLemmatizer{})
	table.Rebuild([][]string{{"возврат", "Возврат 14 дней."}})

	got, err := table.LookupContext(context.Background(), "привет")
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestLookupContextEmptyTableSkipsLemmatizer(t *testing.T) {
	lem := &stubLemmatizer{}
	table := newTestTable(lem)

	got, err := table.LookupContext(context.Background(), "любой вопрос")
	require.NoError(t, err)
	require.Empty(t, got)
	require.Zero(t, lem.calls)
}

func TestLookupContextRejectsEmptyQuestion(t *testing.T) {
	table := newTestTable(&stubLemmatizer{})
	_, err := table.LookupContext(context.Background(), "")
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))

	got, err := table.LookupContext(context.Background(), "  ")
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestLookupContextWrapsLemmatizerFailure(t *testing.T) {
	table := newTestTable(&stubLemmatizer{err: errors.New("model down")})
	table.Rebuild([][]string{{"a", "b"}})

	_, err := table.LookupContext(context.Background(), "a")
	require.True(t, apperrors.IsCode(err, apperrors.CodeNLP))
}

func TestRebuildLastWriteWinsAndReportsBadRows(t *testing.T) {
	table := newTestTable(&stubLemmatizer{})
	report := table.Rebuild([][]string{
		{"возврат, обмен", "old"},
		{"only-one-column"},
		{"", "blank"},
		{"обмен", "new"},
	})
	require.Equal(t, 2, report.Applied)
	require.Equal(t, 2, report.Skipped)
	require.Equal(t, 2, table.Len())

	got, err := table.LookupContext(context.Background(), "обмен")
	require.NoError(t, err)
	require.Equal(t, "new", got)

	got, err = table.LookupContext(context.Background(), "возврат")
	require.NoError(t, err)
	require.Equal(t, "old", got)
}

func TestRebuildIsIdempotent(t *testing.T) {
	table := newTestTable(&stubLemmatizer{})
	rows := [][]string{{"a, b", "x"}, {"c", "y"}}
	table.Rebuild(rows)
	first, err := table.LookupContext(context.Background(), "a c")
	require.NoError(t, err)
	table.Rebuild(rows)
	second, err := table.LookupContext(context.Background(), "a c")
	require.NoError(t, err)
	require.Equal(t, first, second)
}
