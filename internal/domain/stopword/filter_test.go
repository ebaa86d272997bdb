package stopword

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestFilter() *Filter {
	return NewFilter(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestContainsIsSubstringMatch(t *testing.T) {
	f := newTestFilter()
	f.Rebuild([][]string{{"скидк"}, {"refund"}})

	cases := []struct {
		text string
		want bool
	}{
		{"Где моя скидка?", true},
		{"I want a refund now", true},
		{"I want a Refund now", false},
		{"Где мой заказ?", false},
		{"", false},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, f.Contains(tc.text, nil), tc.text)
		require.Equal(t, tc.want, f.Contains(tc.text, nil), "deterministic: %s", tc.text)
	}
}

func TestContainsPrefersOverrides(t *testing.T) {
	f := newTestFilter()
	f.Rebuild([][]string{{"blocked"}})

	require.False(t, f.Contains("blocked text", []string{"other"}))
	require.True(t, f.Contains("other text", []string{"other"}))
	require.True(t, f.Contains("blocked text", []string{}))
}

func TestEmptySetNeverMatches(t *testing.T) {
	f := newTestFilter()
	require.False(t, f.Contains("anything", nil))
}

func TestRebuildFlattensOneLevelAndSkipsBlankRows(t *testing.T) {
	f := newTestFilter()
	report := f.Rebuild([][]string{{"a"}, {}, {" "}, {"b", "c"}})

	require.Equal(t, []string{"a", "b", "c"}, f.Words())
	require.Equal(t, 4, report.Total)
	require.Equal(t, 2, report.Applied)
	require.Equal(t, 2, report.Skipped)
	require.False(t, f.Contains("   ", nil))
}

func TestRebuildIsIdempotentAndReplacesWholesale(t *testing.T) {
	f := newTestFilter()
	rows := [][]string{{"x"}, {"y"}}
	f.Rebuild(rows)
	first := f.Words()
	f.Rebuild(rows)
	require.Equal(t, first, f.Words())
	require.Equal(t, uint64(2), f.Version())

	f.Rebuild([][]string{{"z"}})
	require.Equal(t, []string{"z"}, f.Words())
	require.False(t, f.Contains("x", nil))
}
