package dataset

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReportCountsRows(t *testing.T) {
	var r Report
	r.Accept()
	r.Reject(1, "stock %q is not a number", "x")
	r.Accept()

	require.Equal(t, 3, r.Total)
	require.Equal(t, 2, r.Applied)
	require.Equal(t, 1, r.Skipped)
	require.False(t, r.Clean())
	require.Equal(t, `row 1: stock "x" is not a number`, r.Summary())
}
