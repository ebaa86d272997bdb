// Package dataset describes the outcome of bulk rebuilds fed from tabular sources.
package dataset

import (
	"fmt"
	"strings"
)

// Issue records a single rejected row.
type Issue struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// Report summarises a rebuild. Rejected rows never abort the rebuild.
type Report struct {
	Total   int     `json:"total"`
	Applied int     `json:"applied"`
	Skipped int     `json:"skipped"`
	Issues  []Issue `json:"issues,omitempty"`
}

// Accept counts a well-formed row.
func (r *Report) Accept() {
	r.Total++
	r.Applied++
}

// Reject counts a malformed row at zero-based index row.
func (r *Report) Reject(row int, format string, args ...any) {
	r.Total++
	r.Skipped++
	r.Issues = append(r.Issues, Issue{Row: row, Reason: fmt.Sprintf(format, args...)})
}

// Clean reports whether every row was applied.
func (r Report) Clean() bool {
	return r.Skipped == 0
}

// Summary renders the skipped rows for logs.
func (r Report) Summary() string {
	if r.Clean() {
		return ""
	}
	parts := make([]string, 0, len(r.Issues))
	for _, issue := range r.Issues {
		parts = append(parts, fmt.Sprintf("row %d: %s", issue.Row, issue.Reason))
	}
	return strings.Join(parts, "; ")
}
