// Package sheets reads the support feeds from Google Sheets, local CSV exports
// or CSV objects in a bucket, and appends taught answers to the QA ledger.
package sheets

import (
	"fmt"

	"github.com/yanqian/support-expert/internal/domain/feedsync"
)

// tab describes where a feed lives in the spreadsheet.
type tab struct {
	name  string
	cells string
	// width pads short rows; the API trims trailing empty cells.
	width int
}

var layout = map[feedsync.Feed]tab{
	feedsync.FeedProducts:  {name: "Products", cells: "A2:M", width: 13},
	feedsync.FeedRules:     {name: "Rules", cells: "A2:B1000"},
	feedsync.FeedStopwords: {name: "Stopwords", cells: "A2:A1000"},
	feedsync.FeedQA:        {name: "QA", cells: "A2:B1000"},
}

const ledgerRange = "QA!A:B"

func tabFor(feed feedsync.Feed) (tab, error) {
	t, ok := layout[feed]
	if !ok {
		return tab{}, fmt.Errorf("no sheet layout for feed %q", feed)
	}
	return t, nil
}

func (t tab) a1() string {
	return t.name + "!" + t.cells
}

func (t tab) pad(rows [][]string) [][]string {
	if t.width == 0 {
		return rows
	}
	for i, row := range rows {
		if len(row) < t.width && len(row) > 0 {
			padded := make([]string, t.width)
			copy(padded, row)
			rows[i] = padded
		}
	}
	return rows
}
