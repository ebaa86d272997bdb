package sheets

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/yanqian/support-expert/internal/domain/feedsync"
)

// CSVSource reads feeds from "<dir>/<Tab>.csv" exports. The header row is
// skipped.
type CSVSource struct {
	dir string
}

// NewCSVSource constructs a source rooted at dir.
func NewCSVSource(dir string) *CSVSource {
	return &CSVSource{dir: dir}
}

// Fetch implements feedsync.Source.
func (s *CSVSource) Fetch(ctx context.Context, feed feedsync.Feed) ([][]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	t, err := tabFor(feed)
	if err != nil {
		return nil, err
	}
	path := filepath.Join(s.dir, t.name+".csv")
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	return readCSV(f, t, path)
}

// readCSV parses an exported tab and drops its header row.
func readCSV(r io.Reader, t tab, name string) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}
	if len(records) == 0 {
		return nil, nil
	}
	return t.pad(records[1:]), nil
}

var _ feedsync.Source = (*CSVSource)(nil)
