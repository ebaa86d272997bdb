package productindex

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/yanqian/support-expert/internal/domain/catalog"
)

// SQLiteIndex keeps product documents in an SQLite FTS5 table ranked by bm25.
type SQLiteIndex struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the index at path. ":memory:" keeps the
// index in process memory.
func OpenSQLite(ctx context.Context, path string) (*SQLiteIndex, error) {
	dsn := path
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, fmt.Errorf("creating index directory: %w", err)
		}
		dsn = path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// a single connection keeps ":memory:" databases shared
	db.SetMaxOpenConns(1)

	idx := &SQLiteIndex{db: db}
	if err := idx.ensureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return idx, nil
}

// Close closes the database connection.
func (s *SQLiteIndex) Close() error {
	return s.db.Close()
}

func (s *SQLiteIndex) ensureSchema(ctx context.Context) error {
	const ddl = `
CREATE VIRTUAL TABLE IF NOT EXISTS products USING fts5(
	title UNINDEXED,
	content,
	path UNINDEXED,
	in_stock UNINDEXED,
	tokenize = 'unicode61'
)`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("creating products table: %w", err)
	}
	return nil
}

func (s *SQLiteIndex) Search(ctx context.Context, q catalog.Query) ([]catalog.ProductDocument, error) {
	match := matchExpression(q)
	if match == "" {
		return nil, nil
	}
	limit := q.Limit
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT title, content, path, in_stock FROM products
WHERE products MATCH ? AND CAST(in_stock AS INTEGER) >= ?
ORDER BY rank
LIMIT ?`, match, q.MinStock, limit)
	if err != nil {
		return nil, fmt.Errorf("searching products: %w", err)
	}
	defer rows.Close()

	var out []catalog.ProductDocument
	for rows.Next() {
		var (
			doc   catalog.ProductDocument
			stock string
		)
		if err := rows.Scan(&doc.Title, &doc.Content, &doc.Path, &stock); err != nil {
			return nil, fmt.Errorf("scanning product: %w", err)
		}
		doc.ID = doc.Title
		doc.InStock, _ = strconv.Atoi(stock)
		out = append(out, doc)
	}
	return out, rows.Err()
}

// Replace swaps the whole table content inside one transaction.
func (s *SQLiteIndex) Replace(ctx context.Context, docs []catalog.ProductDocument) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			err = errors.Join(err, tx.Rollback())
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM products`); err != nil {
		return fmt.Errorf("clearing products: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO products (title, content, path, in_stock) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()
	for _, doc := range docs {
		if _, err = stmt.ExecContext(ctx, doc.Title, doc.Content, doc.Path, doc.InStock); err != nil {
			return fmt.Errorf("inserting product %s: %w", doc.Title, err)
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (s *SQLiteIndex) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM products`); err != nil {
		return fmt.Errorf("clearing products: %w", err)
	}
	return nil
}

func (s *SQLiteIndex) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting products: %w", err)
	}
	return n, nil
}

// matchExpression renders q as an FTS5 query:
// (p1 OR p2 ...) AND (d1 OR d2 ...), each phrase being "t1" AND "t2".
func matchExpression(q catalog.Query) string {
	products := anyOf(q.Products)
	descriptions := anyOf(q.Descriptions)
	if products == "" || descriptions == "" {
		return ""
	}
	return products + " AND " + descriptions
}

func anyOf(phrases [][]string) string {
	parts := make([]string, 0, len(phrases))
	for _, phrase := range phrases {
		if expr := allOf(phrase); expr != "" {
			parts = append(parts, expr)
		}
	}
	if len(parts) == 0 {
		return ""
	}
	return "(" + strings.Join(parts, " OR ") + ")"
}

func allOf(terms []string) string {
	quoted := make([]string, 0, len(terms))
	for _, term := range terms {
		if term == "" {
			continue
		}
		quoted = append(quoted, `"`+strings.ReplaceAll(term, `"`, `""`)+`"`)
	}
	if len(quoted) == 0 {
		return ""
	}
	return "(" + strings.Join(quoted, " AND ") + ")"
}

var _ catalog.Index = (*SQLiteIndex)(nil)
