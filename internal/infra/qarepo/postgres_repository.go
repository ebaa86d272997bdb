package qarepo

import (
	"context"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"

	"github.com/yanqian/support-expert/internal/domain/qacache"
)

const schemaSQL = `
	CREATE EXTENSION IF NOT EXISTS vector;
	CREATE TABLE IF NOT EXISTS qa_records (
		seq       BIGINT PRIMARY KEY,
		question  TEXT NOT NULL,
		answer    TEXT NOT NULL,
		embedding vector NOT NULL
	);
`

// nearestSQL breaks distance ties by seq so the earliest record wins.
const nearestSQL = `
	SELECT seq, question, answer, embedding <-> $1 AS distance
	FROM qa_records
	ORDER BY embedding <-> $1, seq
	LIMIT 1
`

// PostgresRepository implements qacache.Repository using pgx and pgvector.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository constructs the repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// EnsureSchema creates the vector extension and the records table.
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("ensure qa_records schema: %w", err)
	}
	return nil
}

// Nearest returns the closest pgvector match. pgvector's <-> is Euclidean, so
// the distance is squared before it is returned.
func (r *PostgresRepository) Nearest(ctx context.Context, embedding []float32) (qacache.Match, bool, error) {
	row := r.pool.QueryRow(ctx, nearestSQL, pgvector.NewVector(embedding))
	var (
		seq      int64
		record   qacache.Record
		distance float64
	)
	if err := row.Scan(&seq, &record.Question, &record.Answer, &distance); err != nil {
		if err == pgx.ErrNoRows {
			return qacache.Match{}, false, nil
		}
		return qacache.Match{}, false, err
	}
	record.ID = strconv.FormatInt(seq, 10)
	return qacache.Match{Record: record, Distance: distance * distance}, true, nil
}

// Append inserts a record numbered by the current row count. The table lock
// serialises concurrent appends so numbers stay unique.
func (r *PostgresRepository) Append(ctx context.Context, question, answer string, embedding []float32) (qacache.Record, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return qacache.Record{}, err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `LOCK TABLE qa_records IN SHARE ROW EXCLUSIVE MODE`); err != nil {
		return qacache.Record{}, err
	}
	var count int64
	if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM qa_records`).Scan(&count); err != nil {
		return qacache.Record{}, err
	}
	if _, err := tx.Exec(ctx, `
		INSERT INTO qa_records (seq, question, answer, embedding)
		VALUES ($1, $2, $3, $4)
	`, count, question, answer, pgvector.NewVector(embedding)); err != nil {
		return qacache.Record{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return qacache.Record{}, err
	}
	return qacache.Record{
		ID:        strconv.FormatInt(count, 10),
		Question:  question,
		Answer:    answer,
		Embedding: append([]float32(nil), embedding...),
	}, nil
}

// Replace truncates the table and inserts records in one transaction, so a
// failed or cancelled reload leaves the previous rows in place.
func (r *PostgresRepository) Replace(ctx context.Context, records []qacache.Record) ([]qacache.Record, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `TRUNCATE qa_records`); err != nil {
		return nil, err
	}
	out := make([]qacache.Record, len(records))
	batch := &pgx.Batch{}
	for i, record := range records {
		out[i] = qacache.Record{
			ID:        strconv.Itoa(i),
			Question:  record.Question,
			Answer:    record.Answer,
			Embedding: append([]float32(nil), record.Embedding...),
		}
		batch.Queue(`
			INSERT INTO qa_records (seq, question, answer, embedding)
			VALUES ($1, $2, $3, $4)
		`, int64(i), record.Question, record.Answer, pgvector.NewVector(record.Embedding))
	}
	if batch.Len() > 0 {
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return nil, fmt.Errorf("reload qa_records: %w", err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return out, nil
}

// Count implements qacache.Repository.
func (r *PostgresRepository) Count(ctx context.Context) (int, error) {
	var count int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM qa_records`).Scan(&count); err != nil {
		return 0, err
	}
	return int(count), nil
}

var _ qacache.Repository = (*PostgresRepository)(nil)
