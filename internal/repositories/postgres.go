package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/vinaypatel8092/VideoTube/internal/aggregate"
	"github.com/vinaypatel8092/VideoTube/internal/db"
)

// withTx runs fn in a transaction on a pooled connection, committing when fn
// returns nil and rolling back otherwise.
func withTx(ctx context.Context, pool db.Pool, fn func(tx pgx.Tx) error) error {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tx, err := conn.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// PostgresDocumentReader runs compiled aggregation pipelines.
type PostgresDocumentReader struct {
	pool db.Pool
}

// NewPostgresDocumentReader constructs a reader backed by PostgreSQL.
func NewPostgresDocumentReader(pool db.Pool) *PostgresDocumentReader {
	return &PostgresDocumentReader{pool: pool}
}

// QueryDocuments executes sql and returns the JSON document in each row's first column.
func (r *PostgresDocumentReader) QueryDocuments(ctx context.Context, sql string, args ...any) ([][]byte, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	defer rows.Close()

	var docs [][]byte
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}

	return docs, nil
}

var _ aggregate.DocumentReader = (*PostgresDocumentReader)(nil)
