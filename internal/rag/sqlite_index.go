package rag

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// SQLiteIndex searches a prebuilt sqlite-vec database file. The file holds
// a vec_chunks table (rowid, section, title, content, source) and a vec0
// virtual table vec_embeddings whose rowids match vec_chunks.
type SQLiteIndex struct {
	db         *sql.DB
	dimensions int
	logger     *zap.Logger
}

// OpenSQLiteIndex opens path read-only and verifies the index is usable.
func OpenSQLiteIndex(ctx context.Context, path string, dimensions int, logger *zap.Logger) (*SQLiteIndex, error) {
	sqlite_vec.Auto()

	if path == "" {
		return nil, fmt.Errorf("index path is required")
	}
	if dimensions <= 0 {
		return nil, fmt.Errorf("embedding dimensions must be positive, got %d", dimensions)
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("stat index file: %w", err)
	}

	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?mode=ro", path))
	if err != nil {
		return nil, fmt.Errorf("opening index: %w", err)
	}

	var vecVersion string
	if err := db.QueryRowContext(ctx, "SELECT vec_version()").Scan(&vecVersion); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite-vec not available: %w", err)
	}

	var n int64
	if err := db.QueryRowContext(ctx, `SELECT count(*) FROM vec_chunks`).Scan(&n); err != nil {
		db.Close()
		return nil, fmt.Errorf("check sqlite index: %w", err)
	}
	if n == 0 {
		db.Close()
		return nil, ErrEmptyIndex
	}

	// A one-row KNN confirms vec_embeddings exists and stores vectors of the
	// configured size.
	zero, err := sqlite_vec.SerializeFloat32(make([]float32, dimensions))
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("serializing check vector: %w", err)
	}
	var rowid int64
	err = db.QueryRowContext(ctx,
		`SELECT rowid FROM vec_embeddings WHERE embedding MATCH ? AND k = 1`, zero,
	).Scan(&rowid)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		db.Close()
		return nil, fmt.Errorf("index does not accept %d-dimension queries: %w", dimensions, err)
	}

	logger.Info("sqlite-vec index loaded",
		zap.String("path", path),
		zap.Int("dimensions", dimensions),
		zap.Int64("passages", n),
		zap.String("vec_version", vecVersion),
	)

	return &SQLiteIndex{db: db, dimensions: dimensions, logger: logger}, nil
}

func (d *SQLiteIndex) Search(ctx context.Context, embedding []float32, k int) ([]Passage, error) {
	if k <= 0 {
		k = defaultTopK
	}
	if len(embedding) != d.dimensions {
		return nil, fmt.Errorf("query embedding has %d dimensions, index expects %d", len(embedding), d.dimensions)
	}

	queryBlob, err := sqlite_vec.SerializeFloat32(embedding)
	if err != nil {
		return nil, fmt.Errorf("serializing query embedding: %w", err)
	}

	rows, err := d.db.QueryContext(ctx, `
		SELECT
			c.rowid, c.section, c.title, c.content, c.source,
			ve.distance
		FROM vec_embeddings ve
		INNER JOIN vec_chunks c ON c.rowid = ve.rowid
		WHERE ve.embedding MATCH ?
			AND ve.k = ?
		ORDER BY ve.distance, c.rowid
	`, queryBlob, k)
	if err != nil {
		return nil, fmt.Errorf("querying vectors: %w", err)
	}
	defer rows.Close()

	var passages []Passage
	for rows.Next() {
		var p Passage
		var section, title, source sql.NullString
		var distance float64
		if err := rows.Scan(&p.ID, &section, &title, &p.Content, &source, &distance); err != nil {
			return nil, fmt.Errorf("scanning query result: %w", err)
		}
		p.Section = section.String
		p.Title = title.String
		p.Source = source.String
		p.Score = float32(1.0 / (1.0 + distance))
		passages = append(passages, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating query results: %w", err)
	}

	d.logger.Debug("queried sqlite-vec", zap.Int("results", len(passages)))
	return passages, nil
}

func (d *SQLiteIndex) Close() error {
	return d.db.Close()
}

var _ Index = (*SQLiteIndex)(nil)
