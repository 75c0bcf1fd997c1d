package rag

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
	"go.uber.org/zap"
)

// PgIndex searches a prebuilt pgvector index: legal_chunk rows joined to
// their legal_chunk_embedding vectors.
type PgIndex struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

// OpenPgIndex checks that the index tables exist, are populated and hold
// vectors of the given size.
func OpenPgIndex(ctx context.Context, db *pgxpool.Pool, dimensions int, logger *zap.Logger) (*PgIndex, error) {
	var n int64
	err := db.QueryRow(ctx, `
		SELECT count(*)
		FROM legal_chunk c
		JOIN legal_chunk_embedding e ON c.id = e.chunk_id
	`).Scan(&n)
	if err != nil {
		return nil, fmt.Errorf("check pgvector index: %w", err)
	}
	if n == 0 {
		return nil, ErrEmptyIndex
	}

	var stored int
	err = db.QueryRow(ctx, `SELECT vector_dims(embedding) FROM legal_chunk_embedding LIMIT 1`).Scan(&stored)
	if err != nil {
		return nil, fmt.Errorf("read pgvector dimensions: %w", err)
	}
	if stored != dimensions {
		return nil, fmt.Errorf("index stores %d-dimension vectors, embeddings have %d", stored, dimensions)
	}

	logger.Info("pgvector index loaded", zap.Int64("passages", n), zap.Int("dimensions", stored))
	return &PgIndex{db: db, logger: logger}, nil
}

// Search orders by L2 distance; ties fall back to chunk id so repeated
// queries return the same order.
func (r *PgIndex) Search(ctx context.Context, embedding []float32, k int) ([]Passage, error) {
	if k <= 0 {
		k = defaultTopK
	}

	vec := pgvector.NewVector(embedding)

	rows, err := r.db.Query(ctx, `
		SELECT
			c.id, COALESCE(c.section, ''), COALESCE(c.title, ''), c.content,
			COALESCE(c.source_url, ''), e.embedding <-> $1 AS distance
		FROM legal_chunk c
		JOIN legal_chunk_embedding e ON c.id = e.chunk_id
		ORDER BY distance, c.id
		LIMIT $2
	`, vec, k)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var passages []Passage
	for rows.Next() {
		var p Passage
		var distance float64
		if err := rows.Scan(
			&p.ID,
			&p.Section,
			&p.Title,
			&p.Content,
			&p.Source,
			&distance,
		); err != nil {
			return nil, err
		}
		p.Score = float32(1.0 / (1.0 + distance))
		passages = append(passages, p)
	}

	return passages, rows.Err()
}

// Close is a no-op; the pool is owned by the caller.
func (r *PgIndex) Close() error { return nil }

var _ Index = (*PgIndex)(nil)
