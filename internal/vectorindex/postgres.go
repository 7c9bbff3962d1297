package vectorindex

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"
)

// PostgresIndex is the externally-backed Index implementation, storing
// entries in the persona_pairs table with a pgvector embedding column. It
// honors the same contract as MemoryIndex.
type PostgresIndex struct {
	pool *pgxpool.Pool
	dim  int
}

// NewPostgresIndex creates a pgvector-backed index. The persona_pairs table
// must already exist with a vector column of the given dimension.
func NewPostgresIndex(pool *pgxpool.Pool, dim int) *PostgresIndex {
	return &PostgresIndex{pool: pool, dim: dim}
}

func (p *PostgresIndex) Upsert(ctx context.Context, id string, embedding []float32, md Metadata) error {
	if len(embedding) != p.dim {
		return ErrDimensionMismatch
	}

	vec := pgvector.NewVector(embedding)
	_, err := p.pool.Exec(ctx,
		`INSERT INTO persona_pairs (id, persona_id, context, response, message_ts, embedding)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (id) DO UPDATE
		 SET persona_id = EXCLUDED.persona_id,
		     context    = EXCLUDED.context,
		     response   = EXCLUDED.response,
		     message_ts = EXCLUDED.message_ts,
		     embedding  = EXCLUDED.embedding`,
		id, md.PersonaID, md.Context, md.Response, md.Timestamp, vec,
	)
	if err != nil {
		return fmt.Errorf("upserting pair %s: %w", id, err)
	}
	return nil
}

func (p *PostgresIndex) Query(ctx context.Context, vector []float32, topK int, filter Filter) ([]Match, error) {
	if len(vector) != p.dim {
		return nil, ErrDimensionMismatch
	}
	if topK <= 0 {
		return nil, nil
	}

	// Cosine distance against a zero vector is undefined in pgvector;
	// per the index contract it scores 0 against everything.
	if norm(vector) == 0 {
		return p.queryZero(ctx, topK, filter)
	}

	vec := pgvector.NewVector(vector)

	// seq is the insertion-order tiebreaker, matching MemoryIndex ranking.
	rows, err := p.pool.Query(ctx,
		`SELECT id, persona_id, context, response, message_ts,
		        1 - (embedding <=> $1) AS similarity
		 FROM persona_pairs
		 WHERE ($2 = '' OR persona_id = $2)
		 ORDER BY embedding <=> $1, seq
		 LIMIT $3`,
		vec, filter.PersonaID, topK,
	)
	if err != nil {
		return nil, fmt.Errorf("querying persona pairs: %w", err)
	}
	defer rows.Close()

	var matches []Match
	for rows.Next() {
		var m Match
		if err := rows.Scan(&m.ID, &m.Metadata.PersonaID, &m.Metadata.Context,
			&m.Metadata.Response, &m.Metadata.Timestamp, &m.Score); err != nil {
			return nil, fmt.Errorf("scanning match: %w", err)
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

func (p *PostgresIndex) queryZero(ctx context.Context, topK int, filter Filter) ([]Match, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT id, persona_id, context, response, message_ts
		 FROM persona_pairs
		 WHERE ($1 = '' OR persona_id = $1)
		 ORDER BY seq
		 LIMIT $2`,
		filter.PersonaID, topK,
	)
	if err != nil {
		return nil, fmt.Errorf("querying persona pairs: %w", err)
	}
	defer rows.Close()

	var matches []Match
	for rows.Next() {
		var m Match
		if err := rows.Scan(&m.ID, &m.Metadata.PersonaID, &m.Metadata.Context,
			&m.Metadata.Response, &m.Metadata.Timestamp); err != nil {
			return nil, fmt.Errorf("scanning match: %w", err)
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

func (p *PostgresIndex) Count(ctx context.Context, filter Filter) (int, error) {
	var count int
	err := p.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM persona_pairs WHERE ($1 = '' OR persona_id = $1)`,
		filter.PersonaID,
	).Scan(&count)
	return count, err
}

func (p *PostgresIndex) DeletePersona(ctx context.Context, personaID string) error {
	_, err := p.pool.Exec(ctx,
		`DELETE FROM persona_pairs WHERE persona_id = $1`,
		personaID,
	)
	if err != nil {
		return fmt.Errorf("deleting persona %s pairs: %w", personaID, err)
	}
	return nil
}
