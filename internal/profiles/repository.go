package profiles

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound indicates an unknown profile id.
var ErrNotFound = errors.New("profile not found")

// Repository defines profile persistence operations.
type Repository interface {
	Create(ctx context.Context, p *Profile) error
	GetByID(ctx context.Context, id uuid.UUID) (*Profile, error)
	List(ctx context.Context) ([]Profile, error)
	ReplaceMessages(ctx context.Context, profileID uuid.UUID, texts []string) error
	GetMessages(ctx context.Context, profileID uuid.UUID) ([]string, error)
}

// PostgresRepository implements Repository using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new profile repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func (r *PostgresRepository) Create(ctx context.Context, p *Profile) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	_, err := r.pool.Exec(ctx,
		`INSERT INTO profiles (id, name, color, bio, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		p.ID, p.Name, p.Color, p.Bio, p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting profile: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Profile, error) {
	var p Profile
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, color, bio, created_at FROM profiles WHERE id = $1`,
		id,
	).Scan(&p.ID, &p.Name, &p.Color, &p.Bio, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting profile: %w", err)
	}
	return &p, nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]Profile, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, color, bio, created_at FROM profiles ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("listing profiles: %w", err)
	}
	defer rows.Close()

	var out []Profile
	for rows.Next() {
		var p Profile
		if err := rows.Scan(&p.ID, &p.Name, &p.Color, &p.Bio, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning profile: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// ReplaceMessages swaps a profile's entire history in one transaction;
// partial histories are never visible.
func (r *PostgresRepository) ReplaceMessages(ctx context.Context, profileID uuid.UUID, texts []string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`DELETE FROM profile_messages WHERE profile_id = $1`, profileID); err != nil {
		return fmt.Errorf("clearing messages: %w", err)
	}

	for i, text := range texts {
		if _, err := tx.Exec(ctx,
			`INSERT INTO profile_messages (profile_id, seq, text) VALUES ($1, $2, $3)`,
			profileID, i, text); err != nil {
			return fmt.Errorf("inserting message %d: %w", i, err)
		}
	}

	return tx.Commit(ctx)
}

func (r *PostgresRepository) GetMessages(ctx context.Context, profileID uuid.UUID) ([]string, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT text FROM profile_messages WHERE profile_id = $1 ORDER BY seq`,
		profileID,
	)
	if err != nil {
		return nil, fmt.Errorf("loading messages: %w", err)
	}
	defer rows.Close()

	var texts []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("scanning message: %w", err)
		}
		texts = append(texts, t)
	}
	return texts, rows.Err()
}
