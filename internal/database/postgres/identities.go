package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/pgvector/pgvector-go"
)

// StoredIdentity is one archived identity row.
type StoredIdentity struct {
	Name         string
	Embedding    []float32
	Dim          int
	RegisteredAt time.Time
}

// IdentityRepository mirrors registered identities into PostgreSQL so
// a fresh instance can rebuild its gallery without re-running feature
// extraction. It satisfies the engine's Mirror contract.
type IdentityRepository struct {
	pool *Pool
}

// NewIdentityRepository creates a new IdentityRepository.
func NewIdentityRepository(pool *Pool) *IdentityRepository {
	return &IdentityRepository{pool: pool}
}

// Save upserts an identity vector.
func (r *IdentityRepository) Save(ctx context.Context, name string, embedding []float32) error {
	vec := pgvector.NewVector(embedding)
	_, err := r.pool.Exec(ctx, `
		INSERT INTO identities (name, embedding, dim, registered_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (name) DO UPDATE SET
			embedding = EXCLUDED.embedding,
			dim = EXCLUDED.dim,
			registered_at = NOW()
	`, name, vec, len(embedding))
	if err != nil {
		return fmt.Errorf("save identity: %w", err)
	}
	return nil
}

// Get retrieves an identity by name, returns nil if not found.
func (r *IdentityRepository) Get(ctx context.Context, name string) (*StoredIdentity, error) {
	var id StoredIdentity
	var vec pgvector.Vector

	err := r.pool.QueryRow(ctx, `
		SELECT name, embedding, dim, registered_at FROM identities WHERE name = $1
	`, name).Scan(&id.Name, &vec, &id.Dim, &id.RegisteredAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query identity: %w", err)
	}

	id.Embedding = vec.Slice()
	return &id, nil
}

// List returns all archived identities ordered by registration time.
func (r *IdentityRepository) List(ctx context.Context) ([]StoredIdentity, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT name, embedding, dim, registered_at FROM identities ORDER BY registered_at
	`)
	if err != nil {
		return nil, fmt.Errorf("list identities: %w", err)
	}
	defer rows.Close()

	var identities []StoredIdentity
	for rows.Next() {
		var id StoredIdentity
		var vec pgvector.Vector
		if err := rows.Scan(&id.Name, &vec, &id.Dim, &id.RegisteredAt); err != nil {
			return nil, fmt.Errorf("scan identity: %w", err)
		}
		id.Embedding = vec.Slice()
		identities = append(identities, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate identities: %w", err)
	}
	return identities, nil
}

// Delete removes an identity row. Deleting a missing row is not an error.
func (r *IdentityRepository) Delete(ctx context.Context, name string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM identities WHERE name = $1`, name); err != nil {
		return fmt.Errorf("delete identity: %w", err)
	}
	return nil
}
