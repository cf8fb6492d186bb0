// Package learner implements the LearnerProfile repository using PostgreSQL.
package learner

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/polyglothq/adaptive-srs/internal/adapter/postgres"
	"github.com/polyglothq/adaptive-srs/internal/domain"
)

// Repo provides learner profile persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new learner repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const getSQL = `
SELECT user_key, level, theta, last_placement
FROM learners
WHERE user_key = $1`

const upsertSQL = `
INSERT INTO learners (user_key, level, theta, last_placement, updated_at)
VALUES ($1, $2, $3, $4, now())
ON CONFLICT (user_key) DO UPDATE SET
    level = EXCLUDED.level,
    theta = EXCLUDED.theta,
    last_placement = EXCLUDED.last_placement,
    updated_at = now()`

// Get returns the stored profile for a user.
// Returns domain.ErrNotFound when the user has never been placed.
func (r *Repo) Get(ctx context.Context, userKey string) (*domain.LearnerProfile, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	var p domain.LearnerProfile
	err := querier.QueryRow(ctx, getSQL, userKey).Scan(
		&p.UserKey, &p.Level, &p.Theta, &p.LastPlacement,
	)
	if err != nil {
		return nil, postgres.MapError(err, "learner", userKey)
	}

	return &p, nil
}

// Upsert writes the profile, overwriting any previous placement result.
func (r *Repo) Upsert(ctx context.Context, profile domain.LearnerProfile) error {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	_, err := querier.Exec(ctx, upsertSQL,
		profile.UserKey, profile.Level, profile.Theta, profile.LastPlacement,
	)
	if err != nil {
		return fmt.Errorf("upsert learner: %w", postgres.MapError(err, "learner", profile.UserKey))
	}

	return nil
}
