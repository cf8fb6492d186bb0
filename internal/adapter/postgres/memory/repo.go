// Package memory implements the per-learner FSRS memory state repository.
package memory

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/polyglothq/adaptive-srs/internal/adapter/postgres"
	"github.com/polyglothq/adaptive-srs/internal/domain"
)

// Repo provides memory state persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new memory state repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const getSQL = `
SELECT user_key, item_id, state, stability, difficulty,
       reps, lapses, scheduled_days, elapsed_days, due, last_review
FROM memory_states
WHERE user_key = $1 AND item_id = $2`

// Concurrent submissions for the same card resolve last-writer-wins by review
// time: an upsert whose last_review predates the stored one is a no-op.
const upsertSQL = `
INSERT INTO memory_states (
    user_key, item_id, state, stability, difficulty,
    reps, lapses, scheduled_days, elapsed_days, due, last_review
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
ON CONFLICT (user_key, item_id) DO UPDATE SET
    state = EXCLUDED.state,
    stability = EXCLUDED.stability,
    difficulty = EXCLUDED.difficulty,
    reps = EXCLUDED.reps,
    lapses = EXCLUDED.lapses,
    scheduled_days = EXCLUDED.scheduled_days,
    elapsed_days = EXCLUDED.elapsed_days,
    due = EXCLUDED.due,
    last_review = EXCLUDED.last_review
WHERE memory_states.last_review IS NULL
   OR EXCLUDED.last_review IS NULL
   OR EXCLUDED.last_review >= memory_states.last_review`

// Get returns the learner's state for one item.
// Returns domain.ErrNotFound if the item has never been reviewed.
func (r *Repo) Get(ctx context.Context, userKey string, itemID uuid.UUID) (*domain.MemoryState, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	var m domain.MemoryState
	err := querier.QueryRow(ctx, getSQL, userKey, itemID).Scan(
		&m.UserKey, &m.ItemID, &m.State, &m.Stability, &m.Difficulty,
		&m.Reps, &m.Lapses, &m.ScheduledDays, &m.ElapsedDays, &m.Due, &m.LastReview,
	)
	if err != nil {
		return nil, postgres.MapError(err, "memory_state", fmt.Sprintf("%s/%s", userKey, itemID))
	}

	return &m, nil
}

// Upsert writes the state produced by the scheduler.
func (r *Repo) Upsert(ctx context.Context, state domain.MemoryState) error {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	_, err := querier.Exec(ctx, upsertSQL,
		state.UserKey, state.ItemID, state.State, state.Stability, state.Difficulty,
		state.Reps, state.Lapses, state.ScheduledDays, state.ElapsedDays, state.Due, state.LastReview,
	)
	if err != nil {
		key := fmt.Sprintf("%s/%s", state.UserKey, state.ItemID)
		return fmt.Errorf("upsert memory state: %w", postgres.MapError(err, "memory_state", key))
	}

	return nil
}
