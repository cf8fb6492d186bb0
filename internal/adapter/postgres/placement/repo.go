// Package placement implements the placement session repository.
package placement

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/polyglothq/adaptive-srs/internal/adapter/postgres"
	"github.com/polyglothq/adaptive-srs/internal/domain"
)

// Repo provides placement session persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new placement session repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const createSQL = `
INSERT INTO placement_sessions (
    id, user_key, language, theta, se, items_completed, complete, final_level, created_at, updated_at
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

const getByIDSQL = `
SELECT id, user_key, language, theta, se, items_completed, complete, final_level, created_at, updated_at
FROM placement_sessions
WHERE id = $1`

// The items_completed guard makes concurrent submissions for one session
// serialize: the stale writer matches zero rows and gets ErrConflict.
const updateProgressSQL = `
UPDATE placement_sessions
SET theta = $4,
    se = $5,
    items_completed = $3,
    complete = $6,
    final_level = $7,
    updated_at = now()
WHERE id = $1
  AND items_completed = $2
  AND NOT complete`

const appendResponseSQL = `
INSERT INTO placement_responses (
    id, session_id, seq, item_id, rating, correct,
    theta_before, theta_after, se_before, se_after, duration_ms, answered_at
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

const listResponseItemIDsSQL = `
SELECT item_id
FROM placement_responses
WHERE session_id = $1
ORDER BY seq`

// Create persists a freshly started session.
func (r *Repo) Create(ctx context.Context, session *domain.PlacementSession) error {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	_, err := querier.Exec(ctx, createSQL,
		session.ID, session.UserKey, session.Language, session.Theta, session.SE,
		session.ItemsCompleted, session.Complete, session.FinalLevel,
		session.CreatedAt, session.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create placement session: %w", postgres.MapError(err, "placement_session", session.ID.String()))
	}

	return nil
}

// GetByID returns one session. Returns domain.ErrNotFound for unknown ids.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (*domain.PlacementSession, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	var s domain.PlacementSession
	err := querier.QueryRow(ctx, getByIDSQL, id).Scan(
		&s.ID, &s.UserKey, &s.Language, &s.Theta, &s.SE,
		&s.ItemsCompleted, &s.Complete, &s.FinalLevel,
		&s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, postgres.MapError(err, "placement_session", id.String())
	}

	return &s, nil
}

// UpdateProgress applies new ability state guarded by the stored
// items-completed counter. A counter mismatch, a completed session, or a
// missing session all return domain.ErrConflict.
func (r *Repo) UpdateProgress(
	ctx context.Context,
	sessionID uuid.UUID,
	expectedCompleted, itemsCompleted int,
	theta, se float64,
	complete bool,
	finalLevel *domain.CEFRLevel,
) error {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	tag, err := querier.Exec(ctx, updateProgressSQL,
		sessionID, expectedCompleted, itemsCompleted, theta, se, complete, finalLevel,
	)
	if err != nil {
		return fmt.Errorf("update placement session: %w", postgres.MapError(err, "placement_session", sessionID.String()))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("placement_session %s: %w", sessionID, domain.ErrConflict)
	}

	return nil
}

// AppendResponse records one answered item within a session.
func (r *Repo) AppendResponse(ctx context.Context, response *domain.PlacementResponse) error {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	_, err := querier.Exec(ctx, appendResponseSQL,
		response.ID, response.SessionID, response.Seq, response.ItemID,
		response.Rating, response.Correct,
		response.ThetaBefore, response.ThetaAfter, response.SEBefore, response.SEAfter,
		response.DurationMs, response.AnsweredAt,
	)
	if err != nil {
		return fmt.Errorf("append placement response: %w", postgres.MapError(err, "placement_response", response.ID.String()))
	}

	return nil
}

// ListResponseItemIDs returns the item ids already administered in a session,
// in submission order.
func (r *Repo) ListResponseItemIDs(ctx context.Context, sessionID uuid.UUID) ([]uuid.UUID, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := querier.Query(ctx, listResponseItemIDsSQL, sessionID)
	if err != nil {
		return nil, postgres.MapError(err, "placement_response", sessionID.String())
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, postgres.MapError(err, "placement_response", sessionID.String())
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, postgres.MapError(err, "placement_response", sessionID.String())
	}

	return ids, nil
}
