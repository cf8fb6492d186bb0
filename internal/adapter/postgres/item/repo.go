// Package item implements the content item repository using PostgreSQL.
//
// The queue selection queries are built dynamically with squirrel because the
// filter set (states, difficulty band, exclusions) varies per tier.
package item

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/polyglothq/adaptive-srs/internal/adapter/postgres"
	"github.com/polyglothq/adaptive-srs/internal/domain"
)

// Repo provides read access to the shared content item pool.
type Repo struct {
	pool    *pgxpool.Pool
	builder sq.StatementBuilderType
}

// New creates a new item repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{
		pool:    pool,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// ----------------------------------------------------------------------------
// Static queries
// ----------------------------------------------------------------------------

const getByIDSQL = `
SELECT id, language, item_type, payload, theta, created_at
FROM items
WHERE id = $1`

const insertSQL = `
INSERT INTO items (id, language, item_type, payload, theta)
VALUES ($1, $2, $3, $4, $5)`

const getByTargetWordSQL = `
SELECT id, language, item_type, payload, theta, created_at
FROM items
WHERE language = $1
  AND item_type = 'VOCABULARY'
  AND payload->>'target_word' = $2
LIMIT 1`

// GetByID returns one item. Returns domain.ErrNotFound for unknown ids.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Item, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	item, err := scanItem(querier.QueryRow(ctx, getByIDSQL, id))
	if err != nil {
		return nil, postgres.MapError(err, "item", id.String())
	}

	return item, nil
}

// Insert adds one content item. The caller generates the id.
func (r *Repo) Insert(ctx context.Context, item domain.Item) error {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	_, err := querier.Exec(ctx, insertSQL, item.ID, item.Language, item.Type, item.Payload, item.Theta)
	if err != nil {
		return postgres.MapError(err, "item", item.ID.String())
	}

	return nil
}

// GetByTargetWord resolves a vocabulary item by its headword within a language.
// Used by the credit distributor to map sentence words back to items.
func (r *Repo) GetByTargetWord(ctx context.Context, language, word string) (*domain.Item, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	item, err := scanItem(querier.QueryRow(ctx, getByTargetWordSQL, language, word))
	if err != nil {
		return nil, postgres.MapError(err, "item", word)
	}

	return item, nil
}

// ----------------------------------------------------------------------------
// Queue selection
// ----------------------------------------------------------------------------

// ListDueInBand returns items with a memory state in one of the given states,
// due at or before now, whose difficulty falls inside the theta band. Ordered
// by due ascending so the most overdue cards surface first.
func (r *Repo) ListDueInBand(
	ctx context.Context,
	userKey, language string,
	thetaLo, thetaHi float64,
	states []domain.CardState,
	now time.Time,
	limit int,
) ([]domain.DueCard, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	query := r.builder.
		Select(
			"i.id", "i.language", "i.item_type", "i.payload", "i.theta", "i.created_at",
			"m.user_key", "m.item_id", "m.state", "m.stability", "m.difficulty",
			"m.reps", "m.lapses", "m.scheduled_days", "m.elapsed_days", "m.due", "m.last_review",
		).
		From("items i").
		Join("memory_states m ON m.item_id = i.id").
		Where(sq.Eq{"m.user_key": userKey}).
		Where(sq.Eq{"i.language": language}).
		Where(sq.Eq{"m.state": states}).
		Where(sq.LtOrEq{"m.due": now}).
		Where(sq.Expr("(i.theta IS NULL OR i.theta BETWEEN ? AND ?)", thetaLo, thetaHi)).
		OrderBy("m.due ASC").
		Limit(uint64(limit))

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build due query: %w", err)
	}

	rows, err := querier.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, postgres.MapError(err, "items", userKey)
	}
	defer rows.Close()

	var cards []domain.DueCard
	for rows.Next() {
		var c domain.DueCard
		err := rows.Scan(
			&c.Item.ID, &c.Item.Language, &c.Item.Type, &c.Item.Payload, &c.Item.Theta, &c.Item.CreatedAt,
			&c.Memory.UserKey, &c.Memory.ItemID, &c.Memory.State, &c.Memory.Stability, &c.Memory.Difficulty,
			&c.Memory.Reps, &c.Memory.Lapses, &c.Memory.ScheduledDays, &c.Memory.ElapsedDays,
			&c.Memory.Due, &c.Memory.LastReview,
		)
		if err != nil {
			return nil, postgres.MapError(err, "items", userKey)
		}
		cards = append(cards, c)
	}
	if err := rows.Err(); err != nil {
		return nil, postgres.MapError(err, "items", userKey)
	}

	return cards, nil
}

// ListNewInBand returns items the learner has never reviewed, inside the theta
// band, in random order.
func (r *Repo) ListNewInBand(
	ctx context.Context,
	userKey, language string,
	thetaLo, thetaHi float64,
	limit int,
) ([]domain.Item, error) {
	query := r.builder.
		Select("i.id", "i.language", "i.item_type", "i.payload", "i.theta", "i.created_at").
		From("items i").
		Where(sq.Eq{"i.language": language}).
		Where(sq.Expr(
			"NOT EXISTS (SELECT 1 FROM memory_states m WHERE m.item_id = i.id AND m.user_key = ?)",
			userKey,
		)).
		Where(sq.Expr("(i.theta IS NULL OR i.theta BETWEEN ? AND ?)", thetaLo, thetaHi)).
		OrderBy("random()").
		Limit(uint64(limit))

	return r.listItems(ctx, query, userKey)
}

// ListAny returns random items of a language regardless of difficulty or
// review history, excluding the given ids. Used as the queue overflow tier.
func (r *Repo) ListAny(
	ctx context.Context,
	language string,
	excludeIDs []uuid.UUID,
	limit int,
) ([]domain.Item, error) {
	query := r.builder.
		Select("i.id", "i.language", "i.item_type", "i.payload", "i.theta", "i.created_at").
		From("items i").
		Where(sq.Eq{"i.language": language}).
		OrderBy("random()").
		Limit(uint64(limit))

	if len(excludeIDs) > 0 {
		query = query.Where(sq.NotEq{"i.id": excludeIDs})
	}

	return r.listItems(ctx, query, language)
}

// ListPlacementCandidates returns calibrated items (theta present) of a
// language, excluding already-administered ids.
func (r *Repo) ListPlacementCandidates(
	ctx context.Context,
	language string,
	excludeIDs []uuid.UUID,
	limit int,
) ([]domain.Item, error) {
	query := r.builder.
		Select("i.id", "i.language", "i.item_type", "i.payload", "i.theta", "i.created_at").
		From("items i").
		Where(sq.Eq{"i.language": language}).
		Where("i.theta IS NOT NULL").
		Limit(uint64(limit))

	if len(excludeIDs) > 0 {
		query = query.Where(sq.NotEq{"i.id": excludeIDs})
	}

	return r.listItems(ctx, query, language)
}

func (r *Repo) listItems(ctx context.Context, query sq.SelectBuilder, key string) ([]domain.Item, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build items query: %w", err)
	}

	rows, err := querier.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, postgres.MapError(err, "items", key)
	}
	defer rows.Close()

	var items []domain.Item
	for rows.Next() {
		var it domain.Item
		err := rows.Scan(&it.ID, &it.Language, &it.Type, &it.Payload, &it.Theta, &it.CreatedAt)
		if err != nil {
			return nil, postgres.MapError(err, "items", key)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, postgres.MapError(err, "items", key)
	}

	return items, nil
}

func scanItem(row pgx.Row) (*domain.Item, error) {
	var it domain.Item
	err := row.Scan(&it.ID, &it.Language, &it.Type, &it.Payload, &it.Theta, &it.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &it, nil
}
