// Package reviewlog implements the append-only review history repository.
package reviewlog

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/polyglothq/adaptive-srs/internal/adapter/postgres"
	"github.com/polyglothq/adaptive-srs/internal/domain"
)

// Repo provides review log persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new review log repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const appendSQL = `
INSERT INTO review_logs (id, user_key, item_id, rating, duration_ms, reviewed_at)
VALUES ($1, $2, $3, $4, $5, $6)`

const countByUserSQL = `
SELECT count(*)
FROM review_logs
WHERE user_key = $1`

const ratingBreakdownSQL = `
SELECT rating, count(*)
FROM review_logs
WHERE user_key = $1
GROUP BY rating
ORDER BY rating`

const dailyActivitySQL = `
SELECT date_trunc('day', reviewed_at) AS day, count(*)
FROM review_logs
WHERE user_key = $1
  AND reviewed_at >= now() - make_interval(days => $2)
GROUP BY day
ORDER BY day DESC`

const languageBreakdownSQL = `
SELECT i.language, count(*)
FROM review_logs r
JOIN items i ON i.id = r.item_id
WHERE r.user_key = $1
GROUP BY i.language
ORDER BY count(*) DESC`

// Append records one review. Logs are never updated or deleted.
func (r *Repo) Append(ctx context.Context, log *domain.ReviewLog) error {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	_, err := querier.Exec(ctx, appendSQL,
		log.ID, log.UserKey, log.ItemID, log.Rating, log.DurationMs, log.ReviewedAt,
	)
	if err != nil {
		return fmt.Errorf("append review log: %w", postgres.MapError(err, "review_log", log.ID.String()))
	}

	return nil
}

// CountByUser returns the total number of reviews a user has ever submitted.
func (r *Repo) CountByUser(ctx context.Context, userKey string) (int, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	var total int
	if err := querier.QueryRow(ctx, countByUserSQL, userKey).Scan(&total); err != nil {
		return 0, postgres.MapError(err, "review_log", userKey)
	}

	return total, nil
}

// RatingBreakdown returns per-rating review counts for a user.
func (r *Repo) RatingBreakdown(ctx context.Context, userKey string) ([]domain.RatingCount, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := querier.Query(ctx, ratingBreakdownSQL, userKey)
	if err != nil {
		return nil, postgres.MapError(err, "review_log", userKey)
	}
	defer rows.Close()

	var counts []domain.RatingCount
	for rows.Next() {
		var c domain.RatingCount
		if err := rows.Scan(&c.Rating, &c.Count); err != nil {
			return nil, postgres.MapError(err, "review_log", userKey)
		}
		counts = append(counts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, postgres.MapError(err, "review_log", userKey)
	}

	return counts, nil
}

// DailyActivity returns per-day review counts over the last N days,
// most recent day first. Days with no reviews are absent.
func (r *Repo) DailyActivity(ctx context.Context, userKey string, lastNDays int) ([]domain.DayReviewCount, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := querier.Query(ctx, dailyActivitySQL, userKey, lastNDays)
	if err != nil {
		return nil, postgres.MapError(err, "review_log", userKey)
	}
	defer rows.Close()

	var days []domain.DayReviewCount
	for rows.Next() {
		var d domain.DayReviewCount
		if err := rows.Scan(&d.Date, &d.Count); err != nil {
			return nil, postgres.MapError(err, "review_log", userKey)
		}
		days = append(days, d)
	}
	if err := rows.Err(); err != nil {
		return nil, postgres.MapError(err, "review_log", userKey)
	}

	return days, nil
}

// LanguageBreakdown returns per-language review counts for a user.
func (r *Repo) LanguageBreakdown(ctx context.Context, userKey string) ([]domain.LanguageCount, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := querier.Query(ctx, languageBreakdownSQL, userKey)
	if err != nil {
		return nil, postgres.MapError(err, "review_log", userKey)
	}
	defer rows.Close()

	var counts []domain.LanguageCount
	for rows.Next() {
		var c domain.LanguageCount
		if err := rows.Scan(&c.Language, &c.Count); err != nil {
			return nil, postgres.MapError(err, "review_log", userKey)
		}
		counts = append(counts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, postgres.MapError(err, "review_log", userKey)
	}

	return counts, nil
}
