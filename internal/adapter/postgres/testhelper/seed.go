package testhelper

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/polyglothq/adaptive-srs/internal/domain"
)

// uniqueSuffix returns a short unique string for generating non-conflicting test data.
func uniqueSuffix() string {
	return uuid.New().String()[:8]
}

// UniqueUserKey returns a fresh user key so tests sharing the container do not
// see each other's data.
func UniqueUserKey() string {
	return "user-" + uniqueSuffix()
}

// SeedLearner creates a learner profile row. Returns the filled profile.
func SeedLearner(t *testing.T, pool *pgxpool.Pool, userKey string, level domain.CEFRLevel, theta float64) domain.LearnerProfile {
	t.Helper()
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Microsecond)
	profile := domain.LearnerProfile{
		UserKey:       userKey,
		Level:         level,
		Theta:         theta,
		LastPlacement: &now,
	}

	_, err := pool.Exec(ctx,
		`INSERT INTO learners (user_key, level, theta, last_placement)
		 VALUES ($1, $2, $3, $4)`,
		profile.UserKey, profile.Level, profile.Theta, profile.LastPlacement,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedLearner insert: %v", err)
	}

	return profile
}

// SeedItem creates a content item. Pass a nil theta for uncalibrated items.
func SeedItem(t *testing.T, pool *pgxpool.Pool, language string, itemType domain.ItemType, payload domain.ItemPayload, theta *float64) domain.Item {
	t.Helper()
	ctx := context.Background()

	item := domain.Item{
		ID:        uuid.New(),
		Language:  language,
		Type:      itemType,
		Payload:   payload,
		Theta:     theta,
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}

	payloadJSON, err := json.Marshal(item.Payload)
	if err != nil {
		t.Fatalf("testhelper: SeedItem marshal payload: %v", err)
	}

	_, err = pool.Exec(ctx,
		`INSERT INTO items (id, language, item_type, payload, theta, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		item.ID, item.Language, item.Type, payloadJSON, item.Theta, item.CreatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedItem insert: %v", err)
	}

	return item
}

// SeedVocabularyItem creates a calibrated vocabulary item with the given
// headword and difficulty.
func SeedVocabularyItem(t *testing.T, pool *pgxpool.Pool, language, word string, theta float64) domain.Item {
	t.Helper()

	return SeedItem(t, pool, language, domain.ItemTypeVocabulary, domain.ItemPayload{
		TargetWord:  word,
		Translation: "translation-" + word,
	}, &theta)
}

// SeedMemoryState creates a memory state row for a (user, item) pair.
func SeedMemoryState(t *testing.T, pool *pgxpool.Pool, state domain.MemoryState) domain.MemoryState {
	t.Helper()
	ctx := context.Background()

	_, err := pool.Exec(ctx,
		`INSERT INTO memory_states (user_key, item_id, state, stability, difficulty,
		                            reps, lapses, scheduled_days, elapsed_days, due, last_review)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		state.UserKey, state.ItemID, state.State, state.Stability, state.Difficulty,
		state.Reps, state.Lapses, state.ScheduledDays, state.ElapsedDays, state.Due, state.LastReview,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedMemoryState insert: %v", err)
	}

	return state
}

// SeedReviewLog creates one review log row.
func SeedReviewLog(t *testing.T, pool *pgxpool.Pool, userKey string, itemID uuid.UUID, rating domain.Rating, reviewedAt time.Time) domain.ReviewLog {
	t.Helper()
	ctx := context.Background()

	log := domain.ReviewLog{
		ID:         uuid.New(),
		UserKey:    userKey,
		ItemID:     itemID,
		Rating:     rating,
		ReviewedAt: reviewedAt.UTC().Truncate(time.Microsecond),
	}

	_, err := pool.Exec(ctx,
		`INSERT INTO review_logs (id, user_key, item_id, rating, duration_ms, reviewed_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		log.ID, log.UserKey, log.ItemID, log.Rating, log.DurationMs, log.ReviewedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedReviewLog insert: %v", err)
	}

	return log
}

// SeedPlacementSession creates a placement session row.
func SeedPlacementSession(t *testing.T, pool *pgxpool.Pool, userKey, language string, theta, se float64) domain.PlacementSession {
	t.Helper()
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Microsecond)
	session := domain.PlacementSession{
		ID:        uuid.New(),
		UserKey:   userKey,
		Language:  language,
		Theta:     theta,
		SE:        se,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := pool.Exec(ctx,
		`INSERT INTO placement_sessions (id, user_key, language, theta, se, items_completed, complete, final_level, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		session.ID, session.UserKey, session.Language, session.Theta, session.SE,
		session.ItemsCompleted, session.Complete, session.FinalLevel,
		session.CreatedAt, session.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedPlacementSession insert: %v", err)
	}

	return session
}
