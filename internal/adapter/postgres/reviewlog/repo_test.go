package reviewlog_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/polyglothq/adaptive-srs/internal/adapter/postgres/reviewlog"
	"github.com/polyglothq/adaptive-srs/internal/adapter/postgres/testhelper"
	"github.com/polyglothq/adaptive-srs/internal/domain"
)

func newRepo(t *testing.T) (*reviewlog.Repo, *pgxpool.Pool) {
	t.Helper()
	pool := testhelper.SetupTestDB(t)
	return reviewlog.New(pool), pool
}

func TestRepo_Append_AndCount(t *testing.T) {
	t.Parallel()
	repo, pool := newRepo(t)
	ctx := context.Background()

	userKey := testhelper.UniqueUserKey()
	item := testhelper.SeedVocabularyItem(t, pool, "ru", "w-"+userKey, 0)

	duration := 3500
	err := repo.Append(ctx, &domain.ReviewLog{
		ID:         uuid.New(),
		UserKey:    userKey,
		ItemID:     item.ID,
		Rating:     domain.RatingGood,
		DurationMs: &duration,
		ReviewedAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("Append: unexpected error: %v", err)
	}

	total, err := repo.CountByUser(ctx, userKey)
	if err != nil {
		t.Fatalf("CountByUser: unexpected error: %v", err)
	}
	if total != 1 {
		t.Errorf("total = %d, want 1", total)
	}
}

func TestRepo_RatingBreakdown(t *testing.T) {
	t.Parallel()
	repo, pool := newRepo(t)
	ctx := context.Background()

	userKey := testhelper.UniqueUserKey()
	item := testhelper.SeedVocabularyItem(t, pool, "ru", "w-"+userKey, 0)

	now := time.Now()
	testhelper.SeedReviewLog(t, pool, userKey, item.ID, domain.RatingGood, now)
	testhelper.SeedReviewLog(t, pool, userKey, item.ID, domain.RatingGood, now)
	testhelper.SeedReviewLog(t, pool, userKey, item.ID, domain.RatingAgain, now)

	counts, err := repo.RatingBreakdown(ctx, userKey)
	if err != nil {
		t.Fatalf("RatingBreakdown: unexpected error: %v", err)
	}

	if len(counts) != 2 {
		t.Fatalf("got %d ratings, want 2", len(counts))
	}
	// Ordered by rating ascending.
	if counts[0].Rating != domain.RatingAgain || counts[0].Count != 1 {
		t.Errorf("counts[0] = %+v, want AGAIN x1", counts[0])
	}
	if counts[1].Rating != domain.RatingGood || counts[1].Count != 2 {
		t.Errorf("counts[1] = %+v, want GOOD x2", counts[1])
	}
}

func TestRepo_DailyActivity_WindowsAndOrders(t *testing.T) {
	t.Parallel()
	repo, pool := newRepo(t)
	ctx := context.Background()

	userKey := testhelper.UniqueUserKey()
	item := testhelper.SeedVocabularyItem(t, pool, "ru", "w-"+userKey, 0)

	now := time.Now()
	testhelper.SeedReviewLog(t, pool, userKey, item.ID, domain.RatingGood, now)
	testhelper.SeedReviewLog(t, pool, userKey, item.ID, domain.RatingEasy, now)
	testhelper.SeedReviewLog(t, pool, userKey, item.ID, domain.RatingGood, now.AddDate(0, 0, -2))
	// Outside the window.
	testhelper.SeedReviewLog(t, pool, userKey, item.ID, domain.RatingGood, now.AddDate(0, 0, -40))

	days, err := repo.DailyActivity(ctx, userKey, 30)
	if err != nil {
		t.Fatalf("DailyActivity: unexpected error: %v", err)
	}

	if len(days) != 2 {
		t.Fatalf("got %d days, want 2", len(days))
	}
	// Most recent day first.
	if days[0].Count != 2 {
		t.Errorf("days[0].Count = %d, want 2", days[0].Count)
	}
	if !days[0].Date.After(days[1].Date) {
		t.Errorf("days not ordered newest first: %v, %v", days[0].Date, days[1].Date)
	}
}

func TestRepo_LanguageBreakdown(t *testing.T) {
	t.Parallel()
	repo, pool := newRepo(t)
	ctx := context.Background()

	userKey := testhelper.UniqueUserKey()
	ruItem := testhelper.SeedVocabularyItem(t, pool, "ru", "w1-"+userKey, 0)
	enItem := testhelper.SeedVocabularyItem(t, pool, "en", "w2-"+userKey, 0)

	now := time.Now()
	testhelper.SeedReviewLog(t, pool, userKey, ruItem.ID, domain.RatingGood, now)
	testhelper.SeedReviewLog(t, pool, userKey, ruItem.ID, domain.RatingGood, now)
	testhelper.SeedReviewLog(t, pool, userKey, enItem.ID, domain.RatingHard, now)

	counts, err := repo.LanguageBreakdown(ctx, userKey)
	if err != nil {
		t.Fatalf("LanguageBreakdown: unexpected error: %v", err)
	}

	if len(counts) != 2 {
		t.Fatalf("got %d languages, want 2", len(counts))
	}
	// Largest first.
	if counts[0].Language != "ru" || counts[0].Count != 2 {
		t.Errorf("counts[0] = %+v, want ru x2", counts[0])
	}
}
