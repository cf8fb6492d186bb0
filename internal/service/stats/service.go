// Package stats aggregates a learner's review history into the numbers the
// dashboard shows. All counting happens in SQL; this service only combines
// the aggregates.
package stats

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/polyglothq/adaptive-srs/internal/domain"
)

// activityWindowDays is how far back the daily-activity series reaches.
const activityWindowDays = 30

type learnerRepo interface {
	Get(ctx context.Context, userKey string) (*domain.LearnerProfile, error)
}

type reviewLogRepo interface {
	CountByUser(ctx context.Context, userKey string) (int, error)
	RatingBreakdown(ctx context.Context, userKey string) ([]domain.RatingCount, error)
	DailyActivity(ctx context.Context, userKey string, lastNDays int) ([]domain.DayReviewCount, error)
	LanguageBreakdown(ctx context.Context, userKey string) ([]domain.LanguageCount, error)
}

// UserStats is the aggregated view of one learner's history.
type UserStats struct {
	UserKey         string
	Level           domain.CEFRLevel
	Theta           float64
	TotalReviews    int
	AccuracyPercent float64
	StreakDays      int
	Ratings         []domain.RatingCount
	DailyActivity   []domain.DayReviewCount
	Languages       []domain.LanguageCount
}

// Service implements the stats business logic.
type Service struct {
	learners learnerRepo
	reviews  reviewLogRepo
	log      *slog.Logger
}

// NewService creates a new stats service.
func NewService(log *slog.Logger, learners learnerRepo, reviews reviewLogRepo) *Service {
	return &Service{
		learners: learners,
		reviews:  reviews,
		log:      log.With("service", "stats"),
	}
}

// GetUserStats returns the learner's aggregated review statistics. Unknown
// users get the default profile with zeroed counters.
func (s *Service) GetUserStats(ctx context.Context, userKey string) (*UserStats, error) {
	if userKey == "" {
		return nil, domain.NewValidationError("user", "required")
	}

	profile, err := s.learners.Get(ctx, userKey)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("get learner: %w", err)
		}
		p := domain.DefaultLearnerProfile(userKey)
		profile = &p
	}

	total, err := s.reviews.CountByUser(ctx, userKey)
	if err != nil {
		return nil, fmt.Errorf("count reviews: %w", err)
	}

	ratings, err := s.reviews.RatingBreakdown(ctx, userKey)
	if err != nil {
		return nil, fmt.Errorf("rating breakdown: %w", err)
	}

	daily, err := s.reviews.DailyActivity(ctx, userKey, activityWindowDays)
	if err != nil {
		return nil, fmt.Errorf("daily activity: %w", err)
	}

	languages, err := s.reviews.LanguageBreakdown(ctx, userKey)
	if err != nil {
		return nil, fmt.Errorf("language breakdown: %w", err)
	}

	return &UserStats{
		UserKey:         userKey,
		Level:           profile.Level,
		Theta:           profile.Theta,
		TotalReviews:    total,
		AccuracyPercent: accuracy(ratings, total),
		StreakDays:      len(daily),
		Ratings:         ratings,
		DailyActivity:   daily,
		Languages:       languages,
	}, nil
}

// accuracy is the share of reviews rated GOOD or better, as a percentage
// rounded to one decimal.
func accuracy(ratings []domain.RatingCount, total int) float64 {
	if total == 0 {
		return 0
	}
	correct := 0
	for _, rc := range ratings {
		if rc.Rating >= domain.RatingGood {
			correct += rc.Count
		}
	}
	return math.Round(float64(correct)/float64(total)*1000) / 10
}
