package domain

import (
	"time"

	"github.com/google/uuid"
)

// ReviewLog is one append-only review history record.
type ReviewLog struct {
	ID         uuid.UUID
	UserKey    string
	ItemID     uuid.UUID
	Rating     Rating
	DurationMs *int
	ReviewedAt time.Time
}

// DayReviewCount is one day of review activity.
type DayReviewCount struct {
	Date  time.Time
	Count int
}

// RatingCount is the number of reviews submitted with one rating.
type RatingCount struct {
	Rating Rating
	Count  int
}

// LanguageCount is the number of reviews in one language.
type LanguageCount struct {
	Language string
	Count    int
}

// WordCredit directs the scheduler to update one word from a sentence review.
// Multiplier is in [0, 1]; words whose multiplier drops to zero are never
// emitted.
type WordCredit struct {
	Word       string
	Type       CreditType
	Multiplier float64
	Rating     Rating
}
