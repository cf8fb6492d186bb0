package study

import (
	"github.com/google/uuid"

	"github.com/polyglothq/adaptive-srs/internal/domain"
)

// QueueBreakdown counts how the composed session splits across tiers.
type QueueBreakdown struct {
	Due      int
	Learning int
	New      int
	Total    int
}

// QueueResult is a composed review session.
type QueueResult struct {
	Items     []domain.Item
	UserCEFR  domain.CEFRLevel
	Breakdown QueueBreakdown
	Band      [2]float64
}

// ReviewError reports why one item of a batch was not applied.
type ReviewError struct {
	ItemID uuid.UUID
	Reason string
}

// CreditedWord reports one memory-state update a sentence review produced.
type CreditedWord struct {
	Word       string
	Type       domain.CreditType
	Multiplier float64
	Rating     domain.Rating
}

// SubmitReviewsResult summarizes a processed batch.
type SubmitReviewsResult struct {
	Updated  int
	Credited []CreditedWord
	Errors   []ReviewError
}
