package fsrs

import (
	"fmt"
	"math"
	"time"

	"github.com/polyglothq/adaptive-srs/internal/domain"
)

// Card holds the FSRS state of one (learner, item) pair.
type Card struct {
	State         domain.CardState
	Stability     float64
	Difficulty    float64
	Due           time.Time
	LastReview    *time.Time
	Reps          int
	Lapses        int
	ScheduledDays int
	ElapsedDays   int
}

// Log records the transition a review produced.
type Log struct {
	Rating        domain.Rating
	ElapsedDays   int
	ScheduledDays int
	ReviewedAt    time.Time
	PrevState     domain.CardState
}

// Parameters holds all FSRS v4 configuration.
type Parameters struct {
	W                      [19]float64
	LearningSteps          []time.Duration
	RelearningSteps        []time.Duration
	GraduatingIntervalGood int
	GraduatingIntervalEasy int
	MaximumIntervalDays    int
	HardIntervalFactor     float64
}

// DefaultParameters returns the reference FSRS v4 defaults.
func DefaultParameters() Parameters {
	return Parameters{
		W:                      DefaultWeights,
		LearningSteps:          []time.Duration{time.Minute, 10 * time.Minute},
		RelearningSteps:        []time.Duration{10 * time.Minute},
		GraduatingIntervalGood: 1,
		GraduatingIntervalEasy: 4,
		MaximumIntervalDays:    36500,
		HardIntervalFactor:     1.2,
	}
}

// ReviewCard is the main entry point: given current card state, rating, and
// time, return the updated card and a log of the transition. Pure: no I/O,
// deterministic for identical inputs.
func ReviewCard(params Parameters, card Card, rating domain.Rating, now time.Time) (Card, Log, error) {
	if !rating.IsValid() {
		return Card{}, Log{}, fmt.Errorf("rating %d: %w", rating, domain.ErrInvalidRating)
	}

	log := Log{
		Rating:     rating,
		ReviewedAt: now,
		PrevState:  card.State,
	}

	var next Card
	switch card.State {
	case domain.CardStateNew:
		next = reviewNew(params, card, rating, now)
	case domain.CardStateLearning, domain.CardStateRelearning:
		next = reviewLearning(params, card, rating, now)
	case domain.CardStateReview:
		next = reviewReview(params, card, rating, now)
	default:
		return Card{}, Log{}, fmt.Errorf("unknown card state: %q", card.State)
	}

	log.ElapsedDays = next.ElapsedDays
	log.ScheduledDays = next.ScheduledDays
	return next, log, nil
}

// elapsedDays computes whole days since the last review, never negative.
// A card with no recorded review has elapsed 0.
func elapsedDays(card Card, now time.Time) int {
	if card.LastReview == nil {
		return 0
	}
	d := int(math.Floor(now.Sub(*card.LastReview).Hours() / 24))
	if d < 0 {
		return 0
	}
	return d
}

// reviewNew handles a NEW card's first review.
func reviewNew(params Parameters, card Card, rating domain.Rating, now time.Time) Card {
	card.Reps++
	card.LastReview = &now
	card.ElapsedDays = 0

	card.Stability = InitialStability(params.W, rating)
	// All first ratings start from the Good difficulty baseline except Easy.
	card.Difficulty = InitialDifficulty(params.W, domain.RatingGood)

	switch rating {
	case domain.RatingAgain:
		card.State = domain.CardStateLearning
		card.Lapses++
		card.ScheduledDays = 0
		card.Due = now.Add(params.LearningSteps[0])

	case domain.RatingHard:
		card.State = domain.CardStateLearning
		card.ScheduledDays = 0
		card.Due = now.Add(params.LearningSteps[len(params.LearningSteps)-1])

	case domain.RatingGood:
		card.State = domain.CardStateReview
		card.ScheduledDays = params.GraduatingIntervalGood
		card.Due = now.Add(time.Duration(card.ScheduledDays) * 24 * time.Hour)

	case domain.RatingEasy:
		card.State = domain.CardStateReview
		card.Difficulty = InitialDifficulty(params.W, domain.RatingEasy)
		card.ScheduledDays = params.GraduatingIntervalEasy
		card.Due = now.Add(time.Duration(card.ScheduledDays) * 24 * time.Hour)
	}

	return card
}

// reviewLearning handles LEARNING and RELEARNING cards.
func reviewLearning(params Parameters, card Card, rating domain.Rating, now time.Time) Card {
	elapsed := elapsedDays(card, now)
	fromRelearning := card.State == domain.CardStateRelearning

	card.Reps++
	card.ElapsedDays = elapsed

	switch rating {
	case domain.RatingAgain:
		// Reset to the first learning step; the state label is kept.
		card.Lapses++
		card.ScheduledDays = 0
		card.Due = now.Add(params.LearningSteps[0])

	case domain.RatingHard, domain.RatingGood:
		card.State = domain.CardStateReview
		var interval int
		if fromRelearning {
			r := Retrievability(elapsed, card.Stability)
			card.Stability = NextStability(params.W, card.Stability, card.Difficulty, r, rating, float64(params.MaximumIntervalDays))
			card.Difficulty = NextDifficulty(params.W, card.Difficulty, rating)
			if rating == domain.RatingHard {
				interval = max(1, int(card.Stability*params.HardIntervalFactor))
			} else {
				interval = max(1, int(card.Stability))
			}
		} else {
			interval = params.GraduatingIntervalGood
		}
		card.ScheduledDays = interval
		card.Due = now.Add(time.Duration(interval) * 24 * time.Hour)

	case domain.RatingEasy:
		card.State = domain.CardStateReview
		var interval int
		if fromRelearning {
			r := Retrievability(elapsed, card.Stability)
			card.Stability = NextStability(params.W, card.Stability, card.Difficulty, r, rating, float64(params.MaximumIntervalDays))
			card.Difficulty = NextDifficulty(params.W, card.Difficulty, rating)
			interval = max(params.GraduatingIntervalEasy, int(card.Stability))
		} else {
			card.Difficulty = InitialDifficulty(params.W, domain.RatingEasy)
			interval = params.GraduatingIntervalEasy
		}
		card.ScheduledDays = interval
		card.Due = now.Add(time.Duration(interval) * 24 * time.Hour)
	}

	card.LastReview = &now
	return card
}

// reviewReview handles REVIEW cards.
func reviewReview(params Parameters, card Card, rating domain.Rating, now time.Time) Card {
	elapsed := elapsedDays(card, now)
	r := Retrievability(elapsed, card.Stability)

	card.Reps++
	card.ElapsedDays = elapsed

	newS := NextStability(params.W, card.Stability, card.Difficulty, r, rating, float64(params.MaximumIntervalDays))
	newD := NextDifficulty(params.W, card.Difficulty, rating)
	card.Stability = newS
	card.Difficulty = newD

	if rating == domain.RatingAgain {
		card.State = domain.CardStateRelearning
		card.Lapses++
		card.ScheduledDays = 0
		card.Due = now.Add(params.RelearningSteps[0])
	} else {
		var interval int
		if rating == domain.RatingHard {
			interval = max(1, int(card.Stability*params.HardIntervalFactor))
		} else {
			interval = max(1, int(card.Stability))
		}
		interval = min(interval, params.MaximumIntervalDays)
		card.ScheduledDays = interval
		card.Due = now.Add(time.Duration(interval) * 24 * time.Hour)
	}

	card.LastReview = &now
	return card
}
