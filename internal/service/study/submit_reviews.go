package study

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/polyglothq/adaptive-srs/internal/domain"
	"github.com/polyglothq/adaptive-srs/internal/service/study/fsrs"
)

// SubmitReviews applies a batch of rated reviews. Each item is processed
// independently: an invalid rating or unknown item fails only that entry and
// the rest of the batch continues. Sentence items route through the credit
// distributor, producing one scheduler update per credited word; all writes
// for one reviewed item share a transaction.
func (s *Service) SubmitReviews(ctx context.Context, input SubmitReviewsInput) (*SubmitReviewsResult, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	profile, err := s.profile(ctx, input.UserKey)
	if err != nil {
		return nil, err
	}

	result := &SubmitReviewsResult{}
	now := time.Now()

	for _, review := range input.Reviews {
		credited, err := s.applyReview(ctx, profile, review, now)
		if err != nil {
			// Per-item failures are reported, not fatal. Storage outages
			// abort the whole batch: nothing later would succeed either.
			if errors.Is(err, domain.ErrStorageUnavailable) {
				return nil, err
			}
			result.Errors = append(result.Errors, ReviewError{
				ItemID: review.ItemID,
				Reason: err.Error(),
			})
			continue
		}
		result.Updated++
		result.Credited = append(result.Credited, credited...)
	}

	s.log.InfoContext(ctx, "reviews submitted",
		slog.String("user", input.UserKey),
		slog.Int("batch", len(input.Reviews)),
		slog.Int("updated", result.Updated),
		slog.Int("failed", len(result.Errors)),
	)

	return result, nil
}

// applyReview processes one rated item: distributes credit when the item
// carries a sentence, then runs the scheduler once per credited word inside a
// single transaction.
func (s *Service) applyReview(ctx context.Context, profile domain.LearnerProfile, review ReviewInput, now time.Time) ([]CreditedWord, error) {
	if !review.Rating.IsValid() {
		return nil, fmt.Errorf("rating %d: %w", review.Rating, domain.ErrInvalidRating)
	}

	item, err := s.items.GetByID(ctx, review.ItemID)
	if err != nil {
		if isNotFound(err) {
			return nil, domain.ErrUnknownItem
		}
		return nil, fmt.Errorf("get item: %w", err)
	}

	var credits []domain.WordCredit
	if item.HasSentence() {
		credits, err = s.distributor.Distribute(item.Language, item.Payload.Sentence,
			item.Payload.TargetWord, review.Rating, profile.Level)
		if err != nil {
			return nil, fmt.Errorf("distribute credit: %w", err)
		}
	} else {
		credits = []domain.WordCredit{{
			Word:       item.Payload.TargetWord,
			Type:       domain.CreditPrimary,
			Multiplier: 1.0,
			Rating:     review.Rating,
		}}
	}

	// The reviewed item is updated first; supporting words follow in
	// sentence order.
	ordered := make([]domain.WordCredit, 0, len(credits))
	for _, c := range credits {
		if c.Type == domain.CreditPrimary {
			ordered = append(ordered, c)
		}
	}
	for _, c := range credits {
		if c.Type != domain.CreditPrimary {
			ordered = append(ordered, c)
		}
	}

	var credited []CreditedWord

	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		for _, credit := range ordered {
			targetItem := item
			if credit.Type != domain.CreditPrimary {
				// Supporting words only earn credit when they exist as items.
				supporting, lookupErr := s.items.GetByTargetWord(txCtx, item.Language, credit.Word)
				if lookupErr != nil {
					if isNotFound(lookupErr) {
						continue
					}
					return fmt.Errorf("lookup word %q: %w", credit.Word, lookupErr)
				}
				targetItem = supporting
			}

			var durationMs *int
			if credit.Type == domain.CreditPrimary {
				durationMs = review.DurationMs
			}

			if schedErr := s.scheduleWord(txCtx, profile.UserKey, targetItem.ID, credit.Rating, durationMs, now); schedErr != nil {
				return schedErr
			}
			credited = append(credited, CreditedWord(credit))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return credited, nil
}

// scheduleWord runs one FSRS transition for (user, item) and persists the new
// memory state plus a review-log record.
func (s *Service) scheduleWord(ctx context.Context, userKey string, itemID uuid.UUID, rating domain.Rating, durationMs *int, now time.Time) error {
	memory, err := s.memories.Get(ctx, userKey, itemID)
	if err != nil {
		if !isNotFound(err) {
			return fmt.Errorf("get memory: %w", err)
		}
		fresh := domain.NewMemoryState(userKey, itemID, now)
		memory = &fresh
	}

	card := fsrs.Card{
		State:         memory.State,
		Stability:     memory.Stability,
		Difficulty:    memory.Difficulty,
		Due:           memory.Due,
		LastReview:    memory.LastReview,
		Reps:          memory.Reps,
		Lapses:        memory.Lapses,
		ScheduledDays: memory.ScheduledDays,
		ElapsedDays:   memory.ElapsedDays,
	}

	next, _, err := fsrs.ReviewCard(s.fsrsParams, card, rating, now)
	if err != nil {
		return err
	}

	updated := domain.MemoryState{
		UserKey:       userKey,
		ItemID:        itemID,
		State:         next.State,
		Stability:     next.Stability,
		Difficulty:    next.Difficulty,
		Reps:          next.Reps,
		Lapses:        next.Lapses,
		ScheduledDays: next.ScheduledDays,
		ElapsedDays:   next.ElapsedDays,
		Due:           next.Due,
		LastReview:    next.LastReview,
	}
	if err := s.memories.Upsert(ctx, updated); err != nil {
		return fmt.Errorf("upsert memory: %w", err)
	}

	if err := s.reviews.Append(ctx, &domain.ReviewLog{
		ID:         uuid.New(),
		UserKey:    userKey,
		ItemID:     itemID,
		Rating:     rating,
		DurationMs: durationMs,
		ReviewedAt: now,
	}); err != nil {
		return fmt.Errorf("append review log: %w", err)
	}

	return nil
}
