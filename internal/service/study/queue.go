package study

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/polyglothq/adaptive-srs/internal/domain"
)

// BuildQueue composes a review session for the learner: due cards first,
// then cards still in their learning steps, then unseen items, all inside
// the difficulty band around the learner's ability. Remaining slots are
// filled with out-of-band items of the same language. An empty result is
// valid; it means the learner has caught up.
func (s *Service) BuildQueue(ctx context.Context, input BuildQueueInput) (*QueueResult, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	count := input.Count
	if count == 0 {
		count = s.cfg.DefaultQueueSize
	}
	if count > s.cfg.MaxQueueSize {
		count = s.cfg.MaxQueueSize
	}

	profile, err := s.profile(ctx, input.UserKey)
	if err != nil {
		return nil, err
	}

	target := profile.Level.Theta()
	lo, hi := target-s.cfg.BandWidth, target+s.cfg.BandWidth
	now := time.Now()

	result := &QueueResult{
		UserCEFR: profile.Level,
		Band:     [2]float64{lo, hi},
	}
	chosen := make(map[uuid.UUID]struct{}, count)

	// Tier 1: due REVIEW/RELEARNING cards in band, earliest due first.
	due, err := s.items.ListDueInBand(ctx, input.UserKey, input.Language, lo, hi,
		[]domain.CardState{domain.CardStateReview, domain.CardStateRelearning}, now, count)
	if err != nil {
		return nil, fmt.Errorf("list due cards: %w", err)
	}
	for _, d := range due {
		result.Items = append(result.Items, d.Item)
		chosen[d.Item.ID] = struct{}{}
	}
	result.Breakdown.Due = len(due)

	// Tier 2: cards still in learning steps.
	if len(result.Items) < count {
		learning, err := s.items.ListDueInBand(ctx, input.UserKey, input.Language, lo, hi,
			[]domain.CardState{domain.CardStateLearning}, now, count-len(result.Items))
		if err != nil {
			return nil, fmt.Errorf("list learning cards: %w", err)
		}
		for _, d := range learning {
			if _, dup := chosen[d.Item.ID]; dup {
				continue
			}
			result.Items = append(result.Items, d.Item)
			chosen[d.Item.ID] = struct{}{}
			result.Breakdown.Learning++
		}
	}

	// Tier 3: unseen items in band, randomized by the query.
	if len(result.Items) < count {
		fresh, err := s.items.ListNewInBand(ctx, input.UserKey, input.Language, lo, hi, count-len(result.Items))
		if err != nil {
			return nil, fmt.Errorf("list new items: %w", err)
		}
		for _, item := range fresh {
			if _, dup := chosen[item.ID]; dup {
				continue
			}
			result.Items = append(result.Items, item)
			chosen[item.ID] = struct{}{}
			result.Breakdown.New++
		}
	}

	// Tier 4: overflow from outside the band.
	if len(result.Items) < count {
		exclude := make([]uuid.UUID, 0, len(chosen))
		for id := range chosen {
			exclude = append(exclude, id)
		}
		overflow, err := s.items.ListAny(ctx, input.Language, exclude, count-len(result.Items))
		if err != nil {
			return nil, fmt.Errorf("list overflow items: %w", err)
		}
		result.Items = append(result.Items, overflow...)
	}

	result.Breakdown.Total = len(result.Items)

	s.log.InfoContext(ctx, "session composed",
		slog.String("user", input.UserKey),
		slog.String("language", input.Language),
		slog.String("cefr", string(profile.Level)),
		slog.Int("due", result.Breakdown.Due),
		slog.Int("learning", result.Breakdown.Learning),
		slog.Int("new", result.Breakdown.New),
		slog.Int("total", result.Breakdown.Total),
	)

	return result, nil
}
