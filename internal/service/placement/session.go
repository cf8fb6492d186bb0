package placement

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/polyglothq/adaptive-srs/internal/domain"
	"github.com/polyglothq/adaptive-srs/internal/service/placement/cat"
)

// StartSession opens a placement session. A claimed level seeds the ability
// estimate; otherwise the learner starts at the scale midpoint. Fails with
// ErrNoPlacementItems when no item in the language carries a difficulty.
func (s *Service) StartSession(ctx context.Context, input StartSessionInput) (*StartSessionResult, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	theta := s.params.InitialTheta
	if input.ClaimedLevel != nil {
		theta = input.ClaimedLevel.Theta()
	}

	candidates, err := s.nextCandidates(ctx, input.Language, nil)
	if err != nil {
		return nil, fmt.Errorf("list placement candidates: %w", err)
	}

	first, ok := cat.SelectItem(s.params, theta, candidates)
	if !ok {
		return nil, domain.ErrNoPlacementItems
	}

	item, err := s.items.GetByID(ctx, first.ItemID)
	if err != nil {
		return nil, fmt.Errorf("get first item: %w", err)
	}

	now := time.Now()
	session := &domain.PlacementSession{
		ID:        uuid.New(),
		UserKey:   input.UserKey,
		Language:  input.Language,
		Theta:     theta,
		SE:        s.params.InitialSE,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	s.log.InfoContext(ctx, "placement session started",
		slog.String("user", input.UserKey),
		slog.String("language", input.Language),
		slog.String("session_id", session.ID.String()),
		slog.Float64("theta", theta),
	)

	return &StartSessionResult{
		SessionID: session.ID,
		Item:      *item,
		Progress:  s.progress(session.Theta, session.SE, 0),
	}, nil
}

// SubmitAnswer applies one rated answer to an open session. When the stop
// rule fires the session completes, the learner's profile is updated, and
// final results are returned; otherwise the next item is selected.
func (s *Service) SubmitAnswer(ctx context.Context, input SubmitAnswerInput) (*SubmitAnswerResult, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	session, err := s.loadSession(ctx, input.SessionID, input.UserKey)
	if err != nil {
		return nil, err
	}

	item, err := s.items.GetByID(ctx, input.ItemID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("get item: %w", err)
	}
	if err != nil || item.Theta == nil {
		// A vanished or difficulty-less item is unrecoverable mid-session:
		// freeze the session at its last known state.
		if abortErr := s.finalize(ctx, session, session.Theta, session.SE, time.Now()); abortErr != nil {
			return nil, abortErr
		}
		return nil, domain.ErrUnknownItem
	}

	now := time.Now()
	correct, confidence := cat.MapRating(input.Rating)
	thetaAfter, seAfter := cat.UpdateAbility(s.params, session.Theta, session.SE, *item.Theta, correct, confidence)
	completed := session.ItemsCompleted + 1

	used, err := s.sessions.ListResponseItemIDs(ctx, session.ID)
	if err != nil {
		return nil, fmt.Errorf("list used items: %w", err)
	}
	used = append(used, input.ItemID)

	candidates, err := s.nextCandidates(ctx, session.Language, used)
	if err != nil {
		return nil, fmt.Errorf("list placement candidates: %w", err)
	}

	stop := cat.ShouldStop(s.params, seAfter, completed, len(candidates) == 0)

	var finalLevel domain.CEFRLevel
	if stop {
		finalLevel = domain.LevelForTheta(thetaAfter)
	}

	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.sessions.AppendResponse(txCtx, &domain.PlacementResponse{
			ID:          uuid.New(),
			SessionID:   session.ID,
			Seq:         completed,
			ItemID:      input.ItemID,
			Rating:      input.Rating,
			Correct:     correct,
			ThetaBefore: session.Theta,
			ThetaAfter:  thetaAfter,
			SEBefore:    session.SE,
			SEAfter:     seAfter,
			DurationMs:  input.DurationMs,
			AnsweredAt:  now,
		}); err != nil {
			return fmt.Errorf("append response: %w", err)
		}

		var level *domain.CEFRLevel
		if stop {
			level = &finalLevel
		}
		if err := s.sessions.UpdateProgress(txCtx, session.ID, session.ItemsCompleted, completed, thetaAfter, seAfter, stop, level); err != nil {
			return fmt.Errorf("update session: %w", err)
		}

		if stop {
			if err := s.learners.Upsert(txCtx, domain.LearnerProfile{
				UserKey:       session.UserKey,
				Level:         finalLevel,
				Theta:         thetaAfter,
				LastPlacement: &now,
			}); err != nil {
				return fmt.Errorf("upsert learner: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		// A counter mismatch means a parallel submission won; the caller's
		// view of the session is stale.
		if errors.Is(err, domain.ErrConflict) {
			return nil, domain.ErrSessionUnavailable
		}
		return nil, err
	}

	feedback := &Feedback{
		WasCorrect:    correct,
		CorrectAnswer: correctAnswer(*item),
	}

	if stop {
		lo, hi := cat.ConfidenceInterval(thetaAfter, seAfter)
		s.log.InfoContext(ctx, "placement session completed",
			slog.String("session_id", session.ID.String()),
			slog.String("level", string(finalLevel)),
			slog.Float64("theta", thetaAfter),
			slog.Int("items", completed),
		)
		return &SubmitAnswerResult{
			Complete: true,
			Feedback: feedback,
			Results: &FinalResults{
				Level:          finalLevel,
				Theta:          thetaAfter,
				CI:             [2]float64{lo, hi},
				ItemsCompleted: completed,
				KnownWords:     cat.KnownWords(finalLevel),
			},
		}, nil
	}

	next, _ := cat.SelectItem(s.params, thetaAfter, candidates)
	nextItem, err := s.items.GetByID(ctx, next.ItemID)
	if err != nil {
		return nil, fmt.Errorf("get next item: %w", err)
	}

	progress := s.progress(thetaAfter, seAfter, completed)
	return &SubmitAnswerResult{
		Item:     nextItem,
		Feedback: feedback,
		Progress: &progress,
	}, nil
}

// Cancel freezes an open session at its last known ability state. The final
// CEFR is computed from the last theta and the learner's profile is updated,
// so a partial run still counts.
func (s *Service) Cancel(ctx context.Context, input CancelSessionInput) (*FinalResults, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	session, err := s.loadSession(ctx, input.SessionID, input.UserKey)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if err := s.finalize(ctx, session, session.Theta, session.SE, now); err != nil {
		return nil, err
	}

	finalLevel := domain.LevelForTheta(session.Theta)
	lo, hi := cat.ConfidenceInterval(session.Theta, session.SE)

	s.log.InfoContext(ctx, "placement session cancelled",
		slog.String("session_id", session.ID.String()),
		slog.String("level", string(finalLevel)),
		slog.Int("items", session.ItemsCompleted),
	)

	return &FinalResults{
		Level:          finalLevel,
		Theta:          session.Theta,
		CI:             [2]float64{lo, hi},
		ItemsCompleted: session.ItemsCompleted,
		KnownWords:     cat.KnownWords(finalLevel),
	}, nil
}

// finalize marks the session complete with the given state and updates the
// learner's profile, atomically.
func (s *Service) finalize(ctx context.Context, session *domain.PlacementSession, theta, se float64, now time.Time) error {
	finalLevel := domain.LevelForTheta(theta)

	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.sessions.UpdateProgress(txCtx, session.ID, session.ItemsCompleted, session.ItemsCompleted, theta, se, true, &finalLevel); err != nil {
			return fmt.Errorf("complete session: %w", err)
		}
		return s.learners.Upsert(txCtx, domain.LearnerProfile{
			UserKey:       session.UserKey,
			Level:         finalLevel,
			Theta:         theta,
			LastPlacement: &now,
		})
	})
	if err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return domain.ErrSessionUnavailable
		}
		return err
	}
	return nil
}

// progress builds the progress snapshot shown between items.
func (s *Service) progress(theta, se float64, completed int) Progress {
	lo, hi := cat.ConfidenceInterval(theta, se)
	return Progress{
		ItemsCompleted: completed,
		EstimatedLevel: domain.LevelForTheta(theta),
		CI:             [2]float64{lo, hi},
	}
}

// correctAnswer is what the learner is shown after answering. Translation
// when the item has one, else the target word itself.
func correctAnswer(item domain.Item) string {
	if item.Payload.Translation != "" {
		return item.Payload.Translation
	}
	return item.Payload.TargetWord
}
