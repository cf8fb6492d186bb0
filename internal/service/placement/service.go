// Package placement drives adaptive CEFR placement sessions: item selection
// by Fisher information, ability updates per answer, and finalization of the
// learner's profile when the stop rule fires.
package placement

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/polyglothq/adaptive-srs/internal/domain"
	"github.com/polyglothq/adaptive-srs/internal/service/placement/cat"
)

// ---------------------------------------------------------------------------
// Consumer-defined interfaces (private)
// ---------------------------------------------------------------------------

type learnerRepo interface {
	Upsert(ctx context.Context, profile domain.LearnerProfile) error
}

type itemRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Item, error)
	ListPlacementCandidates(ctx context.Context, language string, excludeIDs []uuid.UUID, limit int) ([]domain.Item, error)
}

type sessionRepo interface {
	Create(ctx context.Context, session *domain.PlacementSession) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.PlacementSession, error)
	// UpdateProgress applies new ability state guarded by the stored
	// items-completed counter; a counter mismatch returns domain.ErrConflict.
	UpdateProgress(ctx context.Context, sessionID uuid.UUID, expectedCompleted, itemsCompleted int, theta, se float64, complete bool, finalLevel *domain.CEFRLevel) error
	AppendResponse(ctx context.Context, response *domain.PlacementResponse) error
	ListResponseItemIDs(ctx context.Context, sessionID uuid.UUID) ([]uuid.UUID, error)
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// candidatePoolLimit bounds how many placement items one selection considers.
const candidatePoolLimit = 200

// ---------------------------------------------------------------------------
// Service
// ---------------------------------------------------------------------------

// Service implements the placement business logic.
type Service struct {
	learners learnerRepo
	items    itemRepo
	sessions sessionRepo
	tx       txManager
	log      *slog.Logger
	params   cat.Parameters
}

// NewService creates a new placement service.
func NewService(
	log *slog.Logger,
	learners learnerRepo,
	items itemRepo,
	sessions sessionRepo,
	tx txManager,
	params cat.Parameters,
) *Service {
	return &Service{
		learners: learners,
		items:    items,
		sessions: sessions,
		tx:       tx,
		log:      log.With("service", "placement"),
		params:   params,
	}
}

// nextCandidates returns the unused placement pool for a session.
func (s *Service) nextCandidates(ctx context.Context, language string, usedIDs []uuid.UUID) ([]cat.Candidate, error) {
	items, err := s.items.ListPlacementCandidates(ctx, language, usedIDs, candidatePoolLimit)
	if err != nil {
		return nil, err
	}

	candidates := make([]cat.Candidate, 0, len(items))
	for _, item := range items {
		if item.Theta == nil {
			continue
		}
		candidates = append(candidates, cat.Candidate{ItemID: item.ID, Theta: *item.Theta})
	}
	return candidates, nil
}

// loadSession fetches an open session. Missing, completed, and foreign
// sessions are indistinguishable to the caller.
func (s *Service) loadSession(ctx context.Context, sessionID uuid.UUID, userKey string) (*domain.PlacementSession, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrSessionUnavailable
		}
		return nil, err
	}
	if session.Complete {
		return nil, domain.ErrSessionUnavailable
	}
	if userKey != "" && session.UserKey != userKey {
		return nil, domain.ErrSessionUnavailable
	}
	return session, nil
}
