// Package study implements the review flow: composing session queues and
// applying rated reviews to per-word memory state through the FSRS scheduler,
// with contextual credit distribution for sentence items.
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

// ---------------------------------------------------------------------------
// Consumer-defined interfaces (private)
// ---------------------------------------------------------------------------

type learnerRepo interface {
	Get(ctx context.Context, userKey string) (*domain.LearnerProfile, error)
}

type itemRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Item, error)
	GetByTargetWord(ctx context.Context, language, word string) (*domain.Item, error)
	ListDueInBand(ctx context.Context, userKey, language string, thetaLo, thetaHi float64, states []domain.CardState, now time.Time, limit int) ([]domain.DueCard, error)
	ListNewInBand(ctx context.Context, userKey, language string, thetaLo, thetaHi float64, limit int) ([]domain.Item, error)
	ListAny(ctx context.Context, language string, excludeIDs []uuid.UUID, limit int) ([]domain.Item, error)
}

type memoryRepo interface {
	Get(ctx context.Context, userKey string, itemID uuid.UUID) (*domain.MemoryState, error)
	Upsert(ctx context.Context, state domain.MemoryState) error
}

type reviewLogRepo interface {
	Append(ctx context.Context, log *domain.ReviewLog) error
}

type creditDistributor interface {
	Distribute(language, sentence, targetWord string, rating domain.Rating, level domain.CEFRLevel) ([]domain.WordCredit, error)
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// ---------------------------------------------------------------------------
// Service
// ---------------------------------------------------------------------------

// Config holds the session-composition tunables.
type Config struct {
	// BandWidth is the half-width of the allowed difficulty band around the
	// learner's ability anchor.
	BandWidth float64
	// DefaultQueueSize is used when the request does not specify a count.
	DefaultQueueSize int
	// MaxQueueSize bounds a single session batch.
	MaxQueueSize int
}

// DefaultConfig returns the session defaults.
func DefaultConfig() Config {
	return Config{
		BandWidth:        1.0,
		DefaultQueueSize: 10,
		MaxQueueSize:     50,
	}
}

// Service implements the study business logic.
type Service struct {
	learners    learnerRepo
	items       itemRepo
	memories    memoryRepo
	reviews     reviewLogRepo
	distributor creditDistributor
	tx          txManager
	log         *slog.Logger
	cfg         Config
	fsrsParams  fsrs.Parameters
}

// NewService creates a new study service.
func NewService(
	log *slog.Logger,
	learners learnerRepo,
	items itemRepo,
	memories memoryRepo,
	reviews reviewLogRepo,
	distributor creditDistributor,
	tx txManager,
	cfg Config,
	fsrsParams fsrs.Parameters,
) (*Service, error) {
	if err := fsrs.ValidateWeights(fsrsParams.W); err != nil {
		return nil, fmt.Errorf("invalid FSRS weights: %w", err)
	}

	return &Service{
		learners:    learners,
		items:       items,
		memories:    memories,
		reviews:     reviews,
		distributor: distributor,
		tx:          tx,
		log:         log.With("service", "study"),
		cfg:         cfg,
		fsrsParams:  fsrsParams,
	}, nil
}

// profile loads the learner's profile, falling back to the defaults when the
// user has never been placed.
func (s *Service) profile(ctx context.Context, userKey string) (domain.LearnerProfile, error) {
	p, err := s.learners.Get(ctx, userKey)
	if err != nil {
		if isNotFound(err) {
			return domain.DefaultLearnerProfile(userKey), nil
		}
		return domain.LearnerProfile{}, fmt.Errorf("get learner: %w", err)
	}
	return *p, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}
