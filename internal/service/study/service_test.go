package study

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/polyglothq/adaptive-srs/internal/domain"
	"github.com/polyglothq/adaptive-srs/internal/service/study/credit"
	"github.com/polyglothq/adaptive-srs/internal/service/study/fsrs"
)

// ---------------------------------------------------------------------------
// Hand-rolled func-field mocks
// ---------------------------------------------------------------------------

type learnerRepoMock struct {
	GetFunc func(ctx context.Context, userKey string) (*domain.LearnerProfile, error)
}

func (m *learnerRepoMock) Get(ctx context.Context, userKey string) (*domain.LearnerProfile, error) {
	return m.GetFunc(ctx, userKey)
}

type itemRepoMock struct {
	GetByIDFunc         func(ctx context.Context, id uuid.UUID) (*domain.Item, error)
	GetByTargetWordFunc func(ctx context.Context, language, word string) (*domain.Item, error)
	ListDueInBandFunc   func(ctx context.Context, userKey, language string, thetaLo, thetaHi float64, states []domain.CardState, now time.Time, limit int) ([]domain.DueCard, error)
	ListNewInBandFunc   func(ctx context.Context, userKey, language string, thetaLo, thetaHi float64, limit int) ([]domain.Item, error)
	ListAnyFunc         func(ctx context.Context, language string, excludeIDs []uuid.UUID, limit int) ([]domain.Item, error)
}

func (m *itemRepoMock) GetByID(ctx context.Context, id uuid.UUID) (*domain.Item, error) {
	return m.GetByIDFunc(ctx, id)
}

func (m *itemRepoMock) GetByTargetWord(ctx context.Context, language, word string) (*domain.Item, error) {
	return m.GetByTargetWordFunc(ctx, language, word)
}

func (m *itemRepoMock) ListDueInBand(ctx context.Context, userKey, language string, thetaLo, thetaHi float64, states []domain.CardState, now time.Time, limit int) ([]domain.DueCard, error) {
	return m.ListDueInBandFunc(ctx, userKey, language, thetaLo, thetaHi, states, now, limit)
}

func (m *itemRepoMock) ListNewInBand(ctx context.Context, userKey, language string, thetaLo, thetaHi float64, limit int) ([]domain.Item, error) {
	return m.ListNewInBandFunc(ctx, userKey, language, thetaLo, thetaHi, limit)
}

func (m *itemRepoMock) ListAny(ctx context.Context, language string, excludeIDs []uuid.UUID, limit int) ([]domain.Item, error) {
	return m.ListAnyFunc(ctx, language, excludeIDs, limit)
}

type memoryRepoMock struct {
	GetFunc    func(ctx context.Context, userKey string, itemID uuid.UUID) (*domain.MemoryState, error)
	UpsertFunc func(ctx context.Context, state domain.MemoryState) error
}

func (m *memoryRepoMock) Get(ctx context.Context, userKey string, itemID uuid.UUID) (*domain.MemoryState, error) {
	return m.GetFunc(ctx, userKey, itemID)
}

func (m *memoryRepoMock) Upsert(ctx context.Context, state domain.MemoryState) error {
	return m.UpsertFunc(ctx, state)
}

type reviewLogRepoMock struct {
	AppendFunc func(ctx context.Context, log *domain.ReviewLog) error
}

func (m *reviewLogRepoMock) Append(ctx context.Context, log *domain.ReviewLog) error {
	return m.AppendFunc(ctx, log)
}

type txManagerMock struct{}

func (m *txManagerMock) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func defaultLearnerMock() *learnerRepoMock {
	return &learnerRepoMock{
		GetFunc: func(ctx context.Context, userKey string) (*domain.LearnerProfile, error) {
			return nil, domain.ErrNotFound
		},
	}
}

func ptr[T any](v T) *T { return &v }

func vocabularyItem(word string) *domain.Item {
	return &domain.Item{
		ID:       uuid.New(),
		Language: "ru",
		Type:     domain.ItemTypeVocabulary,
		Payload:  domain.ItemPayload{TargetWord: word},
		Theta:    ptr(0.0),
	}
}

// ---------------------------------------------------------------------------
// BuildQueue
// ---------------------------------------------------------------------------

func TestService_BuildQueue_TierOrder(t *testing.T) {
	t.Parallel()

	dueItem := vocabularyItem("дом")
	learningItem := vocabularyItem("кот")
	newItem := vocabularyItem("стол")
	overflowItem := vocabularyItem("река")

	items := &itemRepoMock{
		ListDueInBandFunc: func(ctx context.Context, userKey, language string, lo, hi float64, states []domain.CardState, now time.Time, limit int) ([]domain.DueCard, error) {
			if lo != -1 || hi != 1 {
				t.Errorf("band = [%v, %v], want [-1, 1] for default B1", lo, hi)
			}
			if len(states) == 2 {
				return []domain.DueCard{{Item: *dueItem}}, nil
			}
			return []domain.DueCard{{Item: *learningItem}}, nil
		},
		ListNewInBandFunc: func(ctx context.Context, userKey, language string, lo, hi float64, limit int) ([]domain.Item, error) {
			return []domain.Item{*newItem}, nil
		},
		ListAnyFunc: func(ctx context.Context, language string, excludeIDs []uuid.UUID, limit int) ([]domain.Item, error) {
			if len(excludeIDs) != 3 {
				t.Errorf("excludeIDs = %d, want 3", len(excludeIDs))
			}
			return []domain.Item{*overflowItem}, nil
		},
	}

	svc := &Service{
		learners: defaultLearnerMock(),
		items:    items,
		log:      slog.Default(),
		cfg:      DefaultConfig(),
	}

	result, err := svc.BuildQueue(context.Background(), BuildQueueInput{UserKey: "u1", Language: "ru", Count: 4})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.UserCEFR != domain.CEFRB1 {
		t.Errorf("cefr = %s, want B1 default", result.UserCEFR)
	}
	if result.Band != [2]float64{-1, 1} {
		t.Errorf("band = %v, want [-1, 1]", result.Band)
	}
	if result.Breakdown.Due != 1 || result.Breakdown.Learning != 1 || result.Breakdown.New != 1 || result.Breakdown.Total != 4 {
		t.Errorf("breakdown = %+v", result.Breakdown)
	}

	wantOrder := []uuid.UUID{dueItem.ID, learningItem.ID, newItem.ID, overflowItem.ID}
	for i, want := range wantOrder {
		if result.Items[i].ID != want {
			t.Errorf("items[%d] = %v, want %v", i, result.Items[i].ID, want)
		}
	}
}

func TestService_BuildQueue_EmptyPoolIsValid(t *testing.T) {
	t.Parallel()

	items := &itemRepoMock{
		ListDueInBandFunc: func(ctx context.Context, userKey, language string, lo, hi float64, states []domain.CardState, now time.Time, limit int) ([]domain.DueCard, error) {
			return nil, nil
		},
		ListNewInBandFunc: func(ctx context.Context, userKey, language string, lo, hi float64, limit int) ([]domain.Item, error) {
			return nil, nil
		},
		ListAnyFunc: func(ctx context.Context, language string, excludeIDs []uuid.UUID, limit int) ([]domain.Item, error) {
			return nil, nil
		},
	}

	svc := &Service{
		learners: defaultLearnerMock(),
		items:    items,
		log:      slog.Default(),
		cfg:      DefaultConfig(),
	}

	result, err := svc.BuildQueue(context.Background(), BuildQueueInput{UserKey: "u1", Language: "ru", Count: 10})
	if err != nil {
		t.Fatalf("empty pool must not error: %v", err)
	}
	if len(result.Items) != 0 || result.Breakdown.Total != 0 {
		t.Errorf("expected empty batch, got %+v", result.Breakdown)
	}
}

func TestService_BuildQueue_OutOfBandOverflowOnly(t *testing.T) {
	t.Parallel()

	overflow := vocabularyItem("река")

	items := &itemRepoMock{
		ListDueInBandFunc: func(ctx context.Context, userKey, language string, lo, hi float64, states []domain.CardState, now time.Time, limit int) ([]domain.DueCard, error) {
			return nil, nil
		},
		ListNewInBandFunc: func(ctx context.Context, userKey, language string, lo, hi float64, limit int) ([]domain.Item, error) {
			return nil, nil
		},
		ListAnyFunc: func(ctx context.Context, language string, excludeIDs []uuid.UUID, limit int) ([]domain.Item, error) {
			return []domain.Item{*overflow}, nil
		},
	}

	svc := &Service{
		learners: defaultLearnerMock(),
		items:    items,
		log:      slog.Default(),
		cfg:      DefaultConfig(),
	}

	result, err := svc.BuildQueue(context.Background(), BuildQueueInput{UserKey: "u1", Language: "ru", Count: 5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Items) != 1 || result.Items[0].ID != overflow.ID {
		t.Errorf("expected overflow item only, got %d items", len(result.Items))
	}
	if result.Breakdown.Due+result.Breakdown.Learning+result.Breakdown.New != 0 {
		t.Errorf("tiers 1-3 must be empty: %+v", result.Breakdown)
	}
}

func TestService_BuildQueue_InvalidInput(t *testing.T) {
	t.Parallel()

	svc := &Service{log: slog.Default(), cfg: DefaultConfig()}

	_, err := svc.BuildQueue(context.Background(), BuildQueueInput{Language: "ru"})
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("error: got %v, want ErrValidation", err)
	}
}

// ---------------------------------------------------------------------------
// SubmitReviews
// ---------------------------------------------------------------------------

func newTestService(items *itemRepoMock, memories *memoryRepoMock, reviews *reviewLogRepoMock) *Service {
	return &Service{
		learners:    defaultLearnerMock(),
		items:       items,
		memories:    memories,
		reviews:     reviews,
		distributor: credit.NewDistributor(),
		tx:          &txManagerMock{},
		log:         slog.Default(),
		cfg:         DefaultConfig(),
		fsrsParams:  fsrs.DefaultParameters(),
	}
}

func TestService_SubmitReviews_VocabularyGood(t *testing.T) {
	t.Parallel()

	item := vocabularyItem("дом")

	var upserted []domain.MemoryState
	var logged []*domain.ReviewLog

	items := &itemRepoMock{
		GetByIDFunc: func(ctx context.Context, id uuid.UUID) (*domain.Item, error) {
			if id != item.ID {
				t.Errorf("item id: got %v, want %v", id, item.ID)
			}
			return item, nil
		},
	}
	memories := &memoryRepoMock{
		GetFunc: func(ctx context.Context, userKey string, itemID uuid.UUID) (*domain.MemoryState, error) {
			return nil, domain.ErrNotFound
		},
		UpsertFunc: func(ctx context.Context, state domain.MemoryState) error {
			upserted = append(upserted, state)
			return nil
		},
	}
	reviews := &reviewLogRepoMock{
		AppendFunc: func(ctx context.Context, log *domain.ReviewLog) error {
			logged = append(logged, log)
			return nil
		},
	}

	svc := newTestService(items, memories, reviews)

	result, err := svc.SubmitReviews(context.Background(), SubmitReviewsInput{
		UserKey: "u1",
		Reviews: []ReviewInput{{ItemID: item.ID, Rating: domain.RatingGood, DurationMs: ptr(4200)}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Updated != 1 || len(result.Errors) != 0 {
		t.Fatalf("result = %+v", result)
	}
	if len(upserted) != 1 {
		t.Fatalf("upserts = %d, want 1", len(upserted))
	}
	if upserted[0].State != domain.CardStateReview || upserted[0].Reps != 1 {
		t.Errorf("first GOOD review should graduate: %+v", upserted[0])
	}
	if len(logged) != 1 || logged[0].Rating != domain.RatingGood || *logged[0].DurationMs != 4200 {
		t.Errorf("review log = %+v", logged)
	}
}

func TestService_SubmitReviews_UnknownItemSkipped(t *testing.T) {
	t.Parallel()

	known := vocabularyItem("дом")

	var upserts int
	items := &itemRepoMock{
		GetByIDFunc: func(ctx context.Context, id uuid.UUID) (*domain.Item, error) {
			if id == known.ID {
				return known, nil
			}
			return nil, domain.ErrNotFound
		},
	}
	memories := &memoryRepoMock{
		GetFunc: func(ctx context.Context, userKey string, itemID uuid.UUID) (*domain.MemoryState, error) {
			return nil, domain.ErrNotFound
		},
		UpsertFunc: func(ctx context.Context, state domain.MemoryState) error {
			upserts++
			return nil
		},
	}
	reviews := &reviewLogRepoMock{
		AppendFunc: func(ctx context.Context, log *domain.ReviewLog) error { return nil },
	}

	svc := newTestService(items, memories, reviews)

	missing := uuid.New()
	result, err := svc.SubmitReviews(context.Background(), SubmitReviewsInput{
		UserKey: "u1",
		Reviews: []ReviewInput{
			{ItemID: missing, Rating: domain.RatingGood},
			{ItemID: known.ID, Rating: domain.RatingGood},
		},
	})
	if err != nil {
		t.Fatalf("unknown item must not abort the batch: %v", err)
	}

	if result.Updated != 1 {
		t.Errorf("updated = %d, want 1", result.Updated)
	}
	if len(result.Errors) != 1 || result.Errors[0].ItemID != missing {
		t.Errorf("errors = %+v", result.Errors)
	}
	if upserts != 1 {
		t.Errorf("upserts = %d, want 1", upserts)
	}
}

func TestService_SubmitReviews_InvalidRatingFailsOneItem(t *testing.T) {
	t.Parallel()

	item := vocabularyItem("дом")

	items := &itemRepoMock{
		GetByIDFunc: func(ctx context.Context, id uuid.UUID) (*domain.Item, error) {
			return item, nil
		},
	}
	memories := &memoryRepoMock{
		GetFunc: func(ctx context.Context, userKey string, itemID uuid.UUID) (*domain.MemoryState, error) {
			return nil, domain.ErrNotFound
		},
		UpsertFunc: func(ctx context.Context, state domain.MemoryState) error { return nil },
	}
	reviews := &reviewLogRepoMock{
		AppendFunc: func(ctx context.Context, log *domain.ReviewLog) error { return nil },
	}

	svc := newTestService(items, memories, reviews)

	result, err := svc.SubmitReviews(context.Background(), SubmitReviewsInput{
		UserKey: "u1",
		Reviews: []ReviewInput{
			{ItemID: item.ID, Rating: 7},
			{ItemID: item.ID, Rating: domain.RatingEasy},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Updated != 1 || len(result.Errors) != 1 {
		t.Errorf("result = %+v", result)
	}
}

func TestService_SubmitReviews_SentenceDistributesCredit(t *testing.T) {
	t.Parallel()

	sentence := &domain.Item{
		ID:       uuid.New(),
		Language: "ru",
		Type:     domain.ItemTypeSentence,
		Payload: domain.ItemPayload{
			TargetWord: "читает",
			Sentence:   "Моя мать читает интересную книгу",
		},
		Theta: ptr(0.0),
	}
	motherItem := vocabularyItem("мать")

	var upserted []domain.MemoryState
	var logged []*domain.ReviewLog

	items := &itemRepoMock{
		GetByIDFunc: func(ctx context.Context, id uuid.UUID) (*domain.Item, error) {
			return sentence, nil
		},
		GetByTargetWordFunc: func(ctx context.Context, language, word string) (*domain.Item, error) {
			// Only one supporting word exists as an item; the rest are skipped.
			if word == "мать" {
				return motherItem, nil
			}
			return nil, domain.ErrNotFound
		},
	}
	memories := &memoryRepoMock{
		GetFunc: func(ctx context.Context, userKey string, itemID uuid.UUID) (*domain.MemoryState, error) {
			return nil, domain.ErrNotFound
		},
		UpsertFunc: func(ctx context.Context, state domain.MemoryState) error {
			upserted = append(upserted, state)
			return nil
		},
	}
	reviews := &reviewLogRepoMock{
		AppendFunc: func(ctx context.Context, log *domain.ReviewLog) error {
			logged = append(logged, log)
			return nil
		},
	}

	svc := newTestService(items, memories, reviews)

	result, err := svc.SubmitReviews(context.Background(), SubmitReviewsInput{
		UserKey: "u1",
		Reviews: []ReviewInput{{ItemID: sentence.ID, Rating: domain.RatingEasy}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Primary word plus the one resolvable supporting word.
	if len(upserted) != 2 {
		t.Fatalf("upserts = %d, want 2", len(upserted))
	}
	if upserted[0].ItemID != sentence.ID {
		t.Errorf("first update must be the reviewed item")
	}
	if upserted[1].ItemID != motherItem.ID {
		t.Errorf("second update must be the supporting word item")
	}

	if len(logged) != 2 {
		t.Fatalf("review logs = %d, want 2", len(logged))
	}
	if logged[0].Rating != domain.RatingEasy {
		t.Errorf("primary logged rating = %d, want EASY", logged[0].Rating)
	}
	if logged[1].Rating != domain.RatingGood {
		t.Errorf("supporting logged rating = %d, want GOOD downgrade", logged[1].Rating)
	}

	if result.Updated != 1 {
		t.Errorf("updated = %d, want 1 reviewed item", result.Updated)
	}
	if len(result.Credited) < 2 {
		t.Errorf("credited = %d, want primary + supporting entries", len(result.Credited))
	}
}

func TestService_SubmitReviews_EmptyBatchRejected(t *testing.T) {
	t.Parallel()

	svc := &Service{learners: defaultLearnerMock(), log: slog.Default()}

	_, err := svc.SubmitReviews(context.Background(), SubmitReviewsInput{UserKey: "u1"})
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("error: got %v, want ErrValidation", err)
	}
}
