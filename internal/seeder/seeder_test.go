package seeder

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/polyglothq/adaptive-srs/internal/domain"
)

type itemRepoMock struct {
	GetByTargetWordFunc func(ctx context.Context, language, word string) (*domain.Item, error)
	InsertFunc          func(ctx context.Context, item domain.Item) error
}

func (m *itemRepoMock) GetByTargetWord(ctx context.Context, language, word string) (*domain.Item, error) {
	return m.GetByTargetWordFunc(ctx, language, word)
}

func (m *itemRepoMock) Insert(ctx context.Context, item domain.Item) error {
	return m.InsertFunc(ctx, item)
}

func writeSeedFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "seed.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write seed file: %v", err)
	}
	return path
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

const seedJSON = `[
	{"language":"ru","item_type":"VOCABULARY","theta":-1.5,
	 "payload":{"target_word":"дом","translation":"house","frequency_rank":120}},
	{"language":"ru","item_type":"VOCABULARY","theta":0.4,
	 "payload":{"target_word":"собака","translation":"dog"}},
	{"language":"ru","item_type":"SENTENCE",
	 "payload":{"target_word":"дом","sentence":"Это мой дом."}},
	{"language":"","item_type":"VOCABULARY","payload":{"target_word":"oops"}},
	{"language":"ru","item_type":"CLOZE","payload":{"target_word":"дом"}}
]`

func TestRun_InsertsSkipsAndRejects(t *testing.T) {
	t.Parallel()

	var inserted []domain.Item
	mock := &itemRepoMock{
		GetByTargetWordFunc: func(_ context.Context, language, word string) (*domain.Item, error) {
			// "дом" is already in the database.
			if word == "дом" {
				return &domain.Item{Language: language}, nil
			}
			return nil, domain.ErrNotFound
		},
		InsertFunc: func(_ context.Context, item domain.Item) error {
			inserted = append(inserted, item)
			return nil
		},
	}

	loader := New(testLogger(), mock, false)

	stats, err := loader.Run(context.Background(), writeSeedFile(t, seedJSON))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// собака plus the sentence item; дом skipped as duplicate; two invalid.
	if stats.Inserted != 2 || stats.Skipped != 1 || stats.Invalid != 2 {
		t.Errorf("stats = %+v, want {Inserted:2 Skipped:1 Invalid:2}", stats)
	}
	if len(inserted) != 2 {
		t.Fatalf("got %d inserts, want 2", len(inserted))
	}
	if inserted[0].Payload.TargetWord != "собака" {
		t.Errorf("first insert = %+v", inserted[0])
	}
	if inserted[0].Theta == nil || *inserted[0].Theta != 0.4 {
		t.Errorf("theta = %v, want 0.4", inserted[0].Theta)
	}
	if inserted[1].Type != domain.ItemTypeSentence {
		t.Errorf("second insert type = %v, want SENTENCE", inserted[1].Type)
	}
	if inserted[0].ID == inserted[1].ID {
		t.Error("inserted items must get distinct ids")
	}
}

func TestRun_DryRunWritesNothing(t *testing.T) {
	t.Parallel()

	mock := &itemRepoMock{
		GetByTargetWordFunc: func(context.Context, string, string) (*domain.Item, error) {
			return nil, domain.ErrNotFound
		},
		InsertFunc: func(context.Context, domain.Item) error {
			t.Fatal("dry run must not insert")
			return nil
		},
	}

	loader := New(testLogger(), mock, true)

	stats, err := loader.Run(context.Background(), writeSeedFile(t, seedJSON))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.Inserted != 3 {
		t.Errorf("inserted = %d, want 3 (counted, not written)", stats.Inserted)
	}
}

func TestRun_MalformedFile(t *testing.T) {
	t.Parallel()

	loader := New(testLogger(), &itemRepoMock{}, false)

	if _, err := loader.Run(context.Background(), writeSeedFile(t, `{not json`)); err == nil {
		t.Fatal("expected error for malformed JSON")
	}

	if _, err := loader.Run(context.Background(), filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
