// Package seeder loads calibrated content items from a JSON file into the
// items table. It is intended to be run offline, not as part of the server.
package seeder

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"

	"github.com/polyglothq/adaptive-srs/internal/domain"
)

type itemRepo interface {
	GetByTargetWord(ctx context.Context, language, word string) (*domain.Item, error)
	Insert(ctx context.Context, item domain.Item) error
}

// FileItem is one entry of the seed file.
type FileItem struct {
	Language string             `json:"language"`
	Type     domain.ItemType    `json:"item_type"`
	Theta    *float64           `json:"theta,omitempty"`
	Payload  domain.ItemPayload `json:"payload"`
}

// Stats summarizes one loader run.
type Stats struct {
	Inserted int
	Skipped  int
	Invalid  int
}

// Loader reads seed files and writes items.
type Loader struct {
	items  itemRepo
	log    *slog.Logger
	dryRun bool
}

// New creates a Loader. With dryRun set, the file is parsed and validated but
// nothing is written.
func New(log *slog.Logger, items itemRepo, dryRun bool) *Loader {
	return &Loader{
		items:  items,
		log:    log.With("component", "seeder"),
		dryRun: dryRun,
	}
}

// Run loads the seed file at path. Invalid entries are logged and skipped;
// vocabulary items whose headword already exists in the language are skipped
// so reruns stay idempotent.
func (l *Loader) Run(ctx context.Context, path string) (Stats, error) {
	var stats Stats

	data, err := os.ReadFile(path)
	if err != nil {
		return stats, fmt.Errorf("read seed file: %w", err)
	}

	var entries []FileItem
	if err := json.Unmarshal(data, &entries); err != nil {
		return stats, fmt.Errorf("parse seed file: %w", err)
	}

	for i, entry := range entries {
		if reason := validate(entry); reason != "" {
			l.log.Warn("invalid seed entry",
				slog.Int("index", i),
				slog.String("reason", reason),
			)
			stats.Invalid++
			continue
		}

		if entry.Type == domain.ItemTypeVocabulary {
			exists, err := l.headwordExists(ctx, entry.Language, entry.Payload.TargetWord)
			if err != nil {
				return stats, err
			}
			if exists {
				stats.Skipped++
				continue
			}
		}

		if !l.dryRun {
			item := domain.Item{
				ID:       uuid.New(),
				Language: entry.Language,
				Type:     entry.Type,
				Payload:  entry.Payload,
				Theta:    entry.Theta,
			}
			if err := l.items.Insert(ctx, item); err != nil {
				return stats, fmt.Errorf("insert item %q: %w", entry.Payload.TargetWord, err)
			}
		}
		stats.Inserted++
	}

	l.log.Info("seed file processed",
		slog.String("path", path),
		slog.Int("inserted", stats.Inserted),
		slog.Int("skipped", stats.Skipped),
		slog.Int("invalid", stats.Invalid),
		slog.Bool("dry_run", l.dryRun),
	)

	return stats, nil
}

func (l *Loader) headwordExists(ctx context.Context, language, word string) (bool, error) {
	_, err := l.items.GetByTargetWord(ctx, language, word)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("check headword %q: %w", word, err)
	}
	return true, nil
}

// validate returns an empty string for a well-formed entry, otherwise the
// reason it cannot be loaded.
func validate(entry FileItem) string {
	if entry.Language == "" {
		return "language required"
	}
	if !entry.Type.IsValid() {
		return "unknown item_type"
	}
	if entry.Payload.TargetWord == "" {
		return "payload.target_word required"
	}
	if entry.Type != domain.ItemTypeVocabulary && entry.Payload.Sentence == "" {
		return "payload.sentence required for sentence and cloze items"
	}
	return ""
}
