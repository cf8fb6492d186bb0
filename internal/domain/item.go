package domain

import (
	"time"

	"github.com/google/uuid"
)

// Item is an immutable content unit shared across learners.
// Items used by the placement engine always carry a Theta difficulty.
type Item struct {
	ID        uuid.UUID
	Language  string
	Type      ItemType
	Payload   ItemPayload
	Theta     *float64
	CreatedAt time.Time
}

// ItemPayload carries the type-specific content fields.
// Vocabulary items fill TargetWord and Translation; sentence and cloze items
// additionally fill Sentence (the cloze gap is marked in the sentence text).
type ItemPayload struct {
	TargetWord    string `json:"target_word"`
	Translation   string `json:"translation,omitempty"`
	Sentence      string `json:"sentence,omitempty"`
	FrequencyRank *int   `json:"frequency_rank,omitempty"`
}

// HasSentence reports whether reviews of this item should flow through the
// contextual credit distributor.
func (i Item) HasSentence() bool {
	return i.Payload.Sentence != ""
}
