package domain

import (
	"time"

	"github.com/google/uuid"
)

// MemoryState is the per-(learner, item) FSRS state. It is created lazily on
// the first review and mutated only by the scheduler.
type MemoryState struct {
	UserKey       string
	ItemID        uuid.UUID
	State         CardState
	Stability     float64
	Difficulty    float64
	Reps          int
	Lapses        int
	ScheduledDays int
	ElapsedDays   int
	Due           time.Time
	LastReview    *time.Time
}

// NewMemoryState returns the blank state a first review starts from.
func NewMemoryState(userKey string, itemID uuid.UUID, now time.Time) MemoryState {
	return MemoryState{
		UserKey: userKey,
		ItemID:  itemID,
		State:   CardStateNew,
		Due:     now,
	}
}
