package domain

import (
	"time"

	"github.com/google/uuid"
)

// PlacementSession is one adaptive placement run for a learner.
// Once Complete is set the session is immutable.
type PlacementSession struct {
	ID             uuid.UUID
	UserKey        string
	Language       string
	Theta          float64
	SE             float64
	ItemsCompleted int
	Complete       bool
	FinalLevel     *CEFRLevel
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// PlacementResponse is one logged answer within a placement session.
// Seq is the per-session submission counter that enforces ordering.
type PlacementResponse struct {
	ID          uuid.UUID
	SessionID   uuid.UUID
	Seq         int
	ItemID      uuid.UUID
	Rating      Rating
	Correct     bool
	ThetaBefore float64
	ThetaAfter  float64
	SEBefore    float64
	SEAfter     float64
	DurationMs  *int
	AnsweredAt  time.Time
}
