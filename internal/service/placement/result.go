package placement

import (
	"github.com/google/uuid"

	"github.com/polyglothq/adaptive-srs/internal/domain"
)

// Progress reports the state of an open session.
type Progress struct {
	ItemsCompleted int
	EstimatedLevel domain.CEFRLevel
	CI             [2]float64
}

// Feedback tells the learner how their last answer scored.
type Feedback struct {
	WasCorrect    bool
	CorrectAnswer string
}

// FinalResults summarizes a completed session.
type FinalResults struct {
	Level          domain.CEFRLevel
	Theta          float64
	CI             [2]float64
	ItemsCompleted int
	KnownWords     []string
}

// StartSessionResult is the response to opening a session.
type StartSessionResult struct {
	SessionID uuid.UUID
	Item      domain.Item
	Progress  Progress
}

// SubmitAnswerResult is the response to one answer: either the next item with
// progress, or the final results when the session completed.
type SubmitAnswerResult struct {
	Complete bool
	Item     *domain.Item
	Feedback *Feedback
	Progress *Progress
	Results  *FinalResults
}
