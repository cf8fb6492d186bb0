package placement

import (
	"github.com/google/uuid"

	"github.com/polyglothq/adaptive-srs/internal/domain"
)

// StartSessionInput holds the parameters for opening a placement session.
type StartSessionInput struct {
	UserKey      string
	Language     string
	ClaimedLevel *domain.CEFRLevel
}

// Validate checks all fields and collects all errors.
func (i *StartSessionInput) Validate() error {
	var errs []domain.FieldError

	if i.UserKey == "" {
		errs = append(errs, domain.FieldError{Field: "user", Message: "required"})
	}
	if i.Language == "" {
		errs = append(errs, domain.FieldError{Field: "language", Message: "required"})
	}
	if i.ClaimedLevel != nil && !i.ClaimedLevel.IsValid() {
		errs = append(errs, domain.FieldError{Field: "claimed_level", Message: "must be A1..C2"})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// SubmitAnswerInput holds one answer within a placement session.
type SubmitAnswerInput struct {
	SessionID  uuid.UUID
	ItemID     uuid.UUID
	UserKey    string
	Rating     domain.Rating
	DurationMs *int
}

// Validate checks all fields and collects all errors.
func (i *SubmitAnswerInput) Validate() error {
	var errs []domain.FieldError

	if i.SessionID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "session_id", Message: "required"})
	}
	if i.ItemID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "item_id", Message: "required"})
	}
	if !i.Rating.IsValid() {
		errs = append(errs, domain.FieldError{Field: "user_answer", Message: "must be 1, 2, 3, or 4"})
	}
	if i.DurationMs != nil && *i.DurationMs < 0 {
		errs = append(errs, domain.FieldError{Field: "response_time_ms", Message: "must be non-negative"})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// CancelSessionInput holds the parameters for cancelling a session.
type CancelSessionInput struct {
	SessionID uuid.UUID
	UserKey   string
}

// Validate checks all fields and collects all errors.
func (i *CancelSessionInput) Validate() error {
	var errs []domain.FieldError

	if i.SessionID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "session_id", Message: "required"})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}
