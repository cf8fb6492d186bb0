package study

import (
	"github.com/google/uuid"

	"github.com/polyglothq/adaptive-srs/internal/domain"
)

// BuildQueueInput holds the parameters for composing a review session.
type BuildQueueInput struct {
	UserKey  string
	Language string
	Count    int
}

// Validate checks all fields and collects all errors.
func (i *BuildQueueInput) Validate() error {
	var errs []domain.FieldError

	if i.UserKey == "" {
		errs = append(errs, domain.FieldError{Field: "user", Message: "required"})
	}
	if i.Language == "" {
		errs = append(errs, domain.FieldError{Field: "language", Message: "required"})
	}
	if i.Count < 0 || i.Count > 200 {
		errs = append(errs, domain.FieldError{Field: "count", Message: "must be between 0 and 200"})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// ReviewInput is one rated item in a review batch.
type ReviewInput struct {
	ItemID     uuid.UUID
	Rating     domain.Rating
	DurationMs *int
}

// SubmitReviewsInput holds a batch of reviews for one learner.
type SubmitReviewsInput struct {
	UserKey string
	Reviews []ReviewInput
}

// Validate checks the batch envelope. Per-item rating problems are not
// collected here: an invalid rating fails only its own item during
// processing, the rest of the batch continues.
func (i *SubmitReviewsInput) Validate() error {
	var errs []domain.FieldError

	if i.UserKey == "" {
		errs = append(errs, domain.FieldError{Field: "user", Message: "required"})
	}
	if len(i.Reviews) == 0 {
		errs = append(errs, domain.FieldError{Field: "reviews", Message: "required (at least 1)"})
	} else if len(i.Reviews) > 100 {
		errs = append(errs, domain.FieldError{Field: "reviews", Message: "too many (max 100)"})
	}
	for _, r := range i.Reviews {
		if r.DurationMs != nil && *r.DurationMs < 0 {
			errs = append(errs, domain.FieldError{Field: "reviews", Message: "duration must be non-negative"})
			break
		}
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}
