// Package cat implements the computerized adaptive testing engine used for
// CEFR placement: a 2PL IRT model with Fisher-information item selection and
// a custom asymmetric ability update.
package cat

import (
	"math"

	"github.com/google/uuid"

	"github.com/polyglothq/adaptive-srs/internal/domain"
)

// Parameters holds all CAT configuration.
type Parameters struct {
	InitialTheta   float64
	InitialSE      float64
	TargetSE       float64
	MinItems       int
	MaxItems       int
	Discrimination float64
	ThetaMin       float64
	ThetaMax       float64
	SEFloor        float64
	BaseRate       float64
	// WrongStepFactor multiplies the down-step on incorrect answers. The
	// asymmetry biases the estimate conservatively: not knowing an item is
	// stronger evidence than knowing one.
	WrongStepFactor float64
	SEDecay         float64
}

// DefaultParameters returns the placement defaults.
func DefaultParameters() Parameters {
	return Parameters{
		InitialTheta:    0,
		InitialSE:       1.0,
		TargetSE:        0.3,
		MinItems:        7,
		MaxItems:        12,
		Discrimination:  1.5,
		ThetaMin:        -3,
		ThetaMax:        4,
		SEFloor:         0.1,
		BaseRate:        0.5,
		WrongStepFactor: 2.0,
		SEDecay:         0.85,
	}
}

// Candidate is one item the engine may pick, with its IRT difficulty.
type Candidate struct {
	ItemID uuid.UUID
	Theta  float64
}

// Probability is the 2PL response model: the chance a learner at theta
// answers an item of difficulty itemTheta correctly.
//
//	P(theta, b) = 1 / (1 + e^(-a*(theta-b)))
func Probability(theta, itemTheta, discrimination float64) float64 {
	exponent := discrimination * (theta - itemTheta)
	if exponent > 700 {
		return 0.999
	}
	if exponent < -700 {
		return 0.001
	}
	return 1 / (1 + math.Exp(-exponent))
}

// Information is the Fisher information of an item at the given ability.
//
//	I(theta, b) = a^2 * P * (1-P)
func Information(theta, itemTheta, discrimination float64) float64 {
	p := Probability(theta, itemTheta, discrimination)
	return discrimination * discrimination * p * (1 - p)
}

// SelectItem picks the candidate with maximum Fisher information at the
// current ability estimate. Ties resolve to the first-seen candidate.
// Returns false when the pool is empty.
func SelectItem(params Parameters, theta float64, pool []Candidate) (Candidate, bool) {
	if len(pool) == 0 {
		return Candidate{}, false
	}

	best := pool[0]
	bestInfo := Information(theta, pool[0].Theta, params.Discrimination)
	for _, c := range pool[1:] {
		if info := Information(theta, c.Theta, params.Discrimination); info > bestInfo {
			bestInfo = info
			best = c
		}
	}
	return best, true
}

// MapRating converts the learner's 4-point rating into the (correct,
// confidence) pair the IRT update consumes. This is the single bridge
// between the subjective scale and the response model.
func MapRating(rating domain.Rating) (correct bool, confidence float64) {
	switch rating {
	case domain.RatingAgain:
		return false, 1.0
	case domain.RatingHard:
		return false, 0.7
	case domain.RatingGood:
		return true, 0.8
	default: // Easy
		return true, 1.0
	}
}

// UpdateAbility applies one response to the ability estimate.
//
// The step is proportional to the surprise of the response: a correct answer
// on a hard item moves theta up a lot, an expected correct answer barely
// moves it. Incorrect answers step down WrongStepFactor times harder. This
// is intentionally not an MLE update.
func UpdateAbility(params Parameters, theta, se, itemTheta float64, correct bool, confidence float64) (newTheta, newSE float64) {
	p := Probability(theta, itemTheta, params.Discrimination)

	if correct {
		surprise := 1 - p
		newTheta = theta + params.BaseRate*surprise*confidence
	} else {
		surprise := p
		newTheta = theta - params.BaseRate*surprise*confidence*params.WrongStepFactor
	}

	newSE = math.Max(params.SEFloor, se*params.SEDecay)
	newTheta = math.Max(params.ThetaMin, math.Min(params.ThetaMax, newTheta))
	return newTheta, newSE
}

// ShouldStop reports whether the session terminates after itemsCompleted
// responses with the given standard error.
func ShouldStop(params Parameters, se float64, itemsCompleted int, poolEmpty bool) bool {
	if itemsCompleted >= params.MinItems && se <= params.TargetSE {
		return true
	}
	if itemsCompleted >= params.MaxItems {
		return true
	}
	return poolEmpty
}

// ConfidenceInterval returns the 95% confidence interval for theta.
func ConfidenceInterval(theta, se float64) (lo, hi float64) {
	margin := 1.96 * se
	return theta - margin, theta + margin
}
