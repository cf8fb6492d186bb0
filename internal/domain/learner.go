package domain

import (
	"math"
	"time"
)

// CEFRLevel is one of the six Common European Framework levels.
type CEFRLevel string

const (
	CEFRA1 CEFRLevel = "A1"
	CEFRA2 CEFRLevel = "A2"
	CEFRB1 CEFRLevel = "B1"
	CEFRB2 CEFRLevel = "B2"
	CEFRC1 CEFRLevel = "C1"
	CEFRC2 CEFRLevel = "C2"
)

// CEFRLevels lists all levels in ascending order.
var CEFRLevels = []CEFRLevel{CEFRA1, CEFRA2, CEFRB1, CEFRB2, CEFRC1, CEFRC2}

// cefrTheta maps each level to its latent-ability anchor.
var cefrTheta = map[CEFRLevel]float64{
	CEFRA1: -2.0,
	CEFRA2: -1.0,
	CEFRB1: 0.0,
	CEFRB2: 1.0,
	CEFRC1: 2.0,
	CEFRC2: 3.0,
}

func (l CEFRLevel) String() string { return string(l) }

func (l CEFRLevel) IsValid() bool {
	_, ok := cefrTheta[l]
	return ok
}

// Theta returns the ability anchor for the level. Unknown levels map to B1 (0).
func (l CEFRLevel) Theta() float64 {
	if t, ok := cefrTheta[l]; ok {
		return t
	}
	return 0
}

// LevelForTheta quantizes an ability estimate to the nearest CEFR level.
// Equidistant estimates resolve to the lower level.
func LevelForTheta(theta float64) CEFRLevel {
	best := CEFRB1
	bestDist := math.Inf(1)
	for _, level := range CEFRLevels {
		dist := math.Abs(theta - cefrTheta[level])
		if dist < bestDist {
			bestDist = dist
			best = level
		}
	}
	return best
}

// LearnerProfile holds the per-user learning state the engines consume.
// Users without a stored profile get the defaults (B1, theta 0).
type LearnerProfile struct {
	UserKey       string
	Level         CEFRLevel
	Theta         float64
	LastPlacement *time.Time
}

// DefaultLearnerProfile returns the profile assumed for unknown users.
func DefaultLearnerProfile(userKey string) LearnerProfile {
	return LearnerProfile{
		UserKey: userKey,
		Level:   CEFRB1,
		Theta:   0,
	}
}
