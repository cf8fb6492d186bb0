package domain

// CardState represents the FSRS learning state of a memory state record.
type CardState string

const (
	CardStateNew        CardState = "NEW"
	CardStateLearning   CardState = "LEARNING"
	CardStateReview     CardState = "REVIEW"
	CardStateRelearning CardState = "RELEARNING"
)

func (s CardState) String() string { return string(s) }

func (s CardState) IsValid() bool {
	switch s {
	case CardStateNew, CardStateLearning, CardStateReview, CardStateRelearning:
		return true
	}
	return false
}

// Rating is the learner's 4-point self-assessment of a review.
type Rating int

const (
	RatingAgain Rating = 1
	RatingHard  Rating = 2
	RatingGood  Rating = 3
	RatingEasy  Rating = 4
)

func (r Rating) IsValid() bool {
	return r >= RatingAgain && r <= RatingEasy
}

func (r Rating) String() string {
	switch r {
	case RatingAgain:
		return "AGAIN"
	case RatingHard:
		return "HARD"
	case RatingGood:
		return "GOOD"
	case RatingEasy:
		return "EASY"
	}
	return "UNKNOWN"
}

// ItemType identifies the kind of content unit served in a review.
type ItemType string

const (
	ItemTypeVocabulary ItemType = "VOCABULARY"
	ItemTypeCloze      ItemType = "CLOZE"
	ItemTypeSentence   ItemType = "SENTENCE"
)

func (t ItemType) String() string { return string(t) }

func (t ItemType) IsValid() bool {
	switch t {
	case ItemTypeVocabulary, ItemTypeCloze, ItemTypeSentence:
		return true
	}
	return false
}

// CreditType classifies how much contextual credit a word in a reviewed
// sentence receives.
type CreditType string

const (
	CreditPrimary    CreditType = "PRIMARY"
	CreditSupporting CreditType = "SUPPORTING"
	CreditStructural CreditType = "STRUCTURAL"
	CreditIgnored    CreditType = "IGNORED"
)

func (c CreditType) String() string { return string(c) }
