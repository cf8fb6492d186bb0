package credit

import (
	"fmt"
	"strings"

	"github.com/polyglothq/adaptive-srs/internal/domain"
)

// Base credit multipliers per word class.
const (
	primaryMultiplier    = 1.0
	supportingMultiplier = 0.6
	structuralMultiplier = 0.2
)

// Rating-conditioned adjustments.
const (
	// A failed review is weak evidence about the surrounding words.
	againSupportingFactor = 0.3
	// An easy review reinforces the surrounding words a little extra.
	easySupportingFactor = 1.2
)

// structuralRankCutoff marks a word structural for advanced learners when its
// corpus frequency rank is at or below this value.
const structuralRankCutoff = 100

// Distributor turns one sentence review into per-word credit entries.
type Distributor struct {
	tokenizerFor func(language string) Tokenizer
}

// NewDistributor returns a distributor backed by the built-in whitespace
// tokenizer and its per-language word tables.
func NewDistributor() *Distributor {
	return &Distributor{
		tokenizerFor: func(language string) Tokenizer {
			return NewBasicTokenizer(language)
		},
	}
}

// NewDistributorWithTokenizer returns a distributor whose tokenizers come
// from the given factory. Used to plug a real morphological analyzer.
func NewDistributorWithTokenizer(factory func(language string) Tokenizer) *Distributor {
	return &Distributor{tokenizerFor: factory}
}

// Distribute classifies every token of the sentence and assigns each a credit
// multiplier and an adjusted rating. The target word yields exactly one
// PRIMARY entry carrying the learner's rating verbatim; repeated words are
// credited once. Entries whose multiplier drops to zero are omitted.
func (d *Distributor) Distribute(language, sentence, targetWord string, rating domain.Rating, level domain.CEFRLevel) ([]domain.WordCredit, error) {
	if !rating.IsValid() {
		return nil, domain.ErrInvalidRating
	}

	tokenizer := d.tokenizerFor(language)
	target := strings.ToLower(strings.TrimSpace(targetWord))
	tokens := tokenizer.Tokenize(sentence)

	credits := make([]domain.WordCredit, 0, len(tokens))
	seen := make(map[string]struct{}, len(tokens))
	primaryFound := false

	for _, tok := range tokens {
		if _, dup := seen[tok.Word]; dup {
			continue
		}
		seen[tok.Word] = struct{}{}

		creditType := classify(tokenizer, tok, target, level)
		if creditType == domain.CreditPrimary {
			primaryFound = true
		}

		multiplier := adjustMultiplier(creditType, rating)
		if multiplier == 0 {
			continue
		}

		credits = append(credits, domain.WordCredit{
			Word:       tok.Word,
			Type:       creditType,
			Multiplier: multiplier,
			Rating:     adjustRating(creditType, rating),
		})
	}

	if !primaryFound {
		return nil, fmt.Errorf("target word %q not present in sentence: %w", targetWord, domain.ErrValidation)
	}
	return credits, nil
}

// classify decides the credit class of one token. Very frequent words stop
// carrying signal once the learner is past B1, so they demote to structural.
func classify(tokenizer Tokenizer, tok Token, target string, level domain.CEFRLevel) domain.CreditType {
	if tok.Word == target {
		return domain.CreditPrimary
	}
	if tokenizer.IsStructural(tok.Word) {
		return domain.CreditStructural
	}
	if tok.FrequencyRank != nil && *tok.FrequencyRank <= structuralRankCutoff &&
		level.Theta() >= domain.CEFRB2.Theta() {
		return domain.CreditStructural
	}
	return domain.CreditSupporting
}

// adjustMultiplier applies the base multiplier for the class, then the
// rating-conditioned adjustment. The result stays in [0, 1].
func adjustMultiplier(creditType domain.CreditType, rating domain.Rating) float64 {
	var multiplier float64
	switch creditType {
	case domain.CreditPrimary:
		multiplier = primaryMultiplier
	case domain.CreditSupporting:
		multiplier = supportingMultiplier
	case domain.CreditStructural:
		multiplier = structuralMultiplier
	default:
		return 0
	}

	if creditType == domain.CreditPrimary {
		return multiplier
	}

	switch rating {
	case domain.RatingAgain:
		if creditType == domain.CreditStructural {
			return 0
		}
		multiplier *= againSupportingFactor
	case domain.RatingEasy:
		if creditType == domain.CreditSupporting {
			multiplier *= easySupportingFactor
		}
	}

	if multiplier > 1 {
		multiplier = 1
	}
	return multiplier
}

// adjustRating returns the rating each credited word is scheduled with. The
// primary word keeps the learner's rating; context words never earn EASY.
func adjustRating(creditType domain.CreditType, rating domain.Rating) domain.Rating {
	if creditType == domain.CreditPrimary {
		return rating
	}
	if rating == domain.RatingEasy {
		return domain.RatingGood
	}
	return rating
}
