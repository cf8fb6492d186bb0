package cat

import "github.com/polyglothq/adaptive-srs/internal/domain"

// knownWordLists holds frequency-derived vocabulary samples per CEFR level.
// Used only for the placement result payload, never for scheduling.
var knownWordLists = map[domain.CEFRLevel][]string{
	domain.CEFRA1: {
		"the", "be", "have", "do", "say", "go", "can", "get", "would", "make",
		"know", "will", "think", "take", "see", "come", "could", "want", "look", "use",
	},
	domain.CEFRA2: {
		"also", "back", "after", "first", "well", "way", "even", "new", "want", "because",
		"any", "these", "give", "day", "most", "us", "is", "water", "than", "call",
	},
	domain.CEFRB1: {
		"through", "just", "form", "sentence", "great", "think", "say", "help", "low", "line",
		"differ", "turn", "cause", "much", "mean", "before", "move", "right", "boy", "old",
	},
	domain.CEFRB2: {
		"however", "therefore", "although", "furthermore", "nevertheless", "consequently",
		"moreover", "whereas", "nonetheless", "hence", "thus", "meanwhile", "likewise",
	},
	domain.CEFRC1: {
		"notwithstanding", "albeit", "hitherto", "erstwhile", "ubiquitous", "perspicacious",
		"inexorable", "surreptitious", "serendipitous", "magnanimous", "ephemeral",
	},
	domain.CEFRC2: {
		"perspicacity", "verisimilitude", "pusillanimous", "sesquipedalian", "grandiloquent",
		"obfuscation", "recondite", "abstruse", "esoteric", "arcane", "ineffable",
	},
}

// KnownWords returns the vocabulary a learner at the given level is assumed
// to know: the sample for that level plus every level below it.
func KnownWords(level domain.CEFRLevel) []string {
	var words []string
	for _, l := range domain.CEFRLevels {
		words = append(words, knownWordLists[l]...)
		if l == level {
			break
		}
	}
	return words
}
