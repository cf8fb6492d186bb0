// Package credit distributes contextual learning credit across the words of
// a reviewed sentence: the target word gets full credit, supporting content
// words get partial credit, structural words get minimal credit.
package credit

import "strings"

// Token is one surviving word from a tokenized sentence, with its corpus
// frequency rank when the tokenizer knows it (1 = most frequent).
type Token struct {
	Word          string
	FrequencyRank *int
}

// Tokenizer splits a sentence into creditable tokens and knows which words
// are structural for its language. Implementations filter out words too basic
// to track. A morphological analyzer can be plugged in here; the default is a
// plain whitespace tokenizer.
type Tokenizer interface {
	Tokenize(sentence string) []Token
	IsStructural(word string) bool
}

// languageTable holds the per-language word sets the basic tokenizer and the
// classifier consult. These are data, not code; adding a language means
// adding a table.
type languageTable struct {
	// basic words are dropped during tokenization and never credited.
	basic map[string]struct{}
	// structural words (pronouns, conjunctions, deictics) receive minimal
	// credit.
	structural map[string]struct{}
	// frequencyRank maps a word to its corpus rank, when known.
	frequencyRank map[string]int
}

var languageTables = map[string]languageTable{
	"ru": {
		basic:      wordSet("я", "ты", "он", "она", "мы", "вы", "они", "в", "на", "и", "а", "но"),
		structural: wordSet("не", "то", "это", "что", "как", "где", "когда", "почему"),
	},
	"en": {
		basic:      wordSet("a", "an", "the", "i", "you", "he", "she", "we", "they", "in", "on", "and", "but"),
		structural: wordSet("not", "that", "this", "what", "how", "where", "when", "why"),
	},
}

func wordSet(words ...string) map[string]struct{} {
	s := make(map[string]struct{}, len(words))
	for _, w := range words {
		s[w] = struct{}{}
	}
	return s
}

// BasicTokenizer lowercases, strips sentence punctuation, splits on
// whitespace, and filters the language's basic-word set.
type BasicTokenizer struct {
	lang languageTable
}

// NewBasicTokenizer returns the tokenizer for a language code. Unknown
// languages get empty tables (nothing filtered, no ranks).
func NewBasicTokenizer(language string) *BasicTokenizer {
	return &BasicTokenizer{lang: languageTables[language]}
}

// Tokenize implements Tokenizer.
func (t *BasicTokenizer) Tokenize(sentence string) []Token {
	normalized := strings.ToLower(sentence)
	normalized = strings.ReplaceAll(normalized, ".", "")
	normalized = strings.ReplaceAll(normalized, ",", "")

	var tokens []Token
	for _, word := range strings.Fields(normalized) {
		if _, isBasic := t.lang.basic[word]; isBasic {
			continue
		}
		tok := Token{Word: word}
		if rank, ok := t.lang.frequencyRank[word]; ok {
			r := rank
			tok.FrequencyRank = &r
		}
		tokens = append(tokens, tok)
	}
	return tokens
}

// IsStructural reports whether a word belongs to the language's structural
// word set.
func (t *BasicTokenizer) IsStructural(word string) bool {
	_, ok := t.lang.structural[word]
	return ok
}
