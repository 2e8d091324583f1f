// Package keywords turns free text into normalized keyword sets.
//
// Everything here is a pure function of its input so that matching results are reproducible
// regardless of which provider produced the text.
package keywords

import (
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MinWordLength is the shortest word Extract keeps.
const MinWordLength = 3

// Count pairs a term with the number of times it was seen.
type Count struct {
	Term  string `json:"term"`
	Count int    `json:"count"`
}

// Normalize lowercases text, folds accents, and replaces every rune that is not a letter or a
// digit with a single space. The result has no leading or trailing space.
func Normalize(text string) string {
	folded, _, err := transform.String(transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), text)
	if err != nil {
		folded = text
	}

	mapped := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToLower(r)
		}
		return ' '
	}, folded)

	return strings.Join(strings.Fields(mapped), " ")
}

// ContainsPhrase reports whether the normalized phrase occurs in the normalized text on word
// boundaries. Both arguments must already be normalized.
func ContainsPhrase(text, phrase string) bool {
	if phrase == "" || text == "" {
		return false
	}
	return strings.Contains(" "+text+" ", " "+phrase+" ")
}

// Extractor extracts keywords using a stop word list.
type Extractor struct {
	stopWords map[string]struct{}
	minLength int
}

var defaultExtractor = NewExtractor()

// NewExtractor builds an extractor with the default English stop words plus extra ones.
func NewExtractor(extraStopWords ...string) *Extractor {
	stop := make(map[string]struct{}, len(englishStopWords)+len(newsStopWords)+len(extraStopWords))
	for _, w := range englishStopWords {
		stop[w] = struct{}{}
	}
	for _, w := range newsStopWords {
		stop[w] = struct{}{}
	}
	for _, w := range extraStopWords {
		if n := Normalize(w); n != "" {
			stop[n] = struct{}{}
		}
	}
	return &Extractor{stopWords: stop, minLength: MinWordLength}
}

// Extract returns the keywords of text using the default extractor.
func Extract(text string) []string {
	return defaultExtractor.Extract(text)
}

// IsStopWord reports whether word is a stop word for the default extractor.
func IsStopWord(word string) bool {
	return defaultExtractor.IsStopWord(word)
}

// IsStopWord reports whether the normalized word is a stop word.
func (e *Extractor) IsStopWord(word string) bool {
	_, ok := e.stopWords[Normalize(word)]
	return ok
}

// Words returns every non stop word of text that is long enough, in order, with repeats.
func (e *Extractor) Words(text string) []string {
	fields := strings.Fields(Normalize(text))
	words := make([]string, 0, len(fields))
	for _, f := range fields {
		if len([]rune(f)) < e.minLength {
			continue
		}
		if _, stop := e.stopWords[f]; stop {
			continue
		}
		words = append(words, f)
	}
	return words
}

// Extract returns the distinct keywords of text in first-seen order.
func (e *Extractor) Extract(text string) []string {
	words := e.Words(text)
	seen := make(map[string]struct{}, len(words))
	result := make([]string, 0, len(words))
	for _, w := range words {
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		result = append(result, w)
	}
	return result
}

// Frequencies counts the keywords of text, most frequent first.
func (e *Extractor) Frequencies(text string) []Count {
	counts := make(map[string]int)
	for _, w := range e.Words(text) {
		counts[w]++
	}
	return SortCounts(counts)
}

// Bigrams counts adjacent keyword pairs of text, most frequent first.
func (e *Extractor) Bigrams(text string) []Count {
	words := e.Words(text)
	counts := make(map[string]int)
	for i := 0; i+1 < len(words); i++ {
		counts[words[i]+" "+words[i+1]]++
	}
	return SortCounts(counts)
}

// Set returns the keywords as a set.
func Set(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

// SortCounts orders counts by count descending, then term ascending.
func SortCounts(counts map[string]int) []Count {
	result := make([]Count, 0, len(counts))
	for term, n := range counts {
		result = append(result, Count{Term: term, Count: n})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return result[i].Term < result[j].Term
	})
	return result
}

// Top returns at most n entries of counts.
func Top(counts []Count, n int) []Count {
	if n < 0 || len(counts) <= n {
		return counts
	}
	return counts[:n]
}
