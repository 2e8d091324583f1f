// Package trends summarizes what a pass saw: popular chains and themes among new tokens, and
// frequent words, phrases and named entities in the news.
package trends

import (
	"fmt"
	"strings"

	"github.com/dexradar/token-news-monitor/internal/keywords"
	"github.com/dexradar/token-news-monitor/internal/news"
	"github.com/dexradar/token-news-monitor/internal/tokens"
)

// DefaultTopN bounds each ranked list.
const DefaultTopN = 10

// DefaultThemes returns the built-in token themes.
func DefaultThemes() map[string][]string {
	return map[string][]string{
		"meme":     {"pepe", "doge", "meme", "elon", "wojak"},
		"ai":       {"ai", "artificial", "intelligence", "bot", "gpt"},
		"defi":     {"swap", "yield", "farm", "dao", "finance"},
		"gaming":   {"play", "game", "nft", "meta", "world"},
		"politics": {"trump", "biden", "putin", "president", "vote"},
	}
}

// TokenTrends describes a batch of tokens.
type TokenTrends struct {
	Chains []keywords.Count `json:"chains"`
	Themes []keywords.Count `json:"themes"`
	Words  []keywords.Count `json:"words"`
}

// NewsTrends describes a batch of articles.
type NewsTrends struct {
	Words         []keywords.Count `json:"words"`
	Bigrams       []keywords.Count `json:"bigrams"`
	People        []keywords.Count `json:"people,omitempty"`
	Organizations []keywords.Count `json:"organizations,omitempty"`
	Locations     []keywords.Count `json:"locations,omitempty"`
}

// DefaultEntityTopN bounds each entity list.
const DefaultEntityTopN = 5

// Analyzer computes trends.
type Analyzer struct {
	themes    map[string][]string
	extractor *keywords.Extractor
	entities  EntityRecognizer
	topN      int
}

// NewAnalyzer creates an analyzer. Nil themes or extractor fall back to the defaults. Named
// entities are recognized with ProseRecognizer.
func NewAnalyzer(themes map[string][]string, extractor *keywords.Extractor) *Analyzer {
	if len(themes) == 0 {
		themes = DefaultThemes()
	}
	if extractor == nil {
		extractor = keywords.NewExtractor()
	}
	normalized := make(map[string][]string, len(themes))
	for theme, words := range themes {
		for _, w := range words {
			if n := keywords.Normalize(w); n != "" {
				normalized[theme] = append(normalized[theme], n)
			}
		}
	}
	return &Analyzer{themes: normalized, extractor: extractor, entities: ProseRecognizer{}, topN: DefaultTopN}
}

// WithEntityRecognizer replaces the entity recognizer. Nil disables entity counting.
func (a *Analyzer) WithEntityRecognizer(r EntityRecognizer) *Analyzer {
	a.entities = r
	return a
}

// Tokens counts chains, themes and name words.
func (a *Analyzer) Tokens(toks []tokens.Token) TokenTrends {
	chains := make(map[string]int)
	themes := make(map[string]int)
	words := make(map[string]int)

	for _, t := range toks {
		chain := strings.ToLower(t.Chain)
		if chain == "" {
			chain = "unknown"
		}
		chains[chain]++

		name := keywords.Normalize(t.Name)
		for theme, themeWords := range a.themes {
			if matchesTheme(name, themeWords) {
				themes[theme]++
			}
		}

		for _, w := range a.extractor.Words(t.Name) {
			words[w]++
		}
	}

	return TokenTrends{
		Chains: keywords.SortCounts(chains),
		Themes: keywords.SortCounts(themes),
		Words:  keywords.Top(keywords.SortCounts(words), a.topN),
	}
}

// News counts frequent words, bigrams and named entities across titles and bodies. An entity
// recognition failure leaves the entity lists empty and is returned alongside the counts.
func (a *Analyzer) News(articles []news.Article) (NewsTrends, error) {
	texts := make([]string, 0, len(articles))
	for _, article := range articles {
		texts = append(texts, article.Text())
	}

	// Bigrams are counted per article so that pairs never span two articles.
	bigrams := make(map[string]int)
	for _, text := range texts {
		for _, c := range a.extractor.Bigrams(text) {
			bigrams[c.Term] += c.Count
		}
	}

	result := NewsTrends{
		Words:   keywords.Top(a.extractor.Frequencies(strings.Join(texts, " ")), a.topN),
		Bigrams: keywords.Top(keywords.SortCounts(bigrams), a.topN),
	}
	if a.entities == nil || len(articles) == 0 {
		return result, nil
	}

	// One document per pass; titles end a sentence so they do not run into the body.
	sentences := make([]string, 0, len(articles))
	for _, article := range articles {
		sentences = append(sentences, strings.TrimSpace(article.Title)+". "+strings.TrimSpace(article.Body))
	}
	found, err := a.entities.Entities(strings.Join(sentences, "\n"))
	if err != nil {
		return result, fmt.Errorf("recognizing entities: %w", err)
	}

	byLabel := map[string]map[string]int{
		LabelPerson:       {},
		LabelOrganization: {},
		LabelLocation:     {},
	}
	for _, e := range found {
		if counts, ok := byLabel[e.Label]; ok {
			counts[e.Text]++
		}
	}
	result.People = keywords.Top(keywords.SortCounts(byLabel[LabelPerson]), DefaultEntityTopN)
	result.Organizations = keywords.Top(keywords.SortCounts(byLabel[LabelOrganization]), DefaultEntityTopN)
	result.Locations = keywords.Top(keywords.SortCounts(byLabel[LabelLocation]), DefaultEntityTopN)
	return result, nil
}

// matchesTheme uses word matching for very short theme words, substring matching otherwise,
// so that "pepe" hits "pepeai" while "ai" does not hit "rain".
func matchesTheme(name string, themeWords []string) bool {
	for _, w := range themeWords {
		if len(w) <= 2 {
			if keywords.ContainsPhrase(name, w) {
				return true
			}
			continue
		}
		if strings.Contains(name, w) {
			return true
		}
	}
	return false
}
