// Package matcher correlates newly listed tokens with news articles by keyword presence.
package matcher

import (
	"strings"

	"github.com/dexradar/token-news-monitor/internal/keywords"
	"github.com/dexradar/token-news-monitor/internal/news"
	"github.com/dexradar/token-news-monitor/internal/tokens"
)

// genericTokenWords never count as evidence on their own in the keyword overlap pass.
var genericTokenWords = []string{
	"coin", "token", "inu", "protocol", "finance", "network", "dao", "swap", "chain", "official",
}

// Match is a token together with the articles that mention it.
type Match struct {
	Token        tokens.Token   `json:"token"`
	Articles     []news.Article `json:"articles"`
	ArticleCount int            `json:"article_count"`
	Terms        []string       `json:"terms"`
}

// Options tunes matching.
type Options struct {
	// MinTermLength drops name and symbol terms shorter than this many runes.
	MinTermLength int
	// WholeWord only matches terms on word boundaries. By default a term matches anywhere in
	// the normalized text.
	WholeWord bool
	// MinKeywordOverlap enables the keyword pass when > 0: an article also matches when this
	// many distinct name keywords appear among its keywords.
	MinKeywordOverlap int
	// StopWords extends the stop words of the keyword pass. Use the same list as the
	// extractor that produced the article keywords.
	StopWords []string
}

// Matcher finds the articles related to a token.
type Matcher struct {
	options   Options
	extractor *keywords.Extractor
}

// New creates a matcher.
func New(options Options) *Matcher {
	if options.MinTermLength <= 0 {
		options.MinTermLength = 2
	}
	stop := make([]string, 0, len(genericTokenWords)+len(options.StopWords))
	stop = append(stop, genericTokenWords...)
	stop = append(stop, options.StopWords...)
	return &Matcher{
		options:   options,
		extractor: keywords.NewExtractor(stop...),
	}
}

// Terms returns the primary terms derived from a token: its normalized name and symbol.
func (m *Matcher) Terms(token tokens.Token) []string {
	var terms []string
	for _, raw := range []string{token.Name, token.Symbol} {
		term := keywords.Normalize(raw)
		if len([]rune(term)) < m.options.MinTermLength || keywords.IsStopWord(term) {
			continue
		}
		if !contains(terms, term) {
			terms = append(terms, term)
		}
	}
	return terms
}

// Match returns the articles related to token in input order. The result is nil when no
// article matched.
func (m *Matcher) Match(token tokens.Token, articles []news.Article) *Match {
	terms := m.Terms(token)
	nameKeywords := m.extractor.Extract(token.Name)
	chain := keywords.Normalize(token.Chain)

	if len(terms) == 0 && (m.options.MinKeywordOverlap <= 0 || len(nameKeywords) == 0) {
		return nil
	}

	var matched []news.Article
	var hitTerms []string
	for _, article := range articles {
		text := keywords.Normalize(article.Text())
		hits := m.termHits(text, terms)
		if len(hits) == 0 {
			hits = m.keywordHits(article, nameKeywords)
		}
		if len(hits) == 0 {
			continue
		}

		matched = append(matched, article)
		for _, h := range hits {
			if !contains(hitTerms, h) {
				hitTerms = append(hitTerms, h)
			}
		}
		if chain != "" && keywords.ContainsPhrase(text, chain) && !contains(hitTerms, chain) {
			hitTerms = append(hitTerms, chain)
		}
	}

	if len(matched) == 0 {
		return nil
	}

	return &Match{
		Token:        token,
		Articles:     matched,
		ArticleCount: len(matched),
		Terms:        hitTerms,
	}
}

// MatchAll runs Match for every token and returns the non-empty results in token order.
func (m *Matcher) MatchAll(toks []tokens.Token, articles []news.Article) []Match {
	var matches []Match
	for _, token := range toks {
		if match := m.Match(token, articles); match != nil {
			matches = append(matches, *match)
		}
	}
	return matches
}

func (m *Matcher) termHits(text string, terms []string) []string {
	var hits []string
	for _, term := range terms {
		var found bool
		if m.options.WholeWord {
			found = keywords.ContainsPhrase(text, term)
		} else {
			found = strings.Contains(text, term)
		}
		if found {
			hits = append(hits, term)
		}
	}
	return hits
}

func (m *Matcher) keywordHits(article news.Article, nameKeywords []string) []string {
	if m.options.MinKeywordOverlap <= 0 || len(nameKeywords) == 0 {
		return nil
	}

	articleKeywords := article.Keywords
	if articleKeywords == nil {
		articleKeywords = m.extractor.Extract(article.Text())
	}
	set := keywords.Set(articleKeywords)

	var hits []string
	for _, kw := range nameKeywords {
		if _, ok := set[kw]; ok {
			hits = append(hits, kw)
		}
	}
	if len(hits) < m.options.MinKeywordOverlap {
		return nil
	}
	return hits
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
