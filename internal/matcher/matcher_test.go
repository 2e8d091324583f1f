package matcher

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dexradar/token-news-monitor/internal/keywords"
	"github.com/dexradar/token-news-monitor/internal/news"
	"github.com/dexradar/token-news-monitor/internal/tokens"
)

func TestMatchFooCoinExample(t *testing.T) {
	m := New(Options{})
	token := tokens.Token{Name: "FooCoin", Symbol: "FOO"}
	articles := []news.Article{
		{Title: "FooCoin launches on DEX", URL: "https://example.com/1"},
		{Title: "Unrelated market news", URL: "https://example.com/2"},
	}

	match := m.Match(token, articles)
	require.NotNil(t, match)
	require.Len(t, match.Articles, 1)
	assert.Equal(t, "FooCoin launches on DEX", match.Articles[0].Title)
	assert.Equal(t, 1, match.ArticleCount)
	assert.Equal(t, []string{"foocoin"}, match.Terms)
}

func TestMatchNoOverlapReturnsNil(t *testing.T) {
	m := New(Options{MinKeywordOverlap: 1})
	token := tokens.Token{Name: "Zebra Protocol", Symbol: "ZBR", Chain: "solana"}
	articles := []news.Article{
		{Title: "Bitcoin ETF inflows rise", Body: "Solana and Ethereum trail behind"},
		{Title: "Fed holds rates", Body: "Markets are calm"},
	}

	assert.Nil(t, m.Match(token, articles))
}

func TestMatchIsCaseInsensitiveAndUsesSymbol(t *testing.T) {
	m := New(Options{})
	token := tokens.Token{Name: "Dogwifhat", Symbol: "WIF"}
	articles := []news.Article{
		{Title: "Traders pile into $wif", Body: "Memecoins rally"},
		{Title: "DOGWIFHAT listed", Body: "A listing"},
		{Title: "Nothing here", Body: "Dogs and hats"},
	}

	match := m.Match(token, articles)
	require.NotNil(t, match)
	assert.Equal(t, 2, match.ArticleCount)
	assert.Equal(t, "Traders pile into $wif", match.Articles[0].Title)
	assert.Equal(t, "DOGWIFHAT listed", match.Articles[1].Title)
	assert.ElementsMatch(t, []string{"wif", "dogwifhat"}, match.Terms)
}

func TestMatchNameInsideLongerWord(t *testing.T) {
	m := New(Options{})
	token := tokens.Token{Name: "FooCoin", Symbol: "FOO"}
	articles := []news.Article{
		{Title: "FooCoins surge 40%"},
		{Title: "SuperFooCoin rally"},
		{Title: "#FooCoin trending"},
		{Title: "Bar rallies"},
	}

	match := m.Match(token, articles)
	require.NotNil(t, match)
	require.Equal(t, 3, match.ArticleCount)
	assert.Equal(t, "FooCoins surge 40%", match.Articles[0].Title)
	assert.Equal(t, "SuperFooCoin rally", match.Articles[1].Title)
	assert.Equal(t, "#FooCoin trending", match.Articles[2].Title)
}

func TestMatchWholeWordMode(t *testing.T) {
	token := tokens.Token{Name: "Dogwifhat", Symbol: "WIF"}
	articles := []news.Article{
		{Title: "wifi routers get cheaper"},
		{Title: "Traders pile into $wif"},
	}

	match := New(Options{}).Match(token, articles)
	require.NotNil(t, match)
	assert.Equal(t, 2, match.ArticleCount)

	match = New(Options{WholeWord: true}).Match(token, articles)
	require.NotNil(t, match)
	require.Equal(t, 1, match.ArticleCount)
	assert.Equal(t, "Traders pile into $wif", match.Articles[0].Title)

	assert.Nil(t, New(Options{WholeWord: true}).Match(tokens.Token{Name: "Foo"}, []news.Article{{Title: "TheFooCoin surges"}}))
}

func TestMatchChainIsContextOnly(t *testing.T) {
	m := New(Options{})
	token := tokens.Token{Name: "FooCoin", Symbol: "FOO", Chain: "solana"}

	assert.Nil(t, m.Match(token, []news.Article{{Title: "Solana hits record volume"}}))

	match := m.Match(token, []news.Article{{Title: "FooCoin debuts on Solana"}})
	require.NotNil(t, match)
	assert.Equal(t, []string{"foocoin", "solana"}, match.Terms)
}

func TestTermsDropShortAndStopWords(t *testing.T) {
	m := New(Options{MinTermLength: 3})

	assert.Equal(t, []string{"pepe"}, m.Terms(tokens.Token{Name: "Pepe", Symbol: "PEPE"}))
	assert.Empty(t, m.Terms(tokens.Token{Name: "The", Symbol: "X"}))
	assert.Equal(t, []string{"book of meme", "bome"}, m.Terms(tokens.Token{Name: "Book of Meme", Symbol: "BOME"}))
}

func TestMatchKeywordOverlap(t *testing.T) {
	token := tokens.Token{Name: "Trump Media Coin", Symbol: "TMC"}
	article := news.Article{Title: "Trump media group files for ETF", Body: "The filing surprised analysts"}
	article.Keywords = keywords.Extract(article.Text())

	assert.Nil(t, New(Options{}).Match(token, []news.Article{article}))

	match := New(Options{MinKeywordOverlap: 2}).Match(token, []news.Article{article})
	require.NotNil(t, match)
	assert.ElementsMatch(t, []string{"trump", "media"}, match.Terms)

	assert.Nil(t, New(Options{MinKeywordOverlap: 3}).Match(token, []news.Article{article}),
		"generic words like coin never count toward the overlap")
}

func TestMatchKeywordOverlapHonorsStopWords(t *testing.T) {
	token := tokens.Token{Name: "Moon Rocket"}
	articles := []news.Article{{Title: "Moon mission delayed", Body: "Launch moved to spring"}}

	assert.NotNil(t, New(Options{MinKeywordOverlap: 1}).Match(token, articles))
	assert.Nil(t, New(Options{MinKeywordOverlap: 1, StopWords: []string{"moon"}}).Match(token, articles),
		"a configured stop word never counts toward the overlap")
}

func TestMatchAll(t *testing.T) {
	m := New(Options{})
	toks := []tokens.Token{
		{Name: "FooCoin", Symbol: "FOO"},
		{Name: "BarCoin", Symbol: "BAR"},
		{Name: "BazCoin", Symbol: "BAZ"},
	}
	articles := []news.Article{
		{Title: "BazCoin and FooCoin partner"},
	}

	matches := m.MatchAll(toks, articles)
	require.Len(t, matches, 2)
	assert.Equal(t, "FooCoin", matches[0].Token.Name)
	assert.Equal(t, "BazCoin", matches[1].Token.Name)
}

// Property: when no article contains any term derived from the token, the result is empty;
// when an article contains the name or symbol, it is included, and the count always equals
// the number of articles.
func TestMatchProperties(t *testing.T) {
	m := New(Options{})
	filler := []string{"market update", "rates unchanged", "stocks slide", "gold steady"}

	for i := 0; i < 50; i++ {
		name := fmt.Sprintf("Tok%dcoin", i)
		symbol := fmt.Sprintf("TK%d", i)
		token := tokens.Token{Name: name, Symbol: symbol}

		var articles []news.Article
		for j, f := range filler {
			articles = append(articles, news.Article{Title: fmt.Sprintf("%s %d", f, j)})
		}
		assert.Nil(t, m.Match(token, articles), "token %s", name)

		articles = append(articles, news.Article{Title: "Breaking: " + name + " listed"})
		if i%2 == 0 {
			articles = append(articles, news.Article{Body: "ticker " + symbol + " is trending"})
		}

		match := m.Match(token, articles)
		require.NotNil(t, match, "token %s", name)
		assert.Equal(t, len(match.Articles), match.ArticleCount)
		assert.Equal(t, "Breaking: "+name+" listed", match.Articles[0].Title)
		if i%2 == 0 {
			assert.Equal(t, 2, match.ArticleCount)
		} else {
			assert.Equal(t, 1, match.ArticleCount)
		}
	}
}
