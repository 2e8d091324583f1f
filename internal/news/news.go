// Package news fetches recent crypto news articles from NewsAPI.
package news

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/dexradar/token-news-monitor/internal/keywords"
	"github.com/dexradar/token-news-monitor/internal/logger"
)

// DefaultBaseURL is the NewsAPI endpoint root.
const DefaultBaseURL = "https://newsapi.org/v2"

// removedMarker is what NewsAPI puts in every field of a withdrawn article.
const removedMarker = "[Removed]"

// Article is a single news article.
type Article struct {
	Title       string    `json:"title"`
	Body        string    `json:"body"`
	URL         string    `json:"url"`
	Source      string    `json:"source"`
	PublishedAt time.Time `json:"published_at"`
	Keywords    []string  `json:"keywords,omitempty"`
}

// Text returns the text used for matching.
func (a Article) Text() string {
	return a.Title + " " + a.Body
}

// ID identifies an article across passes: its URL, or its lowercased title when it has none.
func (a Article) ID() string {
	if a.URL != "" {
		return a.URL
	}
	return "title:" + strings.ToLower(a.Title)
}

// Options configures which articles the client asks for.
type Options struct {
	BaseURL  string
	Query    string
	PageSize int
	Country  string
	Domains  []string
}

// Client handles NewsAPI requests
type Client struct {
	apiKey     string
	options    Options
	extractor  *keywords.Extractor
	httpClient *http.Client
	userAgent  string
	log        *logger.Logger
}

// NewClient creates a new NewsAPI client
func NewClient(apiKey string, options Options, extractor *keywords.Extractor, log *logger.Logger) *Client {
	if options.BaseURL == "" {
		options.BaseURL = DefaultBaseURL
	}
	if options.PageSize <= 0 {
		options.PageSize = 20
	}
	if extractor == nil {
		extractor = keywords.NewExtractor()
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Client{
		apiKey:    apiKey,
		options:   options,
		extractor: extractor,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		userAgent: "token-news-monitor/1.0",
		log:       log,
	}
}

// APIError is an error response from NewsAPI.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("newsapi returned status %d (%s): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("newsapi returned status %d", e.StatusCode)
}

type apiResponse struct {
	Status       string       `json:"status"`
	Code         string       `json:"code"`
	Message      string       `json:"message"`
	TotalResults int          `json:"totalResults"`
	Articles     []apiArticle `json:"articles"`
}

type apiArticle struct {
	Source struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"source"`
	Author      string `json:"author"`
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	URLToImage  string `json:"urlToImage"`
	PublishedAt string `json:"publishedAt"`
	Content     string `json:"content"`
}

// FetchCryptoNews fetches the latest crypto-related articles.
func (c *Client) FetchCryptoNews(ctx context.Context) ([]Article, error) {
	params := url.Values{}
	params.Set("q", c.options.Query)
	params.Set("language", "en")
	params.Set("sortBy", "publishedAt")
	params.Set("pageSize", strconv.Itoa(c.options.PageSize))
	return c.get(ctx, "/everything", params)
}

// FetchTopHeadlines fetches the top headlines for the configured country.
func (c *Client) FetchTopHeadlines(ctx context.Context) ([]Article, error) {
	params := url.Values{}
	params.Set("country", c.options.Country)
	params.Set("pageSize", strconv.Itoa(c.options.PageSize))
	return c.get(ctx, "/top-headlines", params)
}

// FetchWorldNews fetches popular articles from the configured domains.
func (c *Client) FetchWorldNews(ctx context.Context) ([]Article, error) {
	params := url.Values{}
	params.Set("language", "en")
	params.Set("sortBy", "popularity")
	params.Set("pageSize", strconv.Itoa(c.options.PageSize))
	params.Set("domains", strings.Join(c.options.Domains, ","))
	return c.get(ctx, "/everything", params)
}

// FetchArticles runs every query in turn and returns the merged, de-duplicated articles with
// keywords attached. It only fails when every query failed.
func (c *Client) FetchArticles(ctx context.Context) ([]Article, error) {
	type query struct {
		name  string
		fetch func(context.Context) ([]Article, error)
	}

	var queries []query
	if c.options.Country != "" {
		queries = append(queries, query{"headlines", c.FetchTopHeadlines})
	}
	if c.options.Query != "" {
		queries = append(queries, query{"crypto", c.FetchCryptoNews})
	}
	if len(c.options.Domains) > 0 {
		queries = append(queries, query{"world", c.FetchWorldNews})
	}
	if len(queries) == 0 {
		return nil, fmt.Errorf("no news queries configured")
	}

	var all []Article
	var lastErr error
	failures := 0
	for _, q := range queries {
		articles, err := q.fetch(ctx)
		if err != nil {
			failures++
			lastErr = err
			c.log.Warn("❌ news query failed", "query", q.name, "error", err)
			continue
		}
		c.log.Debug("fetched news", "query", q.name, "articles", len(articles))
		all = append(all, articles...)
	}

	if failures == len(queries) {
		return nil, fmt.Errorf("all %d news queries failed: %w", failures, lastErr)
	}

	unique := GetUniqueArticles(all)
	for i := range unique {
		unique[i].Keywords = c.extractor.Extract(unique[i].Text())
	}

	c.log.Info("📰 fetched news articles", "articles", len(unique), "failed_queries", failures)
	return unique, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values) ([]Article, error) {
	endpoint := strings.TrimRight(c.options.BaseURL, "/") + path + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("X-Api-Key", c.apiKey)
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	var parsed apiResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		if resp.StatusCode != http.StatusOK {
			return nil, &APIError{StatusCode: resp.StatusCode}
		}
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	if resp.StatusCode != http.StatusOK || parsed.Status == "error" {
		return nil, &APIError{StatusCode: resp.StatusCode, Code: parsed.Code, Message: parsed.Message}
	}

	articles := make([]Article, 0, len(parsed.Articles))
	for _, raw := range parsed.Articles {
		if article, ok := toArticle(raw); ok {
			articles = append(articles, article)
		}
	}
	return articles, nil
}

// toArticle converts a NewsAPI article, rejecting ones without a title or description.
func toArticle(raw apiArticle) (Article, bool) {
	title := strings.TrimSpace(raw.Title)
	body := StripHTML(raw.Description)
	if title == "" || body == "" || title == removedMarker || body == removedMarker {
		return Article{}, false
	}

	article := Article{
		Title:  title,
		Body:   body,
		URL:    strings.TrimSpace(raw.URL),
		Source: raw.Source.Name,
	}
	if t, err := time.Parse(time.RFC3339, raw.PublishedAt); err == nil {
		article.PublishedAt = t
	}
	return article, true
}

// StripHTML returns the visible text of an HTML fragment with whitespace collapsed.
func StripHTML(fragment string) string {
	if !strings.ContainsAny(fragment, "<&") {
		return strings.Join(strings.Fields(fragment), " ")
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return strings.Join(strings.Fields(fragment), " ")
	}
	doc.Find("script, style").Remove()
	return strings.Join(strings.Fields(doc.Text()), " ")
}

// GetUniqueArticles removes duplicate articles by URL, falling back to title
func GetUniqueArticles(articles []Article) []Article {
	seen := make(map[string]bool)
	var unique []Article

	for _, article := range articles {
		key := article.ID()
		if !seen[key] {
			seen[key] = true
			unique = append(unique, article)
		}
	}

	return unique
}
