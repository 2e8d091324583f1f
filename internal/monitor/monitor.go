// Package monitor runs monitoring passes: fetch news and new tokens, match them, and notify
// each token that appears in the news once per article.
package monitor

//go:generate mockgen -destination=../mocks/mock_monitor.go -package=mocks github.com/dexradar/token-news-monitor/internal/monitor NewsSource,TokenSource,Notifier,Deduplicator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dexradar/token-news-monitor/internal/logger"
	"github.com/dexradar/token-news-monitor/internal/matcher"
	"github.com/dexradar/token-news-monitor/internal/metrics"
	"github.com/dexradar/token-news-monitor/internal/news"
	"github.com/dexradar/token-news-monitor/internal/tokens"
	"github.com/dexradar/token-news-monitor/internal/trends"
)

// NewsSource fetches the current news articles.
type NewsSource interface {
	FetchArticles(ctx context.Context) ([]news.Article, error)
}

// TokenSource fetches newly listed tokens.
type TokenSource interface {
	FetchNewTokens(ctx context.Context) ([]tokens.Token, error)
}

// Notifier delivers one match.
type Notifier interface {
	SendMatch(ctx context.Context, match matcher.Match) error
}

// Deduplicator remembers what was already notified. FilterNotified returns nil when no article
// of the match is new.
type Deduplicator interface {
	FilterNotified(ctx context.Context, match matcher.Match) (*matcher.Match, error)
	MarkNotified(ctx context.Context, match matcher.Match) error
}

// Fetch sources
const (
	SourceNews   = "news"
	SourceTokens = "tokens"
)

// ErrPassInProgress is returned when a pass is requested while another one runs.
var ErrPassInProgress = errors.New("a monitoring pass is already in progress")

// FetchError is a transient failure to fetch one of the inputs of a pass. The pass is skipped.
type FetchError struct {
	Source string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetching %s: %v", e.Source, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// RunResult summarizes one pass.
type RunResult struct {
	RunID           string              `json:"run_id"`
	StartedAt       time.Time           `json:"started_at"`
	Duration        time.Duration       `json:"duration_ns"`
	ArticlesFetched int                 `json:"articles_fetched"`
	TokensFetched   int                 `json:"tokens_fetched"`
	Matches         int                 `json:"matches"`
	Notified        int                 `json:"notified"`
	Suppressed      int                 `json:"suppressed"`
	NotifyErrors    int                 `json:"notify_errors"`
	Skipped         bool                `json:"skipped"`
	Reason          string              `json:"reason,omitempty"`
	Error           string              `json:"error,omitempty"`
	TokenTrends     *trends.TokenTrends `json:"token_trends,omitempty"`
	NewsTrends      *trends.NewsTrends  `json:"news_trends,omitempty"`
}

// Options wires a Monitor. News, Tokens and Notifier are required; Dedup may be nil to
// disable notification de-duplication.
type Options struct {
	News     NewsSource
	Tokens   TokenSource
	Notifier Notifier
	Dedup    Deduplicator
	Matcher  *matcher.Matcher
	Trends   *trends.Analyzer
	Metrics  *metrics.Metrics
	Logger   *logger.Logger
}

// Monitor runs passes. Passes never overlap.
type Monitor struct {
	news     NewsSource
	tokens   TokenSource
	notifier Notifier
	dedup    Deduplicator
	matcher  *matcher.Matcher
	trends   *trends.Analyzer
	metrics  *metrics.Metrics
	log      *logger.Logger

	running sync.Mutex

	mu   sync.RWMutex
	last *RunResult
}

// New creates a monitor.
func New(options Options) (*Monitor, error) {
	if options.News == nil || options.Tokens == nil || options.Notifier == nil {
		return nil, errors.New("news source, token source and notifier are required")
	}
	if options.Matcher == nil {
		options.Matcher = matcher.New(matcher.Options{})
	}
	if options.Trends == nil {
		options.Trends = trends.NewAnalyzer(nil, nil)
	}
	if options.Logger == nil {
		options.Logger = logger.Discard()
	}

	return &Monitor{
		news:     options.News,
		tokens:   options.Tokens,
		notifier: options.Notifier,
		dedup:    options.Dedup,
		matcher:  options.Matcher,
		trends:   options.Trends,
		metrics:  options.Metrics,
		log:      options.Logger,
	}, nil
}

// RunOnce executes one pass. A fetch failure returns the partial result and a *FetchError; the
// next call runs normally.
func (m *Monitor) RunOnce(ctx context.Context) (*RunResult, error) {
	if !m.running.TryLock() {
		return nil, ErrPassInProgress
	}
	defer m.running.Unlock()

	result := &RunResult{
		RunID:     uuid.NewString(),
		StartedAt: time.Now(),
	}
	log := m.log.With("run_id", result.RunID)
	log.Info("🚀 starting monitoring pass")

	err := m.run(ctx, log, result)
	result.Duration = time.Since(result.StartedAt)

	status := metrics.StatusSuccess
	switch {
	case err != nil:
		status = metrics.StatusFailed
		result.Error = err.Error()
		log.Error("❌ monitoring pass failed", "error", err, "duration", result.Duration)
	case result.Skipped:
		status = metrics.StatusSkipped
		log.Info("⏭️ monitoring pass skipped", "reason", result.Reason)
	default:
		log.Info("✅ monitoring pass completed",
			"matches", result.Matches,
			"notified", result.Notified,
			"suppressed", result.Suppressed,
			"notify_errors", result.NotifyErrors,
			"duration", result.Duration,
		)
	}
	m.metrics.RecordPass(status, result.Duration.Seconds(), time.Now().Unix())

	m.mu.Lock()
	m.last = result
	m.mu.Unlock()

	return result, err
}

func (m *Monitor) run(ctx context.Context, log *logger.Logger, result *RunResult) error {
	articles, err := m.news.FetchArticles(ctx)
	if err != nil {
		m.metrics.RecordFetchError(SourceNews)
		return &FetchError{Source: SourceNews, Err: err}
	}
	result.ArticlesFetched = len(articles)

	toks, err := m.tokens.FetchNewTokens(ctx)
	if err != nil {
		m.metrics.RecordFetchError(SourceTokens)
		return &FetchError{Source: SourceTokens, Err: err}
	}
	result.TokensFetched = len(toks)
	m.metrics.RecordFetched(len(articles), len(toks))

	log.Info("📥 fetched inputs", "articles", len(articles), "tokens", len(toks))

	if len(articles) == 0 || len(toks) == 0 {
		result.Skipped = true
		result.Reason = "no data to compare"
		return nil
	}

	m.logTrends(log, result, toks, articles)

	matches := m.matcher.MatchAll(toks, articles)
	result.Matches = len(matches)
	m.metrics.RecordMatches(len(matches))
	if len(matches) == 0 {
		log.Info("🔍 no tokens found in the news")
		return nil
	}

	for _, match := range matches {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("notifying matches: %w", err)
		}
		m.notify(ctx, log, result, match)
	}

	return nil
}

func (m *Monitor) notify(ctx context.Context, log *logger.Logger, result *RunResult, match matcher.Match) {
	tokenLog := log.With("token", match.Token.Name, "chain", match.Token.Chain)

	toSend := &match
	if m.dedup != nil {
		filtered, err := m.dedup.FilterNotified(ctx, match)
		switch {
		case err != nil:
			m.metrics.RecordCacheError("get")
			tokenLog.Warn("⚠️ notification cache lookup failed, notifying anyway", "error", err)
		case filtered == nil:
			result.Suppressed++
			m.metrics.RecordNotification(metrics.NotificationSuppressed)
			tokenLog.Debug("💾 all articles already notified")
			return
		default:
			toSend = filtered
		}
	}

	if err := m.notifier.SendMatch(ctx, *toSend); err != nil {
		result.NotifyErrors++
		m.metrics.RecordNotification(metrics.NotificationFailed)
		tokenLog.Error("❌ failed to send notification", "error", err)
		return
	}
	result.Notified++
	m.metrics.RecordNotification(metrics.NotificationSent)
	tokenLog.Info("📤 notification sent", "articles", toSend.ArticleCount, "terms", toSend.Terms)

	if m.dedup != nil {
		if err := m.dedup.MarkNotified(ctx, *toSend); err != nil {
			m.metrics.RecordCacheError("set")
			tokenLog.Warn("⚠️ failed to record notification", "error", err)
		}
	}
}

func (m *Monitor) logTrends(log *logger.Logger, result *RunResult, toks []tokens.Token, articles []news.Article) {
	tokenTrends := m.trends.Tokens(toks)
	newsTrends, err := m.trends.News(articles)
	if err != nil {
		log.Warn("⚠️ named entity recognition failed", "error", err)
	}
	result.TokenTrends = &tokenTrends
	result.NewsTrends = &newsTrends

	log.Info("📊 token trends",
		"chains", tokenTrends.Chains,
		"themes", tokenTrends.Themes,
		"words", tokenTrends.Words,
	)
	log.Info("📰 news trends",
		"words", newsTrends.Words,
		"bigrams", newsTrends.Bigrams,
		"people", newsTrends.People,
		"organizations", newsTrends.Organizations,
		"locations", newsTrends.Locations,
	)
}

// LastResult returns the result of the most recent pass, or nil before the first one.
func (m *Monitor) LastResult() *RunResult {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.last == nil {
		return nil
	}
	copied := *m.last
	return &copied
}
