package monitor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dexradar/token-news-monitor/internal/cache"
	"github.com/dexradar/token-news-monitor/internal/matcher"
	"github.com/dexradar/token-news-monitor/internal/metrics"
	"github.com/dexradar/token-news-monitor/internal/mocks"
	"github.com/dexradar/token-news-monitor/internal/news"
	"github.com/dexradar/token-news-monitor/internal/tokens"
)

var (
	fooCoin  = tokens.Token{Name: "FooCoin", Symbol: "FOO", Chain: "solana", Address: "Foo111", Source: "dex_screener"}
	barzilla = tokens.Token{Name: "Barzilla", Symbol: "BRZ", Chain: "base", Address: "0xbar", Source: "dex_screener"}

	fooArticle       = news.Article{Title: "FooCoin launches on DEX", URL: "https://news.example.com/foo"}
	unrelatedArticle = news.Article{Title: "Unrelated market news", URL: "https://news.example.com/market"}
	barArticle       = news.Article{Title: "Barzilla stomps the charts", URL: "https://news.example.com/bar"}
)

type fixture struct {
	news     *mocks.MockNewsSource
	tokens   *mocks.MockTokenSource
	notifier *mocks.MockNotifier
	metrics  *metrics.Metrics
}

func newFixture(t *testing.T) *fixture {
	ctrl := gomock.NewController(t)
	return &fixture{
		news:     mocks.NewMockNewsSource(ctrl),
		tokens:   mocks.NewMockTokenSource(ctrl),
		notifier: mocks.NewMockNotifier(ctrl),
		metrics:  metrics.New("test"),
	}
}

func (f *fixture) monitor(t *testing.T, dedup Deduplicator) *Monitor {
	t.Helper()
	m, err := New(Options{
		News:     f.news,
		Tokens:   f.tokens,
		Notifier: f.notifier,
		Dedup:    dedup,
		Metrics:  f.metrics,
	})
	require.NoError(t, err)
	return m
}

func TestRunOnceNotifiesMatch(t *testing.T) {
	f := newFixture(t)
	m := f.monitor(t, nil)

	f.news.EXPECT().FetchArticles(gomock.Any()).Return([]news.Article{fooArticle, unrelatedArticle}, nil)
	f.tokens.EXPECT().FetchNewTokens(gomock.Any()).Return([]tokens.Token{fooCoin}, nil)
	f.notifier.EXPECT().SendMatch(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, match matcher.Match) error {
		assert.Equal(t, "FooCoin", match.Token.Name)
		assert.Equal(t, 1, match.ArticleCount)
		assert.Equal(t, []news.Article{fooArticle}, match.Articles)
		return nil
	})

	result, err := m.RunOnce(context.Background())
	require.NoError(t, err)

	assert.NotEmpty(t, result.RunID)
	assert.Equal(t, 2, result.ArticlesFetched)
	assert.Equal(t, 1, result.TokensFetched)
	assert.Equal(t, 1, result.Matches)
	assert.Equal(t, 1, result.Notified)
	assert.False(t, result.Skipped)
	require.NotNil(t, result.TokenTrends)
	require.NotNil(t, result.NewsTrends)

	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.PassesTotal.WithLabelValues(metrics.StatusSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.Notifications.WithLabelValues(metrics.NotificationSent)))
}

func TestRunOnceNoMatches(t *testing.T) {
	f := newFixture(t)
	m := f.monitor(t, nil)

	f.news.EXPECT().FetchArticles(gomock.Any()).Return([]news.Article{unrelatedArticle}, nil)
	f.tokens.EXPECT().FetchNewTokens(gomock.Any()).Return([]tokens.Token{fooCoin}, nil)

	result, err := m.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, result.Matches)
	assert.Zero(t, result.Notified)
}

func TestRunOnceFetchFailureDoesNotStopNextPass(t *testing.T) {
	f := newFixture(t)
	m := f.monitor(t, nil)
	ctx := context.Background()

	providerErr := errors.New("newsapi unavailable")
	gomock.InOrder(
		f.news.EXPECT().FetchArticles(gomock.Any()).Return(nil, providerErr),
		f.news.EXPECT().FetchArticles(gomock.Any()).Return([]news.Article{fooArticle}, nil),
	)
	f.tokens.EXPECT().FetchNewTokens(gomock.Any()).Return([]tokens.Token{fooCoin}, nil).Times(1)
	f.notifier.EXPECT().SendMatch(gomock.Any(), gomock.Any()).Return(nil).Times(1)

	result, err := m.RunOnce(ctx)
	require.Error(t, err)

	var fetchErr *FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, SourceNews, fetchErr.Source)
	assert.ErrorIs(t, err, providerErr)
	require.NotNil(t, result)
	assert.Equal(t, err.Error(), result.Error)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.FetchErrors.WithLabelValues(SourceNews)))

	result, err = m.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Notified)
}

func TestRunOnceTokenFetchFailure(t *testing.T) {
	f := newFixture(t)
	m := f.monitor(t, nil)

	f.news.EXPECT().FetchArticles(gomock.Any()).Return([]news.Article{fooArticle}, nil)
	f.tokens.EXPECT().FetchNewTokens(gomock.Any()).Return(nil, errors.New("all 2 token sources failed"))

	_, err := m.RunOnce(context.Background())

	var fetchErr *FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, SourceTokens, fetchErr.Source)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.PassesTotal.WithLabelValues(metrics.StatusFailed)))
}

func TestRunOnceSkipsWithoutData(t *testing.T) {
	f := newFixture(t)
	m := f.monitor(t, nil)

	f.news.EXPECT().FetchArticles(gomock.Any()).Return([]news.Article{fooArticle}, nil)
	f.tokens.EXPECT().FetchNewTokens(gomock.Any()).Return(nil, nil)

	result, err := m.RunOnce(context.Background())
	require.NoError(t, err)
	assert.True(t, result.Skipped)
	assert.Equal(t, "no data to compare", result.Reason)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.PassesTotal.WithLabelValues(metrics.StatusSkipped)))
}

func TestRunOnceNotifyErrorContinues(t *testing.T) {
	f := newFixture(t)
	ctrl := gomock.NewController(t)
	dedup := mocks.NewMockDeduplicator(ctrl)
	m := f.monitor(t, dedup)

	f.news.EXPECT().FetchArticles(gomock.Any()).Return([]news.Article{fooArticle, barArticle}, nil)
	f.tokens.EXPECT().FetchNewTokens(gomock.Any()).Return([]tokens.Token{fooCoin, barzilla}, nil)

	dedup.EXPECT().FilterNotified(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, match matcher.Match) (*matcher.Match, error) {
		return &match, nil
	}).Times(2)

	gomock.InOrder(
		f.notifier.EXPECT().SendMatch(gomock.Any(), gomock.Any()).Return(errors.New("discord API returned status 500")),
		f.notifier.EXPECT().SendMatch(gomock.Any(), gomock.Any()).Return(nil),
	)

	// Only the delivered match is remembered
	dedup.EXPECT().MarkNotified(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, match matcher.Match) error {
		assert.Equal(t, "Barzilla", match.Token.Name)
		return nil
	}).Times(1)

	result, err := m.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, result.Matches)
	assert.Equal(t, 1, result.Notified)
	assert.Equal(t, 1, result.NotifyErrors)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.Notifications.WithLabelValues(metrics.NotificationFailed)))
}

func TestRunOnceCacheLookupErrorStillNotifies(t *testing.T) {
	f := newFixture(t)
	ctrl := gomock.NewController(t)
	dedup := mocks.NewMockDeduplicator(ctrl)
	m := f.monitor(t, dedup)

	f.news.EXPECT().FetchArticles(gomock.Any()).Return([]news.Article{fooArticle}, nil)
	f.tokens.EXPECT().FetchNewTokens(gomock.Any()).Return([]tokens.Token{fooCoin}, nil)
	dedup.EXPECT().FilterNotified(gomock.Any(), gomock.Any()).Return(nil, errors.New("redis down"))
	f.notifier.EXPECT().SendMatch(gomock.Any(), gomock.Any()).Return(nil)
	dedup.EXPECT().MarkNotified(gomock.Any(), gomock.Any()).Return(errors.New("redis down"))

	result, err := m.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Notified)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.CacheErrors.WithLabelValues("get")))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.CacheErrors.WithLabelValues("set")))
}

func TestRunOnceSuppressesAlreadyNotified(t *testing.T) {
	f := newFixture(t)
	manager := cache.NewManagerWithCache(cache.NewMemoryCache(time.Hour), "memory")
	defer manager.Close()
	m := f.monitor(t, manager)
	ctx := context.Background()

	later := news.Article{Title: "FooCoin rallies again", URL: "https://news.example.com/foo-2"}
	gomock.InOrder(
		f.news.EXPECT().FetchArticles(gomock.Any()).Return([]news.Article{fooArticle}, nil),
		f.news.EXPECT().FetchArticles(gomock.Any()).Return([]news.Article{fooArticle}, nil),
		f.news.EXPECT().FetchArticles(gomock.Any()).Return([]news.Article{fooArticle, later}, nil),
	)
	f.tokens.EXPECT().FetchNewTokens(gomock.Any()).Return([]tokens.Token{fooCoin}, nil).Times(3)

	var sent []matcher.Match
	f.notifier.EXPECT().SendMatch(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, match matcher.Match) error {
		sent = append(sent, match)
		return nil
	}).Times(2)

	result, err := m.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Notified)

	result, err = m.RunOnce(ctx)
	require.NoError(t, err)
	assert.Zero(t, result.Notified)
	assert.Equal(t, 1, result.Suppressed)

	result, err = m.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Notified)

	require.Len(t, sent, 2)
	assert.Equal(t, []news.Article{later}, sent[1].Articles)
	assert.Equal(t, 1, sent[1].ArticleCount)
}

func TestRunOnceRejectsOverlappingPass(t *testing.T) {
	f := newFixture(t)
	m := f.monitor(t, nil)

	started := make(chan struct{})
	release := make(chan struct{})
	f.news.EXPECT().FetchArticles(gomock.Any()).DoAndReturn(func(context.Context) ([]news.Article, error) {
		close(started)
		<-release
		return nil, nil
	})
	f.tokens.EXPECT().FetchNewTokens(gomock.Any()).Return(nil, nil)

	done := make(chan error, 1)
	go func() {
		_, err := m.RunOnce(context.Background())
		done <- err
	}()

	<-started
	_, err := m.RunOnce(context.Background())
	assert.ErrorIs(t, err, ErrPassInProgress)

	close(release)
	require.NoError(t, <-done)
}

func TestLastResult(t *testing.T) {
	f := newFixture(t)
	m := f.monitor(t, nil)

	assert.Nil(t, m.LastResult())

	f.news.EXPECT().FetchArticles(gomock.Any()).Return(nil, nil)
	f.tokens.EXPECT().FetchNewTokens(gomock.Any()).Return(nil, nil)

	result, err := m.RunOnce(context.Background())
	require.NoError(t, err)

	last := m.LastResult()
	require.NotNil(t, last)
	assert.Equal(t, result.RunID, last.RunID)
}

func TestNewRequiresCollaborators(t *testing.T) {
	_, err := New(Options{})
	assert.Error(t, err)
}
