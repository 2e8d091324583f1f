package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordPass(t *testing.T) {
	m := New("test")

	m.RecordPass(StatusSuccess, 1.5, 1700000000)
	m.RecordPass(StatusFailed, 0.2, 1700000100)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.PassesTotal.WithLabelValues(StatusSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PassesTotal.WithLabelValues(StatusFailed)))
	assert.Equal(t, 1700000000.0, testutil.ToFloat64(m.LastSuccessfulPass))
}

func TestCounters(t *testing.T) {
	m := New("test")

	m.RecordFetched(10, 4)
	m.RecordFetched(5, 1)
	m.RecordMatches(3)
	m.RecordFetchError("news")
	m.RecordNotification(NotificationSent)
	m.RecordNotification(NotificationSent)
	m.RecordNotification(NotificationSuppressed)
	m.RecordCacheError("get")

	assert.Equal(t, 15.0, testutil.ToFloat64(m.ArticlesFetched))
	assert.Equal(t, 5.0, testutil.ToFloat64(m.TokensFetched))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.MatchesFound))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FetchErrors.WithLabelValues("news")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Notifications.WithLabelValues(NotificationSent)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Notifications.WithLabelValues(NotificationSuppressed)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheErrors.WithLabelValues("get")))
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.RecordPass(StatusSuccess, 1, 1)
		m.RecordFetchError("tokens")
		m.RecordFetched(1, 1)
		m.RecordMatches(1)
		m.RecordNotification(NotificationFailed)
		m.RecordCacheError("set")
	})
}

func TestSeparateRegistries(t *testing.T) {
	// Two instances must not collide on registration
	a := New("")
	b := New("")
	a.RecordMatches(2)

	assert.Equal(t, 2.0, testutil.ToFloat64(a.MatchesFound))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.MatchesFound))
}

func TestHandler(t *testing.T) {
	m := New("test")
	m.RecordMatches(1)

	server := httptest.NewServer(m.Handler())
	defer server.Close()

	resp, err := http.Get(server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "test_match_matches_total 1")
}
