// Package metrics provides Prometheus metrics for monitoring passes.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Pass statuses
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
	StatusSkipped = "skipped"
)

// Notification outcomes
const (
	NotificationSent       = "sent"
	NotificationFailed     = "failed"
	NotificationSuppressed = "suppressed"
)

// Metrics holds all Prometheus metrics for the application. A nil *Metrics records nothing.
type Metrics struct {
	registry *prometheus.Registry

	// Pass metrics
	PassesTotal  *prometheus.CounterVec
	PassDuration prometheus.Histogram
	FetchErrors  *prometheus.CounterVec

	// Data metrics
	ArticlesFetched prometheus.Counter
	TokensFetched   prometheus.Counter
	MatchesFound    prometheus.Counter

	// Notification metrics
	Notifications *prometheus.CounterVec
	CacheErrors   *prometheus.CounterVec

	// Health metrics
	LastSuccessfulPass prometheus.Gauge
}

// New creates a Metrics instance registered on its own registry.
func New(namespace string) *Metrics {
	if namespace == "" {
		namespace = "token_news_monitor"
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		PassesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pass",
			Name:      "runs_total",
			Help:      "Total number of monitoring passes by status",
		}, []string{"status"}),
		PassDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pass",
			Name:      "duration_seconds",
			Help:      "Monitoring pass duration in seconds",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60, 120},
		}),
		FetchErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "fetch",
			Name:      "errors_total",
			Help:      "Total number of failed fetches by source",
		}, []string{"source"}),

		ArticlesFetched: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "fetch",
			Name:      "articles_total",
			Help:      "Total number of news articles fetched",
		}),
		TokensFetched: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "fetch",
			Name:      "tokens_total",
			Help:      "Total number of new tokens fetched",
		}),
		MatchesFound: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "match",
			Name:      "matches_total",
			Help:      "Total number of token-news matches found",
		}),

		Notifications: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "notify",
			Name:      "notifications_total",
			Help:      "Total number of matches by notification outcome",
		}, []string{"outcome"}),
		CacheErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "errors_total",
			Help:      "Total number of notification cache errors by operation",
		}, []string{"operation"}),

		LastSuccessfulPass: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_pass_timestamp",
			Help:      "Unix timestamp of last successful pass",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// RecordPass records a finished pass. unixTime is stored as the last success when status is
// StatusSuccess.
func (m *Metrics) RecordPass(status string, durationSeconds float64, unixTime int64) {
	if m == nil {
		return
	}
	m.PassesTotal.WithLabelValues(status).Inc()
	m.PassDuration.Observe(durationSeconds)
	if status == StatusSuccess {
		m.LastSuccessfulPass.Set(float64(unixTime))
	}
}

// RecordFetchError increments the fetch error counter for a source.
func (m *Metrics) RecordFetchError(source string) {
	if m == nil {
		return
	}
	m.FetchErrors.WithLabelValues(source).Inc()
}

// RecordFetched adds the sizes of a pass's inputs.
func (m *Metrics) RecordFetched(articles, tokens int) {
	if m == nil {
		return
	}
	m.ArticlesFetched.Add(float64(articles))
	m.TokensFetched.Add(float64(tokens))
}

// RecordMatches adds found matches.
func (m *Metrics) RecordMatches(n int) {
	if m == nil {
		return
	}
	m.MatchesFound.Add(float64(n))
}

// RecordNotification increments the counter for a notification outcome.
func (m *Metrics) RecordNotification(outcome string) {
	if m == nil {
		return
	}
	m.Notifications.WithLabelValues(outcome).Inc()
}

// RecordCacheError increments the cache error counter.
func (m *Metrics) RecordCacheError(operation string) {
	if m == nil {
		return
	}
	m.CacheErrors.WithLabelValues(operation).Inc()
}
