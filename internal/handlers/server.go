package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/dexradar/token-news-monitor/internal/cache"
	"github.com/dexradar/token-news-monitor/internal/config"
	"github.com/dexradar/token-news-monitor/internal/logger"
	"github.com/dexradar/token-news-monitor/internal/metrics"
	"github.com/dexradar/token-news-monitor/internal/middleware"
	"github.com/dexradar/token-news-monitor/internal/monitor"
)

// Version is reported by the health and status endpoints.
const Version = "v1.0.0"

// Runner runs monitoring passes.
type Runner interface {
	RunOnce(ctx context.Context) (*monitor.RunResult, error)
	LastResult() *monitor.RunResult
}

// CacheStore is the notification cache as seen by the API.
type CacheStore interface {
	GetStats(ctx context.Context) (*cache.Stats, error)
	Clear(ctx context.Context) error
}

// Server holds the HTTP server and its dependencies
type Server struct {
	config  *config.Config
	runner  Runner
	cache   CacheStore
	metrics *metrics.Metrics
	log     *logger.Logger
	started time.Time
}

// NewServer creates a new HTTP server. store and m may be nil when the cache or metrics are
// disabled.
func NewServer(cfg *config.Config, runner Runner, store CacheStore, m *metrics.Metrics, log *logger.Logger) *Server {
	if log == nil {
		log = logger.Discard()
	}
	return &Server{
		config:  cfg,
		runner:  runner,
		cache:   store,
		metrics: m,
		log:     log,
		started: time.Now(),
	}
}

// SetupRoutes configures HTTP routes
func (s *Server) SetupRoutes() *mux.Router {
	r := mux.NewRouter()

	// API routes
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(s.corsMiddleware)
	api.Use(s.loggingMiddleware)

	// State-changing routes need API_AUTH_TOKEN
	auth := middleware.Auth(s.config.APIAuthToken)

	// Health check
	api.HandleFunc("/health", s.healthHandler).Methods("GET")

	// Monitoring passes
	api.Handle("/run", auth(http.HandlerFunc(s.runHandler))).Methods("POST")

	// Cache operations
	api.HandleFunc("/cache/stats", s.cacheStatsHandler).Methods("GET")
	api.Handle("/cache/clear", auth(http.HandlerFunc(s.cacheClearHandler))).Methods("DELETE")

	// Status and configuration
	api.HandleFunc("/status", s.statusHandler).Methods("GET")
	api.HandleFunc("/config", s.configHandler).Methods("GET")

	if s.metrics != nil {
		r.Handle("/metrics", s.metrics.Handler()).Methods("GET")
	}

	return r
}

// healthHandler provides health check endpoint
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().Unix(),
		"version":   Version,
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// Middleware functions

// corsMiddleware adds CORS headers
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Wrap the ResponseWriter to capture status code
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		s.log.Info("🌐 request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", wrapped.statusCode,
			"duration", time.Since(start),
		)
	})
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
