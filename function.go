package cloudfunctions

import (
	"context"
	"net/http"
	"sync"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"
	"github.com/gorilla/mux"

	"github.com/dexradar/token-news-monitor/internal/config"
	"github.com/dexradar/token-news-monitor/internal/di"
	"github.com/dexradar/token-news-monitor/internal/handlers"
	"github.com/dexradar/token-news-monitor/internal/logger"
)

func init() {
	// Register HTTP function for scheduled and manual passes
	functions.HTTP("CheckMatches", CheckMatches)
}

var (
	routerOnce sync.Once
	router     *mux.Router
	routerErr  error
)

// buildRouter wires the container once per instance so the notification cache survives
// between invocations.
func buildRouter(ctx context.Context) (*mux.Router, error) {
	routerOnce.Do(func() {
		cfg, err := config.Load()
		if err != nil {
			routerErr = err
			return
		}

		log := logger.New(cfg.LogLevel)
		container, err := di.NewContainer(ctx, cfg, log)
		if err != nil {
			routerErr = err
			return
		}

		var store handlers.CacheStore
		if container.CacheManager != nil {
			store = container.CacheManager
		}
		router = handlers.NewServer(cfg, container.Monitor, store, container.Metrics, log).SetupRoutes()
	})
	return router, routerErr
}

// CheckMatches runs one monitoring pass on POST / and serves the status API on its other paths.
func CheckMatches(w http.ResponseWriter, r *http.Request) {
	// Keep the build independent of the first request's lifetime
	h, err := buildRouter(context.WithoutCancel(r.Context()))
	if err != nil {
		logger.New("info").Error("❌ failed to initialize function", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	if r.URL.Path == "/" || r.URL.Path == "" {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		r.URL.Path = "/api/v1/run"
	}

	h.ServeHTTP(w, r)
}
