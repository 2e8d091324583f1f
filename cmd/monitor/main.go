package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/dexradar/token-news-monitor/internal/config"
	"github.com/dexradar/token-news-monitor/internal/di"
	"github.com/dexradar/token-news-monitor/internal/handlers"
	"github.com/dexradar/token-news-monitor/internal/logger"
	"github.com/dexradar/token-news-monitor/internal/monitor"
)

var (
	Version   string = "dev"
	Commit    string = "unknown"
	BuildTime string = "unknown"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	log := logger.New(cfg.LogLevel)
	log.Info("🔧 token news monitor starting", "version", Version, "commit", Commit, "build_time", BuildTime)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	container, err := di.NewContainer(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("creating dependencies: %w", err)
	}
	defer container.Close()

	if cfg.RunOnce {
		runPass(ctx, container.Monitor, log)
		return nil
	}

	// The status server binds before the first pass so a bad address fails startup
	var httpServer *http.Server
	var serverErr <-chan error
	if cfg.StatusServerEnabled {
		var store handlers.CacheStore
		if container.CacheManager != nil {
			store = container.CacheManager
		}
		server := handlers.NewServer(cfg, container.Monitor, store, container.Metrics, log)

		httpServer, serverErr, err = startStatusServer(fmt.Sprintf("%s:%s", cfg.Host, cfg.Port), server.SetupRoutes(), log)
		if err != nil {
			return err
		}
	}

	// Initial pass, then the schedule
	runPass(ctx, container.Monitor, log)

	c := cron.New(
		cron.WithLogger(cron.PrintfLogger(log)),
		cron.WithChain(cron.SkipIfStillRunning(cron.PrintfLogger(log))),
	)
	if _, err := c.AddFunc(cfg.Schedule(), func() {
		log.Info("🕐 scheduled pass starting")
		runPass(ctx, container.Monitor, log)
	}); err != nil {
		if httpServer != nil {
			httpServer.Close()
		}
		return fmt.Errorf("scheduling %q: %w", cfg.Schedule(), err)
	}
	c.Start()
	log.Info("📅 scheduled monitoring passes", "schedule", cfg.Schedule())

	// Wait for shutdown signal or a server failure
	var runErr error
	select {
	case <-ctx.Done():
		log.Info("🛑 shutting down...")
	case err := <-serverErr:
		log.Error("❌ status server failed", "error", err)
		runErr = fmt.Errorf("status server: %w", err)
		cancel()
	}

	// Wait for a running pass to finish
	<-c.Stop().Done()

	if httpServer != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Error("server shutdown error", "error", err)
		}
	}

	if runErr != nil {
		return runErr
	}
	log.Info("✅ monitor stopped")
	return nil
}

// startStatusServer binds addr and serves h in the background. Serve failures arrive on the
// returned channel.
func startStatusServer(addr string, h http.Handler, log *logger.Logger) (*http.Server, <-chan error, error) {
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      h,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, nil, fmt.Errorf("starting status server: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("🚀 starting status server", "addr", addr)
		if err := httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	return httpServer, errCh, nil
}

func runPass(ctx context.Context, m *monitor.Monitor, log *logger.Logger) {
	// Pass failures are logged by the monitor; the next tick runs normally
	if _, err := m.RunOnce(ctx); errors.Is(err, monitor.ErrPassInProgress) {
		log.Warn("⏭️ previous pass still running, skipping")
	}
}
