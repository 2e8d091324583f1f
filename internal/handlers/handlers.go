package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dexradar/token-news-monitor/internal/monitor"
)

// runHandler runs one monitoring pass and returns its result
func (s *Server) runHandler(w http.ResponseWriter, r *http.Request) {
	result, err := s.runner.RunOnce(r.Context())

	var fetchErr *monitor.FetchError
	switch {
	case errors.Is(err, monitor.ErrPassInProgress):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	case errors.As(err, &fetchErr):
		writeJSON(w, http.StatusBadGateway, map[string]interface{}{
			"error":  err.Error(),
			"source": fetchErr.Source,
			"result": result,
		})
	case err != nil:
		writeJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"error":  err.Error(),
			"result": result,
		})
	default:
		writeJSON(w, http.StatusOK, result)
	}
}

// cacheStatsHandler returns cache statistics
func (s *Server) cacheStatsHandler(w http.ResponseWriter, r *http.Request) {
	if s.cache == nil {
		http.Error(w, "Notification cache is disabled", http.StatusNotFound)
		return
	}

	stats, err := s.cache.GetStats(r.Context())
	if err != nil {
		http.Error(w, fmt.Sprintf("Error getting cache stats: %v", err), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

// cacheClearHandler clears the cache
func (s *Server) cacheClearHandler(w http.ResponseWriter, r *http.Request) {
	if s.cache == nil {
		http.Error(w, "Notification cache is disabled", http.StatusNotFound)
		return
	}

	if err := s.cache.Clear(r.Context()); err != nil {
		http.Error(w, fmt.Sprintf("Error clearing cache: %v", err), http.StatusInternalServerError)
		return
	}

	s.log.Info("🗑️ notification cache cleared")
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": "Cache cleared successfully",
	})
}

// statusHandler returns system status
func (s *Server) statusHandler(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":    "running",
		"version":   Version,
		"timestamp": time.Now().Unix(),
		"uptime":    time.Since(s.started).String(),
		"schedule":  s.config.Schedule(),
		"last_run":  s.runner.LastResult(),
	}

	if s.cache != nil {
		stats, err := s.cache.GetStats(r.Context())
		if err != nil {
			s.log.Warn("⚠️ failed to read cache stats", "error", err)
		} else {
			response["cache"] = stats
		}
	}

	writeJSON(w, http.StatusOK, response)
}

// configHandler returns configuration (sanitized)
func (s *Server) configHandler(w http.ResponseWriter, r *http.Request) {
	// Return sanitized configuration without sensitive data
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"port":                  s.config.Port,
		"host":                  s.config.Host,
		"news_query":            s.config.NewsQuery,
		"news_country":          s.config.NewsCountry,
		"news_domains":          s.config.NewsDomains,
		"coingecko_enabled":     s.config.CoinGeckoEnabled,
		"discord_channel_id":    s.config.DiscordChannelID,
		"max_notified_articles": s.config.MaxNotifiedArticles,
		"schedule":              s.config.Schedule(),
		"min_term_length":       s.config.MinTermLength,
		"match_whole_word":      s.config.MatchWholeWord,
		"min_keyword_overlap":   s.config.MinKeywordOverlap,
		"cache_type":            s.config.CacheType,
		"cache_duration_hours":  s.config.CacheDuration,
		"log_level":             s.config.LogLevel,
	})
}
