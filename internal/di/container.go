package di

import (
	"context"
	"fmt"

	"github.com/dexradar/token-news-monitor/internal/cache"
	"github.com/dexradar/token-news-monitor/internal/config"
	"github.com/dexradar/token-news-monitor/internal/discord"
	"github.com/dexradar/token-news-monitor/internal/keywords"
	"github.com/dexradar/token-news-monitor/internal/logger"
	"github.com/dexradar/token-news-monitor/internal/matcher"
	"github.com/dexradar/token-news-monitor/internal/metrics"
	"github.com/dexradar/token-news-monitor/internal/monitor"
	"github.com/dexradar/token-news-monitor/internal/news"
	"github.com/dexradar/token-news-monitor/internal/tokens"
	"github.com/dexradar/token-news-monitor/internal/trends"
)

// Container holds all dependencies
type Container struct {
	Config        *config.Config
	Logger        *logger.Logger
	Metrics       *metrics.Metrics
	NewsClient    *news.Client
	TokenFetcher  *tokens.Fetcher
	DiscordClient *discord.Client
	CacheManager  *cache.Manager // nil when CACHE_TYPE is none
	Monitor       *monitor.Monitor
}

// NewContainer creates a new dependency container
func NewContainer(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Container, error) {
	if log == nil {
		log = logger.New(cfg.LogLevel)
	}

	extractor := keywords.NewExtractor(cfg.StopWords...)

	newsClient := news.NewClient(cfg.NewsAPIKey, news.Options{
		BaseURL:  cfg.NewsAPIURL,
		Query:    cfg.NewsQuery,
		PageSize: cfg.NewsPageSize,
		Country:  cfg.NewsCountry,
		Domains:  cfg.NewsDomains,
	}, extractor, log)

	sources := []tokens.Source{tokens.NewDexScreenerClient(cfg.DexScreenerURL, log)}
	if cfg.CoinGeckoEnabled {
		sources = append(sources, tokens.NewCoinGeckoClient(cfg.CoinGeckoURL, cfg.CoinGeckoAPIKey))
	}
	tokenFetcher := tokens.NewFetcher(log, sources...)

	discordClient := discord.NewClient(cfg.DiscordBotToken, cfg.DiscordChannelID, cfg.DiscordAPIURL, cfg.MaxNotifiedArticles)

	var cacheManager *cache.Manager
	if cfg.CacheType != config.CacheNone {
		var err error
		cacheManager, err = cache.NewManager(ctx, cache.Options{
			Type:        cfg.CacheType,
			Duration:    cfg.CacheTTL(),
			Bucket:      cfg.CacheBucket,
			RedisURL:    cfg.RedisURL,
			DatabaseURL: cfg.DatabaseURL,
		})
		if err != nil {
			return nil, fmt.Errorf("creating cache manager: %w", err)
		}
	}

	m := metrics.New("")

	options := monitor.Options{
		News:     newsClient,
		Tokens:   tokenFetcher,
		Notifier: discordClient,
		Matcher: matcher.New(matcher.Options{
			MinTermLength:     cfg.MinTermLength,
			WholeWord:         cfg.MatchWholeWord,
			MinKeywordOverlap: cfg.MinKeywordOverlap,
			StopWords:         cfg.StopWords,
		}),
		Trends:  trends.NewAnalyzer(cfg.Themes, extractor),
		Metrics: m,
		Logger:  log,
	}
	if cacheManager != nil {
		options.Dedup = cacheManager
	}

	mon, err := monitor.New(options)
	if err != nil {
		if cacheManager != nil {
			cacheManager.Close()
		}
		return nil, fmt.Errorf("creating monitor: %w", err)
	}

	return &Container{
		Config:        cfg,
		Logger:        log,
		Metrics:       m,
		NewsClient:    newsClient,
		TokenFetcher:  tokenFetcher,
		DiscordClient: discordClient,
		CacheManager:  cacheManager,
		Monitor:       mon,
	}, nil
}

// Close cleans up resources
func (c *Container) Close() error {
	if c.CacheManager != nil {
		return c.CacheManager.Close()
	}
	return nil
}
