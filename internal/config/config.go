package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Cache backends
const (
	CacheMemory       = "memory"
	CacheCloudStorage = "cloud-storage"
	CacheRedis        = "redis"
	CachePostgres     = "postgres"
	CacheNone         = "none"
)

// Config holds all configuration for the application
type Config struct {
	// Server settings
	Port                string `json:"port"`
	Host                string `json:"host"`
	StatusServerEnabled bool   `json:"status_server_enabled"`
	APIAuthToken        string `json:"-"` // Bearer token for /run and /cache/clear

	// NewsAPI settings
	NewsAPIKey   string   `json:"-"` // Don't expose in JSON
	NewsAPIURL   string   `json:"news_api_url"`
	NewsQuery    string   `json:"news_query"`
	NewsPageSize int      `json:"news_page_size"`
	NewsCountry  string   `json:"news_country"`
	NewsDomains  []string `json:"news_domains"`

	// Token provider settings
	DexScreenerURL   string `json:"dexscreener_url"`
	CoinGeckoEnabled bool   `json:"coingecko_enabled"`
	CoinGeckoURL     string `json:"coingecko_url"`
	CoinGeckoAPIKey  string `json:"-"`

	// Discord settings
	DiscordBotToken     string `json:"-"` // Don't expose in JSON
	DiscordChannelID    string `json:"discord_channel_id"`
	DiscordAPIURL       string `json:"discord_api_url"`
	MaxNotifiedArticles int    `json:"max_notified_articles"`

	// Scheduling, in seconds
	NewsUpdateInterval  int    `json:"news_update_interval"`
	TokenUpdateInterval int    `json:"token_update_interval"`
	CheckSchedule       string `json:"check_schedule"`
	RunOnce             bool   `json:"run_once"`

	// Matching settings
	MinTermLength     int      `json:"min_term_length"`
	MatchWholeWord    bool     `json:"match_whole_word"`
	MinKeywordOverlap int      `json:"min_keyword_overlap"`
	StopWords         []string `json:"stop_words"`

	// Trend analysis themes, theme name -> words
	Themes map[string][]string `json:"themes"`

	// Cache settings
	CacheType     string `json:"cache_type"`     // memory, cloud-storage, redis, postgres or none
	CacheDuration int    `json:"cache_duration"` // in hours
	CacheBucket   string `json:"cache_bucket"`
	RedisURL      string `json:"-"`
	DatabaseURL   string `json:"-"`

	LogLevel   string `json:"log_level"`
	ConfigFile string `json:"config_file"`
}

// FileOverlay is the optional YAML file named by MONITOR_CONFIG_FILE.
type FileOverlay struct {
	Themes      map[string][]string `yaml:"themes"`
	StopWords   []string            `yaml:"stop_words"`
	NewsDomains []string            `yaml:"news_domains"`
	NewsQuery   string              `yaml:"news_query"`
}

// Load reads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Load .env file if exists
	_ = godotenv.Load()

	config := &Config{
		Port:                getEnvOrDefault("PORT", "8080"),
		Host:                getEnvOrDefault("HOST", "0.0.0.0"),
		StatusServerEnabled: getEnvOrDefaultBool("STATUS_SERVER_ENABLED", true),
		APIAuthToken:        getEnvOrDefault("API_AUTH_TOKEN", ""),
		NewsAPIKey:          getEnvOrDefault("NEWS_API_KEY", ""),
		NewsAPIURL:          getEnvOrDefault("NEWS_API_BASE_URL", "https://newsapi.org/v2"),
		NewsQuery:           getEnvOrDefault("NEWS_QUERY", "cryptocurrency OR bitcoin OR blockchain"),
		NewsPageSize:        getEnvOrDefaultInt("NEWS_PAGE_SIZE", 20),
		NewsCountry:         getEnvOrDefault("NEWS_COUNTRY", "us"),
		NewsDomains:         parseStringSlice(getEnvOrDefault("NEWS_DOMAINS", "bbc.co.uk,reuters.com,apnews.com,bloomberg.com")),
		DexScreenerURL:      getEnvOrDefault("DEXSCREENER_BASE_URL", "https://api.dexscreener.com"),
		CoinGeckoEnabled:    getEnvOrDefaultBool("COINGECKO_ENABLED", true),
		CoinGeckoURL:        getEnvOrDefault("COINGECKO_BASE_URL", "https://api.coingecko.com/api/v3"),
		CoinGeckoAPIKey:     getEnvOrDefault("COINGECKO_API_KEY", ""),
		DiscordBotToken:     getEnvOrDefault("DISCORD_BOT_TOKEN", ""),
		DiscordChannelID:    getEnvOrDefault("DISCORD_CHANNEL_ID", ""),
		DiscordAPIURL:       getEnvOrDefault("DISCORD_API_BASE_URL", "https://discord.com/api/v10"),
		MaxNotifiedArticles: getEnvOrDefaultInt("MAX_NOTIFIED_ARTICLES", 5),
		NewsUpdateInterval:  getEnvOrDefaultInt("NEWS_UPDATE_INTERVAL", 300),
		TokenUpdateInterval: getEnvOrDefaultInt("TOKEN_UPDATE_INTERVAL", 300),
		CheckSchedule:       getEnvOrDefault("CHECK_SCHEDULE", ""),
		RunOnce:             getEnvOrDefaultBool("RUN_ONCE", false),
		MinTermLength:       getEnvOrDefaultInt("MIN_TERM_LENGTH", 2),
		MatchWholeWord:      getEnvOrDefaultBool("MATCH_WHOLE_WORD", false),
		MinKeywordOverlap:   getEnvOrDefaultInt("MIN_KEYWORD_OVERLAP", 0),
		StopWords:           parseStringSlice(getEnvOrDefault("EXTRA_STOP_WORDS", "")),
		CacheType:           getEnvOrDefault("CACHE_TYPE", CacheMemory),
		CacheDuration:       getEnvOrDefaultInt("CACHE_DURATION_HOURS", 24),
		CacheBucket:         getEnvOrDefault("CACHE_BUCKET", "token-news-monitor-cache"),
		RedisURL:            getEnvOrDefault("REDIS_URL", ""),
		DatabaseURL:         getEnvOrDefault("DATABASE_URL", ""),
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		ConfigFile:          getEnvOrDefault("MONITOR_CONFIG_FILE", ""),
	}

	if config.ConfigFile != "" {
		if err := config.applyFile(config.ConfigFile); err != nil {
			return config, err
		}
	}

	return config, config.validate()
}

// applyFile merges the YAML overlay into the configuration.
func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return &ConfigError{Field: "MONITOR_CONFIG_FILE", Message: fmt.Sprintf("reading %s: %v", path, err)}
	}

	var overlay FileOverlay
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return &ConfigError{Field: "MONITOR_CONFIG_FILE", Message: fmt.Sprintf("parsing %s: %v", path, err)}
	}

	if len(overlay.Themes) > 0 {
		c.Themes = overlay.Themes
	}
	c.StopWords = append(c.StopWords, overlay.StopWords...)
	if len(overlay.NewsDomains) > 0 {
		c.NewsDomains = overlay.NewsDomains
	}
	if overlay.NewsQuery != "" {
		c.NewsQuery = overlay.NewsQuery
	}
	return nil
}

// validate checks if required configuration values are present
func (c *Config) validate() error {
	if c.NewsAPIKey == "" {
		return &ConfigError{Field: "NEWS_API_KEY", Message: "NewsAPI key is required"}
	}
	if c.DiscordBotToken == "" {
		return &ConfigError{Field: "DISCORD_BOT_TOKEN", Message: "Discord bot token is required"}
	}
	if c.DiscordChannelID == "" {
		return &ConfigError{Field: "DISCORD_CHANNEL_ID", Message: "Discord channel ID is required"}
	}
	if _, err := strconv.ParseUint(c.DiscordChannelID, 10, 64); err != nil {
		return &ConfigError{Field: "DISCORD_CHANNEL_ID", Message: "Discord channel ID must be a numeric snowflake"}
	}
	if c.CheckSchedule == "" && c.CheckInterval() <= 0 {
		return &ConfigError{Field: "NEWS_UPDATE_INTERVAL", Message: "update intervals must be positive"}
	}

	switch c.CacheType {
	case CacheMemory, CacheCloudStorage, CacheNone:
	case CacheRedis:
		if c.RedisURL == "" {
			return &ConfigError{Field: "REDIS_URL", Message: "Redis URL is required for the redis cache"}
		}
	case CachePostgres:
		if c.DatabaseURL == "" {
			return &ConfigError{Field: "DATABASE_URL", Message: "database URL is required for the postgres cache"}
		}
	default:
		return &ConfigError{Field: "CACHE_TYPE", Message: fmt.Sprintf("unsupported cache type %q", c.CacheType)}
	}
	if c.CacheType != CacheNone && c.CacheDuration <= 0 {
		return &ConfigError{Field: "CACHE_DURATION_HOURS", Message: "cache duration must be positive"}
	}
	return nil
}

// CheckInterval is the time between passes: the shorter of the news and token intervals.
func (c *Config) CheckInterval() time.Duration {
	seconds := c.NewsUpdateInterval
	if c.TokenUpdateInterval < seconds {
		seconds = c.TokenUpdateInterval
	}
	return time.Duration(seconds) * time.Second
}

// Schedule is the cron spec used by the scheduler.
func (c *Config) Schedule() string {
	if c.CheckSchedule != "" {
		return c.CheckSchedule
	}
	return "@every " + c.CheckInterval().String()
}

// CacheTTL is how long a notification is remembered.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheDuration) * time.Hour
}

// getEnvOrDefault returns environment variable value or default if not set
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvOrDefaultInt returns environment variable value as int or default if not set
func getEnvOrDefaultInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvOrDefaultBool returns environment variable value as bool or default if not set
func getEnvOrDefaultBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// parseStringSlice parses comma-separated string into slice
func parseStringSlice(value string) []string {
	if value == "" {
		return []string{}
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}
