// Package config loads and validates service configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Crawler   CrawlerConfig   `mapstructure:"crawler"`
	Extract   ExtractConfig   `mapstructure:"extract"`
	HTTP      HTTPConfig      `mapstructure:"http"`
	LLM       LLMConfig       `mapstructure:"llm"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Storage   StorageConfig   `mapstructure:"storage"`
	DB        DBConfig        `mapstructure:"db"`
	PubSub    PubSubConfig    `mapstructure:"pubsub"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// ServerConfig controls HTTP server behavior.
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// AuthConfig defines API authentication toggles.
type AuthConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	APIKey  string `mapstructure:"api_key"`
}

// CrawlerConfig governs contact-page discovery behavior.
type CrawlerConfig struct {
	UserAgent        string   `mapstructure:"user_agent"`
	MaxDepth         int      `mapstructure:"max_depth"`
	MaxPages         int      `mapstructure:"max_pages"`
	RespectRobots    bool     `mapstructure:"respect_robots"`
	ContactKeywords  []string `mapstructure:"contact_keywords"`
	DomainRPS        float64  `mapstructure:"domain_rps"`
	HeadlessParallel int      `mapstructure:"headless_parallel"`
	NavTimeoutSec    int      `mapstructure:"nav_timeout_seconds"`
	PromotionThresh  int      `mapstructure:"promotion_threshold"`
	MaxPageBytes     int      `mapstructure:"max_page_bytes"`
}

// ExtractConfig tunes contact extraction.
type ExtractConfig struct {
	// ContextChars is how much text is kept on each side of the first
	// contact match before it is sent to the model.
	ContextChars int `mapstructure:"context_chars"`
}

// HTTPConfig configures the probe HTTP client.
type HTTPConfig struct {
	TimeoutSeconds int `mapstructure:"timeout_seconds"`
}

// LLMConfig configures the chat-completions client.
type LLMConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	APIKey         string `mapstructure:"api_key"`
	Model          string `mapstructure:"model"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	MaxRetries     int    `mapstructure:"max_retries"`
}

// RateLimitConfig bounds per-client request rates.
type RateLimitConfig struct {
	RequestsPerMinute int `mapstructure:"requests_per_minute"`
	Burst             int `mapstructure:"burst"`
}

// CacheConfig controls the crawl result cache.
type CacheConfig struct {
	Enabled    bool `mapstructure:"enabled"`
	MaxEntries int  `mapstructure:"max_entries"`
	TTLMinutes int  `mapstructure:"ttl_minutes"`
}

// StorageConfig selects where generated PDFs are archived.
type StorageConfig struct {
	GCSBucket string `mapstructure:"gcs_bucket"`
	LocalDir  string `mapstructure:"local_dir"`
	Prefix    string `mapstructure:"prefix"`
}

// DBConfig controls access to the relational database.
type DBConfig struct {
	DSN      string `mapstructure:"dsn"`
	Table    string `mapstructure:"table"`
	MaxConns int32  `mapstructure:"max_conns"`
}

// PubSubConfig holds metadata for publish-subscribe notifications.
type PubSubConfig struct {
	ProjectID string `mapstructure:"project_id"`
	TopicName string `mapstructure:"topic_name"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("RESODO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// The deployment contract exposes the listen port as a bare PORT
	// variable; the LLM key historically arrived as DEEPSEEK_KEY.
	if err := v.BindEnv("server.port", "RESODO_SERVER_PORT", "PORT"); err != nil {
		return Config{}, fmt.Errorf("bind port env: %w", err)
	}
	if err := v.BindEnv("llm.api_key", "RESODO_LLM_API_KEY", "DEEPSEEK_KEY"); err != nil {
		return Config{}, fmt.Errorf("bind llm key env: %w", err)
	}

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8000)
	v.SetDefault("crawler.user_agent",
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 Chrome/120 Safari/537.36")
	v.SetDefault("crawler.max_depth", 1)
	v.SetDefault("crawler.max_pages", 2)
	v.SetDefault("crawler.respect_robots", true)
	v.SetDefault("crawler.contact_keywords", []string{
		"contact", "get-in-touch", "contact-us", "contactus", "get_in_touch",
	})
	v.SetDefault("crawler.domain_rps", 1.0)
	v.SetDefault("crawler.headless_parallel", 2)
	v.SetDefault("crawler.nav_timeout_seconds", 25)
	v.SetDefault("crawler.promotion_threshold", 2048)
	v.SetDefault("crawler.max_page_bytes", 2<<20)
	v.SetDefault("extract.context_chars", 1000)
	v.SetDefault("http.timeout_seconds", 15)
	v.SetDefault("llm.base_url", "https://api.deepseek.com")
	v.SetDefault("llm.model", "deepseek-chat")
	v.SetDefault("llm.timeout_seconds", 120)
	v.SetDefault("llm.max_retries", 2)
	v.SetDefault("rate_limit.requests_per_minute", 10)
	v.SetDefault("rate_limit.burst", 10)
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.max_entries", 256)
	v.SetDefault("cache.ttl_minutes", 30)
	v.SetDefault("storage.local_dir", "data/reports")
	v.SetDefault("storage.prefix", "reports")
	v.SetDefault("db.table", "reports")
	v.SetDefault("logging.development", false)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in (0, 65535]")
	}
	if c.Crawler.MaxPages <= 0 {
		return fmt.Errorf("crawler.max_pages must be > 0")
	}
	if c.Crawler.MaxDepth < 0 {
		return fmt.Errorf("crawler.max_depth must be >= 0")
	}
	if c.Crawler.HeadlessParallel <= 0 {
		return fmt.Errorf("crawler.headless_parallel must be > 0")
	}
	if c.Extract.ContextChars <= 0 {
		return fmt.Errorf("extract.context_chars must be > 0")
	}
	if c.HTTP.TimeoutSeconds <= 0 {
		return fmt.Errorf("http.timeout_seconds must be > 0")
	}
	if c.LLM.BaseURL == "" {
		return fmt.Errorf("llm.base_url is required")
	}
	if c.RateLimit.RequestsPerMinute <= 0 {
		return fmt.Errorf("rate_limit.requests_per_minute must be > 0")
	}
	if c.Auth.Enabled && c.Auth.APIKey == "" {
		return fmt.Errorf("auth.api_key must be set when auth is enabled")
	}
	return nil
}

// NavTimeout converts the headless navigation timeout into a duration.
func (c Config) NavTimeout() time.Duration {
	return time.Duration(c.Crawler.NavTimeoutSec) * time.Second
}

// ProbeTimeout converts the probe HTTP timeout into a duration.
func (c Config) ProbeTimeout() time.Duration {
	return time.Duration(c.HTTP.TimeoutSeconds) * time.Second
}
