package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config aggregates runtime configuration used across the service.
type Config struct {
	HTTP    HTTPConfig    `yaml:"http"`
	LLM     LLMConfig     `yaml:"llm"`
	Support SupportConfig `yaml:"support"`
	QACache QACacheConfig `yaml:"qaCache"`
	Catalog CatalogConfig `yaml:"catalog"`
	NLP     NLPConfig     `yaml:"nlp"`
	Feeds   FeedsConfig   `yaml:"feeds"`
	Sync    SyncConfig    `yaml:"sync"`
	Auth    AuthConfig    `yaml:"auth"`
}

// HTTPConfig controls server level behavior.
type HTTPConfig struct {
	Address        string          `yaml:"address"`
	ReadTimeout    time.Duration   `yaml:"readTimeout"`
	WriteTimeout   time.Duration   `yaml:"writeTimeout"`
	AllowedOrigins []string        `yaml:"allowedOrigins"`
	RateLimit      RateLimitConfig `yaml:"rateLimit"`
	Retry          RetryConfig     `yaml:"retry"`
}

// RateLimitConfig drives the request limiting middleware.
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requestsPerMinute"`
	Burst             int  `yaml:"burst"`
}

// RetryConfig configures best-effort retries for idempotent requests.
type RetryConfig struct {
	Enabled     bool          `yaml:"enabled"`
	MaxAttempts int           `yaml:"maxAttempts"`
	BaseBackoff time.Duration `yaml:"baseBackoff"`
	Exclude     []string      `yaml:"exclude"`
}

// LLMConfig contains ChatGPT/OpenAI settings. An empty APIKey switches to
// the offline embedder and completer.
type LLMConfig struct {
	APIKey            string        `yaml:"apiKey"`
	BaseURL           string        `yaml:"baseUrl"`
	Model             string        `yaml:"model"`
	EmbeddingModel    string        `yaml:"embeddingModel"`
	Temperature       float32       `yaml:"temperature"`
	MaxTokens         int           `yaml:"maxTokens"`
	GenerationTimeout time.Duration `yaml:"generationTimeout"`
}

// SupportConfig controls the answer pipeline.
type SupportConfig struct {
	MaxQuestionRunes    int    `yaml:"maxQuestionRunes"`
	ProductLimit        int    `yaml:"productLimit"`
	EscalationText      string `yaml:"escalationText"`
	QuestionPromptRunes int    `yaml:"questionPromptRunes"`
	ProductContextRunes int    `yaml:"productContextRunes"`
	StoreContextRunes   int    `yaml:"storeContextRunes"`
}

// QACacheConfig selects the QA cache backends.
type QACacheConfig struct {
	Postgres     PostgresConfig `yaml:"postgres"`
	Redis        RedisConfig    `yaml:"redis"`
	KeyPrefix    string         `yaml:"keyPrefix"`
	EmbeddingDim int            `yaml:"embeddingDim"`
}

// RedisConfig contains connection information for cache storage.
type RedisConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// PostgresConfig contains DSN and pooling settings.
type PostgresConfig struct {
	DSN      string `yaml:"dsn"`
	MaxConns int32  `yaml:"maxConns"`
	MinConns int32  `yaml:"minConns"`
}

// CatalogConfig locates the product index. An empty IndexPath keeps the
// index in memory.
type CatalogConfig struct {
	IndexPath string `yaml:"indexPath"`
}

// NLPConfig points at the NER/lemmatizer model server. Without a BaseURL the
// gazetteer and token lemmatizer are used.
type NLPConfig struct {
	BaseURL   string              `yaml:"baseUrl"`
	Timeout   time.Duration       `yaml:"timeout"`
	Gazetteer map[string][]string `yaml:"gazetteer"`
}

// FeedsConfig selects where tabular feeds come from.
type FeedsConfig struct {
	Source          string       `yaml:"source"`
	SpreadsheetID   string       `yaml:"spreadsheetId"`
	CredentialsFile string       `yaml:"credentialsFile"`
	CSVDir          string       `yaml:"csvDir"`
	Bucket          BucketConfig `yaml:"bucket"`
}

// BucketConfig points at CSV exports in an S3-compatible bucket.
type BucketConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"accessKey"`
	SecretKey string `yaml:"secretKey"`
	Name      string `yaml:"name"`
	Region    string `yaml:"region"`
	Prefix    string `yaml:"prefix"`
}

// Feed sources.
const (
	FeedSourceNone   = "none"
	FeedSourceSheets = "sheets"
	FeedSourceCSV    = "csv"
	FeedSourceBucket = "bucket"
)

// SyncConfig controls periodic feed syncs.
type SyncConfig struct {
	Interval  time.Duration `yaml:"interval"`
	OnStartup bool          `yaml:"onStartup"`
	Workers   int           `yaml:"workers"`
	Queue     string        `yaml:"queue"`
	QueueKey  string        `yaml:"queueKey"`
}

// AuthConfig signs admin tokens. Admins maps usernames to bcrypt hashes
// (see "supportctl hash-password").
type AuthConfig struct {
	Secret   string            `yaml:"secret"`
	TokenTTL time.Duration     `yaml:"tokenTtl"`
	Issuer   string            `yaml:"issuer"`
	Admins   map[string]string `yaml:"admins"`
}

// Load reads configuration from a YAML file and environment variables.
func Load() (*Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := hydrateFromFile(cfg, path); err != nil {
			return nil, err
		}
	} else if _, err := os.Stat("configs/config.yaml"); err == nil {
		if err := hydrateFromFile(cfg, "configs/config.yaml"); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func hydrateFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	setString := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setInt := func(key string, dst *int) {
		if v := os.Getenv(key); v != "" {
			if parsed, err := strconv.Atoi(v); err == nil {
				*dst = parsed
			}
		}
	}
	setDuration := func(key string, dst *time.Duration) {
		if v := os.Getenv(key); v != "" {
			if parsed, err := time.ParseDuration(v); err == nil {
				*dst = parsed
			}
		}
	}
	setBool := func(key string, dst *bool) {
		if v := os.Getenv(key); v != "" {
			*dst = v == "1" || strings.EqualFold(v, "true")
		}
	}

	setString("HTTP_ADDRESS", &cfg.HTTP.Address)
	setBool("HTTP_RATE_LIMIT_ENABLED", &cfg.HTTP.RateLimit.Enabled)
	setInt("HTTP_RATE_LIMIT_RPM", &cfg.HTTP.RateLimit.RequestsPerMinute)
	setInt("HTTP_RATE_LIMIT_BURST", &cfg.HTTP.RateLimit.Burst)
	setBool("HTTP_RETRY_ENABLED", &cfg.HTTP.Retry.Enabled)
	setInt("HTTP_RETRY_MAX_ATTEMPTS", &cfg.HTTP.Retry.MaxAttempts)
	setDuration("HTTP_RETRY_BASE_BACKOFF", &cfg.HTTP.Retry.BaseBackoff)
	if v := os.Getenv("HTTP_ALLOWED_ORIGINS"); v != "" {
		cfg.HTTP.AllowedOrigins = splitList(v)
	}

	setString("LLM_API_KEY", &cfg.LLM.APIKey)
	setString("LLM_BASE_URL", &cfg.LLM.BaseURL)
	setString("LLM_MODEL", &cfg.LLM.Model)
	setString("LLM_EMBEDDING_MODEL", &cfg.LLM.EmbeddingModel)
	setInt("LLM_MAX_TOKENS", &cfg.LLM.MaxTokens)
	setDuration("LLM_GENERATION_TIMEOUT", &cfg.LLM.GenerationTimeout)
	if v := os.Getenv("LLM_TEMPERATURE"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 32); err == nil {
			cfg.LLM.Temperature = float32(parsed)
		}
	}

	setString("SUPPORT_ESCALATION_TEXT", &cfg.Support.EscalationText)
	setInt("SUPPORT_PRODUCT_LIMIT", &cfg.Support.ProductLimit)

	setString("QA_POSTGRES_DSN", &cfg.QACache.Postgres.DSN)
	if v := os.Getenv("QA_POSTGRES_MAX_CONNS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.QACache.Postgres.MaxConns = int32(parsed)
		}
	}
	setBool("QA_REDIS_ENABLED", &cfg.QACache.Redis.Enabled)
	setString("QA_REDIS_ADDR", &cfg.QACache.Redis.Addr)

	setString("CATALOG_INDEX_PATH", &cfg.Catalog.IndexPath)
	setString("NLP_BASE_URL", &cfg.NLP.BaseURL)
	setDuration("NLP_TIMEOUT", &cfg.NLP.Timeout)

	setString("FEEDS_SOURCE", &cfg.Feeds.Source)
	setString("FEEDS_SPREADSHEET_ID", &cfg.Feeds.SpreadsheetID)
	setString("FEEDS_CREDENTIALS_FILE", &cfg.Feeds.CredentialsFile)
	setString("FEEDS_CSV_DIR", &cfg.Feeds.CSVDir)
	setString("FEEDS_BUCKET_ENDPOINT", &cfg.Feeds.Bucket.Endpoint)
	setString("FEEDS_BUCKET_ACCESS_KEY", &cfg.Feeds.Bucket.AccessKey)
	setString("FEEDS_BUCKET_SECRET_KEY", &cfg.Feeds.Bucket.SecretKey)
	setString("FEEDS_BUCKET_NAME", &cfg.Feeds.Bucket.Name)

	setDuration("SYNC_INTERVAL", &cfg.Sync.Interval)
	setBool("SYNC_ON_STARTUP", &cfg.Sync.OnStartup)
	setInt("SYNC_WORKERS", &cfg.Sync.Workers)
	setString("SYNC_QUEUE", &cfg.Sync.Queue)

	setString("AUTH_SECRET", &cfg.Auth.Secret)
	setDuration("AUTH_TOKEN_TTL", &cfg.Auth.TokenTTL)
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func defaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Address:      ":8080",
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 90 * time.Second,
			RateLimit: RateLimitConfig{
				Enabled:           true,
				RequestsPerMinute: 60,
				Burst:             20,
			},
			Retry: RetryConfig{
				Enabled:     true,
				MaxAttempts: 2,
				BaseBackoff: 250 * time.Millisecond,
				Exclude: []string{
					"/api/v1/admin/*",
				},
			},
		},
		LLM: LLMConfig{
			Model:             "gpt-4o-mini",
			EmbeddingModel:    "text-embedding-3-small",
			Temperature:       0,
			MaxTokens:         2000,
			GenerationTimeout: 60 * time.Second,
		},
		Support: SupportConfig{
			MaxQuestionRunes:    300,
			ProductLimit:        2,
			EscalationText:      "There are stop words in the text",
			QuestionPromptRunes: 380,
			ProductContextRunes: 3200,
			StoreContextRunes:   500,
		},
		QACache: QACacheConfig{
			Postgres: PostgresConfig{
				MaxConns: 4,
			},
			KeyPrefix:    "qa",
			EmbeddingDim: 64,
		},
		NLP: NLPConfig{
			Timeout: 10 * time.Second,
		},
		Feeds: FeedsConfig{
			Source: FeedSourceNone,
		},
		Sync: SyncConfig{
			Interval:  30 * time.Minute,
			OnStartup: true,
			Workers:   4,
			Queue:     "immediate",
			QueueKey:  "feedsync:triggers",
		},
		Auth: AuthConfig{
			TokenTTL: 24 * time.Hour,
			Issuer:   "support-expert",
		},
	}
}

// Validate ensures the configuration is safe to use.
func (c *Config) Validate() error {
	if c.HTTP.Address == "" {
		return errors.New("http.address cannot be empty")
	}
	if c.HTTP.RateLimit.Enabled {
		if c.HTTP.RateLimit.RequestsPerMinute <= 0 {
			return errors.New("http.rateLimit.requestsPerMinute must be positive")
		}
		if c.HTTP.RateLimit.Burst <= 0 {
			return errors.New("http.rateLimit.burst must be positive")
		}
	}
	if c.HTTP.Retry.Enabled {
		if c.HTTP.Retry.MaxAttempts <= 0 {
			return errors.New("http.retry.maxAttempts must be positive")
		}
		if c.HTTP.Retry.BaseBackoff <= 0 {
			return errors.New("http.retry.baseBackoff must be positive")
		}
	}
	if strings.TrimSpace(c.LLM.Model) == "" {
		return errors.New("llm.model cannot be empty")
	}
	if strings.TrimSpace(c.LLM.EmbeddingModel) == "" {
		return errors.New("llm.embeddingModel cannot be empty")
	}
	if c.LLM.Temperature < 0 {
		return errors.New("llm.temperature cannot be negative")
	}
	if c.LLM.MaxTokens <= 0 {
		return errors.New("llm.maxTokens must be positive")
	}
	if c.LLM.GenerationTimeout <= 0 {
		return errors.New("llm.generationTimeout must be positive")
	}
	if c.Support.MaxQuestionRunes <= 0 {
		return errors.New("support.maxQuestionRunes must be positive")
	}
	if c.Support.ProductLimit <= 0 {
		return errors.New("support.productLimit must be positive")
	}
	if c.QACache.Redis.Enabled && strings.TrimSpace(c.QACache.Redis.Addr) == "" {
		return errors.New("qaCache.redis.addr cannot be empty when redis is enabled")
	}
	if c.QACache.EmbeddingDim <= 0 {
		return errors.New("qaCache.embeddingDim must be positive")
	}
	switch c.Feeds.Source {
	case FeedSourceNone:
	case FeedSourceSheets:
		if strings.TrimSpace(c.Feeds.SpreadsheetID) == "" || strings.TrimSpace(c.Feeds.CredentialsFile) == "" {
			return errors.New("feeds.spreadsheetId and feeds.credentialsFile are required for sheets")
		}
	case FeedSourceCSV:
		if strings.TrimSpace(c.Feeds.CSVDir) == "" {
			return errors.New("feeds.csvDir is required for csv")
		}
	case FeedSourceBucket:
		if strings.TrimSpace(c.Feeds.Bucket.Endpoint) == "" || strings.TrimSpace(c.Feeds.Bucket.Name) == "" {
			return errors.New("feeds.bucket.endpoint and feeds.bucket.name are required for bucket")
		}
	default:
		return fmt.Errorf("feeds.source %q is not supported", c.Feeds.Source)
	}
	if c.Sync.Interval < 0 {
		return errors.New("sync.interval cannot be negative")
	}
	if c.Sync.Queue != "immediate" && c.Sync.Queue != "valkey" {
		return fmt.Errorf("sync.queue %q is not supported", c.Sync.Queue)
	}
	if c.Sync.Queue == "valkey" && !c.QACache.Redis.Enabled {
		return errors.New("sync.queue valkey requires qaCache.redis")
	}
	if strings.TrimSpace(c.Auth.Secret) == "" {
		return errors.New("auth.secret cannot be empty")
	}
	return nil
}
