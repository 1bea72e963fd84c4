package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App          AppConfig
	Postgres     PostgresConfig
	Redis        RedisConfig
	Logger       LoggerConfig
	Auth         AuthConfig
	Classifier   ClassifierConfig
	SLA          SLAConfig
	Analytics    AnalyticsConfig
	Notification NotificationConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
	CORSAllowOrigins      string
}

// PostgresConfig holds DB connection values. An empty DSN selects the in-memory store.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values. An empty Addr disables the analytics cache.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines the optional operator guard on mutating endpoints.
type AuthConfig struct {
	JWTSecret             string
	AccessTokenTTLMinutes int
}

// Enabled reports whether mutating endpoints require an operator token.
func (a AuthConfig) Enabled() bool {
	return strings.TrimSpace(a.JWTSecret) != ""
}

// Classifier providers.
const (
	ProviderKeyword     = "keyword"
	ProviderHuggingFace = "huggingface"
	ProviderAnthropic   = "anthropic"
)

// ClassifierConfig selects and tunes the complaint classifier.
type ClassifierConfig struct {
	Provider            string
	TimeoutSeconds      int
	HuggingFaceToken    string
	HuggingFaceBaseURL  string
	CategoryModel       string
	SentimentModel      string
	MinCategoryScore    float64
	MinSentimentScore   float64
	AnthropicAPIKey     string
	AnthropicModel      string
	ReadyTimeoutSeconds int
}

// Timeout returns the classification timeout.
func (c ClassifierConfig) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// SLAConfig holds response windows per priority, in hours.
type SLAConfig struct {
	HighHours       int
	MediumHours     int
	LowHours        int
	MonitorSchedule string
}

// AnalyticsConfig tunes the analytics report.
type AnalyticsConfig struct {
	CacheTTLSeconds int
	TopIssues       int
}

// CacheTTL returns the cache lifetime for analytics snapshots.
func (a AnalyticsConfig) CacheTTL() time.Duration {
	if a.CacheTTLSeconds <= 0 {
		return 0
	}
	return time.Duration(a.CacheTTLSeconds) * time.Second
}

// NotificationConfig holds stub notification endpoints.
type NotificationConfig struct {
	EmailFrom  string
	WebhookURL string
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}
	minCategory, err := strconv.ParseFloat(getEnv("CLASSIFIER_MIN_CATEGORY_SCORE", "0.5"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid CLASSIFIER_MIN_CATEGORY_SCORE: %w", err)
	}
	minSentiment, err := strconv.ParseFloat(getEnv("CLASSIFIER_MIN_SENTIMENT_SCORE", "0.6"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid CLASSIFIER_MIN_SENTIMENT_SCORE: %w", err)
	}

	maxConns := int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10))
	minConns := int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2))
	runMigrations := getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true)
	connMaxIdle := int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30))
	connMaxLife := int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300))

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "complaint-service"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8000"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
			CORSAllowOrigins:      getEnv("CORS_ALLOW_ORIGINS", "http://localhost:5173,http://localhost:3000"),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       maxConns,
			MinConns:       minConns,
			RunMigrations:  runMigrations,
			ConnMaxIdleSec: connMaxIdle,
			ConnMaxLifeSec: connMaxLife,
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret:             os.Getenv("AUTH_JWT_SECRET"),
			AccessTokenTTLMinutes: getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 720),
		},
		Classifier: ClassifierConfig{
			Provider:            strings.ToLower(getEnv("CLASSIFIER_PROVIDER", ProviderKeyword)),
			TimeoutSeconds:      getEnvAsInt("CLASSIFIER_TIMEOUT_SECONDS", 10),
			HuggingFaceToken:    os.Getenv("HF_API_TOKEN"),
			HuggingFaceBaseURL:  getEnv("HF_API_BASE_URL", "https://api-inference.huggingface.co/models"),
			CategoryModel:       getEnv("HF_CATEGORY_MODEL", "facebook/bart-large-mnli"),
			SentimentModel:      getEnv("HF_SENTIMENT_MODEL", "cardiffnlp/twitter-roberta-base-sentiment-latest"),
			MinCategoryScore:    minCategory,
			MinSentimentScore:   minSentiment,
			AnthropicAPIKey:     os.Getenv("ANTHROPIC_API_KEY"),
			AnthropicModel:      getEnv("ANTHROPIC_MODEL", "claude-sonnet-4-5-20250929"),
			ReadyTimeoutSeconds: getEnvAsInt("CLASSIFIER_READY_TIMEOUT_SECONDS", 2),
		},
		SLA: SLAConfig{
			HighHours:       getEnvAsInt("SLA_HIGH_HOURS", 4),
			MediumHours:     getEnvAsInt("SLA_MEDIUM_HOURS", 24),
			LowHours:        getEnvAsInt("SLA_LOW_HOURS", 72),
			MonitorSchedule: getEnv("SLA_MONITOR_SCHEDULE", "*/5 * * * *"),
		},
		Analytics: AnalyticsConfig{
			CacheTTLSeconds: getEnvAsInt("ANALYTICS_CACHE_TTL_SECONDS", 15),
			TopIssues:       getEnvAsInt("ANALYTICS_TOP_ISSUES", 5),
		},
		Notification: NotificationConfig{
			EmailFrom:  getEnv("NOTIFY_EMAIL_FROM", "noreply@example.com"),
			WebhookURL: getEnv("NOTIFY_WEBHOOK_URL", ""),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Classifier.Provider {
	case ProviderKeyword:
	case ProviderHuggingFace:
		if c.Classifier.HuggingFaceToken == "" {
			return fmt.Errorf("HF_API_TOKEN required for classifier provider %q", c.Classifier.Provider)
		}
	case ProviderAnthropic:
		if c.Classifier.AnthropicAPIKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY required for classifier provider %q", c.Classifier.Provider)
		}
	default:
		return fmt.Errorf("unknown CLASSIFIER_PROVIDER %q", c.Classifier.Provider)
	}
	if c.SLA.HighHours <= 0 || c.SLA.MediumHours <= 0 || c.SLA.LowHours <= 0 {
		return fmt.Errorf("SLA hours must be positive")
	}
	return nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
