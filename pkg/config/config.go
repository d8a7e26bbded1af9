package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Config is built once at startup and passed explicitly to every
// collaborator that needs it. It is never mutated afterwards.
type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database      DatabaseConfig
	Redis         RedisConfig
	CORS          CORSConfig
	Log           LogConfig
	Cache         CacheConfig
	Mail          MailConfig
	IM            IMConfig
	Notifications NotificationsConfig
	Site          SiteConfig
	Pushes        PushesConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// CacheConfig tunes the read-through caches. TTLs are a safety net
// only; correctness comes from eager invalidation.
type CacheConfig struct {
	Enabled       bool
	DefaultTTL    time.Duration
	OpenPushesTTL time.Duration
}

// MailConfig carries the addressing used by workflow notifications.
// List addresses are stored without the domain and joined at load time,
// mirroring how the deployment provisions them.
type MailConfig struct {
	Domain      string
	Sender      string
	To          string
	RequestList string
	SMTPHost    string
	SMTPPort    int
}

// IMConfig points at the instant-message webhook relay.
type IMConfig struct {
	WebhookURL string
	Timeout    time.Duration
}

// NotificationsConfig tunes the async dispatch queue.
type NotificationsConfig struct {
	Enabled    bool
	Workers    int
	BufferSize int
	MaxRetries int
	RetryDelay time.Duration
}

// SiteConfig holds the externally visible URLs woven into
// notification bodies.
type SiteConfig struct {
	BaseURL      string
	PushPlansURL string
	GitBranchURL string
}

// PushesConfig enumerates the deploy stages a push may be sent to.
// The first entry is the default stage.
type PushesConfig struct {
	Stages []string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Cache = CacheConfig{
		Enabled:       v.GetBool("CACHE_ENABLED"),
		DefaultTTL:    parseDuration(v.GetString("CACHE_DEFAULT_TTL"), 24*time.Hour),
		OpenPushesTTL: parseDuration(v.GetString("CACHE_OPEN_PUSHES_TTL"), time.Hour),
	}

	domain := v.GetString("MAIL_DOMAIN")
	cfg.Mail = MailConfig{
		Domain:      domain,
		Sender:      v.GetString("MAIL_SENDER") + domain,
		To:          v.GetString("MAIL_TO") + domain,
		RequestList: v.GetString("MAIL_REQUEST") + domain,
		SMTPHost:    v.GetString("SMTP_HOST"),
		SMTPPort:    v.GetInt("SMTP_PORT"),
	}

	cfg.IM = IMConfig{
		WebhookURL: v.GetString("IM_WEBHOOK_URL"),
		Timeout:    parseDuration(v.GetString("IM_TIMEOUT"), 5*time.Second),
	}

	cfg.Notifications = NotificationsConfig{
		Enabled:    v.GetBool("NOTIFICATIONS_ENABLED"),
		Workers:    v.GetInt("NOTIFICATIONS_WORKERS"),
		BufferSize: v.GetInt("NOTIFICATIONS_BUFFER"),
		MaxRetries: v.GetInt("NOTIFICATIONS_RETRIES"),
		RetryDelay: parseDuration(v.GetString("NOTIFICATIONS_RETRY_DELAY"), time.Second),
	}

	cfg.Site = SiteConfig{
		BaseURL:      strings.TrimRight(v.GetString("SITE_BASE_URL"), "/"),
		PushPlansURL: v.GetString("SITE_PUSH_PLANS_URL"),
		GitBranchURL: v.GetString("SITE_GIT_BRANCH_URL"),
	}

	stages := splitAndTrim(v.GetString("PUSH_STAGES"))
	if len(stages) == 0 {
		stages = []string{"stagea", "stagex"}
	}
	cfg.Pushes = PushesConfig{Stages: stages}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "pushmaster")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("CACHE_ENABLED", true)
	v.SetDefault("CACHE_DEFAULT_TTL", "24h")
	v.SetDefault("CACHE_OPEN_PUSHES_TTL", "1h")

	v.SetDefault("MAIL_DOMAIN", "@example.com")
	v.SetDefault("MAIL_SENDER", "pushmaster")
	v.SetDefault("MAIL_TO", "eng")
	v.SetDefault("MAIL_REQUEST", "push-requests")
	v.SetDefault("SMTP_HOST", "localhost")
	v.SetDefault("SMTP_PORT", 25)

	v.SetDefault("IM_WEBHOOK_URL", "")
	v.SetDefault("IM_TIMEOUT", "5s")

	v.SetDefault("NOTIFICATIONS_ENABLED", true)
	v.SetDefault("NOTIFICATIONS_WORKERS", 2)
	v.SetDefault("NOTIFICATIONS_BUFFER", 64)
	v.SetDefault("NOTIFICATIONS_RETRIES", 3)
	v.SetDefault("NOTIFICATIONS_RETRY_DELAY", "1s")

	v.SetDefault("SITE_BASE_URL", "http://localhost:8080")
	v.SetDefault("SITE_PUSH_PLANS_URL", "")
	v.SetDefault("SITE_GIT_BRANCH_URL", "")

	v.SetDefault("PUSH_STAGES", "stagea,stagex")
}

// URL joins a request path onto the configured base URL.
func (c *Config) URL(path string) string {
	return c.Site.BaseURL + path
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
