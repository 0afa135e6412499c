package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/arix/server/internal/model"
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Log        LogConfig        `mapstructure:"log"`
	CORS       CORSConfig       `mapstructure:"cors"`
	Auth       AuthConfig       `mapstructure:"auth"`
	Ledger     LedgerConfig     `mapstructure:"ledger"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Store      StoreConfig      `mapstructure:"store"`
	Mongo      MongoConfig      `mapstructure:"mongo"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Quota      QuotaConfig      `mapstructure:"quota"`
	AI         AIConfig         `mapstructure:"ai"`
	Media      MediaConfig      `mapstructure:"media"`
	Storage    StorageConfig    `mapstructure:"storage"`
	Payment    PaymentConfig    `mapstructure:"payment"`
	RateLimit  RateLimitConfig  `mapstructure:"rate_limit"`
	Breaker    BreakerConfig    `mapstructure:"breaker"`
	HTTPClient HTTPClientConfig `mapstructure:"http_client"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Address         string        `mapstructure:"address"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	MaxUploadBytes  int64         `mapstructure:"max_upload_bytes"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// CORSConfig holds the browser origin allow-list.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// AuthConfig holds identity provider configuration.
type AuthConfig struct {
	// JWTSecret verifies HS256 session tokens.
	JWTSecret string `mapstructure:"jwt_secret"`
	// JWTPublicKey is a PEM encoded RSA key verifying RS256 session tokens.
	JWTPublicKey string `mapstructure:"jwt_public_key"`
	Issuer       string `mapstructure:"issuer"`
	// PlanClaim names the token claim that carries the user's plan.
	PlanClaim   string `mapstructure:"plan_claim"`
	PremiumPlan string `mapstructure:"premium_plan"`
	// PlanSource is "claim" or "directory".
	PlanSource string `mapstructure:"plan_source"`

	DirectoryURL     string        `mapstructure:"directory_url"`
	SecretKey        string        `mapstructure:"secret_key"`
	DirectoryTimeout time.Duration `mapstructure:"directory_timeout"`
	ProfileCacheTTL  time.Duration `mapstructure:"profile_cache_ttl"`
}

// LedgerConfig selects the quota ledger backend.
type LedgerConfig struct {
	Driver         string        `mapstructure:"driver"` // redis, memory
	ReservationTTL time.Duration `mapstructure:"reservation_ttl"`
}

// RedisConfig holds Redis configuration.
type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// StoreConfig selects the creation store backend.
type StoreConfig struct {
	Driver string `mapstructure:"driver"` // mongo, postgres, memory
}

// MongoConfig holds document store configuration.
type MongoConfig struct {
	URI            string        `mapstructure:"uri"`
	Database       string        `mapstructure:"database"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
}

// DatabaseConfig holds Postgres configuration.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Database        string        `mapstructure:"database"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
}

// DSN returns the database connection string.
func (c *DatabaseConfig) DSN() string {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Database, c.SSLMode,
	)
	if c.Password != "" {
		dsn += fmt.Sprintf(" password=%s", c.Password)
	}
	return dsn
}

// QuotaConfig is the action-to-bucket policy table for free-tier users.
type QuotaConfig struct {
	Buckets map[string]int64  `mapstructure:"buckets"`
	Actions map[string]string `mapstructure:"actions"`
	// Unmetered lists billable actions deliberately left without a bucket.
	Unmetered []string `mapstructure:"unmetered"`
}

// AIConfig holds text generation provider configuration.
type AIConfig struct {
	APIKey             string        `mapstructure:"api_key"`
	BaseURL            string        `mapstructure:"base_url"`
	Model              string        `mapstructure:"model"`
	Temperature        float32       `mapstructure:"temperature"`
	Timeout            time.Duration `mapstructure:"timeout"`
	DefaultArticleLen  int           `mapstructure:"default_article_length"`
	MaxArticleLen      int           `mapstructure:"max_article_length"`
	BlogTitleMaxTokens int           `mapstructure:"blog_title_max_tokens"`
}

// MediaConfig holds image provider configuration.
type MediaConfig struct {
	APIKey  string        `mapstructure:"api_key"`
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// StorageConfig holds object storage configuration.
type StorageConfig struct {
	Endpoint        string        `mapstructure:"endpoint"`
	Region          string        `mapstructure:"region"`
	AccessKeyID     string        `mapstructure:"access_key_id"`
	SecretAccessKey string        `mapstructure:"secret_access_key"`
	Bucket          string        `mapstructure:"bucket"`
	PublicBaseURL   string        `mapstructure:"public_base_url"`
	SignedURLExpiry time.Duration `mapstructure:"signed_url_expiry"`
	Timeout         time.Duration `mapstructure:"timeout"`
	UploadDir       string        `mapstructure:"upload_dir"`
}

// PaymentConfig holds the test payment configuration.
type PaymentConfig struct {
	StripeSecretKey string `mapstructure:"stripe_secret_key"`
	TestAmount      int64  `mapstructure:"test_amount"`
	Currency        string `mapstructure:"currency"`
}

// RateLimitConfig holds per-user limits for generation routes.
type RateLimitConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

// BreakerConfig holds provider circuit breaker settings.
type BreakerConfig struct {
	FailureThreshold uint32        `mapstructure:"failure_threshold"`
	OpenTimeout      time.Duration `mapstructure:"open_timeout"`
	Interval         time.Duration `mapstructure:"interval"`
}

// HTTPClientConfig holds HTTP client configuration for connection pooling.
type HTTPClientConfig struct {
	MaxIdleConns        int           `mapstructure:"max_idle_conns"`
	MaxIdleConnsPerHost int           `mapstructure:"max_idle_conns_per_host"`
	MaxConnsPerHost     int           `mapstructure:"max_conns_per_host"`
	IdleConnTimeout     time.Duration `mapstructure:"idle_conn_timeout"`
	DialTimeout         time.Duration `mapstructure:"dial_timeout"`
	TLSHandshakeTimeout time.Duration `mapstructure:"tls_handshake_timeout"`
	ResponseTimeout     time.Duration `mapstructure:"response_timeout"`
	KeepAlive           time.Duration `mapstructure:"keep_alive"`
	UserAgent           string        `mapstructure:"user_agent"`
}

// Load loads configuration from .env, config file and environment.
func Load() (*Config, error) {
	// A missing .env is the normal case outside local development.
	_ = godotenv.Load()

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	v.AddConfigPath("/etc/arix")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	v.SetEnvPrefix("ARIX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	applySecretOverrides(&cfg)

	if s := os.Getenv("ARIX_CORS_ALLOWED_ORIGINS"); s != "" {
		cfg.CORS.AllowedOrigins = parseCommaSeparatedList(s)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applySecretOverrides reads credentials from their dedicated variables.
func applySecretOverrides(cfg *Config) {
	overrides := []struct {
		env    string
		target *string
	}{
		{"ARIX_JWT_SECRET", &cfg.Auth.JWTSecret},
		{"ARIX_JWT_PUBLIC_KEY", &cfg.Auth.JWTPublicKey},
		{"ARIX_CLERK_SECRET_KEY", &cfg.Auth.SecretKey},
		{"ARIX_GEMINI_API_KEY", &cfg.AI.APIKey},
		{"ARIX_CLIPDROP_API_KEY", &cfg.Media.APIKey},
		{"ARIX_STORAGE_SECRET_KEY", &cfg.Storage.SecretAccessKey},
		{"ARIX_MONGO_URI", &cfg.Mongo.URI},
		{"ARIX_DB_PASSWORD", &cfg.Database.Password},
		{"ARIX_REDIS_PASSWORD", &cfg.Redis.Password},
		{"ARIX_STRIPE_KEY", &cfg.Payment.StripeSecretKey},
	}
	for _, o := range overrides {
		if val := os.Getenv(o.env); val != "" {
			*o.target = val
		}
	}
}

// Validate checks cross-field constraints that defaults cannot express.
func (c *Config) Validate() error {
	switch c.Ledger.Driver {
	case "redis", "memory":
	default:
		return fmt.Errorf("ledger.driver: unsupported value %q", c.Ledger.Driver)
	}
	switch c.Store.Driver {
	case "mongo", "postgres", "memory":
	default:
		return fmt.Errorf("store.driver: unsupported value %q", c.Store.Driver)
	}
	switch c.Auth.PlanSource {
	case "claim", "directory":
	default:
		return fmt.Errorf("auth.plan_source: unsupported value %q", c.Auth.PlanSource)
	}
	if err := c.Quota.validate(); err != nil {
		return err
	}

	worst := c.WorstCaseGeneration()
	if c.Ledger.ReservationTTL <= worst {
		return fmt.Errorf("ledger.reservation_ttl: %s must exceed the slowest generation path (%s)", c.Ledger.ReservationTTL, worst)
	}
	if c.Server.WriteTimeout > 0 && c.Server.WriteTimeout <= worst {
		return fmt.Errorf("server.write_timeout: %s must exceed the slowest generation path (%s)", c.Server.WriteTimeout, worst)
	}
	return nil
}

// WorstCaseGeneration is the longest a single generation request can spend in
// provider calls: background removal uploads the original, calls the media
// provider, then uploads the result.
func (c *Config) WorstCaseGeneration() time.Duration {
	text := c.AI.Timeout + c.Storage.Timeout
	image := c.Media.Timeout + c.Storage.Timeout
	removal := c.Media.Timeout + 2*c.Storage.Timeout
	return max(text, image, removal)
}

func (q *QuotaConfig) validate() error {
	for action, bucket := range q.Actions {
		if !model.Action(action).IsBillable() {
			return fmt.Errorf("quota.actions.%s: unknown action", action)
		}
		if _, ok := q.Buckets[bucket]; !ok {
			return fmt.Errorf("quota.actions.%s: unknown bucket %q", action, bucket)
		}
	}
	unmetered := make(map[string]bool, len(q.Unmetered))
	for _, action := range q.Unmetered {
		if !model.Action(action).IsBillable() {
			return fmt.Errorf("quota.unmetered: unknown action %q", action)
		}
		unmetered[action] = true
	}
	for _, action := range model.BillableActions() {
		if _, ok := q.Actions[string(action)]; !ok && !unmetered[string(action)] {
			return fmt.Errorf("quota.actions.%s: missing; map it to a bucket or list it in quota.unmetered", action)
		}
	}
	return nil
}

func parseCommaSeparatedList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", ":3000")
	v.SetDefault("server.read_timeout", 30*time.Second)
	// Above the slowest generation path (media 60s + two storage calls of 30s).
	v.SetDefault("server.write_timeout", 150*time.Second)
	v.SetDefault("server.idle_timeout", 120*time.Second)
	v.SetDefault("server.shutdown_timeout", 30*time.Second)
	v.SetDefault("server.max_upload_bytes", 10<<20)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("cors.allowed_origins", []string{"http://localhost:5173"})

	v.SetDefault("auth.plan_claim", "pla")
	v.SetDefault("auth.premium_plan", "premium")
	v.SetDefault("auth.plan_source", "claim")
	v.SetDefault("auth.directory_url", "https://api.clerk.com")
	v.SetDefault("auth.directory_timeout", 5*time.Second)
	v.SetDefault("auth.profile_cache_ttl", 10*time.Minute)

	v.SetDefault("ledger.driver", "redis")
	v.SetDefault("ledger.reservation_ttl", 5*time.Minute)

	v.SetDefault("redis.address", "localhost:6379")
	v.SetDefault("redis.db", 0)

	v.SetDefault("store.driver", "mongo")
	v.SetDefault("mongo.uri", "mongodb://localhost:27017")
	v.SetDefault("mongo.database", "arix")
	v.SetDefault("mongo.connect_timeout", 10*time.Second)

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.database", "arix")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.conn_max_lifetime", time.Hour)
	v.SetDefault("database.conn_max_idle_time", 30*time.Minute)

	// Text and image quotas are counted separately until product confirms otherwise.
	v.SetDefault("quota.buckets", map[string]int64{"text": 10, "image": 3})
	v.SetDefault("quota.actions", map[string]string{
		"article":           "text",
		"blog-title":        "text",
		"image":             "image",
		"remove-background": "image",
	})

	v.SetDefault("ai.model", "gemini-2.0-flash")
	v.SetDefault("ai.temperature", 0.7)
	v.SetDefault("ai.timeout", 60*time.Second)
	v.SetDefault("ai.default_article_length", 800)
	v.SetDefault("ai.max_article_length", 4096)
	v.SetDefault("ai.blog_title_max_tokens", 100)

	v.SetDefault("media.base_url", "https://clipdrop-api.co")
	v.SetDefault("media.timeout", 60*time.Second)

	v.SetDefault("storage.region", "auto")
	v.SetDefault("storage.signed_url_expiry", 24*time.Hour)
	v.SetDefault("storage.timeout", 30*time.Second)
	v.SetDefault("storage.upload_dir", os.TempDir())

	v.SetDefault("payment.test_amount", 1000)
	v.SetDefault("payment.currency", "usd")

	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests", 30)
	v.SetDefault("rate_limit.window", time.Minute)

	v.SetDefault("breaker.failure_threshold", 5)
	v.SetDefault("breaker.open_timeout", 30*time.Second)
	v.SetDefault("breaker.interval", time.Minute)

	v.SetDefault("http_client.max_idle_conns", 100)
	v.SetDefault("http_client.max_idle_conns_per_host", 20)
	v.SetDefault("http_client.max_conns_per_host", 50)
	v.SetDefault("http_client.idle_conn_timeout", 90*time.Second)
	v.SetDefault("http_client.dial_timeout", 10*time.Second)
	v.SetDefault("http_client.tls_handshake_timeout", 10*time.Second)
	v.SetDefault("http_client.response_timeout", 0)
	v.SetDefault("http_client.keep_alive", 30*time.Second)
	v.SetDefault("http_client.user_agent", "arix-server/1.0")
}
