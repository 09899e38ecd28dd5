package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable, e.g.
// RECIPEBOX_DATABASE_DRIVER for database.driver.
const EnvPrefix = "RECIPEBOX"

// Config holds all configuration for the application
type Config struct {
	Environment Environment     `mapstructure:"-"`
	Server      ServerConfig    `mapstructure:"server"`
	Database    DatabaseConfig  `mapstructure:"database"`
	Redis       RedisConfig     `mapstructure:"redis"`
	Auth        AuthConfig      `mapstructure:"auth"`
	Session     SessionConfig   `mapstructure:"session"`
	RateLimit   RateLimitConfig `mapstructure:"rate_limit"`
	Storage     StorageConfig   `mapstructure:"storage"`
	Metrics     MetricsConfig   `mapstructure:"metrics"`
	Log         LogConfig       `mapstructure:"log"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            string        `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
}

// Addr returns host:port for http.Server.
func (s ServerConfig) Addr() string {
	return s.Host + ":" + s.Port
}

type DatabaseConfig struct {
	// Driver is "sqlite" or "postgres".
	Driver          string        `mapstructure:"driver"`
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	LogSQL          bool          `mapstructure:"log_sql"`
}

// RedisConfig is optional. An empty URL disables Redis and rate limiting
// falls back to in-process counters.
type RedisConfig struct {
	URL string `mapstructure:"url"`
}

type AuthConfig struct {
	// Hasher is the driver used for new password hashes: "bcrypt" or "argon2id".
	Hasher                string `mapstructure:"hasher"`
	BcryptCost            int    `mapstructure:"bcrypt_cost"`
	RejectDuplicateEmails bool   `mapstructure:"reject_duplicate_emails"`
}

type SessionConfig struct {
	CookieName      string        `mapstructure:"cookie_name"`
	FlashCookieName string        `mapstructure:"flash_cookie_name"`
	TTL             time.Duration `mapstructure:"ttl"`
	Secure          bool          `mapstructure:"secure"`
}

type RateLimitConfig struct {
	Enabled            bool          `mapstructure:"enabled"`
	LoginLimit         int           `mapstructure:"login_limit"`
	LoginWindow        time.Duration `mapstructure:"login_window"`
	RecipeCreateLimit  int           `mapstructure:"recipe_create_limit"`
	RecipeCreateWindow time.Duration `mapstructure:"recipe_create_window"`
}

// StorageConfig configures the optional S3 bucket for recipe photos. An
// empty Bucket disables photo uploads.
type StorageConfig struct {
	Bucket        string        `mapstructure:"bucket"`
	Region        string        `mapstructure:"region"`
	Endpoint      string        `mapstructure:"endpoint"`
	PresignTTL    time.Duration `mapstructure:"presign_ttl"`
	MaxPhotoBytes int64         `mapstructure:"max_photo_bytes"`
}

// Enabled reports whether photo storage is configured.
func (s StorageConfig) Enabled() bool {
	return s.Bucket != ""
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

func setDefaults(v *viper.Viper, env Environment) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.allowed_origins", []string{"http://localhost:8080"})

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "recipebox.db")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 25)
	v.SetDefault("database.conn_max_lifetime", 5*time.Minute)
	v.SetDefault("database.log_sql", false)

	v.SetDefault("redis.url", "")

	v.SetDefault("auth.hasher", "bcrypt")
	v.SetDefault("auth.bcrypt_cost", 12)
	v.SetDefault("auth.reject_duplicate_emails", false)

	v.SetDefault("session.cookie_name", "recipebox_session")
	v.SetDefault("session.flash_cookie_name", "recipebox_flash")
	v.SetDefault("session.ttl", 24*time.Hour)
	v.SetDefault("session.secure", env == Production)

	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.login_limit", 10)
	v.SetDefault("rate_limit.login_window", time.Minute)
	v.SetDefault("rate_limit.recipe_create_limit", 30)
	v.SetDefault("rate_limit.recipe_create_window", time.Hour)

	v.SetDefault("storage.bucket", "")
	v.SetDefault("storage.region", "us-east-1")
	v.SetDefault("storage.endpoint", "")
	v.SetDefault("storage.presign_ttl", 15*time.Minute)
	v.SetDefault("storage.max_photo_bytes", int64(5<<20))

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")

	v.SetDefault("log.level", "info")
	if env == Production {
		v.SetDefault("log.format", "json")
	} else {
		v.SetDefault("log.format", "console")
	}
}

// LoadConfig reads configuration from defaults, an optional config.yml and
// RECIPEBOX_* environment variables, in increasing order of precedence. A
// .env file in the working directory is loaded into the environment first.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}
	return Load(viper.New())
}

// Load fills a Config from v. It is split from LoadConfig so tests can hand
// in a pre-populated viper instance.
func Load(v *viper.Viper) (*Config, error) {
	env := GetEnvironment()
	setDefaults(v, env)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigName("config")
	v.SetConfigType("yml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.Environment = env
	cfg.Server.AllowedOrigins = splitList(cfg.Server.AllowedOrigins)

	if err := ValidateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

// splitList accepts both YAML lists and a single comma separated env value.
func splitList(in []string) []string {
	var out []string
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
