package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// DefaultCollectorURL is used when COLLECTOR_URL is not set.
const DefaultCollectorURL = "http://localhost:8080"

// State storage backends.
const (
	StorageRedis  = "redis"
	StorageGorm   = "gorm"
	StorageMemory = "memory"
)

// Account sync backends.
const (
	SyncS3   = "s3"
	SyncGorm = "gorm"
	SyncNone = "none"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	ServerPort string `env:"SERVER_PORT" env-default:"8081"`
	ServerHost string `env:"SERVER_HOST" env-default:"0.0.0.0"`

	// Database configuration. DBDriver is "sqlite" or "postgres".
	DBDriver   string `env:"DB_DRIVER" env-default:"sqlite"`
	DBPath     string `env:"DB_PATH" env-default:"data/flavr.db"`
	DBHost     string `env:"DB_HOST" env-default:"localhost"`
	DBPort     string `env:"DB_PORT" env-default:"5432"`
	DBUser     string `env:"DB_USER" env-default:"postgres"`
	DBPassword string `env:"DB_PASSWORD"`
	DBName     string `env:"DB_NAME" env-default:"flavr"`
	DBSSLMode  string `env:"DB_SSL_MODE" env-default:"disable"`

	// Redis configuration
	RedisHost     string `env:"REDIS_HOST" env-default:"localhost"`
	RedisPort     string `env:"REDIS_PORT" env-default:"6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" env-default:"0"`
	RedisURL      string `env:"REDIS_URL"`

	// JWT configuration
	JWTSecret string        `env:"JWT_SECRET"`
	TokenTTL  time.Duration `env:"JWT_TTL" env-default:"24h"`

	// Collector service
	CollectorURL     string        `env:"COLLECTOR_URL" env-default:"http://localhost:8080"`
	SearchDebounce   time.Duration `env:"SEARCH_DEBOUNCE" env-default:"300ms"`
	DiscoverLimit    int           `env:"DISCOVER_LIMIT" env-default:"24"`
	CollectorTimeout time.Duration `env:"COLLECTOR_TIMEOUT" env-default:"0s"`
	// Per-account limit on import and discover calls; 0 disables it.
	// Only enforced when Redis is reachable.
	CollectorRateLimit  int           `env:"COLLECTOR_RATE_LIMIT" env-default:"60"`
	CollectorRateWindow time.Duration `env:"COLLECTOR_RATE_WINDOW" env-default:"1m"`

	// State storage: redis, gorm or memory
	StorageBackend string `env:"STORAGE_BACKEND" env-default:"redis"`
	// Account sync: s3, gorm or none
	SyncBackend  string `env:"SYNC_BACKEND" env-default:"gorm"`
	S3BucketName string `env:"S3_BUCKET_NAME" env-default:"flavr-snapshots"`
	AWSRegion    string `env:"AWS_REGION"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" env-default:"info"`
	LogFormat string `env:"LOG_FORMAT" env-default:"text"`

	CORSOrigins []string `env:"CORS_ALLOWED_ORIGINS" env-separator:"," env-default:"http://localhost:5173"`
}

// LoadConfig creates a new Config instance with values from environment variables or secrets
func LoadConfig() (*Config, error) {
	env := GetEnvironment()
	cfg := &Config{}

	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	// Production keeps sensitive values in Docker secrets
	if env == Production {
		loadSecrets(cfg)
	}

	if cfg.CollectorURL == "" {
		cfg.CollectorURL = DefaultCollectorURL
	}
	cfg.CollectorURL = strings.TrimRight(cfg.CollectorURL, "/")

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// loadSecrets overrides sensitive values with Docker secrets when present
func loadSecrets(cfg *Config) {
	if v := readSecret("db_password"); v != "" {
		cfg.DBPassword = v
	}
	if v := readSecret("jwt_secret"); v != "" {
		cfg.JWTSecret = v
	}
	if v := readSecret("redis_password"); v != "" {
		cfg.RedisPassword = v
	}
	if v := readSecret("redis_url"); v != "" {
		cfg.RedisURL = v
	}
}

// PostgresDSN builds the connection string for the postgres driver
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode,
	)
}

// Addr returns the listen address of the HTTP server
func (c *Config) Addr() string {
	return c.ServerHost + ":" + c.ServerPort
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	secretPath := filepath.Join(secretsDir, name)
	if data, err := os.ReadFile(secretPath); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}
