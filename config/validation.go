package config

import (
	"fmt"
	"net/url"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

var (
	storageBackends = map[string]bool{StorageRedis: true, StorageGorm: true, StorageMemory: true}
	syncBackends    = map[string]bool{SyncS3: true, SyncGorm: true, SyncNone: true}
	dbDrivers       = map[string]bool{"sqlite": true, "postgres": true}
)

// ValidateConfig checks if the configuration meets the requirements for the current environment
func ValidateConfig(cfg *Config) error {
	env := GetEnvironment()

	var errors []string
	add := func(field, msg string) {
		errors = append(errors, ValidationError{Field: field, Message: msg}.Error())
	}

	if !dbDrivers[cfg.DBDriver] {
		add("DB_DRIVER", fmt.Sprintf("unsupported driver %q", cfg.DBDriver))
	}
	if !storageBackends[cfg.StorageBackend] {
		add("STORAGE_BACKEND", fmt.Sprintf("unsupported backend %q", cfg.StorageBackend))
	}
	if !syncBackends[cfg.SyncBackend] {
		add("SYNC_BACKEND", fmt.Sprintf("unsupported backend %q", cfg.SyncBackend))
	}
	if u, err := url.Parse(cfg.CollectorURL); err != nil || u.Scheme == "" || u.Host == "" {
		add("COLLECTOR_URL", fmt.Sprintf("not an absolute URL: %q", cfg.CollectorURL))
	}
	if cfg.DiscoverLimit <= 0 {
		add("DISCOVER_LIMIT", "must be positive")
	}
	if cfg.CollectorRateLimit < 0 {
		add("COLLECTOR_RATE_LIMIT", "must not be negative")
	}
	if cfg.CollectorRateLimit > 0 && cfg.CollectorRateWindow <= 0 {
		add("COLLECTOR_RATE_WINDOW", "must be positive when a rate limit is set")
	}

	// Development and tests fall back to a fixed signing key
	if cfg.JWTSecret == "" {
		if env == Production || env == CI {
			add("JWT_SECRET", "required outside development")
		} else {
			cfg.JWTSecret = "flavr-dev-secret"
		}
	}

	if env == Production {
		if cfg.DBDriver == "postgres" && cfg.DBPassword == "" {
			add("DB_PASSWORD", "db_password secret is required")
		}
		if cfg.SyncBackend == SyncS3 && cfg.S3BucketName == "" {
			add("S3_BUCKET_NAME", "required when SYNC_BACKEND=s3")
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n%s", strings.Join(errors, "\n"))
	}

	return nil
}
