package config

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors collects every problem found in one pass.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	msgs := make([]string, len(e))
	for i, v := range e {
		msgs[i] = v.Error()
	}
	return strings.Join(msgs, "\n")
}

// ValidateConfig checks cfg for values the application cannot start with.
func ValidateConfig(cfg *Config) error {
	var errs ValidationErrors
	add := func(field, msg string) {
		errs = append(errs, ValidationError{Field: field, Message: msg})
	}

	if port, err := strconv.Atoi(cfg.Server.Port); err != nil || port < 1 || port > 65535 {
		add("server.port", fmt.Sprintf("must be a valid TCP port, got %q", cfg.Server.Port))
	}
	if cfg.Server.ShutdownTimeout <= 0 {
		add("server.shutdown_timeout", "must be positive")
	}

	switch cfg.Database.Driver {
	case "sqlite", "postgres":
	default:
		add("database.driver", fmt.Sprintf("must be sqlite or postgres, got %q", cfg.Database.Driver))
	}
	if cfg.Database.DSN == "" {
		add("database.dsn", "is required")
	}

	switch cfg.Auth.Hasher {
	case "bcrypt", "argon2id":
	default:
		add("auth.hasher", fmt.Sprintf("must be bcrypt or argon2id, got %q", cfg.Auth.Hasher))
	}
	if cfg.Auth.BcryptCost < bcrypt.MinCost || cfg.Auth.BcryptCost > bcrypt.MaxCost {
		add("auth.bcrypt_cost", fmt.Sprintf("must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost))
	}

	if cfg.Session.TTL <= 0 {
		add("session.ttl", "must be positive")
	}
	if cfg.Session.CookieName == "" || cfg.Session.FlashCookieName == "" {
		add("session.cookie_name", "session and flash cookie names are required")
	}
	if cfg.Session.CookieName == cfg.Session.FlashCookieName {
		add("session.flash_cookie_name", "must differ from session.cookie_name")
	}

	if cfg.RateLimit.Enabled {
		if cfg.RateLimit.LoginLimit < 1 || cfg.RateLimit.LoginWindow <= 0 {
			add("rate_limit.login", "limit and window must be positive")
		}
		if cfg.RateLimit.RecipeCreateLimit < 1 || cfg.RateLimit.RecipeCreateWindow <= 0 {
			add("rate_limit.recipe_create", "limit and window must be positive")
		}
	}

	if cfg.Storage.Enabled() {
		if cfg.Storage.Region == "" {
			add("storage.region", "is required when storage.bucket is set")
		}
		if cfg.Storage.PresignTTL <= 0 {
			add("storage.presign_ttl", "must be positive")
		}
		if cfg.Storage.MaxPhotoBytes <= 0 {
			add("storage.max_photo_bytes", "must be positive")
		}
	}

	if cfg.Metrics.Enabled && !strings.HasPrefix(cfg.Metrics.Path, "/") {
		add("metrics.path", "must start with /")
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
