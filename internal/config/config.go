// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/robfig/cron/v3"
	"golang.org/x/text/language"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DBPath     string `env:"OCMS_DB_PATH" envDefault:"./data/transtree.db"`
	ServerHost string `env:"OCMS_SERVER_HOST" envDefault:"localhost"`
	ServerPort int    `env:"OCMS_SERVER_PORT" envDefault:"8080"`
	Env        string `env:"OCMS_ENV" envDefault:"development"`
	LogLevel   string `env:"OCMS_LOG_LEVEL" envDefault:"info"`

	// Translation tree behaviour
	SyncTree         bool   `env:"OCMS_SYNC_TREE" envDefault:"true"`           // Mirror page edits into every language tree
	LanguagesPerSite bool   `env:"OCMS_LANGUAGES_PER_SITE" envDefault:"false"` // Resolve default/allowed languages per site
	DefaultLanguage  string `env:"OCMS_DEFAULT_LANGUAGE" envDefault:"en"`      // Seeded on an empty database
	DefaultSite      string `env:"OCMS_DEFAULT_SITE" envDefault:"localhost"`   // Seeded on an empty database

	// Cache configuration
	RedisURL     string `env:"OCMS_REDIS_URL"`                              // Optional Redis URL for distributed caching
	CachePrefix  string `env:"OCMS_CACHE_PREFIX" envDefault:"transtree:"`   // Redis key prefix
	CacheTTL     int    `env:"OCMS_CACHE_TTL" envDefault:"3600"`            // Default cache TTL in seconds
	CacheMaxSize int    `env:"OCMS_CACHE_MAX_SIZE" envDefault:"10000"`      // Max memory cache entries

	// Congruence audit cron spec; "off" disables it.
	AuditSchedule string `env:"OCMS_AUDIT_SCHEDULE" envDefault:"@hourly"`

	SessionLifetime time.Duration `env:"OCMS_SESSION_LIFETIME" envDefault:"720h"`
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// UseRedisCache returns true if Redis caching is configured.
func (c Config) UseRedisCache() bool {
	return c.RedisURL != ""
}

// AuditEnabled reports whether the congruence audit should be scheduled.
func (c Config) AuditEnabled() bool {
	return c.AuditSchedule != "" && c.AuditSchedule != "off"
}

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	tag, err := language.Parse(cfg.DefaultLanguage)
	if err != nil {
		return nil, fmt.Errorf("OCMS_DEFAULT_LANGUAGE %q: %w", cfg.DefaultLanguage, err)
	}
	cfg.DefaultLanguage = tag.String()
	cfg.DefaultSite = strings.ToLower(strings.TrimSpace(cfg.DefaultSite))

	if cfg.AuditEnabled() {
		if _, err := cron.ParseStandard(cfg.AuditSchedule); err != nil {
			return nil, fmt.Errorf("OCMS_AUDIT_SCHEDULE %q: %w", cfg.AuditSchedule, err)
		}
	}
	if cfg.CacheTTL <= 0 {
		return nil, fmt.Errorf("OCMS_CACHE_TTL must be positive, got %d", cfg.CacheTTL)
	}
	if cfg.SessionLifetime <= 0 {
		return nil, fmt.Errorf("OCMS_SESSION_LIFETIME must be positive, got %s", cfg.SessionLifetime)
	}

	return cfg, nil
}
