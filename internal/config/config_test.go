// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"os"
	"testing"
	"time"
)

func setEnv(t *testing.T, key, value string) {
	t.Helper()
	if err := os.Setenv(key, value); err != nil {
		t.Fatalf("failed to set %s: %v", key, err)
	}
}

func TestLoad_Defaults(t *testing.T) {
	os.Clearenv()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.DBPath != "./data/transtree.db" {
		t.Errorf("DBPath = %q, want %q", cfg.DBPath, "./data/transtree.db")
	}
	if cfg.ServerAddr() != "localhost:8080" {
		t.Errorf("ServerAddr() = %q, want %q", cfg.ServerAddr(), "localhost:8080")
	}
	if !cfg.IsDevelopment() {
		t.Error("IsDevelopment() = false, want true")
	}
	if !cfg.SyncTree {
		t.Error("SyncTree = false, want true")
	}
	if cfg.LanguagesPerSite {
		t.Error("LanguagesPerSite = true, want false")
	}
	if cfg.DefaultLanguage != "en" {
		t.Errorf("DefaultLanguage = %q, want %q", cfg.DefaultLanguage, "en")
	}
	if cfg.AuditSchedule != "@hourly" || !cfg.AuditEnabled() {
		t.Errorf("AuditSchedule = %q, want @hourly and enabled", cfg.AuditSchedule)
	}
	if cfg.UseRedisCache() {
		t.Error("UseRedisCache() = true without OCMS_REDIS_URL")
	}
	if cfg.SessionLifetime != 720*time.Hour {
		t.Errorf("SessionLifetime = %s, want 720h", cfg.SessionLifetime)
	}
}

func TestLoad_CustomValues(t *testing.T) {
	os.Clearenv()
	setEnv(t, "OCMS_DB_PATH", "/custom/path.db")
	setEnv(t, "OCMS_SERVER_HOST", "0.0.0.0")
	setEnv(t, "OCMS_SERVER_PORT", "3000")
	setEnv(t, "OCMS_ENV", "production")
	setEnv(t, "OCMS_SYNC_TREE", "false")
	setEnv(t, "OCMS_LANGUAGES_PER_SITE", "true")
	setEnv(t, "OCMS_DEFAULT_LANGUAGE", "PT-br")
	setEnv(t, "OCMS_DEFAULT_SITE", " Example.ORG ")
	setEnv(t, "OCMS_REDIS_URL", "redis://localhost:6379/0")
	setEnv(t, "OCMS_AUDIT_SCHEDULE", "off")
	setEnv(t, "OCMS_SESSION_LIFETIME", "2h")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.ServerAddr() != "0.0.0.0:3000" {
		t.Errorf("ServerAddr() = %q, want %q", cfg.ServerAddr(), "0.0.0.0:3000")
	}
	if cfg.IsDevelopment() {
		t.Error("IsDevelopment() = true in production")
	}
	if cfg.SyncTree || !cfg.LanguagesPerSite {
		t.Errorf("SyncTree = %v, LanguagesPerSite = %v", cfg.SyncTree, cfg.LanguagesPerSite)
	}
	if cfg.DefaultLanguage != "pt-BR" {
		t.Errorf("DefaultLanguage = %q, want %q", cfg.DefaultLanguage, "pt-BR")
	}
	if cfg.DefaultSite != "example.org" {
		t.Errorf("DefaultSite = %q, want %q", cfg.DefaultSite, "example.org")
	}
	if !cfg.UseRedisCache() {
		t.Error("UseRedisCache() = false with OCMS_REDIS_URL set")
	}
	if cfg.AuditEnabled() {
		t.Error("AuditEnabled() = true with schedule off")
	}
	if cfg.SessionLifetime != 2*time.Hour {
		t.Errorf("SessionLifetime = %s, want 2h", cfg.SessionLifetime)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"bad port", "OCMS_SERVER_PORT", "http"},
		{"bad language", "OCMS_DEFAULT_LANGUAGE", "not a tag"},
		{"bad schedule", "OCMS_AUDIT_SCHEDULE", "every hour"},
		{"zero cache ttl", "OCMS_CACHE_TTL", "0"},
		{"bad lifetime", "OCMS_SESSION_LIFETIME", "forever"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Clearenv()
			setEnv(t, tt.key, tt.value)
			if _, err := Load(); err == nil {
				t.Errorf("Load() with %s=%q should fail", tt.key, tt.value)
			}
		})
	}
}
