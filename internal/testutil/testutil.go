// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package testutil provides shared test helpers: temporary databases, quiet
// loggers and raw store fixtures.
package testutil

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/olegiv/ocms-transtree/internal/model"
	"github.com/olegiv/ocms-transtree/internal/store"
)

// TestLogger creates a silent test logger that only outputs warnings and errors.
func TestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
}

// DiscardLogger creates a logger that drops everything.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// TestDB creates a temporary test database with migrations applied.
// Returns the database and a cleanup function that should be deferred.
func TestDB(t *testing.T) (*sql.DB, func()) {
	t.Helper()

	f, err := os.CreateTemp(t.TempDir(), "ocms-test-*.db")
	if err != nil {
		t.Fatalf("creating temp file: %v", err)
	}
	dbPath := f.Name()
	_ = f.Close()

	db, err := store.NewDB(dbPath)
	if err != nil {
		_ = os.Remove(dbPath)
		t.Fatalf("NewDB: %v", err)
	}

	if err := store.Migrate(db); err != nil {
		_ = db.Close()
		_ = os.Remove(dbPath)
		t.Fatalf("Migrate: %v", err)
	}

	return db, func() {
		_ = db.Close()
		_ = os.Remove(dbPath)
	}
}

// CreateLanguage inserts a language row directly, bypassing registry hooks.
func CreateLanguage(t *testing.T, q *store.Queries, code string, isDefault bool, position int64) store.Language {
	t.Helper()

	now := time.Now()
	lang, err := q.CreateLanguage(context.Background(), store.CreateLanguageParams{
		Code:      code,
		IsDefault: isDefault,
		Position:  position,
		Live:      true,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateLanguage(%q): %v", code, err)
	}
	return lang
}

// CreateSite inserts a site root page and a site pointing at it.
func CreateSite(t *testing.T, q *store.Queries, hostname string, isDefault bool) store.Site {
	t.Helper()

	ctx := context.Background()
	now := time.Now()
	root, err := q.CreatePage(ctx, store.CreatePageParams{
		ContentType: model.ContentTypeSiteRoot,
		Title:       hostname,
		Slug:        "root",
		Live:        true,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		t.Fatalf("CreatePage(root): %v", err)
	}

	site, err := q.CreateSite(ctx, store.CreateSiteParams{
		Hostname:   hostname,
		RootPageID: root.ID,
		IsDefault:  isDefault,
		CreatedAt:  now,
	})
	if err != nil {
		t.Fatalf("CreateSite(%q): %v", hostname, err)
	}
	return site
}

// CreatePage inserts a canonical page in languageID as the last child of
// parentID and registers its translation item. No hooks run.
func CreatePage(t *testing.T, q *store.Queries, parentID int64, slug string, languageID int64) store.Page {
	t.Helper()

	ctx := context.Background()
	last, err := q.MaxChildPosition(ctx, parentID)
	if err != nil {
		t.Fatalf("MaxChildPosition: %v", err)
	}

	now := time.Now()
	page, err := q.CreatePage(ctx, store.CreatePageParams{
		ParentID:    sql.NullInt64{Int64: parentID, Valid: true},
		Position:    last + 1,
		ContentType: model.ContentTypePage,
		Title:       slug,
		Slug:        slug,
		Body:        "body of " + slug,
		Live:        true,
		LanguageID:  sql.NullInt64{Int64: languageID, Valid: true},
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		t.Fatalf("CreatePage(%q): %v", slug, err)
	}

	if _, err := q.CreateTranslationItem(ctx, store.CreateTranslationItemParams{
		PageID:     sql.NullInt64{Int64: page.ID, Valid: true},
		LanguageID: languageID,
		CreatedAt:  now,
	}); err != nil {
		t.Fatalf("CreateTranslationItem(%q): %v", slug, err)
	}
	return page
}
