// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/ocms-transtree/internal/cache"
	"github.com/olegiv/ocms-transtree/internal/hook"
	"github.com/olegiv/ocms-transtree/internal/language"
	"github.com/olegiv/ocms-transtree/internal/middleware"
	"github.com/olegiv/ocms-transtree/internal/service"
	"github.com/olegiv/ocms-transtree/internal/store"
	"github.com/olegiv/ocms-transtree/internal/testutil"
	"github.com/olegiv/ocms-transtree/internal/treesync"
)

// testApp is a global-mode installation with en (default) and nl, a
// "localhost" default site and the public routes mounted.
type testApp struct {
	db     *sql.DB
	q      *store.Queries
	cache  *cache.MemoryCache
	pages  *service.PageService
	site   store.Site
	en     store.Language
	nl     store.Language
	router http.Handler
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	db, cleanup := testutil.TestDB(t)
	t.Cleanup(cleanup)

	logger := testutil.TestLogger()
	q := store.New(db)
	hooks := hook.NewRegistry(logger)
	resolver := language.NewResolver(false)
	treesync.New(hooks, resolver, logger, true).Register()

	mem := cache.NewSimpleMemoryCache(time.Hour)
	t.Cleanup(func() { _ = mem.Close() })
	languages := cache.NewLanguageCache(mem, q, resolver, time.Hour)

	app := &testApp{
		db:    db,
		q:     q,
		cache: mem,
		pages: service.NewPageService(db, hooks, resolver, logger),
		en:    testutil.CreateLanguage(t, q, "en", true, 0),
		nl:    testutil.CreateLanguage(t, q, "nl", false, 1),
		site:  testutil.CreateSite(t, q, "localhost", true),
	}

	root := NewRootHandler(db, logger)
	translations := NewTranslationsHandler(app.pages)
	health := NewHealthHandler(db, mem, versionForTest)

	r := chi.NewRouter()
	r.Get("/health", health.Health)
	r.Group(func(r chi.Router) {
		r.Use(middleware.Site(db))
		lang := middleware.Language(middleware.NewLanguageResolver(languages, nil))
		r.With(lang).Get("/", root.ServeRoot)
		r.With(lang).Get("/{lang}/", root.ServeRoot)
	})
	r.Get("/api/pages/{id}/translations", translations.List)
	app.router = r
	return app
}
