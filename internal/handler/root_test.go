// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/ocms-transtree/internal/middleware"
	"github.com/olegiv/ocms-transtree/internal/model"
	"github.com/olegiv/ocms-transtree/internal/service"
	"github.com/olegiv/ocms-transtree/internal/store"
	"github.com/olegiv/ocms-transtree/internal/testutil"
	"github.com/olegiv/ocms-transtree/internal/util"
)

func TestServeRoot(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()

	home, err := app.pages.Create(ctx, service.CreatePageInput{ParentID: app.site.RootPageID, Title: "Home", Live: true})
	require.NoError(t, err)
	links, err := app.pages.Translations(ctx, home.ID, false)
	require.NoError(t, err)
	require.Len(t, links, 2)
	_, err = app.pages.Publish(ctx, links[1].PageID, true)
	require.NoError(t, err)

	tests := []struct {
		name     string
		target   string
		accept   string
		wantCode int
		wantLoc  string
	}{
		{"default language", "/", "", http.StatusFound, "/home/"},
		{"accept-language", "/", "nl-NL", http.StatusFound, "/home-nl/"},
		{"language prefix", "/nl/", "", http.StatusFound, "/home-nl/"},
		{"query switch", "/?lang=nl", "en", http.StatusFound, "/home-nl/"},
		{"unknown prefix falls back", "/xx/", "", http.StatusFound, "/home/"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			if tt.accept != "" {
				req.Header.Set("Accept-Language", tt.accept)
			}
			rec := httptest.NewRecorder()
			app.router.ServeHTTP(rec, req)
			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, tt.wantLoc, rec.Header().Get("Location"))
		})
	}
}

func TestServeRootNotFound(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()

	rec := httptest.NewRecorder()
	app.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code, "site without pages")

	// The nl translation starts unpublished, so there is nothing to serve.
	_, err := app.pages.Create(ctx, service.CreatePageInput{ParentID: app.site.RootPageID, Title: "Home", Live: true})
	require.NoError(t, err)
	rec = httptest.NewRecorder()
	app.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nl/", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// serveRootAs calls ServeRoot directly with the site and language the
// middleware would have resolved.
func serveRootAs(h *RootHandler, site store.Site, lang store.Language) *httptest.ResponseRecorder {
	ctx := context.WithValue(context.Background(), middleware.ContextKeySite, site)
	ctx = context.WithValue(ctx, middleware.ContextKeyLanguage, lang)
	rec := httptest.NewRecorder()
	h.ServeRoot(rec, httptest.NewRequest(http.MethodGet, "/", nil).WithContext(ctx))
	return rec
}

func TestServeRootMatchesTranslationItem(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()
	h := NewRootHandler(app.db, testutil.TestLogger())

	// A page claiming nl without a translation item is not a language root.
	now := time.Now()
	_, err := app.q.CreatePage(ctx, store.CreatePageParams{
		ParentID:    util.NullInt64FromValue(app.site.RootPageID),
		ContentType: model.ContentTypePage,
		Title:       "Los",
		Slug:        "los",
		Live:        true,
		LanguageID:  util.NullInt64FromValue(app.nl.ID),
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	require.NoError(t, err)

	rec := serveRootAs(h, app.site, app.nl)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServeRootSeveralCandidates(t *testing.T) {
	app := newTestApp(t)
	var logs bytes.Buffer
	h := NewRootHandler(app.db, slog.New(slog.NewTextHandler(&logs, nil)))

	testutil.CreatePage(t, app.q, app.site.RootPageID, "home", app.en.ID)
	testutil.CreatePage(t, app.q, app.site.RootPageID, "start", app.en.ID)

	rec := serveRootAs(h, app.site, app.en)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/home/", rec.Header().Get("Location"), "the first root by position is served")
	assert.Contains(t, logs.String(), "level=WARN")
	assert.Contains(t, logs.String(), "category=sync")
}
