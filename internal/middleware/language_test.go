// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/ocms-transtree/internal/cache"
	"github.com/olegiv/ocms-transtree/internal/language"
	"github.com/olegiv/ocms-transtree/internal/session"
	"github.com/olegiv/ocms-transtree/internal/store"
	"github.com/olegiv/ocms-transtree/internal/testutil"
)

type langEnv struct {
	db       *sql.DB
	q        *store.Queries
	site     store.Site
	cache    *cache.LanguageCache
	sessions *scs.SessionManager
}

// newLangEnv seeds en (default), nl, pt-BR and a non-live fr.
func newLangEnv(t *testing.T) *langEnv {
	t.Helper()
	db, cleanup := testutil.TestDB(t)
	t.Cleanup(cleanup)
	q := store.New(db)
	testutil.CreateLanguage(t, q, "en", true, 0)
	testutil.CreateLanguage(t, q, "nl", false, 1)
	fr := testutil.CreateLanguage(t, q, "fr", false, 2)
	_, err := q.UpdateLanguage(context.Background(), store.UpdateLanguageParams{ID: fr.ID, Position: 2, Live: false, UpdatedAt: time.Now()})
	require.NoError(t, err)
	testutil.CreateLanguage(t, q, "pt-BR", false, 3)

	mem := cache.NewSimpleMemoryCache(time.Hour)
	t.Cleanup(func() { _ = mem.Close() })
	return &langEnv{
		db:       db,
		q:        q,
		site:     testutil.CreateSite(t, q, "localhost", true),
		cache:    cache.NewLanguageCache(mem, q, language.NewResolver(false), time.Hour),
		sessions: session.New(db, time.Hour, true),
	}
}

func TestResolveLanguage(t *testing.T) {
	e := newLangEnv(t)
	resolver := NewLanguageResolver(e.cache, nil)

	tests := []struct {
		name   string
		target string
		cookie string
		accept string
		want   string
	}{
		{"default", "/", "", "", "en"},
		{"query parameter", "/?lang=nl", "", "", "nl"},
		{"query beats cookie", "/?lang=en", "nl", "", "en"},
		{"cookie", "/", "nl", "", "nl"},
		{"cookie beats accept-language", "/", "en", "nl", "en"},
		{"accept-language region", "/", "", "nl-BE,en;q=0.5", "nl"},
		{"accept-language quality", "/", "", "de,en;q=0.4,nl;q=0.8", "nl"},
		{"accept-language no match", "/", "", "ja", "en"},
		{"language not live", "/?lang=fr", "", "fr", "en"},
		{"unknown code", "/?lang=xx", "", "", "en"},
		{"code is case-insensitive", "/?lang=NL", "", "", "nl"},
		{"region subtag", "/?lang=pt-BR", "", "", "pt-BR"},
		{"region subtag lowercase", "/?lang=pt-br", "", "", "pt-BR"},
		{"region subtag cookie", "/", "PT-BR", "", "pt-BR"},
		{"accept-language region subtag", "/", "", "pt-BR,en;q=0.5", "pt-BR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: LanguageCookieName, Value: tt.cookie})
			}
			if tt.accept != "" {
				req.Header.Set("Accept-Language", tt.accept)
			}
			lang, err := resolver.ResolveLanguage(req, e.site.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.want, lang.Code)
		})
	}
}

func TestResolveLanguageURLParam(t *testing.T) {
	e := newLangEnv(t)
	resolver := NewLanguageResolver(e.cache, nil)

	var got string
	r := chi.NewRouter()
	r.Get("/{lang}/", func(w http.ResponseWriter, req *http.Request) {
		lang, err := resolver.ResolveLanguage(req, e.site.ID)
		require.NoError(t, err)
		got = lang.Code
	})

	for path, want := range map[string]string{"/nl/": "nl", "/pt-br/": "pt-BR"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.AddCookie(&http.Cookie{Name: LanguageCookieName, Value: "en"})
		r.ServeHTTP(httptest.NewRecorder(), req)
		assert.Equal(t, want, got, path)
	}
}

func TestResolveLanguageNoDefault(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()
	q := store.New(db)
	lc := cache.NewLanguageCache(cache.NewSimpleMemoryCache(time.Hour), q, language.NewResolver(false), time.Hour)

	_, err := NewLanguageResolver(lc, nil).ResolveLanguage(httptest.NewRequest(http.MethodGet, "/", nil), 0)
	assert.Error(t, err)
}

func TestLanguageMiddlewareRemembersSwitch(t *testing.T) {
	e := newLangEnv(t)
	resolver := NewLanguageResolver(e.cache, e.sessions)

	var got string
	handler := e.sessions.LoadAndSave(Site(e.db)(Language(resolver)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lang, ok := GetLanguage(r)
		require.True(t, ok)
		got = lang.Code
	}))))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/?lang=nl", nil))
	assert.Equal(t, "nl", got)

	var sessionCookie *http.Cookie
	langCookie := false
	for _, c := range rec.Result().Cookies() {
		switch c.Name {
		case LanguageCookieName:
			langCookie = c.Value == "nl"
		case e.sessions.Cookie.Name:
			sessionCookie = c
		}
	}
	assert.True(t, langCookie, "language cookie should be set")
	require.NotNil(t, sessionCookie)

	// The session alone carries the preference on the next request.
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(sessionCookie)
	handler.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "nl", got)
}

func TestMatchAcceptLanguage(t *testing.T) {
	allowed := []store.Language{{Code: "en"}, {Code: "pt-BR"}}

	lang, ok := matchAcceptLanguage("pt-PT;q=0.9", allowed)
	assert.True(t, ok)
	assert.Equal(t, "pt-BR", lang.Code)

	_, ok = matchAcceptLanguage("", allowed)
	assert.False(t, ok)
	_, ok = matchAcceptLanguage("ja", allowed)
	assert.False(t, ok)
	_, ok = matchAcceptLanguage("en", nil)
	assert.False(t, ok)
}
