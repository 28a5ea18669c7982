// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	"golang.org/x/text/language"

	"github.com/olegiv/ocms-transtree/internal/cache"
	"github.com/olegiv/ocms-transtree/internal/model"
	"github.com/olegiv/ocms-transtree/internal/session"
	"github.com/olegiv/ocms-transtree/internal/store"
)

// LanguageCookieName is the cookie name for language preference.
const LanguageCookieName = "transtree_lang"

// LanguageResolver picks the language of a request among the live
// languages its site allows.
type LanguageResolver struct {
	languages *cache.LanguageCache
	sessions  *scs.SessionManager
}

// NewLanguageResolver creates a resolver. sessions may be nil, in which case
// the session preference is not consulted; otherwise requests must pass
// through sessions.LoadAndSave first.
func NewLanguageResolver(languages *cache.LanguageCache, sessions *scs.SessionManager) *LanguageResolver {
	return &LanguageResolver{languages: languages, sessions: sessions}
}

// ResolveLanguage returns the request language. Priority order:
//  1. Query parameter ?lang=XX
//  2. URL parameter {lang} from chi router
//  3. Session preference
//  4. Cookie preference
//  5. Accept-Language header
//  6. Site default language
//
// Codes that do not name a language allowed on the site are ignored.
// ErrNotFound means no candidate matched and the site has no default.
func (l *LanguageResolver) ResolveLanguage(r *http.Request, siteID int64) (store.Language, error) {
	snapshot, err := l.languages.Snapshot(r.Context(), siteID)
	if err != nil {
		return store.Language{}, err
	}

	for _, code := range l.explicitCodes(r) {
		if lang, ok := snapshot.ByCode(code); ok {
			return lang, nil
		}
	}
	if lang, ok := matchAcceptLanguage(r.Header.Get("Accept-Language"), snapshot.Languages); ok {
		return lang, nil
	}
	if snapshot.Default != nil {
		return *snapshot.Default, nil
	}
	return store.Language{}, model.ErrNotFound
}

// explicitCodes lists the codes the request names, highest priority first.
func (l *LanguageResolver) explicitCodes(r *http.Request) []string {
	codes := []string{r.URL.Query().Get("lang"), chi.URLParam(r, "lang")}
	if l.sessions != nil {
		codes = append(codes, session.PreferredLanguage(r.Context(), l.sessions))
	}
	if cookie, err := r.Cookie(LanguageCookieName); err == nil {
		codes = append(codes, cookie.Value)
	}

	nonEmpty := codes[:0]
	for _, code := range codes {
		if code = strings.TrimSpace(code); code != "" {
			nonEmpty = append(nonEmpty, code)
		}
	}
	return nonEmpty
}

// matchAcceptLanguage finds the best allowed language for an
// Accept-Language header, honouring quality values.
func matchAcceptLanguage(header string, allowed []store.Language) (store.Language, bool) {
	if header == "" || len(allowed) == 0 {
		return store.Language{}, false
	}
	prefs, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(prefs) == 0 {
		return store.Language{}, false
	}

	supported := make([]language.Tag, 0, len(allowed))
	candidates := make([]store.Language, 0, len(allowed))
	for _, lang := range allowed {
		tag, err := language.Parse(lang.Code)
		if err != nil {
			continue
		}
		supported = append(supported, tag)
		candidates = append(candidates, lang)
	}
	if len(supported) == 0 {
		return store.Language{}, false
	}

	_, idx, conf := language.NewMatcher(supported).Match(prefs...)
	if conf == language.No {
		return store.Language{}, false
	}
	return candidates[idx], true
}

// Language creates middleware that resolves the request language and stores
// it in the request context. It must run after Site. An explicit ?lang=
// switch is remembered in the cookie and the session.
func Language(resolver *LanguageResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			site, ok := GetSite(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			lang, err := resolver.ResolveLanguage(r, site.ID)
			if err != nil {
				if !errors.Is(err, model.ErrNotFound) {
					slog.Error("resolving language", "site", site.Hostname, "error", err)
				}
				next.ServeHTTP(w, r)
				return
			}

			if q := r.URL.Query().Get("lang"); q != "" && strings.EqualFold(q, lang.Code) {
				SetLanguageCookie(w, lang.Code)
				if resolver.sessions != nil {
					session.SetPreferredLanguage(r.Context(), resolver.sessions, lang.Code)
				}
			}

			ctx := context.WithValue(r.Context(), ContextKeyLanguage, lang)
			ctx = context.WithValue(ctx, ContextKeyLanguageCode, lang.Code)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetLanguage retrieves the current language from the request context.
func GetLanguage(r *http.Request) (store.Language, bool) {
	lang, ok := r.Context().Value(ContextKeyLanguage).(store.Language)
	return lang, ok
}

// SetLanguageCookie sets the language preference cookie.
func SetLanguageCookie(w http.ResponseWriter, langCode string) {
	cookie := &http.Cookie{
		Name:     LanguageCookieName,
		Value:    langCode,
		Path:     "/",
		MaxAge:   365 * 24 * 60 * 60, // 1 year
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	http.SetCookie(w, cookie)
}
