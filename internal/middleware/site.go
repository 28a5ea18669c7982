// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package middleware provides HTTP middleware for site and language
// resolution.
package middleware

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strings"

	"github.com/olegiv/ocms-transtree/internal/store"
)

// ContextKey is the type of request context keys set by this package.
type ContextKey string

// Context keys for site and language data.
const (
	ContextKeySite         ContextKey = "site"
	ContextKeyLanguage     ContextKey = "language"
	ContextKeyLanguageCode ContextKey = "language_code"
)

// Site resolves the site serving the request from its Host header, falling
// back to the default site. Requests no site matches get a 404.
func Site(db *sql.DB) func(http.Handler) http.Handler {
	queries := store.New(db)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			site, err := lookupSite(r.Context(), queries, r.Host)
			if errors.Is(err, sql.ErrNoRows) {
				http.NotFound(w, r)
				return
			}
			if err != nil {
				slog.Error("resolving site", "host", r.Host, "error", err)
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				return
			}
			ctx := context.WithValue(r.Context(), ContextKeySite, site)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func lookupSite(ctx context.Context, q *store.Queries, host string) (store.Site, error) {
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	host = strings.ToLower(strings.TrimSpace(host))
	if host != "" {
		site, err := q.GetSiteByHostname(ctx, host)
		if err == nil || !errors.Is(err, sql.ErrNoRows) {
			return site, err
		}
	}
	return q.GetDefaultSite(ctx)
}

// GetSite retrieves the site resolved for the request.
func GetSite(r *http.Request) (store.Site, bool) {
	site, ok := r.Context().Value(ContextKeySite).(store.Site)
	return site, ok
}
