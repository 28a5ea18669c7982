// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/olegiv/ocms-transtree/internal/middleware"
	"github.com/olegiv/ocms-transtree/internal/model"
	"github.com/olegiv/ocms-transtree/internal/store"
	"github.com/olegiv/ocms-transtree/internal/tree"
)

// RootHandler sends visitors of a site root to the home page of their language.
type RootHandler struct {
	queries *store.Queries
	logger  *slog.Logger
}

// NewRootHandler creates a new root handler.
func NewRootHandler(db *sql.DB, logger *slog.Logger) *RootHandler {
	return &RootHandler{queries: store.New(db), logger: logger}
}

// ServeRoot handles GET / and GET /{lang}/. It redirects (302) to the live
// child of the site root whose translation item is in the request language,
// or responds 404. More than one such child means the language tree is out
// of sync; the first by position is served and a warning is logged.
// The site and language come from the Site and Language middleware.
func (h *RootHandler) ServeRoot(w http.ResponseWriter, r *http.Request) {
	site, ok := middleware.GetSite(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	lang, ok := middleware.GetLanguage(r)
	if !ok {
		http.NotFound(w, r)
		return
	}

	candidates, err := h.queries.ListChildPagesByItemLanguage(r.Context(), store.ListChildPagesByItemLanguageParams{
		ParentID:   site.RootPageID,
		LanguageID: lang.ID,
		OnlyLive:   true,
	})
	if err != nil {
		logAndInternalError(w, "listing root pages", "site", site.Hostname, "error", err)
		return
	}
	if len(candidates) == 0 {
		http.NotFound(w, r)
		return
	}
	if len(candidates) > 1 {
		ids := make([]int64, len(candidates))
		for i, page := range candidates {
			ids[i] = page.ID
		}
		h.logger.Warn("several live root pages in one language",
			"category", model.EventCategorySync, "site", site.Hostname, "language", lang.Code, "page_ids", ids)
	}

	url, err := tree.New(h.queries).URL(r.Context(), candidates[0])
	if err != nil {
		logAndInternalError(w, "building page URL", "page_id", candidates[0].ID, "error", err)
		return
	}
	h.logger.Debug("redirecting to language root", "site", site.Hostname, "language", lang.Code, "url", url)
	http.Redirect(w, r, url, http.StatusFound)
}
