// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/ocms-transtree/internal/service"
)

// TranslationsHandler exposes the translation set of a page.
type TranslationsHandler struct {
	pages *service.PageService
}

// NewTranslationsHandler creates a new translations handler.
func NewTranslationsHandler(pages *service.PageService) *TranslationsHandler {
	return &TranslationsHandler{pages: pages}
}

// List handles GET /api/pages/{id}/translations. With ?live=true only
// published pages are listed.
func (h *TranslationsHandler) List(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeJSONError(w, http.StatusBadRequest, "invalid page id")
		return
	}
	onlyLive, _ := strconv.ParseBool(r.URL.Query().Get("live"))

	links, err := h.pages.Translations(r.Context(), id, onlyLive)
	if err != nil {
		writeServiceError(w, err, "listing translations", "page_id", id)
		return
	}
	writeJSONSuccess(w, map[string]any{"translations": links})
}
