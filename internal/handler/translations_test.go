// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/ocms-transtree/internal/model"
	"github.com/olegiv/ocms-transtree/internal/service"
)

func TestTranslationsList(t *testing.T) {
	app := newTestApp(t)
	home, err := app.pages.Create(context.Background(), service.CreatePageInput{ParentID: app.site.RootPageID, Title: "Home", Live: true})
	require.NoError(t, err)

	get := func(target string) (*httptest.ResponseRecorder, []model.TranslationLink) {
		rec := httptest.NewRecorder()
		app.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
		var body struct {
			Success      bool                    `json:"success"`
			Translations []model.TranslationLink `json:"translations"`
		}
		_ = json.NewDecoder(rec.Body).Decode(&body)
		return rec, body.Translations
	}

	rec, links := get("/api/pages/" + itoa(home.ID) + "/translations")
	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, links, 2)
	assert.Equal(t, "/home/", links[0].URL)
	assert.True(t, links[0].IsCanonical)
	assert.Equal(t, "nl", links[1].LanguageCode)

	_, links = get("/api/pages/" + itoa(home.ID) + "/translations?live=true")
	assert.Len(t, links, 1)

	rec, _ = get("/api/pages/9999/translations")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = get("/api/pages/abc/translations")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestErrorStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{model.ErrNotFound, http.StatusNotFound},
		{model.NewValidationError("code", "bad"), http.StatusBadRequest},
		{assert.AnError, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, errorStatus(tt.err), "%v", tt.err)
	}
}
