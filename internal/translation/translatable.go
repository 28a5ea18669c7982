// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package translation

import (
	"context"

	"github.com/olegiv/ocms-transtree/internal/store"
)

// Translatable gives a page the translation capabilities of the registry.
type Translatable struct {
	Page     store.Page
	registry *Registry
}

// IsCanonical reports whether the page is the canonical page of its group.
func (t *Translatable) IsCanonical() bool {
	return !t.Page.CanonicalPageID.Valid
}

// CanonicalID returns the id of the group's canonical page.
func (t *Translatable) CanonicalID() int64 {
	return CanonicalID(t.Page)
}

// HasTranslation reports whether the group has a translation into languageID.
func (t *Translatable) HasTranslation(ctx context.Context, languageID int64) (bool, error) {
	return t.registry.HasTranslation(ctx, t.Page, languageID)
}

// Translations returns the other pages of the group.
func (t *Translatable) Translations(ctx context.Context, onlyLive bool) ([]store.Page, error) {
	return t.registry.Translations(ctx, t.Page, onlyLive, false)
}

// CreateTranslation translates the page into language.
func (t *Translatable) CreateTranslation(ctx context.Context, language store.Language, copyContent bool, parent *store.Page) (store.Page, error) {
	return t.registry.CreateTranslation(ctx, t.Page, language, copyContent, parent)
}
