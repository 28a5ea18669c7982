// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package translation tracks which canonical page every page mirrors and
// in which language, and creates translations inside the language trees.
package translation

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/olegiv/ocms-transtree/internal/model"
	"github.com/olegiv/ocms-transtree/internal/store"
	"github.com/olegiv/ocms-transtree/internal/tree"
	"github.com/olegiv/ocms-transtree/internal/util"
)

// Registry answers translation queries and creates translations. It is
// cheap to construct and is normally bound to a transaction.
type Registry struct {
	queries *store.Queries
	host    tree.Host
	now     func() time.Time
}

// NewRegistry creates a Registry using queries for item bookkeeping and
// host for structural operations. Both should share the same transaction.
func NewRegistry(queries *store.Queries, host tree.Host) *Registry {
	return &Registry{
		queries: queries,
		host:    host,
		now:     time.Now,
	}
}

// IsTranslatable reports whether a page takes part in translation groups.
// Site roots and pages without a language do not.
func IsTranslatable(page store.Page) bool {
	return page.ContentType != model.ContentTypeSiteRoot && page.LanguageID.Valid
}

// CanonicalID returns the id of the canonical page of page's group.
func CanonicalID(page store.Page) int64 {
	if page.CanonicalPageID.Valid {
		return page.CanonicalPageID.Int64
	}
	return page.ID
}

// Translatable wraps page with the registry.
func (r *Registry) Translatable(page store.Page) *Translatable {
	return &Translatable{Page: page, registry: r}
}

// Register records a canonical page in the item table.
func (r *Registry) Register(ctx context.Context, page store.Page) error {
	if !page.LanguageID.Valid {
		return model.NewValidationError("language", fmt.Sprintf("page %d has no language", page.ID))
	}
	_, err := r.queries.CreateTranslationItem(ctx, store.CreateTranslationItemParams{
		PageID:          sql.NullInt64{Int64: page.ID, Valid: true},
		CanonicalPageID: page.CanonicalPageID,
		LanguageID:      page.LanguageID.Int64,
		CreatedAt:       r.now(),
	})
	if err != nil {
		return fmt.Errorf("registering page %d: %w", page.ID, err)
	}
	return nil
}

// HasTranslation reports whether the group of page already has a
// translation registered for languageID.
func (r *Registry) HasTranslation(ctx context.Context, page store.Page, languageID int64) (bool, error) {
	exists, err := r.queries.HasTranslation(ctx, CanonicalID(page), languageID)
	if err != nil {
		return false, fmt.Errorf("checking translation of page %d: %w", page.ID, err)
	}
	return exists, nil
}

// Translations returns the pages of page's translation group ordered by
// language position. With onlyLive only live pages in live languages are
// returned. Without includeSelf the page itself is left out.
func (r *Registry) Translations(ctx context.Context, page store.Page, onlyLive, includeSelf bool) ([]store.Page, error) {
	group, err := r.queries.ListTranslationGroup(ctx, store.ListTranslationGroupParams{
		CanonicalID: CanonicalID(page),
		OnlyLive:    onlyLive,
	})
	if err != nil {
		return nil, fmt.Errorf("listing translations of page %d: %w", page.ID, err)
	}
	if includeSelf {
		return group, nil
	}
	result := make([]store.Page, 0, len(group))
	for _, p := range group {
		if p.ID != page.ID {
			result = append(result, p)
		}
	}
	return result, nil
}

// CreateTranslation creates the translation of a canonical source page into
// language below parent, or below TranslationParent when parent is nil.
// With copyContent the content fields of source are copied; otherwise an
// empty page of the same content type is created. The translation starts
// unpublished.
func (r *Registry) CreateTranslation(ctx context.Context, source store.Page, language store.Language, copyContent bool, parent *store.Page) (store.Page, error) {
	if !IsTranslatable(source) {
		return store.Page{}, model.NewValidationError("page", fmt.Sprintf("page %d is not translatable", source.ID))
	}
	if source.CanonicalPageID.Valid {
		return store.Page{}, model.NewValidationError("page",
			fmt.Sprintf("page %d is a translation of page %d; translate the canonical page", source.ID, source.CanonicalPageID.Int64))
	}
	if source.LanguageID.Int64 == language.ID {
		return store.Page{}, &model.ConflictError{CanonicalID: source.ID, LanguageCode: language.Code}
	}

	exists, err := r.HasTranslation(ctx, source, language.ID)
	if err != nil {
		return store.Page{}, err
	}
	if exists {
		return store.Page{}, &model.ConflictError{CanonicalID: source.ID, LanguageCode: language.Code}
	}

	if parent == nil {
		p, err := r.TranslationParent(ctx, source, language)
		if err != nil {
			return store.Page{}, err
		}
		parent = &p
	}

	sourceLanguage, err := r.queries.GetLanguage(ctx, source.LanguageID.Int64)
	if err != nil {
		return store.Page{}, fmt.Errorf("getting language of page %d: %w", source.ID, err)
	}
	slug := util.TranslatedSlug(source.Slug, sourceLanguage.Code, language.Code)

	languageID := sql.NullInt64{Int64: language.ID, Valid: true}
	canonicalID := sql.NullInt64{Int64: source.ID, Valid: true}

	var created store.Page
	if copyContent {
		created, err = r.host.Copy(ctx, source, tree.CopyOverrides{
			Title:           source.Title,
			Slug:            slug,
			Live:            false,
			LanguageID:      languageID,
			CanonicalPageID: canonicalID,
		}, &parent.ID)
	} else {
		created, err = r.host.AddChild(ctx, parent.ID, tree.NewPage{
			ContentType:     source.ContentType,
			Title:           source.Title,
			Slug:            slug,
			Live:            false,
			LanguageID:      languageID,
			CanonicalPageID: canonicalID,
		})
	}
	if err != nil {
		return store.Page{}, fmt.Errorf("creating %s translation of page %d: %w", language.Code, source.ID, err)
	}

	if err := r.Register(ctx, created); err != nil {
		return store.Page{}, err
	}
	return created, nil
}

// TranslationParent returns the page a translation of source into language
// is created under. When language has no pages in the site yet, or source
// sits directly below the site root, that is the site root. Otherwise it is
// the language's mirror of source's parent.
func (r *Registry) TranslationParent(ctx context.Context, source store.Page, language store.Language) (store.Page, error) {
	site, err := r.host.SiteFor(ctx, source)
	if err != nil {
		return store.Page{}, err
	}
	if site == nil {
		return store.Page{}, model.NewValidationError("page", fmt.Sprintf("page %d belongs to no site", source.ID))
	}

	root, err := r.host.RootPage(ctx, *site)
	if err != nil {
		return store.Page{}, err
	}

	hasPages, err := r.queries.SubtreeHasLanguage(ctx, root.ID, language.ID)
	if err != nil {
		return store.Page{}, fmt.Errorf("checking %s pages in site %d: %w", language.Code, site.ID, err)
	}
	if !hasPages || source.ParentID.Int64 == root.ID {
		return root, nil
	}

	parent, err := r.host.Parent(ctx, source)
	if err != nil {
		return store.Page{}, err
	}
	return r.Mirror(ctx, *parent, language)
}

// Mirror returns the page of language in page's translation group. Exactly
// one such page must exist, otherwise the trees are not congruent.
func (r *Registry) Mirror(ctx context.Context, page store.Page, language store.Language) (store.Page, error) {
	canonicalID := CanonicalID(page)
	matches, err := r.queries.FindMirrorPages(ctx, language.ID, canonicalID)
	if err != nil {
		return store.Page{}, fmt.Errorf("finding %s mirror of page %d: %w", language.Code, canonicalID, err)
	}
	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return store.Page{}, &model.SyncPreconditionError{
			PageID:       page.ID,
			LanguageCode: language.Code,
			Reason:       "no translation of the page exists in this language",
		}
	default:
		return store.Page{}, &model.SyncPreconditionError{
			PageID:       page.ID,
			LanguageCode: language.Code,
			Reason:       fmt.Sprintf("%d pages claim to be the translation", len(matches)),
		}
	}
}

// Item returns the translation item registered for page.
func (r *Registry) Item(ctx context.Context, page store.Page) (store.TranslationItem, error) {
	item, err := r.queries.GetTranslationItemByPage(ctx, page.ID)
	if errors.Is(err, sql.ErrNoRows) {
		return store.TranslationItem{}, fmt.Errorf("translation item of page %d: %w", page.ID, model.ErrNotFound)
	}
	if err != nil {
		return store.TranslationItem{}, fmt.Errorf("translation item of page %d: %w", page.ID, err)
	}
	return item, nil
}
