// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package language

import (
	"cmp"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"

	"github.com/olegiv/ocms-transtree/internal/model"
	"github.com/olegiv/ocms-transtree/internal/store"
)

// Resolver determines the effective default language and the set of
// allowed languages of a site. A siteID of 0 means "no site".
type Resolver interface {
	PerSite() bool
	DefaultLanguage(ctx context.Context, q *store.Queries, siteID int64) (store.Language, error)
	AllowedLanguages(ctx context.Context, q *store.Queries, siteID int64) ([]store.Language, error)
}

// NewResolver returns the per-site resolver when perSite is set and the
// global one otherwise.
func NewResolver(perSite bool) Resolver {
	if perSite {
		return SiteResolver{}
	}
	return GlobalResolver{}
}

// GlobalResolver uses the single is_default language for every site and
// allows all live languages.
type GlobalResolver struct{}

// PerSite implements Resolver.
func (GlobalResolver) PerSite() bool { return false }

// DefaultLanguage implements Resolver.
func (GlobalResolver) DefaultLanguage(ctx context.Context, q *store.Queries, _ int64) (store.Language, error) {
	lang, err := q.GetDefaultLanguage(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Language{}, fmt.Errorf("default language: %w", model.ErrNotFound)
	}
	if err != nil {
		return store.Language{}, fmt.Errorf("getting default language: %w", err)
	}
	return lang, nil
}

// AllowedLanguages implements Resolver.
func (GlobalResolver) AllowedLanguages(ctx context.Context, q *store.Queries, _ int64) ([]store.Language, error) {
	langs, err := q.ListLiveLanguages(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing live languages: %w", err)
	}
	return langs, nil
}

// SiteResolver reads the SiteLanguages settings of each site. Sites
// without settings, or without a default language, behave as in global mode.
type SiteResolver struct{}

// PerSite implements Resolver.
func (SiteResolver) PerSite() bool { return true }

// DefaultLanguage implements Resolver.
func (SiteResolver) DefaultLanguage(ctx context.Context, q *store.Queries, siteID int64) (store.Language, error) {
	settings, ok, err := siteSettings(ctx, q, siteID)
	if err != nil {
		return store.Language{}, err
	}
	if !ok || !settings.DefaultLanguageID.Valid {
		return GlobalResolver{}.DefaultLanguage(ctx, q, siteID)
	}
	lang, err := q.GetLanguage(ctx, settings.DefaultLanguageID.Int64)
	if err != nil {
		return store.Language{}, fmt.Errorf("getting default language of site %d: %w", siteID, err)
	}
	return lang, nil
}

// AllowedLanguages implements Resolver. The result holds the site default
// and the site's other languages, live ones only, ordered by position.
func (SiteResolver) AllowedLanguages(ctx context.Context, q *store.Queries, siteID int64) ([]store.Language, error) {
	settings, ok, err := siteSettings(ctx, q, siteID)
	if err != nil {
		return nil, err
	}
	if !ok || !settings.DefaultLanguageID.Valid {
		return GlobalResolver{}.AllowedLanguages(ctx, q, siteID)
	}

	others, err := q.ListSiteOtherLanguages(ctx, siteID)
	if err != nil {
		return nil, fmt.Errorf("listing languages of site %d: %w", siteID, err)
	}
	def, err := q.GetLanguage(ctx, settings.DefaultLanguageID.Int64)
	if err != nil {
		return nil, fmt.Errorf("getting default language of site %d: %w", siteID, err)
	}

	allowed := make([]store.Language, 0, len(others)+1)
	for _, lang := range append(others, def) {
		if lang.Live {
			allowed = append(allowed, lang)
		}
	}
	SortLanguages(allowed)
	return allowed, nil
}

func siteSettings(ctx context.Context, q *store.Queries, siteID int64) (store.SiteLanguage, bool, error) {
	if siteID == 0 {
		return store.SiteLanguage{}, false, nil
	}
	settings, err := q.GetSiteLanguages(ctx, siteID)
	if errors.Is(err, sql.ErrNoRows) {
		return store.SiteLanguage{}, false, nil
	}
	if err != nil {
		return store.SiteLanguage{}, false, fmt.Errorf("getting languages of site %d: %w", siteID, err)
	}
	return settings, true, nil
}

// SortLanguages orders languages by position, then code.
func SortLanguages(langs []store.Language) {
	slices.SortFunc(langs, func(a, b store.Language) int {
		if c := cmp.Compare(a.Position, b.Position); c != 0 {
			return c
		}
		return cmp.Compare(a.Code, b.Code)
	})
}

// IsAllowed reports whether languageID is among the allowed languages of siteID.
func IsAllowed(ctx context.Context, resolver Resolver, q *store.Queries, siteID, languageID int64) (bool, error) {
	allowed, err := resolver.AllowedLanguages(ctx, q, siteID)
	if err != nil {
		return false, err
	}
	return slices.ContainsFunc(allowed, func(l store.Language) bool { return l.ID == languageID }), nil
}

// ValidateSiteLanguages rejects a default language that is also listed
// among the other languages.
func ValidateSiteLanguages(defaultID sql.NullInt64, otherIDs []int64) error {
	if defaultID.Valid && slices.Contains(otherIDs, defaultID.Int64) {
		return model.NewValidationError("other_languages", "the default language cannot also be an other language")
	}
	return nil
}
