// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package language holds the catalog of languages, the default language
// designation and the per-site language resolver.
package language

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/text/language"

	"github.com/olegiv/ocms-transtree/internal/model"
	"github.com/olegiv/ocms-transtree/internal/store"
)

// Registry manages languages. It is bound to a *store.Queries, normally
// one scoped to the caller's transaction.
type Registry struct {
	queries  *store.Queries
	resolver Resolver
	logger   *slog.Logger
	now      func() time.Time
}

// NewRegistry creates a Registry. The resolver decides whether defaults
// are global or per site.
func NewRegistry(queries *store.Queries, resolver Resolver, logger *slog.Logger) *Registry {
	return &Registry{
		queries:  queries,
		resolver: resolver,
		logger:   logger,
		now:      time.Now,
	}
}

// CreateParams holds the fields of a new language.
type CreateParams struct {
	Code     string
	Position int64
	Live     bool
}

// UpdateParams holds the fields changed by Update. Nil fields are kept.
type UpdateParams struct {
	Position  *int64
	Live      *bool
	IsDefault *bool
}

// NormalizeCode validates code as a BCP 47 tag and returns its canonical form.
func NormalizeCode(code string) (string, error) {
	if code == "" {
		return "", model.NewValidationError("code", "language code is required")
	}
	tag, err := language.Parse(code)
	if err != nil {
		return "", model.NewValidationError("code", fmt.Sprintf("%q is not a valid BCP 47 language tag", code))
	}
	return tag.String(), nil
}

// List returns all languages ordered by position.
func (r *Registry) List(ctx context.Context) ([]store.Language, error) {
	langs, err := r.queries.ListLanguages(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing languages: %w", err)
	}
	return langs, nil
}

// ListLive returns the live languages ordered by position.
func (r *Registry) ListLive(ctx context.Context) ([]store.Language, error) {
	langs, err := r.queries.ListLiveLanguages(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing live languages: %w", err)
	}
	return langs, nil
}

// GetByCode returns the language with the given code.
func (r *Registry) GetByCode(ctx context.Context, code string) (store.Language, error) {
	lang, err := r.queries.GetLanguageByCode(ctx, code)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Language{}, fmt.Errorf("language %q: %w", code, model.ErrNotFound)
	}
	if err != nil {
		return store.Language{}, fmt.Errorf("getting language %q: %w", code, err)
	}
	return lang, nil
}

// Default returns the default language of siteID, or the global default
// when siteID is 0 or languages are not configured per site.
func (r *Registry) Default(ctx context.Context, siteID int64) (store.Language, error) {
	return r.resolver.DefaultLanguage(ctx, r.queries, siteID)
}

// Create inserts a language and provisions its translator group. In global
// mode the very first language becomes the default; promoting any later
// language is done with SetDefault once its tree exists.
func (r *Registry) Create(ctx context.Context, arg CreateParams) (store.Language, error) {
	code, err := NormalizeCode(arg.Code)
	if err != nil {
		return store.Language{}, err
	}

	_, err = r.queries.GetLanguageByCode(ctx, code)
	if err == nil {
		return store.Language{}, model.NewValidationError("code", fmt.Sprintf("language %q already exists", code))
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return store.Language{}, fmt.Errorf("checking language %q: %w", code, err)
	}

	count, err := r.queries.CountLanguages(ctx)
	if err != nil {
		return store.Language{}, fmt.Errorf("counting languages: %w", err)
	}
	isDefault := count == 0 && !r.resolver.PerSite()
	if isDefault && !arg.Live {
		return store.Language{}, model.NewValidationError("live", "the default language must be live")
	}

	now := r.now()
	lang, err := r.queries.CreateLanguage(ctx, store.CreateLanguageParams{
		Code:      code,
		IsDefault: isDefault,
		Position:  arg.Position,
		Live:      arg.Live,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return store.Language{}, fmt.Errorf("creating language %q: %w", code, err)
	}

	if err := r.provisionGroup(ctx, lang); err != nil {
		return store.Language{}, err
	}

	r.logger.Info("language created", "code", lang.Code, "default", lang.IsDefault)
	return lang, nil
}

// provisionGroup creates the translator group of lang with page permissions.
func (r *Registry) provisionGroup(ctx context.Context, lang store.Language) error {
	group, err := r.queries.CreateGroup(ctx, store.CreateGroupParams{
		Name:       model.LanguageGroupName(lang.Code),
		LanguageID: sql.NullInt64{Int64: lang.ID, Valid: true},
		CreatedAt:  r.now(),
	})
	if err != nil {
		return fmt.Errorf("creating group for language %q: %w", lang.Code, err)
	}
	for _, perm := range model.LanguagePermissions {
		if err := r.queries.AddGroupPermission(ctx, group.ID, perm); err != nil {
			return fmt.Errorf("granting %s to group %s: %w", perm, group.Name, err)
		}
	}
	return nil
}

// Update changes position, liveness or default status of a language.
// Removing the default flag is rejected: promote another language instead.
func (r *Registry) Update(ctx context.Context, code string, arg UpdateParams) (store.Language, error) {
	lang, err := r.GetByCode(ctx, code)
	if err != nil {
		return store.Language{}, err
	}

	if arg.IsDefault != nil && !*arg.IsDefault && lang.IsDefault {
		return store.Language{}, model.NewValidationError("is_default",
			"cannot remove the default flag; make another language the default instead")
	}
	if arg.Live != nil && !*arg.Live && lang.IsDefault {
		return store.Language{}, model.NewValidationError("live", "the default language must be live")
	}

	position, live := lang.Position, lang.Live
	if arg.Position != nil {
		position = *arg.Position
	}
	if arg.Live != nil {
		live = *arg.Live
	}

	lang, err = r.queries.UpdateLanguage(ctx, store.UpdateLanguageParams{
		Position:  position,
		Live:      live,
		UpdatedAt: r.now(),
		ID:        lang.ID,
	})
	if err != nil {
		return store.Language{}, fmt.Errorf("updating language %q: %w", code, err)
	}

	if arg.IsDefault != nil && *arg.IsDefault && !lang.IsDefault {
		return r.SetDefault(ctx, code)
	}
	return lang, nil
}

// SetDefault makes the language with code the global default and re-homes
// translation groups onto it. It is not available when languages are
// configured per site.
func (r *Registry) SetDefault(ctx context.Context, code string) (store.Language, error) {
	if r.resolver.PerSite() {
		return store.Language{}, model.NewValidationError("is_default",
			"languages are configured per site; change the site default instead")
	}

	lang, err := r.GetByCode(ctx, code)
	if err != nil {
		return store.Language{}, err
	}
	if lang.IsDefault {
		return lang, nil
	}
	if !lang.Live {
		return store.Language{}, model.NewValidationError("is_default", fmt.Sprintf("language %q is not live", code))
	}

	previous, err := r.queries.GetDefaultLanguage(ctx)
	hasPrevious := err == nil
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return store.Language{}, fmt.Errorf("getting default language: %w", err)
	}

	if err := r.queries.SetDefaultLanguage(ctx, lang.ID, r.now()); err != nil {
		return store.Language{}, fmt.Errorf("setting default language %q: %w", code, err)
	}

	if hasPrevious {
		if _, err := r.ChangeDefault(ctx, 0, previous, lang); err != nil {
			return store.Language{}, err
		}
	}

	lang.IsDefault = true
	r.logger.Info("default language changed", "code", lang.Code)
	return lang, nil
}
