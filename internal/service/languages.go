// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/olegiv/ocms-transtree/internal/hook"
	"github.com/olegiv/ocms-transtree/internal/language"
	"github.com/olegiv/ocms-transtree/internal/model"
	"github.com/olegiv/ocms-transtree/internal/store"
)

// LanguageService manages languages. Creating a language fires
// language.after_create, which backfills its tree when sync is enabled.
type LanguageService struct {
	db       *sql.DB
	queries  *store.Queries
	hooks    *hook.Registry
	resolver language.Resolver
	logger   *slog.Logger
	cache    LanguageInvalidator
}

// NewLanguageService creates a new LanguageService. cache may be nil.
func NewLanguageService(db *sql.DB, hooks *hook.Registry, resolver language.Resolver, logger *slog.Logger, cache LanguageInvalidator) *LanguageService {
	return &LanguageService{
		db:       db,
		queries:  store.New(db),
		hooks:    hooks,
		resolver: resolver,
		logger:   logger,
		cache:    cache,
	}
}

// CreateLanguageInput holds the fields of a new language.
type CreateLanguageInput struct {
	Code      string
	Position  int64
	Live      bool
	IsDefault bool
}

func (s *LanguageService) registry(q *store.Queries) *language.Registry {
	return language.NewRegistry(q, s.resolver, s.logger)
}

// Create adds a language. With IsDefault the language is promoted after
// its tree has been backfilled.
func (s *LanguageService) Create(ctx context.Context, in CreateLanguageInput) (store.Language, error) {
	var lang store.Language
	err := withTx(ctx, s.db, func(q *store.Queries) error {
		reg := s.registry(q)
		var err error
		lang, err = reg.Create(ctx, language.CreateParams{
			Code:     in.Code,
			Position: in.Position,
			Live:     in.Live,
		})
		if err != nil {
			return err
		}

		if err := s.hooks.CallNoResult(ctx, hook.LanguageAfterCreate, hook.LanguageEvent{Queries: q, Language: lang}); err != nil {
			return err
		}

		if in.IsDefault && !lang.IsDefault {
			lang, err = reg.SetDefault(ctx, lang.Code)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return store.Language{}, err
	}

	s.invalidate(ctx)
	return lang, nil
}

// Update changes position, liveness or default status of a language.
func (s *LanguageService) Update(ctx context.Context, code string, arg language.UpdateParams) (store.Language, error) {
	var lang store.Language
	err := withTx(ctx, s.db, func(q *store.Queries) error {
		var err error
		lang, err = s.registry(q).Update(ctx, code, arg)
		return err
	})
	if err != nil {
		return store.Language{}, err
	}

	s.invalidate(ctx)
	return lang, nil
}

// SetDefault promotes a language to global default and re-homes every
// translation group onto it.
func (s *LanguageService) SetDefault(ctx context.Context, code string) (store.Language, error) {
	var lang store.Language
	err := withTx(ctx, s.db, func(q *store.Queries) error {
		var err error
		lang, err = s.registry(q).SetDefault(ctx, code)
		return err
	})
	if err != nil {
		return store.Language{}, err
	}

	s.invalidate(ctx)
	return lang, nil
}

// List returns all languages ordered by position.
func (s *LanguageService) List(ctx context.Context) ([]store.Language, error) {
	return s.registry(s.queries).List(ctx)
}

// GetByCode returns the language with code.
func (s *LanguageService) GetByCode(ctx context.Context, code string) (store.Language, error) {
	return s.registry(s.queries).GetByCode(ctx, code)
}

func (s *LanguageService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn("failed to invalidate language cache", "category", model.EventCategoryCache, "error", err)
	}
}
