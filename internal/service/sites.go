// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/olegiv/ocms-transtree/internal/hook"
	"github.com/olegiv/ocms-transtree/internal/language"
	"github.com/olegiv/ocms-transtree/internal/model"
	"github.com/olegiv/ocms-transtree/internal/store"
	"github.com/olegiv/ocms-transtree/internal/tree"
	"github.com/olegiv/ocms-transtree/internal/util"
)

// SiteService creates sites and edits their language settings.
type SiteService struct {
	db       *sql.DB
	queries  *store.Queries
	hooks    *hook.Registry
	resolver language.Resolver
	logger   *slog.Logger
	cache    LanguageInvalidator
}

// NewSiteService creates a new SiteService. cache may be nil.
func NewSiteService(db *sql.DB, hooks *hook.Registry, resolver language.Resolver, logger *slog.Logger, cache LanguageInvalidator) *SiteService {
	return &SiteService{
		db:       db,
		queries:  store.New(db),
		hooks:    hooks,
		resolver: resolver,
		logger:   logger,
		cache:    cache,
	}
}

// CreateSiteInput holds the fields of a new site.
type CreateSiteInput struct {
	Hostname  string
	Title     string
	IsDefault bool
}

// CreateSite creates a site together with its root page. Only one site
// may be the default.
func (s *SiteService) CreateSite(ctx context.Context, in CreateSiteInput) (store.Site, error) {
	hostname := strings.ToLower(strings.TrimSpace(in.Hostname))
	if hostname == "" {
		return store.Site{}, model.NewValidationError("hostname", "hostname is required")
	}
	title := in.Title
	if title == "" {
		title = hostname
	}

	var site store.Site
	err := withTx(ctx, s.db, func(q *store.Queries) error {
		_, err := q.GetSiteByHostname(ctx, hostname)
		if err == nil {
			return model.NewValidationError("hostname", fmt.Sprintf("site %q already exists", hostname))
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("checking site %q: %w", hostname, err)
		}

		if in.IsDefault {
			_, err := q.GetDefaultSite(ctx)
			if err == nil {
				return model.NewValidationError("is_default", "a default site already exists")
			}
			if !errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("getting default site: %w", err)
			}
		}

		root, err := tree.New(q).CreateRoot(ctx, tree.NewPage{
			ContentType: model.ContentTypeSiteRoot,
			Title:       title,
			Slug:        "root",
			Live:        true,
		})
		if err != nil {
			return err
		}

		site, err = q.CreateSite(ctx, store.CreateSiteParams{
			Hostname:   hostname,
			RootPageID: root.ID,
			IsDefault:  in.IsDefault,
			CreatedAt:  time.Now(),
		})
		if err != nil {
			return fmt.Errorf("creating site %q: %w", hostname, err)
		}
		return nil
	})
	if err != nil {
		return store.Site{}, err
	}

	s.logger.Info("site created", "category", model.EventCategoryConfig, "site", site.Hostname, "root_page_id", site.RootPageID)
	return site, nil
}

// GetSite returns a site by ID.
func (s *SiteService) GetSite(ctx context.Context, id int64) (store.Site, error) {
	site, err := s.queries.GetSite(ctx, id)
	if err != nil {
		return store.Site{}, fmt.Errorf("getting site %d: %w", id, notFound(err))
	}
	return site, nil
}

// SiteLanguagesInput holds the requested language settings of a site. An
// empty DefaultCode falls back to the global default language.
type SiteLanguagesInput struct {
	DefaultCode string
	OtherCodes  []string
}

// SiteLanguages is the stored language configuration of a site.
type SiteLanguages struct {
	Default *store.Language
	Others  []store.Language
}

// UpdateSiteLanguages replaces the language settings of a site. Languages
// that become allowed are backfilled from the current default tree first.
// When the default changes, translation groups of the site are re-homed
// onto the new default afterwards.
func (s *SiteService) UpdateSiteLanguages(ctx context.Context, siteID int64, in SiteLanguagesInput) (SiteLanguages, error) {
	if !s.resolver.PerSite() {
		return SiteLanguages{}, model.NewValidationError("site_languages", "languages are not configured per site")
	}

	var result SiteLanguages
	err := withTx(ctx, s.db, func(q *store.Queries) error {
		site, err := q.GetSite(ctx, siteID)
		if err != nil {
			return fmt.Errorf("getting site %d: %w", siteID, notFound(err))
		}
		langs := language.NewRegistry(q, s.resolver, s.logger)

		var requestedDefault *store.Language
		if in.DefaultCode != "" {
			def, err := langs.GetByCode(ctx, in.DefaultCode)
			if err != nil {
				return err
			}
			if !def.Live {
				return model.NewValidationError("default_language", fmt.Sprintf("language %q is not live", def.Code))
			}
			requestedDefault = &def
		}

		others := make([]store.Language, 0, len(in.OtherCodes))
		otherIDs := make([]int64, 0, len(in.OtherCodes))
		for _, code := range in.OtherCodes {
			lang, err := langs.GetByCode(ctx, code)
			if err != nil {
				return err
			}
			if slices.Contains(otherIDs, lang.ID) {
				continue
			}
			others = append(others, lang)
			otherIDs = append(otherIDs, lang.ID)
		}

		var defaultID sql.NullInt64
		if requestedDefault != nil {
			defaultID = util.NullInt64FromValue(requestedDefault.ID)
		}
		if err := language.ValidateSiteLanguages(defaultID, otherIDs); err != nil {
			return err
		}

		oldDefault, hasOld, err := s.currentDefault(ctx, q, site.ID)
		if err != nil {
			return err
		}
		var (
			newDefault store.Language
			hasNew     bool
		)
		if requestedDefault != nil {
			newDefault, hasNew = *requestedDefault, true
		} else {
			newDefault, hasNew, err = s.globalDefault(ctx, q)
			if err != nil {
				return err
			}
		}

		// Backfill from the current default tree before switching defaults.
		if hasOld {
			staged := slices.Clone(otherIDs)
			if hasNew {
				staged = append(staged, newDefault.ID)
			}
			staged = slices.DeleteFunc(staged, func(id int64) bool { return id == oldDefault.ID })
			slices.Sort(staged)
			staged = slices.Compact(staged)

			if err := s.applySettings(ctx, q, site, util.NullInt64FromValue(oldDefault.ID), staged); err != nil {
				return err
			}
		}
		if err := s.applySettings(ctx, q, site, defaultID, otherIDs); err != nil {
			return err
		}

		if hasOld && hasNew && oldDefault.ID != newDefault.ID {
			if _, err := langs.ChangeDefault(ctx, site.RootPageID, oldDefault, newDefault); err != nil {
				return err
			}
		}

		result = SiteLanguages{Default: requestedDefault, Others: others}
		language.SortLanguages(result.Others)
		return nil
	})
	if err != nil {
		return SiteLanguages{}, err
	}

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx); err != nil {
			s.logger.Warn("failed to invalidate language cache", "category", model.EventCategoryCache, "error", err)
		}
	}
	s.logger.Info("site languages updated", "category", model.EventCategoryConfig, "site_id", siteID)
	return result, nil
}

// applySettings stores default and others for site and fires
// site_languages.after_update with the languages that became allowed.
func (s *SiteService) applySettings(ctx context.Context, q *store.Queries, site store.Site, defaultID sql.NullInt64, otherIDs []int64) error {
	before, err := s.resolver.AllowedLanguages(ctx, q, site.ID)
	if err != nil {
		return err
	}

	if err := q.UpsertSiteLanguages(ctx, store.UpsertSiteLanguagesParams{
		SiteID:            site.ID,
		DefaultLanguageID: defaultID,
		UpdatedAt:         time.Now(),
	}); err != nil {
		return fmt.Errorf("storing languages of site %s: %w", site.Hostname, err)
	}
	if err := q.DeleteSiteOtherLanguages(ctx, site.ID); err != nil {
		return fmt.Errorf("clearing languages of site %s: %w", site.Hostname, err)
	}
	for _, id := range otherIDs {
		if err := q.AddSiteOtherLanguage(ctx, site.ID, id); err != nil {
			return fmt.Errorf("adding language %d to site %s: %w", id, site.Hostname, err)
		}
	}

	after, err := s.resolver.AllowedLanguages(ctx, q, site.ID)
	if err != nil {
		return err
	}
	var added []store.Language
	for _, lang := range after {
		if !slices.ContainsFunc(before, func(l store.Language) bool { return l.ID == lang.ID }) {
			added = append(added, lang)
		}
	}
	if len(added) == 0 {
		return nil
	}
	return s.hooks.CallNoResult(ctx, hook.SiteLanguagesAfterUpdate, hook.SiteLanguagesEvent{
		Queries: q,
		Site:    site,
		Added:   added,
	})
}

// currentDefault returns the effective default language of a site. ok is
// false when neither the site nor the catalog defines one.
func (s *SiteService) currentDefault(ctx context.Context, q *store.Queries, siteID int64) (store.Language, bool, error) {
	def, err := s.resolver.DefaultLanguage(ctx, q, siteID)
	if errors.Is(err, model.ErrNotFound) {
		return store.Language{}, false, nil
	}
	if err != nil {
		return store.Language{}, false, err
	}
	return def, true, nil
}

func (s *SiteService) globalDefault(ctx context.Context, q *store.Queries) (store.Language, bool, error) {
	def, err := language.GlobalResolver{}.DefaultLanguage(ctx, q, 0)
	if errors.Is(err, model.ErrNotFound) {
		return store.Language{}, false, nil
	}
	if err != nil {
		return store.Language{}, false, err
	}
	return def, true, nil
}
