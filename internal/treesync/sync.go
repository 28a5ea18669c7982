// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package treesync keeps the language trees congruent with the canonical
// tree. It subscribes to the page and language hooks and mirrors every
// create, move and delete into the other languages.
package treesync

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/olegiv/ocms-transtree/internal/hook"
	"github.com/olegiv/ocms-transtree/internal/language"
	"github.com/olegiv/ocms-transtree/internal/model"
	"github.com/olegiv/ocms-transtree/internal/store"
	"github.com/olegiv/ocms-transtree/internal/translation"
	"github.com/olegiv/ocms-transtree/internal/tree"
)

// Owner is the hook owner name of the synchronizer's handlers.
const Owner = "treesync"

// Synchronizer mirrors structural edits of canonical pages.
type Synchronizer struct {
	hooks    *hook.Registry
	resolver language.Resolver
	logger   *slog.Logger
	enabled  bool
}

// New creates a Synchronizer. With enabled false every handler is a no-op.
func New(hooks *hook.Registry, resolver language.Resolver, logger *slog.Logger, enabled bool) *Synchronizer {
	return &Synchronizer{
		hooks:    hooks,
		resolver: resolver,
		logger:   logger,
		enabled:  enabled,
	}
}

// Enabled reports whether tree synchronization is on.
func (s *Synchronizer) Enabled() bool {
	return s.enabled
}

// Register subscribes the synchronizer to the hook registry.
func (s *Synchronizer) Register() {
	s.hooks.RegisterFunc(hook.PageAfterCreate, "create_translations", Owner, s.onCreate)
	s.hooks.RegisterFunc(hook.PageAfterMove, "move_translations", Owner, s.onMove)
	s.hooks.RegisterFunc(hook.PageBeforeDelete, "delete_translations", Owner, s.onBeforeDelete)
	s.hooks.RegisterFunc(hook.LanguageAfterCreate, "backfill_language", Owner, s.onLanguageCreated)
	s.hooks.RegisterFunc(hook.SiteLanguagesAfterUpdate, "backfill_site_languages", Owner, s.onSiteLanguagesUpdated)
}

// scope bundles the tree and registry bound to one transaction.
type scope struct {
	q            *store.Queries
	host         *tree.Tree
	translations *translation.Registry
}

func newScope(q *store.Queries) scope {
	host := tree.New(q)
	return scope{
		q:            q,
		host:         host,
		translations: translation.NewRegistry(q, host),
	}
}

// siteDefault returns the site of page and the site's default language.
// The site is nil when the page belongs to no site.
func (s *Synchronizer) siteDefault(ctx context.Context, sc scope, page store.Page) (*store.Site, store.Language, error) {
	site, err := sc.host.SiteFor(ctx, page)
	if err != nil || site == nil {
		return site, store.Language{}, err
	}
	def, err := s.resolver.DefaultLanguage(ctx, sc.q, site.ID)
	if err != nil {
		return nil, store.Language{}, err
	}
	return site, def, nil
}

func (s *Synchronizer) onCreate(ctx context.Context, data any) (any, error) {
	ev, ok := data.(hook.PageEvent)
	if !ok {
		return data, fmt.Errorf("unexpected payload %T", data)
	}
	if !s.enabled || !ev.Created {
		return data, nil
	}
	page := ev.Page
	if !translation.IsTranslatable(page) || page.CanonicalPageID.Valid {
		return data, nil
	}

	sc := newScope(ev.Queries)
	site, def, err := s.siteDefault(ctx, sc, page)
	if err != nil {
		return data, err
	}
	if site == nil || page.LanguageID.Int64 != def.ID {
		return data, nil
	}

	allowed, err := s.resolver.AllowedLanguages(ctx, sc.q, site.ID)
	if err != nil {
		return data, err
	}
	for _, lang := range allowed {
		if lang.ID == def.ID {
			continue
		}
		created, err := sc.translations.CreateTranslation(ctx, page, lang, true, nil)
		if err != nil {
			return data, fmt.Errorf("translating page %d into %s: %w", page.ID, lang.Code, err)
		}
		s.logger.Debug("translation created", "page_id", page.ID, "translation_id", created.ID, "language", lang.Code)
	}
	return data, nil
}

func (s *Synchronizer) onMove(ctx context.Context, data any) (any, error) {
	ev, ok := data.(hook.MoveEvent)
	if !ok {
		return data, fmt.Errorf("unexpected payload %T", data)
	}
	if !s.enabled || ev.SuppressSync || !translation.IsTranslatable(ev.Page) {
		return data, nil
	}

	sc := newScope(ev.Queries)
	site, def, err := s.siteDefault(ctx, sc, ev.Page)
	if err != nil {
		return data, err
	}
	if site == nil || ev.Page.LanguageID.Int64 != def.ID {
		return data, nil
	}

	translations, err := sc.translations.Translations(ctx, ev.Page, false, false)
	if err != nil {
		return data, err
	}

	for _, page := range translations {
		lang, err := sc.q.GetLanguage(ctx, page.LanguageID.Int64)
		if err != nil {
			return data, fmt.Errorf("getting language of page %d: %w", page.ID, err)
		}

		target := ev.Target
		if translation.IsTranslatable(ev.Target) {
			target, err = sc.translations.Mirror(ctx, ev.Target, lang)
			if err != nil {
				return data, err
			}
		}

		if err := sc.host.Move(ctx, page, target, ev.Position); err != nil {
			return data, fmt.Errorf("moving %s translation %d: %w", lang.Code, page.ID, err)
		}
		moved, err := sc.host.Page(ctx, page.ID)
		if err != nil {
			return data, err
		}
		if err := s.hooks.CallNoResult(ctx, hook.PageAfterMove, hook.MoveEvent{
			Queries:      sc.q,
			Page:         moved,
			Target:       target,
			Position:     ev.Position,
			SuppressSync: true,
		}); err != nil {
			return data, err
		}
	}
	return data, nil
}

func (s *Synchronizer) onBeforeDelete(ctx context.Context, data any) (any, error) {
	ev, ok := data.(hook.PageEvent)
	if !ok {
		return data, fmt.Errorf("unexpected payload %T", data)
	}
	if !s.enabled {
		return data, nil
	}

	exists, err := ev.Queries.PageExists(ctx, ev.Page.ID)
	if err != nil {
		return data, fmt.Errorf("checking page %d: %w", ev.Page.ID, err)
	}
	if !exists {
		return data, nil
	}

	translations, err := ev.Queries.ListPagesByCanonical(ctx, ev.Page.ID)
	if err != nil {
		return data, fmt.Errorf("listing translations of page %d: %w", ev.Page.ID, err)
	}
	sc := newScope(ev.Queries)
	for _, page := range translations {
		if err := DeleteSubtree(ctx, s.hooks, sc.q, sc.host, page.ID); err != nil {
			return data, err
		}
	}
	return data, nil
}

// DeleteSubtree fires page.before_delete for a page and each of its
// descendants that still exists, then deletes the subtree.
func DeleteSubtree(ctx context.Context, hooks *hook.Registry, q *store.Queries, host tree.Host, id int64) error {
	pages, err := host.Descendants(ctx, id, true)
	if err != nil {
		return err
	}
	for _, page := range pages {
		exists, err := q.PageExists(ctx, page.ID)
		if err != nil {
			return fmt.Errorf("checking page %d: %w", page.ID, err)
		}
		if !exists {
			continue
		}
		if err := hooks.CallNoResult(ctx, hook.PageBeforeDelete, hook.PageEvent{Queries: q, Page: page}); err != nil {
			return err
		}
	}

	exists, err := q.PageExists(ctx, id)
	if err != nil {
		return fmt.Errorf("checking page %d: %w", id, err)
	}
	if !exists {
		return nil
	}
	return host.Delete(ctx, id)
}

func (s *Synchronizer) onLanguageCreated(ctx context.Context, data any) (any, error) {
	ev, ok := data.(hook.LanguageEvent)
	if !ok {
		return data, fmt.Errorf("unexpected payload %T", data)
	}
	// Per-site languages are backfilled once a site allows them.
	if !s.enabled || s.resolver.PerSite() {
		return data, nil
	}

	sc := newScope(ev.Queries)
	sites, err := sc.q.ListSites(ctx)
	if err != nil {
		return data, fmt.Errorf("listing sites: %w", err)
	}
	for _, site := range sites {
		if err := s.backfillSite(ctx, sc, site, ev.Language, false); err != nil {
			return data, err
		}
	}
	return data, nil
}

func (s *Synchronizer) onSiteLanguagesUpdated(ctx context.Context, data any) (any, error) {
	ev, ok := data.(hook.SiteLanguagesEvent)
	if !ok {
		return data, fmt.Errorf("unexpected payload %T", data)
	}
	if !s.enabled {
		return data, nil
	}

	sc := newScope(ev.Queries)
	for _, lang := range ev.Added {
		if !lang.Live {
			continue
		}
		if err := s.backfillSite(ctx, sc, ev.Site, lang, true); err != nil {
			return data, err
		}
	}
	return data, nil
}

// backfillSite translates the canonical default-language trees of a site
// into lang, parents before children. With skipExisting pages that already
// have a translation are left alone; otherwise they abort with a conflict.
func (s *Synchronizer) backfillSite(ctx context.Context, sc scope, site store.Site, lang store.Language, skipExisting bool) error {
	def, err := s.resolver.DefaultLanguage(ctx, sc.q, site.ID)
	if err != nil {
		return err
	}
	if def.ID == lang.ID {
		return nil
	}

	roots, err := s.canonicalRoots(ctx, sc, site, def)
	if err != nil {
		return err
	}
	if len(roots) == 0 {
		s.logger.Info("site has no default language tree to backfill",
			"site", site.Hostname, "language", lang.Code)
		return nil
	}

	created := 0
	for _, root := range roots {
		pages, err := sc.host.Descendants(ctx, root.ID, true)
		if err != nil {
			return err
		}
		for _, page := range pages {
			if !translation.IsTranslatable(page) || page.CanonicalPageID.Valid || page.LanguageID.Int64 != def.ID {
				continue
			}
			if skipExisting {
				exists, err := sc.translations.HasTranslation(ctx, page, lang.ID)
				if err != nil {
					return err
				}
				if exists {
					continue
				}
			}
			if _, err := sc.translations.CreateTranslation(ctx, page, lang, true, nil); err != nil {
				return fmt.Errorf("backfilling page %d into %s: %w", page.ID, lang.Code, err)
			}
			created++
		}
	}

	s.logger.Info("language tree backfilled",
		"category", model.EventCategorySync,
		"site", site.Hostname,
		"language", lang.Code,
		"created", created,
	)
	return nil
}

// canonicalRoots returns the canonical default-language children of the site root.
func (s *Synchronizer) canonicalRoots(ctx context.Context, sc scope, site store.Site, def store.Language) ([]store.Page, error) {
	children, err := sc.q.ListChildPagesByItemLanguage(ctx, store.ListChildPagesByItemLanguageParams{
		ParentID:   site.RootPageID,
		LanguageID: def.ID,
	})
	if err != nil {
		return nil, fmt.Errorf("listing %s pages of site %s: %w", def.Code, site.Hostname, err)
	}
	roots := children[:0]
	for _, child := range children {
		if !child.CanonicalPageID.Valid {
			roots = append(roots, child)
		}
	}
	return roots, nil
}
