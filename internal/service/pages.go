// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/olegiv/ocms-transtree/internal/hook"
	"github.com/olegiv/ocms-transtree/internal/language"
	"github.com/olegiv/ocms-transtree/internal/model"
	"github.com/olegiv/ocms-transtree/internal/store"
	"github.com/olegiv/ocms-transtree/internal/translation"
	"github.com/olegiv/ocms-transtree/internal/tree"
	"github.com/olegiv/ocms-transtree/internal/treesync"
	"github.com/olegiv/ocms-transtree/internal/util"
)

// PageService creates, moves and deletes pages and fires the page hooks.
type PageService struct {
	db       *sql.DB
	queries  *store.Queries
	hooks    *hook.Registry
	resolver language.Resolver
	logger   *slog.Logger
}

// NewPageService creates a new PageService.
func NewPageService(db *sql.DB, hooks *hook.Registry, resolver language.Resolver, logger *slog.Logger) *PageService {
	return &PageService{
		db:       db,
		queries:  store.New(db),
		hooks:    hooks,
		resolver: resolver,
		logger:   logger,
	}
}

// CreatePageInput holds the fields of a new page. An empty Slug is derived
// from Title. A zero LanguageID takes the language of a translatable parent,
// or the site default below a site root.
type CreatePageInput struct {
	ParentID   int64
	Title      string
	Slug       string
	Summary    string
	Body       string
	Live       bool
	LanguageID int64
}

// Create adds a canonical page as the last child of ParentID.
func (s *PageService) Create(ctx context.Context, in CreatePageInput) (store.Page, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return store.Page{}, model.NewValidationError("title", "title is required")
	}
	slug := in.Slug
	if slug == "" {
		slug = util.Slugify(title)
	}
	if !util.IsValidSlug(slug) {
		return store.Page{}, model.NewValidationError("slug", fmt.Sprintf("%q is not a valid slug", slug))
	}

	var page store.Page
	err := withTx(ctx, s.db, func(q *store.Queries) error {
		host := tree.New(q)
		parent, err := host.Page(ctx, in.ParentID)
		if err != nil {
			return err
		}
		site, err := host.SiteFor(ctx, parent)
		if err != nil {
			return err
		}
		if site == nil {
			return model.NewValidationError("parent", fmt.Sprintf("page %d belongs to no site", parent.ID))
		}

		languageID := in.LanguageID
		if languageID == 0 {
			if translation.IsTranslatable(parent) {
				languageID = parent.LanguageID.Int64
			} else {
				def, err := s.resolver.DefaultLanguage(ctx, q, site.ID)
				if err != nil {
					return err
				}
				languageID = def.ID
			}
		}

		allowed, err := language.IsAllowed(ctx, s.resolver, q, site.ID, languageID)
		if err != nil {
			return err
		}
		if !allowed {
			return model.NewValidationError("language",
				fmt.Sprintf("language %d is not live in site %s", languageID, site.Hostname))
		}

		page, err = host.AddChild(ctx, parent.ID, tree.NewPage{
			Title:      title,
			Slug:       slug,
			Summary:    in.Summary,
			Body:       in.Body,
			Live:       in.Live,
			LanguageID: util.NullInt64FromValue(languageID),
		})
		if err != nil {
			return err
		}
		if err := translation.NewRegistry(q, host).Register(ctx, page); err != nil {
			return err
		}

		return s.hooks.CallNoResult(ctx, hook.PageAfterCreate, hook.PageEvent{Queries: q, Page: page, Created: true})
	})
	if err != nil {
		return store.Page{}, err
	}

	s.logger.Info("page created", "category", model.EventCategoryPage, "page_id", page.ID, "slug", page.Slug)
	return page, nil
}

// Move moves a page relative to target. Moves of canonical default-language
// pages are mirrored into every language tree.
func (s *PageService) Move(ctx context.Context, pageID, targetID int64, pos model.MovePosition) (store.Page, error) {
	var moved store.Page
	err := withTx(ctx, s.db, func(q *store.Queries) error {
		host := tree.New(q)
		page, err := host.Page(ctx, pageID)
		if err != nil {
			return err
		}
		if page.ContentType == model.ContentTypeSiteRoot {
			return model.NewValidationError("page", "a site root cannot be moved")
		}
		target, err := host.Page(ctx, targetID)
		if err != nil {
			return err
		}

		if err := host.Move(ctx, page, target, pos); err != nil {
			return err
		}
		moved, err = host.Page(ctx, pageID)
		if err != nil {
			return err
		}

		return s.hooks.CallNoResult(ctx, hook.PageAfterMove, hook.MoveEvent{
			Queries:  q,
			Page:     moved,
			Target:   target,
			Position: pos,
		})
	})
	if err != nil {
		return store.Page{}, err
	}

	s.logger.Info("page moved", "category", model.EventCategoryPage, "page_id", pageID, "target_id", targetID, "position", string(pos))
	return moved, nil
}

// Delete removes a page with its subtree and, for canonical pages, every
// translation.
func (s *PageService) Delete(ctx context.Context, pageID int64) error {
	err := withTx(ctx, s.db, func(q *store.Queries) error {
		host := tree.New(q)
		page, err := host.Page(ctx, pageID)
		if err != nil {
			return err
		}
		if page.ContentType == model.ContentTypeSiteRoot {
			return model.NewValidationError("page", "a site root cannot be deleted")
		}
		return treesync.DeleteSubtree(ctx, s.hooks, q, host, page.ID)
	})
	if err != nil {
		return err
	}

	s.logger.Info("page deleted", "category", model.EventCategoryPage, "page_id", pageID)
	return nil
}

// Get returns a page by ID.
func (s *PageService) Get(ctx context.Context, pageID int64) (store.Page, error) {
	return tree.New(s.queries).Page(ctx, pageID)
}

// Publish sets the live flag of a page.
func (s *PageService) Publish(ctx context.Context, pageID int64, live bool) (store.Page, error) {
	var page store.Page
	err := withTx(ctx, s.db, func(q *store.Queries) error {
		host := tree.New(q)
		if _, err := host.Page(ctx, pageID); err != nil {
			return err
		}
		if err := q.UpdatePageLive(ctx, pageID, live, time.Now()); err != nil {
			return fmt.Errorf("updating page %d: %w", pageID, err)
		}
		var err error
		page, err = host.Page(ctx, pageID)
		return err
	})
	if err != nil {
		return store.Page{}, err
	}
	return page, nil
}

// CreateTranslation translates a canonical page into the language with
// code. The language must be allowed in the page's site.
func (s *PageService) CreateTranslation(ctx context.Context, pageID int64, code string, copyContent bool) (store.Page, error) {
	var created store.Page
	err := withTx(ctx, s.db, func(q *store.Queries) error {
		host := tree.New(q)
		page, err := host.Page(ctx, pageID)
		if err != nil {
			return err
		}
		lang, err := language.NewRegistry(q, s.resolver, s.logger).GetByCode(ctx, code)
		if err != nil {
			return err
		}

		site, err := host.SiteFor(ctx, page)
		if err != nil {
			return err
		}
		if site == nil {
			return model.NewValidationError("page", fmt.Sprintf("page %d belongs to no site", page.ID))
		}
		allowed, err := language.IsAllowed(ctx, s.resolver, q, site.ID, lang.ID)
		if err != nil {
			return err
		}
		if !allowed {
			return model.NewValidationError("language",
				fmt.Sprintf("language %q is not live in site %s", lang.Code, site.Hostname))
		}

		created, err = translation.NewRegistry(q, host).Translatable(page).CreateTranslation(ctx, lang, copyContent, nil)
		if err != nil {
			return err
		}
		return s.hooks.CallNoResult(ctx, hook.PageAfterCreate, hook.PageEvent{Queries: q, Page: created, Created: true})
	})
	if err != nil {
		return store.Page{}, err
	}

	s.logger.Info("translation created", "category", model.EventCategoryPage,
		"page_id", pageID, "translation_id", created.ID, "language", code)
	return created, nil
}

// Translations returns links to every page of the page's translation group,
// the page itself included, ordered by language position.
func (s *PageService) Translations(ctx context.Context, pageID int64, onlyLive bool) ([]model.TranslationLink, error) {
	host := tree.New(s.queries)
	page, err := host.Page(ctx, pageID)
	if err != nil {
		return nil, err
	}
	if !translation.IsTranslatable(page) {
		return nil, nil
	}

	group, err := translation.NewRegistry(s.queries, host).Translations(ctx, page, onlyLive, true)
	if err != nil {
		return nil, err
	}

	links := make([]model.TranslationLink, 0, len(group))
	for _, p := range group {
		lang, err := s.queries.GetLanguage(ctx, p.LanguageID.Int64)
		if err != nil {
			return nil, fmt.Errorf("getting language of page %d: %w", p.ID, notFound(err))
		}
		url, err := host.URL(ctx, p)
		if err != nil {
			return nil, err
		}
		links = append(links, model.TranslationLink{
			LanguageID:   lang.ID,
			LanguageCode: lang.Code,
			PageID:       p.ID,
			URL:          url,
			IsCanonical:  !p.CanonicalPageID.Valid,
			Live:         p.Live,
		})
	}
	return links, nil
}
