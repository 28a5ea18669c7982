// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/olegiv/ocms-transtree/internal/hook"
	"github.com/olegiv/ocms-transtree/internal/language"
	"github.com/olegiv/ocms-transtree/internal/store"
	"github.com/olegiv/ocms-transtree/internal/testutil"
	"github.com/olegiv/ocms-transtree/internal/translation"
	"github.com/olegiv/ocms-transtree/internal/tree"
	"github.com/olegiv/ocms-transtree/internal/treesync"
)

// env wires the services the way main does, over a fresh database with an
// "en" default language and a default site.
type env struct {
	q         *store.Queries
	pages     *PageService
	languages *LanguageService
	sites     *SiteService
	site      store.Site
	en        store.Language
	cache     *countingCache
}

type countingCache struct {
	calls int
}

func (c *countingCache) Invalidate(context.Context) error {
	c.calls++
	return nil
}

func newEnv(t *testing.T, perSite, syncTree bool) *env {
	t.Helper()
	db, cleanup := testutil.TestDB(t)
	t.Cleanup(cleanup)

	logger := testutil.TestLogger()
	hooks := hook.NewRegistry(logger)
	resolver := language.NewResolver(perSite)
	treesync.New(hooks, resolver, logger, syncTree).Register()

	q := store.New(db)
	c := &countingCache{}
	e := &env{
		q:         q,
		pages:     NewPageService(db, hooks, resolver, logger),
		languages: NewLanguageService(db, hooks, resolver, logger, c),
		sites:     NewSiteService(db, hooks, resolver, logger, c),
		cache:     c,
	}
	e.en = testutil.CreateLanguage(t, q, "en", !perSite, 0)
	e.site = testutil.CreateSite(t, q, "localhost", true)
	return e
}

func (e *env) addLanguage(t *testing.T, code string, position int64) store.Language {
	t.Helper()
	lang, err := e.languages.Create(context.Background(), CreateLanguageInput{Code: code, Position: position, Live: true})
	require.NoError(t, err)
	return lang
}

func (e *env) createPage(t *testing.T, parentID int64, title string) store.Page {
	t.Helper()
	page, err := e.pages.Create(context.Background(), CreatePageInput{ParentID: parentID, Title: title, Body: "about " + title, Live: true})
	require.NoError(t, err)
	return page
}

func (e *env) page(t *testing.T, id int64) store.Page {
	t.Helper()
	page, err := e.pages.Get(context.Background(), id)
	require.NoError(t, err)
	return page
}

func (e *env) url(t *testing.T, page store.Page) string {
	t.Helper()
	url, err := tree.New(e.q).URL(context.Background(), e.page(t, page.ID))
	require.NoError(t, err)
	return url
}

func (e *env) mirror(t *testing.T, page store.Page, lang store.Language) store.Page {
	t.Helper()
	m, err := translation.NewRegistry(e.q, tree.New(e.q)).Mirror(context.Background(), e.page(t, page.ID), lang)
	require.NoError(t, err)
	return m
}

func (e *env) childSlugs(t *testing.T, id int64) []string {
	t.Helper()
	children, err := tree.New(e.q).Children(context.Background(), id)
	require.NoError(t, err)
	slugs := make([]string, len(children))
	for i, c := range children {
		slugs[i] = c.Slug
	}
	return slugs
}
