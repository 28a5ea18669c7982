// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package translation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/ocms-transtree/internal/model"
	"github.com/olegiv/ocms-transtree/internal/store"
	"github.com/olegiv/ocms-transtree/internal/testutil"
	"github.com/olegiv/ocms-transtree/internal/tree"
)

type fixture struct {
	q     *store.Queries
	host  *tree.Tree
	reg   *Registry
	site  store.Site
	en    store.Language
	nl    store.Language
	de    store.Language
	home  store.Page
	about store.Page
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, cleanup := testutil.TestDB(t)
	t.Cleanup(cleanup)

	q := store.New(db)
	host := tree.New(q)
	f := &fixture{q: q, host: host, reg: NewRegistry(q, host)}
	f.en = testutil.CreateLanguage(t, q, "en", true, 0)
	f.nl = testutil.CreateLanguage(t, q, "nl", false, 1)
	f.de = testutil.CreateLanguage(t, q, "de", false, 2)
	f.site = testutil.CreateSite(t, q, "localhost", true)
	f.home = testutil.CreatePage(t, q, f.site.RootPageID, "home", f.en.ID)
	f.about = testutil.CreatePage(t, q, f.home.ID, "about", f.en.ID)
	return f
}

func TestCreateTranslationCopiesContent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	homeNL, err := f.reg.CreateTranslation(ctx, f.home, f.nl, true, nil)
	require.NoError(t, err)

	assert.Equal(t, "home-nl", homeNL.Slug)
	assert.Equal(t, f.home.Title, homeNL.Title)
	assert.Equal(t, f.home.Body, homeNL.Body)
	assert.False(t, homeNL.Live, "translations start unpublished")
	assert.Equal(t, f.site.RootPageID, homeNL.ParentID.Int64, "first page of a language goes below the site root")
	assert.Equal(t, f.home.ID, homeNL.CanonicalPageID.Int64)
	assert.Equal(t, f.nl.ID, homeNL.LanguageID.Int64)

	item, err := f.reg.Item(ctx, homeNL)
	require.NoError(t, err)
	assert.Equal(t, f.home.ID, item.CanonicalPageID.Int64)
	assert.Equal(t, f.nl.ID, item.LanguageID)

	ok, err := f.reg.HasTranslation(ctx, f.home, f.nl.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	aboutNL, err := f.reg.CreateTranslation(ctx, f.about, f.nl, true, nil)
	require.NoError(t, err)
	assert.Equal(t, homeNL.ID, aboutNL.ParentID.Int64, "nested page goes below the mirror of its parent")

	url, err := f.host.URL(ctx, aboutNL)
	require.NoError(t, err)
	assert.Equal(t, "/home-nl/about-nl/", url)
}

func TestCreateTranslationWithoutContent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	homeDE, err := f.reg.CreateTranslation(ctx, f.home, f.de, false, nil)
	require.NoError(t, err)
	assert.Empty(t, homeDE.Body)
	assert.Equal(t, f.home.ContentType, homeDE.ContentType)
	assert.Equal(t, "home-de", homeDE.Slug)
}

func TestCreateTranslationExplicitParent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	homeNL, err := f.reg.CreateTranslation(ctx, f.home, f.nl, true, nil)
	require.NoError(t, err)

	aboutNL, err := f.reg.CreateTranslation(ctx, f.about, f.nl, true, &homeNL)
	require.NoError(t, err)
	assert.Equal(t, homeNL.ID, aboutNL.ParentID.Int64)
}

func TestCreateTranslationRejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	homeNL, err := f.reg.CreateTranslation(ctx, f.home, f.nl, true, nil)
	require.NoError(t, err)

	_, err = f.reg.CreateTranslation(ctx, f.home, f.nl, true, nil)
	assert.True(t, model.IsConflict(err), "second translation into nl: %v", err)

	_, err = f.reg.CreateTranslation(ctx, f.home, f.en, true, nil)
	assert.True(t, model.IsConflict(err), "translation into own language: %v", err)

	_, err = f.reg.CreateTranslation(ctx, homeNL, f.de, true, nil)
	assert.True(t, model.IsValidation(err), "translating a translation: %v", err)

	root, err := f.host.RootPage(ctx, f.site)
	require.NoError(t, err)
	_, err = f.reg.CreateTranslation(ctx, root, f.nl, true, nil)
	assert.True(t, model.IsValidation(err), "translating the site root: %v", err)
}

func TestTranslationParentMissingMirror(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// nl has a page in the site, but home has no nl translation.
	testutil.CreatePage(t, f.q, f.site.RootPageID, "nieuws", f.nl.ID)

	_, err := f.reg.CreateTranslation(ctx, f.about, f.nl, true, nil)
	assert.True(t, model.IsSyncPrecondition(err), "expected SyncPreconditionError, got %v", err)

	ok, err := f.reg.HasTranslation(ctx, f.about, f.nl.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTranslations(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	homeDE, err := f.reg.CreateTranslation(ctx, f.home, f.de, true, nil)
	require.NoError(t, err)
	homeNL, err := f.reg.CreateTranslation(ctx, f.home, f.nl, true, nil)
	require.NoError(t, err)

	all, err := f.reg.Translations(ctx, f.home, false, true)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []int64{f.home.ID, homeNL.ID, homeDE.ID}, []int64{all[0].ID, all[1].ID, all[2].ID},
		"ordered by language position")

	others, err := f.reg.Translatable(homeNL).Translations(ctx, false)
	require.NoError(t, err)
	require.Len(t, others, 2)
	assert.Equal(t, f.home.ID, others[0].ID)
	assert.Equal(t, homeDE.ID, others[1].ID)

	live, err := f.reg.Translations(ctx, f.home, true, true)
	require.NoError(t, err)
	require.Len(t, live, 1, "unpublished translations are not live")
	assert.Equal(t, f.home.ID, live[0].ID)
}

func TestTranslatable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	home := f.reg.Translatable(f.home)
	assert.True(t, home.IsCanonical())
	assert.Equal(t, f.home.ID, home.CanonicalID())

	homeNL, err := home.CreateTranslation(ctx, f.nl, true, nil)
	require.NoError(t, err)

	nl := f.reg.Translatable(homeNL)
	assert.False(t, nl.IsCanonical())
	assert.Equal(t, f.home.ID, nl.CanonicalID())

	ok, err := nl.HasTranslation(ctx, f.nl.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = home.HasTranslation(ctx, f.de.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMirror(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.reg.CreateTranslation(ctx, f.home, f.nl, true, nil)
	require.NoError(t, err)

	mirror, err := f.reg.Mirror(ctx, f.home, f.nl)
	require.NoError(t, err)
	assert.Equal(t, "home-nl", mirror.Slug)

	mirror, err = f.reg.Mirror(ctx, f.home, f.en)
	require.NoError(t, err)
	assert.Equal(t, f.home.ID, mirror.ID, "the canonical page is its own mirror")

	_, err = f.reg.Mirror(ctx, f.about, f.nl)
	assert.True(t, model.IsSyncPrecondition(err))
}
