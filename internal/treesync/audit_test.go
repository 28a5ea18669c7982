// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package treesync

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/ocms-transtree/internal/model"
	"github.com/olegiv/ocms-transtree/internal/tree"
	"github.com/olegiv/ocms-transtree/internal/util"
)

func TestAuditCongruentTrees(t *testing.T) {
	f := newFixture(t, true)
	home := f.create(t, f.site.RootPageID, "home", f.en.ID)
	f.create(t, home.ID, "about", f.en.ID)

	findings, err := f.sync.Audit(context.Background(), f.q, f.site)
	require.NoError(t, err)
	assert.Empty(t, findings)
}

func TestAuditFindings(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	host := tree.New(f.q)
	home := f.create(t, f.site.RootPageID, "home", f.en.ID)
	about := f.create(t, home.ID, "about", f.en.ID)
	team := f.create(t, home.ID, "team", f.en.ID)
	news := f.create(t, home.ID, "news", f.en.ID)

	// about: translation removed behind the synchronizer's back.
	require.NoError(t, host.Delete(ctx, f.mirrors(t, about, f.nl)[0].ID))

	// team: translation moved to the wrong parent.
	teamNL := f.mirrors(t, team, f.nl)[0]
	root, err := host.Page(ctx, f.site.RootPageID)
	require.NoError(t, err)
	require.NoError(t, host.Move(ctx, teamNL, root, model.PositionLastChild))

	// news: a second page claiming to be its nl translation.
	_, err = host.AddChild(ctx, f.mirrors(t, home, f.nl)[0].ID, tree.NewPage{
		Title:           "news copy",
		Slug:            "news-nl-2",
		LanguageID:      util.NullInt64FromValue(f.nl.ID),
		CanonicalPageID: util.NullInt64FromValue(news.ID),
	})
	require.NoError(t, err)

	findings, err := f.sync.Audit(ctx, f.q, f.site)
	require.NoError(t, err)

	kinds := map[int64]string{}
	for _, finding := range findings {
		assert.Equal(t, "nl", finding.LanguageCode)
		assert.Equal(t, "localhost", finding.Site)
		kinds[finding.PageID] = finding.Kind
	}
	assert.Equal(t, map[int64]string{
		about.ID: FindingMissing,
		team.ID:  FindingMisplaced,
		news.ID:  FindingDuplicate,
	}, kinds)

	total, err := f.sync.AuditAll(ctx, f.q)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
}
