// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/ocms-transtree/internal/hook"
	"github.com/olegiv/ocms-transtree/internal/language"
	"github.com/olegiv/ocms-transtree/internal/store"
	"github.com/olegiv/ocms-transtree/internal/testutil"
	"github.com/olegiv/ocms-transtree/internal/treesync"
)

func TestSeed(t *testing.T) {
	for _, perSite := range []bool{false, true} {
		name := "global"
		if perSite {
			name = "per-site"
		}
		t.Run(name, func(t *testing.T) {
			db, cleanup := testutil.TestDB(t)
			defer cleanup()
			ctx := context.Background()
			logger := testutil.TestLogger()
			hooks := hook.NewRegistry(logger)
			resolver := language.NewResolver(perSite)
			treesync.New(hooks, resolver, logger, true).Register()
			languages := NewLanguageService(db, hooks, resolver, logger, nil)
			sites := NewSiteService(db, hooks, resolver, logger, nil)
			in := SeedInput{LanguageCode: "en", Hostname: "localhost"}

			require.NoError(t, Seed(ctx, languages, sites, in))
			require.NoError(t, Seed(ctx, languages, sites, in), "seeding twice is a no-op")

			q := store.New(db)
			langs, err := q.ListLanguages(ctx)
			require.NoError(t, err)
			require.Len(t, langs, 1)
			assert.Equal(t, "en", langs[0].Code)

			site, err := q.GetDefaultSite(ctx)
			require.NoError(t, err)
			assert.Equal(t, "localhost", site.Hostname)

			def, err := resolver.DefaultLanguage(ctx, q, site.ID)
			require.NoError(t, err)
			assert.Equal(t, "en", def.Code)
		})
	}
}
