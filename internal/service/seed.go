// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"fmt"
)

// SeedInput names the language and site created on an empty database.
type SeedInput struct {
	LanguageCode string
	Hostname     string
}

// Seed creates the default language and the default site when the database
// has none. In per-site mode the new site gets the language as its default.
// Existing data is left untouched.
func Seed(ctx context.Context, languages *LanguageService, sites *SiteService, in SeedInput) error {
	langs, err := languages.List(ctx)
	if err != nil {
		return fmt.Errorf("checking languages: %w", err)
	}
	if len(langs) == 0 {
		lang, err := languages.Create(ctx, CreateLanguageInput{Code: in.LanguageCode, Live: true})
		if err != nil {
			return fmt.Errorf("seeding language %q: %w", in.LanguageCode, err)
		}
		languages.logger.Info("seeded default language", "code", lang.Code)
	}

	existing, err := sites.queries.ListSites(ctx)
	if err != nil {
		return fmt.Errorf("checking sites: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}

	site, err := sites.CreateSite(ctx, CreateSiteInput{Hostname: in.Hostname, IsDefault: true})
	if err != nil {
		return fmt.Errorf("seeding site %q: %w", in.Hostname, err)
	}
	if sites.resolver.PerSite() {
		if _, err := sites.UpdateSiteLanguages(ctx, site.ID, SiteLanguagesInput{DefaultCode: in.LanguageCode}); err != nil {
			return fmt.Errorf("seeding languages of site %q: %w", site.Hostname, err)
		}
	}
	sites.logger.Info("seeded default site", "hostname", site.Hostname, "root_page_id", site.RootPageID)
	return nil
}
