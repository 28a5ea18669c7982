// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package treesync

import (
	"context"
	"fmt"

	"github.com/olegiv/ocms-transtree/internal/model"
	"github.com/olegiv/ocms-transtree/internal/store"
	"github.com/olegiv/ocms-transtree/internal/translation"
)

// Finding kinds reported by Audit.
const (
	FindingMissing   = "missing_translation"
	FindingDuplicate = "duplicate_translation"
	FindingMisplaced = "misplaced_translation"
)

// Finding is one divergence between the canonical tree and a language tree.
type Finding struct {
	Site         string
	Kind         string
	PageID       int64
	LanguageCode string
	Detail       string
}

// Audit compares the canonical default-language pages of site with their
// translations in every other allowed language.
func (s *Synchronizer) Audit(ctx context.Context, q *store.Queries, site store.Site) ([]Finding, error) {
	sc := newScope(q)
	def, err := s.resolver.DefaultLanguage(ctx, q, site.ID)
	if err != nil {
		return nil, err
	}
	allowed, err := s.resolver.AllowedLanguages(ctx, q, site.ID)
	if err != nil {
		return nil, err
	}
	canonicals, err := q.ListCanonicalSubtreePages(ctx, site.RootPageID, def.ID)
	if err != nil {
		return nil, fmt.Errorf("listing canonical pages of site %s: %w", site.Hostname, err)
	}

	var findings []Finding
	for _, page := range canonicals {
		for _, lang := range allowed {
			if lang.ID == def.ID {
				continue
			}
			mirrors, err := q.FindMirrorPages(ctx, lang.ID, page.ID)
			if err != nil {
				return nil, fmt.Errorf("finding %s mirror of page %d: %w", lang.Code, page.ID, err)
			}
			finding := Finding{Site: site.Hostname, PageID: page.ID, LanguageCode: lang.Code}
			switch len(mirrors) {
			case 0:
				finding.Kind = FindingMissing
				findings = append(findings, finding)
				continue
			case 1:
			default:
				finding.Kind = FindingDuplicate
				finding.Detail = fmt.Sprintf("%d pages", len(mirrors))
				findings = append(findings, finding)
				continue
			}

			want, ok, err := s.expectedParent(ctx, sc, site, page, lang)
			if err != nil {
				return nil, err
			}
			if ok && mirrors[0].ParentID.Int64 != want {
				finding.Kind = FindingMisplaced
				finding.Detail = fmt.Sprintf("translation %d is below page %d, expected page %d",
					mirrors[0].ID, mirrors[0].ParentID.Int64, want)
				findings = append(findings, finding)
			}
		}
	}
	return findings, nil
}

// expectedParent returns the id the translation of page into lang should
// be below. ok is false when the parent's own translation is missing, which
// is reported separately.
func (s *Synchronizer) expectedParent(ctx context.Context, sc scope, site store.Site, page store.Page, lang store.Language) (int64, bool, error) {
	if page.ParentID.Int64 == site.RootPageID {
		return site.RootPageID, true, nil
	}
	parent, err := sc.host.Parent(ctx, page)
	if err != nil {
		return 0, false, err
	}
	if parent == nil || !translation.IsTranslatable(*parent) {
		return site.RootPageID, true, nil
	}
	mirror, err := sc.translations.Mirror(ctx, *parent, lang)
	if model.IsSyncPrecondition(err) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return mirror.ID, true, nil
}

// AuditAll audits every site and logs each finding as a sync warning. It
// returns the total number of findings.
func (s *Synchronizer) AuditAll(ctx context.Context, q *store.Queries) (int, error) {
	sites, err := q.ListSites(ctx)
	if err != nil {
		return 0, fmt.Errorf("listing sites: %w", err)
	}
	total := 0
	for _, site := range sites {
		findings, err := s.Audit(ctx, q, site)
		if err != nil {
			return total, fmt.Errorf("auditing site %s: %w", site.Hostname, err)
		}
		for _, f := range findings {
			s.logger.Warn("language tree diverges from canonical tree",
				"category", model.EventCategorySync,
				"site", f.Site,
				"kind", f.Kind,
				"page_id", f.PageID,
				"language", f.LanguageCode,
				"detail", f.Detail,
			)
		}
		total += len(findings)
	}
	return total, nil
}
