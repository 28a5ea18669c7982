// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package language

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/olegiv/ocms-transtree/internal/model"
	"github.com/olegiv/ocms-transtree/internal/store"
)

// DefaultChange summarizes a change-default run.
type DefaultChange struct {
	Rehomed int
	Skipped []int64 // canonical pages with no page in the new default
}

// ChangeDefault moves canonical status of translation groups from the old
// default language to the new one. Every group whose canonical page is in
// from and which has a page in to gets that page as its canonical. Groups
// with no page in to are left alone and logged. scopeRootID limits the run
// to the subtree of one site root; 0 means all pages.
func (r *Registry) ChangeDefault(ctx context.Context, scopeRootID int64, from, to store.Language) (DefaultChange, error) {
	var change DefaultChange
	if from.ID == to.ID {
		return change, nil
	}

	var (
		canonicals []store.Page
		err        error
	)
	if scopeRootID == 0 {
		canonicals, err = r.queries.ListCanonicalPagesInLanguage(ctx, from.ID)
	} else {
		canonicals, err = r.queries.ListCanonicalSubtreePages(ctx, scopeRootID, from.ID)
	}
	if err != nil {
		return change, fmt.Errorf("listing %s canonical pages: %w", from.Code, err)
	}

	for _, canonical := range canonicals {
		mirrors, err := r.queries.FindMirrorPages(ctx, to.ID, canonical.ID)
		if err != nil {
			return change, fmt.Errorf("finding %s page of group %d: %w", to.Code, canonical.ID, err)
		}
		if len(mirrors) != 1 {
			change.Skipped = append(change.Skipped, canonical.ID)
			r.logger.Warn("translation group kept its canonical page",
				"category", model.EventCategorySync,
				"page_id", canonical.ID,
				"from", from.Code,
				"to", to.Code,
				"matches", len(mirrors),
			)
			continue
		}
		if err := r.rehome(ctx, canonical, mirrors[0]); err != nil {
			return change, err
		}
		change.Rehomed++
	}

	r.logger.Info("translation groups re-homed",
		"from", from.Code,
		"to", to.Code,
		"rehomed", change.Rehomed,
		"skipped", len(change.Skipped),
	)
	return change, nil
}

// rehome makes next the canonical page of the group currently led by prev.
func (r *Registry) rehome(ctx context.Context, prev, next store.Page) error {
	now := r.now()
	nextRef := sql.NullInt64{Int64: next.ID, Valid: true}

	if err := r.setCanonical(ctx, next.ID, sql.NullInt64{}); err != nil {
		return err
	}

	members, err := r.queries.ListPagesByCanonical(ctx, prev.ID)
	if err != nil {
		return fmt.Errorf("listing group of page %d: %w", prev.ID, err)
	}
	for _, member := range members {
		if member.ID == next.ID {
			continue
		}
		if err := r.setCanonical(ctx, member.ID, nextRef); err != nil {
			return err
		}
	}

	if err := r.queries.UpdatePageCanonical(ctx, prev.ID, nextRef, now); err != nil {
		return fmt.Errorf("re-pointing page %d: %w", prev.ID, err)
	}
	if err := r.queries.UpdateTranslationItemCanonical(ctx, prev.ID, nextRef); err != nil {
		return fmt.Errorf("re-pointing item of page %d: %w", prev.ID, err)
	}
	return nil
}

func (r *Registry) setCanonical(ctx context.Context, pageID int64, canonical sql.NullInt64) error {
	if err := r.queries.UpdatePageCanonical(ctx, pageID, canonical, r.now()); err != nil {
		return fmt.Errorf("updating canonical of page %d: %w", pageID, err)
	}
	if err := r.queries.UpdateTranslationItemCanonical(ctx, pageID, canonical); err != nil {
		return fmt.Errorf("updating item of page %d: %w", pageID, err)
	}
	return nil
}
