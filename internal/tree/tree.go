// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package tree implements the page tree the translation engine runs against:
// node lookup, URL paths, add-child, copy, move, delete, descendant
// enumeration and site resolution.
package tree

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/olegiv/ocms-transtree/internal/model"
	"github.com/olegiv/ocms-transtree/internal/store"
	"github.com/olegiv/ocms-transtree/internal/util"
)

// Host is the set of structural primitives the synchronizer needs from the
// page tree. Tree is the SQLite implementation.
type Host interface {
	Page(ctx context.Context, id int64) (store.Page, error)
	Parent(ctx context.Context, page store.Page) (*store.Page, error)
	Children(ctx context.Context, id int64) ([]store.Page, error)
	Descendants(ctx context.Context, id int64, inclusive bool) ([]store.Page, error)
	AddChild(ctx context.Context, parentID int64, page NewPage) (store.Page, error)
	Copy(ctx context.Context, src store.Page, overrides CopyOverrides, parentID *int64) (store.Page, error)
	Move(ctx context.Context, page, target store.Page, pos model.MovePosition) error
	Delete(ctx context.Context, id int64) error
	SiteFor(ctx context.Context, page store.Page) (*store.Site, error)
	RootPage(ctx context.Context, site store.Site) (store.Page, error)
	URL(ctx context.Context, page store.Page) (string, error)
}

// NewPage holds the fields of a page created by AddChild.
type NewPage struct {
	ContentType     string
	Title           string
	Slug            string
	Summary         string
	Body            string
	Live            bool
	LanguageID      sql.NullInt64
	CanonicalPageID sql.NullInt64
}

// CopyOverrides replaces fields of the copied page. Content fields not
// listed here are carried over from the source.
type CopyOverrides struct {
	Title           string
	Slug            string
	Live            bool
	LanguageID      sql.NullInt64
	CanonicalPageID sql.NullInt64
}

// Tree is a Host backed by the pages table.
type Tree struct {
	queries *store.Queries
	now     func() time.Time
}

// New creates a Tree on top of queries. Pass transaction-bound queries to
// make every structural change part of the caller's unit of work.
func New(queries *store.Queries) *Tree {
	return &Tree{
		queries: queries,
		now:     time.Now,
	}
}

var _ Host = (*Tree)(nil)

// notFound maps sql.ErrNoRows to model.ErrNotFound.
func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return model.ErrNotFound
	}
	return err
}

// Page returns the page with the given ID.
func (t *Tree) Page(ctx context.Context, id int64) (store.Page, error) {
	page, err := t.queries.GetPage(ctx, id)
	if err != nil {
		return store.Page{}, fmt.Errorf("getting page %d: %w", id, notFound(err))
	}
	return page, nil
}

// Parent returns the parent of page, or nil for a tree root.
func (t *Tree) Parent(ctx context.Context, page store.Page) (*store.Page, error) {
	if !page.ParentID.Valid {
		return nil, nil
	}
	parent, err := t.Page(ctx, page.ParentID.Int64)
	if err != nil {
		return nil, err
	}
	return &parent, nil
}

// Children returns the direct children of a page in sibling order.
func (t *Tree) Children(ctx context.Context, id int64) ([]store.Page, error) {
	children, err := t.queries.ListChildPages(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("listing children of page %d: %w", id, err)
	}
	return children, nil
}

// Descendants returns the subtree below a page in pre-order, so that every
// parent comes before its children. With inclusive the page itself is first.
func (t *Tree) Descendants(ctx context.Context, id int64, inclusive bool) ([]store.Page, error) {
	pages, err := t.queries.ListDescendantPages(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("listing descendants of page %d: %w", id, err)
	}
	if len(pages) == 0 {
		return nil, fmt.Errorf("listing descendants of page %d: %w", id, model.ErrNotFound)
	}
	if !inclusive {
		pages = pages[1:]
	}
	return pages, nil
}

// Ancestors returns the chain from the tree root down to the page itself.
func (t *Tree) Ancestors(ctx context.Context, id int64) ([]store.Page, error) {
	chain, err := t.queries.ListAncestorPages(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("listing ancestors of page %d: %w", id, err)
	}
	if len(chain) == 0 {
		return nil, fmt.Errorf("listing ancestors of page %d: %w", id, model.ErrNotFound)
	}
	return chain, nil
}

// AddChild creates a page as the last child of parentID.
func (t *Tree) AddChild(ctx context.Context, parentID int64, page NewPage) (store.Page, error) {
	if _, err := t.Page(ctx, parentID); err != nil {
		return store.Page{}, err
	}

	last, err := t.queries.MaxChildPosition(ctx, parentID)
	if err != nil {
		return store.Page{}, fmt.Errorf("reading child positions: %w", err)
	}

	contentType := page.ContentType
	if contentType == "" {
		contentType = model.ContentTypePage
	}

	now := t.now()
	created, err := t.queries.CreatePage(ctx, store.CreatePageParams{
		ParentID:        util.NullInt64FromValue(parentID),
		Position:        last + 1,
		ContentType:     contentType,
		Title:           page.Title,
		Slug:            page.Slug,
		Summary:         page.Summary,
		Body:            page.Body,
		Live:            page.Live,
		LanguageID:      page.LanguageID,
		CanonicalPageID: page.CanonicalPageID,
		CreatedAt:       now,
		UpdatedAt:       now,
	})
	if err != nil {
		return store.Page{}, fmt.Errorf("creating page %q: %w", page.Slug, err)
	}
	return created, nil
}

// CreateRoot creates a page without a parent, such as the root of a site.
func (t *Tree) CreateRoot(ctx context.Context, page NewPage) (store.Page, error) {
	contentType := page.ContentType
	if contentType == "" {
		contentType = model.ContentTypeSiteRoot
	}
	now := t.now()
	created, err := t.queries.CreatePage(ctx, store.CreatePageParams{
		ContentType: contentType,
		Title:       page.Title,
		Slug:        page.Slug,
		Live:        page.Live,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return store.Page{}, fmt.Errorf("creating root page %q: %w", page.Slug, err)
	}
	return created, nil
}

// Copy duplicates a single page (not its children) with the given overrides.
// The copy becomes the last child of parentID, or of the source's parent when
// parentID is nil.
func (t *Tree) Copy(ctx context.Context, src store.Page, overrides CopyOverrides, parentID *int64) (store.Page, error) {
	target := src.ParentID
	if parentID != nil {
		target = util.NullInt64FromPtr(parentID)
	}
	if !target.Valid {
		return store.Page{}, model.NewValidationError("parent", "cannot copy a root page without a target parent")
	}

	return t.AddChild(ctx, target.Int64, NewPage{
		ContentType:     src.ContentType,
		Title:           overrides.Title,
		Slug:            overrides.Slug,
		Summary:         src.Summary,
		Body:            src.Body,
		Live:            overrides.Live,
		LanguageID:      overrides.LanguageID,
		CanonicalPageID: overrides.CanonicalPageID,
	})
}

// Move re-parents page relative to target. Child positions put the page
// under target, sibling positions put it next to target. Sibling positions
// of the destination are renumbered.
func (t *Tree) Move(ctx context.Context, page, target store.Page, pos model.MovePosition) error {
	if !pos.Valid() {
		return model.NewValidationError("position", fmt.Sprintf("unknown move position %q", pos))
	}
	if pos == "" {
		pos = model.PositionLastChild
	}

	parentID := target.ID
	if pos.IsSibling() {
		if !target.ParentID.Valid {
			return model.NewValidationError("target", "cannot place a page next to a tree root")
		}
		if target.ID == page.ID {
			return model.NewValidationError("target", "cannot place a page next to itself")
		}
		parentID = target.ParentID.Int64
	}

	// The new parent must not be the page or one of its descendants.
	chain, err := t.Ancestors(ctx, parentID)
	if err != nil {
		return err
	}
	for _, ancestor := range chain {
		if ancestor.ID == page.ID {
			return model.NewValidationError("target", fmt.Sprintf("cannot move page %d below itself", page.ID))
		}
	}

	siblings, err := t.Children(ctx, parentID)
	if err != nil {
		return err
	}
	ordered := make([]int64, 0, len(siblings)+1)
	for _, s := range siblings {
		if s.ID != page.ID {
			ordered = append(ordered, s.ID)
		}
	}

	index := len(ordered)
	switch pos {
	case model.PositionFirstChild:
		index = 0
	case model.PositionLeft, model.PositionRight:
		index = slices.Index(ordered, target.ID)
		if index < 0 {
			return fmt.Errorf("target %d is not a child of page %d: %w", target.ID, parentID, model.ErrNotFound)
		}
		if pos == model.PositionRight {
			index++
		}
	}
	ordered = slices.Insert(ordered, index, page.ID)

	if err := t.queries.UpdatePageParent(ctx, store.UpdatePageParentParams{
		ParentID:  util.NullInt64FromValue(parentID),
		Position:  int64(index),
		UpdatedAt: t.now(),
		ID:        page.ID,
	}); err != nil {
		return fmt.Errorf("moving page %d: %w", page.ID, err)
	}

	for i, id := range ordered {
		if id == page.ID {
			continue
		}
		if err := t.queries.UpdatePagePosition(ctx, id, int64(i)); err != nil {
			return fmt.Errorf("renumbering page %d: %w", id, err)
		}
	}
	return nil
}

// Delete removes a page and its whole subtree.
func (t *Tree) Delete(ctx context.Context, id int64) error {
	if err := t.queries.DeletePage(ctx, id); err != nil {
		return fmt.Errorf("deleting page %d: %w", id, err)
	}
	return nil
}

// SiteFor returns the site whose root page is the page itself or its
// nearest such ancestor. It returns nil when the page belongs to no site.
func (t *Tree) SiteFor(ctx context.Context, page store.Page) (*store.Site, error) {
	site, _, err := t.siteChain(ctx, page.ID)
	return site, err
}

// siteChain returns the page's site and the ancestor chain below the site
// root, ending with the page itself.
func (t *Tree) siteChain(ctx context.Context, id int64) (*store.Site, []store.Page, error) {
	chain, err := t.Ancestors(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	for i := len(chain) - 1; i >= 0; i-- {
		site, err := t.queries.GetSiteByRootPage(ctx, chain[i].ID)
		if errors.Is(err, sql.ErrNoRows) {
			continue
		}
		if err != nil {
			return nil, nil, fmt.Errorf("resolving site of page %d: %w", id, err)
		}
		return &site, chain[i+1:], nil
	}
	return nil, chain, nil
}

// RootPage returns the root page of a site.
func (t *Tree) RootPage(ctx context.Context, site store.Site) (store.Page, error) {
	return t.Page(ctx, site.RootPageID)
}

// URL returns the site-relative path of a page: the slugs below the site
// root joined with slashes, with leading and trailing slash.
func (t *Tree) URL(ctx context.Context, page store.Page) (string, error) {
	_, chain, err := t.siteChain(ctx, page.ID)
	if err != nil {
		return "", err
	}
	if len(chain) == 0 {
		return "/", nil
	}
	slugs := make([]string, len(chain))
	for i, p := range chain {
		slugs[i] = p.Slug
	}
	return "/" + strings.Join(slugs, "/") + "/", nil
}
