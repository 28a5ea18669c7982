package store

import (
	"context"
	"database/sql"
	"time"
)

const pageColumns = `id, parent_id, position, content_type, title, slug, summary, body, live, language_id, canonical_page_id, created_at, updated_at`

// prefixedPageColumns is pageColumns qualified with the "p." alias.
const prefixedPageColumns = `p.id, p.parent_id, p.position, p.content_type, p.title, p.slug, p.summary, p.body, p.live, p.language_id, p.canonical_page_id, p.created_at, p.updated_at`

func scanPage(row interface{ Scan(...any) error }) (Page, error) {
	var i Page
	err := row.Scan(
		&i.ID,
		&i.ParentID,
		&i.Position,
		&i.ContentType,
		&i.Title,
		&i.Slug,
		&i.Summary,
		&i.Body,
		&i.Live,
		&i.LanguageID,
		&i.CanonicalPageID,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

func (q *Queries) listPages(ctx context.Context, query string, args ...any) ([]Page, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Page{}
	for rows.Next() {
		i, err := scanPage(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const createPage = `-- name: CreatePage :one
INSERT INTO pages (
    parent_id, position, content_type, title, slug, summary, body, live,
    language_id, canonical_page_id, created_at, updated_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

type CreatePageParams struct {
	ParentID        sql.NullInt64 `json:"parent_id"`
	Position        int64         `json:"position"`
	ContentType     string        `json:"content_type"`
	Title           string        `json:"title"`
	Slug            string        `json:"slug"`
	Summary         string        `json:"summary"`
	Body            string        `json:"body"`
	Live            bool          `json:"live"`
	LanguageID      sql.NullInt64 `json:"language_id"`
	CanonicalPageID sql.NullInt64 `json:"canonical_page_id"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

func (q *Queries) CreatePage(ctx context.Context, arg CreatePageParams) (Page, error) {
	result, err := q.db.ExecContext(ctx, createPage,
		arg.ParentID,
		arg.Position,
		arg.ContentType,
		arg.Title,
		arg.Slug,
		arg.Summary,
		arg.Body,
		arg.Live,
		arg.LanguageID,
		arg.CanonicalPageID,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	if err != nil {
		return Page{}, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return Page{}, err
	}
	return q.GetPage(ctx, id)
}

const getPage = `-- name: GetPage :one
SELECT ` + pageColumns + ` FROM pages WHERE id = ?
`

func (q *Queries) GetPage(ctx context.Context, id int64) (Page, error) {
	return scanPage(q.db.QueryRowContext(ctx, getPage, id))
}

const pageExists = `-- name: PageExists :one
SELECT EXISTS(SELECT 1 FROM pages WHERE id = ?)
`

func (q *Queries) PageExists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := q.db.QueryRowContext(ctx, pageExists, id).Scan(&exists)
	return exists, err
}

const listChildPages = `-- name: ListChildPages :many
SELECT ` + pageColumns + ` FROM pages WHERE parent_id = ? ORDER BY position, id
`

func (q *Queries) ListChildPages(ctx context.Context, parentID int64) ([]Page, error) {
	return q.listPages(ctx, listChildPages, parentID)
}

// listDescendantPages walks the subtree rooted at the given page. Each row
// carries a sort key of zero-padded (position, id) segments so that ordering
// by it yields a pre-order traversal: every parent precedes its children.
const listDescendantPages = `-- name: ListDescendantPages :many
WITH RECURSIVE subtree(id, sort_key) AS (
    SELECT id, '' FROM pages WHERE id = ?
    UNION ALL
    SELECT c.id, subtree.sort_key || printf('/%010d.%010d', c.position, c.id)
    FROM pages c JOIN subtree ON c.parent_id = subtree.id
)
SELECT ` + prefixedPageColumns + `
FROM pages p JOIN subtree ON p.id = subtree.id
ORDER BY subtree.sort_key
`

// ListDescendantPages returns the page and all of its descendants in pre-order.
func (q *Queries) ListDescendantPages(ctx context.Context, id int64) ([]Page, error) {
	return q.listPages(ctx, listDescendantPages, id)
}

const listAncestorPages = `-- name: ListAncestorPages :many
WITH RECURSIVE chain(id, parent_id, depth) AS (
    SELECT id, parent_id, 0 FROM pages WHERE id = ?
    UNION ALL
    SELECT p.id, p.parent_id, chain.depth + 1
    FROM pages p JOIN chain ON p.id = chain.parent_id
)
SELECT ` + prefixedPageColumns + `
FROM pages p JOIN chain ON p.id = chain.id
ORDER BY chain.depth DESC
`

// ListAncestorPages returns the chain from the tree root down to the page itself.
func (q *Queries) ListAncestorPages(ctx context.Context, id int64) ([]Page, error) {
	return q.listPages(ctx, listAncestorPages, id)
}

const maxChildPosition = `-- name: MaxChildPosition :one
SELECT CAST(COALESCE(MAX(position), -1) AS INTEGER) FROM pages WHERE parent_id = ?
`

func (q *Queries) MaxChildPosition(ctx context.Context, parentID int64) (int64, error) {
	var pos int64
	err := q.db.QueryRowContext(ctx, maxChildPosition, parentID).Scan(&pos)
	return pos, err
}

const updatePageParent = `-- name: UpdatePageParent :exec
UPDATE pages SET parent_id = ?, position = ?, updated_at = ? WHERE id = ?
`

type UpdatePageParentParams struct {
	ParentID  sql.NullInt64 `json:"parent_id"`
	Position  int64         `json:"position"`
	UpdatedAt time.Time     `json:"updated_at"`
	ID        int64         `json:"id"`
}

func (q *Queries) UpdatePageParent(ctx context.Context, arg UpdatePageParentParams) error {
	_, err := q.db.ExecContext(ctx, updatePageParent, arg.ParentID, arg.Position, arg.UpdatedAt, arg.ID)
	return err
}

const updatePagePosition = `-- name: UpdatePagePosition :exec
UPDATE pages SET position = ? WHERE id = ?
`

func (q *Queries) UpdatePagePosition(ctx context.Context, id, position int64) error {
	_, err := q.db.ExecContext(ctx, updatePagePosition, position, id)
	return err
}

const updatePageLive = `-- name: UpdatePageLive :exec
UPDATE pages SET live = ?, updated_at = ? WHERE id = ?
`

func (q *Queries) UpdatePageLive(ctx context.Context, id int64, live bool, updatedAt time.Time) error {
	_, err := q.db.ExecContext(ctx, updatePageLive, live, updatedAt, id)
	return err
}

const updatePageCanonical = `-- name: UpdatePageCanonical :exec
UPDATE pages SET canonical_page_id = ?, updated_at = ? WHERE id = ?
`

func (q *Queries) UpdatePageCanonical(ctx context.Context, id int64, canonicalID sql.NullInt64, updatedAt time.Time) error {
	_, err := q.db.ExecContext(ctx, updatePageCanonical, canonicalID, updatedAt, id)
	return err
}

const deletePage = `-- name: DeletePage :exec
DELETE FROM pages WHERE id = ?
`

func (q *Queries) DeletePage(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, deletePage, id)
	return err
}

const listPagesByCanonical = `-- name: ListPagesByCanonical :many
SELECT ` + pageColumns + ` FROM pages WHERE canonical_page_id = ? ORDER BY id
`

func (q *Queries) ListPagesByCanonical(ctx context.Context, canonicalID int64) ([]Page, error) {
	return q.listPages(ctx, listPagesByCanonical, canonicalID)
}

const listTranslationGroup = `-- name: ListTranslationGroup :many
SELECT ` + prefixedPageColumns + `
FROM pages p JOIN languages l ON l.id = p.language_id
WHERE (p.canonical_page_id = ?1 OR p.id = ?1)
  AND (?2 = 0 OR (p.live = 1 AND l.live = 1))
ORDER BY l.position, l.code, p.id
`

type ListTranslationGroupParams struct {
	CanonicalID int64 `json:"canonical_id"`
	OnlyLive    bool  `json:"only_live"`
}

// ListTranslationGroup returns the canonical page and all of its translations,
// ordered by language position.
func (q *Queries) ListTranslationGroup(ctx context.Context, arg ListTranslationGroupParams) ([]Page, error) {
	return q.listPages(ctx, listTranslationGroup, arg.CanonicalID, arg.OnlyLive)
}

const findMirrorPages = `-- name: FindMirrorPages :many
SELECT ` + pageColumns + `
FROM pages
WHERE language_id = ?1 AND (canonical_page_id = ?2 OR id = ?2)
ORDER BY id
`

// FindMirrorPages returns the pages in languageID that belong to the group of canonicalID.
func (q *Queries) FindMirrorPages(ctx context.Context, languageID, canonicalID int64) ([]Page, error) {
	return q.listPages(ctx, findMirrorPages, languageID, canonicalID)
}

const subtreeHasLanguage = `-- name: SubtreeHasLanguage :one
WITH RECURSIVE subtree(id) AS (
    SELECT id FROM pages WHERE id = ?1
    UNION ALL
    SELECT c.id FROM pages c JOIN subtree ON c.parent_id = subtree.id
)
SELECT EXISTS(
    SELECT 1 FROM pages p JOIN subtree ON p.id = subtree.id
    WHERE p.language_id = ?2
)
`

// SubtreeHasLanguage reports whether any page below rootID is in languageID.
func (q *Queries) SubtreeHasLanguage(ctx context.Context, rootID, languageID int64) (bool, error) {
	var exists bool
	err := q.db.QueryRowContext(ctx, subtreeHasLanguage, rootID, languageID).Scan(&exists)
	return exists, err
}

const listCanonicalPagesInLanguage = `-- name: ListCanonicalPagesInLanguage :many
SELECT ` + pageColumns + `
FROM pages
WHERE language_id = ? AND canonical_page_id IS NULL
ORDER BY id
`

// ListCanonicalPagesInLanguage returns every canonical page in languageID.
func (q *Queries) ListCanonicalPagesInLanguage(ctx context.Context, languageID int64) ([]Page, error) {
	return q.listPages(ctx, listCanonicalPagesInLanguage, languageID)
}

const listCanonicalSubtreePages = `-- name: ListCanonicalSubtreePages :many
WITH RECURSIVE subtree(id) AS (
    SELECT id FROM pages WHERE id = ?1
    UNION ALL
    SELECT c.id FROM pages c JOIN subtree ON c.parent_id = subtree.id
)
SELECT ` + prefixedPageColumns + `
FROM pages p JOIN subtree ON p.id = subtree.id
WHERE p.language_id = ?2 AND p.canonical_page_id IS NULL
ORDER BY p.id
`

// ListCanonicalSubtreePages returns the canonical pages in languageID below rootID.
func (q *Queries) ListCanonicalSubtreePages(ctx context.Context, rootID, languageID int64) ([]Page, error) {
	return q.listPages(ctx, listCanonicalSubtreePages, rootID, languageID)
}
