package store

import (
	"context"
	"database/sql"
	"time"
)

const translationItemColumns = `id, page_id, canonical_page_id, language_id, created_at`

func scanTranslationItem(row interface{ Scan(...any) error }) (TranslationItem, error) {
	var i TranslationItem
	err := row.Scan(
		&i.ID,
		&i.PageID,
		&i.CanonicalPageID,
		&i.LanguageID,
		&i.CreatedAt,
	)
	return i, err
}

const createTranslationItem = `-- name: CreateTranslationItem :one
INSERT INTO translation_items (page_id, canonical_page_id, language_id, created_at)
VALUES (?, ?, ?, ?)
`

type CreateTranslationItemParams struct {
	PageID          sql.NullInt64 `json:"page_id"`
	CanonicalPageID sql.NullInt64 `json:"canonical_page_id"`
	LanguageID      int64         `json:"language_id"`
	CreatedAt       time.Time     `json:"created_at"`
}

func (q *Queries) CreateTranslationItem(ctx context.Context, arg CreateTranslationItemParams) (TranslationItem, error) {
	result, err := q.db.ExecContext(ctx, createTranslationItem,
		arg.PageID,
		arg.CanonicalPageID,
		arg.LanguageID,
		arg.CreatedAt,
	)
	if err != nil {
		return TranslationItem{}, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return TranslationItem{}, err
	}
	return scanTranslationItem(q.db.QueryRowContext(ctx, getTranslationItemByID, id))
}

const getTranslationItemByID = `-- name: GetTranslationItemByID :one
SELECT ` + translationItemColumns + ` FROM translation_items WHERE id = ?
`

const hasTranslation = `-- name: HasTranslation :one
SELECT EXISTS(
    SELECT 1 FROM translation_items WHERE canonical_page_id = ? AND language_id = ?
)
`

func (q *Queries) HasTranslation(ctx context.Context, canonicalID, languageID int64) (bool, error) {
	var exists bool
	err := q.db.QueryRowContext(ctx, hasTranslation, canonicalID, languageID).Scan(&exists)
	return exists, err
}

const getTranslationItemByPage = `-- name: GetTranslationItemByPage :one
SELECT ` + translationItemColumns + ` FROM translation_items WHERE page_id = ?
`

func (q *Queries) GetTranslationItemByPage(ctx context.Context, pageID int64) (TranslationItem, error) {
	return scanTranslationItem(q.db.QueryRowContext(ctx, getTranslationItemByPage, pageID))
}

const getTranslationItem = `-- name: GetTranslationItem :one
SELECT ` + translationItemColumns + `
FROM translation_items WHERE canonical_page_id = ? AND language_id = ?
`

// GetTranslationItem returns the item registering the translation of canonicalID into languageID.
func (q *Queries) GetTranslationItem(ctx context.Context, canonicalID, languageID int64) (TranslationItem, error) {
	return scanTranslationItem(q.db.QueryRowContext(ctx, getTranslationItem, canonicalID, languageID))
}

const updateTranslationItemCanonical = `-- name: UpdateTranslationItemCanonical :exec
UPDATE translation_items SET canonical_page_id = ? WHERE page_id = ?
`

func (q *Queries) UpdateTranslationItemCanonical(ctx context.Context, pageID int64, canonicalID sql.NullInt64) error {
	_, err := q.db.ExecContext(ctx, updateTranslationItemCanonical, canonicalID, pageID)
	return err
}

const findItemPageInLanguage = `-- name: FindItemPageInLanguage :many
SELECT ` + prefixedPageColumns + `
FROM translation_items t JOIN pages p ON p.id = t.page_id
WHERE p.parent_id = ?1 AND t.language_id = ?2 AND (?3 = 0 OR p.live = 1)
ORDER BY p.position, p.id
`

type ListChildPagesByItemLanguageParams struct {
	ParentID   int64 `json:"parent_id"`
	LanguageID int64 `json:"language_id"`
	OnlyLive   bool  `json:"only_live"`
}

// ListChildPagesByItemLanguage returns the children of ParentID whose
// translation item is registered for LanguageID.
func (q *Queries) ListChildPagesByItemLanguage(ctx context.Context, arg ListChildPagesByItemLanguageParams) ([]Page, error) {
	return q.listPages(ctx, findItemPageInLanguage, arg.ParentID, arg.LanguageID, arg.OnlyLive)
}
