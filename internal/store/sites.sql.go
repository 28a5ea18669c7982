package store

import (
	"context"
	"database/sql"
	"time"
)

const siteColumns = `id, hostname, root_page_id, is_default, created_at`

func scanSite(row interface{ Scan(...any) error }) (Site, error) {
	var i Site
	err := row.Scan(
		&i.ID,
		&i.Hostname,
		&i.RootPageID,
		&i.IsDefault,
		&i.CreatedAt,
	)
	return i, err
}

const createSite = `-- name: CreateSite :one
INSERT INTO sites (hostname, root_page_id, is_default, created_at)
VALUES (?, ?, ?, ?)
`

type CreateSiteParams struct {
	Hostname   string    `json:"hostname"`
	RootPageID int64     `json:"root_page_id"`
	IsDefault  bool      `json:"is_default"`
	CreatedAt  time.Time `json:"created_at"`
}

func (q *Queries) CreateSite(ctx context.Context, arg CreateSiteParams) (Site, error) {
	result, err := q.db.ExecContext(ctx, createSite,
		arg.Hostname,
		arg.RootPageID,
		arg.IsDefault,
		arg.CreatedAt,
	)
	if err != nil {
		return Site{}, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return Site{}, err
	}
	return q.GetSite(ctx, id)
}

const getSite = `-- name: GetSite :one
SELECT ` + siteColumns + ` FROM sites WHERE id = ?
`

func (q *Queries) GetSite(ctx context.Context, id int64) (Site, error) {
	return scanSite(q.db.QueryRowContext(ctx, getSite, id))
}

const getSiteByHostname = `-- name: GetSiteByHostname :one
SELECT ` + siteColumns + ` FROM sites WHERE hostname = ?
`

func (q *Queries) GetSiteByHostname(ctx context.Context, hostname string) (Site, error) {
	return scanSite(q.db.QueryRowContext(ctx, getSiteByHostname, hostname))
}

const getDefaultSite = `-- name: GetDefaultSite :one
SELECT ` + siteColumns + ` FROM sites WHERE is_default = 1 ORDER BY id LIMIT 1
`

func (q *Queries) GetDefaultSite(ctx context.Context) (Site, error) {
	return scanSite(q.db.QueryRowContext(ctx, getDefaultSite))
}

const getSiteByRootPage = `-- name: GetSiteByRootPage :one
SELECT ` + siteColumns + ` FROM sites WHERE root_page_id = ?
`

func (q *Queries) GetSiteByRootPage(ctx context.Context, rootPageID int64) (Site, error) {
	return scanSite(q.db.QueryRowContext(ctx, getSiteByRootPage, rootPageID))
}

const listSites = `-- name: ListSites :many
SELECT ` + siteColumns + ` FROM sites ORDER BY id
`

func (q *Queries) ListSites(ctx context.Context) ([]Site, error) {
	rows, err := q.db.QueryContext(ctx, listSites)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Site{}
	for rows.Next() {
		i, err := scanSite(rows)
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

const getSiteLanguages = `-- name: GetSiteLanguages :one
SELECT site_id, default_language_id, updated_at FROM site_languages WHERE site_id = ?
`

func (q *Queries) GetSiteLanguages(ctx context.Context, siteID int64) (SiteLanguage, error) {
	row := q.db.QueryRowContext(ctx, getSiteLanguages, siteID)
	var i SiteLanguage
	err := row.Scan(&i.SiteID, &i.DefaultLanguageID, &i.UpdatedAt)
	return i, err
}

const upsertSiteLanguages = `-- name: UpsertSiteLanguages :exec
INSERT INTO site_languages (site_id, default_language_id, updated_at)
VALUES (?, ?, ?)
ON CONFLICT (site_id) DO UPDATE SET
    default_language_id = excluded.default_language_id,
    updated_at = excluded.updated_at
`

type UpsertSiteLanguagesParams struct {
	SiteID            int64         `json:"site_id"`
	DefaultLanguageID sql.NullInt64 `json:"default_language_id"`
	UpdatedAt         time.Time     `json:"updated_at"`
}

func (q *Queries) UpsertSiteLanguages(ctx context.Context, arg UpsertSiteLanguagesParams) error {
	_, err := q.db.ExecContext(ctx, upsertSiteLanguages, arg.SiteID, arg.DefaultLanguageID, arg.UpdatedAt)
	return err
}

const listSiteOtherLanguages = `-- name: ListSiteOtherLanguages :many
SELECT l.id, l.code, l.is_default, l.position, l.live, l.created_at, l.updated_at
FROM site_other_languages s JOIN languages l ON l.id = s.language_id
WHERE s.site_id = ?
ORDER BY l.position, l.code
`

func (q *Queries) ListSiteOtherLanguages(ctx context.Context, siteID int64) ([]Language, error) {
	return q.listLanguages(ctx, listSiteOtherLanguages, siteID)
}

const deleteSiteOtherLanguages = `-- name: DeleteSiteOtherLanguages :exec
DELETE FROM site_other_languages WHERE site_id = ?
`

func (q *Queries) DeleteSiteOtherLanguages(ctx context.Context, siteID int64) error {
	_, err := q.db.ExecContext(ctx, deleteSiteOtherLanguages, siteID)
	return err
}

const addSiteOtherLanguage = `-- name: AddSiteOtherLanguage :exec
INSERT INTO site_other_languages (site_id, language_id) VALUES (?, ?)
`

func (q *Queries) AddSiteOtherLanguage(ctx context.Context, siteID, languageID int64) error {
	_, err := q.db.ExecContext(ctx, addSiteOtherLanguage, siteID, languageID)
	return err
}
