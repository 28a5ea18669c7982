package store

import (
	"context"
	"time"
)

const languageColumns = `id, code, is_default, position, live, created_at, updated_at`

func scanLanguage(row interface{ Scan(...any) error }) (Language, error) {
	var i Language
	err := row.Scan(
		&i.ID,
		&i.Code,
		&i.IsDefault,
		&i.Position,
		&i.Live,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

func (q *Queries) listLanguages(ctx context.Context, query string, args ...any) ([]Language, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Language{}
	for rows.Next() {
		i, err := scanLanguage(rows)
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

const countLanguages = `-- name: CountLanguages :one
SELECT COUNT(*) FROM languages
`

func (q *Queries) CountLanguages(ctx context.Context) (int64, error) {
	row := q.db.QueryRowContext(ctx, countLanguages)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const createLanguage = `-- name: CreateLanguage :one
INSERT INTO languages (code, is_default, position, live, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?)
`

type CreateLanguageParams struct {
	Code      string    `json:"code"`
	IsDefault bool      `json:"is_default"`
	Position  int64     `json:"position"`
	Live      bool      `json:"live"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (q *Queries) CreateLanguage(ctx context.Context, arg CreateLanguageParams) (Language, error) {
	result, err := q.db.ExecContext(ctx, createLanguage,
		arg.Code,
		arg.IsDefault,
		arg.Position,
		arg.Live,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	if err != nil {
		return Language{}, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return Language{}, err
	}
	return q.GetLanguage(ctx, id)
}

const getLanguage = `-- name: GetLanguage :one
SELECT ` + languageColumns + ` FROM languages WHERE id = ?
`

func (q *Queries) GetLanguage(ctx context.Context, id int64) (Language, error) {
	return scanLanguage(q.db.QueryRowContext(ctx, getLanguage, id))
}

const getLanguageByCode = `-- name: GetLanguageByCode :one
SELECT ` + languageColumns + ` FROM languages WHERE code = ?
`

func (q *Queries) GetLanguageByCode(ctx context.Context, code string) (Language, error) {
	return scanLanguage(q.db.QueryRowContext(ctx, getLanguageByCode, code))
}

const getDefaultLanguage = `-- name: GetDefaultLanguage :one
SELECT ` + languageColumns + ` FROM languages WHERE is_default = 1 LIMIT 1
`

func (q *Queries) GetDefaultLanguage(ctx context.Context) (Language, error) {
	return scanLanguage(q.db.QueryRowContext(ctx, getDefaultLanguage))
}

const listLanguages = `-- name: ListLanguages :many
SELECT ` + languageColumns + ` FROM languages ORDER BY position, code
`

func (q *Queries) ListLanguages(ctx context.Context) ([]Language, error) {
	return q.listLanguages(ctx, listLanguages)
}

const listLiveLanguages = `-- name: ListLiveLanguages :many
SELECT ` + languageColumns + ` FROM languages WHERE live = 1 ORDER BY position, code
`

func (q *Queries) ListLiveLanguages(ctx context.Context) ([]Language, error) {
	return q.listLanguages(ctx, listLiveLanguages)
}

const updateLanguage = `-- name: UpdateLanguage :one
UPDATE languages SET position = ?, live = ?, updated_at = ?
WHERE id = ?
`

type UpdateLanguageParams struct {
	Position  int64     `json:"position"`
	Live      bool      `json:"live"`
	UpdatedAt time.Time `json:"updated_at"`
	ID        int64     `json:"id"`
}

func (q *Queries) UpdateLanguage(ctx context.Context, arg UpdateLanguageParams) (Language, error) {
	if _, err := q.db.ExecContext(ctx, updateLanguage,
		arg.Position,
		arg.Live,
		arg.UpdatedAt,
		arg.ID,
	); err != nil {
		return Language{}, err
	}
	return q.GetLanguage(ctx, arg.ID)
}

const setDefaultLanguage = `-- name: SetDefaultLanguage :exec
UPDATE languages SET is_default = (id = ?), updated_at = ?
`

// SetDefaultLanguage flags id as the only default language.
func (q *Queries) SetDefaultLanguage(ctx context.Context, id int64, updatedAt time.Time) error {
	_, err := q.db.ExecContext(ctx, setDefaultLanguage, id, updatedAt)
	return err
}
