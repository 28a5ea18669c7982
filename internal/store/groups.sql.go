package store

import (
	"context"
	"database/sql"
	"time"
)

const createGroup = `-- name: CreateGroup :one
INSERT INTO access_groups (name, language_id, created_at)
VALUES (?, ?, ?)
ON CONFLICT (name) DO UPDATE SET language_id = excluded.language_id
`

type CreateGroupParams struct {
	Name       string        `json:"name"`
	LanguageID sql.NullInt64 `json:"language_id"`
	CreatedAt  time.Time     `json:"created_at"`
}

// CreateGroup inserts the group or returns the existing one with the same name.
func (q *Queries) CreateGroup(ctx context.Context, arg CreateGroupParams) (Group, error) {
	if _, err := q.db.ExecContext(ctx, createGroup, arg.Name, arg.LanguageID, arg.CreatedAt); err != nil {
		return Group{}, err
	}
	return q.GetGroupByName(ctx, arg.Name)
}

const addGroupPermission = `-- name: AddGroupPermission :exec
INSERT INTO access_group_permissions (group_id, permission) VALUES (?, ?)
ON CONFLICT DO NOTHING
`

func (q *Queries) AddGroupPermission(ctx context.Context, groupID int64, permission string) error {
	_, err := q.db.ExecContext(ctx, addGroupPermission, groupID, permission)
	return err
}

const listGroupPermissions = `-- name: ListGroupPermissions :many
SELECT permission FROM access_group_permissions WHERE group_id = ? ORDER BY permission
`

func (q *Queries) ListGroupPermissions(ctx context.Context, groupID int64) ([]string, error) {
	rows, err := q.db.QueryContext(ctx, listGroupPermissions, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []string{}
	for rows.Next() {
		var permission string
		if err := rows.Scan(&permission); err != nil {
			return nil, err
		}
		items = append(items, permission)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getGroupByName = `-- name: GetGroupByName :one
SELECT id, name, language_id, created_at FROM access_groups WHERE name = ?
`

func (q *Queries) GetGroupByName(ctx context.Context, name string) (Group, error) {
	row := q.db.QueryRowContext(ctx, getGroupByName, name)
	var i Group
	err := row.Scan(&i.ID, &i.Name, &i.LanguageID, &i.CreatedAt)
	return i, err
}
