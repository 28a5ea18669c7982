// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package service runs page, language and site edits. Each edit executes in
// one database transaction together with the hooks it fires, so a failed
// propagation leaves every language tree untouched.
package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/olegiv/ocms-transtree/internal/model"
	"github.com/olegiv/ocms-transtree/internal/store"
)

// structural serializes structural edits within the process. SQLite has a
// single writer; the mutex keeps propagations from interleaving.
var structural sync.Mutex

// LanguageInvalidator drops cached language data after a change.
type LanguageInvalidator interface {
	Invalidate(ctx context.Context) error
}

// withTx runs fn inside a transaction and commits when fn succeeds.
func withTx(ctx context.Context, db *sql.DB, fn func(q *store.Queries) error) error {
	structural.Lock()
	defer structural.Unlock()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(store.New(db).WithTx(tx)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return model.ErrNotFound
	}
	return err
}
