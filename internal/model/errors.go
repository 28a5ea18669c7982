// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a page, language, site or translated root does not exist.
var ErrNotFound = errors.New("not found")

// ConflictError is returned when a translation already exists for a
// canonical page and language.
type ConflictError struct {
	CanonicalID  int64
	LanguageCode string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("translation of page %d into %q already exists", e.CanonicalID, e.LanguageCode)
}

// SyncPreconditionError is returned when propagation cannot find the mirror
// of a node in some language tree, i.e. the trees were not congruent.
type SyncPreconditionError struct {
	PageID       int64
	LanguageCode string
	Reason       string
}

func (e *SyncPreconditionError) Error() string {
	return fmt.Sprintf("language tree %q out of sync at page %d: %s", e.LanguageCode, e.PageID, e.Reason)
}

// ValidationError is returned for configuration and input that breaks a
// language or tree invariant. Field names the offending input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// NewValidationError creates a ValidationError.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// IsConflict reports whether err is or wraps a ConflictError.
func IsConflict(err error) bool {
	var target *ConflictError
	return errors.As(err, &target)
}

// IsSyncPrecondition reports whether err is or wraps a SyncPreconditionError.
func IsSyncPrecondition(err error) bool {
	var target *SyncPreconditionError
	return errors.As(err, &target)
}

// IsValidation reports whether err is or wraps a ValidationError.
func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}
