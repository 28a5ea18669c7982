// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

// Page content types.
const (
	ContentTypePage     = "page"
	ContentTypeSiteRoot = "site_root"
)

// MovePosition places a moved page relative to its target.
type MovePosition string

// Move positions. Child positions make the target the new parent, sibling
// positions place the page next to the target under the target's parent.
const (
	PositionLastChild  MovePosition = "last-child"
	PositionFirstChild MovePosition = "first-child"
	PositionLeft       MovePosition = "left"
	PositionRight      MovePosition = "right"
)

// IsSibling returns true if the position is relative to the target's siblings.
func (p MovePosition) IsSibling() bool {
	return p == PositionLeft || p == PositionRight
}

// Valid returns true for the known positions and for the empty default.
func (p MovePosition) Valid() bool {
	switch p {
	case "", PositionLastChild, PositionFirstChild, PositionLeft, PositionRight:
		return true
	}
	return false
}
