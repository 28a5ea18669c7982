// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

// Page permissions granted to the translator group of a language.
const (
	PermissionAddPage     = "add_page"
	PermissionChangePage  = "change_page"
	PermissionPublishPage = "publish_page"
)

// LanguagePermissions lists the permissions provisioned for every new language group.
var LanguagePermissions = []string{
	PermissionAddPage,
	PermissionChangePage,
	PermissionPublishPage,
}

// LanguageGroupName returns the name of the access group scoped to a language.
func LanguageGroupName(code string) string {
	return "translators-" + code
}
