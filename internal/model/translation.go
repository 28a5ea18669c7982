// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

// TranslationLink represents a simplified view of a translation for UI purposes.
type TranslationLink struct {
	LanguageID   int64  `json:"language_id"`
	LanguageCode string `json:"language_code"`
	PageID       int64  `json:"page_id"`
	URL          string `json:"url"`
	IsCanonical  bool   `json:"is_canonical"`
	Live         bool   `json:"live"`
}
