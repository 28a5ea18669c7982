// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package util holds slug and nullable-column helpers shared by the page
// tree and the translation registry.
package util

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/mozillazg/go-unidecode"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	nonSlugChars    = regexp.MustCompile(`[^a-z0-9-]+`)
	multipleHyphens = regexp.MustCompile(`-{2,}`)
	validSlug       = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)
)

// Slugify turns a page title into a path segment. Accents are stripped,
// other scripts are transliterated to ASCII and anything that is not a
// lowercase letter, digit or hyphen is dropped.
func Slugify(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, s)

	result = strings.ToLower(unidecode.Unidecode(result))
	result = strings.Join(strings.Fields(result), "-")
	result = nonSlugChars.ReplaceAllString(result, "")
	result = multipleHyphens.ReplaceAllString(result, "-")

	return strings.Trim(result, "-")
}

// IsValidSlug reports whether s can be used as a path segment as is.
func IsValidSlug(s string) bool {
	return validSlug.MatchString(s)
}

// LanguageSlug returns the path segment form of a language code, so that
// "pt-BR" becomes "pt-br".
func LanguageSlug(code string) string {
	return strings.ToLower(code)
}

// TranslatedSlug derives the slug of a page translated from sourceCode into
// targetCode. A language root, whose slug is its own language code, maps to
// the target code. Every other slug gets the target code appended.
func TranslatedSlug(sourceSlug, sourceCode, targetCode string) string {
	if sourceSlug == LanguageSlug(sourceCode) {
		return LanguageSlug(targetCode)
	}
	return sourceSlug + "-" + LanguageSlug(targetCode)
}
