package store

import (
	"database/sql"
	"time"
)

type Event struct {
	ID        int64     `json:"id"`
	Level     string    `json:"level"`
	Category  string    `json:"category"`
	Message   string    `json:"message"`
	Metadata  string    `json:"metadata"`
	CreatedAt time.Time `json:"created_at"`
}

type Group struct {
	ID         int64         `json:"id"`
	Name       string        `json:"name"`
	LanguageID sql.NullInt64 `json:"language_id"`
	CreatedAt  time.Time     `json:"created_at"`
}

type Language struct {
	ID        int64     `json:"id"`
	Code      string    `json:"code"`
	IsDefault bool      `json:"is_default"`
	Position  int64     `json:"position"`
	Live      bool      `json:"live"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Page struct {
	ID              int64         `json:"id"`
	ParentID        sql.NullInt64 `json:"parent_id"`
	Position        int64         `json:"position"`
	ContentType     string        `json:"content_type"`
	Title           string        `json:"title"`
	Slug            string        `json:"slug"`
	Summary         string        `json:"summary"`
	Body            string        `json:"body"`
	Live            bool          `json:"live"`
	LanguageID      sql.NullInt64 `json:"language_id"`
	CanonicalPageID sql.NullInt64 `json:"canonical_page_id"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

type Site struct {
	ID         int64     `json:"id"`
	Hostname   string    `json:"hostname"`
	RootPageID int64     `json:"root_page_id"`
	IsDefault  bool      `json:"is_default"`
	CreatedAt  time.Time `json:"created_at"`
}

type SiteLanguage struct {
	SiteID            int64         `json:"site_id"`
	DefaultLanguageID sql.NullInt64 `json:"default_language_id"`
	UpdatedAt         time.Time     `json:"updated_at"`
}

type TranslationItem struct {
	ID              int64         `json:"id"`
	PageID          sql.NullInt64 `json:"page_id"`
	CanonicalPageID sql.NullInt64 `json:"canonical_page_id"`
	LanguageID      int64         `json:"language_id"`
	CreatedAt       time.Time     `json:"created_at"`
}
