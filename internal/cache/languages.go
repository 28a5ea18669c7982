package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/olegiv/ocms-transtree/internal/language"
	"github.com/olegiv/ocms-transtree/internal/model"
	"github.com/olegiv/ocms-transtree/internal/store"
)

const languageKeyPrefix = "languages:"

// LanguageSnapshot is the language view of one site: the live languages
// it allows in display order, and its default language.
type LanguageSnapshot struct {
	Languages []store.Language `json:"languages"`
	Default   *store.Language  `json:"default,omitempty"`
}

// ByCode returns the allowed language with the given code. Codes compare
// case-insensitively, so "pt-br" finds the stored "pt-BR".
func (s *LanguageSnapshot) ByCode(code string) (store.Language, bool) {
	for _, lang := range s.Languages {
		if strings.EqualFold(lang.Code, code) {
			return lang, true
		}
	}
	return store.Language{}, false
}

// Codes returns the allowed language codes in display order.
func (s *LanguageSnapshot) Codes() []string {
	codes := make([]string, len(s.Languages))
	for i, lang := range s.Languages {
		codes[i] = lang.Code
	}
	return codes
}

// LanguageCache provides cached per-site language snapshots for request
// processing. Any language or site settings change must call Invalidate.
type LanguageCache struct {
	cache    Cache
	ttl      time.Duration
	queries  *store.Queries
	resolver language.Resolver
}

// NewLanguageCache creates a language cache on top of c.
func NewLanguageCache(c Cache, queries *store.Queries, resolver language.Resolver, ttl time.Duration) *LanguageCache {
	return &LanguageCache{cache: c, ttl: ttl, queries: queries, resolver: resolver}
}

func languageKey(siteID int64) string {
	return fmt.Sprintf("%ssite:%d", languageKeyPrefix, siteID)
}

// Snapshot returns the language view of a site, loading it on a miss.
// Snapshots are stored as JSON so that Redis and memory backends share
// one format. A cache failure falls back to the database.
func (c *LanguageCache) Snapshot(ctx context.Context, siteID int64) (*LanguageSnapshot, error) {
	key := languageKey(siteID)
	if data, err := c.cache.Get(ctx, key); err == nil {
		var snapshot LanguageSnapshot
		if json.Unmarshal(data, &snapshot) == nil {
			return &snapshot, nil
		}
	}

	snapshot, err := c.load(ctx, siteID)
	if err != nil {
		return nil, err
	}
	if data, err := json.Marshal(snapshot); err == nil {
		if err := c.cache.Set(ctx, key, data, c.ttl); err != nil {
			slog.Debug("caching language snapshot failed", "site_id", siteID, "error", err)
		}
	}
	return snapshot, nil
}

func (c *LanguageCache) load(ctx context.Context, siteID int64) (*LanguageSnapshot, error) {
	allowed, err := c.resolver.AllowedLanguages(ctx, c.queries, siteID)
	if err != nil {
		return nil, err
	}
	snapshot := &LanguageSnapshot{Languages: allowed}

	def, err := c.resolver.DefaultLanguage(ctx, c.queries, siteID)
	switch {
	case errors.Is(err, model.ErrNotFound):
	case err != nil:
		return nil, err
	default:
		snapshot.Default = &def
	}
	return snapshot, nil
}

// Invalidate drops every cached snapshot.
func (c *LanguageCache) Invalidate(ctx context.Context) error {
	if pd, ok := c.cache.(interface {
		DeleteByPrefix(ctx context.Context, prefix string) error
	}); ok {
		return pd.DeleteByPrefix(ctx, languageKeyPrefix)
	}
	return c.cache.Clear(ctx)
}
