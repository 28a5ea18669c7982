// Package session wraps scs with the SQLite session store.
package session

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
)

// LanguageKey is the session key holding the visitor's preferred language code.
const LanguageKey = "language"

// New creates a new session manager configured with SQLite store.
func New(db *sql.DB, lifetime time.Duration, isDev bool) *scs.SessionManager {
	sm := scs.New()

	// Use SQLite store
	sm.Store = sqlite3store.New(db)

	if lifetime <= 0 {
		lifetime = 24 * time.Hour
	}
	sm.Lifetime = lifetime
	sm.Cookie.Name = "transtree_session"
	sm.Cookie.HttpOnly = true
	sm.Cookie.SameSite = http.SameSiteLaxMode
	sm.Cookie.Secure = !isDev // Secure cookies in production only

	return sm
}

// PreferredLanguage returns the language code stored in the session, or "".
// The request context must have been loaded by sm.LoadAndSave.
func PreferredLanguage(ctx context.Context, sm *scs.SessionManager) string {
	return sm.GetString(ctx, LanguageKey)
}

// SetPreferredLanguage stores a language code in the session.
func SetPreferredLanguage(ctx context.Context, sm *scs.SessionManager, code string) {
	sm.Put(ctx, LanguageKey, code)
}
