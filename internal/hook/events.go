package hook

import (
	"github.com/olegiv/ocms-transtree/internal/model"
	"github.com/olegiv/ocms-transtree/internal/store"
)

// PageEvent is the payload of page.after_create and page.before_delete.
// Queries is bound to the transaction the event was fired in.
type PageEvent struct {
	Queries *store.Queries
	Page    store.Page
	Created bool
}

// MoveEvent is the payload of page.after_move. Page is the moved page as
// it is after the move. SuppressSync is set for moves issued by the
// synchronizer itself.
type MoveEvent struct {
	Queries      *store.Queries
	Page         store.Page
	Target       store.Page
	Position     model.MovePosition
	SuppressSync bool
}

// LanguageEvent is the payload of language.after_create.
type LanguageEvent struct {
	Queries  *store.Queries
	Language store.Language
}

// SiteLanguagesEvent is the payload of site_languages.after_update.
// Added lists the languages that became allowed in the site.
type SiteLanguagesEvent struct {
	Queries *store.Queries
	Site    store.Site
	Added   []store.Language
}
