package logging

import (
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/olegiv/ocms-transtree/internal/model"
	"github.com/olegiv/ocms-transtree/internal/store"
	"github.com/olegiv/ocms-transtree/internal/testutil"
)

// discardHandler is a slog.Handler that discards all logs.
type discardHandler struct{}

func (h discardHandler) Enabled(context.Context, slog.Level) bool  { return true }
func (h discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (h discardHandler) WithAttrs([]slog.Attr) slog.Handler        { return h }
func (h discardHandler) WithGroup(string) slog.Handler             { return h }

func listEvents(t *testing.T, q *store.Queries, category string) []store.Event {
	t.Helper()
	events, err := q.ListEventsByCategory(context.Background(), category, 10)
	if err != nil {
		t.Fatalf("ListEventsByCategory: %v", err)
	}
	return events
}

func TestEventLogHandler_ErrorLevel(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()

	handler := NewEventLogHandler(discardHandler{}, db)
	logger := slog.New(handler)

	logger.Error("database connection failed", "host", "localhost", "port", 5432)
	handler.Close()

	events := listEvents(t, store.New(db), model.EventCategorySystem)
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].Level != model.EventLevelError {
		t.Errorf("Level = %q, want %q", events[0].Level, model.EventLevelError)
	}
	if events[0].Message != "database connection failed" {
		t.Errorf("Message = %q, want %q", events[0].Message, "database connection failed")
	}

	var meta map[string]string
	if err := json.Unmarshal([]byte(events[0].Metadata), &meta); err != nil {
		t.Fatalf("metadata is not JSON: %v", err)
	}
	if meta["host"] != "localhost" || meta["port"] != "5432" {
		t.Errorf("metadata = %v, want host and port", meta)
	}
}

func TestEventLogHandler_InfoNotPersisted(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()

	handler := NewEventLogHandler(discardHandler{}, db)
	logger := slog.New(handler)

	logger.Info("language tree backfilled", "category", model.EventCategorySync)
	handler.Close()

	if events := listEvents(t, store.New(db), model.EventCategorySync); len(events) != 0 {
		t.Errorf("expected no events, got %d", len(events))
	}
}

func TestEventLogHandler_Category(t *testing.T) {
	tests := []struct {
		name    string
		log     func(*slog.Logger)
		want    string
		wantMsg string
	}{
		{
			name:    "explicit attribute",
			log:     func(l *slog.Logger) { l.Warn("divergence", "category", model.EventCategorySync) },
			want:    model.EventCategorySync,
			wantMsg: "divergence",
		},
		{
			name:    "attribute from With",
			log:     func(l *slog.Logger) { l.With("category", model.EventCategoryCache).Warn("redis down") },
			want:    model.EventCategoryCache,
			wantMsg: "redis down",
		},
		{
			name:    "inferred from message",
			log:     func(l *slog.Logger) { l.Warn("language not live") },
			want:    model.EventCategoryLanguage,
			wantMsg: "language not live",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, cleanup := testutil.TestDB(t)
			defer cleanup()

			handler := NewEventLogHandler(discardHandler{}, db)
			tt.log(slog.New(handler))
			handler.Close()

			events := listEvents(t, store.New(db), tt.want)
			if len(events) != 1 {
				t.Fatalf("expected 1 %s event, got %d", tt.want, len(events))
			}
			if events[0].Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", events[0].Message, tt.wantMsg)
			}
		})
	}
}

func TestEventLogHandler_CloseIsIdempotent(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()

	handler := NewEventLogHandler(discardHandler{}, db)
	handler.Close()
	handler.Close()

	// Logging after Close must not panic.
	slog.New(handler).Error("late")
	if handler.Dropped() != 0 {
		t.Errorf("Dropped() = %d, want 0", handler.Dropped())
	}
}
