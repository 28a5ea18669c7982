// Package logging provides a custom slog handler that integrates with the Event Log system.
// It forwards logs at WARN level and above to the database-backed Event Log for auditing.
package logging

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/olegiv/ocms-transtree/internal/model"
	"github.com/olegiv/ocms-transtree/internal/store"
)

// queueSize bounds the number of events waiting to be written.
const queueSize = 256

// EventLogHandler is a slog.Handler that wraps another handler and also writes
// WARN and ERROR level logs to the Event Log database.
//
// Events are written by a background writer so that logging from inside a
// write transaction never waits on the database lock it holds.
type EventLogHandler struct {
	inner slog.Handler
	sink  *eventSink
	level slog.Level // Minimum level to forward to Event Log (default: WARN)
	attrs []slog.Attr
}

type eventSink struct {
	queries *store.Queries
	events  chan store.CreateEventParams
	done    chan struct{}
	mu      sync.RWMutex
	closed  bool
	dropped atomic.Int64
}

// NewEventLogHandler creates a new EventLogHandler that wraps the given handler.
// Logs at WARN level and above will be written to both the wrapped handler and the Event Log.
func NewEventLogHandler(inner slog.Handler, db *sql.DB) *EventLogHandler {
	return NewEventLogHandlerWithLevel(inner, db, slog.LevelWarn)
}

// NewEventLogHandlerWithLevel creates a new EventLogHandler with a custom minimum level.
func NewEventLogHandlerWithLevel(inner slog.Handler, db *sql.DB, level slog.Level) *EventLogHandler {
	sink := &eventSink{
		queries: store.New(db),
		events:  make(chan store.CreateEventParams, queueSize),
		done:    make(chan struct{}),
	}
	go sink.run()

	return &EventLogHandler{
		inner: inner,
		sink:  sink,
		level: level,
	}
}

// Enabled implements slog.Handler.
func (h *EventLogHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

// Handle implements slog.Handler.
func (h *EventLogHandler) Handle(ctx context.Context, r slog.Record) error {
	// Always forward to the inner handler first
	if err := h.inner.Handle(ctx, r); err != nil {
		return err
	}

	if r.Level >= h.level {
		h.sink.enqueue(store.CreateEventParams{
			Level:     slogLevelToEventLevel(r.Level),
			Category:  h.extractCategory(r),
			Message:   r.Message,
			Metadata:  h.extractMetadata(r),
			CreatedAt: r.Time,
		})
	}
	return nil
}

// WithAttrs implements slog.Handler.
func (h *EventLogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &EventLogHandler{
		inner: h.inner.WithAttrs(attrs),
		sink:  h.sink,
		level: h.level,
		attrs: append(h.attrs[:len(h.attrs):len(h.attrs)], attrs...),
	}
}

// WithGroup implements slog.Handler.
func (h *EventLogHandler) WithGroup(name string) slog.Handler {
	return &EventLogHandler{
		inner: h.inner.WithGroup(name),
		sink:  h.sink,
		level: h.level,
		attrs: h.attrs,
	}
}

// Close flushes pending events and stops the writer. Records logged after
// Close are still passed to the inner handler but not persisted.
func (h *EventLogHandler) Close() {
	h.sink.close()
}

// Dropped returns the number of events discarded because the queue was full.
func (h *EventLogHandler) Dropped() int64 {
	return h.sink.dropped.Load()
}

func (s *eventSink) enqueue(event store.CreateEventParams) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return
	}
	select {
	case s.events <- event:
	default:
		s.dropped.Add(1)
	}
}

func (s *eventSink) run() {
	defer close(s.done)
	for event := range s.events {
		// Background context: the event is kept even if the request was cancelled.
		_, _ = s.queries.CreateEvent(context.Background(), event)
	}
}

func (s *eventSink) close() {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.events)
	}
	s.mu.Unlock()
	<-s.done
}

// slogLevelToEventLevel converts a slog.Level to an Event Log level.
func slogLevelToEventLevel(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return model.EventLevelError
	case level >= slog.LevelWarn:
		return model.EventLevelWarning
	default:
		return model.EventLevelInfo
	}
}

// extractCategory looks for a "category" attribute on the record or the
// handler, then infers one from the message.
func (h *EventLogHandler) extractCategory(r slog.Record) string {
	var category string
	r.Attrs(func(a slog.Attr) bool {
		if a.Key == "category" {
			category = a.Value.String()
			return false
		}
		return true
	})
	if category != "" {
		return category
	}
	for _, a := range h.attrs {
		if a.Key == "category" {
			return a.Value.String()
		}
	}

	msg := strings.ToLower(r.Message)
	switch {
	case strings.Contains(msg, "sync") || strings.Contains(msg, "translation") || strings.Contains(msg, "tree"):
		return model.EventCategorySync
	case strings.Contains(msg, "language"):
		return model.EventCategoryLanguage
	case strings.Contains(msg, "page"):
		return model.EventCategoryPage
	case strings.Contains(msg, "config") || strings.Contains(msg, "setting"):
		return model.EventCategoryConfig
	case strings.Contains(msg, "cache"):
		return model.EventCategoryCache
	default:
		return model.EventCategorySystem
	}
}

// extractMetadata collects the attributes into a JSON object.
func (h *EventLogHandler) extractMetadata(r slog.Record) string {
	fields := make(map[string]string, r.NumAttrs()+len(h.attrs))
	add := func(a slog.Attr) bool {
		if a.Key != "category" {
			fields[a.Key] = a.Value.String()
		}
		return true
	}
	for _, a := range h.attrs {
		add(a)
	}
	r.Attrs(add)

	if len(fields) == 0 {
		return "{}"
	}
	data, err := json.Marshal(fields)
	if err != nil {
		return "{}"
	}
	return string(data)
}
