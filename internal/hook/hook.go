// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package hook provides the explicit event registry that structural edits
// are announced through. Handlers run synchronously inside the caller's
// transaction, so an error from any handler aborts the whole edit.
package hook

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
)

// Hook names fired by the services.
const (
	PageAfterCreate          = "page.after_create"
	PageAfterMove            = "page.after_move"
	PageBeforeDelete         = "page.before_delete"
	LanguageAfterCreate      = "language.after_create"
	SiteLanguagesAfterUpdate = "site_languages.after_update"
)

// Func is a hook handler. It receives the event payload and returns the
// (possibly replaced) payload handed to the next handler.
type Func func(ctx context.Context, data any) (any, error)

// Handler wraps a Func with metadata.
type Handler struct {
	Name     string // Name of the handler for debugging
	Owner    string // Component that registered the handler
	Priority int    // Lower priority runs first (default: 0)
	Fn       Func
}

// Registry manages hook registration and execution.
type Registry struct {
	hooks  map[string][]Handler
	logger *slog.Logger
	mu     sync.RWMutex
}

// NewRegistry creates a new hook registry.
func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		hooks:  make(map[string][]Handler),
		logger: logger,
	}
}

// Register adds a handler for the given hook name. Handlers with equal
// priority keep registration order.
func (r *Registry) Register(name string, handler Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()

	handlers := append(r.hooks[name], handler)
	slices.SortStableFunc(handlers, func(a, b Handler) int {
		return a.Priority - b.Priority
	})
	r.hooks[name] = handlers

	r.logger.Debug("hook registered",
		"hook", name,
		"handler", handler.Name,
		"owner", handler.Owner,
		"priority", handler.Priority,
	)
}

// RegisterFunc is a convenience method to register a handler with default priority.
func (r *Registry) RegisterFunc(name, handlerName, owner string, fn Func) {
	r.Register(name, Handler{
		Name:  handlerName,
		Owner: owner,
		Fn:    fn,
	})
}

// Call executes all handlers for the given hook in priority order, passing
// the payload through each. Execution stops at the first error.
func (r *Registry) Call(ctx context.Context, name string, data any) (any, error) {
	r.mu.RLock()
	handlers := slices.Clone(r.hooks[name])
	r.mu.RUnlock()

	if len(handlers) == 0 {
		return data, nil
	}

	r.logger.Debug("calling hooks", "hook", name, "handlers", len(handlers))

	current := data
	for _, handler := range handlers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		result, err := handler.Fn(ctx, current)
		if err != nil {
			r.logger.Debug("hook handler failed",
				"hook", name,
				"handler", handler.Name,
				"owner", handler.Owner,
				"error", err,
			)
			return nil, fmt.Errorf("hook %s handler %s: %w", name, handler.Name, err)
		}
		current = result
	}
	return current, nil
}

// CallNoResult executes hooks without expecting a modified result.
func (r *Registry) CallNoResult(ctx context.Context, name string, data any) error {
	_, err := r.Call(ctx, name, data)
	return err
}

// HasHandlers returns true if there are handlers registered for the hook.
func (r *Registry) HasHandlers(name string) bool {
	return r.HandlerCount(name) > 0
}

// HandlerCount returns the number of handlers registered for a hook.
func (r *Registry) HandlerCount(name string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.hooks[name])
}

// Names returns all hook names with at least one handler, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.hooks))
	for name, handlers := range r.hooks {
		if len(handlers) > 0 {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names
}

// Unregister removes all handlers for a hook registered by owner.
func (r *Registry) Unregister(name, owner string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.hooks[name] = slices.DeleteFunc(r.hooks[name], func(h Handler) bool {
		return h.Owner == owner
	})

	r.logger.Debug("hooks unregistered",
		"hook", name,
		"owner", owner,
		"remaining", len(r.hooks[name]),
	)
}

// UnregisterAll removes every handler registered by owner.
func (r *Registry) UnregisterAll(owner string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for name, handlers := range r.hooks {
		r.hooks[name] = slices.DeleteFunc(handlers, func(h Handler) bool {
			return h.Owner == owner
		})
	}
}
