// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package scheduler runs the periodic language tree audit.
package scheduler

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/olegiv/ocms-transtree/internal/model"
	"github.com/olegiv/ocms-transtree/internal/service"
	"github.com/olegiv/ocms-transtree/internal/store"
	"github.com/olegiv/ocms-transtree/internal/treesync"
)

// Scheduler runs the tree congruence audit on a cron schedule.
type Scheduler struct {
	db       *sql.DB
	sync     *treesync.Synchronizer
	events   *service.EventService
	cron     *cron.Cron
	schedule string
	logger   *slog.Logger

	mu           sync.Mutex
	lastRun      time.Time
	lastFindings int
}

// New creates a new scheduler instance. schedule is a standard cron spec
// or descriptor such as "@hourly".
func New(db *sql.DB, synchronizer *treesync.Synchronizer, events *service.EventService, schedule string, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		db:       db,
		sync:     synchronizer,
		events:   events,
		cron:     cron.New(),
		schedule: schedule,
		logger:   logger,
	}
}

// Start registers the audit job and starts the cron runner.
func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc(s.schedule, func() {
		if _, err := s.RunAudit(context.Background()); err != nil {
			s.logger.Error("tree audit failed", "category", model.EventCategorySync, "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("scheduling tree audit %q: %w", s.schedule, err)
	}

	s.cron.Start()
	s.logger.Info("scheduler started", "jobs", len(s.cron.Entries()), "audit_schedule", s.schedule)
	return nil
}

// Stop gracefully stops the scheduler, waiting for a running audit.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}

// RunAudit audits every site once and records a summary event. Individual
// findings are logged by the synchronizer.
func (s *Scheduler) RunAudit(ctx context.Context) (int, error) {
	start := time.Now()
	findings, err := s.sync.AuditAll(ctx, store.New(s.db))
	if err != nil {
		return findings, err
	}

	s.mu.Lock()
	s.lastRun = start
	s.lastFindings = findings
	s.mu.Unlock()

	level := model.EventLevelInfo
	if findings > 0 {
		level = model.EventLevelWarning
	}
	metadata := map[string]any{
		"findings":    findings,
		"duration_ms": time.Since(start).Milliseconds(),
	}
	if err := s.events.LogSyncEvent(ctx, level, "Language tree audit completed", metadata); err != nil {
		s.logger.Warn("failed to log tree audit event", "error", err)
	}
	s.logger.Info("tree audit completed", "findings", findings, "duration", time.Since(start))
	return findings, nil
}

// LastRun returns when the last audit started and how many findings it had.
// The zero time means no audit has completed yet.
func (s *Scheduler) LastRun() (time.Time, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastRun, s.lastFindings
}
