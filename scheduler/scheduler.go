// Package scheduler runs the nightly cleanup of expired records.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/ssovee/Open-Data-API/database"
	"github.com/ssovee/Open-Data-API/models"
)

// Task is one cleanup step. Run reports how many records it removed.
type Task struct {
	Name    string
	Run     func(ctx context.Context) (int64, error)
	Observe func(deleted int64, err error)
}

// ExpiredNotes deletes notes whose expiry has passed.
func ExpiredNotes(repo *database.Repository[models.Note], now func() time.Time) Task {
	return Task{
		Name: "notes",
		Run: func(ctx context.Context) (int64, error) {
			return repo.DeleteWhere(ctx, "expires_at <= ?", now())
		},
	}
}

type Scheduler struct {
	schedule string
	tasks    []Task
	cron     *cron.Cron
	mu       sync.Mutex
	logger   *slog.Logger
	running  bool
}

func New(schedule string, logger *slog.Logger, tasks ...Task) *Scheduler {
	return &Scheduler{
		schedule: schedule,
		tasks:    tasks,
		cron:     cron.New(),
		logger:   logger.With("component", "scheduler"),
	}
}

// Start validates the cron expression and schedules the cleanup. An empty
// schedule disables it. The scheduler stops when ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.schedule == "" {
		s.logger.Info("purge schedule not configured, skipping scheduler")
		return nil
	}
	if _, err := cron.ParseStandard(s.schedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", s.schedule, err)
	}
	if _, err := s.cron.AddFunc(s.schedule, func() { s.RunOnce(ctx) }); err != nil {
		return fmt.Errorf("failed to schedule purge: %w", err)
	}

	s.cron.Start()
	s.running = true
	s.logger.Info("scheduler started", "schedule", s.schedule, "tasks", len(s.tasks))

	go func() {
		<-ctx.Done()
		s.Stop()
	}()
	return nil
}

// RunOnce runs every task in order and returns the total removed.
// A failing task is logged and does not stop the others.
func (s *Scheduler) RunOnce(ctx context.Context) int64 {
	var total int64
	for _, t := range s.tasks {
		start := time.Now()
		n, err := t.Run(ctx)
		if t.Observe != nil {
			t.Observe(n, err)
		}
		if err != nil {
			s.logger.Error("purge failed", "task", t.Name, "error", err)
			continue
		}
		total += n
		s.logger.Info("purge completed", "task", t.Name, "deleted", n, "duration_ms", time.Since(start).Milliseconds())
	}
	return total
}

// Stop stops the scheduler and waits for a running purge to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		<-s.cron.Stop().Done()
		s.running = false
		s.logger.Info("scheduler stopped")
	}
}

func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// NextRun returns the next scheduled purge, or nil when not scheduled.
func (s *Scheduler) NextRun() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.cron.Entries()
	if !s.running || len(entries) == 0 {
		return nil
	}
	next := entries[0].Next
	return &next
}
