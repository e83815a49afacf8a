package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/mentorhub/interviews/internal/config"
)

// Maintainer runs the interview maintenance jobs
type Maintainer interface {
	Reconcile(ctx context.Context, limit int) (int, error)
	ExpireStale(ctx context.Context, olderThan time.Duration, limit int) (int, error)
}

// Scheduler handles periodic maintenance tasks
type Scheduler struct {
	maintainer Maintainer
	config     *config.SchedulerConfig
	interview  *config.InterviewConfig
	stopChan   chan struct{}
	stopOnce   sync.Once
	wg         sync.WaitGroup
}

// NewScheduler creates a new scheduler
func NewScheduler(maintainer Maintainer, cfg *config.SchedulerConfig, interviewCfg *config.InterviewConfig) *Scheduler {
	return &Scheduler{
		maintainer: maintainer,
		config:     cfg,
		interview:  interviewCfg,
		stopChan:   make(chan struct{}),
	}
}

// Start starts all enabled tasks
func (s *Scheduler) Start() {
	slog.Info("Starting scheduler",
		"reconcile_enabled", s.config.EnableReconcile,
		"expiry_enabled", s.interview.ExpiryEnabled)

	if s.config.EnableReconcile && s.config.ReconcileInterval > 0 {
		s.startIntervalTask(s.config.ReconcileInterval, "reconcile_applications", s.reconcile)
	}

	if s.interview.ExpiryEnabled && s.config.ExpiryInterval > 0 {
		s.startIntervalTask(s.config.ExpiryInterval, "expire_stale_interviews", s.expireStale)
	}

	slog.Info("Scheduler started")
}

// Stop stops the scheduler and waits for running tasks to return
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		slog.Info("Stopping scheduler")
		close(s.stopChan)
	})
	s.wg.Wait()
}

func (s *Scheduler) startIntervalTask(interval time.Duration, taskName string, task func(ctx context.Context)) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.scheduleIntervalTask(interval, taskName, task)
	}()
}

// scheduleIntervalTask runs a task at regular intervals. The context passed to
// the task is cancelled when the scheduler stops.
func (s *Scheduler) scheduleIntervalTask(interval time.Duration, taskName string, task func(ctx context.Context)) {
	slog.Info("Starting interval task", "task", taskName, "interval", interval)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		select {
		case <-s.stopChan:
			cancel()
		case <-ctx.Done():
		}
	}()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Run immediately on start
	slog.Debug("Running interval task", "task", taskName)
	task(ctx)

	for {
		select {
		case <-ticker.C:
			slog.Debug("Running interval task", "task", taskName)
			task(ctx)
		case <-s.stopChan:
			return
		}
	}
}

func (s *Scheduler) reconcile(ctx context.Context) {
	repaired, err := s.maintainer.Reconcile(ctx, s.interview.ReconcileBatch)
	if err != nil {
		slog.Error("Application reconcile failed", "error", err)
		return
	}
	if repaired > 0 {
		slog.Info("Repaired applications", "count", repaired)
	}
}

func (s *Scheduler) expireStale(ctx context.Context) {
	expired, err := s.maintainer.ExpireStale(ctx, s.interview.MaxDuration, s.interview.ReconcileBatch)
	if err != nil {
		slog.Error("Expiring stale interviews failed", "error", err)
		return
	}
	if expired > 0 {
		slog.Info("Expired stale interviews", "count", expired, "older_than", s.interview.MaxDuration)
	}
}
