// Package scheduler triggers ingestion passes on a cron schedule.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/Vodeneev/exerciser/internal/pkg/config"
	"github.com/Vodeneev/exerciser/internal/pkg/lock"
	"github.com/Vodeneev/exerciser/internal/pkg/metrics"
	"github.com/Vodeneev/exerciser/internal/scraper/orchestrator"
)

// ErrPassRunning is returned by RunPass when another pass holds the guard.
var ErrPassRunning = errors.New("scheduler: a pass is already running")

// Runner is the part of the orchestrator the scheduler drives.
type Runner interface {
	RunAll(ctx context.Context) orchestrator.Stats
}

type Scheduler struct {
	runner       Runner
	guard        lock.Guard
	cron         *cron.Cron
	expr         string
	schedule     cron.Schedule
	runOnStartup bool
	passTimeout  time.Duration

	mu      sync.Mutex
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	entryID cron.EntryID
}

var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// New validates the schedule. A nil guard falls back to an in-process one.
func New(runner Runner, cfg config.ScraperConfig, guard lock.Guard) (*Scheduler, error) {
	if runner == nil {
		return nil, errors.New("scheduler: runner is required")
	}
	schedule, err := parser.Parse(cfg.Schedule)
	if err != nil {
		return nil, fmt.Errorf("failed to parse schedule %q: %w", cfg.Schedule, err)
	}
	if guard == nil {
		guard = lock.NewLocal()
	}
	return &Scheduler{
		runner:       runner,
		guard:        guard,
		cron:         cron.New(cron.WithParser(parser), cron.WithChain(cron.Recover(cron.DefaultLogger))),
		expr:         cfg.Schedule,
		schedule:     schedule,
		runOnStartup: cfg.RunOnStartup,
		passTimeout:  cfg.PassTimeout,
	}, nil
}

// Start registers the cron entry and returns immediately.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ctx != nil {
		return errors.New("scheduler: already started")
	}
	s.ctx, s.cancel = context.WithCancel(ctx)

	id, err := s.cron.AddFunc(s.expr, func() {
		slog.Info("Cron triggered ingestion pass", "schedule", s.expr)
		s.background()
	})
	if err != nil {
		s.cancel()
		return fmt.Errorf("failed to add cron job: %w", err)
	}
	s.entryID = id
	s.cron.Start()

	slog.Info("Scheduler started", "schedule", s.expr, "next_run", s.schedule.Next(time.Now()).Format(time.RFC3339))

	if s.runOnStartup {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.background()
		}()
	}
	return nil
}

func (s *Scheduler) background() {
	if _, err := s.RunPass(s.ctx); err != nil && !errors.Is(err, ErrPassRunning) {
		slog.Error("Scheduled pass failed", "error", err)
	}
}

// RunPass runs one guarded pass. Overlapping calls get ErrPassRunning.
func (s *Scheduler) RunPass(ctx context.Context) (orchestrator.Stats, error) {
	release, ok, err := s.guard.TryAcquire(ctx)
	if err != nil {
		return orchestrator.Stats{}, fmt.Errorf("failed to acquire pass guard: %w", err)
	}
	if !ok {
		metrics.PassesSkippedTotal.Inc()
		slog.Warn("Skipping ingestion pass, previous pass still running")
		return orchestrator.Stats{}, ErrPassRunning
	}
	defer release()

	if s.passTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.passTimeout)
		defer cancel()
	}
	return s.runner.RunAll(ctx), nil
}

// Stop removes the schedule and waits for running passes to return.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()

	stopCtx := s.cron.Stop()
	if cancel != nil {
		cancel()
	}
	<-stopCtx.Done()
	s.wg.Wait()
	slog.Info("Scheduler stopped")
}

// Next reports the next scheduled run, zero before Start.
func (s *Scheduler) Next() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.entryID == 0 {
		return time.Time{}
	}
	return s.schedule.Next(time.Now())
}
