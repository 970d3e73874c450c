// Package orchestrator runs registered adapters one after another and hands their results to
// persistence.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Vodeneev/exerciser/internal/pkg/metrics"
	"github.com/Vodeneev/exerciser/internal/pkg/models"
	"github.com/Vodeneev/exerciser/internal/pkg/storage"
	"github.com/Vodeneev/exerciser/internal/scraper/integrations"
)

// Notifier receives the summary of every completed pass.
type Notifier interface {
	NotifyPass(ctx context.Context, stats Stats) error
}

// Outcome is the per-adapter line of a pass.
type Outcome struct {
	Brand     string              `json:"brand"`
	Name      string              `json:"name"`
	Status    models.ScrapeStatus `json:"status"`
	Tier      models.DataTier     `json:"tier,omitempty"`
	Classes   int                 `json:"classes"`
	Persisted bool                `json:"persisted"`
	Error     string              `json:"error,omitempty"`
	Duration  time.Duration       `json:"duration"`
	StartedAt time.Time           `json:"started_at"`
}

// Stats aggregates one pass.
type Stats struct {
	PassID       uuid.UUID     `json:"pass_id"`
	Total        int           `json:"total"`
	Success      int           `json:"success"`
	Failed       int           `json:"failed"`
	TotalClasses int           `json:"total_classes"`
	Duration     time.Duration `json:"duration"`
	Outcomes     []Outcome     `json:"outcomes"`
}

// Orchestrator owns the adapter list for its lifetime. Passes are strictly sequential.
type Orchestrator struct {
	integrations []integrations.Integration
	writer       storage.ResultWriter
	delay        time.Duration
	notifier     Notifier
	now          func() time.Time
	date         func() time.Time
	sleep        func(ctx context.Context, d time.Duration) error
}

type Option func(*Orchestrator)

// WithDelay sets the politeness pause between adapters.
func WithDelay(d time.Duration) Option {
	return func(o *Orchestrator) { o.delay = d }
}

// WithNotifier attaches a pass summary sink.
func WithNotifier(n Notifier) Option {
	return func(o *Orchestrator) { o.notifier = n }
}

// WithClock replaces time.Now for timestamps and the schedule date.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// WithDate pins the first day of the fetched window.
func WithDate(date time.Time) Option {
	return func(o *Orchestrator) { o.date = func() time.Time { return date } }
}

// New validates the adapter list. Empty lists, nil adapters, missing brands and duplicate
// names or brands are rejected.
func New(list []integrations.Integration, writer storage.ResultWriter, opts ...Option) (*Orchestrator, error) {
	if writer == nil {
		return nil, fmt.Errorf("%w: result writer is required", integrations.ErrInvalidRegistration)
	}
	if len(list) == 0 {
		return nil, fmt.Errorf("%w: no integrations", integrations.ErrInvalidRegistration)
	}

	seen := make(map[string]struct{}, len(list)*2)
	for i, in := range list {
		if in == nil {
			return nil, fmt.Errorf("%w: integration %d is nil", integrations.ErrInvalidRegistration, i)
		}
		info := in.Info()
		if strings.TrimSpace(info.Brand) == "" {
			return nil, fmt.Errorf("%w: integration %d has no brand", integrations.ErrInvalidRegistration, i)
		}
		keys := make(map[string]struct{}, 2)
		for _, key := range []string{info.Name, info.Brand} {
			if k := strings.ToLower(strings.TrimSpace(key)); k != "" {
				keys[k] = struct{}{}
			}
		}
		for k := range keys {
			if _, dup := seen[k]; dup {
				return nil, fmt.Errorf("%w: duplicate integration %q", integrations.ErrInvalidRegistration, k)
			}
			seen[k] = struct{}{}
		}
	}

	o := &Orchestrator{
		integrations: list,
		writer:       writer,
		delay:        time.Second,
		now:          time.Now,
		sleep:        sleepCtx,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.date == nil {
		o.date = o.now
	}
	return o, nil
}

// Integrations returns the adapters in run order.
func (o *Orchestrator) Integrations() []integrations.Integration {
	out := make([]integrations.Integration, len(o.integrations))
	copy(out, o.integrations)
	return out
}

// RunAll runs every adapter in registration order. One adapter's failure never stops the pass.
func (o *Orchestrator) RunAll(ctx context.Context) Stats {
	start := o.now()
	stats := Stats{
		PassID:   uuid.New(),
		Total:    len(o.integrations),
		Outcomes: make([]Outcome, 0, len(o.integrations)),
	}
	logger := slog.With("pass_id", stats.PassID.String())
	logger.Info("Starting ingestion pass", "integrations", stats.Total)

	date := o.date()
	for i, in := range o.integrations {
		if i > 0 && o.delay > 0 {
			if err := o.sleep(ctx, o.delay); err != nil {
				logger.Warn("Pass interrupted", "error", err, "remaining", stats.Total-i)
				for _, rest := range o.integrations[i:] {
					stats.Failed++
					stats.Outcomes = append(stats.Outcomes, Outcome{
						Brand:  rest.Info().Brand,
						Name:   rest.Info().Name,
						Status: models.StatusError,
						Error:  err.Error(),
					})
				}
				break
			}
		}

		outcome := o.runAndPersist(ctx, logger, in, date)
		if outcome.Persisted {
			stats.Success++
			stats.TotalClasses += outcome.Classes
		} else {
			stats.Failed++
		}
		stats.Outcomes = append(stats.Outcomes, outcome)
	}

	stats.Duration = o.now().Sub(start)
	metrics.PassDuration.Observe(stats.Duration.Seconds())
	logger.Info("Ingestion pass completed",
		"total", stats.Total,
		"success", stats.Success,
		"failed", stats.Failed,
		"total_classes", stats.TotalClasses,
		"duration", stats.Duration)

	if o.notifier != nil {
		if err := o.notifier.NotifyPass(ctx, stats); err != nil {
			logger.Warn("Failed to send pass summary", "error", err)
		}
	}
	return stats
}

func (o *Orchestrator) runAndPersist(ctx context.Context, logger *slog.Logger, in integrations.Integration, date time.Time) Outcome {
	info := in.Info()
	outcome := Outcome{Brand: info.Brand, Name: info.Name, StartedAt: o.now()}

	result := in.Run(ctx, date)
	outcome.Status = result.Status
	outcome.Tier = result.Tier
	outcome.Classes = result.ClassCount
	outcome.Duration = result.Duration

	if !result.Succeeded() {
		outcome.Error = result.Message
		o.logFailure(ctx, logger, result)
		return outcome
	}

	if err := o.writer.WriteScrapeResult(ctx, result); err != nil {
		metrics.PersistFailuresTotal.WithLabelValues(info.Brand).Inc()
		outcome.Error = err.Error()
		logger.Error("Failed to persist scrape result", "brand", info.Brand, "error", err)
		o.logFailure(ctx, logger, persistFailure(result, err))
		return outcome
	}

	outcome.Persisted = true
	metrics.ObservePersisted(info.Brand, o.now())
	return outcome
}

// logFailure appends an error row so failed brands stay visible in the audit log.
func (o *Orchestrator) logFailure(ctx context.Context, logger *slog.Logger, result models.ScrapeResult) {
	if err := o.writer.AppendScrapeLog(ctx, models.NewScrapeLog(result, o.now())); err != nil {
		logger.Warn("Failed to record failed run", "brand", result.Brand, "error", err)
	}
}

// persistFailure describes a run whose write was rolled back, so nothing of it was stored.
func persistFailure(result models.ScrapeResult, err error) models.ScrapeResult {
	result.Status = models.StatusError
	result.Message = fmt.Sprintf("failed to persist %d classes", result.ClassCount)
	result.ClassCount = 0
	result.Classes = nil
	result.Err = err
	return result
}

// RunOne runs a single adapter chosen by brand or registration name, case-insensitively.
// Unknown names return ErrNotFound without touching the store. A failed run returns its
// underlying error, as does a failed write.
func (o *Orchestrator) RunOne(ctx context.Context, name string) (models.ScrapeResult, error) {
	in, err := o.Find(name)
	if err != nil {
		return models.ScrapeResult{}, err
	}

	logger := slog.With("brand", in.Info().Brand)
	result := in.Run(ctx, o.date())
	if !result.Succeeded() {
		o.logFailure(ctx, logger, result)
		if result.Err != nil {
			return result, result.Err
		}
		return result, errors.New(result.Message)
	}

	if err := o.writer.WriteScrapeResult(ctx, result); err != nil {
		metrics.PersistFailuresTotal.WithLabelValues(result.Brand).Inc()
		o.logFailure(ctx, logger, persistFailure(result, err))
		return result, fmt.Errorf("persist %s: %w", result.Brand, err)
	}
	metrics.ObservePersisted(result.Brand, o.now())
	return result, nil
}

// Find looks an adapter up by brand or name.
func (o *Orchestrator) Find(name string) (integrations.Integration, error) {
	name = strings.TrimSpace(name)
	for _, in := range o.integrations {
		info := in.Info()
		if strings.EqualFold(info.Brand, name) || strings.EqualFold(info.Name, name) {
			return in, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", integrations.ErrNotFound, name)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
