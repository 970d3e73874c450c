// Package bootstrap assembles the store, adapters, orchestrator and scheduler from config.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/Vodeneev/exerciser/internal/pkg/config"
	"github.com/Vodeneev/exerciser/internal/pkg/lock"
	"github.com/Vodeneev/exerciser/internal/pkg/notify"
	"github.com/Vodeneev/exerciser/internal/pkg/storage"
	"github.com/Vodeneev/exerciser/internal/scraper/integrations"
	"github.com/Vodeneev/exerciser/internal/scraper/orchestrator"
	"github.com/Vodeneev/exerciser/internal/scraper/scheduler"
)

// Options tune a build for the calling command.
type Options struct {
	// DryRun keeps everything in memory.
	DryRun bool
	// Date pins the first day of the window; zero means today.
	Date time.Time
	// Notify enables Telegram summaries when configured.
	Notify bool
	// Schedule builds the scheduler and pass guard.
	Schedule bool
}

type App struct {
	Config       *config.Config
	Store        storage.Store
	Orchestrator *orchestrator.Orchestrator
	Scheduler    *scheduler.Scheduler

	closers []io.Closer
}

// Build wires the application. Callers must Close the returned App.
func Build(ctx context.Context, cfg *config.Config, opts Options) (_ *App, err error) {
	app := &App{Config: cfg}
	defer func() {
		if err != nil {
			_ = app.Close()
		}
	}()

	app.Store, err = openStore(ctx, cfg, opts.DryRun)
	if err != nil {
		return nil, err
	}
	app.closers = append(app.closers, app.Store)

	// Classes reference studios, so every configured location must exist first.
	if err = app.Store.UpsertStudios(ctx, storage.StudiosFromConfig(cfg)); err != nil {
		return nil, fmt.Errorf("failed to seed studios: %w", err)
	}

	list, err := integrations.Build(cfg)
	if err != nil {
		return nil, err
	}
	printSelectedIntegrations(list)

	orchOpts := []orchestrator.Option{orchestrator.WithDelay(cfg.Scraper.PolitenessDelay)}
	if !opts.Date.IsZero() {
		orchOpts = append(orchOpts, orchestrator.WithDate(opts.Date))
	}
	if opts.Notify && cfg.Telegram.BotToken != "" {
		n, nerr := notify.NewTelegramNotifier(cfg.Telegram)
		if nerr != nil {
			slog.Warn("Telegram notifications disabled", "error", nerr)
		} else {
			orchOpts = append(orchOpts, orchestrator.WithNotifier(n))
		}
	}

	app.Orchestrator, err = orchestrator.New(list, app.Store, orchOpts...)
	if err != nil {
		return nil, err
	}

	if opts.Schedule {
		guard, gerr := app.passGuard(cfg)
		if gerr != nil {
			return nil, gerr
		}
		app.Scheduler, err = scheduler.New(app.Orchestrator, cfg.Scraper, guard)
		if err != nil {
			return nil, err
		}
	}
	return app, nil
}

func openStore(ctx context.Context, cfg *config.Config, dryRun bool) (storage.Store, error) {
	opts := storage.OptionsFromConfig(cfg.Scraper)
	if dryRun {
		slog.Info("Dry run: results are kept in memory")
		return storage.NewMemoryStore(opts), nil
	}
	if cfg.Postgres.DSN == "" {
		return nil, errors.New("postgres.dsn (or DATABASE_URL) is required unless --dry-run is set")
	}
	store, err := storage.Open(ctx, cfg.Postgres, opts)
	if err != nil {
		return nil, err
	}
	return store, nil
}

// passGuard always serialises in process and adds the Redis lock when configured.
func (a *App) passGuard(cfg *config.Config) (lock.Guard, error) {
	local := lock.NewLocal()
	if cfg.Redis.Addr == "" {
		return local, nil
	}
	r, err := lock.NewRedis(cfg.Redis)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, r)
	slog.Info("Cross-replica pass lock enabled", "addr", cfg.Redis.Addr, "key", cfg.Redis.LockKey)
	return lock.Chain(local, r), nil
}

// Close releases everything Build opened, newest first.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func printSelectedIntegrations(list []integrations.Integration) {
	names := make([]string, 0, len(list))
	for _, in := range list {
		names = append(names, in.Info().Name)
	}
	sort.Strings(names)
	slog.Info("Using integrations", "count", len(names), "integrations", strings.Join(names, ", "))
}
