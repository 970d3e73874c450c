package main

import (
	"fmt"
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/Vodeneev/exerciser/internal/pkg/health"
	"github.com/Vodeneev/exerciser/internal/scraper/bootstrap"
)

func serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run passes on the configured schedule and serve the ops endpoints",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			app, err := bootstrap.Build(ctx, appConfig, bootstrap.Options{Notify: true, Schedule: true})
			if err != nil {
				return fmt.Errorf("failed to build scraper: %w", err)
			}
			defer app.Close()

			gin.SetMode(gin.ReleaseMode)
			health.Run(ctx, appConfig.Health.Addr, serviceName, health.Deps{
				Pass:       app.Scheduler,
				Brand:      app.Orchestrator,
				Logs:       app.Store,
				RunTimeout: appConfig.Scraper.PassTimeout,
			})

			if err := app.Scheduler.Start(ctx); err != nil {
				return err
			}

			<-ctx.Done()
			app.Scheduler.Stop()
			slog.Info("Scraper stopped gracefully")
			return nil
		},
	}
}
