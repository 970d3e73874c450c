package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	pkgconfig "github.com/Vodeneev/exerciser/internal/pkg/config"
	"github.com/Vodeneev/exerciser/internal/pkg/logging"
)

const serviceName = "scraper"

var (
	cfgFile  string
	logLevel string

	appConfig *pkgconfig.Config
	logCloser io.Closer

	rootCmd = &cobra.Command{
		Use:           serviceName,
		Short:         "Fitness class schedule ingestion",
		Long:          `Fetches class schedules from studio brands, normalizes them and stores them in PostgreSQL.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return loadConfig()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logCloser != nil {
				_ = logCloser.Close()
			}
		},
	}
)

// Execute runs the root command.
func Execute() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	setupSignalHandler(ctx, cancel)

	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default $CONFIG_PATH or "+pkgconfig.DefaultPath+")")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override logging.level")

	rootCmd.AddCommand(serveCommand())
	rootCmd.AddCommand(runCommand())
	rootCmd.AddCommand(seedCommand())
	rootCmd.AddCommand(brandsCommand())
	rootCmd.AddCommand(discoverCommand())
}

func loadConfig() error {
	path := pkgconfig.ResolvePath(cfgFile)
	slog.Info("Loading config", "path", path)

	cfg, err := pkgconfig.Load(path)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}

	_, closer, err := logging.SetupLogger(cfg.Logging, serviceName)
	if err != nil {
		slog.Warn("Failed to setup logging, continuing with default logger", "error", err)
	} else {
		logCloser = closer
	}

	appConfig = cfg
	return nil
}

func setupSignalHandler(ctx context.Context, cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigChan:
			slog.Info("Received shutdown signal, stopping...", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigChan)
	}()
}
