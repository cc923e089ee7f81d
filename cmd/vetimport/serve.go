package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/JonMunkholm/vetimport/internal/config"
	"github.com/JonMunkholm/vetimport/internal/core"
	"github.com/JonMunkholm/vetimport/internal/metrics"
	"github.com/JonMunkholm/vetimport/internal/store"
	"github.com/JonMunkholm/vetimport/internal/web"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the import API and dashboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return runServe(cmd.Context(), cfg)
		},
	}
}

func runServe(ctx context.Context, cfg *config.Config) error {
	repo, err := store.Open(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer repo.Close()

	slog.Info("store opened",
		"driver", cfg.Database.Driver,
		"import_max_concurrent", cfg.Import.MaxConcurrent,
		"rate_limit_enabled", cfg.Rate.Enabled,
	)

	m := metrics.New()
	svc := core.NewService(repo, core.ServiceConfig{
		MaxConcurrent:    cfg.Import.MaxConcurrent,
		MaxWait:          cfg.Import.MaxWaitTime,
		Timeout:          cfg.Import.Timeout,
		HistorySize:      cfg.Import.HistorySize,
		ContinueOnError:  cfg.Import.ContinueOnError,
		ProgressInterval: cfg.Import.ProgressInterval,
		Recorder:         m,
	})
	server := web.NewServer(svc, cfg, m)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(server.Start)
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if status := svc.LimiterStatus(); status.Active > 0 {
			slog.Info("waiting for imports to complete", "active", status.Active)
		}
		if err := svc.Shutdown(shutdownCtx); err != nil {
			slog.Warn("imports did not complete in time", "error", err)
		}
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
