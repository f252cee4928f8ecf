package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/newthinker/taengine/internal/analysis"
	"github.com/newthinker/taengine/internal/api"
	"github.com/newthinker/taengine/internal/config"
	"github.com/newthinker/taengine/internal/logger"
	"github.com/newthinker/taengine/internal/metrics"
	"github.com/newthinker/taengine/internal/notifier"
	"github.com/newthinker/taengine/internal/notifier/webhook"
	"github.com/newthinker/taengine/internal/storage/archive"
	"github.com/newthinker/taengine/internal/storage/report"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the analysis HTTP server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	boot := logger.Must(debug)
	cfg, err := loadConfig(boot)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log, err := logger.NewWithLevel(debug || cfg.Server.Mode == "debug", cfg.Log.Level)
	if err != nil {
		return err
	}
	defer log.Sync()

	deps, err := buildDependencies(cfg, log)
	if err != nil {
		return err
	}

	server, err := api.NewServer(api.Config{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		APIKey:       cfg.Server.APIKey,
		MaxBodyBytes: cfg.Server.MaxBodyBytes,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		MetricsPath:  cfg.Metrics.Path,
		Similarity:   cfg.Similarity,
	}, deps, log)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	log.Info("starting taengine server",
		zap.String("addr", server.Addr()),
		zap.Bool("metrics", deps.Metrics != nil),
		zap.Bool("archive", deps.Archiver != nil),
		zap.Bool("auth", cfg.Server.APIKey != ""),
		zap.Bool("notify", deps.Notifier != nil),
	)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-quit:
	}

	log.Info("shutting down taengine server")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	return server.Shutdown(ctx)
}

// buildDependencies wires the engine, report store, archive and metrics
// from cfg.
func buildDependencies(cfg *config.Config, log *zap.Logger) (api.Dependencies, error) {
	engine, err := analysis.NewEngine(cfg.AnalysisParams(), log.Named("engine"))
	if err != nil {
		return api.Dependencies{}, fmt.Errorf("creating engine: %w", err)
	}

	deps := api.Dependencies{
		Engine: engine,
		Store:  report.NewMemoryStore(cfg.Storage.Reports.MaxSize),
	}

	if cfg.Metrics.Enabled {
		deps.Metrics = metrics.NewRegistry()
		engine.SetRecorder(deps.Metrics)
	}

	if cfg.Storage.Archive.Enabled {
		store, err := archive.New(cfg.Storage.Archive)
		if err != nil {
			return api.Dependencies{}, fmt.Errorf("creating archive: %w", err)
		}
		deps.Archiver = analysis.NewArchiver(store, log.Named("archive"))
		if deps.Metrics != nil {
			deps.Archiver.SetObserver(deps.Metrics.RecordArchive)
		}
	}

	if cfg.Notify.Enabled {
		registry := notifier.NewRegistry()
		for _, wc := range cfg.Notify.Webhooks {
			hook, err := webhook.New(wc)
			if err != nil {
				return api.Dependencies{}, err
			}
			if err := registry.Register(hook); err != nil {
				return api.Dependencies{}, err
			}
		}
		deps.Notifier = notifier.NewDispatcher(registry, cfg.Notify.VerdictActions(), cfg.Notify.Cooldown, log.Named("notify"))
	}

	return deps, nil
}
