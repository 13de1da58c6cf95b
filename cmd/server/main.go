package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/docedit/internal/api"
	"github.com/dgallion1/docedit/internal/config"
	"github.com/dgallion1/docedit/internal/editor"
	"github.com/dgallion1/docedit/internal/metrics"
	"github.com/dgallion1/docedit/internal/pipeline"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		log.Error("load configuration", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	importOpts, err := cfg.ImportOptions()
	if err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := metrics.New(cfg.StatsWindow)
	conv := &pipeline.Converter{
		Import:       importOpts,
		ExportPrefix: cfg.ExportPrefix,
		DefaultName:  cfg.DefaultExportName,
		Metrics:      m,
	}

	// Initialize pipeline.
	orch := pipeline.NewOrchestrator(pipeline.Options{
		WorkerCount:  cfg.WorkerCount,
		MaxQueueSize: cfg.MaxQueueSize,
		JobTTL:       cfg.JobTTL,
	}, conv, log)
	orch.Start(ctx)

	// Initialize HTTP server.
	srv := api.NewServer(orch, editor.NewStore(cfg.SessionTTL), m, log, cfg)
	go srv.RunSessionCleanup(ctx, time.Minute)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown. Requests drain before the workers stop so no handler submits to a
	// closed queue.
	done := make(chan struct{})
	go func() {
		defer close(done)
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Error("http shutdown", "error", err)
		}

		orch.Stop()
		cancel()
	}()

	log.Info("starting docedit",
		"port", cfg.Port,
		"workers", cfg.WorkerCount,
		"auth", cfg.APIKey != "",
	)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
	<-done
}
