package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/lessonfmt/internal/api"
	"github.com/dgallion1/lessonfmt/internal/config"
	"github.com/dgallion1/lessonfmt/internal/pipeline"
	"github.com/dgallion1/lessonfmt/internal/render"
	"github.com/dgallion1/lessonfmt/internal/stats"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	theme, err := cfg.Theme()
	if err != nil {
		log.Error("invalid theme", "path", cfg.ThemePath, "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize pipeline.
	orch := pipeline.NewOrchestrator(cfg, render.New(theme), log)
	orch.Start(ctx)

	// Initialize HTTP server.
	srv := api.NewServer(orch, stats.NewRecorder(cfg.StatsWindow, time.Hour), log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		orch.Stop()
	}()

	log.Info("starting lessonfmt", "port", cfg.Port, "workers", cfg.WorkerCount, "font", theme.FontFamily)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
