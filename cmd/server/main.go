package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/vigcrack/internal/api"
	"github.com/dgallion1/vigcrack/internal/config"
	"github.com/dgallion1/vigcrack/internal/metrics"
	"github.com/dgallion1/vigcrack/internal/pipeline"
	"github.com/dgallion1/vigcrack/internal/resultstore"
)

func main() {
	cfg := config.Load()
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	table, err := cfg.LoadTable()
	if err != nil {
		log.Error("load frequency table", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Optional remote result store.
	var store *resultstore.Client
	if cfg.ResultStoreURL != "" {
		store = resultstore.NewClient(cfg.ResultStoreURL, cfg.ResultStoreAPIKey, log)
		log.Info("result store enabled", "url", cfg.ResultStoreURL)
	}

	// Initialize pipeline.
	stats := metrics.NewLatencyStats(time.Hour)
	orch := pipeline.NewOrchestrator(cfg, cfg.AnalyzerOptions(table), store, stats, log)
	orch.Start(ctx)

	// Initialize HTTP server.
	srv := api.NewServer(orch, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
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

		if store != nil {
			store.Close()
		}
	}()

	log.Info("starting vigcrack",
		"port", cfg.Port,
		"workers", cfg.WorkerCount,
		"min_repeat", cfg.MinRepeat,
		"top_shifts", cfg.TopShifts,
	)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
