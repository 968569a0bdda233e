package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lysyi3m/rss-ledger/app/api"
	"github.com/lysyi3m/rss-ledger/app/blob"
	"github.com/lysyi3m/rss-ledger/app/tasks"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

type serveCommand struct {
	app            *app
	Port           string        `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	IngestInterval time.Duration `long:"ingest-interval" env:"INGEST_INTERVAL" default:"0" description:"Re-run ingestion on this interval (0 disables)"`
	Replay         bool          `long:"replay" description:"Scheduled cycles process the last captured feeds instead of fetching"`
}

func (c *serveCommand) Execute(_ []string) error {
	if c.IngestInterval < 0 {
		return fmt.Errorf("invalid configuration: ingest-interval must not be negative, got %s", c.IngestInterval)
	}

	slog.Info("Starting RSS Ledger server", "version", c.app.cfg.Version)

	db, store, err := c.app.openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	var (
		cache     blob.Store
		schedules api.HealthReporter
	)
	if c.IngestInterval > 0 {
		// The list is loaded once up front so a broken file fails startup.
		if _, err := c.app.loadSources(); err != nil {
			return err
		}

		cache, err = c.app.openCache(context.Background())
		if err != nil {
			return err
		}
		defer cache.Close()

		runner := c.app.newRunner(c.app.newFetcher(cache, c.Replay), store, reg)
		scheduler := tasks.NewScheduler(runner, c.app.loadSources, c.IngestInterval)
		schedules = scheduler

		slog.Info("Starting ingestion scheduler", "interval", c.IngestInterval, "workers", c.app.cfg.WorkerCount)
		scheduler.Start()
		defer scheduler.Stop()
	}

	handler := api.NewHandler(store, schedules, c.app.cfg.Version)
	if redisCache, ok := cache.(*blob.RedisStore); ok {
		handler.WithCache(redisCache)
	}

	httpServer := &http.Server{
		Addr:         ":" + c.Port,
		Handler:      api.NewServer(handler, reg),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "port", c.Port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	var serveErr error
	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case serveErr = <-serverErrChan:
		slog.Error("Server error", "error", serveErr)
	}

	slog.Info("Shutting down server gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}

	slog.Info("Server stopped")
	return serveErr
}
