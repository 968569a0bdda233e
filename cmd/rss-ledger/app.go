package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/lysyi3m/rss-ledger/app/blob"
	"github.com/lysyi3m/rss-ledger/app/cfg"
	"github.com/lysyi3m/rss-ledger/app/database"
	"github.com/lysyi3m/rss-ledger/app/feed"
	"github.com/lysyi3m/rss-ledger/app/fetcher"
	"github.com/lysyi3m/rss-ledger/app/ingest"
	"github.com/lysyi3m/rss-ledger/app/source"
	"github.com/lysyi3m/rss-ledger/app/tasks"
	"github.com/prometheus/client_golang/prometheus"
)

// app carries what every command shares: the parsed options, the resolved
// configuration and the output streams.
type app struct {
	opts   cfg.Options
	cfg    *cfg.Cfg
	stdout io.Writer
	stderr io.Writer
}

func (a *app) openStore() (*database.DB, *database.Store, error) {
	slog.Debug("Opening database", "path", a.cfg.DBPath)

	db, version, err := database.OpenAndMigrate(a.cfg.DBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open store: %w", err)
	}

	slog.Debug("Database ready", "path", a.cfg.DBPath, "schema_version", version)
	return db, database.NewStore(db), nil
}

func (a *app) loadSources() ([]source.Source, error) {
	sources, err := source.NewLoader(a.cfg.SourcesFile).Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load sources: %w", err)
	}

	slog.Info("Loaded sources", "path", a.cfg.SourcesFile, "count", len(sources), "with_feed", len(source.WithFeed(sources)))
	return sources, nil
}

func (a *app) openCache(ctx context.Context) (blob.Store, error) {
	if a.cfg.RedisAddr != "" {
		store, err := blob.NewRedisStore(ctx, a.cfg.RedisAddr, a.cfg.RedisTTL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		slog.Debug("Capturing raw feeds in redis", "addr", a.cfg.RedisAddr, "ttl", a.cfg.RedisTTL)
		return store, nil
	}

	slog.Debug("Capturing raw feeds on disk", "dir", a.cfg.CacheDir)
	return blob.NewFileStore(a.cfg.CacheDir), nil
}

func (a *app) newFetcher(cache blob.Store, replay bool) ingest.Fetcher {
	if replay {
		slog.Info("Replaying captured feeds instead of fetching")
		return fetcher.NewReplay(cache)
	}

	return fetcher.NewHTTPFetcher(nil, cache, fetcher.Config{
		UserAgent: a.cfg.UserAgent,
		Timeout:   a.cfg.FetchTimeout,
		MaxBytes:  a.cfg.MaxFeedBytes,
	})
}

func (a *app) newRunner(f ingest.Fetcher, store *database.Store, reg prometheus.Registerer) *tasks.Runner {
	config := ingest.Config{RetentionWindow: a.cfg.RetentionWindow}

	pipeline := ingest.NewPipeline(f, feed.NewParser(), store, config)
	sweeper := ingest.NewSweeper(store, config)

	return tasks.NewRunner(pipeline, sweeper, a.cfg.WorkerCount, tasks.NewMetrics(reg))
}
