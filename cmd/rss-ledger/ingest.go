package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
)

type ingestCommand struct {
	app    *app
	Replay bool `long:"replay" description:"Process the last captured feeds instead of fetching"`
}

// Execute runs one cycle. Per-source failures are logged and never change the
// exit status.
func (c *ingestCommand) Execute(_ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, store, err := c.app.openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	sources, err := c.app.loadSources()
	if err != nil {
		return err
	}

	cache, err := c.app.openCache(ctx)
	if err != nil {
		return err
	}
	defer cache.Close()

	runner := c.app.newRunner(c.app.newFetcher(cache, c.Replay), store, prometheus.NewRegistry())
	runner.RunCycle(ctx, sources)

	return nil
}
