package ingest

import (
	"context"
	"log/slog"

	"github.com/lysyi3m/rss-ledger/app/feed"
)

// Sweeper prunes the current view to the retention window. Historical rows
// are never touched.
type Sweeper struct {
	store  Pruner
	config Config
	clock  clock
}

func NewSweeper(store Pruner, config Config, opts ...Option) *Sweeper {
	return &Sweeper{
		store:  store,
		config: config,
		clock:  newClock(opts),
	}
}

func (s *Sweeper) Sweep(ctx context.Context) (int64, error) {
	cutoff := feed.FormatTimestamp(s.clock.now().Add(-s.config.window()))

	deleted, err := s.store.DeleteCurrentBefore(ctx, cutoff)
	if err != nil {
		slog.Error("Failed to sweep current items", "cutoff", cutoff, "error", err)
		return 0, err
	}

	slog.Info("Swept current items", "cutoff", cutoff, "deleted", deleted)
	return deleted, nil
}
