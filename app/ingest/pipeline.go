package ingest

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/lysyi3m/rss-ledger/app/database"
	"github.com/lysyi3m/rss-ledger/app/feed"
	"github.com/lysyi3m/rss-ledger/app/source"
	"github.com/samber/lo"
)

type ProcessingResult struct {
	SourceID      int64
	SourceName    string
	Bootstrap     bool
	Unchanged     bool
	ItemsInserted int
	ItemsSkipped  int
	NewWatermark  string
	Duration      time.Duration
	Err           error
}

func (r ProcessingResult) Failed() bool {
	return r.Err != nil
}

// Pipeline takes one source from raw feed to committed rows.
type Pipeline struct {
	fetcher Fetcher
	parser  Parser
	store   Store
	config  Config
	clock   clock
}

func NewPipeline(fetcher Fetcher, parser Parser, store Store, config Config, opts ...Option) *Pipeline {
	return &Pipeline{
		fetcher: fetcher,
		parser:  parser,
		store:   store,
		config:  config,
		clock:   newClock(opts),
	}
}

// ProcessSource runs one ingestion pass for src. Failures are reported in the
// result and leave the store untouched.
func (p *Pipeline) ProcessSource(ctx context.Context, src source.Source) ProcessingResult {
	began := time.Now()
	// The fetch-start time becomes the new watermark, so it is taken before
	// any I/O.
	t0 := p.clock.now()

	result := ProcessingResult{
		SourceID:   src.ID,
		SourceName: src.Name,
	}

	p.process(ctx, src, t0, &result)
	result.Duration = time.Since(began)

	return result
}

func (p *Pipeline) process(ctx context.Context, src source.Source, t0 time.Time, result *ProcessingResult) {
	data, err := p.fetcher.Fetch(ctx, src)
	if err != nil {
		slog.Warn("Failed to fetch feed", "source", src.Name, "url", src.FeedURL, "error", err)
		result.Err = err
		return
	}

	doc, err := p.parser.Run(data)
	if err != nil {
		if errors.Is(err, feed.ErrMissingBuildTimestamp) {
			slog.Warn("Feed has no build timestamp", "source", src.Name)
		} else {
			slog.Warn("Failed to parse feed", "source", src.Name, "error", err)
		}
		result.Err = err
		return
	}

	watermark, found, err := p.store.GetWatermark(ctx, src.ID)
	if err != nil {
		slog.Error("Failed to load watermark", "source", src.Name, "error", err)
		result.Err = err
		return
	}

	batch := database.Batch{
		SourceID:   src.ID,
		SourceName: src.Name,
		Watermark:  feed.FormatTimestamp(t0),
		Items:      doc.Items,
	}

	if !found {
		result.Bootstrap = true
		batch.BootstrapWatermark = feed.FormatTimestamp(t0.Add(-p.config.window()))
		slog.Info("Bootstrapping source", "source", src.Name, "items", len(doc.Items))
	} else {
		if doc.BuildTimestamp <= watermark {
			slog.Debug("Feed unchanged since last run", "source", src.Name,
				"build_timestamp", doc.BuildTimestamp, "watermark", watermark)
			result.Unchanged = true
			return
		}

		batch.Items = lo.Filter(doc.Items, func(item feed.Item, _ int) bool {
			return item.PubDate >= watermark
		})
		result.ItemsSkipped = len(doc.Items) - len(batch.Items)
	}

	inserted, err := p.store.Ingest(ctx, batch)
	if err != nil {
		slog.Error("Failed to store items", "source", src.Name, "error", err)
		result.Err = err
		return
	}

	result.ItemsInserted = inserted
	// The store never moves a watermark backwards, even if the clock did.
	result.NewWatermark = max(batch.Watermark, watermark)

	slog.Info("Processed source",
		"source", src.Name,
		"inserted", inserted,
		"skipped", result.ItemsSkipped,
		"watermark", result.NewWatermark)
}
