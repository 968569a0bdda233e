package tasks

import (
	"context"

	"github.com/lysyi3m/rss-ledger/app/ingest"
	"github.com/lysyi3m/rss-ledger/app/source"
)

type SourceProcessor interface {
	ProcessSource(ctx context.Context, src source.Source) ingest.ProcessingResult
}

type Sweeper interface {
	Sweep(ctx context.Context) (int64, error)
}

// CycleRunner is what the scheduler drives on every tick.
type CycleRunner interface {
	RunCycle(ctx context.Context, sources []source.Source) CycleSummary
}
