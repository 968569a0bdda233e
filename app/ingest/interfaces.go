package ingest

import (
	"context"

	"github.com/lysyi3m/rss-ledger/app/database"
	"github.com/lysyi3m/rss-ledger/app/feed"
	"github.com/lysyi3m/rss-ledger/app/source"
)

var (
	_ Store  = (*database.Store)(nil)
	_ Pruner = (*database.Store)(nil)
)

type Fetcher interface {
	Fetch(ctx context.Context, src source.Source) ([]byte, error)
}

type Parser interface {
	Run(data []byte) (*feed.Document, error)
}

type Store interface {
	database.WatermarkStore
	Ingest(ctx context.Context, batch database.Batch) (int, error)
}

type Pruner interface {
	DeleteCurrentBefore(ctx context.Context, cutoff string) (int64, error)
}
