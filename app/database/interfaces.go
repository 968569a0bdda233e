package database

import (
	"context"
)

// WatermarkStore reads and advances the per-source last processed timestamp.
type WatermarkStore interface {
	GetWatermark(ctx context.Context, sourceID int64) (string, bool, error)
	SetWatermark(ctx context.Context, sourceID int64, timestamp string) error
}

type ReadStore interface {
	ListCurrent(ctx context.Context) ([]Record, error)
	ListCurrentByName(ctx context.Context, name string) ([]Record, error)
	ListHistorical(ctx context.Context, limit, offset int) ([]Record, error)
	GetStats(ctx context.Context) (Stats, error)
}
