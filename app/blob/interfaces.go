package blob

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when nothing was captured for a source.
var ErrNotFound = errors.New("no captured content for source")

// Store keeps the last raw feed body captured for each source so a cycle can
// be replayed without network access.
type Store interface {
	Put(ctx context.Context, sourceID int64, data []byte) error
	Get(ctx context.Context, sourceID int64) ([]byte, error)
	Close() error
}
