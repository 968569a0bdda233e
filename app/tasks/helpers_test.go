package tasks

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lysyi3m/rss-ledger/app/fetcher"
	"github.com/lysyi3m/rss-ledger/app/ingest"
	"github.com/lysyi3m/rss-ledger/app/source"
)

type mockProcessor struct {
	mu        sync.Mutex
	processed []string
	delay     time.Duration
	inflight  atomic.Int32
	peak      atomic.Int32
	results   map[string]ingest.ProcessingResult
}

func (m *mockProcessor) ProcessSource(ctx context.Context, src source.Source) ingest.ProcessingResult {
	n := m.inflight.Add(1)
	defer m.inflight.Add(-1)
	for {
		peak := m.peak.Load()
		if n <= peak || m.peak.CompareAndSwap(peak, n) {
			break
		}
	}

	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
		}
	}

	m.mu.Lock()
	m.processed = append(m.processed, src.Name)
	result, ok := m.results[src.Name]
	m.mu.Unlock()

	if !ok {
		result = ingest.ProcessingResult{ItemsInserted: 1}
	}
	result.SourceID = src.ID
	result.SourceName = src.Name
	return result
}

func (m *mockProcessor) names() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.processed...)
}

type mockSweeper struct {
	calls     atomic.Int32
	deleted   int64
	err       error
	sawDone   atomic.Int32
	processor *mockProcessor
}

func (m *mockSweeper) Sweep(context.Context) (int64, error) {
	m.calls.Add(1)
	if m.processor != nil {
		m.sawDone.Store(int32(len(m.processor.names())))
	}
	return m.deleted, m.err
}

var errNetwork = &fetcher.NetworkError{URL: "https://down.example.com/rss", Err: errors.New("connection refused")}

func testSources(names ...string) []source.Source {
	sources := make([]source.Source, 0, len(names))
	for i, name := range names {
		sources = append(sources, source.Source{ID: int64(i + 1), Name: name, FeedURL: "https://" + name + ".example.com/rss"})
	}
	return sources
}
