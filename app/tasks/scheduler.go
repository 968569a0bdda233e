package tasks

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/lysyi3m/rss-ledger/app/source"
)

// SourceProvider returns the sources for the next cycle. It is called on
// every tick so edits to the source list apply without a restart.
type SourceProvider func() ([]source.Source, error)

// Scheduler re-runs the ingestion cycle on a fixed interval. Cycles never
// overlap: the next tick is not read until the current cycle returns.
type Scheduler struct {
	runner   CycleRunner
	sources  SourceProvider
	interval time.Duration
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup

	mu          sync.RWMutex
	lastSummary *CycleSummary
}

func NewScheduler(runner CycleRunner, sources SourceProvider, interval time.Duration) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		runner:   runner,
		sources:  sources,
		interval: interval,
		ctx:      ctx,
		cancel:   cancel,
	}
}

func (s *Scheduler) Start() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.runCycle()

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.runCycle()
			}
		}
	}()
}

// Stop cancels the cycle in progress and waits for it to unwind.
func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
}

func (s *Scheduler) LastSummary() (CycleSummary, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.lastSummary == nil {
		return CycleSummary{}, false
	}
	return *s.lastSummary, true
}

func (s *Scheduler) runCycle() {
	sources, err := s.sources()
	if err != nil {
		slog.Error("Failed to load sources, skipping cycle", "error", err)
		return
	}

	summary := s.runner.RunCycle(s.ctx, sources)

	s.mu.Lock()
	s.lastSummary = &summary
	s.mu.Unlock()
}

// Health reports the outcome of the most recent cycle. More than 10% of
// sources failing is degraded, more than half is unhealthy.
func (s *Scheduler) Health() map[string]any {
	summary, ok := s.LastSummary()
	if !ok {
		return map[string]any{
			"status":   "pending",
			"interval": s.interval.String(),
		}
	}

	errorRate := 0.0
	if summary.Attempted > 0 {
		errorRate = float64(summary.Failed) / float64(summary.Attempted)
	}

	status := "healthy"
	switch {
	case errorRate > 0.5:
		status = "unhealthy"
	case errorRate > 0.1 || summary.SweepErr != nil:
		status = "degraded"
	}

	return map[string]any{
		"status":         status,
		"interval":       s.interval.String(),
		"last_cycle_at":  summary.FinishedAt.UTC().Format(time.RFC3339),
		"attempted":      summary.Attempted,
		"failed":         summary.Failed,
		"error_rate":     errorRate,
		"items_inserted": summary.ItemsInserted,
		"swept":          summary.SweepDeleted,
	}
}
