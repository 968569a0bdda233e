package tasks

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/lysyi3m/rss-ledger/app/source"
	"github.com/stretchr/testify/assert"
)

type mockRunner struct {
	mu       sync.Mutex
	cycles   int
	running  bool
	overlaps int
	summary  CycleSummary
}

func (m *mockRunner) RunCycle(ctx context.Context, sources []source.Source) CycleSummary {
	m.mu.Lock()
	if m.running {
		m.overlaps++
	}
	m.running = true
	m.cycles++
	summary := m.summary
	m.mu.Unlock()

	time.Sleep(5 * time.Millisecond)

	m.mu.Lock()
	m.running = false
	m.mu.Unlock()

	summary.Attempted = max(summary.Attempted, len(sources))
	summary.FinishedAt = time.Now()
	return summary
}

func (m *mockRunner) count() (int, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cycles, m.overlaps
}

func staticSources(sources ...source.Source) SourceProvider {
	return func() ([]source.Source, error) { return sources, nil }
}

func TestSchedulerLifecycle(t *testing.T) {
	runner := &mockRunner{}
	scheduler := NewScheduler(runner, staticSources(testSources("a")...), 20*time.Millisecond)

	_, ok := scheduler.LastSummary()
	assert.False(t, ok)

	scheduler.Start()
	assert.Eventually(t, func() bool {
		cycles, _ := runner.count()
		return cycles >= 3
	}, 2*time.Second, 5*time.Millisecond)
	scheduler.Stop()

	cycles, overlaps := runner.count()
	assert.Zero(t, overlaps)

	summary, ok := scheduler.LastSummary()
	assert.True(t, ok)
	assert.Equal(t, 1, summary.Attempted)

	// No cycles run after Stop returns.
	time.Sleep(50 * time.Millisecond)
	after, _ := runner.count()
	assert.Equal(t, cycles, after)
}

func TestSchedulerSkipsCycleWhenSourcesFail(t *testing.T) {
	runner := &mockRunner{}
	scheduler := NewScheduler(runner, func() ([]source.Source, error) {
		return nil, errors.New("unreadable source list")
	}, time.Hour)

	scheduler.runCycle()

	cycles, _ := runner.count()
	assert.Zero(t, cycles)
	_, ok := scheduler.LastSummary()
	assert.False(t, ok)
}

func TestSchedulerHealth(t *testing.T) {
	tests := []struct {
		name    string
		summary CycleSummary
		status  string
		rate    float64
	}{
		{name: "healthy", summary: CycleSummary{Attempted: 10}, status: "healthy", rate: 0},
		{name: "degraded", summary: CycleSummary{Attempted: 10, Failed: 2}, status: "degraded", rate: 0.2},
		{name: "unhealthy", summary: CycleSummary{Attempted: 10, Failed: 6}, status: "unhealthy", rate: 0.6},
		{name: "sweep failure", summary: CycleSummary{Attempted: 10, SweepErr: errors.New("locked")}, status: "degraded", rate: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scheduler := NewScheduler(&mockRunner{summary: tt.summary}, staticSources(), time.Minute)

			assert.Equal(t, "pending", scheduler.Health()["status"])

			scheduler.runCycle()
			health := scheduler.Health()
			assert.Equal(t, tt.status, health["status"])
			assert.Equal(t, tt.rate, health["error_rate"])
			assert.Equal(t, "1m0s", health["interval"])
		})
	}
}
