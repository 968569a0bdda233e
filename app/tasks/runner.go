package tasks

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lysyi3m/rss-ledger/app/ingest"
	"github.com/lysyi3m/rss-ledger/app/source"
	"github.com/samber/lo"
)

const DefaultWorkerCount = 5

type CycleSummary struct {
	ID            string
	Results       []ingest.ProcessingResult
	Attempted     int
	Succeeded     int
	Failed        int
	Unchanged     int
	Bootstrapped  int
	ItemsInserted int
	ItemsSkipped  int
	SweepDeleted  int64
	SweepErr      error
	StartedAt     time.Time
	FinishedAt    time.Time
	Duration      time.Duration
}

var _ CycleRunner = (*Runner)(nil)

// Runner fans sources out to a bounded worker pool, waits for every one of
// them, then runs the retention sweep exactly once.
type Runner struct {
	processor   SourceProcessor
	sweeper     Sweeper
	workerCount int
	metrics     *Metrics
}

func NewRunner(processor SourceProcessor, sweeper Sweeper, workerCount int, metrics *Metrics) *Runner {
	if workerCount <= 0 {
		workerCount = DefaultWorkerCount
	}

	return &Runner{
		processor:   processor,
		sweeper:     sweeper,
		workerCount: workerCount,
		metrics:     metrics,
	}
}

func (r *Runner) RunCycle(ctx context.Context, sources []source.Source) CycleSummary {
	summary := CycleSummary{
		ID:        uuid.NewString(),
		StartedAt: time.Now(),
	}

	for _, src := range sources {
		if src.FeedURL == "" {
			slog.Debug("Source has no feed, skipping", "source", src.Name)
		}
	}

	ingestTasks := lo.Map(source.WithFeed(sources), func(src source.Source, _ int) *IngestSourceTask {
		return NewIngestSourceTask(src, r.processor)
	})

	slog.Info("Ingestion cycle started", "cycle", summary.ID, "sources", len(ingestTasks), "workers", r.workerCount)

	r.runAll(ctx, ingestTasks)

	summary.Results = lo.Map(ingestTasks, func(t *IngestSourceTask, _ int) ingest.ProcessingResult {
		return t.Result
	})

	sweep := NewSweepTask(r.sweeper)
	if err := r.executeTask(ctx, 0, sweep); err != nil {
		summary.SweepErr = err
	}
	summary.SweepDeleted = sweep.Deleted

	summary.aggregate()
	summary.FinishedAt = time.Now()
	summary.Duration = summary.FinishedAt.Sub(summary.StartedAt)

	r.metrics.observe(summary)

	slog.Info("Ingestion cycle completed",
		"cycle", summary.ID,
		"duration", summary.Duration,
		"attempted", summary.Attempted,
		"succeeded", summary.Succeeded,
		"failed", summary.Failed,
		"unchanged", summary.Unchanged,
		"bootstrapped", summary.Bootstrapped,
		"inserted", summary.ItemsInserted,
		"swept", summary.SweepDeleted)

	return summary
}

// runAll returns only once every task has finished.
func (r *Runner) runAll(ctx context.Context, ingestTasks []*IngestSourceTask) {
	if len(ingestTasks) == 0 {
		return
	}

	taskQueue := make(chan TaskInterface, len(ingestTasks))
	for _, t := range ingestTasks {
		taskQueue <- t
	}
	close(taskQueue)

	var wg sync.WaitGroup
	for i := 0; i < min(r.workerCount, len(ingestTasks)); i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for task := range taskQueue {
				r.executeTask(ctx, workerID, task)
			}
		}(i)
	}
	wg.Wait()
}

func (r *Runner) executeTask(ctx context.Context, workerID int, task TaskInterface) error {
	task.Start()

	err := task.Execute(ctx)
	if err != nil {
		slog.Error("Worker task execution failed",
			"worker_id", workerID,
			"type", string(task.GetType()),
			"id", task.GetID(),
			"source", task.GetSourceName(),
			"duration", task.GetDuration(),
			"error", err)
	}

	return err
}

func (s *CycleSummary) aggregate() {
	s.Attempted = len(s.Results)
	s.Failed = lo.CountBy(s.Results, func(r ingest.ProcessingResult) bool { return r.Failed() })
	s.Succeeded = s.Attempted - s.Failed
	s.Unchanged = lo.CountBy(s.Results, func(r ingest.ProcessingResult) bool { return r.Unchanged })
	s.Bootstrapped = lo.CountBy(s.Results, func(r ingest.ProcessingResult) bool { return r.Err == nil && r.Bootstrap })
	s.ItemsInserted = lo.SumBy(s.Results, func(r ingest.ProcessingResult) int { return r.ItemsInserted })
	s.ItemsSkipped = lo.SumBy(s.Results, func(r ingest.ProcessingResult) int { return r.ItemsSkipped })
}
