package tasks

import (
	"context"
	"fmt"
	"log/slog"
)

type SweepTask struct {
	Task
	sweeper Sweeper
	Deleted int64
}

func NewSweepTask(sweeper Sweeper) *SweepTask {
	return &SweepTask{
		Task:    NewTask(TaskTypeSweep, ""),
		sweeper: sweeper,
	}
}

func (t *SweepTask) Execute(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("sweep skipped: %w", err)
	}

	deleted, err := t.sweeper.Sweep(ctx)
	if err != nil {
		return fmt.Errorf("failed to sweep current items: %w", err)
	}
	t.Deleted = deleted

	slog.Debug("Task completed", "type", string(t.GetType()), "id", t.GetID(), "duration", t.GetDuration(), "deleted", deleted)

	return nil
}
