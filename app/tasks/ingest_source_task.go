package tasks

import (
	"context"

	"github.com/lysyi3m/rss-ledger/app/ingest"
	"github.com/lysyi3m/rss-ledger/app/source"
)

type IngestSourceTask struct {
	Task
	Source    source.Source
	processor SourceProcessor
	Result    ingest.ProcessingResult
}

func NewIngestSourceTask(src source.Source, processor SourceProcessor) *IngestSourceTask {
	return &IngestSourceTask{
		Task:      NewTask(TaskTypeIngestSource, src.Name),
		Source:    src,
		processor: processor,
		Result:    ingest.ProcessingResult{SourceID: src.ID, SourceName: src.Name},
	}
}

func (t *IngestSourceTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		t.Result.Err = ctx.Err()
		return t.Result.Err
	default:
	}

	t.Result = t.processor.ProcessSource(ctx, t.Source)
	return t.Result.Err
}
