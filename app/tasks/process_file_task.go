package tasks

import (
	"context"
	"log/slog"

	"github.com/UnderTheBridgeCoding/OmegaParse/app/aggregate"
	"github.com/UnderTheBridgeCoding/OmegaParse/app/classify"
	"github.com/UnderTheBridgeCoding/OmegaParse/app/normalize"
)

// ProcessFileTask runs the full per-file pipeline: classify, normalize,
// aggregate. Files are independent of each other, so any number of these
// tasks can run concurrently; the aggregator serializes its own mutation.
type ProcessFileTask struct {
	Task
	classifier *classify.Classifier
	normalizer *normalize.Normalizer
	aggregator *aggregate.Aggregator
}

func NewProcessFileTask(filePath string, classifier *classify.Classifier,
	normalizer *normalize.Normalizer, aggregator *aggregate.Aggregator) *ProcessFileTask {
	return &ProcessFileTask{
		Task:       NewTask(TaskTypeProcessFile, filePath),
		classifier: classifier,
		normalizer: normalizer,
		aggregator: aggregator,
	}
}

func (t *ProcessFileTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	classification := t.classifier.Run(t.FilePath)
	t.aggregator.AddFile(classification)

	records := t.normalizer.Run(t.FilePath, classification)
	t.aggregator.AddRecords(records)

	slog.Debug("Task completed",
		"type", "ProcessFile",
		"file", t.FilePath,
		"duration", t.GetDuration(),
		"content_likely", classification.ContentLikely,
		"confidence", classification.Confidence,
		"records", len(records))

	return nil
}
