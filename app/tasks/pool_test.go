package tasks

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/UnderTheBridgeCoding/OmegaParse/app/aggregate"
	"github.com/UnderTheBridgeCoding/OmegaParse/app/classify"
	"github.com/UnderTheBridgeCoding/OmegaParse/app/normalize"
)

type countingTask struct {
	Task
	counter *atomic.Int64
}

func (t *countingTask) Execute(ctx context.Context) error {
	t.counter.Add(1)
	return nil
}

func TestPool_DrainsAllTasks(t *testing.T) {
	pool := NewPool(context.Background(), 4)
	pool.Start()

	var counter atomic.Int64
	for i := 0; i < 100; i++ {
		task := &countingTask{Task: NewTask(TaskTypeProcessFile, "file"), counter: &counter}
		if err := pool.Enqueue(task); err != nil {
			t.Fatalf("Failed to enqueue task: %v", err)
		}
	}
	pool.Drain()

	if counter.Load() != 100 {
		t.Errorf("Expected 100 executed tasks, got %d", counter.Load())
	}
}

func TestPool_EnqueueAfterCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	pool := NewPool(ctx, 1)
	pool.Start()
	cancel()

	var counter atomic.Int64
	// Either the enqueue is rejected or the worker drains it; both are
	// acceptable, but the call must not block forever.
	_ = pool.Enqueue(&countingTask{Task: NewTask(TaskTypeProcessFile, "file"), counter: &counter})
	pool.Drain()
}

func TestProcessFileTask_FeedsAggregator(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "watch-history.json")
	if err := os.WriteFile(path, []byte(`[{"title":"A","titleUrl":"http://x"}]`), 0o644); err != nil {
		t.Fatalf("Failed to write fixture: %v", err)
	}

	agg := aggregate.NewAggregator("in", "out")
	task := NewProcessFileTask(path, classify.NewClassifier(), normalize.NewNormalizer(), agg)

	if err := task.Execute(context.Background()); err != nil {
		t.Fatalf("Expected task to succeed, got %v", err)
	}
	agg.Finalize()

	summary := agg.Summary()
	if summary.TotalFiles != 1 {
		t.Errorf("Expected 1 file counted, got %d", summary.TotalFiles)
	}
	if summary.TotalRecords != 1 {
		t.Errorf("Expected 1 record counted, got %d", summary.TotalRecords)
	}
	if summary.ByContentType["watch-event"] != 1 {
		t.Errorf("Expected watch-event count 1, got %v", summary.ByContentType)
	}
}

func TestPool_DeterministicResultsAcrossWorkerCounts(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"watch-history.json": `[{"title":"A","titleUrl":"http://x"},{"title":"B"}]`,
		"comments.json":      `[{"title":"C","time":"2023-05-01"}]`,
		"notes.txt":          "plain text",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("Failed to write fixture: %v", err)
		}
	}

	run := func(workers int) map[string][]string {
		agg := aggregate.NewAggregator("in", "out")
		pool := NewPool(context.Background(), workers)
		pool.Start()
		classifier := classify.NewClassifier()
		normalizer := normalize.NewNormalizer()
		for name := range files {
			if err := pool.Enqueue(NewProcessFileTask(filepath.Join(dir, name), classifier, normalizer, agg)); err != nil {
				t.Fatalf("Failed to enqueue: %v", err)
			}
		}
		pool.Drain()
		agg.Finalize()

		ids := map[string][]string{}
		for contentType, records := range agg.RecordsByContentType() {
			for _, record := range records {
				ids[contentType] = append(ids[contentType], record.RecordID)
			}
		}
		return ids
	}

	serial := run(1)
	parallel := run(8)

	if len(serial) != len(parallel) {
		t.Fatalf("Expected identical groupings, got %v vs %v", serial, parallel)
	}
	for contentType, ids := range serial {
		other := parallel[contentType]
		if len(ids) != len(other) {
			t.Fatalf("%s: expected %v, got %v", contentType, ids, other)
		}
		for i := range ids {
			if ids[i] != other[i] {
				t.Errorf("%s[%d]: expected %s, got %s", contentType, i, ids[i], other[i])
			}
		}
	}
}
