package tasks

import (
	"context"
	"log/slog"
	"sync"
)

// Pool drains a finite batch of tasks across a fixed set of workers.
// Unlike a long-running scheduler there is no ticker: the producer
// enqueues every task, then calls Drain to wait for completion.
type Pool struct {
	workerCount int
	queue       chan TaskInterface
	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
}

func NewPool(ctx context.Context, workerCount int) *Pool {
	poolCtx, cancel := context.WithCancel(ctx)

	return &Pool{
		workerCount: workerCount,
		queue:       make(chan TaskInterface, 64),
		ctx:         poolCtx,
		cancel:      cancel,
	}
}

func (p *Pool) Start() {
	for i := 0; i < p.workerCount; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
}

// Enqueue blocks until a worker frees queue space, providing natural
// backpressure for large trees. Returns the context error if the run was
// cancelled.
func (p *Pool) Enqueue(task TaskInterface) error {
	select {
	case p.queue <- task:
		return nil
	case <-p.ctx.Done():
		return p.ctx.Err()
	}
}

// Drain closes the queue and waits for all enqueued tasks to finish.
func (p *Pool) Drain() {
	close(p.queue)
	p.wg.Wait()
	p.cancel()
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()

	slog.Debug("Worker started", "worker", id)

	for task := range p.queue {
		select {
		case <-p.ctx.Done():
			return
		default:
		}

		task.Start()
		if err := task.Execute(p.ctx); err != nil {
			slog.Warn("Task failed", "worker", id, "type", task.GetType(),
				"file", task.GetFilePath(), "error", err)
		}
	}

	slog.Debug("Worker stopped", "worker", id)
}
