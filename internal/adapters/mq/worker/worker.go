// Package worker runs the pool that turns queued refresh jobs into
// persisted forecast snapshots.
package worker

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/nurtas/bloomcast/internal/adapters/mq/queue"
	"github.com/nurtas/bloomcast/internal/domain/model"
	"github.com/nurtas/bloomcast/pkg/logger"
	"github.com/nurtas/bloomcast/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultWorkerCount    = 2
	workerShutdownTimeout = 5 * time.Second
	poolShutdownTimeout   = 30 * time.Second
)

// Job is what workers read off the queue.
type Job = model.RefreshJob

// Generator produces the forecast rows for one store.
type Generator interface {
	GenerateStore(ctx context.Context, storeID string, days int) ([]model.ForecastRow, error)
}

// Snapshotter persists generated rows as the store's latest forecast.
type Snapshotter interface {
	SaveSnapshot(ctx context.Context, storeID string, rows []model.ForecastRow) error
}

// Tracker releases the in-flight slot a job holds once it finishes.
type Tracker interface {
	End(ctx context.Context, key string)
}

// Queue defines how workers receive jobs.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Job
}

// Worker processes refresh jobs until stopped.
type Worker interface {
	// Run starts the worker loop until ctx is canceled.
	Run(ctx context.Context)

	// Shutdown gracefully stops the worker.
	Shutdown(ctx context.Context) error
}

// RefreshWorker implements Worker for forecast refresh jobs.
type RefreshWorker struct {
	queue     Queue
	generator Generator
	snapshots Snapshotter
	tracker   Tracker
	name      string

	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// NewRefreshWorker creates a worker with configuration options.
func NewRefreshWorker(q Queue, gen Generator, snaps Snapshotter, opts ...Option) *RefreshWorker {
	w := &RefreshWorker{
		queue:     q,
		generator: gen,
		snapshots: snaps,
		name:      "worker",
		shutdown:  make(chan struct{}),
		done:      make(chan struct{}),
		logger:    logger.Named("worker"),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.name != "worker" {
		w.logger = logger.Named(w.name)
	}
	return w
}

// Run starts the worker loop.
func (w *RefreshWorker) Run(ctx context.Context) {
	defer close(w.done)

	jobChan := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case job, ok := <-jobChan:
			if !ok {
				return
			}
			if err := w.processJob(ctx, job); err != nil {
				w.logger.Error(ctx, "refresh job failed",
					logger.String("job_id", job.ID),
					logger.String("store", job.StoreID),
					logger.Err(err),
				)
			}
		}
	}
}

// Shutdown gracefully stops the worker.
func (w *RefreshWorker) Shutdown(ctx context.Context) error {
	close(w.shutdown)

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// processJob generates one store's forecast and persists it as the latest
// snapshot. The in-flight slot is released whatever the outcome, so a failed
// store can be refreshed again immediately.
func (w *RefreshWorker) processJob(ctx context.Context, job queue.Job) error {
	if w.tracker != nil {
		defer w.tracker.End(ctx, job.StoreID)
	}

	start := time.Now()
	rows, err := w.generator.GenerateStore(ctx, job.StoreID, job.Days)
	metrics.RecordForecastDuration(float64(time.Since(start).Milliseconds()))
	if err != nil {
		metrics.RecordRefreshFailed()
		metrics.RecordErrorByComponent("worker", "generation_error")
		return fmt.Errorf("generate forecast for %s: %w", job.StoreID, err)
	}

	if err := w.snapshots.SaveSnapshot(ctx, job.StoreID, rows); err != nil {
		metrics.RecordRefreshFailed()
		metrics.RecordErrorByComponent("worker", "snapshot_error")
		return fmt.Errorf("save snapshot for %s: %w", job.StoreID, err)
	}

	metrics.RecordRefreshCompleted()
	metrics.RecordForecastRows(job.StoreID, len(rows))
	w.logger.Debug(ctx, "forecast refreshed",
		logger.String("job_id", job.ID),
		logger.String("store", job.StoreID),
		logger.Int("rows", len(rows)),
	)
	return nil
}

// Pool manages multiple refresh workers over one queue.
type Pool struct {
	workers []*RefreshWorker
	queue   Queue

	shutdown chan struct{}

	logger logger.Logger
}

// NewPool creates a worker pool of the given size.
func NewPool(workerCount int, q Queue, gen Generator, snaps Snapshotter, opts ...Option) *Pool {
	if workerCount < 1 {
		workerCount = defaultWorkerCount
	}

	pool := &Pool{
		workers:  make([]*RefreshWorker, workerCount),
		queue:    q,
		shutdown: make(chan struct{}),
		logger:   logger.Named("worker-pool"),
	}

	for i := 0; i < workerCount; i++ {
		workerOpts := append([]Option{WithName("worker-" + strconv.Itoa(i))}, opts...)
		pool.workers[i] = NewRefreshWorker(q, gen, snaps, workerOpts...)
	}

	metrics.UpdateWorkerCount(workerCount)

	return pool
}

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Stop stops all workers, waiting briefly for each.
func (p *Pool) Stop() {
	close(p.shutdown)

	for _, w := range p.workers {
		select {
		case <-w.shutdown:
		default:
			close(w.shutdown)
		}
		select {
		case <-w.done:
		case <-time.After(workerShutdownTimeout):
		}
	}
	metrics.UpdateWorkerCount(0)
}

// Shutdown closes the queue, then waits for every worker to drain or the
// timeout to pass.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Err(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-shutdownCtx.Done():
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
		}
	}
	metrics.UpdateWorkerCount(0)

	return nil
}
