// Package worker runs queued analysis jobs and reports their progress.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"time"

	"github.com/okian/motionlab/internal/domain/model"
	"github.com/okian/motionlab/pkg/logger"
	"github.com/okian/motionlab/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultWorkerMultiplier = 2 // multiplier for runtime.NumCPU()
	poolShutdownTimeout     = 30 * time.Second
)

// Job abstracts what workers read off the queue.
type Job = model.Job

// Analyzer runs one analysis, reporting each step through onProgress.
type Analyzer interface {
	Run(ctx context.Context, t model.AnalysisType, onProgress func(model.Progress)) (model.AnalysisResult, error)
}

// Sink receives the outcome of each job. Exactly one of Complete or Fail is
// called per job, after every Progress call for it.
type Sink interface {
	Progress(ctx context.Context, job Job, p model.Progress)
	Complete(ctx context.Context, job Job, result model.AnalysisResult)
	Fail(ctx context.Context, job Job, err error)
}

// Queue defines how workers receive jobs.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Job
}

// Worker processes jobs until its context ends or it is shut down.
type Worker interface {
	// Run starts the worker loop until ctx is canceled.
	Run(ctx context.Context)

	// Shutdown stops the worker after its current job.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker for analysis jobs.
type InMemoryWorker struct {
	queue    Queue
	analyzer Analyzer
	sink     Sink
	name     string

	runTimeout time.Duration

	shutdown chan struct{}
	stopOnce sync.Once
	done     chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(queue Queue, analyzer Analyzer, sink Sink, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:    queue,
		analyzer: analyzer,
		sink:     sink,
		name:     "worker",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.Get().Named("worker"),
	}

	for _, opt := range opts {
		opt(w)
	}

	if w.name != "worker" {
		w.logger = w.logger.With(logger.String("worker", w.name))
	}

	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	jobs := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case job, ok := <-jobs:
			if !ok {
				return
			}
			if err := w.processJob(ctx, job); err != nil {
				w.logger.Error(ctx, "analysis job failed", logger.String("job_id", job.ID), logger.Error(err))
			}
		}
	}
}

// Shutdown gracefully stops the worker.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	w.signalStop()

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// signalStop closes the shutdown channel once, however many callers ask.
func (w *InMemoryWorker) signalStop() {
	w.stopOnce.Do(func() { close(w.shutdown) })
}

func (w *InMemoryWorker) processJob(ctx context.Context, job Job) error {
	start := time.Now()
	defer func() {
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Milliseconds()))
	}()

	w.logger.Debug(ctx, "analysis started",
		logger.String("job_id", job.ID),
		logger.String("type", string(job.Type)),
		logger.Duration("queued_for", start.Sub(job.EnqueuedAt)),
	)

	runCtx := ctx
	if w.runTimeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, w.runTimeout)
		defer cancel()
	}

	result, err := w.analyzer.Run(runCtx, job.Type, func(p model.Progress) {
		metrics.RecordAnalysisProgress()
		w.sink.Progress(ctx, job, p)
	})
	if err != nil {
		metrics.RecordAnalysisError()
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "analysis_error")
		metrics.RecordErrorByType("analysis_error", "medium")
		metrics.RecordErrorLatency("worker", "analysis_error", float64(time.Since(start).Milliseconds()))
		w.sink.Fail(ctx, job, err)
		return fmt.Errorf("analyze job %s: %w", job.ID, err)
	}

	metrics.RecordAnalysisRun(string(job.Type), float64(time.Since(start).Milliseconds()), result.Metrics.Overall)
	w.sink.Complete(ctx, job, result)
	w.logger.Info(ctx, "analysis completed",
		logger.String("job_id", job.ID),
		logger.String("type", string(job.Type)),
		logger.Int("overall", result.Metrics.Overall),
		logger.Duration("took", time.Since(start)),
	)
	return nil
}

// Pool manages multiple workers.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue

	logger logger.Logger
}

// NewPool creates a new worker pool. opts apply to every worker; each is
// named worker-<i>.
func NewPool(workerCount int, queue Queue, analyzer Analyzer, sink Sink, opts ...Option) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU() * defaultWorkerMultiplier
	}

	pool := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		queue:   queue,
		logger:  logger.Get().Named("worker-pool"),
	}

	for i := 0; i < workerCount; i++ {
		workerOpts := append(append([]Option{}, opts...), WithName("worker-"+strconv.Itoa(i)))
		pool.workers[i] = NewInMemoryWorker(queue, analyzer, sink, workerOpts...)
	}

	metrics.UpdateWorkerCount(workerCount)

	return pool
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, worker := range p.workers {
		go worker.Run(ctx)
	}
}

// Shutdown closes the queue and waits for workers to finish their current job.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	for _, worker := range p.workers {
		worker.signalStop()
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	for i, worker := range p.workers {
		select {
		case <-worker.done:
		case <-shutdownCtx.Done():
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
		}
	}

	metrics.UpdateWorkerCount(0)
	return nil
}
