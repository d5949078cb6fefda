// Package worker runs the recurring poll that feeds due retry jobs to the
// processor.
package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/calebstern/habitforge/internal/db"
	"github.com/calebstern/habitforge/internal/retry"
)

// Defaults for the polling loop.
const (
	DefaultPollInterval = 30 * time.Second
	DefaultBatchSize    = 10
)

// JobSource fetches due retry jobs.
type JobSource interface {
	DueRetryJobs(ctx context.Context, now time.Time, limit int) ([]db.RetryJob, error)
}

// Processor handles one job attempt.
type Processor interface {
	Process(ctx context.Context, job *db.RetryJob) retry.Outcome
}

// Config tunes the polling loop.
type Config struct {
	PollInterval time.Duration
	BatchSize    int
}

// Worker polls the job store on a fixed interval and processes due jobs
// strictly sequentially. A boolean guard skips a tick entirely while the
// previous one is still running; this protects a single process only, not
// multi-instance deployments.
type Worker struct {
	jobs      JobSource
	processor Processor
	interval  time.Duration
	batchSize int
	logger    *slog.Logger

	ticking atomic.Bool

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// New creates a worker. Zero config fields fall back to the defaults; a nil
// logger discards output.
func New(jobs JobSource, processor Processor, cfg Config, logger *slog.Logger) *Worker {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Worker{
		jobs:      jobs,
		processor: processor,
		interval:  cfg.PollInterval,
		batchSize: cfg.BatchSize,
		logger:    logger,
	}
}

// Start begins background polling. It returns immediately; polling continues
// until Stop is called or ctx is cancelled.
func (w *Worker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return errors.New("worker already running")
	}
	runCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.running = true
	w.wg.Add(1)
	w.mu.Unlock()

	go w.run(runCtx)

	w.logger.Info("retry worker started",
		"poll_interval", w.interval, "batch_size", w.batchSize)
	return nil
}

// Stop cancels the polling timer and waits for the loop goroutine to exit.
// An in-flight tick is not interrupted.
func (w *Worker) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	cancel := w.cancel
	w.running = false
	w.cancel = nil
	w.mu.Unlock()

	cancel()
	w.wg.Wait()
	w.logger.Info("retry worker stopped")
}

func (w *Worker) run(ctx context.Context) {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.tick(ctx)
		}
	}
}

// tick fetches one batch of due jobs and processes them in order. If the
// previous tick is still running the whole tick is skipped.
func (w *Worker) tick(ctx context.Context) {
	if !w.ticking.CompareAndSwap(false, true) {
		w.logger.Debug("previous poll still in progress; skipping tick")
		return
	}
	defer w.ticking.Store(false)

	jobs, err := w.jobs.DueRetryJobs(ctx, time.Now(), w.batchSize)
	if err != nil {
		w.logger.Error("failed to fetch due retry jobs", "error", err)
		return
	}
	if len(jobs) == 0 {
		return
	}

	w.logger.Debug("processing due retry jobs", "count", len(jobs))
	for i := range jobs {
		w.processJob(ctx, &jobs[i])
	}
}

// processJob runs a single job, containing any panic so one bad job never
// halts the rest of the batch or the polling loop.
func (w *Worker) processJob(ctx context.Context, job *db.RetryJob) {
	defer func() {
		if r := recover(); r != nil {
			w.logger.Error("panic while processing retry job",
				"job_id", job.ID, "blueprint_id", job.BlueprintID, "panic", r)
		}
	}()

	outcome := w.processor.Process(ctx, job)
	w.logger.Debug("retry job processed",
		"job_id", job.ID, "outcome", string(outcome.Kind))
}
