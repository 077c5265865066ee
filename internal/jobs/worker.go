package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"
)

const defaultPollInterval = 800 * time.Millisecond

// Queue is the subset of Repo the worker needs.
type Queue interface {
	Claim(ctx context.Context, workerID string) (*Job, error)
	MarkDone(ctx context.Context, id uint64) error
	MarkFailed(ctx context.Context, id uint64, errMsg string) error
	RetryLater(ctx context.Context, id uint64, attempts int, runAt time.Time, errMsg string) error
}

// Handler runs one job. A returned error fails or retries the job.
type Handler func(ctx context.Context, job *Job) error

type Worker struct {
	ID       string
	Queue    Queue
	Handlers map[string]Handler
	Log      *slog.Logger
	Interval time.Duration
	Now      func() time.Time

	// Retryable reports whether a handler error is worth another attempt.
	// Nil retries every error.
	Retryable func(error) bool
}

func NewWorkerID() string {
	return "worker-" + uuid.NewString()
}

func (w *Worker) Run(ctx context.Context) {
	interval := w.Interval
	if interval <= 0 {
		interval = defaultPollInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	w.logger().Info("worker started", "interval", interval)
	for {
		select {
		case <-ctx.Done():
			w.logger().Info("worker stopped")
			return
		case <-ticker.C:
			if _, err := w.RunOnce(ctx); err != nil && ctx.Err() == nil {
				w.logger().Error("worker claim error", "error", err)
			}
		}
	}
}

// RunOnce claims and handles at most one due job. It reports whether a job
// was handled.
func (w *Worker) RunOnce(ctx context.Context) (bool, error) {
	job, err := w.Queue.Claim(ctx, w.ID)
	if err != nil {
		return false, err
	}
	if job == nil {
		return false, nil
	}
	w.handle(ctx, job)
	return true, nil
}

func (w *Worker) handle(ctx context.Context, job *Job) {
	log := w.logger().With("job_id", job.ID, "job_type", job.Type, "attempt", job.Attempts+1)

	h, ok := w.Handlers[job.Type]
	if !ok {
		log.Error("unknown job type")
		w.check(log, w.Queue.MarkFailed(ctx, job.ID, "unknown job type"))
		return
	}

	err := h(ctx, job)
	if err == nil {
		log.Info("job done")
		w.check(log, w.Queue.MarkDone(ctx, job.ID))
		return
	}

	if w.Retryable != nil && !w.Retryable(err) {
		log.Error("job failed", "error", err)
		w.check(log, w.Queue.MarkFailed(ctx, job.ID, err.Error()))
		return
	}
	w.retry(ctx, log, job, err)
}

func (w *Worker) retry(ctx context.Context, log *slog.Logger, job *Job, cause error) {
	attempts := job.Attempts + 1
	if attempts >= job.MaxAttempts {
		log.Error("job failed, attempts exhausted", "error", cause, "max_attempts", job.MaxAttempts)
		w.check(log, w.Queue.MarkFailed(ctx, job.ID, cause.Error()))
		return
	}

	next := w.now().Add(Backoff(attempts))
	log.Warn("job failed, will retry", "error", cause, "next_run", next)
	w.check(log, w.Queue.RetryLater(ctx, job.ID, attempts, next, cause.Error()))
}

// Backoff is the delay before the given attempt: 2^attempts seconds, capped
// at ten minutes.
func Backoff(attempts int) time.Duration {
	sec := math.Min(math.Pow(2, float64(attempts)), 600)
	return time.Duration(sec) * time.Second
}

func (w *Worker) check(log *slog.Logger, err error) {
	if err != nil {
		log.Error("job state update failed", "error", fmt.Errorf("jobs: %w", err))
	}
}

func (w *Worker) now() time.Time {
	if w.Now != nil {
		return w.Now()
	}
	return time.Now()
}

func (w *Worker) logger() *slog.Logger {
	l := w.Log
	if l == nil {
		l = slog.Default()
	}
	return l.With("worker_id", w.ID)
}
