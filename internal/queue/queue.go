// Alpenglow - Solar and Lunar Peak Alignment Calendar
// Copyright 2026 Alpenglow Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/alpenglow-dev/alpenglow

package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/alpenglow-dev/alpenglow/internal/config"
	"github.com/alpenglow-dev/alpenglow/internal/logging"
	"github.com/alpenglow-dev/alpenglow/internal/metrics"
	"github.com/alpenglow-dev/alpenglow/internal/models"
)

// completedRetention is how long completed jobs stay queryable before the
// reclaimer prunes them. Failed jobs are never pruned automatically.
const completedRetention = 24 * time.Hour

const breakerName = "job-executor"

// WorkQueue executes durable jobs with a fixed worker pool. Claimed jobs
// heartbeat while running; the reclaimer requeues jobs whose worker died.
type WorkQueue struct {
	store   JobStore
	exec    Executor
	cfg     config.QueueConfig
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker[interface{}]
}

// New creates a work queue over the given store and executor. Serve must be
// called before enqueued jobs make progress.
func New(store JobStore, exec Executor, cfg config.QueueConfig) *WorkQueue {
	q := &WorkQueue{
		store: store,
		exec:  exec,
		cfg:   cfg,
	}
	if cfg.RatePerSecond > 0 {
		q.limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSecond), 1)
	}
	q.breaker = newExecutorBreaker()
	return q
}

// newExecutorBreaker builds the circuit breaker around job execution. Opens
// after a 60% failure rate with at least 10 attempts, so one poisoned job
// cannot trip it.
func newExecutorBreaker() *gobreaker.CircuitBreaker[interface{}] {
	metrics.CircuitBreakerState.WithLabelValues(breakerName).Set(0)

	return gobreaker.NewCircuitBreaker[interface{}](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 2,
		Interval:    time.Minute,
		Timeout:     2 * time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= 0.6
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().
				Str("from", stateString(from)).
				Str("to", stateString(to)).
				Msg("Job executor circuit breaker state change")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateValue(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, stateString(from), stateString(to)).Inc()
		},
	})
}

// Enqueue submits a payload at the given priority. Low-priority jobs carry a
// deliberate start delay so bulk regeneration yields to interactive work.
// Returns false when an equivalent job is already waiting or active.
func (q *WorkQueue) Enqueue(ctx context.Context, payload models.JobPayload, priority models.JobPriority) (bool, error) {
	runAt := time.Now().UTC()
	if priority == models.PriorityLow {
		runAt = runAt.Add(q.cfg.LowPriorityDelay)
	}

	job := &models.Job{
		ID:          uuid.New(),
		Payload:     payload,
		Priority:    priority,
		DedupeKey:   payload.DedupeKey(),
		Status:      models.JobWaiting,
		MaxAttempts: q.cfg.MaxAttempts,
		RunAt:       runAt,
	}

	inserted, err := q.store.EnqueueJob(ctx, job)
	if err != nil {
		return false, fmt.Errorf("failed to enqueue %s: %w", job.DedupeKey, err)
	}
	metrics.RecordEnqueue(payload.Kind(), inserted)

	if inserted {
		logging.Info().
			Str("job_id", job.ID.String()).
			Str("kind", payload.Kind()).
			Str("dedupe_key", job.DedupeKey).
			Str("priority", string(priority)).
			Time("run_at", runAt).
			Msg("Job enqueued")
	} else {
		logging.Debug().
			Str("dedupe_key", job.DedupeKey).
			Msg("Job deduplicated, equivalent work already queued")
	}
	return inserted, nil
}

// Serve implements suture.Service. Workers poll for claimable jobs until the
// context is cancelled; the reclaimer sweeps stalled and expired jobs on its
// own interval.
func (q *WorkQueue) Serve(ctx context.Context) error {
	logging.Info().
		Int("workers", q.cfg.Workers).
		Dur("poll_interval", q.cfg.PollInterval).
		Msg("Work queue starting")

	var wg sync.WaitGroup
	for i := 0; i < q.cfg.Workers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			q.worker(ctx, id)
		}(i)
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		q.reclaimer(ctx)
	}()

	<-ctx.Done()
	wg.Wait()
	logging.Info().Msg("Work queue stopped")
	return nil
}

// String names the service in supervisor logs.
func (q *WorkQueue) String() string { return "work-queue" }

// worker claims and runs jobs until the context ends. The inner loop drains
// all runnable jobs before sleeping a poll interval.
func (q *WorkQueue) worker(ctx context.Context, id int) {
	ticker := time.NewTicker(q.cfg.PollInterval)
	defer ticker.Stop()

	for {
		for ctx.Err() == nil {
			job, ok, err := q.store.ClaimJob(ctx, time.Now().UTC())
			if err != nil {
				if ctx.Err() == nil {
					logging.Error().Err(err).Int("worker", id).Msg("Failed to claim job")
				}
				break
			}
			if !ok {
				break
			}
			q.run(ctx, id, job)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// run executes one claimed job and records its outcome.
func (q *WorkQueue) run(ctx context.Context, workerID int, job *models.Job) {
	// Pacing is backpressure on bulk regeneration only; high- and
	// normal-priority jobs run unthrottled.
	if q.limiter != nil && job.Priority == models.PriorityLow {
		if err := q.limiter.Wait(ctx); err != nil {
			// Shutdown while pacing: hand the job back so the next start
			// picks it up immediately instead of waiting out a stall.
			q.release(job)
			return
		}
	}

	kind := job.Payload.Kind()
	logging.Info().
		Str("job_id", job.ID.String()).
		Str("kind", kind).
		Int("worker", workerID).
		Int("attempt", job.Attempts).
		Msg("Job started")

	start := time.Now()
	stopHeartbeat := q.startHeartbeat(ctx, job.ID)
	_, err := q.breaker.Execute(func() (interface{}, error) {
		return nil, q.exec.Execute(ctx, job)
	})
	stopHeartbeat()
	elapsed := time.Since(start)

	switch {
	case err == nil:
		metrics.CircuitBreakerRequests.WithLabelValues(breakerName, "success").Inc()
		if cerr := q.store.CompleteJob(ctx, job.ID); cerr != nil {
			logging.Error().Err(cerr).Str("job_id", job.ID.String()).Msg("Failed to mark job completed")
			return
		}
		metrics.RecordJobResult(kind, "completed", elapsed)
		logging.Info().
			Str("job_id", job.ID.String()).
			Str("kind", kind).
			Dur("elapsed", elapsed).
			Msg("Job completed")

	case errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests):
		// The executor never ran. Back off one base interval and let the
		// breaker recover; the attempt budget still counts the claim.
		metrics.CircuitBreakerRequests.WithLabelValues(breakerName, "rejected").Inc()
		metrics.RecordJobResult(kind, "rejected", elapsed)
		retryAt := time.Now().UTC().Add(q.cfg.BackoffBase)
		if rerr := q.store.RetryJob(ctx, job.ID, retryAt, err.Error()); rerr != nil {
			logging.Error().Err(rerr).Str("job_id", job.ID.String()).Msg("Failed to requeue rejected job")
		}

	case job.Attempts >= job.MaxAttempts:
		metrics.CircuitBreakerRequests.WithLabelValues(breakerName, "failure").Inc()
		metrics.RecordJobResult(kind, "failed", elapsed)
		if ferr := q.store.FailJob(ctx, job.ID, err.Error()); ferr != nil {
			logging.Error().Err(ferr).Str("job_id", job.ID.String()).Msg("Failed to mark job failed")
		}
		logging.Error().
			Err(err).
			Str("job_id", job.ID.String()).
			Str("kind", kind).
			Int("attempts", job.Attempts).
			Msg("Job failed permanently, retry budget exhausted")

	default:
		metrics.CircuitBreakerRequests.WithLabelValues(breakerName, "failure").Inc()
		metrics.RecordJobResult(kind, "retried", elapsed)
		delay := q.backoff(job.Attempts)
		retryAt := time.Now().UTC().Add(delay)
		if rerr := q.store.RetryJob(ctx, job.ID, retryAt, err.Error()); rerr != nil {
			logging.Error().Err(rerr).Str("job_id", job.ID.String()).Msg("Failed to requeue job for retry")
			return
		}
		logging.Warn().
			Err(err).
			Str("job_id", job.ID.String()).
			Str("kind", kind).
			Int("attempt", job.Attempts).
			Dur("retry_in", delay).
			Msg("Job failed, will retry")
	}
}

// release returns an unexecuted claimed job to waiting during shutdown. Uses
// a fresh context since the serve context is already cancelled.
func (q *WorkQueue) release(job *models.Job) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := q.store.RetryJob(ctx, job.ID, time.Now().UTC(), "released on shutdown"); err != nil {
		logging.Warn().Err(err).Str("job_id", job.ID.String()).Msg("Failed to release job on shutdown")
	}
}

// startHeartbeat refreshes the job's liveness timestamp while it executes.
// The interval divides the stall timeout so a healthy worker is never
// mistaken for a dead one.
func (q *WorkQueue) startHeartbeat(ctx context.Context, id uuid.UUID) func() {
	interval := q.cfg.StallTimeout / 3
	if interval <= 0 {
		interval = time.Minute
	}

	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := q.store.HeartbeatJob(ctx, id, time.Now().UTC()); err != nil {
					logging.Warn().Err(err).Str("job_id", id.String()).Msg("Heartbeat failed")
				}
			}
		}
	}()
	return func() { close(done) }
}

// backoff returns the exponential retry delay after the given number of
// attempts, capped at BackoffMax.
func (q *WorkQueue) backoff(attempts int) time.Duration {
	d := q.cfg.BackoffBase
	for i := 1; i < attempts; i++ {
		d *= 2
		if d >= q.cfg.BackoffMax {
			return q.cfg.BackoffMax
		}
	}
	if d > q.cfg.BackoffMax {
		return q.cfg.BackoffMax
	}
	return d
}

// reclaimer periodically requeues stalled jobs, prunes old completed jobs,
// and refreshes the queue depth gauges.
func (q *WorkQueue) reclaimer(ctx context.Context) {
	ticker := time.NewTicker(q.cfg.ReclaimInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			q.sweep(ctx)
		}
	}
}

func (q *WorkQueue) sweep(ctx context.Context) {
	now := time.Now().UTC()

	requeued, failed, err := q.store.ReclaimStalledJobs(ctx, now.Add(-q.cfg.StallTimeout))
	if err != nil {
		if ctx.Err() == nil {
			logging.Error().Err(err).Msg("Failed to reclaim stalled jobs")
		}
		return
	}
	metrics.RecordReclaim(requeued, failed)
	if requeued > 0 || failed > 0 {
		logging.Warn().
			Int("requeued", requeued).
			Int("failed", failed).
			Msg("Reclaimed stalled jobs")
	}

	if pruned, err := q.store.PruneCompletedJobs(ctx, now.Add(-completedRetention)); err != nil {
		logging.Warn().Err(err).Msg("Failed to prune completed jobs")
	} else if pruned > 0 {
		logging.Debug().Int("pruned", pruned).Msg("Pruned old completed jobs")
	}

	if stats, err := q.store.JobStats(ctx); err == nil {
		metrics.UpdateQueueDepth(stats.Waiting, stats.Active, stats.Completed, stats.Failed)
	}
}

func stateValue(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

func stateString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}
