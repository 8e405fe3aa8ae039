// Alpenglow - Solar and Lunar Peak Alignment Calendar
// Copyright 2026 Alpenglow Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/alpenglow-dev/alpenglow

package queue

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/alpenglow-dev/alpenglow/internal/database"
	"github.com/alpenglow-dev/alpenglow/internal/models"
)

// JobStore is the durable backend of the work queue. *database.DB satisfies
// it; tests substitute an in-memory implementation.
type JobStore interface {
	// EnqueueJob inserts a job unless a waiting or active job with the same
	// dedupe key exists. Returns false when deduplicated.
	EnqueueJob(ctx context.Context, job *models.Job) (bool, error)

	// ClaimJob atomically claims the most urgent runnable job, marking it
	// active and incrementing its attempt count. Returns (nil, false, nil)
	// when nothing is runnable.
	ClaimJob(ctx context.Context, now time.Time) (*models.Job, bool, error)

	CompleteJob(ctx context.Context, id uuid.UUID) error
	FailJob(ctx context.Context, id uuid.UUID, lastError string) error
	RetryJob(ctx context.Context, id uuid.UUID, runAt time.Time, lastError string) error
	HeartbeatJob(ctx context.Context, id uuid.UUID, now time.Time) error

	// ReclaimStalledJobs requeues active jobs whose heartbeat predates the
	// cutoff; a job that stalls twice is failed outright.
	ReclaimStalledJobs(ctx context.Context, cutoff time.Time) (requeued, failed int, err error)

	JobStats(ctx context.Context) (database.QueueStats, error)
	PruneCompletedJobs(ctx context.Context, cutoff time.Time) (int, error)
}

var _ JobStore = (*database.DB)(nil)

// Executor runs one claimed job to completion. A nil return marks the job
// completed; any error triggers the retry/backoff cycle.
type Executor interface {
	Execute(ctx context.Context, job *models.Job) error
}
