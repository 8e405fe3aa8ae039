// Alpenglow - Solar and Lunar Peak Alignment Calendar
// Copyright 2026 Alpenglow Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/alpenglow-dev/alpenglow

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/alpenglow-dev/alpenglow/internal/models"
)

const jobColumns = `id, payload_kind, payload, dedupe_key, priority, status,
	attempts, max_attempts, run_at, reclaimed, last_error, heartbeat_at,
	created_at, updated_at`

// priorityRank orders claim scans: high before normal before low. Inline so
// the index on (status, run_at) still narrows the scan.
const priorityRank = `CASE priority WHEN 'high' THEN 0 WHEN 'normal' THEN 1 ELSE 2 END`

// EnqueueJob inserts a job unless a waiting or active job with the same
// dedupe key already exists. Returns false when deduplicated.
func (db *DB) EnqueueJob(ctx context.Context, job *models.Job) (bool, error) {
	payload, err := models.MarshalPayload(job.Payload)
	if err != nil {
		return false, err
	}

	db.claimMu.Lock()
	defer db.claimMu.Unlock()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin enqueue transaction: %w", err)
	}
	defer rollbackQuietly(tx)

	var existing int
	err = tx.QueryRowContext(ctx, `
		SELECT count(*) FROM queue_jobs
		WHERE dedupe_key = ? AND status IN ('waiting', 'active')`,
		job.DedupeKey).Scan(&existing)
	if err != nil {
		return false, fmt.Errorf("failed to check dedupe key: %w", err)
	}
	if existing > 0 {
		return false, nil
	}

	now := time.Now().UTC()
	job.CreatedAt = now
	job.UpdatedAt = now
	_, err = tx.ExecContext(ctx, `
		INSERT INTO queue_jobs (id, payload_kind, payload, dedupe_key, priority,
			status, attempts, max_attempts, run_at, reclaimed, last_error,
			created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		job.ID, job.Payload.Kind(), string(payload), job.DedupeKey, string(job.Priority),
		string(job.Status), job.Attempts, job.MaxAttempts, job.RunAt, job.Reclaimed,
		job.LastError, job.CreatedAt, job.UpdatedAt)
	if err != nil {
		return false, fmt.Errorf("failed to insert job: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit enqueue: %w", err)
	}
	return true, nil
}

// ClaimJob atomically claims the most urgent runnable job: waiting status,
// run_at due, ordered by priority then run_at then creation. Returns
// (nil, false, nil) when nothing is runnable.
func (db *DB) ClaimJob(ctx context.Context, now time.Time) (*models.Job, bool, error) {
	db.claimMu.Lock()
	defer db.claimMu.Unlock()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, false, fmt.Errorf("failed to begin claim transaction: %w", err)
	}
	defer rollbackQuietly(tx)

	row := tx.QueryRowContext(ctx, `
		SELECT `+jobColumns+` FROM queue_jobs
		WHERE status = 'waiting' AND run_at <= ?
		ORDER BY `+priorityRank+`, run_at, created_at
		LIMIT 1`, now)

	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to scan claimable job: %w", err)
	}

	job.Status = models.JobActive
	job.Attempts++
	hb := now.UTC()
	job.HeartbeatAt = &hb
	job.UpdatedAt = hb

	_, err = tx.ExecContext(ctx, `
		UPDATE queue_jobs
		SET status = 'active', attempts = ?, heartbeat_at = ?, updated_at = ?
		WHERE id = ?`,
		job.Attempts, hb, hb, job.ID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to claim job %s: %w", job.ID, err)
	}
	if err := tx.Commit(); err != nil {
		return nil, false, fmt.Errorf("failed to commit claim: %w", err)
	}
	return job, true, nil
}

// CompleteJob marks an active job as completed.
func (db *DB) CompleteJob(ctx context.Context, id uuid.UUID) error {
	return db.updateJobStatus(ctx, id, models.JobCompleted, "")
}

// FailJob marks a job as permanently failed, recording the final error.
func (db *DB) FailJob(ctx context.Context, id uuid.UUID, lastError string) error {
	return db.updateJobStatus(ctx, id, models.JobFailed, lastError)
}

// RetryJob returns a job to waiting with a new earliest run time, recording
// the error that caused the retry.
func (db *DB) RetryJob(ctx context.Context, id uuid.UUID, runAt time.Time, lastError string) error {
	res, err := db.conn.ExecContext(ctx, `
		UPDATE queue_jobs
		SET status = 'waiting', run_at = ?, last_error = ?, heartbeat_at = NULL, updated_at = ?
		WHERE id = ?`,
		runAt.UTC(), lastError, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to retry job %s: %w", id, err)
	}
	return requireAffected(res, id)
}

// HeartbeatJob refreshes the liveness timestamp of an active job.
func (db *DB) HeartbeatJob(ctx context.Context, id uuid.UUID, now time.Time) error {
	res, err := db.conn.ExecContext(ctx, `
		UPDATE queue_jobs SET heartbeat_at = ?, updated_at = ? WHERE id = ? AND status = 'active'`,
		now.UTC(), now.UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to heartbeat job %s: %w", id, err)
	}
	return requireAffected(res, id)
}

// ReclaimStalledJobs finds active jobs whose heartbeat predates the cutoff.
// A first stall requeues the job (marked reclaimed); a second stall fails it
// outright. Returns the number requeued and failed.
func (db *DB) ReclaimStalledJobs(ctx context.Context, cutoff time.Time) (requeued, failed int, err error) {
	db.claimMu.Lock()
	defer db.claimMu.Unlock()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to begin reclaim transaction: %w", err)
	}
	defer rollbackQuietly(tx)

	now := time.Now().UTC()

	res, err := tx.ExecContext(ctx, `
		UPDATE queue_jobs
		SET status = 'failed', last_error = 'stalled twice, giving up', updated_at = ?
		WHERE status = 'active' AND heartbeat_at < ? AND reclaimed`, now, cutoff.UTC())
	if err != nil {
		return 0, 0, fmt.Errorf("failed to fail twice-stalled jobs: %w", err)
	}
	failedN, err := res.RowsAffected()
	if err != nil {
		return 0, 0, fmt.Errorf("failed to read reclaim result: %w", err)
	}

	res, err = tx.ExecContext(ctx, `
		UPDATE queue_jobs
		SET status = 'waiting', reclaimed = true, heartbeat_at = NULL,
			last_error = 'reclaimed after stall', run_at = ?, updated_at = ?
		WHERE status = 'active' AND heartbeat_at < ? AND NOT reclaimed`, now, now, cutoff.UTC())
	if err != nil {
		return 0, 0, fmt.Errorf("failed to requeue stalled jobs: %w", err)
	}
	requeuedN, err := res.RowsAffected()
	if err != nil {
		return 0, 0, fmt.Errorf("failed to read reclaim result: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, 0, fmt.Errorf("failed to commit reclaim: %w", err)
	}
	return int(requeuedN), int(failedN), nil
}

// JobByID returns one job, or ErrNotFound.
func (db *DB) JobByID(ctx context.Context, id uuid.UUID) (*models.Job, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+jobColumns+` FROM queue_jobs WHERE id = ?`, id)
	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get job %s: %w", id, err)
	}
	return job, nil
}

// QueueStats counts jobs per lifecycle state.
type QueueStats struct {
	Waiting   int `json:"waiting"`
	Active    int `json:"active"`
	Completed int `json:"completed"`
	Failed    int `json:"failed"`
}

// JobStats returns the per-status job counts.
func (db *DB) JobStats(ctx context.Context) (QueueStats, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT status, count(*) FROM queue_jobs GROUP BY status`)
	if err != nil {
		return QueueStats{}, fmt.Errorf("failed to query job stats: %w", err)
	}
	defer closeWithLog(rows, "job stat rows")

	var stats QueueStats
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return QueueStats{}, fmt.Errorf("failed to scan job stats: %w", err)
		}
		switch models.JobStatus(status) {
		case models.JobWaiting:
			stats.Waiting = n
		case models.JobActive:
			stats.Active = n
		case models.JobCompleted:
			stats.Completed = n
		case models.JobFailed:
			stats.Failed = n
		}
	}
	return stats, rows.Err()
}

// RecentJobs returns the most recently updated jobs, newest first.
func (db *DB) RecentJobs(ctx context.Context, limit int) ([]models.Job, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT `+jobColumns+` FROM queue_jobs
		ORDER BY updated_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent jobs: %w", err)
	}
	defer closeWithLog(rows, "job rows")

	var jobs []models.Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan job: %w", err)
		}
		jobs = append(jobs, *job)
	}
	return jobs, rows.Err()
}

// PruneCompletedJobs deletes completed jobs older than the cutoff and
// returns the number removed. Failed jobs are kept for inspection.
func (db *DB) PruneCompletedJobs(ctx context.Context, cutoff time.Time) (int, error) {
	res, err := db.conn.ExecContext(ctx,
		`DELETE FROM queue_jobs WHERE status = 'completed' AND updated_at < ?`, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to prune completed jobs: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read prune result: %w", err)
	}
	return int(n), nil
}

func (db *DB) updateJobStatus(ctx context.Context, id uuid.UUID, status models.JobStatus, lastError string) error {
	res, err := db.conn.ExecContext(ctx, `
		UPDATE queue_jobs SET status = ?, last_error = ?, updated_at = ? WHERE id = ?`,
		string(status), lastError, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to set job %s to %s: %w", id, status, err)
	}
	return requireAffected(res, id)
}

func requireAffected(res sql.Result, id uuid.UUID) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read update result: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("job %s: %w", id, ErrNotFound)
	}
	return nil
}

func scanJob(row rowScanner) (*models.Job, error) {
	var (
		job              models.Job
		payloadKind      string
		payloadJSON      string
		priority, status string
		heartbeat        sql.NullTime
	)
	err := row.Scan(&job.ID, &payloadKind, &payloadJSON, &job.DedupeKey, &priority,
		&status, &job.Attempts, &job.MaxAttempts, &job.RunAt, &job.Reclaimed,
		&job.LastError, &heartbeat, &job.CreatedAt, &job.UpdatedAt)
	if err != nil {
		return nil, err
	}

	job.Priority = models.JobPriority(priority)
	job.Status = models.JobStatus(status)
	if heartbeat.Valid {
		t := heartbeat.Time
		job.HeartbeatAt = &t
	}

	payload, err := models.UnmarshalPayload(payloadKind, []byte(payloadJSON))
	if err != nil {
		return nil, err
	}
	job.Payload = payload
	return &job, nil
}
