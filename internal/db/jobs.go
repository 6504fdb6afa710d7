package db

import (
	"context"
	"database/sql"

	"github.com/duskreel/clipper/internal/apierrors"
	"github.com/duskreel/clipper/internal/models"
	"github.com/google/uuid"
)

func (db *DB) CreateJob(ctx context.Context, job *models.Job) error {
	if job.Logs == nil {
		job.Logs = models.JSONB{}
	}
	query := `
		INSERT INTO jobs (id, video_id, kind, status, progress, logs)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`
	return db.QueryRowContext(ctx, query,
		job.ID, job.VideoID, job.Kind, job.Status, job.Progress, job.Logs,
	).Scan(&job.CreatedAt)
}

func (db *DB) GetJob(ctx context.Context, id uuid.UUID) (*models.Job, error) {
	query := `
		SELECT id, video_id, kind, status, progress, logs, created_at
		FROM jobs WHERE id = $1
	`
	job := &models.Job{}
	err := db.QueryRowContext(ctx, query, id).Scan(
		&job.ID, &job.VideoID, &job.Kind, &job.Status, &job.Progress, &job.Logs, &job.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, apierrors.New(apierrors.NotFound, "job not found", err)
	}
	if err != nil {
		return nil, apierrors.New(apierrors.DatabaseError, "failed to get job", err)
	}
	return job, nil
}

// TryStartJob performs the pending→processing CAS that §4.8/§9 designate as
// the at-least-once idempotency guard: a worker MUST perform this before
// doing any external work, and a redelivered message observing a non-pending
// job (ok=false, no error) may simply be dropped.
func (db *DB) TryStartJob(ctx context.Context, id uuid.UUID) (ok bool, err error) {
	query := `
		UPDATE jobs SET status = $1
		WHERE id = $2 AND status = $3
	`
	res, err := db.ExecContext(ctx, query, models.JobStatusProcessing, id, models.JobStatusPending)
	if err != nil {
		return false, apierrors.New(apierrors.DatabaseError, "failed to CAS job to processing", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, apierrors.New(apierrors.DatabaseError, "failed to read CAS result", err)
	}
	return n == 1, nil
}

// UpdateJobProgress persists progress plus a step tag, per §4.5's "at each
// milestone, persist progress and a step tag into the Job".
func (db *DB) UpdateJobProgress(ctx context.Context, id uuid.UUID, progress int, step string) error {
	query := `
		UPDATE jobs SET progress = $1, logs = jsonb_set(coalesce(logs, '{}'::jsonb), '{step}', to_jsonb($2::text))
		WHERE id = $3
	`
	_, err := db.ExecContext(ctx, query, progress, step, id)
	if err != nil {
		return apierrors.New(apierrors.DatabaseError, "failed to update job progress", err)
	}
	return nil
}

func (db *DB) CompleteJob(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE jobs SET status = $1, progress = 100 WHERE id = $2`
	_, err := db.ExecContext(ctx, query, models.JobStatusCompleted, id)
	if err != nil {
		return apierrors.New(apierrors.DatabaseError, "failed to complete job", err)
	}
	return nil
}

// FailJob marks the job failed and writes logs.error, per §7's propagation
// policy. Partial results already persisted by earlier steps are untouched.
func (db *DB) FailJob(ctx context.Context, id uuid.UUID, errMessage string) error {
	query := `
		UPDATE jobs SET status = $1, logs = jsonb_set(coalesce(logs, '{}'::jsonb), '{error}', to_jsonb($2::text))
		WHERE id = $3
	`
	_, err := db.ExecContext(ctx, query, models.JobStatusFailed, errMessage, id)
	if err != nil {
		return apierrors.New(apierrors.DatabaseError, "failed to fail job", err)
	}
	return nil
}

// CancelJob sets a pending or processing job to cancelled. Cancellation
// while pending is immediate (§5); cancellation while processing is observed
// cooperatively by the worker at the next milestone.
func (db *DB) CancelJob(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE jobs SET status = $1
		WHERE id = $2 AND status IN ($3, $4)
	`
	_, err := db.ExecContext(ctx, query, models.JobStatusCancelled, id,
		models.JobStatusPending, models.JobStatusProcessing)
	if err != nil {
		return apierrors.New(apierrors.DatabaseError, "failed to cancel job", err)
	}
	return nil
}

// IsCancelled re-reads the job's status, for the cooperative-cancellation
// check a worker performs at each milestone boundary.
func (db *DB) IsCancelled(ctx context.Context, id uuid.UUID) (bool, error) {
	query := `SELECT status FROM jobs WHERE id = $1`
	var status models.JobStatus
	if err := db.QueryRowContext(ctx, query, id).Scan(&status); err != nil {
		return false, apierrors.New(apierrors.DatabaseError, "failed to read job status", err)
	}
	return status == models.JobStatusCancelled, nil
}

// CloneFailedJob implements the retry endpoint from §7: clones the failed
// job's params (its logs.config, the original analyze submission) into a
// fresh pending Job whose logs also record retried_from.
func (db *DB) CloneFailedJob(ctx context.Context, original *models.Job) (*models.Job, error) {
	if original.Status != models.JobStatusFailed {
		return nil, apierrors.New(apierrors.Validation, "only a failed job may be retried", nil)
	}
	clone := &models.Job{
		ID:      uuid.New(),
		VideoID: original.VideoID,
		Kind:    original.Kind,
		Status:  models.JobStatusPending,
		Logs: models.JSONB{
			"retried_from": original.ID.String(),
		},
	}
	if config, ok := original.Logs["config"]; ok {
		clone.Logs["config"] = config
	}
	if err := db.CreateJob(ctx, clone); err != nil {
		return nil, err
	}
	return clone, nil
}
