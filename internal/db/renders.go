package db

import (
	"context"
	"database/sql"

	"github.com/duskreel/clipper/internal/apierrors"
	"github.com/duskreel/clipper/internal/models"
	"github.com/google/uuid"
)

func (db *DB) CreateRender(ctx context.Context, r *models.Render) error {
	if r.Params == nil {
		r.Params = models.JSONB{}
	}
	if r.Files == nil {
		r.Files = models.JSONB{}
	}
	query := `
		INSERT INTO renders (id, owner_id, params, status, progress, files)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`
	return db.QueryRowContext(ctx, query,
		r.ID, r.OwnerID, r.Params, r.Status, r.Progress, r.Files,
	).Scan(&r.CreatedAt)
}

func (db *DB) GetRender(ctx context.Context, id uuid.UUID) (*models.Render, error) {
	query := `
		SELECT id, owner_id, params, status, progress, files, created_at
		FROM renders WHERE id = $1
	`
	r := &models.Render{}
	err := db.QueryRowContext(ctx, query, id).Scan(
		&r.ID, &r.OwnerID, &r.Params, &r.Status, &r.Progress, &r.Files, &r.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, apierrors.New(apierrors.NotFound, "render not found", err)
	}
	if err != nil {
		return nil, apierrors.New(apierrors.DatabaseError, "failed to get render", err)
	}
	return r, nil
}

// TryStartRender is TryStartJob's counterpart for the render pipeline: a
// Render IS its own job record (see models.Render), so it carries the same
// pending->processing CAS idempotency guard directly.
func (db *DB) TryStartRender(ctx context.Context, id uuid.UUID) (bool, error) {
	query := `UPDATE renders SET status = $1 WHERE id = $2 AND status = $3`
	res, err := db.ExecContext(ctx, query, models.JobStatusProcessing, id, models.JobStatusPending)
	if err != nil {
		return false, apierrors.New(apierrors.DatabaseError, "failed to CAS render to processing", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, apierrors.New(apierrors.DatabaseError, "failed to read CAS result", err)
	}
	return n == 1, nil
}

func (db *DB) UpdateRenderProgress(ctx context.Context, id uuid.UUID, progress int) error {
	query := `UPDATE renders SET progress = $1 WHERE id = $2`
	_, err := db.ExecContext(ctx, query, progress, id)
	if err != nil {
		return apierrors.New(apierrors.DatabaseError, "failed to update render progress", err)
	}
	return nil
}

// CompleteRender persists the final candidate_id -> aspect -> blob_key map.
// The orchestrator calls it only after every (candidate, aspect) pair has
// been uploaded; a partial map is persisted by FailRender instead.
func (db *DB) CompleteRender(ctx context.Context, id uuid.UUID, files models.JSONB) error {
	query := `UPDATE renders SET status = $1, progress = 100, files = $2 WHERE id = $3`
	_, err := db.ExecContext(ctx, query, models.JobStatusCompleted, files, id)
	if err != nil {
		return apierrors.New(apierrors.DatabaseError, "failed to complete render", err)
	}
	return nil
}

// FailRender marks the render failed but keeps whatever outputs were already
// uploaded in files, instead of the original implementation's bug of
// overwriting them with an empty map on the first mid-render failure.
func (db *DB) FailRender(ctx context.Context, id uuid.UUID, files models.JSONB, errMessage string) error {
	query := `
		UPDATE renders
		SET status = $1, files = $2, params = jsonb_set(coalesce(params, '{}'::jsonb), '{error}', to_jsonb($3::text))
		WHERE id = $4
	`
	_, err := db.ExecContext(ctx, query, models.JobStatusFailed, files, errMessage, id)
	if err != nil {
		return apierrors.New(apierrors.DatabaseError, "failed to fail render", err)
	}
	return nil
}

func (db *DB) CancelRender(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE renders SET status = $1 WHERE id = $2 AND status IN ($3, $4)`
	_, err := db.ExecContext(ctx, query, models.JobStatusCancelled, id,
		models.JobStatusPending, models.JobStatusProcessing)
	if err != nil {
		return apierrors.New(apierrors.DatabaseError, "failed to cancel render", err)
	}
	return nil
}

func (db *DB) IsRenderCancelled(ctx context.Context, id uuid.UUID) (bool, error) {
	query := `SELECT status FROM renders WHERE id = $1`
	var status models.JobStatus
	if err := db.QueryRowContext(ctx, query, id).Scan(&status); err != nil {
		return false, apierrors.New(apierrors.DatabaseError, "failed to read render status", err)
	}
	return status == models.JobStatusCancelled, nil
}

// CountActiveRendersForOwner backs the §5 admission rule capping concurrent
// renders per owner (config.MaxConcurrentRenders).
func (db *DB) CountActiveRendersForOwner(ctx context.Context, ownerID uuid.UUID) (int, error) {
	query := `
		SELECT COUNT(*) FROM renders
		WHERE owner_id = $1 AND status IN ($2, $3)
	`
	var n int
	err := db.QueryRowContext(ctx, query, ownerID,
		models.JobStatusPending, models.JobStatusProcessing).Scan(&n)
	if err != nil {
		return 0, apierrors.New(apierrors.DatabaseError, "failed to count active renders", err)
	}
	return n, nil
}
