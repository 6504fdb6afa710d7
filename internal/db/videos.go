package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/duskreel/clipper/internal/apierrors"
	"github.com/duskreel/clipper/internal/models"
	"github.com/google/uuid"
)

func (db *DB) CreateVideo(ctx context.Context, v *models.Video) error {
	query := `
		INSERT INTO videos (id, owner_id, source_blob_key, title, duration_seconds, resolution)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`
	return db.QueryRowContext(ctx, query,
		v.ID, v.OwnerID, v.SourceBlobKey, v.Title, v.DurationSeconds, v.Resolution,
	).Scan(&v.CreatedAt)
}

func (db *DB) GetVideo(ctx context.Context, id uuid.UUID) (*models.Video, error) {
	query := `
		SELECT id, owner_id, source_blob_key, title, duration_seconds, resolution, created_at
		FROM videos WHERE id = $1
	`
	v := &models.Video{}
	err := db.QueryRowContext(ctx, query, id).Scan(
		&v.ID, &v.OwnerID, &v.SourceBlobKey, &v.Title, &v.DurationSeconds, &v.Resolution, &v.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, apierrors.New(apierrors.NotFound, "video not found", err)
	}
	if err != nil {
		return nil, apierrors.New(apierrors.DatabaseError, "failed to get video", err)
	}
	return v, nil
}

// UpdateVideoProbe fills duration_seconds/resolution post-probe; each analyze
// run calls it once. No other Video field is ever updated.
func (db *DB) UpdateVideoProbe(ctx context.Context, id uuid.UUID, durationSeconds float64, resolution string) error {
	query := `UPDATE videos SET duration_seconds = $1, resolution = $2 WHERE id = $3`
	_, err := db.ExecContext(ctx, query, durationSeconds, resolution, id)
	if err != nil {
		return apierrors.New(apierrors.DatabaseError, "failed to update video probe fields", err)
	}
	return nil
}

// HasNonTerminalAnalyzeJob implements the admission check from §5: "rejecting
// a new analyze job whose video_id already has a non-terminal job".
func (db *DB) HasNonTerminalAnalyzeJob(ctx context.Context, videoID uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM jobs
			WHERE video_id = $1 AND kind = $2
			AND status IN ($3, $4)
		)
	`
	var exists bool
	err := db.QueryRowContext(ctx, query, videoID, models.JobKindAnalyze,
		models.JobStatusPending, models.JobStatusProcessing).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check admission: %w", err)
	}
	return exists, nil
}
