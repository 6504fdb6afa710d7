package db

import (
	"context"
	"database/sql"

	"github.com/duskreel/clipper/internal/apierrors"
	"github.com/duskreel/clipper/internal/models"
	"github.com/google/uuid"
)

func (db *DB) CreateCandidate(ctx context.Context, c *models.Candidate) error {
	if c.Features == nil {
		c.Features = models.JSONB{}
	}
	query := `
		INSERT INTO candidates (id, video_id, start_s, end_s, score, features, thumb_blob_key)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := db.ExecContext(ctx, query,
		c.ID, c.VideoID, c.StartS, c.EndS, c.Score, c.Features, c.ThumbBlobKey,
	)
	if err != nil {
		return apierrors.New(apierrors.DatabaseError, "failed to create candidate", err)
	}
	return nil
}

func (db *DB) GetCandidate(ctx context.Context, id uuid.UUID) (*models.Candidate, error) {
	query := `
		SELECT id, video_id, start_s, end_s, score, features, thumb_blob_key
		FROM candidates WHERE id = $1
	`
	c := &models.Candidate{}
	err := db.QueryRowContext(ctx, query, id).Scan(
		&c.ID, &c.VideoID, &c.StartS, &c.EndS, &c.Score, &c.Features, &c.ThumbBlobKey,
	)
	if err == sql.ErrNoRows {
		return nil, apierrors.New(apierrors.NotFound, "candidate not found", err)
	}
	if err != nil {
		return nil, apierrors.New(apierrors.DatabaseError, "failed to get candidate", err)
	}
	return c, nil
}

// ListCandidatesForVideo returns a video's candidates ordered best-first, the
// order §6's candidate-listing endpoint exposes them in.
func (db *DB) ListCandidatesForVideo(ctx context.Context, videoID uuid.UUID) ([]models.Candidate, error) {
	query := `
		SELECT id, video_id, start_s, end_s, score, features, thumb_blob_key
		FROM candidates WHERE video_id = $1
		ORDER BY score DESC
	`
	rows, err := db.QueryContext(ctx, query, videoID)
	if err != nil {
		return nil, apierrors.New(apierrors.DatabaseError, "failed to list candidates", err)
	}
	defer rows.Close()

	var out []models.Candidate
	for rows.Next() {
		var c models.Candidate
		if err := rows.Scan(&c.ID, &c.VideoID, &c.StartS, &c.EndS, &c.Score, &c.Features, &c.ThumbBlobKey); err != nil {
			return nil, apierrors.New(apierrors.DatabaseError, "failed to scan candidate", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, apierrors.New(apierrors.DatabaseError, "failed to read candidates", err)
	}
	return out, nil
}
