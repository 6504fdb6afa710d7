package db

import (
	"context"
	"database/sql"

	"github.com/duskreel/clipper/internal/apierrors"
	"github.com/duskreel/clipper/internal/models"
	"github.com/google/uuid"
)

func (db *DB) CreateTranscript(ctx context.Context, t *models.Transcript) error {
	query := `
		INSERT INTO transcripts (id, video_id, lang, words)
		VALUES ($1, $2, $3, $4)
	`
	_, err := db.ExecContext(ctx, query, t.ID, t.VideoID, t.Lang, models.WordList(t.Words))
	if err != nil {
		return apierrors.New(apierrors.DatabaseError, "failed to create transcript", err)
	}
	return nil
}

func (db *DB) GetTranscriptForVideo(ctx context.Context, videoID uuid.UUID) (*models.Transcript, error) {
	query := `
		SELECT id, video_id, lang, words
		FROM transcripts WHERE video_id = $1
		ORDER BY id DESC LIMIT 1
	`
	t := &models.Transcript{}
	var words models.WordList
	err := db.QueryRowContext(ctx, query, videoID).Scan(&t.ID, &t.VideoID, &t.Lang, &words)
	if err == sql.ErrNoRows {
		return nil, apierrors.New(apierrors.NotFound, "transcript not found", err)
	}
	if err != nil {
		return nil, apierrors.New(apierrors.DatabaseError, "failed to get transcript", err)
	}
	t.Words = words
	return t, nil
}
