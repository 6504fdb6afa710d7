package db

import (
	"context"
	"database/sql"

	"github.com/duskreel/clipper/internal/apierrors"
	"github.com/duskreel/clipper/internal/models"
	"github.com/google/uuid"
)

// CreateUser inserts a new account record. Callers hash the password before
// this call; PwHash is never logged or returned (models.User tags it `json:"-"`).
func (db *DB) CreateUser(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, email, pw_hash)
		VALUES ($1, $2, $3)
		RETURNING created_at
	`
	return db.QueryRowContext(ctx, query, user.ID, user.Email, user.PwHash).Scan(&user.CreatedAt)
}

func (db *DB) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	query := `SELECT id, email, pw_hash, created_at FROM users WHERE id = $1`
	u := &models.User{}
	err := db.QueryRowContext(ctx, query, id).Scan(&u.ID, &u.Email, &u.PwHash, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, apierrors.New(apierrors.NotFound, "user not found", err)
	}
	if err != nil {
		return nil, apierrors.New(apierrors.DatabaseError, "failed to get user", err)
	}
	return u, nil
}

func (db *DB) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT id, email, pw_hash, created_at FROM users WHERE email = $1`
	u := &models.User{}
	err := db.QueryRowContext(ctx, query, email).Scan(&u.ID, &u.Email, &u.PwHash, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, apierrors.New(apierrors.NotFound, "user not found", err)
	}
	if err != nil {
		return nil, apierrors.New(apierrors.DatabaseError, "failed to get user", err)
	}
	return u, nil
}
