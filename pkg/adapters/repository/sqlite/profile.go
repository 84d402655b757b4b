package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/wadjakorntonsri/go-linkbio/pkg/core/domain"
)

func (r *SQLiteRepository) UpsertProfile(ctx context.Context, profile *domain.Profile) error {
	query := `INSERT INTO profiles (owner_id, handle, title, bio, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?)
			  ON CONFLICT(owner_id) DO UPDATE SET
				handle = excluded.handle, title = excluded.title, bio = excluded.bio, updated_at = excluded.updated_at`

	_, err := r.db.ExecContext(ctx, query, profile.OwnerID, profile.Handle, profile.Title, profile.Bio,
		profile.CreatedAt.UTC(), profile.UpdatedAt.UTC())
	if err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return domain.ErrConflict
	}
	return err
}

func (r *SQLiteRepository) GetProfileByOwner(ctx context.Context, ownerID string) (*domain.Profile, error) {
	return r.getProfile(ctx, `owner_id = ?`, ownerID)
}

func (r *SQLiteRepository) GetProfileByHandle(ctx context.Context, handle string) (*domain.Profile, error) {
	return r.getProfile(ctx, `handle = ?`, handle)
}

func (r *SQLiteRepository) getProfile(ctx context.Context, where string, arg any) (*domain.Profile, error) {
	query := `SELECT owner_id, handle, title, bio, created_at, updated_at FROM profiles WHERE ` + where
	var p domain.Profile
	err := r.db.QueryRowContext(ctx, query, arg).Scan(&p.OwnerID, &p.Handle, &p.Title, &p.Bio, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}
