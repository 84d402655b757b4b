package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/wadjakorntonsri/go-linkbio/pkg/core/domain"
)

func (r *SQLiteRepository) RecordActivity(ctx context.Context, activity *domain.Activity) error {
	if activity.ID == "" {
		activity.ID = uuid.NewString()
	}
	if activity.CreatedAt.IsZero() {
		activity.CreatedAt = time.Now()
	}

	var linkID sql.NullInt64
	if activity.LinkID != nil {
		linkID = sql.NullInt64{Int64: *activity.LinkID, Valid: true}
	}

	query := `INSERT INTO activity_log (id, owner_id, action, link_id, detail, created_at) VALUES (?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query, activity.ID, activity.OwnerID, string(activity.Action), linkID,
		activity.Detail, activity.CreatedAt.UTC())
	return err
}

// ListActivity returns the newest entries first
func (r *SQLiteRepository) ListActivity(ctx context.Context, ownerID string, limit int) ([]domain.Activity, error) {
	query := `SELECT id, owner_id, action, link_id, detail, created_at FROM activity_log
			  WHERE owner_id = ? ORDER BY created_at DESC, rowid DESC LIMIT ?`
	rows, err := r.db.QueryContext(ctx, query, ownerID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []domain.Activity{}
	for rows.Next() {
		var a domain.Activity
		var action string
		var linkID sql.NullInt64
		if err := rows.Scan(&a.ID, &a.OwnerID, &action, &linkID, &a.Detail, &a.CreatedAt); err != nil {
			return nil, err
		}
		a.Action = domain.ActivityAction(action)
		if linkID.Valid {
			id := linkID.Int64
			a.LinkID = &id
		}
		entries = append(entries, a)
	}
	return entries, rows.Err()
}
