package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/wadjakorntonsri/go-linkbio/pkg/core/domain"
	"github.com/wadjakorntonsri/go-linkbio/pkg/ports"
)

// WithOwnerTx runs fn in one transaction and retries it while the database
// reports it is busy. fn may therefore run more than once.
func (r *SQLiteRepository) WithOwnerTx(ctx context.Context, ownerID string, fn func(tx ports.OwnerTx) error) error {
	for attempt := 0; ; attempt++ {
		err := r.runOwnerTx(ctx, ownerID, fn)
		if err == nil || !isBusy(err) || attempt >= r.maxRetries {
			return err
		}

		select {
		case <-ctx.Done():
			return txFailure(ctx.Err())
		case <-time.After(r.retryBackoff * time.Duration(attempt+1)):
		}
	}
}

func (r *SQLiteRepository) runOwnerTx(ctx context.Context, ownerID string, fn func(tx ports.OwnerTx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return txFailure(err)
	}
	defer tx.Rollback()

	if err := fn(&ownerTx{tx: tx, ownerID: ownerID}); err != nil {
		if domain.IsDomainError(err) {
			return err
		}
		return txFailure(err)
	}

	if err := tx.Commit(); err != nil {
		return txFailure(err)
	}
	return nil
}

func txFailure(err error) error {
	return fmt.Errorf("%w: %w", domain.ErrTransactionFailure, err)
}

func isBusy(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

type ownerTx struct {
	tx      *sql.Tx
	ownerID string
}

func (t *ownerTx) ListLinks(ctx context.Context) ([]domain.Link, error) {
	return queryLinks(ctx, t.tx, `SELECT `+linkColumns+` FROM links WHERE owner_id = ?
		ORDER BY sort_order ASC, created_at ASC, id ASC`, t.ownerID)
}

func (t *ownerTx) CountLinks(ctx context.Context) (int, error) {
	var n int
	err := t.tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM links WHERE owner_id = ?`, t.ownerID).Scan(&n)
	return n, err
}

func (t *ownerTx) GetLink(ctx context.Context, id int64) (*domain.Link, error) {
	return getLink(ctx, t.tx, `SELECT `+linkColumns+` FROM links WHERE id = ? AND owner_id = ?`, id, t.ownerID)
}

func (t *ownerTx) InsertLink(ctx context.Context, link *domain.Link) error {
	link.OwnerID = t.ownerID
	return insertLink(ctx, t.tx, link)
}

func (t *ownerTx) DeleteLink(ctx context.Context, id int64) error {
	res, err := t.tx.ExecContext(ctx, `DELETE FROM links WHERE id = ? AND owner_id = ?`, id, t.ownerID)
	if err != nil {
		return err
	}
	return expectRow(res)
}

func (t *ownerTx) MinOrder(ctx context.Context) (int, error) {
	var v sql.NullInt64
	err := t.tx.QueryRowContext(ctx, `SELECT MIN(sort_order) FROM links WHERE owner_id = ?`, t.ownerID).Scan(&v)
	return int(v.Int64), err
}

// ShiftOrders moves the range through a staging band and back.
// SQLite validates UNIQUE per row, so a single "sort_order + 1" can
// collide with a neighbour that has not been updated yet. The band sits
// strictly below every order the owner holds, so the restore step only
// touches rows staged here, even when legacy negatives exist.
func (t *ownerTx) ShiftOrders(ctx context.Context, from, to, delta int) error {
	if from > to || delta == 0 {
		return nil
	}

	low, err := t.MinOrder(ctx)
	if err != nil {
		return err
	}
	base := min(low, 0) - 1

	stage := `UPDATE links SET sort_order = ? - (sort_order - ?) WHERE owner_id = ? AND sort_order BETWEEN ? AND ?`
	if _, err := t.tx.ExecContext(ctx, stage, base, from, t.ownerID, from, to); err != nil {
		return err
	}

	restore := `UPDATE links SET sort_order = (? - sort_order) + ? WHERE owner_id = ? AND sort_order BETWEEN ? AND ?`
	_, err = t.tx.ExecContext(ctx, restore, base, from+delta, t.ownerID, base-(to-from), base)
	return err
}

func (t *ownerTx) SetOrder(ctx context.Context, id int64, order int) error {
	res, err := t.tx.ExecContext(ctx, `UPDATE links SET sort_order = ?, updated_at = ? WHERE id = ? AND owner_id = ?`,
		order, time.Now().UTC(), id, t.ownerID)
	if err != nil {
		return err
	}
	return expectRow(res)
}
