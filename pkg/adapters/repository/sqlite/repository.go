package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	_ "github.com/tursodatabase/libsql-client-go/libsql" // Turso driver
	"github.com/wadjakorntonsri/go-linkbio/pkg/core/domain"
	"github.com/wadjakorntonsri/go-linkbio/pkg/ports"
	_ "modernc.org/sqlite" // Local SQLite driver
)

type SQLiteRepository struct {
	db           *sql.DB
	maxRetries   int
	retryBackoff time.Duration
}

type options struct {
	uniqueOrderIndex bool
	maxRetries       int
	retryBackoff     time.Duration
}

type Option func(*options)

// WithUniqueOrderIndex toggles the UNIQUE(owner_id, sort_order) index.
// Disabling it drops the index, which is only useful to load and repair
// legacy data that already violates it.
func WithUniqueOrderIndex(enabled bool) Option {
	return func(o *options) { o.uniqueOrderIndex = enabled }
}

// WithTxRetries sets how often a busy owner transaction is retried.
func WithTxRetries(maxRetries int, backoff time.Duration) Option {
	return func(o *options) {
		o.maxRetries = maxRetries
		o.retryBackoff = backoff
	}
}

func NewSQLiteRepository(dbURL string, opts ...Option) (*SQLiteRepository, error) {
	o := options{uniqueOrderIndex: true, maxRetries: 3, retryBackoff: 25 * time.Millisecond}
	for _, opt := range opts {
		opt(&o)
	}

	driverName := "sqlite"
	if strings.Contains(dbURL, "libsql://") || strings.Contains(dbURL, "wss://") {
		driverName = "libsql"
	}

	dsn := dbURL
	if driverName == "sqlite" {
		dsn = localDSN(dbURL)
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	if err := migrate(db, o.uniqueOrderIndex); err != nil {
		return nil, err
	}

	return &SQLiteRepository{db: db, maxRetries: o.maxRetries, retryBackoff: o.retryBackoff}, nil
}

// localDSN makes write transactions take the write lock at BEGIN so two
// writers on the same database serialize instead of failing at commit.
func localDSN(dbURL string) string {
	params := []string{}
	if !strings.Contains(dbURL, "_txlock=") {
		params = append(params, "_txlock=immediate")
	}
	if !strings.Contains(dbURL, "busy_timeout") {
		params = append(params, "_pragma=busy_timeout(5000)")
	}
	if len(params) == 0 {
		return dbURL
	}
	sep := "?"
	if strings.Contains(dbURL, "?") {
		sep = "&"
	}
	return dbURL + sep + strings.Join(params, "&")
}

func migrate(db *sql.DB, uniqueOrderIndex bool) error {
	query := `
	CREATE TABLE IF NOT EXISTS links (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		owner_id TEXT NOT NULL,
		original_url TEXT NOT NULL,
		title TEXT NOT NULL DEFAULT '',
		active INTEGER NOT NULL DEFAULT 1,
		sort_order INTEGER NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_links_owner ON links(owner_id);

	CREATE TABLE IF NOT EXISTS profiles (
		owner_id TEXT PRIMARY KEY,
		handle TEXT NOT NULL UNIQUE,
		title TEXT NOT NULL DEFAULT '',
		bio TEXT NOT NULL DEFAULT '',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS activity_log (
		id TEXT PRIMARY KEY,
		owner_id TEXT NOT NULL,
		action TEXT NOT NULL,
		link_id INTEGER,
		detail TEXT NOT NULL DEFAULT '',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_activity_owner ON activity_log(owner_id, created_at);
	`
	if _, err := db.Exec(query); err != nil {
		return err
	}

	if uniqueOrderIndex {
		_, err := db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_links_owner_order ON links(owner_id, sort_order)`)
		return err
	}
	_, err := db.Exec(`DROP INDEX IF EXISTS idx_links_owner_order`)
	return err
}

func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

const linkColumns = `id, owner_id, original_url, title, active, sort_order, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func scanLink(s rowScanner) (domain.Link, error) {
	var l domain.Link
	err := s.Scan(&l.ID, &l.OwnerID, &l.OriginalURL, &l.Title, &l.Active, &l.Order, &l.CreatedAt, &l.UpdatedAt)
	return l, err
}

func queryLinks(ctx context.Context, q queryer, query string, args ...any) ([]domain.Link, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	links := []domain.Link{}
	for rows.Next() {
		l, err := scanLink(rows)
		if err != nil {
			return nil, err
		}
		links = append(links, l)
	}
	return links, rows.Err()
}

func getLink(ctx context.Context, q queryer, query string, args ...any) (*domain.Link, error) {
	l, err := scanLink(q.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// insertLink keeps link.ID when it is set (imports) and assigns one otherwise.
func insertLink(ctx context.Context, q queryer, link *domain.Link) error {
	query := `INSERT INTO links (id, owner_id, original_url, title, active, sort_order, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	id := sql.NullInt64{Int64: link.ID, Valid: link.ID != 0}
	res, err := q.ExecContext(ctx, query, id, link.OwnerID, link.OriginalURL, link.Title, link.Active, link.Order,
		link.CreatedAt.UTC(), link.UpdatedAt.UTC())
	if err != nil {
		return err
	}

	newID, err := res.LastInsertId()
	if err != nil {
		return err
	}
	link.ID = newID
	return nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id int64) (*domain.Link, error) {
	return getLink(ctx, r.db, `SELECT `+linkColumns+` FROM links WHERE id = ?`, id)
}

// ListByOwner reads outside any transaction. The result reflects the last
// committed state and is sorted by (order, created_at, id).
func (r *SQLiteRepository) ListByOwner(ctx context.Context, ownerID string) ([]domain.Link, error) {
	return queryLinks(ctx, r.db, `SELECT `+linkColumns+` FROM links WHERE owner_id = ?
		ORDER BY sort_order ASC, created_at ASC, id ASC`, ownerID)
}

// UpdatePayload writes the descriptive fields only; sort_order is owned by the ordering engine.
func (r *SQLiteRepository) UpdatePayload(ctx context.Context, link *domain.Link) error {
	query := `UPDATE links SET original_url = ?, title = ?, active = ?, updated_at = ? WHERE id = ? AND owner_id = ?`
	res, err := r.db.ExecContext(ctx, query, link.OriginalURL, link.Title, link.Active, link.UpdatedAt.UTC(), link.ID, link.OwnerID)
	if err != nil {
		return err
	}
	return expectRow(res)
}

func (r *SQLiteRepository) Dump(ctx context.Context) ([]domain.Link, error) {
	return queryLinks(ctx, r.db, `SELECT `+linkColumns+` FROM links ORDER BY owner_id, sort_order, created_at, id`)
}

// Import stores a link verbatim, order included.
func (r *SQLiteRepository) Import(ctx context.Context, link *domain.Link) error {
	return insertLink(ctx, r.db, link)
}

func expectRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Ensure interface compliance
var (
	_ ports.LinkRepository     = (*SQLiteRepository)(nil)
	_ ports.ProfileRepository  = (*SQLiteRepository)(nil)
	_ ports.ActivityRepository = (*SQLiteRepository)(nil)
)
