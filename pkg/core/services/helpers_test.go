package services

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/wadjakorntonsri/go-linkbio/pkg/adapters/repository/sqlite"
	"github.com/wadjakorntonsri/go-linkbio/pkg/core/domain"
	"github.com/wadjakorntonsri/go-linkbio/pkg/ports"
)

const owner = "owner@example.com"

func newTestRepo(t *testing.T, opts ...sqlite.Option) *sqlite.SQLiteRepository {
	t.Helper()
	repo, err := sqlite.NewSQLiteRepository("file:"+filepath.Join(t.TempDir(), "test.db"), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func newTestEngine(t *testing.T, repo ports.LinkRepository, activity ports.ActivityRepository) *OrderingService {
	return NewOrderingService(repo, activity, zaptest.NewLogger(t))
}

// seedOrders imports links verbatim; titles are A, B, C... and created_at
// increases by one minute per link.
func seedOrders(t *testing.T, repo *sqlite.SQLiteRepository, orders ...int) map[string]int64 {
	t.Helper()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	ids := make(map[string]int64, len(orders))
	for i, order := range orders {
		title := string(rune('A' + i))
		link := &domain.Link{
			OwnerID:     owner,
			OriginalURL: "https://example.com/" + title,
			Title:       title,
			Active:      true,
			Order:       order,
			CreatedAt:   base.Add(time.Duration(i) * time.Minute),
			UpdatedAt:   base,
		}
		require.NoError(t, repo.Import(context.Background(), link))
		ids[title] = link.ID
	}
	return ids
}

// ordersByTitle maps title to order value for the owner.
func ordersByTitle(t *testing.T, repo ports.LinkRepository) map[string]int {
	t.Helper()
	links, err := repo.ListByOwner(context.Background(), owner)
	require.NoError(t, err)
	out := make(map[string]int, len(links))
	for _, l := range links {
		out[l.Title] = l.Order
	}
	return out
}

func requireContiguous(t *testing.T, repo ports.LinkRepository) {
	t.Helper()
	links, err := repo.ListByOwner(context.Background(), owner)
	require.NoError(t, err)
	for i, l := range links {
		require.Equal(t, i, l.Order, "link %d (%s)", l.ID, l.Title)
	}
}

// stubTx counts writes and lets a test fail individual statements.
type stubTx struct {
	ports.OwnerTx
	writes        *int
	setOrderFn    func(id int64, order int) error
	shiftOrdersFn func(from, to, delta int) error
}

func (s *stubTx) InsertLink(ctx context.Context, link *domain.Link) error {
	*s.writes++
	return s.OwnerTx.InsertLink(ctx, link)
}

func (s *stubTx) DeleteLink(ctx context.Context, id int64) error {
	*s.writes++
	return s.OwnerTx.DeleteLink(ctx, id)
}

func (s *stubTx) SetOrder(ctx context.Context, id int64, order int) error {
	*s.writes++
	if s.setOrderFn != nil {
		if err := s.setOrderFn(id, order); err != nil {
			return err
		}
	}
	return s.OwnerTx.SetOrder(ctx, id, order)
}

func (s *stubTx) ShiftOrders(ctx context.Context, from, to, delta int) error {
	*s.writes++
	if s.shiftOrdersFn != nil {
		if err := s.shiftOrdersFn(from, to, delta); err != nil {
			return err
		}
	}
	return s.OwnerTx.ShiftOrders(ctx, from, to, delta)
}

// stubRepo wraps every owner transaction in a stubTx.
type stubRepo struct {
	ports.LinkRepository
	writes        int
	setOrderFn    func(id int64, order int) error
	shiftOrdersFn func(from, to, delta int) error
}

func (s *stubRepo) WithOwnerTx(ctx context.Context, ownerID string, fn func(tx ports.OwnerTx) error) error {
	return s.LinkRepository.WithOwnerTx(ctx, ownerID, func(tx ports.OwnerTx) error {
		return fn(&stubTx{
			OwnerTx:       tx,
			writes:        &s.writes,
			setOrderFn:    s.setOrderFn,
			shiftOrdersFn: s.shiftOrdersFn,
		})
	})
}

type failingActivity struct{}

func (failingActivity) RecordActivity(context.Context, *domain.Activity) error {
	return context.DeadlineExceeded
}

func (failingActivity) ListActivity(context.Context, string, int) ([]domain.Activity, error) {
	return nil, context.DeadlineExceeded
}
