package services

import (
	"context"
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wadjakorntonsri/go-linkbio/pkg/core/domain"
)

func appendLink(t *testing.T, engine *OrderingService, title string) *domain.Link {
	t.Helper()
	link := &domain.Link{OwnerID: owner, OriginalURL: "https://example.com/" + title, Title: title, Active: true}
	require.NoError(t, engine.Append(context.Background(), link))
	return link
}

func TestAppendAssignsCount(t *testing.T) {
	repo := newTestRepo(t)
	engine := newTestEngine(t, repo, repo)

	a := appendLink(t, engine, "A")
	b := appendLink(t, engine, "B")
	c := appendLink(t, engine, "C")

	assert.Equal(t, 0, a.Order)
	assert.Equal(t, 1, b.Order)
	assert.Equal(t, 2, c.Order)
	assert.Equal(t, map[string]int{"A": 0, "B": 1, "C": 2}, ordersByTitle(t, repo))
}

func TestAppendRequiresOwner(t *testing.T) {
	repo := newTestRepo(t)
	engine := newTestEngine(t, repo, nil)

	err := engine.Append(context.Background(), &domain.Link{OriginalURL: "https://example.com"})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestMoveToFront(t *testing.T) {
	repo := newTestRepo(t)
	ids := seedOrders(t, repo, 0, 1, 2, 3, 4)
	engine := newTestEngine(t, repo, repo)

	require.NoError(t, engine.MoveTo(context.Background(), owner, ids["C"], 0))

	assert.Equal(t, map[string]int{"C": 0, "A": 1, "B": 2, "D": 3, "E": 4}, ordersByTitle(t, repo))
}

func TestMoveToCases(t *testing.T) {
	tests := []struct {
		name  string
		title string
		index int
		want  map[string]int
	}{
		{"forward", "A", 3, map[string]int{"B": 0, "C": 1, "D": 2, "A": 3, "E": 4}},
		{"backward", "E", 1, map[string]int{"A": 0, "E": 1, "B": 2, "C": 3, "D": 4}},
		{"to end", "B", 4, map[string]int{"A": 0, "C": 1, "D": 2, "E": 3, "B": 4}},
		{"adjacent swap", "C", 3, map[string]int{"A": 0, "B": 1, "D": 2, "C": 3, "E": 4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newTestRepo(t)
			ids := seedOrders(t, repo, 0, 1, 2, 3, 4)
			engine := newTestEngine(t, repo, repo)

			require.NoError(t, engine.MoveTo(context.Background(), owner, ids[tt.title], tt.index))
			assert.Equal(t, tt.want, ordersByTitle(t, repo))
		})
	}
}

func TestMoveToCurrentIndexWritesNothing(t *testing.T) {
	repo := newTestRepo(t)
	ids := seedOrders(t, repo, 0, 1, 2)
	stub := &stubRepo{LinkRepository: repo}
	engine := newTestEngine(t, stub, repo)

	require.NoError(t, engine.MoveTo(context.Background(), owner, ids["B"], 1))

	assert.Zero(t, stub.writes)
	assert.Equal(t, map[string]int{"A": 0, "B": 1, "C": 2}, ordersByTitle(t, repo))

	entries, err := repo.ListActivity(context.Background(), owner, 10)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestMoveToErrors(t *testing.T) {
	repo := newTestRepo(t)
	ids := seedOrders(t, repo, 0, 1, 2)
	engine := newTestEngine(t, repo, repo)
	ctx := context.Background()

	assert.ErrorIs(t, engine.MoveTo(ctx, owner, ids["A"], 3), domain.ErrInvalidArgument)
	assert.ErrorIs(t, engine.MoveTo(ctx, owner, ids["A"], -1), domain.ErrInvalidArgument)
	assert.ErrorIs(t, engine.MoveTo(ctx, owner, 9999, 0), domain.ErrNotFound)
	assert.ErrorIs(t, engine.MoveTo(ctx, "someone@example.com", ids["A"], 0), domain.ErrNotFound)

	assert.Equal(t, map[string]int{"A": 0, "B": 1, "C": 2}, ordersByTitle(t, repo))
}

func TestMoveToFailureLeavesStateUnchanged(t *testing.T) {
	repo := newTestRepo(t)
	ids := seedOrders(t, repo, 0, 1, 2, 3, 4)
	injected := errors.New("disk unplugged")
	stub := &stubRepo{
		LinkRepository: repo,
		shiftOrdersFn:  func(from, to, delta int) error { return injected },
	}
	engine := newTestEngine(t, stub, repo)

	err := engine.MoveTo(context.Background(), owner, ids["D"], 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrTransactionFailure)
	assert.ErrorIs(t, err, injected)
	assert.Positive(t, stub.writes, "the moved link was parked before the failure")

	report, err := engine.Diagnose(context.Background(), owner)
	require.NoError(t, err)
	assert.True(t, report.Consistent)
	assert.Empty(t, report.Anomalies)
	assert.Equal(t, map[string]int{"A": 0, "B": 1, "C": 2, "D": 3, "E": 4}, ordersByTitle(t, repo))
}

func TestRemoveCompacts(t *testing.T) {
	repo := newTestRepo(t)
	ids := seedOrders(t, repo, 0, 1, 2, 3)
	engine := newTestEngine(t, repo, repo)

	require.NoError(t, engine.Remove(context.Background(), owner, ids["B"]))

	assert.Equal(t, map[string]int{"A": 0, "C": 1, "D": 2}, ordersByTitle(t, repo))
	assert.ErrorIs(t, engine.Remove(context.Background(), owner, ids["B"]), domain.ErrNotFound)
}

func TestRemoveLastAndOnly(t *testing.T) {
	repo := newTestRepo(t)
	ids := seedOrders(t, repo, 0, 1)
	engine := newTestEngine(t, repo, repo)

	require.NoError(t, engine.Remove(context.Background(), owner, ids["B"]))
	require.NoError(t, engine.Remove(context.Background(), owner, ids["A"]))
	assert.Empty(t, ordersByTitle(t, repo))
}

// Random Append/Remove/MoveTo sequences keep {0..N-1} after every step.
func TestOperationsPreserveContiguity(t *testing.T) {
	repo := newTestRepo(t)
	engine := newTestEngine(t, repo, nil)
	ctx := context.Background()
	rng := rand.New(rand.NewPCG(7, 42))

	var live []int64
	for step := 0; step < 120; step++ {
		switch op := rng.IntN(3); {
		case op == 0 || len(live) < 2:
			link := appendLink(t, engine, "L")
			live = append(live, link.ID)
		case op == 1:
			i := rng.IntN(len(live))
			require.NoError(t, engine.Remove(ctx, owner, live[i]))
			live = append(live[:i], live[i+1:]...)
		default:
			id := live[rng.IntN(len(live))]
			require.NoError(t, engine.MoveTo(ctx, owner, id, rng.IntN(len(live))))
		}
		requireContiguous(t, repo)
	}
}

func TestReorderAppliesPermutation(t *testing.T) {
	repo := newTestRepo(t)
	ids := seedOrders(t, repo, 0, 1, 2, 3)
	engine := newTestEngine(t, repo, repo)

	err := engine.Reorder(context.Background(), owner, []int64{ids["D"], ids["C"], ids["B"], ids["A"]})
	require.NoError(t, err)

	assert.Equal(t, map[string]int{"D": 0, "C": 1, "B": 2, "A": 3}, ordersByTitle(t, repo))
}

func TestReorderRejectsPartialLists(t *testing.T) {
	repo := newTestRepo(t)
	ids := seedOrders(t, repo, 0, 1, 2)
	engine := newTestEngine(t, repo, repo)
	ctx := context.Background()

	assert.ErrorIs(t, engine.Reorder(ctx, owner, []int64{ids["A"], ids["B"]}), domain.ErrInvalidArgument)
	assert.ErrorIs(t, engine.Reorder(ctx, owner, []int64{ids["A"], ids["A"], ids["B"]}), domain.ErrInvalidArgument)
	assert.ErrorIs(t, engine.Reorder(ctx, owner, []int64{ids["A"], ids["B"], 9999}), domain.ErrInvalidArgument)
	assert.Equal(t, map[string]int{"A": 0, "B": 1, "C": 2}, ordersByTitle(t, repo))
}

func TestActivityFailureDoesNotAbortMutation(t *testing.T) {
	repo := newTestRepo(t)
	engine := newTestEngine(t, repo, failingActivity{})

	link := appendLink(t, engine, "A")
	appendLink(t, engine, "B")
	require.NoError(t, engine.MoveTo(context.Background(), owner, link.ID, 1))

	assert.Equal(t, map[string]int{"B": 0, "A": 1}, ordersByTitle(t, repo))
}

func TestMutationsAreRecorded(t *testing.T) {
	repo := newTestRepo(t)
	engine := newTestEngine(t, repo, repo)
	ctx := context.Background()

	a := appendLink(t, engine, "A")
	appendLink(t, engine, "B")
	require.NoError(t, engine.MoveTo(ctx, owner, a.ID, 1))
	require.NoError(t, engine.Remove(ctx, owner, a.ID))

	entries, err := repo.ListActivity(ctx, owner, 10)
	require.NoError(t, err)
	actions := make([]domain.ActivityAction, 0, len(entries))
	for _, e := range entries {
		actions = append(actions, e.Action)
	}
	assert.ElementsMatch(t, []domain.ActivityAction{
		domain.ActionCreate, domain.ActionCreate, domain.ActionMove, domain.ActionDelete,
	}, actions)
}
