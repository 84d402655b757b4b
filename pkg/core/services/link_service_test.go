package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wadjakorntonsri/go-linkbio/pkg/core/domain"
)

func newTestLinkService(t *testing.T) (*LinkService, *OrderingService) {
	repo := newTestRepo(t)
	engine := newTestEngine(t, repo, repo)
	return NewLinkService(repo, engine, repo), engine
}

func TestCreateLinkValidatesURL(t *testing.T) {
	svc, _ := newTestLinkService(t)
	ctx := context.Background()

	for _, raw := range []string{"", "example.com", "ftp://example.com/file", "https://"} {
		_, err := svc.CreateLink(ctx, owner, raw, "x")
		assert.ErrorIs(t, err, domain.ErrInvalidArgument, raw)
	}

	link, err := svc.CreateLink(ctx, owner, "https://example.com", "Example")
	require.NoError(t, err)
	assert.True(t, link.Active)
	assert.Equal(t, owner, link.OwnerID)
	assert.Zero(t, link.Order)
}

func TestLinkLifecycle(t *testing.T) {
	svc, _ := newTestLinkService(t)
	ctx := context.Background()

	a, err := svc.CreateLink(ctx, owner, "https://a.example", "A")
	require.NoError(t, err)
	b, err := svc.CreateLink(ctx, owner, "https://b.example", "B")
	require.NoError(t, err)
	c, err := svc.CreateLink(ctx, owner, "https://c.example", "C")
	require.NoError(t, err)

	require.NoError(t, svc.MoveLink(ctx, owner, c.ID, 0))
	inactive := false
	updated, err := svc.UpdateLink(ctx, owner, b.ID, "", "B2", &inactive)
	require.NoError(t, err)
	assert.Equal(t, "https://b.example", updated.OriginalURL)
	assert.Equal(t, "B2", updated.Title)
	assert.False(t, updated.Active)

	require.NoError(t, svc.DeleteLink(ctx, owner, a.ID))

	links, err := svc.ListLinks(ctx, owner)
	require.NoError(t, err)
	require.Len(t, links, 2)
	assert.Equal(t, c.ID, links[0].ID)
	assert.Equal(t, 0, links[0].Order)
	assert.Equal(t, b.ID, links[1].ID)
	assert.Equal(t, 1, links[1].Order)

	entries, err := svc.ListActivity(ctx, owner, 0)
	require.NoError(t, err)
	assert.Len(t, entries, 5)
}

func TestForeignOwnerIsUnauthorized(t *testing.T) {
	svc, _ := newTestLinkService(t)
	ctx := context.Background()

	link, err := svc.CreateLink(ctx, owner, "https://a.example", "A")
	require.NoError(t, err)

	intruder := "intruder@example.com"
	_, err = svc.UpdateLink(ctx, intruder, link.ID, "", "pwned", nil)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	assert.ErrorIs(t, svc.DeleteLink(ctx, intruder, link.ID), domain.ErrUnauthorized)
	assert.ErrorIs(t, svc.MoveLink(ctx, intruder, link.ID, 0), domain.ErrUnauthorized)
	assert.ErrorIs(t, svc.MoveLink(ctx, owner, 424242, 0), domain.ErrNotFound)

	links, err := svc.ListLinks(ctx, intruder)
	require.NoError(t, err)
	assert.Empty(t, links)
}

func TestListActivityWithoutRepository(t *testing.T) {
	repo := newTestRepo(t)
	svc := NewLinkService(repo, newTestEngine(t, repo, nil), nil)

	entries, err := svc.ListActivity(context.Background(), owner, 5)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
