package services

import (
	"context"
	"fmt"
	"net/url"
	"slices"
	"time"

	"github.com/wadjakorntonsri/go-linkbio/pkg/core/domain"
	"github.com/wadjakorntonsri/go-linkbio/pkg/ports"
)

const (
	defaultActivityLimit = 20
	maxActivityLimit     = 100
)

type LinkService struct {
	repo     ports.LinkRepository
	ordering ports.OrderingService
	activity ports.ActivityRepository
}

func NewLinkService(repo ports.LinkRepository, ordering ports.OrderingService, activity ports.ActivityRepository) *LinkService {
	return &LinkService{repo: repo, ordering: ordering, activity: activity}
}

func (s *LinkService) CreateLink(ctx context.Context, ownerID, originalURL, title string) (*domain.Link, error) {
	if err := validateURL(originalURL); err != nil {
		return nil, err
	}

	now := time.Now()
	link := &domain.Link{
		OwnerID:     ownerID,
		OriginalURL: originalURL,
		Title:       title,
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.ordering.Append(ctx, link); err != nil {
		return nil, err
	}
	return link, nil
}

// UpdateLink changes payload fields only (empty strings and nil keep the current value).
func (s *LinkService) UpdateLink(ctx context.Context, ownerID string, id int64, originalURL, title string, active *bool) (*domain.Link, error) {
	link, err := s.owned(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	if originalURL != "" {
		if err := validateURL(originalURL); err != nil {
			return nil, err
		}
		link.OriginalURL = originalURL
	}
	if title != "" {
		link.Title = title
	}
	if active != nil {
		link.Active = *active
	}
	link.UpdatedAt = time.Now()

	if err := s.repo.UpdatePayload(ctx, link); err != nil {
		return nil, err
	}
	return link, nil
}

func (s *LinkService) DeleteLink(ctx context.Context, ownerID string, id int64) error {
	if _, err := s.owned(ctx, ownerID, id); err != nil {
		return err
	}
	return s.ordering.Remove(ctx, ownerID, id)
}

func (s *LinkService) MoveLink(ctx context.Context, ownerID string, id int64, index int) error {
	if _, err := s.owned(ctx, ownerID, id); err != nil {
		return err
	}
	return s.ordering.MoveTo(ctx, ownerID, id, index)
}

func (s *LinkService) ReorderLinks(ctx context.Context, ownerID string, linkIDs []int64) error {
	return s.ordering.Reorder(ctx, ownerID, linkIDs)
}

func (s *LinkService) ListLinks(ctx context.Context, ownerID string) ([]domain.Link, error) {
	links, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(links, domain.CompareLinks)
	return links, nil
}

func (s *LinkService) ListActivity(ctx context.Context, ownerID string, limit int) ([]domain.Activity, error) {
	if limit < 1 {
		limit = defaultActivityLimit
	}
	limit = min(limit, maxActivityLimit)
	if s.activity == nil {
		return []domain.Activity{}, nil
	}
	return s.activity.ListActivity(ctx, ownerID, limit)
}

// owned distinguishes a missing link from one that belongs to somebody else.
func (s *LinkService) owned(ctx context.Context, ownerID string, id int64) (*domain.Link, error) {
	link, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if link == nil {
		return nil, fmt.Errorf("%w: link %d", domain.ErrNotFound, id)
	}
	if link.OwnerID != ownerID {
		return nil, fmt.Errorf("%w: link %d", domain.ErrUnauthorized, id)
	}
	return link, nil
}

func validateURL(raw string) error {
	if raw == "" {
		return fmt.Errorf("%w: original URL is required", domain.ErrInvalidArgument)
	}
	u, err := url.ParseRequestURI(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %q is not an http(s) URL", domain.ErrInvalidArgument, raw)
	}
	return nil
}

var _ ports.LinkService = (*LinkService)(nil)
