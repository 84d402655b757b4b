package services

import (
	"context"
	"fmt"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/wadjakorntonsri/go-linkbio/pkg/core/domain"
	"github.com/wadjakorntonsri/go-linkbio/pkg/ports"
)

var handlePattern = regexp.MustCompile(`^[a-z0-9_-]{2,32}$`)

type ProfileService struct {
	profiles ports.ProfileRepository
	links    ports.LinkRepository
}

func NewProfileService(profiles ports.ProfileRepository, links ports.LinkRepository) *ProfileService {
	return &ProfileService{profiles: profiles, links: links}
}

func (s *ProfileService) SaveProfile(ctx context.Context, ownerID, handle, title, bio string) (*domain.Profile, error) {
	handle = strings.ToLower(strings.TrimSpace(handle))
	if !handlePattern.MatchString(handle) {
		return nil, fmt.Errorf("%w: handle must match %s", domain.ErrInvalidArgument, handlePattern)
	}

	// Check if handle is taken by another owner
	taken, err := s.profiles.GetProfileByHandle(ctx, handle)
	if err != nil {
		return nil, err
	}
	if taken != nil && taken.OwnerID != ownerID {
		return nil, fmt.Errorf("%w: handle %q already exists", domain.ErrConflict, handle)
	}

	now := time.Now()
	profile := &domain.Profile{OwnerID: ownerID, CreatedAt: now}
	existing, err := s.profiles.GetProfileByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		profile.CreatedAt = existing.CreatedAt
	}
	profile.Handle = handle
	profile.Title = title
	profile.Bio = bio
	profile.UpdatedAt = now

	if err := s.profiles.UpsertProfile(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

// GetPublicProfile returns the profile with its active links in display order.
func (s *ProfileService) GetPublicProfile(ctx context.Context, handle string) (*domain.Profile, error) {
	profile, err := s.profiles.GetProfileByHandle(ctx, strings.ToLower(handle))
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, fmt.Errorf("%w: profile %q", domain.ErrNotFound, handle)
	}

	links, err := s.links.ListByOwner(ctx, profile.OwnerID)
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(links, domain.CompareLinks)

	profile.Links = []domain.Link{}
	for _, l := range links {
		if l.Active {
			profile.Links = append(profile.Links, l)
		}
	}
	return profile, nil
}

var _ ports.ProfileService = (*ProfileService)(nil)
