package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/schoolsite/portal-backend/internal/model"
	"github.com/schoolsite/portal-backend/internal/repository"
)

type profileStore interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*model.Profile, error)
	UpsertProfile(ctx context.Context, p *model.Profile) error
}

// ProfileService reads and edits the caller's own profile.
type ProfileService struct {
	profiles profileStore
	log      zerolog.Logger
}

// NewProfileService creates a new ProfileService.
func NewProfileService(profiles profileStore, log zerolog.Logger) *ProfileService {
	return &ProfileService{
		profiles: profiles,
		log:      log.With().Str("component", "profile_service").Logger(),
	}
}

// Get returns the profile, or an empty one when none was stored yet.
func (s *ProfileService) Get(ctx context.Context, userID uuid.UUID) (*model.Profile, error) {
	p, err := s.profiles.GetProfile(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return &model.Profile{UserID: userID}, nil
	}
	return p, err
}

// Update replaces the caller's display data.
func (s *ProfileService) Update(ctx context.Context, userID uuid.UUID, req *model.UpdateProfileRequest) (*model.Profile, error) {
	p := &model.Profile{UserID: userID, FullName: req.FullName, AvatarURL: req.AvatarURL}
	if err := s.profiles.UpsertProfile(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}
