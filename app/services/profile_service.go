package services

import (
	"context"
	"strings"

	"feedapp/app/models"
	"feedapp/app/repositories"
)

// ProfileService reads and updates the caller's display profile.
type ProfileService struct {
	store repositories.Store
}

// NewProfileService creates a new ProfileService
func NewProfileService(store repositories.Store) *ProfileService {
	return &ProfileService{store: store}
}

// Get returns the user's profile. A user without a stored profile gets an
// empty one, rendered as "Anonymous User".
func (s *ProfileService) Get(ctx context.Context, userID string) (*models.Profile, error) {
	if userID == "" {
		return nil, ErrUnauthorized
	}
	profile, err := s.store.GetProfile(ctx, userID)
	if repositories.IsNotFound(err) {
		return &models.Profile{ID: userID}, nil
	}
	return profile, err
}

// Update stores the user's profile. The id always comes from the caller's
// identity.
func (s *ProfileService) Update(ctx context.Context, userID string, in *models.Profile) (*models.Profile, error) {
	if userID == "" {
		return nil, ErrUnauthorized
	}
	if in == nil {
		return nil, &ValidationError{Fields: []FieldError{{Field: "input", Message: "is required"}}}
	}
	profile := &models.Profile{
		ID:        userID,
		Username:  strings.TrimSpace(in.Username),
		AvatarURL: strings.TrimSpace(in.AvatarURL),
	}
	if err := profile.Validate(); err != nil {
		return nil, newValidationError(err)
	}
	if err := s.store.UpsertProfile(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}
