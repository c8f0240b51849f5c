package repositories

import (
	"context"

	"github.com/dgraph-io/badger/v4"

	"feedapp/app/models"
)

// GetProfile returns the profile for userID.
func (s *BadgerStore) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	var profile models.Profile
	err := s.view(ctx, func(txn *badger.Txn) error {
		return getEntity(txn, profileKey(userID), &profile)
	})
	if err != nil {
		return nil, wrapErr("get_profile", err)
	}
	return &profile, nil
}

// UpsertProfile creates or replaces a profile, keeping the original
// creation time.
func (s *BadgerStore) UpsertProfile(ctx context.Context, profile *models.Profile) error {
	err := s.update(ctx, func(txn *badger.Txn) error {
		var existing models.Profile
		switch err := getEntity(txn, profileKey(profile.ID), &existing); {
		case err == nil:
			profile.CreatedAt = existing.CreatedAt
		case !IsNotFound(err):
			return err
		}
		profile.BeforeCreate()
		return setEntity(txn, profileKey(profile.ID), profile)
	})
	return wrapErr("upsert_profile", err)
}
