package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/dgraph-io/badger/v4"

	"feedapp/app/models"
)

// GetUserInterests returns the user's interest records, highest score first.
func (s *BadgerStore) GetUserInterests(ctx context.Context, userID string) ([]*models.UserInterest, error) {
	var interests []*models.UserInterest
	err := s.view(ctx, func(txn *badger.Txn) error {
		interests = nil
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := interestPrefix(userID)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var interest models.UserInterest
			if err := it.Item().Value(func(val []byte) error {
				return unmarshalEntity(val, &interest)
			}); err != nil {
				return err
			}
			interests = append(interests, &interest)
		}

		for _, interest := range interests {
			var tag models.Tag
			err := getEntity(txn, tagKey(interest.TagID), &tag)
			if errors.Is(err, ErrNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			interest.Tag = &tag
		}
		return nil
	})
	if err != nil {
		return nil, wrapErr("get_user_interests", err)
	}
	SortInterests(interests)
	return interests, nil
}

// UpsertInterest creates the (user, tag) record with score delta, or adds
// delta to the existing score.
func (s *BadgerStore) UpsertInterest(ctx context.Context, userID, tagID string, delta float64) (*models.UserInterest, error) {
	var result *models.UserInterest
	err := s.update(ctx, func(txn *badger.Txn) error {
		key := interestKey(userID, tagID)
		now := time.Now().UTC()

		var interest models.UserInterest
		err := getEntity(txn, key, &interest)
		switch {
		case errors.Is(err, ErrNotFound):
			interest = models.UserInterest{
				ID:            NewID(),
				UserID:        userID,
				TagID:         tagID,
				InterestScore: delta,
				CreatedAt:     now,
				UpdatedAt:     now,
			}
		case err != nil:
			return err
		default:
			interest.InterestScore += delta
			interest.UpdatedAt = now
		}
		if interest.InterestScore < 0 {
			interest.InterestScore = 0
		}

		if err := setEntity(txn, key, &interest); err != nil {
			return err
		}
		result = &interest
		return nil
	})
	if err != nil {
		return nil, wrapErr("upsert_interest", err)
	}
	return result, nil
}
