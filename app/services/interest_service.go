package services

import (
	"context"

	"feedapp/app/logging"
	"feedapp/app/models"
	"feedapp/app/repositories"
)

// interestPerUpvote is the score a single upvote adds to each of the
// post's tags.
const interestPerUpvote = 1

// InterestService maintains per-user, per-tag affinity scores.
type InterestService struct {
	store repositories.Store
}

// NewInterestService creates a new InterestService
func NewInterestService(store repositories.Store) *InterestService {
	return &InterestService{store: store}
}

// RecordUpvote raises the user's interest in every distinct tag of an
// upvoted post. Scores only grow; removing an upvote leaves them as is.
func (s *InterestService) RecordUpvote(ctx context.Context, userID string, tags []*models.Tag) error {
	if userID == "" {
		return ErrUnauthorized
	}
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		if tag == nil || tag.ID == "" {
			continue
		}
		if _, ok := seen[tag.ID]; ok {
			continue
		}
		seen[tag.ID] = struct{}{}

		in, err := s.store.UpsertInterest(ctx, userID, tag.ID, interestPerUpvote)
		if err != nil {
			return err
		}
		logging.Ctx(ctx).Debug().
			Str("tag", tag.Name).
			Float64("score", in.InterestScore).
			Msg("interest recorded")
	}
	return nil
}

// Interests lists the user's interest records, highest score first.
func (s *InterestService) Interests(ctx context.Context, userID string) ([]*models.UserInterest, error) {
	if userID == "" {
		return nil, ErrUnauthorized
	}
	return s.store.GetUserInterests(ctx, userID)
}
