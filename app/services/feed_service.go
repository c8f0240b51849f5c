package services

import (
	"context"

	"feedapp/app/logging"
	"feedapp/app/metrics"
	"feedapp/app/models"
	"feedapp/app/repositories"
)

const (
	DefaultInterestLimit = 10
	DefaultGeneralLimit  = 5
)

// FeedService builds the global and personalized feeds.
type FeedService struct {
	store         repositories.Store
	interestLimit int
	generalLimit  int
}

// NewFeedService creates a FeedService. Non-positive limits fall back to
// the defaults.
func NewFeedService(store repositories.Store, interestLimit, generalLimit int) *FeedService {
	if interestLimit <= 0 {
		interestLimit = DefaultInterestLimit
	}
	if generalLimit <= 0 {
		generalLimit = DefaultGeneralLimit
	}
	return &FeedService{
		store:         store,
		interestLimit: interestLimit,
		generalLimit:  generalLimit,
	}
}

// Global returns every post in the given order.
func (s *FeedService) Global(ctx context.Context, order repositories.PostOrder) ([]*models.Post, error) {
	metrics.RecordFeed("global")
	return s.store.ListPosts(ctx, order, 0)
}

// Personalized returns posts matching the user's interest tags followed by
// the newest posts overall, without duplicates. A user with no interests
// (or no identity) gets the global feed.
func (s *FeedService) Personalized(ctx context.Context, userID string) ([]*models.Post, error) {
	if userID == "" {
		metrics.RecordFeed("fallback")
		return s.store.ListPosts(ctx, repositories.OrderNewest, 0)
	}

	interests, err := s.store.GetUserInterests(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(interests) == 0 {
		metrics.RecordFeed("fallback")
		return s.store.ListPosts(ctx, repositories.OrderNewest, 0)
	}

	tagIDs := make([]string, 0, len(interests))
	for _, in := range interests {
		tagIDs = append(tagIDs, in.TagID)
	}

	matched, err := s.store.ListPostsByTags(ctx, tagIDs, s.interestLimit)
	if err != nil {
		return nil, err
	}
	general, err := s.store.ListPosts(ctx, repositories.OrderNewest, s.generalLimit)
	if err != nil {
		return nil, err
	}

	feed := DedupePosts(append(matched, general...))
	metrics.RecordFeed("personalized")
	logging.Ctx(ctx).Debug().
		Int("matched", len(matched)).
		Int("general", len(general)).
		Int("total", len(feed)).
		Msg("personalized feed built")
	return feed, nil
}

// DedupePosts drops posts whose id was already seen, keeping the first
// occurrence and the original order.
func DedupePosts(posts []*models.Post) []*models.Post {
	seen := make(map[string]struct{}, len(posts))
	out := make([]*models.Post, 0, len(posts))
	for _, p := range posts {
		if p == nil {
			continue
		}
		if _, ok := seen[p.ID]; ok {
			continue
		}
		seen[p.ID] = struct{}{}
		out = append(out, p)
	}
	return out
}
