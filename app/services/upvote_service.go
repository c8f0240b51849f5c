package services

import (
	"context"
	"errors"

	"feedapp/app/logging"
	"feedapp/app/metrics"
	"feedapp/app/models"
	"feedapp/app/repositories"
)

// ToggleResult is the outcome of an upvote toggle. Post carries the new
// count so callers can patch the one affected post instead of refetching.
type ToggleResult struct {
	Upvoted bool         `json:"upvoted"`
	Post    *models.Post `json:"post"`
}

// UpvoteService flips a user's upvote on a post and keeps the post count
// and the user's interests in step.
type UpvoteService struct {
	store     repositories.Store
	interests *InterestService
}

// NewUpvoteService creates a new UpvoteService
func NewUpvoteService(store repositories.Store, interests *InterestService) *UpvoteService {
	return &UpvoteService{store: store, interests: interests}
}

// Toggle moves the (user, post) pair between not-upvoted and upvoted.
func (s *UpvoteService) Toggle(ctx context.Context, userID, postID string) (*ToggleResult, error) {
	if userID == "" {
		return nil, ErrUnauthorized
	}

	post, err := s.store.GetPost(ctx, postID)
	if err != nil {
		return nil, err
	}

	var out toggleOutcome
	if toggler, ok := s.store.(repositories.UpvoteToggler); ok {
		out.changed = true
		out.upvoted, out.count, err = toggler.ToggleUpvote(ctx, userID, postID)
	} else {
		out, err = s.toggleSteps(ctx, userID, post)
	}
	if err != nil {
		return nil, err
	}
	post.Upvotes = out.count

	if out.upvoted && out.changed {
		if err := s.interests.RecordUpvote(ctx, userID, post.Tags); err != nil {
			return nil, err
		}
	}

	metrics.RecordToggle(out.upvoted)
	logging.Ctx(ctx).Debug().
		Str("post_id", postID).
		Bool("upvoted", out.upvoted).
		Bool("changed", out.changed).
		Int("upvotes", out.count).
		Msg("upvote toggled")

	return &ToggleResult{Upvoted: out.upvoted, Post: post}, nil
}

// toggleOutcome is the state a toggle ended in. changed is false when a
// concurrent toggle had already made the same transition.
type toggleOutcome struct {
	upvoted bool
	changed bool
	count   int
}

// toggleSteps runs the check, insert-or-delete and count adjustment as
// separate store calls for stores without an atomic toggle.
func (s *UpvoteService) toggleSteps(ctx context.Context, userID string, post *models.Post) (toggleOutcome, error) {
	existing, err := s.store.FindUpvote(ctx, userID, post.ID)
	if err != nil {
		return toggleOutcome{}, err
	}

	if existing != nil {
		if err := s.store.DeleteUpvote(ctx, existing.ID); err != nil {
			if repositories.IsNotFound(err) {
				return toggleOutcome{count: post.Upvotes}, nil
			}
			return toggleOutcome{}, err
		}
		count, err := s.store.AdjustUpvoteCount(ctx, post.ID, -1)
		return toggleOutcome{changed: true, count: count}, err
	}

	if _, err := s.store.InsertUpvote(ctx, userID, post.ID); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return toggleOutcome{upvoted: true, count: post.Upvotes}, nil
		}
		return toggleOutcome{}, err
	}
	count, err := s.store.AdjustUpvoteCount(ctx, post.ID, 1)
	return toggleOutcome{upvoted: true, changed: true, count: count}, err
}
