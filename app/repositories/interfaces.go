package repositories

import (
	"context"

	"feedapp/app/models"
)

// PostOrder selects the ordering of a post listing.
type PostOrder string

const (
	// OrderNewest sorts by creation time, newest first.
	OrderNewest PostOrder = "newest"
	// OrderTop sorts by upvote count, then creation time, both descending.
	OrderTop PostOrder = "top"
)

// ParsePostOrder maps a query value to a PostOrder, defaulting to newest.
func ParsePostOrder(s string) PostOrder {
	if PostOrder(s) == OrderTop {
		return OrderTop
	}
	return OrderNewest
}

// Store is the data access contract for posts, tags, interactions and
// interest scores. Every failure is a *DataAccessError.
type Store interface {
	ListPosts(ctx context.Context, order PostOrder, limit int) ([]*models.Post, error)
	ListPostsByTags(ctx context.Context, tagIDs []string, limit int) ([]*models.Post, error)
	GetPost(ctx context.Context, postID string) (*models.Post, error)
	CreatePost(ctx context.Context, post *models.Post) error
	AdjustUpvoteCount(ctx context.Context, postID string, delta int) (int, error)

	EnsureTag(ctx context.Context, name string) (*models.Tag, error)
	LinkPostTag(ctx context.Context, postID, tagID string) error
	ListTags(ctx context.Context) ([]*models.Tag, error)

	GetUserInterests(ctx context.Context, userID string) ([]*models.UserInterest, error)
	UpsertInterest(ctx context.Context, userID, tagID string, delta float64) (*models.UserInterest, error)

	FindUpvote(ctx context.Context, userID, postID string) (*models.PostInteraction, error)
	InsertUpvote(ctx context.Context, userID, postID string) (*models.PostInteraction, error)
	DeleteUpvote(ctx context.Context, interactionID string) error

	GetProfile(ctx context.Context, userID string) (*models.Profile, error)
	UpsertProfile(ctx context.Context, profile *models.Profile) error

	Close() error
}

// UpvoteToggler is implemented by stores that can flip a user's upvote and
// adjust the post's count in a single atomic step.
type UpvoteToggler interface {
	ToggleUpvote(ctx context.Context, userID, postID string) (upvoted bool, count int, err error)
}
