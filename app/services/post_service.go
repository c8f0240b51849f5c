package services

import (
	"context"

	"feedapp/app/logging"
	"feedapp/app/metrics"
	"feedapp/app/models"
	"feedapp/app/repositories"
)

// PostService handles post creation and lookup
type PostService struct {
	store repositories.Store
}

// NewPostService creates a new PostService
func NewPostService(store repositories.Store) *PostService {
	return &PostService{store: store}
}

// CreatePost validates the input, stores the post and links its tags,
// creating tags that do not exist yet. A failure part way through leaves
// the rows written so far in place.
func (s *PostService) CreatePost(ctx context.Context, userID string, data *models.CreatePostData) (*models.Post, error) {
	if userID == "" {
		return nil, ErrUnauthorized
	}
	if data == nil {
		return nil, &ValidationError{Fields: []FieldError{{Field: "input", Message: "is required"}}}
	}

	data.Normalize()
	if err := data.Validate(); err != nil {
		return nil, newValidationError(err)
	}

	post := data.ToPost(userID)
	post.BeforeCreate()
	if err := post.Validate(); err != nil {
		return nil, newValidationError(err)
	}
	if err := s.store.CreatePost(ctx, post); err != nil {
		return nil, err
	}

	for _, name := range data.Tags {
		tag, err := s.store.EnsureTag(ctx, name)
		if err != nil {
			return nil, err
		}
		if err := s.store.LinkPostTag(ctx, post.ID, tag.ID); err != nil {
			return nil, err
		}
	}

	metrics.RecordPostCreated(len(data.Tags))
	logging.Ctx(ctx).Info().
		Str("post_id", post.ID).
		Strs("tags", data.Tags).
		Msg("post created")

	return s.store.GetPost(ctx, post.ID)
}

// GetPost retrieves a post with its tags and author
func (s *PostService) GetPost(ctx context.Context, id string) (*models.Post, error) {
	return s.store.GetPost(ctx, id)
}

// ListTags returns every known tag by name
func (s *PostService) ListTags(ctx context.Context) ([]*models.Tag, error) {
	return s.store.ListTags(ctx)
}
