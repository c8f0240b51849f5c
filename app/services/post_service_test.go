package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"feedapp/app/models"
	"feedapp/app/repositories"
	"feedapp/app/repositories/mock"
)

func floatPtr(f float64) *float64 { return &f }

func TestPostService_CreatePost(t *testing.T) {
	ctx := context.Background()

	t.Run("new tag is created once and reused", func(t *testing.T) {
		store := mock.NewStore()
		svc := NewPostService(store)

		first, err := svc.CreatePost(ctx, "u1", &models.CreatePostData{
			Title:       "Lisbon",
			Description: "Trams and tiles",
			Tags:        []string{"new-tag"},
		})
		require.NoError(t, err)
		require.Len(t, first.Tags, 1)
		assert.Equal(t, 1, store.TagCount())
		assert.Equal(t, 1, store.LinkCount())

		second, err := svc.CreatePost(ctx, "u2", &models.CreatePostData{
			Title:       "Porto",
			Description: "Bridges",
			Tags:        []string{"new-tag"},
		})
		require.NoError(t, err)
		require.Len(t, second.Tags, 1)
		assert.Equal(t, first.Tags[0].ID, second.Tags[0].ID)
		assert.Equal(t, 1, store.TagCount())
		assert.Equal(t, 2, store.LinkCount())
	})

	t.Run("stored post satisfies model rules", func(t *testing.T) {
		store := mock.NewStore()
		svc := NewPostService(store)

		post, err := svc.CreatePost(ctx, "u1", &models.CreatePostData{
			Title:       "Alps",
			Description: "Snow",
			Tags:        []string{"travel"},
		})
		require.NoError(t, err)
		assert.NoError(t, post.Validate())
		assert.False(t, post.CreatedAt.IsZero())
		assert.Equal(t, post.CreatedAt, post.UpdatedAt)

		_, err = store.EnsureTag(ctx, strings.Repeat("x", 51))
		assert.Error(t, err)
		assert.Equal(t, 1, store.TagCount())
	})

	t.Run("input is trimmed and tags deduplicated", func(t *testing.T) {
		store := mock.NewStore()
		svc := NewPostService(store)

		post, err := svc.CreatePost(ctx, "u1", &models.CreatePostData{
			Title:       "  Ramen  ",
			Description: " Best bowl in town ",
			Tags:        []string{" food ", "travel", "food", "  "},
		})
		require.NoError(t, err)
		assert.Equal(t, "Ramen", post.Title)
		assert.Equal(t, "Best bowl in town", post.Description)
		assert.Equal(t, "u1", post.AuthorID)
		assert.Equal(t, 0, post.Upvotes)
		assert.False(t, post.CreatedAt.IsZero())
		require.Len(t, post.Tags, 2)
		assert.Equal(t, "food", post.Tags[0].Name)
		assert.Equal(t, "travel", post.Tags[1].Name)
		assert.Equal(t, models.TagColor("food"), post.Tags[0].Color)
	})

	t.Run("location gets a default name", func(t *testing.T) {
		store := mock.NewStore()
		svc := NewPostService(store)

		post, err := svc.CreatePost(ctx, "u1", &models.CreatePostData{
			Title:       "Summit",
			Description: "View",
			LocationLat: floatPtr(46.55791),
			LocationLng: floatPtr(7.98512),
		})
		require.NoError(t, err)
		require.NotNil(t, post.Location)
		assert.Equal(t, "46.5579, 7.9851", post.Location.Name)
	})

	t.Run("validation happens before any store call", func(t *testing.T) {
		store := mock.NewStore()
		svc := NewPostService(store)

		_, err := svc.CreatePost(ctx, "u1", &models.CreatePostData{
			Title:    "   ",
			ImageURL: "not a url",
		})
		var ve *ValidationError
		require.ErrorAs(t, err, &ve)
		fields := make([]string, 0, len(ve.Fields))
		for _, f := range ve.Fields {
			fields = append(fields, f.Field)
		}
		assert.ElementsMatch(t, []string{"title", "description", "image_url"}, fields)
		assert.Equal(t, 0, store.Calls("create_post"))
	})

	t.Run("half a location is rejected", func(t *testing.T) {
		svc := NewPostService(mock.NewStore())
		_, err := svc.CreatePost(ctx, "u1", &models.CreatePostData{
			Title:       "t",
			Description: "d",
			LocationLat: floatPtr(10),
		})
		var ve *ValidationError
		assert.ErrorAs(t, err, &ve)
	})

	t.Run("nil input", func(t *testing.T) {
		svc := NewPostService(mock.NewStore())
		_, err := svc.CreatePost(ctx, "u1", nil)
		var ve *ValidationError
		assert.ErrorAs(t, err, &ve)
	})

	t.Run("anonymous caller", func(t *testing.T) {
		store := mock.NewStore()
		svc := NewPostService(store)
		_, err := svc.CreatePost(ctx, "", &models.CreatePostData{Title: "t", Description: "d"})
		assert.ErrorIs(t, err, ErrUnauthorized)
		assert.Equal(t, 0, store.Calls("create_post"))
	})

	t.Run("link failure keeps earlier rows", func(t *testing.T) {
		store := mock.NewStore()
		svc := NewPostService(store)
		store.FailOn("link_post_tag", errors.New("constraint violated"))

		_, err := svc.CreatePost(ctx, "u1", &models.CreatePostData{
			Title:       "t",
			Description: "d",
			Tags:        []string{"orphan"},
		})
		var dae *repositories.DataAccessError
		require.ErrorAs(t, err, &dae)
		assert.Equal(t, "link_post_tag", dae.Op)
		assert.Equal(t, 1, store.TagCount())

		posts, err := store.ListPosts(ctx, repositories.OrderNewest, 0)
		require.NoError(t, err)
		assert.Len(t, posts, 1)
	})
}

func TestPostService_GetPostAndTags(t *testing.T) {
	ctx := context.Background()
	store := mock.NewStore()
	svc := NewPostService(store)
	require.NoError(t, store.UpsertProfile(ctx, &models.Profile{ID: "u1", Username: "ana"}))

	created, err := svc.CreatePost(ctx, "u1", &models.CreatePostData{
		Title:       "t",
		Description: "d",
		Tags:        []string{"zeta", "alpha"},
	})
	require.NoError(t, err)

	got, err := svc.GetPost(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "ana", got.Author.DisplayName())
	assert.Len(t, got.Tags, 2)

	_, err = svc.GetPost(ctx, "missing")
	assert.True(t, repositories.IsNotFound(err))

	tags, err := svc.ListTags(ctx)
	require.NoError(t, err)
	require.Len(t, tags, 2)
	assert.Equal(t, "alpha", tags[0].Name)
	assert.Equal(t, "zeta", tags[1].Name)
}
