package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"feedapp/app/models"
	"feedapp/app/repositories"
	"feedapp/app/repositories/mock"
)

var baseTime = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

// seedPost stores a post created at baseTime+offset and links the named
// tags to it.
func seedPost(t *testing.T, store repositories.Store, title string, offset time.Duration, tags ...string) *models.Post {
	t.Helper()
	ctx := context.Background()

	post := &models.Post{
		Title:       title,
		Description: title + " description",
		AuthorID:    "author",
		CreatedAt:   baseTime.Add(offset),
	}
	require.NoError(t, store.CreatePost(ctx, post))
	for _, name := range tags {
		tag, err := store.EnsureTag(ctx, name)
		require.NoError(t, err)
		require.NoError(t, store.LinkPostTag(ctx, post.ID, tag.ID))
	}
	return post
}

func postIDs(posts []*models.Post) []string {
	ids := make([]string, 0, len(posts))
	for _, p := range posts {
		ids = append(ids, p.ID)
	}
	return ids
}

func newMockStore() *mock.Store {
	return mock.NewStore()
}
