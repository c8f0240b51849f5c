package repositories

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"feedapp/app/models"
)

func newTestStore(t *testing.T) *BadgerStore {
	t.Helper()
	store, err := NewRepository(t.TempDir() + "/test.db")
	require.NoError(t, err)
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

func createPost(t *testing.T, store *BadgerStore, title string, createdAt time.Time, tags ...string) *models.Post {
	t.Helper()
	ctx := context.Background()
	post := &models.Post{
		Title:       title,
		Description: title + " description",
		AuthorID:    "author-1",
		CreatedAt:   createdAt,
	}
	require.NoError(t, store.CreatePost(ctx, post))
	for _, name := range tags {
		tag, err := store.EnsureTag(ctx, name)
		require.NoError(t, err)
		require.NoError(t, store.LinkPostTag(ctx, post.ID, tag.ID))
	}
	return post
}

func TestPostRepository(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	base := time.Now().Add(-time.Hour)

	p1 := createPost(t, store, "first", base, "travel")
	p2 := createPost(t, store, "second", base.Add(time.Minute), "food")
	p3 := createPost(t, store, "third", base.Add(2*time.Minute))

	t.Run("create and get post", func(t *testing.T) {
		assert.NotEmpty(t, p1.ID)

		got, err := store.GetPost(ctx, p1.ID)
		require.NoError(t, err)
		assert.Equal(t, "first", got.Title)
		require.Len(t, got.Tags, 1)
		assert.Equal(t, "travel", got.Tags[0].Name)
		assert.Equal(t, models.TagColor("travel"), got.Tags[0].Color)
		assert.Nil(t, got.Author)
	})

	t.Run("get missing post", func(t *testing.T) {
		_, err := store.GetPost(ctx, "missing")
		assert.True(t, IsNotFound(err))
		var dae *DataAccessError
		assert.ErrorAs(t, err, &dae)
	})

	t.Run("list newest first", func(t *testing.T) {
		posts, err := store.ListPosts(ctx, OrderNewest, 0)
		require.NoError(t, err)
		require.Len(t, posts, 3)
		assert.Equal(t, []string{p3.ID, p2.ID, p1.ID}, []string{posts[0].ID, posts[1].ID, posts[2].ID})

		limited, err := store.ListPosts(ctx, OrderNewest, 2)
		require.NoError(t, err)
		assert.Len(t, limited, 2)
		assert.Equal(t, p3.ID, limited[0].ID)
	})

	t.Run("list top", func(t *testing.T) {
		_, err := store.AdjustUpvoteCount(ctx, p1.ID, 4)
		require.NoError(t, err)

		posts, err := store.ListPosts(ctx, OrderTop, 0)
		require.NoError(t, err)
		assert.Equal(t, p1.ID, posts[0].ID)
		assert.Equal(t, p3.ID, posts[1].ID)

		_, err = store.AdjustUpvoteCount(ctx, p1.ID, -4)
		require.NoError(t, err)
	})

	t.Run("list by tags", func(t *testing.T) {
		travel, err := store.EnsureTag(ctx, "travel")
		require.NoError(t, err)
		food, err := store.EnsureTag(ctx, "food")
		require.NoError(t, err)

		posts, err := store.ListPostsByTags(ctx, []string{travel.ID, food.ID}, 10)
		require.NoError(t, err)
		require.Len(t, posts, 2)
		assert.Equal(t, p2.ID, posts[0].ID)
		assert.Equal(t, p1.ID, posts[1].ID)

		one, err := store.ListPostsByTags(ctx, []string{travel.ID, food.ID}, 1)
		require.NoError(t, err)
		assert.Len(t, one, 1)

		none, err := store.ListPostsByTags(ctx, nil, 10)
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("author hydrated", func(t *testing.T) {
		require.NoError(t, store.UpsertProfile(ctx, &models.Profile{ID: "author-1", Username: "ana"}))
		got, err := store.GetPost(ctx, p2.ID)
		require.NoError(t, err)
		require.NotNil(t, got.Author)
		assert.Equal(t, "ana", got.Author.Username)
	})
}

func TestAdjustUpvoteCount(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	post := createPost(t, store, "count", time.Now())

	n, err := store.AdjustUpvoteCount(ctx, post.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = store.AdjustUpvoteCount(ctx, post.ID, -3)
	require.NoError(t, err)
	assert.Equal(t, 0, n, "count is floored at zero")

	_, err = store.AdjustUpvoteCount(ctx, "missing", 1)
	assert.True(t, IsNotFound(err))
}

func TestAdjustUpvoteCountConcurrent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	post := createPost(t, store, "busy", time.Now())

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = store.AdjustUpvoteCount(ctx, post.ID, 1)
		}()
	}
	wg.Wait()

	got, err := store.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.LessOrEqual(t, got.Upvotes, 4)
	assert.GreaterOrEqual(t, got.Upvotes, 1)
}

func TestCanceledContext(t *testing.T) {
	store := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.ListPosts(ctx, OrderNewest, 0)
	assert.ErrorIs(t, err, context.Canceled)
}
