package postgres

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"feedapp/app/models"
	"feedapp/app/repositories"
)

// newTestStore connects to the database named by FEEDAPP_TEST_POSTGRES_DSN
// and empties it. Tests are skipped when the variable is unset.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	dsn := os.Getenv("FEEDAPP_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("FEEDAPP_TEST_POSTGRES_DSN not set")
	}
	ctx := context.Background()
	store, err := New(ctx, dsn, 4)
	require.NoError(t, err)
	require.NoError(t, store.Truncate(ctx))
	t.Cleanup(func() { store.Close() })
	return store
}

func createPost(t *testing.T, store *Store, title string, createdAt time.Time, tags ...string) *models.Post {
	t.Helper()
	ctx := context.Background()
	post := &models.Post{Title: title, Description: "d", AuthorID: "author", CreatedAt: createdAt}
	require.NoError(t, store.CreatePost(ctx, post))
	for _, name := range tags {
		tag, err := store.EnsureTag(ctx, name)
		require.NoError(t, err)
		require.NoError(t, store.LinkPostTag(ctx, post.ID, tag.ID))
	}
	return post
}

func TestWrap(t *testing.T) {
	assert.NoError(t, wrap("op", nil))
	assert.True(t, repositories.IsNotFound(wrap("get_post", pgx.ErrNoRows)))
	assert.ErrorIs(t, wrap("insert", &pgconn.PgError{Code: "23505"}), repositories.ErrDuplicate)
	assert.True(t, repositories.IsNotFound(wrap("link", &pgconn.PgError{Code: "23503"})))

	var dae *repositories.DataAccessError
	require.ErrorAs(t, wrap("list_posts", errors.New("boom")), &dae)
	assert.Equal(t, "list_posts", dae.Op)
}

func TestLimitArg(t *testing.T) {
	assert.Nil(t, limitArg(0))
	assert.Nil(t, limitArg(-3))
	assert.Equal(t, 5, limitArg(5))
}

func TestPostsAndTags(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	p1 := createPost(t, store, "p1", base, "travel")
	p2 := createPost(t, store, "p2", base.Add(time.Hour), "food", "travel")
	p3 := createPost(t, store, "p3", base.Add(2*time.Hour))

	posts, err := store.ListPosts(ctx, repositories.OrderNewest, 0)
	require.NoError(t, err)
	require.Len(t, posts, 3)
	assert.Equal(t, []string{p3.ID, p2.ID, p1.ID}, []string{posts[0].ID, posts[1].ID, posts[2].ID})
	assert.Equal(t, base.Add(2*time.Hour), posts[0].CreatedAt)

	limited, err := store.ListPosts(ctx, repositories.OrderNewest, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)

	_, err = store.AdjustUpvoteCount(ctx, p1.ID, 2)
	require.NoError(t, err)
	top, err := store.ListPosts(ctx, repositories.OrderTop, 1)
	require.NoError(t, err)
	assert.Equal(t, p1.ID, top[0].ID)

	travel, err := store.EnsureTag(ctx, "travel")
	require.NoError(t, err)
	tagged, err := store.ListPostsByTags(ctx, []string{travel.ID}, 10)
	require.NoError(t, err)
	require.Len(t, tagged, 2)
	assert.Equal(t, p2.ID, tagged[0].ID)

	got, err := store.GetPost(ctx, p2.ID)
	require.NoError(t, err)
	require.Len(t, got.Tags, 2)
	assert.Equal(t, "food", got.Tags[0].Name)
	assert.Equal(t, "travel", got.Tags[1].Name)

	_, err = store.GetPost(ctx, "missing")
	assert.True(t, repositories.IsNotFound(err))

	tags, err := store.ListTags(ctx)
	require.NoError(t, err)
	assert.Len(t, tags, 2)

	// Linking twice is a no-op; a missing post is not found.
	require.NoError(t, store.LinkPostTag(ctx, p1.ID, travel.ID))
	assert.True(t, repositories.IsNotFound(store.LinkPostTag(ctx, "missing", travel.ID)))

	again, err := store.EnsureTag(ctx, "travel")
	require.NoError(t, err)
	assert.Equal(t, travel.ID, again.ID)

	err = store.CreatePost(ctx, &models.Post{ID: p1.ID, Title: "dup", Description: "d", AuthorID: "a"})
	assert.ErrorIs(t, err, repositories.ErrDuplicate)
}

func TestAdjustUpvoteCountClamps(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	post := createPost(t, store, "p", time.Now())

	count, err := store.AdjustUpvoteCount(ctx, post.ID, -1)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	_, err = store.AdjustUpvoteCount(ctx, "missing", 1)
	assert.True(t, repositories.IsNotFound(err))
}

func TestInterests(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	tag, err := store.EnsureTag(ctx, "travel")
	require.NoError(t, err)

	first, err := store.UpsertInterest(ctx, "u1", tag.ID, 1)
	require.NoError(t, err)
	second, err := store.UpsertInterest(ctx, "u1", tag.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 2.0, second.InterestScore)

	interests, err := store.GetUserInterests(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, interests, 1)
	assert.Equal(t, "travel", interests[0].Tag.Name)
}

func TestUpvotes(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	post := createPost(t, store, "p", time.Now())

	none, err := store.FindUpvote(ctx, "u1", post.ID)
	require.NoError(t, err)
	assert.Nil(t, none)

	in, err := store.InsertUpvote(ctx, "u1", post.ID)
	require.NoError(t, err)
	assert.Equal(t, models.InteractionUpvote, in.Kind)

	_, err = store.InsertUpvote(ctx, "u1", post.ID)
	assert.ErrorIs(t, err, repositories.ErrDuplicate)

	found, err := store.FindUpvote(ctx, "u1", post.ID)
	require.NoError(t, err)
	assert.Equal(t, in.ID, found.ID)

	require.NoError(t, store.DeleteUpvote(ctx, in.ID))
	assert.True(t, repositories.IsNotFound(store.DeleteUpvote(ctx, in.ID)))
}

func TestToggleUpvote(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	post := createPost(t, store, "p", time.Now())

	upvoted, count, err := store.ToggleUpvote(ctx, "u1", post.ID)
	require.NoError(t, err)
	assert.True(t, upvoted)
	assert.Equal(t, 1, count)

	upvoted, count, err = store.ToggleUpvote(ctx, "u1", post.ID)
	require.NoError(t, err)
	assert.False(t, upvoted)
	assert.Equal(t, 0, count)

	_, _, err = store.ToggleUpvote(ctx, "u1", "missing")
	assert.True(t, repositories.IsNotFound(err))

	var wg sync.WaitGroup
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := store.ToggleUpvote(ctx, "u2", post.ID)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := store.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Upvotes)
	live, err := store.FindUpvote(ctx, "u2", post.ID)
	require.NoError(t, err)
	assert.Nil(t, live)
}

func TestProfiles(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.GetProfile(ctx, "u1")
	assert.True(t, repositories.IsNotFound(err))

	require.NoError(t, store.UpsertProfile(ctx, &models.Profile{ID: "u1", Username: "ana"}))
	first, err := store.GetProfile(ctx, "u1")
	require.NoError(t, err)

	require.NoError(t, store.UpsertProfile(ctx, &models.Profile{ID: "u1", Username: "ana2"}))
	second, err := store.GetProfile(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "ana2", second.Username)
	assert.Equal(t, first.CreatedAt, second.CreatedAt)

	post := createPost(t, store, "p", time.Now())
	got, err := store.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Author, "author without profile")
}
