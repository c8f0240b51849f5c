package repositories

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"feedapp/app/models"
)

func TestEnsureTag(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first, err := store.EnsureTag(ctx, "new-tag")
	require.NoError(t, err)
	second, err := store.EnsureTag(ctx, " new-tag ")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID, "existing tag is reused")

	tags, err := store.ListTags(ctx)
	require.NoError(t, err)
	assert.Len(t, tags, 1)

	_, err = store.EnsureTag(ctx, "  ")
	assert.Error(t, err)

	_, err = store.EnsureTag(ctx, strings.Repeat("x", 51))
	var dae *DataAccessError
	assert.ErrorAs(t, err, &dae, "overlong names fail tag validation")
	tags, err = store.ListTags(ctx)
	require.NoError(t, err)
	assert.Len(t, tags, 1)
}

func TestLinkPostTag(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	post := createPost(t, store, "linked", time.Now())
	tag, err := store.EnsureTag(ctx, "travel")
	require.NoError(t, err)

	require.NoError(t, store.LinkPostTag(ctx, post.ID, tag.ID))
	require.NoError(t, store.LinkPostTag(ctx, post.ID, tag.ID))

	got, err := store.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Len(t, got.Tags, 1)

	assert.True(t, IsNotFound(store.LinkPostTag(ctx, "missing", tag.ID)))
	assert.True(t, IsNotFound(store.LinkPostTag(ctx, post.ID, "missing")))
}

func TestUpsertInterest(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	travel, err := store.EnsureTag(ctx, "travel")
	require.NoError(t, err)
	food, err := store.EnsureTag(ctx, "food")
	require.NoError(t, err)

	created, err := store.UpsertInterest(ctx, "u1", travel.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, 1.0, created.InterestScore)

	updated, err := store.UpsertInterest(ctx, "u1", travel.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, 2.0, updated.InterestScore)
	assert.Equal(t, created.ID, updated.ID, "upsert must not create a duplicate")

	_, err = store.UpsertInterest(ctx, "u1", food.ID, 1)
	require.NoError(t, err)

	interests, err := store.GetUserInterests(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, interests, 2)
	assert.Equal(t, travel.ID, interests[0].TagID)
	require.NotNil(t, interests[0].Tag)
	assert.Equal(t, "travel", interests[0].Tag.Name)

	other, err := store.GetUserInterests(ctx, "u2")
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestUpvoteInteractions(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	post := createPost(t, store, "vote", time.Now())

	found, err := store.FindUpvote(ctx, "u1", post.ID)
	require.NoError(t, err)
	assert.Nil(t, found)

	inserted, err := store.InsertUpvote(ctx, "u1", post.ID)
	require.NoError(t, err)
	assert.Equal(t, "upvote", string(inserted.Kind))

	_, err = store.InsertUpvote(ctx, "u1", post.ID)
	assert.ErrorIs(t, err, ErrDuplicate)

	found, err = store.FindUpvote(ctx, "u1", post.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, inserted.ID, found.ID)

	require.NoError(t, store.DeleteUpvote(ctx, inserted.ID))
	found, err = store.FindUpvote(ctx, "u1", post.ID)
	require.NoError(t, err)
	assert.Nil(t, found)

	assert.True(t, IsNotFound(store.DeleteUpvote(ctx, inserted.ID)))
}

func TestToggleUpvote(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	post := createPost(t, store, "toggle", time.Now())

	upvoted, count, err := store.ToggleUpvote(ctx, "u1", post.ID)
	require.NoError(t, err)
	assert.True(t, upvoted)
	assert.Equal(t, 1, count)

	upvoted, count, err = store.ToggleUpvote(ctx, "u2", post.ID)
	require.NoError(t, err)
	assert.True(t, upvoted)
	assert.Equal(t, 2, count)

	upvoted, count, err = store.ToggleUpvote(ctx, "u1", post.ID)
	require.NoError(t, err)
	assert.False(t, upvoted)
	assert.Equal(t, 1, count)

	found, err := store.FindUpvote(ctx, "u1", post.ID)
	require.NoError(t, err)
	assert.Nil(t, found)

	_, _, err = store.ToggleUpvote(ctx, "u1", "missing")
	assert.True(t, IsNotFound(err))
}

func TestProfiles(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.GetProfile(ctx, "u1")
	assert.True(t, IsNotFound(err))

	require.NoError(t, store.UpsertProfile(ctx, &models.Profile{ID: "u1", Username: "ana"}))
	first, err := store.GetProfile(ctx, "u1")
	require.NoError(t, err)

	require.NoError(t, store.UpsertProfile(ctx, &models.Profile{ID: "u1", Username: "ana2"}))
	second, err := store.GetProfile(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "ana2", second.Username)
	assert.True(t, first.CreatedAt.Equal(second.CreatedAt))
}

func TestUserKeysDoNotOverlap(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	post := createPost(t, store, "shared", time.Now())
	travel, err := store.EnsureTag(ctx, "travel")
	require.NoError(t, err)

	_, err = store.UpsertInterest(ctx, "a:b", travel.ID, 1)
	require.NoError(t, err)
	_, err = store.InsertUpvote(ctx, "a:b", post.ID)
	require.NoError(t, err)

	interests, err := store.GetUserInterests(ctx, "a")
	require.NoError(t, err)
	assert.Empty(t, interests, "interests of a:b must not show up for a")

	found, err := store.FindUpvote(ctx, "a", post.ID)
	require.NoError(t, err)
	assert.Nil(t, found)

	upvoted, count, err := store.ToggleUpvote(ctx, "a", post.ID)
	require.NoError(t, err)
	assert.True(t, upvoted)
	assert.Equal(t, 1, count)

	interests, err = store.GetUserInterests(ctx, "a:b")
	require.NoError(t, err)
	require.Len(t, interests, 1)
	assert.Equal(t, "a:b", interests[0].UserID)
}
