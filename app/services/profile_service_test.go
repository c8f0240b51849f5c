package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"feedapp/app/models"
	"feedapp/app/repositories/mock"
)

func TestProfileService(t *testing.T) {
	ctx := context.Background()
	store := mock.NewStore()
	svc := NewProfileService(store)

	t.Run("missing profile reads as anonymous", func(t *testing.T) {
		p, err := svc.Get(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, "u1", p.ID)
		assert.Equal(t, "Anonymous User", p.DisplayName())
	})

	t.Run("update uses caller identity", func(t *testing.T) {
		p, err := svc.Update(ctx, "u1", &models.Profile{ID: "someone-else", Username: "  ana  "})
		require.NoError(t, err)
		assert.Equal(t, "u1", p.ID)
		assert.Equal(t, "ana", p.Username)

		got, err := svc.Get(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, "ana", got.DisplayName())
	})

	t.Run("invalid avatar", func(t *testing.T) {
		_, err := svc.Update(ctx, "u1", &models.Profile{AvatarURL: "nope"})
		var ve *ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, "avatar_url", ve.Fields[0].Field)
	})

	t.Run("anonymous caller", func(t *testing.T) {
		_, err := svc.Get(ctx, "")
		assert.ErrorIs(t, err, ErrUnauthorized)
		_, err = svc.Update(ctx, "", &models.Profile{})
		assert.ErrorIs(t, err, ErrUnauthorized)
	})
}
