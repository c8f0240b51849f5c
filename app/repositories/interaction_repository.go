package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/dgraph-io/badger/v4"

	"feedapp/app/models"
)

// FindUpvote returns the user's live upvote on a post, or nil.
func (s *BadgerStore) FindUpvote(ctx context.Context, userID, postID string) (*models.PostInteraction, error) {
	var found *models.PostInteraction
	err := s.view(ctx, func(txn *badger.Txn) error {
		found = nil
		id, err := getString(txn, upvoteKey(userID, postID))
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		var interaction models.PostInteraction
		if err := getEntity(txn, interactionKey(id), &interaction); err != nil {
			return err
		}
		found = &interaction
		return nil
	})
	if err != nil {
		return nil, wrapErr("find_upvote", err)
	}
	return found, nil
}

// InsertUpvote records an upvote. It fails with ErrDuplicate when the user
// already has a live upvote on the post.
func (s *BadgerStore) InsertUpvote(ctx context.Context, userID, postID string) (*models.PostInteraction, error) {
	var created *models.PostInteraction
	err := s.update(ctx, func(txn *badger.Txn) error {
		var err error
		created, err = insertUpvoteTxn(txn, userID, postID)
		return err
	})
	if err != nil {
		return nil, wrapErr("insert_upvote", err)
	}
	return created, nil
}

// DeleteUpvote removes an upvote interaction and its uniqueness entry.
func (s *BadgerStore) DeleteUpvote(ctx context.Context, interactionID string) error {
	err := s.update(ctx, func(txn *badger.Txn) error {
		var interaction models.PostInteraction
		if err := getEntity(txn, interactionKey(interactionID), &interaction); err != nil {
			return err
		}
		return deleteUpvoteTxn(txn, &interaction)
	})
	return wrapErr("delete_upvote", err)
}

// ToggleUpvote flips the user's upvote and adjusts the post's count in one
// transaction.
func (s *BadgerStore) ToggleUpvote(ctx context.Context, userID, postID string) (bool, int, error) {
	var (
		upvoted bool
		count   int
	)
	err := s.update(ctx, func(txn *badger.Txn) error {
		var post models.Post
		if err := getEntity(txn, postKey(postID), &post); err != nil {
			return err
		}

		id, err := getString(txn, upvoteKey(userID, postID))
		switch {
		case err == nil:
			var interaction models.PostInteraction
			if err := getEntity(txn, interactionKey(id), &interaction); err != nil {
				return err
			}
			if err := deleteUpvoteTxn(txn, &interaction); err != nil {
				return err
			}
			post.Upvotes = clampCount(post.Upvotes - 1)
			upvoted = false
		case errors.Is(err, ErrNotFound):
			if _, err := insertUpvoteTxn(txn, userID, postID); err != nil {
				return err
			}
			post.Upvotes++
			upvoted = true
		default:
			return err
		}

		count = post.Upvotes
		return setEntity(txn, postKey(postID), &post)
	})
	if err != nil {
		return false, 0, wrapErr("toggle_upvote", err)
	}
	return upvoted, count, nil
}

func insertUpvoteTxn(txn *badger.Txn, userID, postID string) (*models.PostInteraction, error) {
	idx := upvoteKey(userID, postID)
	if _, err := txn.Get(idx); err == nil {
		return nil, ErrDuplicate
	} else if !errors.Is(err, badger.ErrKeyNotFound) {
		return nil, err
	}

	interaction := &models.PostInteraction{
		ID:        NewID(),
		UserID:    userID,
		PostID:    postID,
		Kind:      models.InteractionUpvote,
		CreatedAt: time.Now().UTC(),
	}
	if err := setEntity(txn, interactionKey(interaction.ID), interaction); err != nil {
		return nil, err
	}
	if err := txn.Set(idx, []byte(interaction.ID)); err != nil {
		return nil, err
	}
	return interaction, nil
}

func deleteUpvoteTxn(txn *badger.Txn, interaction *models.PostInteraction) error {
	if err := txn.Delete(interactionKey(interaction.ID)); err != nil {
		return err
	}
	return txn.Delete(upvoteKey(interaction.UserID, interaction.PostID))
}
