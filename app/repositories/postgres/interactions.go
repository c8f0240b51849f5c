package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"feedapp/app/models"
	"feedapp/app/repositories"
)

const interactionColumns = `id, user_id, post_id, interaction_type, created_at`

func scanInteraction(row pgx.Row) (*models.PostInteraction, error) {
	var in models.PostInteraction
	var kind string
	if err := row.Scan(&in.ID, &in.UserID, &in.PostID, &kind, &in.CreatedAt); err != nil {
		return nil, err
	}
	in.Kind = models.InteractionKind(kind)
	in.CreatedAt = in.CreatedAt.UTC()
	return &in, nil
}

func (s *Store) FindUpvote(ctx context.Context, userID, postID string) (*models.PostInteraction, error) {
	in, err := scanInteraction(s.pool.QueryRow(ctx, `
		SELECT `+interactionColumns+`
		FROM post_interactions
		WHERE user_id = $1 AND post_id = $2 AND interaction_type = 'upvote'`,
		userID, postID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, wrap("find_upvote", err)
	}
	return in, nil
}

// InsertUpvote relies on the partial unique index so a second live upvote
// for the pair is refused with ErrDuplicate.
func (s *Store) InsertUpvote(ctx context.Context, userID, postID string) (*models.PostInteraction, error) {
	in, err := insertUpvote(ctx, s.pool, userID, postID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, wrap("insert_upvote", repositories.ErrDuplicate)
	}
	if err != nil {
		return nil, wrap("insert_upvote", err)
	}
	return in, nil
}

func (s *Store) DeleteUpvote(ctx context.Context, interactionID string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM post_interactions WHERE id = $1`, interactionID)
	if err != nil {
		return wrap("delete_upvote", err)
	}
	if tag.RowsAffected() == 0 {
		return wrap("delete_upvote", repositories.ErrNotFound)
	}
	return nil
}

// ToggleUpvote locks the post row, flips the interaction and adjusts the
// count inside one transaction.
func (s *Store) ToggleUpvote(ctx context.Context, userID, postID string) (bool, int, error) {
	var (
		upvoted bool
		count   int
	)
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, `SELECT upvotes FROM posts WHERE id = $1 FOR UPDATE`, postID).Scan(&count); err != nil {
			return err
		}

		deleted, err := tx.Exec(ctx, `
			DELETE FROM post_interactions
			WHERE user_id = $1 AND post_id = $2 AND interaction_type = 'upvote'`,
			userID, postID)
		if err != nil {
			return err
		}

		delta := -1
		upvoted = false
		if deleted.RowsAffected() == 0 {
			upvoted = true
			delta = 1
			_, err := insertUpvote(ctx, tx, userID, postID)
			switch {
			case errors.Is(err, pgx.ErrNoRows):
				// Inserted outside this transaction; its count change is
				// the caller's.
				delta = 0
			case err != nil:
				return err
			}
		}

		return tx.QueryRow(ctx,
			`UPDATE posts SET upvotes = GREATEST(upvotes + $2, 0) WHERE id = $1 RETURNING upvotes`,
			postID, delta).Scan(&count)
	})
	if err != nil {
		return false, 0, wrap("toggle_upvote", err)
	}
	return upvoted, count, nil
}

type querier interface {
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// insertUpvote returns pgx.ErrNoRows when a live upvote already exists.
func insertUpvote(ctx context.Context, q querier, userID, postID string) (*models.PostInteraction, error) {
	return scanInteraction(q.QueryRow(ctx, `
		INSERT INTO post_interactions (id, user_id, post_id, interaction_type, created_at)
		VALUES ($1, $2, $3, 'upvote', $4)
		ON CONFLICT (user_id, post_id) WHERE interaction_type = 'upvote' DO NOTHING
		RETURNING `+interactionColumns,
		repositories.NewID(), userID, postID, utcNow()))
}
