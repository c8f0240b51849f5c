package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"feedapp/app/models"
	"feedapp/app/repositories"
)

func (s *Store) GetUserInterests(ctx context.Context, userID string) ([]*models.UserInterest, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT ui.id, ui.user_id, ui.tag_id, ui.interest_score, ui.created_at, ui.updated_at,
			t.name, t.color, t.created_at
		FROM user_interests ui
		JOIN tags t ON t.id = ui.tag_id
		WHERE ui.user_id = $1
		ORDER BY ui.interest_score DESC, ui.tag_id`, userID)
	if err != nil {
		return nil, wrap("get_user_interests", err)
	}
	interests, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*models.UserInterest, error) {
		var in models.UserInterest
		tag := &models.Tag{}
		if err := row.Scan(&in.ID, &in.UserID, &in.TagID, &in.InterestScore, &in.CreatedAt, &in.UpdatedAt,
			&tag.Name, &tag.Color, &tag.CreatedAt); err != nil {
			return nil, err
		}
		tag.ID = in.TagID
		tag.CreatedAt = tag.CreatedAt.UTC()
		in.CreatedAt = in.CreatedAt.UTC()
		in.UpdatedAt = in.UpdatedAt.UTC()
		in.Tag = tag
		return &in, nil
	})
	if err != nil {
		return nil, wrap("get_user_interests", err)
	}
	return interests, nil
}

// UpsertInterest creates the (user, tag) record with score delta or adds
// delta to it, in one statement. The score never drops below zero.
func (s *Store) UpsertInterest(ctx context.Context, userID, tagID string, delta float64) (*models.UserInterest, error) {
	var in models.UserInterest
	now := utcNow()
	err := s.pool.QueryRow(ctx, `
		INSERT INTO user_interests (id, user_id, tag_id, interest_score, created_at, updated_at)
		VALUES ($1, $2, $3, GREATEST($4::double precision, 0), $5, $5)
		ON CONFLICT (user_id, tag_id) DO UPDATE
			SET interest_score = GREATEST(user_interests.interest_score + $4::double precision, 0),
			    updated_at = EXCLUDED.updated_at
		RETURNING id, user_id, tag_id, interest_score, created_at, updated_at`,
		repositories.NewID(), userID, tagID, delta, now,
	).Scan(&in.ID, &in.UserID, &in.TagID, &in.InterestScore, &in.CreatedAt, &in.UpdatedAt)
	if err != nil {
		return nil, wrap("upsert_interest", err)
	}
	in.CreatedAt = in.CreatedAt.UTC()
	in.UpdatedAt = in.UpdatedAt.UTC()
	return &in, nil
}
