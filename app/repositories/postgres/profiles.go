package postgres

import (
	"context"

	"feedapp/app/models"
)

func (s *Store) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	var (
		p                   models.Profile
		username, avatarURL *string
	)
	err := s.pool.QueryRow(ctx, `
		SELECT id, username, avatar_url, created_at, updated_at
		FROM profiles WHERE id = $1`, userID,
	).Scan(&p.ID, &username, &avatarURL, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, wrap("get_profile", err)
	}
	p.Username = deref(username)
	p.AvatarURL = deref(avatarURL)
	p.CreatedAt = p.CreatedAt.UTC()
	p.UpdatedAt = p.UpdatedAt.UTC()
	return &p, nil
}

// UpsertProfile writes the profile, keeping the original creation time of
// an existing row.
func (s *Store) UpsertProfile(ctx context.Context, profile *models.Profile) error {
	now := utcNow()
	err := s.pool.QueryRow(ctx, `
		INSERT INTO profiles (id, username, avatar_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $4)
		ON CONFLICT (id) DO UPDATE
			SET username = EXCLUDED.username,
			    avatar_url = EXCLUDED.avatar_url,
			    updated_at = EXCLUDED.updated_at
		RETURNING created_at, updated_at`,
		profile.ID, nullable(profile.Username), nullable(profile.AvatarURL), now,
	).Scan(&profile.CreatedAt, &profile.UpdatedAt)
	if err != nil {
		return wrap("upsert_profile", err)
	}
	profile.CreatedAt = profile.CreatedAt.UTC()
	profile.UpdatedAt = profile.UpdatedAt.UTC()
	return nil
}
