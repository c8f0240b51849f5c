package postgres

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"feedapp/app/models"
	"feedapp/app/repositories"
)

// EnsureTag returns the tag called name, creating it on first use. The
// no-op update makes RETURNING yield the existing row on conflict.
func (s *Store) EnsureTag(ctx context.Context, name string) (*models.Tag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, wrap("ensure_tag", errors.New("tag name is empty"))
	}
	tag := models.NewTag(name)
	tag.ID = repositories.NewID()
	tag.CreatedAt = utcNow()
	if err := tag.Validate(); err != nil {
		return nil, wrap("ensure_tag", err)
	}

	err := s.pool.QueryRow(ctx, `
		INSERT INTO tags (id, name, color, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id, name, color, created_at`,
		tag.ID, tag.Name, tag.Color, tag.CreatedAt,
	).Scan(&tag.ID, &tag.Name, &tag.Color, &tag.CreatedAt)
	if err != nil {
		return nil, wrap("ensure_tag", err)
	}
	tag.CreatedAt = tag.CreatedAt.UTC()
	return tag, nil
}

// LinkPostTag attaches a tag to a post. Linking twice is a no-op; a missing
// post or tag yields ErrNotFound.
func (s *Store) LinkPostTag(ctx context.Context, postID, tagID string) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO post_tags (id, post_id, tag_id, created_at)
		VALUES ($1, $2, $3, clock_timestamp())
		ON CONFLICT (post_id, tag_id) DO NOTHING`,
		repositories.NewID(), postID, tagID)
	return wrap("link_post_tag", err)
}

func (s *Store) ListTags(ctx context.Context) ([]*models.Tag, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, name, color, created_at FROM tags ORDER BY name`)
	if err != nil {
		return nil, wrap("list_tags", err)
	}
	tags, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*models.Tag, error) {
		var t models.Tag
		if err := row.Scan(&t.ID, &t.Name, &t.Color, &t.CreatedAt); err != nil {
			return nil, err
		}
		t.CreatedAt = t.CreatedAt.UTC()
		return &t, nil
	})
	if err != nil {
		return nil, wrap("list_tags", err)
	}
	return tags, nil
}
