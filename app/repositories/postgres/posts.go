package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"feedapp/app/models"
	"feedapp/app/repositories"
)

const postColumns = `
	p.id, p.title, p.description, p.author_id, p.image_url,
	p.location_lat, p.location_lng, p.location_name,
	p.upvotes, p.created_at, p.updated_at,
	pr.id, pr.username, pr.avatar_url, pr.created_at, pr.updated_at`

const postFrom = `
	FROM posts p
	LEFT JOIN profiles pr ON pr.id = p.author_id`

func orderClause(order repositories.PostOrder) string {
	if order == repositories.OrderTop {
		return " ORDER BY p.upvotes DESC, p.created_at DESC, p.id DESC"
	}
	return " ORDER BY p.created_at DESC, p.id DESC"
}

// limitArg turns a non-positive limit into NULL, which Postgres reads as
// no limit.
func limitArg(limit int) interface{} {
	if limit <= 0 {
		return nil
	}
	return limit
}

func (s *Store) ListPosts(ctx context.Context, order repositories.PostOrder, limit int) ([]*models.Post, error) {
	q := "SELECT" + postColumns + postFrom + orderClause(order) + " LIMIT $1"
	posts, err := s.queryPosts(ctx, q, limitArg(limit))
	if err != nil {
		return nil, wrap("list_posts", err)
	}
	return posts, nil
}

func (s *Store) ListPostsByTags(ctx context.Context, tagIDs []string, limit int) ([]*models.Post, error) {
	if len(tagIDs) == 0 {
		return nil, nil
	}
	q := "SELECT" + postColumns + postFrom + `
		WHERE p.id IN (SELECT post_id FROM post_tags WHERE tag_id = ANY($1))` +
		orderClause(repositories.OrderNewest) + " LIMIT $2"
	posts, err := s.queryPosts(ctx, q, tagIDs, limitArg(limit))
	if err != nil {
		return nil, wrap("list_posts_by_tags", err)
	}
	return posts, nil
}

func (s *Store) GetPost(ctx context.Context, postID string) (*models.Post, error) {
	q := "SELECT" + postColumns + postFrom + " WHERE p.id = $1"
	posts, err := s.queryPosts(ctx, q, postID)
	if err != nil {
		return nil, wrap("get_post", err)
	}
	if len(posts) == 0 {
		return nil, wrap("get_post", repositories.ErrNotFound)
	}
	return posts[0], nil
}

func (s *Store) CreatePost(ctx context.Context, post *models.Post) error {
	if post.ID == "" {
		post.ID = repositories.NewID()
	}
	post.BeforeCreate()
	post.CreatedAt = post.CreatedAt.Truncate(time.Microsecond)
	post.UpdatedAt = post.UpdatedAt.Truncate(time.Microsecond)

	var lat, lng *float64
	var locName *string
	if post.Location != nil {
		lat, lng = &post.Location.Lat, &post.Location.Lng
		locName = nullable(post.Location.Name)
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO posts (id, title, description, author_id, image_url,
			location_lat, location_lng, location_name, upvotes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		post.ID, post.Title, post.Description, post.AuthorID, nullable(post.ImageURL),
		lat, lng, locName, post.Upvotes, post.CreatedAt, post.UpdatedAt)
	return wrap("create_post", err)
}

// AdjustUpvoteCount applies delta in a single UPDATE so concurrent callers
// never lose an increment.
func (s *Store) AdjustUpvoteCount(ctx context.Context, postID string, delta int) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx,
		`UPDATE posts SET upvotes = GREATEST(upvotes + $2, 0) WHERE id = $1 RETURNING upvotes`,
		postID, delta).Scan(&count)
	if err != nil {
		return 0, wrap("adjust_upvote_count", err)
	}
	return count, nil
}

func (s *Store) queryPosts(ctx context.Context, q string, args ...interface{}) ([]*models.Post, error) {
	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	posts, err := pgx.CollectRows(rows, scanPost)
	if err != nil {
		return nil, err
	}
	if err := s.attachTags(ctx, posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func scanPost(row pgx.CollectableRow) (*models.Post, error) {
	var (
		p                            models.Post
		imageURL, locName            *string
		lat, lng                     *float64
		authorID                     *string
		username, avatarURL          *string
		authorCreated, authorUpdated *time.Time
	)
	err := row.Scan(
		&p.ID, &p.Title, &p.Description, &p.AuthorID, &imageURL,
		&lat, &lng, &locName,
		&p.Upvotes, &p.CreatedAt, &p.UpdatedAt,
		&authorID, &username, &avatarURL, &authorCreated, &authorUpdated,
	)
	if err != nil {
		return nil, err
	}

	p.ImageURL = deref(imageURL)
	p.CreatedAt = p.CreatedAt.UTC()
	p.UpdatedAt = p.UpdatedAt.UTC()
	if lat != nil && lng != nil {
		p.Location = &models.Location{Lat: *lat, Lng: *lng, Name: deref(locName)}
	}
	if authorID != nil {
		p.Author = &models.Profile{
			ID:        *authorID,
			Username:  deref(username),
			AvatarURL: deref(avatarURL),
		}
		if authorCreated != nil {
			p.Author.CreatedAt = authorCreated.UTC()
		}
		if authorUpdated != nil {
			p.Author.UpdatedAt = authorUpdated.UTC()
		}
	}
	return &p, nil
}

// attachTags loads the tags of all posts with one query, in link order.
func (s *Store) attachTags(ctx context.Context, posts []*models.Post) error {
	if len(posts) == 0 {
		return nil
	}
	byID := make(map[string]*models.Post, len(posts))
	ids := make([]string, 0, len(posts))
	for _, p := range posts {
		byID[p.ID] = p
		ids = append(ids, p.ID)
	}

	rows, err := s.pool.Query(ctx, `
		SELECT pt.post_id, t.id, t.name, t.color, t.created_at
		FROM post_tags pt
		JOIN tags t ON t.id = pt.tag_id
		WHERE pt.post_id = ANY($1)
		ORDER BY pt.created_at, pt.id`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var postID string
		var t models.Tag
		if err := rows.Scan(&postID, &t.ID, &t.Name, &t.Color, &t.CreatedAt); err != nil {
			return err
		}
		t.CreatedAt = t.CreatedAt.UTC()
		if p, ok := byID[postID]; ok {
			p.Tags = append(p.Tags, &t)
		}
	}
	return rows.Err()
}
