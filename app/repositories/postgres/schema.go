package postgres

// schema creates the relational layout. Every statement is idempotent.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS profiles (
		id          text PRIMARY KEY,
		username    text,
		avatar_url  text,
		created_at  timestamptz NOT NULL,
		updated_at  timestamptz NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS posts (
		id             text PRIMARY KEY,
		title          text NOT NULL,
		description    text NOT NULL,
		author_id      text NOT NULL,
		image_url      text,
		location_lat   double precision,
		location_lng   double precision,
		location_name  text,
		upvotes        integer NOT NULL DEFAULT 0 CHECK (upvotes >= 0),
		created_at     timestamptz NOT NULL,
		updated_at     timestamptz NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS posts_created_at_idx ON posts (created_at DESC, id DESC)`,
	`CREATE INDEX IF NOT EXISTS posts_upvotes_idx ON posts (upvotes DESC, created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS tags (
		id          text PRIMARY KEY,
		name        text NOT NULL UNIQUE,
		color       text NOT NULL,
		created_at  timestamptz NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS post_tags (
		id          text PRIMARY KEY,
		post_id     text NOT NULL REFERENCES posts (id) ON DELETE CASCADE,
		tag_id      text NOT NULL REFERENCES tags (id) ON DELETE CASCADE,
		created_at  timestamptz NOT NULL,
		UNIQUE (post_id, tag_id)
	)`,
	`CREATE INDEX IF NOT EXISTS post_tags_tag_idx ON post_tags (tag_id)`,
	`CREATE TABLE IF NOT EXISTS user_interests (
		id              text PRIMARY KEY,
		user_id         text NOT NULL,
		tag_id          text NOT NULL REFERENCES tags (id) ON DELETE CASCADE,
		interest_score  double precision NOT NULL DEFAULT 0 CHECK (interest_score >= 0),
		created_at      timestamptz NOT NULL,
		updated_at      timestamptz NOT NULL,
		UNIQUE (user_id, tag_id)
	)`,
	`CREATE TABLE IF NOT EXISTS post_interactions (
		id                text PRIMARY KEY,
		user_id           text NOT NULL,
		post_id           text NOT NULL REFERENCES posts (id) ON DELETE CASCADE,
		interaction_type  text NOT NULL CHECK (interaction_type IN ('view', 'upvote', 'bookmark')),
		created_at        timestamptz NOT NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS post_interactions_one_upvote
		ON post_interactions (user_id, post_id) WHERE interaction_type = 'upvote'`,
}

// tables lists every table, children first, for Truncate.
var tables = []string{"post_interactions", "user_interests", "post_tags", "tags", "posts", "profiles"}
