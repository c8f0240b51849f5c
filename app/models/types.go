package models

import "time"

// InteractionKind is the kind of action a user performed on a post.
type InteractionKind string

const (
	InteractionView     InteractionKind = "view"
	InteractionUpvote   InteractionKind = "upvote"
	InteractionBookmark InteractionKind = "bookmark"
)

// Location is an optional geolocation attached to a post.
type Location struct {
	Lat  float64 `json:"lat" validate:"latitude"`
	Lng  float64 `json:"lng" validate:"longitude"`
	Name string  `json:"name,omitempty" validate:"max=200"`
}

// Post represents a user-authored feed item.
type Post struct {
	ID          string    `json:"id"`
	Title       string    `json:"title" validate:"required,max=200"`
	Description string    `json:"description" validate:"required,max=5000"`
	AuthorID    string    `json:"author_id" validate:"required"`
	ImageURL    string    `json:"image_url,omitempty" validate:"omitempty,url"`
	Location    *Location `json:"location,omitempty" validate:"omitempty"`
	Upvotes     int       `json:"upvotes" validate:"gte=0"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Hydrated on reads, never persisted with the post row.
	Tags   []*Tag   `json:"tags,omitempty" validate:"-"`
	Author *Profile `json:"author,omitempty" validate:"-"`
}

// Tag is a named topic label attachable to posts.
type Tag struct {
	ID        string    `json:"id"`
	Name      string    `json:"name" validate:"required,max=50"`
	Color     string    `json:"color" validate:"omitempty,hexcolor"`
	CreatedAt time.Time `json:"created_at"`
}

// PostTag links a post to a tag.
type PostTag struct {
	ID        string    `json:"id"`
	PostID    string    `json:"post_id"`
	TagID     string    `json:"tag_id"`
	CreatedAt time.Time `json:"created_at"`
}

// UserInterest is a user's affinity score for a tag.
type UserInterest struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	TagID         string    `json:"tag_id"`
	InterestScore float64   `json:"interest_score"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	Tag *Tag `json:"tag,omitempty"`
}

// PostInteraction records a user's action on a post.
type PostInteraction struct {
	ID        string          `json:"id"`
	UserID    string          `json:"user_id"`
	PostID    string          `json:"post_id"`
	Kind      InteractionKind `json:"interaction_type"`
	CreatedAt time.Time       `json:"created_at"`
}

// Profile is the display identity of a user.
type Profile struct {
	ID        string    `json:"id"`
	Username  string    `json:"username,omitempty" validate:"omitempty,min=2,max=50"`
	AvatarURL string    `json:"avatar_url,omitempty" validate:"omitempty,url"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreatePostData is the input for creating a post.
type CreatePostData struct {
	Title        string   `json:"title" validate:"required,max=200"`
	Description  string   `json:"description" validate:"required,max=5000"`
	Tags         []string `json:"tags" validate:"max=20,dive,max=50"`
	ImageURL     string   `json:"image_url,omitempty" validate:"omitempty,url"`
	LocationLat  *float64 `json:"location_lat,omitempty" validate:"omitempty,latitude"`
	LocationLng  *float64 `json:"location_lng,omitempty" validate:"omitempty,longitude"`
	LocationName string   `json:"location_name,omitempty" validate:"max=200"`
}
