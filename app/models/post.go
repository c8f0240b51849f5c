package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Validate checks if the post meets all validation requirements
func (p *Post) Validate() error {
	if err := validate.Struct(p); err != nil {
		return err
	}

	if p.CreatedAt.IsZero() {
		return errors.New("created_at cannot be zero")
	}

	return nil
}

// BeforeCreate sets up any necessary fields before creation
func (p *Post) BeforeCreate() {
	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = p.CreatedAt
	}
	if p.Upvotes < 0 {
		p.Upvotes = 0
	}
}

// Normalize trims the free-text fields and reduces the tag list to
// distinct, non-empty names in first-seen order.
func (d *CreatePostData) Normalize() {
	d.Title = strings.TrimSpace(d.Title)
	d.Description = strings.TrimSpace(d.Description)
	d.ImageURL = strings.TrimSpace(d.ImageURL)
	d.LocationName = strings.TrimSpace(d.LocationName)
	d.Tags = UniqueTagNames(d.Tags)
}

// Validate checks the input against the struct rules. Latitude and
// longitude must be given together.
func (d *CreatePostData) Validate() error {
	if err := validate.Struct(d); err != nil {
		return err
	}
	if (d.LocationLat == nil) != (d.LocationLng == nil) {
		return errors.New("location_lat and location_lng must be set together")
	}
	return nil
}

// ToPost builds an unsaved post authored by authorID.
func (d *CreatePostData) ToPost(authorID string) *Post {
	post := &Post{
		Title:       d.Title,
		Description: d.Description,
		AuthorID:    authorID,
		ImageURL:    d.ImageURL,
	}
	if d.LocationLat != nil && d.LocationLng != nil {
		post.Location = &Location{
			Lat:  *d.LocationLat,
			Lng:  *d.LocationLng,
			Name: d.LocationName,
		}
		if post.Location.Name == "" {
			post.Location.Name = fmt.Sprintf("%.4f, %.4f", post.Location.Lat, post.Location.Lng)
		}
	}
	return post
}
