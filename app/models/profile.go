package models

import "time"

// Validate checks if the profile meets all validation requirements
func (p *Profile) Validate() error {
	return validate.Struct(p)
}

// BeforeCreate sets up any necessary fields before creation
func (p *Profile) BeforeCreate() {
	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
}

// DisplayName is the name shown next to a post, falling back to a
// placeholder for users who never set a username.
func (p *Profile) DisplayName() string {
	if p == nil || p.Username == "" {
		return "Anonymous User"
	}
	return p.Username
}
