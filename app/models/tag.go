package models

import (
	"strings"
	"time"

	"golang.org/x/crypto/sha3"
)

// tagPalette holds the badge colours a tag name can map to.
var tagPalette = []string{
	"#3b82f6", "#ef4444", "#10b981", "#f59e0b",
	"#8b5cf6", "#ec4899", "#14b8a6", "#f97316",
	"#6366f1", "#84cc16", "#06b6d4", "#e11d48",
}

// TagColor derives a stable badge colour from a tag name.
func TagColor(name string) string {
	sum := sha3.Sum256([]byte(name))
	idx := (int(sum[0])<<8 | int(sum[1])) % len(tagPalette)
	return tagPalette[idx]
}

// NewTag returns an unsaved tag for name with its derived colour.
func NewTag(name string) *Tag {
	name = strings.TrimSpace(name)
	return &Tag{
		Name:      name,
		Color:     TagColor(name),
		CreatedAt: time.Now().UTC(),
	}
}

// Validate checks if the tag meets all validation requirements
func (t *Tag) Validate() error {
	return validate.Struct(t)
}

// UniqueTagNames trims names, drops empty ones and removes repeats,
// keeping the first occurrence.
func UniqueTagNames(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
