package repositories

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"feedapp/app/models"
)

const (
	// Key prefixes for different entity types
	PostKeyPrefix        = "post:"
	PostTimeKeyPrefix    = "post_time:"
	TagKeyPrefix         = "tag:"
	TagNameKeyPrefix     = "tag_name:"
	PostTagKeyPrefix     = "post_tag:"
	TagPostKeyPrefix     = "tag_post:"
	InterestKeyPrefix    = "interest:"
	InteractionKeyPrefix = "interaction:"
	UpvoteKeyPrefix      = "upvote:"
	ProfileKeyPrefix     = "profile:"
)

func postKey(id string) []byte { return []byte(PostKeyPrefix + id) }

// postTimeKey orders posts by creation time; zero-padded nanoseconds keep
// lexical and chronological order equal.
func postTimeKey(createdAt time.Time, id string) []byte {
	return []byte(fmt.Sprintf("%s%020d:%s", PostTimeKeyPrefix, createdAt.UnixNano(), id))
}

func tagKey(id string) []byte       { return []byte(TagKeyPrefix + id) }
func tagNameKey(name string) []byte { return []byte(TagNameKeyPrefix + name) }

func postTagKey(postID, tagID string) []byte {
	return []byte(PostTagKeyPrefix + postID + ":" + tagID)
}

func tagPostKey(tagID, postID string) []byte {
	return []byte(TagPostKeyPrefix + tagID + ":" + postID)
}

// userSegment length-prefixes a user id so that no id's keys can fall under
// another id's prefix ("a" vs "a:b").
func userSegment(userID string) string {
	return fmt.Sprintf("%d:%s:", len(userID), userID)
}

func interestPrefix(userID string) []byte {
	return []byte(InterestKeyPrefix + userSegment(userID))
}

func interestKey(userID, tagID string) []byte {
	return append(interestPrefix(userID), tagID...)
}

func interactionKey(id string) []byte { return []byte(InteractionKeyPrefix + id) }

func upvoteKey(userID, postID string) []byte {
	return []byte(UpvoteKeyPrefix + userSegment(userID) + postID)
}

func profileKey(userID string) []byte { return []byte(ProfileKeyPrefix + userID) }

// lastSegment returns the part of key after its final ':'.
func lastSegment(key []byte) string {
	s := string(key)
	if i := strings.LastIndexByte(s, ':'); i >= 0 {
		return s[i+1:]
	}
	return s
}

// NewID returns a time-ordered unique identifier.
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// marshalEntity marshals an entity to JSON
func marshalEntity(entity interface{}) ([]byte, error) {
	data, err := json.Marshal(entity)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal entity: %w", err)
	}
	return data, nil
}

// unmarshalEntity unmarshals JSON data into an entity
func unmarshalEntity(data []byte, entity interface{}) error {
	if err := json.Unmarshal(data, entity); err != nil {
		return fmt.Errorf("failed to unmarshal entity: %w", err)
	}
	return nil
}

// storedPost strips the hydrated joins before a post is persisted.
func storedPost(p *models.Post) *models.Post {
	cp := *p
	cp.Tags = nil
	cp.Author = nil
	return &cp
}

// SortPosts orders posts in place.
func SortPosts(posts []*models.Post, order PostOrder) {
	sort.SliceStable(posts, func(i, j int) bool {
		a, b := posts[i], posts[j]
		if order == OrderTop && a.Upvotes != b.Upvotes {
			return a.Upvotes > b.Upvotes
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	})
}

// LimitPosts truncates posts to limit; limit <= 0 keeps everything.
func LimitPosts(posts []*models.Post, limit int) []*models.Post {
	if limit > 0 && len(posts) > limit {
		return posts[:limit]
	}
	return posts
}

// SortInterests orders interests by score, highest first, then by tag id.
func SortInterests(interests []*models.UserInterest) {
	sort.SliceStable(interests, func(i, j int) bool {
		if interests[i].InterestScore != interests[j].InterestScore {
			return interests[i].InterestScore > interests[j].InterestScore
		}
		return interests[i].TagID < interests[j].TagID
	})
}
