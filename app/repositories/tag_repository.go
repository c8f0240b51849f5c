package repositories

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"

	"feedapp/app/models"
)

// EnsureTag returns the tag called name, creating it on first use.
func (s *BadgerStore) EnsureTag(ctx context.Context, name string) (*models.Tag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, wrapErr("ensure_tag", errors.New("tag name is empty"))
	}

	var tag *models.Tag
	err := s.update(ctx, func(txn *badger.Txn) error {
		id, err := getString(txn, tagNameKey(name))
		if err == nil {
			var existing models.Tag
			if err := getEntity(txn, tagKey(id), &existing); err != nil {
				return err
			}
			tag = &existing
			return nil
		}
		if !errors.Is(err, ErrNotFound) {
			return err
		}

		created := models.NewTag(name)
		created.ID = NewID()
		if err := created.Validate(); err != nil {
			return err
		}
		if err := setEntity(txn, tagKey(created.ID), created); err != nil {
			return err
		}
		if err := txn.Set(tagNameKey(name), []byte(created.ID)); err != nil {
			return err
		}
		tag = created
		return nil
	})
	if err != nil {
		return nil, wrapErr("ensure_tag", err)
	}
	return tag, nil
}

// LinkPostTag associates a post with a tag. Linking twice is a no-op.
func (s *BadgerStore) LinkPostTag(ctx context.Context, postID, tagID string) error {
	err := s.update(ctx, func(txn *badger.Txn) error {
		if _, err := txn.Get(postKey(postID)); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrNotFound
			}
			return err
		}
		if _, err := txn.Get(tagKey(tagID)); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrNotFound
			}
			return err
		}

		key := postTagKey(postID, tagID)
		if _, err := txn.Get(key); err == nil {
			return nil
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}

		link := &models.PostTag{
			ID:        NewID(),
			PostID:    postID,
			TagID:     tagID,
			CreatedAt: time.Now().UTC(),
		}
		if err := setEntity(txn, key, link); err != nil {
			return err
		}
		return txn.Set(tagPostKey(tagID, postID), nil)
	})
	return wrapErr("link_post_tag", err)
}

// ListTags returns every tag sorted by name.
func (s *BadgerStore) ListTags(ctx context.Context) ([]*models.Tag, error) {
	var tags []*models.Tag
	err := s.view(ctx, func(txn *badger.Txn) error {
		tags = nil
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(TagKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var tag models.Tag
			if err := it.Item().Value(func(val []byte) error {
				return unmarshalEntity(val, &tag)
			}); err != nil {
				return err
			}
			tags = append(tags, &tag)
		}
		return nil
	})
	if err != nil {
		return nil, wrapErr("list_tags", err)
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i].Name < tags[j].Name })
	return tags, nil
}
