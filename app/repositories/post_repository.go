package repositories

import (
	"context"
	"errors"
	"sort"

	"github.com/dgraph-io/badger/v4"

	"feedapp/app/models"
)

// ListPosts returns posts in the requested order; limit <= 0 means all.
func (s *BadgerStore) ListPosts(ctx context.Context, order PostOrder, limit int) ([]*models.Post, error) {
	var posts []*models.Post
	err := s.view(ctx, func(txn *badger.Txn) error {
		posts = nil
		if order == OrderNewest {
			ids, err := newestPostIDs(txn, limit)
			if err != nil {
				return err
			}
			for _, id := range ids {
				post, err := loadPost(txn, id)
				if err != nil {
					return err
				}
				posts = append(posts, post)
			}
			return nil
		}

		all, err := scanPosts(txn)
		if err != nil {
			return err
		}
		SortPosts(all, order)
		posts = LimitPosts(all, limit)
		return nil
	})
	if err != nil {
		return nil, wrapErr("list_posts", err)
	}
	return posts, nil
}

// ListPostsByTags returns posts carrying at least one of tagIDs, newest
// first, up to limit.
func (s *BadgerStore) ListPostsByTags(ctx context.Context, tagIDs []string, limit int) ([]*models.Post, error) {
	var posts []*models.Post
	err := s.view(ctx, func(txn *badger.Txn) error {
		posts = nil
		ids, err := taggedPostIDs(txn, tagIDs)
		if err != nil {
			return err
		}
		for _, id := range ids {
			post, err := loadPost(txn, id)
			if errors.Is(err, ErrNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			posts = append(posts, post)
		}
		SortPosts(posts, OrderNewest)
		posts = LimitPosts(posts, limit)
		return nil
	})
	if err != nil {
		return nil, wrapErr("list_posts_by_tags", err)
	}
	return posts, nil
}

// GetPost retrieves a post with its tags and author.
func (s *BadgerStore) GetPost(ctx context.Context, postID string) (*models.Post, error) {
	var post *models.Post
	err := s.view(ctx, func(txn *badger.Txn) error {
		var err error
		post, err = loadPost(txn, postID)
		return err
	})
	if err != nil {
		return nil, wrapErr("get_post", err)
	}
	return post, nil
}

// CreatePost persists a new post and its time index entry.
func (s *BadgerStore) CreatePost(ctx context.Context, post *models.Post) error {
	if post.ID == "" {
		post.ID = NewID()
	}
	post.BeforeCreate()

	err := s.update(ctx, func(txn *badger.Txn) error {
		if _, err := txn.Get(postKey(post.ID)); err == nil {
			return ErrDuplicate
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		if err := setEntity(txn, postKey(post.ID), storedPost(post)); err != nil {
			return err
		}
		return txn.Set(postTimeKey(post.CreatedAt, post.ID), []byte(post.ID))
	})
	return wrapErr("create_post", err)
}

// AdjustUpvoteCount adds delta to the stored count inside one transaction
// and returns the new value. The count never drops below zero.
func (s *BadgerStore) AdjustUpvoteCount(ctx context.Context, postID string, delta int) (int, error) {
	var count int
	err := s.update(ctx, func(txn *badger.Txn) error {
		var post models.Post
		if err := getEntity(txn, postKey(postID), &post); err != nil {
			return err
		}
		post.Upvotes = clampCount(post.Upvotes + delta)
		count = post.Upvotes
		return setEntity(txn, postKey(postID), &post)
	})
	if err != nil {
		return 0, wrapErr("adjust_upvote_count", err)
	}
	return count, nil
}

func clampCount(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

// taggedPostIDs collects the distinct posts linked to any of tagIDs.
func taggedPostIDs(txn *badger.Txn, tagIDs []string) ([]string, error) {
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	it := txn.NewIterator(opts)
	defer it.Close()

	seen := make(map[string]struct{})
	var ids []string
	for _, tagID := range tagIDs {
		prefix := []byte(TagPostKeyPrefix + tagID + ":")
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			postID := lastSegment(it.Item().Key())
			if _, ok := seen[postID]; ok {
				continue
			}
			seen[postID] = struct{}{}
			ids = append(ids, postID)
		}
	}
	return ids, nil
}

// newestPostIDs walks the time index backwards.
func newestPostIDs(txn *badger.Txn, limit int) ([]string, error) {
	opts := badger.DefaultIteratorOptions
	opts.Reverse = true
	it := txn.NewIterator(opts)
	defer it.Close()

	var ids []string
	prefix := []byte(PostTimeKeyPrefix)
	seekKey := append(append([]byte{}, prefix...), 0xFF)
	for it.Seek(seekKey); it.ValidForPrefix(prefix); it.Next() {
		val, err := it.Item().ValueCopy(nil)
		if err != nil {
			return nil, err
		}
		ids = append(ids, string(val))
		if limit > 0 && len(ids) >= limit {
			break
		}
	}
	return ids, nil
}

// scanPosts loads every post with its joins.
func scanPosts(txn *badger.Txn) ([]*models.Post, error) {
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	it := txn.NewIterator(opts)
	defer it.Close()

	var ids []string
	prefix := []byte(PostKeyPrefix)
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		ids = append(ids, lastSegment(it.Item().Key()))
	}

	posts := make([]*models.Post, 0, len(ids))
	for _, id := range ids {
		post, err := loadPost(txn, id)
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, nil
}

// loadPost reads a post and hydrates its tags and author profile.
func loadPost(txn *badger.Txn, id string) (*models.Post, error) {
	var post models.Post
	if err := getEntity(txn, postKey(id), &post); err != nil {
		return nil, err
	}

	tags, err := postTags(txn, id)
	if err != nil {
		return nil, err
	}
	post.Tags = tags

	var author models.Profile
	switch err := getEntity(txn, profileKey(post.AuthorID), &author); {
	case err == nil:
		post.Author = &author
	case !errors.Is(err, ErrNotFound):
		return nil, err
	}
	return &post, nil
}

// postTags returns the tags linked to a post in link order.
func postTags(txn *badger.Txn, postID string) ([]*models.Tag, error) {
	it := txn.NewIterator(badger.DefaultIteratorOptions)
	defer it.Close()

	var links []models.PostTag
	prefix := []byte(PostTagKeyPrefix + postID + ":")
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		var link models.PostTag
		if err := it.Item().Value(func(val []byte) error {
			return unmarshalEntity(val, &link)
		}); err != nil {
			return nil, err
		}
		links = append(links, link)
	}
	sort.SliceStable(links, func(i, j int) bool {
		if !links[i].CreatedAt.Equal(links[j].CreatedAt) {
			return links[i].CreatedAt.Before(links[j].CreatedAt)
		}
		return links[i].ID < links[j].ID
	})

	tags := make([]*models.Tag, 0, len(links))
	for _, link := range links {
		var tag models.Tag
		err := getEntity(txn, tagKey(link.TagID), &tag)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		tags = append(tags, &tag)
	}
	return tags, nil
}
