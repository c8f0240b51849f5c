package mock

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"feedapp/app/models"
	"feedapp/app/repositories"
)

// Store is an in-memory repositories.Store. It does not implement
// repositories.UpvoteToggler; wrap it in Toggler for the atomic path.
type Store struct {
	mutex sync.RWMutex

	posts        map[string]*models.Post
	tags         map[string]*models.Tag
	tagsByName   map[string]string
	links        []*models.PostTag
	interests    map[interestKey]*models.UserInterest
	interactions map[string]*models.PostInteraction
	profiles     map[string]*models.Profile

	failOn map[string]error
	calls  map[string]int
}

type interestKey struct {
	userID, tagID string
}

func NewStore() *Store {
	s := &Store{}
	s.Clear()
	return s
}

// Clear drops all data, injected failures and call counts.
func (m *Store) Clear() {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.posts = make(map[string]*models.Post)
	m.tags = make(map[string]*models.Tag)
	m.tagsByName = make(map[string]string)
	m.links = nil
	m.interests = make(map[interestKey]*models.UserInterest)
	m.interactions = make(map[string]*models.PostInteraction)
	m.profiles = make(map[string]*models.Profile)
	m.failOn = make(map[string]error)
	m.calls = make(map[string]int)
}

// FailOn makes every later call of op return err wrapped as a
// DataAccessError. A nil err clears the failure.
func (m *Store) FailOn(op string, err error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if err == nil {
		delete(m.failOn, op)
		return
	}
	m.failOn[op] = err
}

// Calls returns how many times op was invoked.
func (m *Store) Calls(op string) int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return m.calls[op]
}

// InterestCount returns the number of stored interest records.
func (m *Store) InterestCount() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.interests)
}

// UpvoteCount returns the number of live upvote interactions for a
// (user, post) pair.
func (m *Store) UpvoteCount(userID, postID string) int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	n := 0
	for _, in := range m.interactions {
		if in.UserID == userID && in.PostID == postID && in.Kind == models.InteractionUpvote {
			n++
		}
	}
	return n
}

// TagCount returns the number of stored tags.
func (m *Store) TagCount() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.tags)
}

// LinkCount returns the number of post-tag links.
func (m *Store) LinkCount() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.links)
}

// enter records the call and returns the injected failure, if any. Must be
// called with the lock held.
func (m *Store) enter(ctx context.Context, op string) error {
	m.calls[op]++
	if err := ctx.Err(); err != nil {
		return repositories.WrapErr(op, err)
	}
	if err, ok := m.failOn[op]; ok {
		return repositories.WrapErr(op, err)
	}
	return nil
}

func notFound(op string) error {
	return repositories.WrapErr(op, repositories.ErrNotFound)
}

func (m *Store) ListPosts(ctx context.Context, order repositories.PostOrder, limit int) ([]*models.Post, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if err := m.enter(ctx, "list_posts"); err != nil {
		return nil, err
	}

	posts := make([]*models.Post, 0, len(m.posts))
	for id := range m.posts {
		posts = append(posts, m.hydrate(id))
	}
	repositories.SortPosts(posts, order)
	return repositories.LimitPosts(posts, limit), nil
}

func (m *Store) ListPostsByTags(ctx context.Context, tagIDs []string, limit int) ([]*models.Post, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if err := m.enter(ctx, "list_posts_by_tags"); err != nil {
		return nil, err
	}

	wanted := make(map[string]struct{}, len(tagIDs))
	for _, id := range tagIDs {
		wanted[id] = struct{}{}
	}
	seen := make(map[string]struct{})
	var posts []*models.Post
	for _, link := range m.links {
		if _, ok := wanted[link.TagID]; !ok {
			continue
		}
		if _, ok := seen[link.PostID]; ok {
			continue
		}
		seen[link.PostID] = struct{}{}
		posts = append(posts, m.hydrate(link.PostID))
	}
	repositories.SortPosts(posts, repositories.OrderNewest)
	return repositories.LimitPosts(posts, limit), nil
}

func (m *Store) GetPost(ctx context.Context, postID string) (*models.Post, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if err := m.enter(ctx, "get_post"); err != nil {
		return nil, err
	}
	if _, ok := m.posts[postID]; !ok {
		return nil, notFound("get_post")
	}
	return m.hydrate(postID), nil
}

func (m *Store) CreatePost(ctx context.Context, post *models.Post) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if err := m.enter(ctx, "create_post"); err != nil {
		return err
	}
	if post.ID == "" {
		post.ID = repositories.NewID()
	}
	if _, ok := m.posts[post.ID]; ok {
		return repositories.WrapErr("create_post", repositories.ErrDuplicate)
	}
	post.BeforeCreate()
	cp := *post
	cp.Tags, cp.Author = nil, nil
	m.posts[post.ID] = &cp
	return nil
}

func (m *Store) AdjustUpvoteCount(ctx context.Context, postID string, delta int) (int, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if err := m.enter(ctx, "adjust_upvote_count"); err != nil {
		return 0, err
	}
	post, ok := m.posts[postID]
	if !ok {
		return 0, notFound("adjust_upvote_count")
	}
	post.Upvotes += delta
	if post.Upvotes < 0 {
		post.Upvotes = 0
	}
	return post.Upvotes, nil
}

func (m *Store) EnsureTag(ctx context.Context, name string) (*models.Tag, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if err := m.enter(ctx, "ensure_tag"); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, repositories.WrapErr("ensure_tag", errors.New("tag name is empty"))
	}
	if id, ok := m.tagsByName[name]; ok {
		cp := *m.tags[id]
		return &cp, nil
	}
	tag := models.NewTag(name)
	tag.ID = repositories.NewID()
	if err := tag.Validate(); err != nil {
		return nil, repositories.WrapErr("ensure_tag", err)
	}
	m.tags[tag.ID] = tag
	m.tagsByName[name] = tag.ID
	cp := *tag
	return &cp, nil
}

func (m *Store) LinkPostTag(ctx context.Context, postID, tagID string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if err := m.enter(ctx, "link_post_tag"); err != nil {
		return err
	}
	if _, ok := m.posts[postID]; !ok {
		return notFound("link_post_tag")
	}
	if _, ok := m.tags[tagID]; !ok {
		return notFound("link_post_tag")
	}
	for _, l := range m.links {
		if l.PostID == postID && l.TagID == tagID {
			return nil
		}
	}
	m.links = append(m.links, &models.PostTag{
		ID:        repositories.NewID(),
		PostID:    postID,
		TagID:     tagID,
		CreatedAt: time.Now().UTC(),
	})
	return nil
}

func (m *Store) ListTags(ctx context.Context) ([]*models.Tag, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if err := m.enter(ctx, "list_tags"); err != nil {
		return nil, err
	}
	tags := make([]*models.Tag, 0, len(m.tags))
	for _, t := range m.tags {
		cp := *t
		tags = append(tags, &cp)
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i].Name < tags[j].Name })
	return tags, nil
}

func (m *Store) GetUserInterests(ctx context.Context, userID string) ([]*models.UserInterest, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if err := m.enter(ctx, "get_user_interests"); err != nil {
		return nil, err
	}
	var out []*models.UserInterest
	for _, in := range m.interests {
		if in.UserID != userID {
			continue
		}
		cp := *in
		if tag, ok := m.tags[in.TagID]; ok {
			t := *tag
			cp.Tag = &t
		}
		out = append(out, &cp)
	}
	repositories.SortInterests(out)
	return out, nil
}

func (m *Store) UpsertInterest(ctx context.Context, userID, tagID string, delta float64) (*models.UserInterest, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if err := m.enter(ctx, "upsert_interest"); err != nil {
		return nil, err
	}
	key := interestKey{userID: userID, tagID: tagID}
	now := time.Now().UTC()
	in, ok := m.interests[key]
	if !ok {
		in = &models.UserInterest{
			ID:        repositories.NewID(),
			UserID:    userID,
			TagID:     tagID,
			CreatedAt: now,
		}
		m.interests[key] = in
	}
	in.InterestScore += delta
	if in.InterestScore < 0 {
		in.InterestScore = 0
	}
	in.UpdatedAt = now
	cp := *in
	return &cp, nil
}

// Interest returns the stored record for (user, tag), or nil.
func (m *Store) Interest(userID, tagID string) *models.UserInterest {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	if in, ok := m.interests[interestKey{userID: userID, tagID: tagID}]; ok {
		cp := *in
		return &cp
	}
	return nil
}

func (m *Store) FindUpvote(ctx context.Context, userID, postID string) (*models.PostInteraction, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if err := m.enter(ctx, "find_upvote"); err != nil {
		return nil, err
	}
	for _, in := range m.interactions {
		if in.UserID == userID && in.PostID == postID && in.Kind == models.InteractionUpvote {
			cp := *in
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *Store) InsertUpvote(ctx context.Context, userID, postID string) (*models.PostInteraction, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if err := m.enter(ctx, "insert_upvote"); err != nil {
		return nil, err
	}
	for _, in := range m.interactions {
		if in.UserID == userID && in.PostID == postID && in.Kind == models.InteractionUpvote {
			return nil, repositories.WrapErr("insert_upvote", repositories.ErrDuplicate)
		}
	}
	in := &models.PostInteraction{
		ID:        repositories.NewID(),
		UserID:    userID,
		PostID:    postID,
		Kind:      models.InteractionUpvote,
		CreatedAt: time.Now().UTC(),
	}
	m.interactions[in.ID] = in
	cp := *in
	return &cp, nil
}

func (m *Store) DeleteUpvote(ctx context.Context, interactionID string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if err := m.enter(ctx, "delete_upvote"); err != nil {
		return err
	}
	if _, ok := m.interactions[interactionID]; !ok {
		return notFound("delete_upvote")
	}
	delete(m.interactions, interactionID)
	return nil
}

func (m *Store) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if err := m.enter(ctx, "get_profile"); err != nil {
		return nil, err
	}
	p, ok := m.profiles[userID]
	if !ok {
		return nil, notFound("get_profile")
	}
	cp := *p
	return &cp, nil
}

func (m *Store) UpsertProfile(ctx context.Context, profile *models.Profile) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if err := m.enter(ctx, "upsert_profile"); err != nil {
		return err
	}
	if existing, ok := m.profiles[profile.ID]; ok {
		profile.CreatedAt = existing.CreatedAt
	}
	profile.BeforeCreate()
	cp := *profile
	m.profiles[profile.ID] = &cp
	return nil
}

func (m *Store) Close() error {
	return nil
}

// hydrate returns a copy of the post with tags and author attached. Must be
// called with the lock held.
func (m *Store) hydrate(postID string) *models.Post {
	cp := *m.posts[postID]
	cp.Tags = nil
	for _, l := range m.links {
		if l.PostID != postID {
			continue
		}
		if tag, ok := m.tags[l.TagID]; ok {
			t := *tag
			cp.Tags = append(cp.Tags, &t)
		}
	}
	if p, ok := m.profiles[cp.AuthorID]; ok {
		a := *p
		cp.Author = &a
	}
	return &cp
}

// Toggler wraps a Store and adds the atomic toggle capability, for tests
// that need the single-step path.
type Toggler struct {
	*Store
}

func (t Toggler) ToggleUpvote(ctx context.Context, userID, postID string) (bool, int, error) {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	if err := t.enter(ctx, "toggle_upvote"); err != nil {
		return false, 0, err
	}
	post, ok := t.posts[postID]
	if !ok {
		return false, 0, notFound("toggle_upvote")
	}
	for id, in := range t.interactions {
		if in.UserID == userID && in.PostID == postID && in.Kind == models.InteractionUpvote {
			delete(t.interactions, id)
			if post.Upvotes > 0 {
				post.Upvotes--
			}
			return false, post.Upvotes, nil
		}
	}
	in := &models.PostInteraction{
		ID:        repositories.NewID(),
		UserID:    userID,
		PostID:    postID,
		Kind:      models.InteractionUpvote,
		CreatedAt: time.Now().UTC(),
	}
	t.interactions[in.ID] = in
	post.Upvotes++
	return true, post.Upvotes, nil
}
