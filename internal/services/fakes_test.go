package services

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/anonto42/circle/backend/internal/models"
	"github.com/anonto42/circle/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// stepClock starts at a fixed instant and advances by one second per call so
// that creation order is strict.
type stepClock struct {
	mu  sync.Mutex
	now time.Time
}

func newStepClock() *stepClock {
	return &stepClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

func (c *stepClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func parseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, repositories.ErrInvalidID
	}
	return oid, nil
}

func window[T any](items []T, skip, limit int64) []T {
	if skip >= int64(len(items)) {
		return []T{}
	}
	items = items[skip:]
	if limit > 0 && limit < int64(len(items)) {
		items = items[:limit]
	}
	return items
}

type fakePosts struct {
	mu    sync.Mutex
	items map[primitive.ObjectID]*models.Post
}

func newFakePosts() *fakePosts {
	return &fakePosts{items: map[primitive.ObjectID]*models.Post{}}
}

func clonePost(p *models.Post) *models.Post {
	c := *p
	c.Images = slices.Clone(p.Images)
	c.Likes = slices.Clone(p.Likes)
	c.Views = slices.Clone(p.Views)
	c.Shares = slices.Clone(p.Shares)
	c.Tags = slices.Clone(p.Tags)
	return &c
}

func (f *fakePosts) CreatePost(_ context.Context, post *models.Post) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	post.ID = primitive.NewObjectID()
	if post.Likes == nil {
		post.Likes = []uint{}
	}
	if post.Views == nil {
		post.Views = []uint{}
	}
	if post.Shares == nil {
		post.Shares = []uint{}
	}
	f.items[post.ID] = clonePost(post)
	return nil
}

func (f *fakePosts) get(id string) (*models.Post, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	p, ok := f.items[oid]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return p, nil
}

func (f *fakePosts) GetPostByID(_ context.Context, id string) (*models.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, err := f.get(id)
	if err != nil {
		return nil, err
	}
	return clonePost(p), nil
}

func (f *fakePosts) GetPostsByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Post{}
	for _, id := range ids {
		if p, ok := f.items[id]; ok {
			out = append(out, *clonePost(p))
		}
	}
	return out, nil
}

func (f *fakePosts) CountActiveSince(_ context.Context, ownerID uint, since time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, p := range f.items {
		if p.OwnerID == ownerID && p.Status == models.StatusActive && !p.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

func (f *fakePosts) UpdateOwned(_ context.Context, id string, ownerID uint, patch models.PostPatch, now time.Time) (*models.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, err := f.get(id)
	if err != nil {
		return nil, err
	}
	if p.OwnerID != ownerID || p.Status != models.StatusActive {
		return nil, repositories.ErrNotFound
	}
	breaksShare := len(patch.Images) > 0 || (patch.Visibility != nil && *patch.Visibility != models.VisibilityPublic)
	if breaksShare && p.IsShare() {
		return nil, repositories.ErrNotFound
	}
	if patch.Content != nil {
		p.Content = *patch.Content
	}
	if patch.Images != nil {
		p.Images = slices.Clone(patch.Images)
	}
	if patch.Visibility != nil {
		p.Visibility = *patch.Visibility
	}
	if patch.Tags != nil {
		p.Tags = slices.Clone(patch.Tags)
	}
	p.UpdatedAt = now
	return clonePost(p), nil
}

func (f *fakePosts) SoftDeleteOwned(_ context.Context, id string, ownerID uint, now time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, err := f.get(id)
	if err != nil {
		return err
	}
	if p.OwnerID != ownerID || p.Status != models.StatusActive {
		return repositories.ErrNotFound
	}
	p.Status = models.StatusDeleted
	p.UpdatedAt = now
	return nil
}

func (f *fakePosts) AddLike(_ context.Context, id string, userID uint) (*models.Post, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, err := f.get(id)
	if err != nil {
		return nil, false, err
	}
	if slices.Contains(p.Likes, userID) {
		return clonePost(p), false, nil
	}
	p.Likes = append(p.Likes, userID)
	return clonePost(p), true, nil
}

func (f *fakePosts) RemoveLike(_ context.Context, id string, userID uint) (*models.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, err := f.get(id)
	if err != nil {
		return nil, err
	}
	p.Likes = slices.DeleteFunc(p.Likes, func(u uint) bool { return u == userID })
	return clonePost(p), nil
}

func (f *fakePosts) AddView(_ context.Context, id string, userID uint) (*models.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, err := f.get(id)
	if err != nil {
		return nil, err
	}
	if !slices.Contains(p.Views, userID) {
		p.Views = append(p.Views, userID)
	}
	return clonePost(p), nil
}

func (f *fakePosts) AddShare(_ context.Context, id string, userID uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, err := f.get(id)
	if err != nil {
		return err
	}
	if !slices.Contains(p.Shares, userID) {
		p.Shares = append(p.Shares, userID)
	}
	return nil
}

func (f *fakePosts) list(match func(*models.Post) bool, skip, limit int64) ([]models.Post, int64) {
	var out []models.Post
	for _, p := range f.items {
		if p.Status == models.StatusActive && match(p) {
			out = append(out, *clonePost(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return window(out, skip, limit), int64(len(out))
}

func (f *fakePosts) ListByOwner(_ context.Context, ownerID uint, visibilities []models.Visibility, skip, limit int64) ([]models.Post, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	posts, total := f.list(func(p *models.Post) bool {
		return p.OwnerID == ownerID && (visibilities == nil || slices.Contains(visibilities, p.Visibility))
	}, skip, limit)
	return posts, total, nil
}

func (f *fakePosts) ListFeed(_ context.Context, viewerID uint, followingIDs []uint, skip, limit int64) ([]models.Post, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	posts, total := f.list(func(p *models.Post) bool {
		if p.OwnerID == viewerID {
			return true
		}
		if !slices.Contains(followingIDs, p.OwnerID) {
			return false
		}
		return p.Visibility == models.VisibilityPublic || p.Visibility == models.VisibilityFollowers
	}, skip, limit)
	return posts, total, nil
}

func (f *fakePosts) ListPublic(_ context.Context, skip, limit int64) ([]models.Post, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	posts, total := f.list(func(p *models.Post) bool { return p.Visibility == models.VisibilityPublic }, skip, limit)
	return posts, total, nil
}

type fakeComments struct {
	mu    sync.Mutex
	items map[primitive.ObjectID]*models.Comment
}

func newFakeComments() *fakeComments {
	return &fakeComments{items: map[primitive.ObjectID]*models.Comment{}}
}

func cloneComment(c *models.Comment) *models.Comment {
	out := *c
	out.Likes = slices.Clone(c.Likes)
	return &out
}

func (f *fakeComments) get(id string) (*models.Comment, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	c, ok := f.items[oid]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return c, nil
}

func (f *fakeComments) CreateComment(_ context.Context, comment *models.Comment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	comment.ID = primitive.NewObjectID()
	if comment.Likes == nil {
		comment.Likes = []uint{}
	}
	f.items[comment.ID] = cloneComment(comment)
	return nil
}

func (f *fakeComments) GetCommentByID(_ context.Context, id string) (*models.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, err := f.get(id)
	if err != nil {
		return nil, err
	}
	return cloneComment(c), nil
}

func (f *fakeComments) IncrementReplyCount(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, err := f.get(id)
	if err != nil {
		return err
	}
	c.ReplyCount++
	return nil
}

func (f *fakeComments) list(match func(*models.Comment) bool, newestFirst bool, skip, limit int64) ([]models.Comment, int64) {
	var out []models.Comment
	for _, c := range f.items {
		if c.Status == models.StatusActive && match(c) {
			out = append(out, *cloneComment(c))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if newestFirst {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return window(out, skip, limit), int64(len(out))
}

func (f *fakeComments) ListRoots(_ context.Context, postID string, skip, limit int64) ([]models.Comment, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	oid, err := parseID(postID)
	if err != nil {
		return nil, 0, err
	}
	out, total := f.list(func(c *models.Comment) bool { return c.PostID == oid && c.ParentID == nil }, true, skip, limit)
	return out, total, nil
}

func (f *fakeComments) ListReplies(_ context.Context, parentID string, skip, limit int64) ([]models.Comment, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	oid, err := parseID(parentID)
	if err != nil {
		return nil, 0, err
	}
	out, total := f.list(func(c *models.Comment) bool { return c.ParentID != nil && *c.ParentID == oid }, false, skip, limit)
	return out, total, nil
}

func (f *fakeComments) ToggleLike(_ context.Context, id string, userID uint) (bool, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, err := f.get(id)
	if err != nil {
		return false, 0, err
	}
	if slices.Contains(c.Likes, userID) {
		c.Likes = slices.DeleteFunc(c.Likes, func(u uint) bool { return u == userID })
		return false, len(c.Likes), nil
	}
	c.Likes = append(c.Likes, userID)
	return true, len(c.Likes), nil
}

func (f *fakeComments) UpdateContent(_ context.Context, id string, authorID uint, content string, now time.Time) (*models.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, err := f.get(id)
	if err != nil {
		return nil, err
	}
	if c.AuthorID != authorID || c.Status != models.StatusActive {
		return nil, repositories.ErrNotFound
	}
	c.Content = content
	c.UpdatedAt = now
	return cloneComment(c), nil
}

func (f *fakeComments) SoftDelete(_ context.Context, id string, authorID uint, now time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, err := f.get(id)
	if err != nil {
		return err
	}
	if c.AuthorID != authorID || c.Status != models.StatusActive {
		return repositories.ErrNotFound
	}
	c.Status = models.StatusDeleted
	c.Content = models.DeletedCommentPlaceholder
	c.UpdatedAt = now
	return nil
}

type edge struct{ follower, following uint }

type fakeFollows struct {
	mu    sync.Mutex
	edges map[edge]time.Time
}

func newFakeFollows() *fakeFollows {
	return &fakeFollows{edges: map[edge]time.Time{}}
}

func (f *fakeFollows) add(follower, following uint) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.edges[edge{follower, following}] = time.Now()
}

func (f *fakeFollows) CreateFollow(_ context.Context, follow *models.Follow) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := edge{follow.FollowerID, follow.FollowingID}
	if _, ok := f.edges[key]; ok {
		return repositories.ErrAlreadyExists
	}
	f.edges[key] = follow.CreatedAt
	return nil
}

func (f *fakeFollows) DeleteFollow(_ context.Context, followerID, followingID uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := edge{followerID, followingID}
	if _, ok := f.edges[key]; !ok {
		return repositories.ErrNotFound
	}
	delete(f.edges, key)
	return nil
}

func (f *fakeFollows) IsFollowing(_ context.Context, followerID, followingID uint) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.edges[edge{followerID, followingID}]
	return ok, nil
}

func (f *fakeFollows) count(match func(edge) bool) int64 {
	var n int64
	for e := range f.edges {
		if match(e) {
			n++
		}
	}
	return n
}

func (f *fakeFollows) GetFollowersCount(_ context.Context, userID uint) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.count(func(e edge) bool { return e.following == userID }), nil
}

func (f *fakeFollows) GetFollowingCount(_ context.Context, userID uint) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.count(func(e edge) bool { return e.follower == userID }), nil
}

func (f *fakeFollows) edgesWhere(match func(edge) bool, skip, limit int64) ([]models.Follow, int64) {
	var out []models.Follow
	for e, at := range f.edges {
		if match(e) {
			out = append(out, models.Follow{FollowerID: e.follower, FollowingID: e.following, CreatedAt: at})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return window(out, skip, limit), int64(len(out))
}

func (f *fakeFollows) GetFollowers(_ context.Context, userID uint, skip, limit int64) ([]models.Follow, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out, total := f.edgesWhere(func(e edge) bool { return e.following == userID }, skip, limit)
	return out, total, nil
}

func (f *fakeFollows) GetFollowing(_ context.Context, userID uint, skip, limit int64) ([]models.Follow, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out, total := f.edgesWhere(func(e edge) bool { return e.follower == userID }, skip, limit)
	return out, total, nil
}

func (f *fakeFollows) GetFollowingIDs(_ context.Context, userID uint) ([]uint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var ids []uint
	for e := range f.edges {
		if e.follower == userID {
			ids = append(ids, e.following)
		}
	}
	return ids, nil
}

type fakeNotifications struct {
	mu    sync.Mutex
	items []*models.Notification
}

func (f *fakeNotifications) CreateNotification(_ context.Context, n *models.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	n.ID = primitive.NewObjectID()
	c := *n
	f.items = append(f.items, &c)
	return nil
}

func (f *fakeNotifications) GetByRecipientID(_ context.Context, recipientID uint, skip, limit int64) ([]models.Notification, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Notification
	for i := len(f.items) - 1; i >= 0; i-- {
		if f.items[i].RecipientID == recipientID {
			out = append(out, *f.items[i])
		}
	}
	return window(out, skip, limit), int64(len(out)), nil
}

func (f *fakeNotifications) GetUnreadCount(_ context.Context, recipientID uint) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, item := range f.items {
		if item.RecipientID == recipientID && !item.IsRead {
			n++
		}
	}
	return n, nil
}

func (f *fakeNotifications) MarkAsRead(_ context.Context, id string, recipientID uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	oid, err := parseID(id)
	if err != nil {
		return err
	}
	for _, item := range f.items {
		if item.ID == oid && item.RecipientID == recipientID {
			item.IsRead = true
			return nil
		}
	}
	return repositories.ErrNotFound
}

func (f *fakeNotifications) MarkAllAsRead(_ context.Context, recipientID uint) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, item := range f.items {
		if item.RecipientID == recipientID && !item.IsRead {
			item.IsRead = true
			n++
		}
	}
	return n, nil
}

func (f *fakeNotifications) byType(t models.NotificationType) []models.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Notification
	for _, item := range f.items {
		if item.Type == t {
			out = append(out, *item)
		}
	}
	return out
}

type fakeUsers struct {
	mu     sync.Mutex
	nextID uint
	items  map[uint]*models.User
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{items: map[uint]*models.User{}}
}

func (f *fakeUsers) seed(name string) *models.User {
	u := &models.User{Name: name, Email: strings.ToLower(name) + "@example.com", Role: models.RoleUser}
	_ = f.CreateUser(context.Background(), u)
	return u
}

func (f *fakeUsers) CreateUser(_ context.Context, user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.items {
		if u.Email == user.Email || (u.Phone != nil && user.Phone != nil && *u.Phone == *user.Phone) {
			return repositories.ErrAlreadyExists
		}
	}
	f.nextID++
	user.ID = f.nextID
	c := *user
	f.items[user.ID] = &c
	return nil
}

func (f *fakeUsers) find(match func(*models.User) bool) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.items {
		if match(u) {
			c := *u
			return &c, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeUsers) GetUserByID(_ context.Context, id uint) (*models.User, error) {
	return f.find(func(u *models.User) bool { return u.ID == id })
}

func (f *fakeUsers) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	return f.find(func(u *models.User) bool { return strings.EqualFold(u.Email, email) })
}

func (f *fakeUsers) GetUserByPhone(_ context.Context, phone string) (*models.User, error) {
	return f.find(func(u *models.User) bool { return u.Phone != nil && *u.Phone == phone })
}

func (f *fakeUsers) GetUserByFirebaseUID(_ context.Context, uid string) (*models.User, error) {
	return f.find(func(u *models.User) bool { return u.FirebaseUID != nil && *u.FirebaseUID == uid })
}

func (f *fakeUsers) GetUsersByIDs(_ context.Context, ids []uint) ([]models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.User{}
	for _, id := range ids {
		if u, ok := f.items[id]; ok {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (f *fakeUsers) UpdateProfile(_ context.Context, user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.items[user.ID]
	if !ok {
		return repositories.ErrNotFound
	}
	u.Name = user.Name
	u.Avatar = user.Avatar
	u.Bio = user.Bio
	u.FirebaseUID = user.FirebaseUID
	return nil
}

func (f *fakeUsers) UpdatePassword(_ context.Context, id uint, hash string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.items[id]
	if !ok {
		return 0, repositories.ErrNotFound
	}
	u.Password = hash
	u.ResetOTPHash = ""
	u.ResetOTPExp = nil
	u.SessionEpoch++
	return u.SessionEpoch, nil
}

func (f *fakeUsers) SetResetOTP(_ context.Context, id uint, hash string, expiresAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.items[id]
	if !ok {
		return repositories.ErrNotFound
	}
	u.ResetOTPHash = hash
	u.ResetOTPExp = &expiresAt
	return nil
}

func (f *fakeUsers) SearchUsers(_ context.Context, query string, limit int) ([]models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.User{}
	q := strings.ToLower(query)
	for _, u := range f.items {
		if strings.Contains(strings.ToLower(u.Name), q) || strings.Contains(strings.ToLower(u.Email), q) {
			out = append(out, *u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

var (
	_ repositories.PostRepository         = (*fakePosts)(nil)
	_ repositories.CommentRepository      = (*fakeComments)(nil)
	_ repositories.FollowRepository       = (*fakeFollows)(nil)
	_ repositories.NotificationRepository = (*fakeNotifications)(nil)
	_ repositories.UserRepository         = (*fakeUsers)(nil)
)
