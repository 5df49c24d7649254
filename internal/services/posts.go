package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/anonto42/circle/backend/internal/apperrors"
	"github.com/anonto42/circle/backend/internal/metrics"
	"github.com/anonto42/circle/backend/internal/models"
	"github.com/anonto42/circle/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const quotaWindow = time.Hour

// PostLimits are the deployment caps applied at creation time.
type PostLimits struct {
	MaxContentLength int
	MaxImages        int
	MaxPostsPerHour  int
}

// IdentityLookup resolves ids against the identity store.
// repositories.UserRepository satisfies it.
type IdentityLookup interface {
	GetUsersByIDs(ctx context.Context, ids []uint) ([]models.User, error)
}

// PostService owns the post lifecycle: creation quotas, owner-gated edits,
// soft deletion, sharing and engagement.
type PostService struct {
	posts    repositories.PostRepository
	follows  repositories.FollowRepository
	users    IdentityLookup
	resolver *VisibilityResolver
	notifier Notifier
	limits   PostLimits
	opts     serviceOptions
}

func NewPostService(
	posts repositories.PostRepository,
	follows repositories.FollowRepository,
	users IdentityLookup,
	notifier Notifier,
	limits PostLimits,
	opts ...Option,
) *PostService {
	return &PostService{
		posts:    posts,
		follows:  follows,
		users:    users,
		resolver: NewVisibilityResolver(follows),
		notifier: notifier,
		limits:   limits,
		opts:     applyOptions(opts),
	}
}

type CreatePostInput struct {
	Content    string
	Images     []string
	Visibility models.Visibility
	Tags       []uint
}

// PostDetail is a post together with its origin when it is a readable share.
// Only one level of the share chain is resolved.
type PostDetail struct {
	models.Post
	Origin *models.Post `json:"origin,omitempty"`
}

func (s *PostService) CreatePost(ctx context.Context, ownerID uint, in CreatePostInput) (*models.Post, error) {
	const op = "services/posts/CreatePost"
	log := s.opts.log.With(zap.String("op", op), zap.Uint("owner_id", ownerID))

	content, err := s.validateContent(in.Content, true)
	if err != nil {
		return nil, err
	}
	if err := s.validateImages(in.Images); err != nil {
		return nil, err
	}

	visibility := in.Visibility
	if visibility == "" {
		visibility = models.VisibilityPublic
	}
	if !visibility.Valid() {
		return nil, apperrors.Validation("visibility", "visibility must be public, followers or private")
	}

	now := s.opts.now()
	count, err := s.posts.CountActiveSince(ctx, ownerID, now.Add(-quotaWindow))
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if count >= int64(s.limits.MaxPostsPerHour) {
		metrics.Get().QuotaRejections.Inc()
		log.Info("post quota exceeded", zap.Int64("recent_posts", count))
		return nil, apperrors.QuotaExceeded(fmt.Sprintf("you can publish at most %d posts per hour", s.limits.MaxPostsPerHour))
	}

	tags, err := s.knownIdentities(ctx, in.Tags)
	if err != nil {
		return nil, err
	}

	post := &models.Post{
		OwnerID:    ownerID,
		Content:    content,
		Images:     in.Images,
		Tags:       tags,
		Visibility: visibility,
		Status:     models.StatusActive,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.posts.CreatePost(ctx, post); err != nil {
		return nil, apperrors.Internal(err)
	}
	metrics.Get().PostsCreated.WithLabelValues("post").Inc()

	s.notifyTagged(ctx, post)
	return post, nil
}

// GetPost returns a readable post; the origin of a share is attached only when
// the viewer may read it as well.
func (s *PostService) GetPost(ctx context.Context, id string, viewerID uint) (*PostDetail, error) {
	post, err := loadPost(ctx, s.posts, id)
	if err != nil {
		return nil, err
	}
	if err := s.resolver.RequireAccess(ctx, post, viewerID); err != nil {
		return nil, err
	}

	details, err := s.attachOrigins(ctx, []models.Post{*post}, viewerID)
	if err != nil {
		return nil, err
	}
	return &details[0], nil
}

// UpdatePost edits a post through a single guarded write on
// {id, owner, status: active}. When the guard matches nothing the post is read
// back only to pick the error kind.
func (s *PostService) UpdatePost(ctx context.Context, id string, ownerID uint, patch models.PostPatch) (*models.Post, error) {
	if patch.Content != nil {
		content, err := s.validateContent(*patch.Content, true)
		if err != nil {
			return nil, err
		}
		patch.Content = &content
	}
	if patch.Images != nil {
		if err := s.validateImages(patch.Images); err != nil {
			return nil, err
		}
	}
	if patch.Visibility != nil && !patch.Visibility.Valid() {
		return nil, apperrors.Validation("visibility", "visibility must be public, followers or private")
	}
	if patch.Tags != nil {
		tags, err := s.knownIdentities(ctx, patch.Tags)
		if err != nil {
			return nil, err
		}
		patch.Tags = tags
	}

	post, err := s.posts.UpdateOwned(ctx, id, ownerID, patch, s.opts.now())
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) || errors.Is(err, repositories.ErrInvalidID) {
			return nil, s.classifyOwnedMiss(ctx, id, ownerID, true)
		}
		return nil, apperrors.Internal(err)
	}
	return post, nil
}

// DeletePost soft-deletes a post owned by ownerID.
func (s *PostService) DeletePost(ctx context.Context, id string, ownerID uint) error {
	if err := s.posts.SoftDeleteOwned(ctx, id, ownerID, s.opts.now()); err != nil {
		if errors.Is(err, repositories.ErrNotFound) || errors.Is(err, repositories.ErrInvalidID) {
			return s.classifyOwnedMiss(ctx, id, ownerID, false)
		}
		return apperrors.Internal(err)
	}
	return nil
}

func (s *PostService) classifyOwnedMiss(ctx context.Context, id string, ownerID uint, isUpdate bool) error {
	post, err := s.posts.GetPostByID(ctx, id)
	if err != nil || post.OwnerID != ownerID {
		return apperrors.NotOwned("post")
	}
	if post.Status != models.StatusActive {
		return apperrors.StateConflict("post is no longer active")
	}
	if isUpdate && post.IsShare() {
		return apperrors.Validation("visibility", "shared posts stay public and carry no images")
	}
	return apperrors.NotOwned("post")
}

// SharePost creates a public post referencing originID. The three writes (new
// post, share set, notification) are sequential and not rolled back on failure.
func (s *PostService) SharePost(ctx context.Context, originID string, actorID uint, note string) (*models.Post, error) {
	const op = "services/posts/SharePost"
	log := s.opts.log.With(zap.String("op", op), zap.String("origin_id", originID))

	origin, err := loadPost(ctx, s.posts, originID)
	if err != nil {
		return nil, err
	}
	if err := s.resolver.RequireAccess(ctx, origin, actorID); err != nil {
		return nil, err
	}
	if origin.Visibility != models.VisibilityPublic {
		return nil, apperrors.Validation("visibility", "only public posts can be shared")
	}

	content, err := s.validateContent(note, false)
	if err != nil {
		return nil, err
	}

	now := s.opts.now()
	originRef := origin.ID
	share := &models.Post{
		OwnerID:    actorID,
		Content:    content,
		Images:     []string{},
		Visibility: models.VisibilityPublic,
		Status:     models.StatusActive,
		SharedFrom: &originRef,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.posts.CreatePost(ctx, share); err != nil {
		return nil, apperrors.Internal(err)
	}
	metrics.Get().PostsCreated.WithLabelValues("share").Inc()

	if err := s.posts.AddShare(ctx, originID, actorID); err != nil {
		log.Warn("share recorded without origin bookkeeping", zap.Error(err))
	}

	emit(ctx, s.notifier, s.opts.log, &models.Notification{
		Type:        models.NotificationSharePost,
		SenderID:    actorID,
		RecipientID: origin.OwnerID,
		PostID:      &originRef,
		Message:     "shared your post",
	})
	return share, nil
}

// LikePost adds actorID to the like set. The owner is notified only when the
// set actually changed.
func (s *PostService) LikePost(ctx context.Context, id string, actorID uint) (*models.Post, error) {
	post, err := s.readable(ctx, id, actorID)
	if err != nil {
		return nil, err
	}

	updated, added, err := s.posts.AddLike(ctx, id, actorID)
	if err != nil {
		return nil, notFoundOr(err, "post")
	}
	if added {
		metrics.Get().LikesTotal.WithLabelValues("post", "liked").Inc()
		postID := post.ID
		emit(ctx, s.notifier, s.opts.log, &models.Notification{
			Type:        models.NotificationLikePost,
			SenderID:    actorID,
			RecipientID: post.OwnerID,
			PostID:      &postID,
			Message:     "liked your post",
		})
	}
	return updated, nil
}

func (s *PostService) UnlikePost(ctx context.Context, id string, actorID uint) (*models.Post, error) {
	if _, err := s.readable(ctx, id, actorID); err != nil {
		return nil, err
	}

	updated, err := s.posts.RemoveLike(ctx, id, actorID)
	if err != nil {
		return nil, notFoundOr(err, "post")
	}
	metrics.Get().LikesTotal.WithLabelValues("post", "unliked").Inc()
	return updated, nil
}

func (s *PostService) ViewPost(ctx context.Context, id string, actorID uint) (*models.Post, error) {
	if _, err := s.readable(ctx, id, actorID); err != nil {
		return nil, err
	}

	updated, err := s.posts.AddView(ctx, id, actorID)
	if err != nil {
		return nil, notFoundOr(err, "post")
	}
	return updated, nil
}

// ListForViewer lists profileOwnerID's active posts that viewerID may read.
func (s *PostService) ListForViewer(ctx context.Context, profileOwnerID, viewerID uint, page Page) ([]PostDetail, int64, error) {
	visibilities, err := s.resolver.readableVisibilities(ctx, profileOwnerID, viewerID)
	if err != nil {
		return nil, 0, apperrors.Internal(err)
	}

	posts, total, err := s.posts.ListByOwner(ctx, profileOwnerID, visibilities, page.Offset(), page.Limit())
	if err != nil {
		return nil, 0, apperrors.Internal(err)
	}
	return s.listing(ctx, posts, total, viewerID)
}

func (s *PostService) ListMine(ctx context.Context, ownerID uint, page Page) ([]PostDetail, int64, error) {
	return s.ListForViewer(ctx, ownerID, ownerID, page)
}

// Feed lists the viewer's own posts and the readable posts of followed accounts.
func (s *PostService) Feed(ctx context.Context, viewerID uint, page Page) ([]PostDetail, int64, error) {
	followingIDs, err := s.follows.GetFollowingIDs(ctx, viewerID)
	if err != nil {
		return nil, 0, apperrors.Internal(err)
	}

	posts, total, err := s.posts.ListFeed(ctx, viewerID, followingIDs, page.Offset(), page.Limit())
	if err != nil {
		return nil, 0, apperrors.Internal(err)
	}
	return s.listing(ctx, posts, total, viewerID)
}

// ListPublic is the global timeline: every active public post, newest first.
func (s *PostService) ListPublic(ctx context.Context, viewerID uint, page Page) ([]PostDetail, int64, error) {
	posts, total, err := s.posts.ListPublic(ctx, page.Offset(), page.Limit())
	if err != nil {
		return nil, 0, apperrors.Internal(err)
	}
	return s.listing(ctx, posts, total, viewerID)
}

func (s *PostService) listing(ctx context.Context, posts []models.Post, total int64, viewerID uint) ([]PostDetail, int64, error) {
	details, err := s.attachOrigins(ctx, posts, viewerID)
	if err != nil {
		return nil, 0, err
	}
	return details, total, nil
}

// attachOrigins loads the origins of every share in one query. Origins the
// viewer may not read, including deleted ones, are left off.
func (s *PostService) attachOrigins(ctx context.Context, posts []models.Post, viewerID uint) ([]PostDetail, error) {
	details := make([]PostDetail, len(posts))
	var originIDs []primitive.ObjectID
	for i := range posts {
		details[i] = PostDetail{Post: posts[i]}
		if posts[i].IsShare() {
			originIDs = append(originIDs, *posts[i].SharedFrom)
		}
	}
	if len(originIDs) == 0 {
		return details, nil
	}

	origins, err := s.posts.GetPostsByIDs(ctx, originIDs)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	readable := make(map[primitive.ObjectID]*models.Post, len(origins))
	for i := range origins {
		decision, err := s.resolver.ResolveAccess(ctx, &origins[i], viewerID)
		if err != nil {
			return nil, apperrors.Internal(err)
		}
		if decision.Granted {
			readable[origins[i].ID] = &origins[i]
		}
	}

	for i := range details {
		if details[i].IsShare() {
			details[i].Origin = readable[*details[i].SharedFrom]
		}
	}
	return details, nil
}

func (s *PostService) readable(ctx context.Context, id string, viewerID uint) (*models.Post, error) {
	post, err := loadPost(ctx, s.posts, id)
	if err != nil {
		return nil, err
	}
	if err := s.resolver.RequireAccess(ctx, post, viewerID); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *PostService) notifyTagged(ctx context.Context, post *models.Post) {
	postID := post.ID
	for _, tagged := range post.Tags {
		emit(ctx, s.notifier, s.opts.log, &models.Notification{
			Type:        models.NotificationMention,
			SenderID:    post.OwnerID,
			RecipientID: tagged,
			PostID:      &postID,
			Message:     "mentioned you in a post",
		})
	}
}

// knownIdentities deduplicates ids and drops those missing from the identity
// store. A nil input stays nil.
func (s *PostService) knownIdentities(ctx context.Context, ids []uint) ([]uint, error) {
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return ids, nil
	}

	users, err := s.users.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	known := make(map[uint]struct{}, len(users))
	for _, u := range users {
		known[u.ID] = struct{}{}
	}

	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := known[id]; ok {
			out = append(out, id)
		}
	}
	return out, nil
}

func (s *PostService) validateContent(raw string, required bool) (string, error) {
	content := strings.TrimSpace(raw)
	if required && content == "" {
		return "", apperrors.Validation("content", "content is required")
	}
	if utf8.RuneCountInString(content) > s.limits.MaxContentLength {
		return "", apperrors.Validation("content", fmt.Sprintf("content must be at most %d characters", s.limits.MaxContentLength))
	}
	return content, nil
}

func (s *PostService) validateImages(images []string) error {
	if len(images) > s.limits.MaxImages {
		return apperrors.Validation("images", fmt.Sprintf("at most %d images can be attached", s.limits.MaxImages))
	}
	return nil
}

func uniqueIDs(ids []uint) []uint {
	if ids == nil {
		return nil
	}
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
