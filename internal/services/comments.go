package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/anonto42/circle/backend/internal/apperrors"
	"github.com/anonto42/circle/backend/internal/metrics"
	"github.com/anonto42/circle/backend/internal/models"
	"github.com/anonto42/circle/backend/internal/repositories"
	"go.uber.org/zap"
)

const (
	LikeActionLiked   = "liked"
	LikeActionUnliked = "unliked"
)

// LikeToggle reports the action taken and the like count right after it.
type LikeToggle struct {
	Action string `json:"action"`
	Likes  int    `json:"likes"`
}

// CommentService maintains the two-level comment tree under posts.
type CommentService struct {
	comments  repositories.CommentRepository
	posts     repositories.PostRepository
	resolver  *VisibilityResolver
	notifier  Notifier
	maxLength int
	opts      serviceOptions
}

func NewCommentService(
	comments repositories.CommentRepository,
	posts repositories.PostRepository,
	follows FollowChecker,
	notifier Notifier,
	maxLength int,
	opts ...Option,
) *CommentService {
	return &CommentService{
		comments:  comments,
		posts:     posts,
		resolver:  NewVisibilityResolver(follows),
		notifier:  notifier,
		maxLength: maxLength,
		opts:      applyOptions(opts),
	}
}

// AddRootComment comments on a post the author can read.
func (s *CommentService) AddRootComment(ctx context.Context, postID string, authorID uint, body string) (*models.Comment, error) {
	content, err := s.validateContent(body)
	if err != nil {
		return nil, err
	}

	post, err := loadPost(ctx, s.posts, postID)
	if err != nil {
		return nil, err
	}
	if err := s.resolver.RequireAccess(ctx, post, authorID); err != nil {
		return nil, err
	}

	now := s.opts.now()
	comment := &models.Comment{
		PostID:    post.ID,
		AuthorID:  authorID,
		Content:   content,
		Status:    models.StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.comments.CreateComment(ctx, comment); err != nil {
		return nil, apperrors.Internal(err)
	}
	metrics.Get().CommentsTotal.WithLabelValues("root").Inc()

	commentID := comment.ID
	emit(ctx, s.notifier, s.opts.log, &models.Notification{
		Type:        models.NotificationComment,
		SenderID:    authorID,
		RecipientID: post.OwnerID,
		PostID:      &comment.PostID,
		CommentID:   &commentID,
		Message:     "commented on your post",
	})
	return comment, nil
}

// AddReply answers a root comment. The parent must exist, be a root and be
// active; its reply counter is bumped atomically and never decremented.
func (s *CommentService) AddReply(ctx context.Context, parentCommentID string, authorID uint, body string) (*models.Comment, error) {
	const op = "services/comments/AddReply"

	content, err := s.validateContent(body)
	if err != nil {
		return nil, err
	}

	parent, err := s.comments.GetCommentByID(ctx, parentCommentID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) || errors.Is(err, repositories.ErrInvalidID) {
			return nil, apperrors.StateConflict("parent comment does not exist")
		}
		return nil, apperrors.Internal(err)
	}

	// Access is checked before the parent's shape, which unreadable posts hide.
	post, err := loadPost(ctx, s.posts, parent.PostID.Hex())
	if err != nil {
		return nil, err
	}
	if err := s.resolver.RequireAccess(ctx, post, authorID); err != nil {
		return nil, err
	}
	if !parent.IsRoot() {
		return nil, apperrors.Validation("parent_id", "replies can only answer root comments")
	}
	if parent.Status != models.StatusActive {
		return nil, apperrors.StateConflict("parent comment is no longer active")
	}

	now := s.opts.now()
	parentID := parent.ID
	reply := &models.Comment{
		PostID:    parent.PostID,
		ParentID:  &parentID,
		AuthorID:  authorID,
		Content:   content,
		Status:    models.StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.comments.CreateComment(ctx, reply); err != nil {
		return nil, apperrors.Internal(err)
	}
	if err := s.comments.IncrementReplyCount(ctx, parentCommentID); err != nil {
		s.opts.log.Warn("reply stored without counter update",
			zap.String("op", op),
			zap.String("parent_id", parentCommentID),
			zap.Error(err),
		)
	}
	metrics.Get().CommentsTotal.WithLabelValues("reply").Inc()

	replyID := reply.ID
	emit(ctx, s.notifier, s.opts.log, &models.Notification{
		Type:        models.NotificationReply,
		SenderID:    authorID,
		RecipientID: parent.AuthorID,
		PostID:      &reply.PostID,
		CommentID:   &replyID,
		Message:     "replied to your comment",
	})
	return reply, nil
}

// ListRootComments returns active root comments newest first. A zero page size
// returns every root comment.
func (s *CommentService) ListRootComments(ctx context.Context, postID string, viewerID uint, page Page) ([]models.Comment, int64, error) {
	post, err := loadPost(ctx, s.posts, postID)
	if err != nil {
		return nil, 0, err
	}
	if err := s.resolver.RequireAccess(ctx, post, viewerID); err != nil {
		return nil, 0, err
	}

	comments, total, err := s.comments.ListRoots(ctx, postID, page.Offset(), page.Limit())
	if err != nil {
		return nil, 0, apperrors.Internal(err)
	}
	return comments, total, nil
}

// ListReplies returns active replies of a root comment oldest first.
func (s *CommentService) ListReplies(ctx context.Context, commentID string, viewerID uint, page Page) ([]models.Comment, int64, error) {
	parent, err := s.loadComment(ctx, commentID)
	if err != nil {
		return nil, 0, err
	}
	if err := s.requirePostAccess(ctx, parent, viewerID); err != nil {
		return nil, 0, err
	}

	replies, total, err := s.comments.ListReplies(ctx, commentID, page.Offset(), page.Limit())
	if err != nil {
		return nil, 0, apperrors.Internal(err)
	}
	return replies, total, nil
}

// ToggleLike likes the comment when actorID has not liked it yet and unlikes
// it otherwise.
func (s *CommentService) ToggleLike(ctx context.Context, commentID string, actorID uint) (*LikeToggle, error) {
	comment, err := s.loadComment(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if comment.Status != models.StatusActive {
		return nil, apperrors.NotFoundOrForbidden("comment")
	}
	if err := s.requirePostAccess(ctx, comment, actorID); err != nil {
		return nil, err
	}

	liked, count, err := s.comments.ToggleLike(ctx, commentID, actorID)
	if err != nil {
		return nil, notFoundOr(err, "comment")
	}

	result := &LikeToggle{Action: LikeActionUnliked, Likes: count}
	if liked {
		result.Action = LikeActionLiked
		emit(ctx, s.notifier, s.opts.log, &models.Notification{
			Type:        models.NotificationLikeComment,
			SenderID:    actorID,
			RecipientID: comment.AuthorID,
			PostID:      &comment.PostID,
			CommentID:   &comment.ID,
			Message:     "liked your comment",
		})
	}
	metrics.Get().LikesTotal.WithLabelValues("comment", result.Action).Inc()
	return result, nil
}

// EditComment rewrites the body of an active comment. Only its author may edit.
func (s *CommentService) EditComment(ctx context.Context, commentID string, authorID uint, body string) (*models.Comment, error) {
	content, err := s.validateContent(body)
	if err != nil {
		return nil, err
	}

	comment, err := s.loadComment(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if comment.AuthorID != authorID {
		return nil, apperrors.NotOwned("comment")
	}
	if comment.Status != models.StatusActive {
		return nil, apperrors.StateConflict("comment is no longer active")
	}

	updated, err := s.comments.UpdateContent(ctx, commentID, authorID, content, s.opts.now())
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperrors.StateConflict("comment is no longer active")
		}
		return nil, apperrors.Internal(err)
	}
	return updated, nil
}

// SoftDelete replaces the body with a placeholder and marks the comment deleted.
// Only the author may delete; reply counters are left untouched.
func (s *CommentService) SoftDelete(ctx context.Context, commentID string, actorID uint) error {
	comment, err := s.loadComment(ctx, commentID)
	if err != nil {
		return err
	}
	if comment.AuthorID != actorID {
		return apperrors.NotOwned("comment")
	}
	if comment.Status != models.StatusActive {
		return apperrors.StateConflict("comment is already deleted")
	}

	if err := s.comments.SoftDelete(ctx, commentID, actorID, s.opts.now()); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return apperrors.StateConflict("comment is already deleted")
		}
		return apperrors.Internal(err)
	}
	return nil
}

func (s *CommentService) loadComment(ctx context.Context, id string) (*models.Comment, error) {
	comment, err := s.comments.GetCommentByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "comment")
	}
	return comment, nil
}

func (s *CommentService) requirePostAccess(ctx context.Context, comment *models.Comment, viewerID uint) error {
	post, err := loadPost(ctx, s.posts, comment.PostID.Hex())
	if err != nil {
		return err
	}
	return s.resolver.RequireAccess(ctx, post, viewerID)
}

func (s *CommentService) validateContent(raw string) (string, error) {
	content := strings.TrimSpace(raw)
	if content == "" {
		return "", apperrors.Validation("content", "content is required")
	}
	if utf8.RuneCountInString(content) > s.maxLength {
		return "", apperrors.Validation("content", fmt.Sprintf("content must be at most %d characters", s.maxLength))
	}
	return content, nil
}
