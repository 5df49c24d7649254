package services

import (
	"context"
	"errors"
	"time"

	"github.com/anonto42/circle/backend/internal/apperrors"
	"github.com/anonto42/circle/backend/internal/metrics"
	"github.com/anonto42/circle/backend/internal/models"
	"github.com/anonto42/circle/backend/internal/repositories"
)

// RelationshipService manages directed follow edges between users.
type RelationshipService struct {
	follows  repositories.FollowRepository
	users    repositories.UserRepository
	notifier Notifier
	opts     serviceOptions
}

func NewRelationshipService(
	follows repositories.FollowRepository,
	users repositories.UserRepository,
	notifier Notifier,
	opts ...Option,
) *RelationshipService {
	return &RelationshipService{
		follows:  follows,
		users:    users,
		notifier: notifier,
		opts:     applyOptions(opts),
	}
}

// Follow creates the edge followerID -> targetID.
func (s *RelationshipService) Follow(ctx context.Context, followerID, targetID uint) error {
	if followerID == targetID {
		return apperrors.Validation("user_id", "you cannot follow yourself")
	}
	if _, err := s.users.GetUserByID(ctx, targetID); err != nil {
		return notFoundOr(err, "user")
	}

	follow := &models.Follow{
		FollowerID:  followerID,
		FollowingID: targetID,
		CreatedAt:   s.opts.now(),
	}
	if err := s.follows.CreateFollow(ctx, follow); err != nil {
		if errors.Is(err, repositories.ErrAlreadyExists) {
			return apperrors.Validation("user_id", "you are already following this user")
		}
		return apperrors.Internal(err)
	}
	metrics.Get().FollowsTotal.WithLabelValues("follow").Inc()

	emit(ctx, s.notifier, s.opts.log, &models.Notification{
		Type:        models.NotificationNewFollower,
		SenderID:    followerID,
		RecipientID: targetID,
		Message:     "started following you",
	})
	return nil
}

// Unfollow removes the edge followerID -> targetID.
func (s *RelationshipService) Unfollow(ctx context.Context, followerID, targetID uint) error {
	if followerID == targetID {
		return apperrors.Validation("user_id", "you cannot unfollow yourself")
	}
	if err := s.follows.DeleteFollow(ctx, followerID, targetID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return apperrors.Validation("user_id", "you are not following this user")
		}
		return apperrors.Internal(err)
	}
	metrics.Get().FollowsTotal.WithLabelValues("unfollow").Inc()
	return nil
}

// Stats counts inbound and outbound edges of userID.
func (s *RelationshipService) Stats(ctx context.Context, userID uint) (*models.FollowStats, error) {
	followers, err := s.follows.GetFollowersCount(ctx, userID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	following, err := s.follows.GetFollowingCount(ctx, userID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return &models.FollowStats{Followers: followers, Following: following}, nil
}

// MutualStatus describes the relationship between viewerID and targetID. When
// they are the same user only the own-profile marker is set.
func (s *RelationshipService) MutualStatus(ctx context.Context, viewerID, targetID uint) (*models.FollowStatus, error) {
	if viewerID == targetID {
		return &models.FollowStatus{IsOwnProfile: true}, nil
	}

	following, err := s.follows.IsFollowing(ctx, viewerID, targetID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	follower, err := s.follows.IsFollowing(ctx, targetID, viewerID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	mutual := following && follower
	return &models.FollowStatus{
		IsFollowing: &following,
		IsFollower:  &follower,
		IsMutual:    &mutual,
	}, nil
}

// Connection is one entry of a followers or following listing.
type Connection struct {
	User       models.UserCompact `json:"user"`
	FollowedAt time.Time          `json:"followedAt"`
}

// ListFollowers returns the users following userID, newest edge first.
func (s *RelationshipService) ListFollowers(ctx context.Context, userID uint, page Page) ([]Connection, int64, error) {
	edges, total, err := s.follows.GetFollowers(ctx, userID, page.Offset(), page.Limit())
	if err != nil {
		return nil, 0, apperrors.Internal(err)
	}
	conns, err := s.connections(ctx, edges, func(f models.Follow) uint { return f.FollowerID })
	if err != nil {
		return nil, 0, err
	}
	return conns, total, nil
}

// ListFollowing returns the users userID follows, newest edge first.
func (s *RelationshipService) ListFollowing(ctx context.Context, userID uint, page Page) ([]Connection, int64, error) {
	edges, total, err := s.follows.GetFollowing(ctx, userID, page.Offset(), page.Limit())
	if err != nil {
		return nil, 0, apperrors.Internal(err)
	}
	conns, err := s.connections(ctx, edges, func(f models.Follow) uint { return f.FollowingID })
	if err != nil {
		return nil, 0, err
	}
	return conns, total, nil
}

// connections joins edges with the compact profile of the user on the side
// picked by other. Edges pointing at users that no longer resolve are skipped.
func (s *RelationshipService) connections(ctx context.Context, edges []models.Follow, other func(models.Follow) uint) ([]Connection, error) {
	conns := make([]Connection, 0, len(edges))
	if len(edges) == 0 {
		return conns, nil
	}

	ids := make([]uint, 0, len(edges))
	for _, e := range edges {
		ids = append(ids, other(e))
	}
	users, err := s.users.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	byID := make(map[uint]models.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	for _, e := range edges {
		u, ok := byID[other(e)]
		if !ok {
			continue
		}
		conns = append(conns, Connection{User: u.ToCompact(), FollowedAt: e.CreatedAt})
	}
	return conns, nil
}
