package services

import (
	"context"
	"fmt"

	"github.com/anonto42/circle/backend/internal/apperrors"
	"github.com/anonto42/circle/backend/internal/metrics"
	"github.com/anonto42/circle/backend/internal/models"
)

// DenyReason explains why a read was refused. Callers must not expose it to
// the viewer; it exists for logs and metrics.
type DenyReason string

const (
	ReasonInactive          DenyReason = "not found or inactive"
	ReasonPrivate           DenyReason = "private"
	ReasonMustFollow        DenyReason = "must follow author"
	ReasonUnknownVisibility DenyReason = "unknown visibility"
)

// AccessDecision is the outcome of a visibility check.
type AccessDecision struct {
	Granted bool
	Reason  DenyReason
}

func grant() AccessDecision { return AccessDecision{Granted: true} }

func deny(reason DenyReason) AccessDecision { return AccessDecision{Reason: reason} }

// FollowChecker answers whether one identity follows another.
type FollowChecker interface {
	IsFollowing(ctx context.Context, followerID, followingID uint) (bool, error)
}

// VisibilityResolver decides whether a viewer may read a post.
type VisibilityResolver struct {
	follows FollowChecker
}

func NewVisibilityResolver(follows FollowChecker) *VisibilityResolver {
	return &VisibilityResolver{follows: follows}
}

// ResolveAccess applies, in order: inactive posts are hidden from everyone
// including the owner, owners read their own active posts, public posts are
// readable, private posts are not, followers-only posts need a follow edge.
// Unknown visibility values are denied.
func (r *VisibilityResolver) ResolveAccess(ctx context.Context, post *models.Post, viewerID uint) (AccessDecision, error) {
	const op = "services/visibility/ResolveAccess"

	if post.Status != models.StatusActive {
		return deny(ReasonInactive), nil
	}
	if post.OwnerID == viewerID {
		return grant(), nil
	}

	switch post.Visibility {
	case models.VisibilityPublic:
		return grant(), nil
	case models.VisibilityPrivate:
		return deny(ReasonPrivate), nil
	case models.VisibilityFollowers:
		following, err := r.follows.IsFollowing(ctx, viewerID, post.OwnerID)
		if err != nil {
			return AccessDecision{}, fmt.Errorf("%s: %w", op, err)
		}
		if following {
			return grant(), nil
		}
		return deny(ReasonMustFollow), nil
	default:
		return deny(ReasonUnknownVisibility), nil
	}
}

// RequireAccess turns any denial into NotFoundOrForbidden so that the
// existence of unreadable posts does not leak.
func (r *VisibilityResolver) RequireAccess(ctx context.Context, post *models.Post, viewerID uint) error {
	decision, err := r.ResolveAccess(ctx, post, viewerID)
	if err != nil {
		return apperrors.Internal(err)
	}
	if !decision.Granted {
		metrics.Get().AccessDenied.WithLabelValues(string(decision.Reason)).Inc()
		return apperrors.NotFoundOrForbidden("post")
	}
	return nil
}

// readableVisibilities lists the visibility levels a viewer may read on
// ownerID's profile. A nil result means every level.
func (r *VisibilityResolver) readableVisibilities(ctx context.Context, ownerID, viewerID uint) ([]models.Visibility, error) {
	if ownerID == viewerID {
		return nil, nil
	}

	following, err := r.follows.IsFollowing(ctx, viewerID, ownerID)
	if err != nil {
		return nil, err
	}
	if following {
		return []models.Visibility{models.VisibilityPublic, models.VisibilityFollowers}, nil
	}
	return []models.Visibility{models.VisibilityPublic}, nil
}
