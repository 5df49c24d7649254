// Package services holds the visibility and moderation engine together with the
// managers that orchestrate posts, comments, relationships, notifications and
// identities on top of the repositories.
package services

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/anonto42/circle/backend/internal/apperrors"
	"github.com/anonto42/circle/backend/internal/models"
	"github.com/anonto42/circle/backend/internal/repositories"
	"github.com/anonto42/circle/backend/pkg/logger"
	"go.uber.org/zap"
)

// Clock returns the current time. Tests inject a fixed or advancing clock.
type Clock func() time.Time

// Page selects a window of a listing. Size zero means the whole ordered set.
type Page struct {
	Number int
	Size   int
}

// Offset returns the number of items to skip. Pages past the addressable
// range saturate at math.MaxInt64 and so read as empty.
func (p Page) Offset() int64 {
	if p.Size <= 0 || p.Number <= 1 {
		return 0
	}
	pages, size := int64(p.Number)-1, int64(p.Size)
	if pages > math.MaxInt64/size {
		return math.MaxInt64
	}
	return pages * size
}

func (p Page) Limit() int64 {
	if p.Size <= 0 {
		return 0
	}
	return int64(p.Size)
}

type serviceOptions struct {
	now Clock
	log *zap.Logger
}

// Option customizes a service at construction.
type Option func(*serviceOptions)

func WithClock(c Clock) Option {
	return func(o *serviceOptions) {
		if c != nil {
			o.now = c
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(o *serviceOptions) {
		if l != nil {
			o.log = l
		}
	}
}

func applyOptions(opts []Option) serviceOptions {
	o := serviceOptions{now: time.Now, log: logger.Log}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// notFoundOr maps storage misses and malformed ids to NotFoundOrForbidden and
// everything else to an internal error.
func notFoundOr(err error, resource string) error {
	if errors.Is(err, repositories.ErrNotFound) || errors.Is(err, repositories.ErrInvalidID) {
		return apperrors.NotFoundOrForbidden(resource)
	}
	return apperrors.Internal(err)
}

func loadPost(ctx context.Context, posts repositories.PostRepository, id string) (*models.Post, error) {
	post, err := posts.GetPostByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "post")
	}
	return post, nil
}
