package services

import (
	"context"
	"strings"

	"github.com/anonto42/circle/backend/internal/apperrors"
	"github.com/anonto42/circle/backend/internal/models"
	"github.com/anonto42/circle/backend/internal/repositories"
	"go.uber.org/zap"
)

const maxSearchResults = 20

type UserService struct {
	users repositories.UserRepository
	opts  serviceOptions
}

func NewUserService(users repositories.UserRepository, opts ...Option) *UserService {
	return &UserService{users: users, opts: applyOptions(opts)}
}

func (s *UserService) GetProfile(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "user")
	}
	return user, nil
}

// UpdateProfile applies the non-empty fields of req to the user's profile.
func (s *UserService) UpdateProfile(ctx context.Context, id uint, req models.UpdateUserRequest) (*models.User, error) {
	user, err := s.GetProfile(ctx, id)
	if err != nil {
		return nil, err
	}

	if name := strings.TrimSpace(req.Name); name != "" {
		user.Name = name
	}
	if req.Avatar != "" {
		user.Avatar = req.Avatar
	}
	if req.Bio != "" {
		user.Bio = req.Bio
	}

	if err := s.users.UpdateProfile(ctx, user); err != nil {
		return nil, notFoundOr(err, "user")
	}
	return user, nil
}

func (s *UserService) Search(ctx context.Context, query string) ([]models.UserCompact, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperrors.Validation("q", "search query is required")
	}

	users, err := s.users.SearchUsers(ctx, query, maxSearchResults)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	out := make([]models.UserCompact, 0, len(users))
	for i := range users {
		out = append(out, users[i].ToCompact())
	}
	return out, nil
}

// Compacts resolves the public profiles of ids. Unknown ids are absent from the
// result; a lookup failure yields an empty map so callers can degrade.
func (s *UserService) Compacts(ctx context.Context, ids []uint) map[uint]models.UserCompact {
	out := make(map[uint]models.UserCompact, len(ids))
	if len(ids) == 0 {
		return out
	}

	users, err := s.users.GetUsersByIDs(ctx, uniqueIDs(ids))
	if err != nil {
		s.opts.log.Warn("profile lookup failed", zap.Int("ids", len(ids)), zap.Error(err))
		return out
	}
	for i := range users {
		out[users[i].ID] = users[i].ToCompact()
	}
	return out
}
