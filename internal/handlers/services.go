package handlers

import (
	"context"

	"github.com/anonto42/circle/backend/internal/models"
	"github.com/anonto42/circle/backend/internal/services"
)

// The interfaces below are the slices of the services each handler needs.

type AuthService interface {
	Register(ctx context.Context, req models.RegisterRequest) (*services.AuthResult, error)
	Login(ctx context.Context, identifier, password string) (*services.AuthResult, error)
	FirebaseLogin(ctx context.Context, idToken string) (*services.AuthResult, error)
	ChangePassword(ctx context.Context, userID uint, current, next string) (*services.AuthResult, error)
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, email, code, next string) error
}

type UserService interface {
	GetProfile(ctx context.Context, id uint) (*models.User, error)
	UpdateProfile(ctx context.Context, id uint, req models.UpdateUserRequest) (*models.User, error)
	Search(ctx context.Context, query string) ([]models.UserCompact, error)
	Compacts(ctx context.Context, ids []uint) map[uint]models.UserCompact
}

type PostService interface {
	CreatePost(ctx context.Context, ownerID uint, in services.CreatePostInput) (*models.Post, error)
	GetPost(ctx context.Context, id string, viewerID uint) (*services.PostDetail, error)
	UpdatePost(ctx context.Context, id string, ownerID uint, patch models.PostPatch) (*models.Post, error)
	DeletePost(ctx context.Context, id string, ownerID uint) error
	SharePost(ctx context.Context, originID string, actorID uint, note string) (*models.Post, error)
	LikePost(ctx context.Context, id string, actorID uint) (*models.Post, error)
	UnlikePost(ctx context.Context, id string, actorID uint) (*models.Post, error)
	ViewPost(ctx context.Context, id string, actorID uint) (*models.Post, error)
	ListForViewer(ctx context.Context, profileOwnerID, viewerID uint, page services.Page) ([]services.PostDetail, int64, error)
	ListMine(ctx context.Context, ownerID uint, page services.Page) ([]services.PostDetail, int64, error)
	Feed(ctx context.Context, viewerID uint, page services.Page) ([]services.PostDetail, int64, error)
	ListPublic(ctx context.Context, viewerID uint, page services.Page) ([]services.PostDetail, int64, error)
}

type CommentService interface {
	AddRootComment(ctx context.Context, postID string, authorID uint, body string) (*models.Comment, error)
	AddReply(ctx context.Context, parentCommentID string, authorID uint, body string) (*models.Comment, error)
	ListRootComments(ctx context.Context, postID string, viewerID uint, page services.Page) ([]models.Comment, int64, error)
	ListReplies(ctx context.Context, commentID string, viewerID uint, page services.Page) ([]models.Comment, int64, error)
	ToggleLike(ctx context.Context, commentID string, actorID uint) (*services.LikeToggle, error)
	EditComment(ctx context.Context, commentID string, authorID uint, body string) (*models.Comment, error)
	SoftDelete(ctx context.Context, commentID string, actorID uint) error
}

type RelationshipService interface {
	Follow(ctx context.Context, followerID, targetID uint) error
	Unfollow(ctx context.Context, followerID, targetID uint) error
	Stats(ctx context.Context, userID uint) (*models.FollowStats, error)
	MutualStatus(ctx context.Context, viewerID, targetID uint) (*models.FollowStatus, error)
	ListFollowers(ctx context.Context, userID uint, page services.Page) ([]services.Connection, int64, error)
	ListFollowing(ctx context.Context, userID uint, page services.Page) ([]services.Connection, int64, error)
}

type NotificationService interface {
	List(ctx context.Context, recipientID uint, page services.Page) (*services.Inbox, error)
	UnreadCount(ctx context.Context, recipientID uint) (int64, error)
	MarkAsRead(ctx context.Context, id string, recipientID uint) error
	MarkAllAsRead(ctx context.Context, recipientID uint) (int64, error)
}

var (
	_ AuthService         = (*services.AuthService)(nil)
	_ UserService         = (*services.UserService)(nil)
	_ PostService         = (*services.PostService)(nil)
	_ CommentService      = (*services.CommentService)(nil)
	_ RelationshipService = (*services.RelationshipService)(nil)
	_ NotificationService = (*services.NotificationService)(nil)
)
