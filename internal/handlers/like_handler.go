package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// LikeHandler handles HTTP requests related to likes
type LikeHandler struct {
	posts    PostService
	comments CommentService
}

// NewLikeHandler creates a new LikeHandler
func NewLikeHandler(posts PostService, comments CommentService) *LikeHandler {
	return &LikeHandler{posts: posts, comments: comments}
}

// RegisterLikeRoutes registers like-related routes
func (h *LikeHandler) RegisterLikeRoutes(g *echo.Group) {
	g.POST("/posts/:id/like", h.LikePost)
	g.POST("/posts/:id/unlike", h.UnlikePost)
	g.POST("/comments/:id/like", h.ToggleCommentLike)
}

// LikePost is idempotent; liking twice leaves one like.
func (h *LikeHandler) LikePost(c echo.Context) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}

	post, err := h.posts.LikePost(c.Request().Context(), c.Param("id"), userID)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, echo.Map{"liked": true, "likes": len(post.Likes)})
}

func (h *LikeHandler) UnlikePost(c echo.Context) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}

	post, err := h.posts.UnlikePost(c.Request().Context(), c.Param("id"), userID)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, echo.Map{"liked": false, "likes": len(post.Likes)})
}

// ToggleCommentLike flips the caller's like on a comment.
func (h *LikeHandler) ToggleCommentLike(c echo.Context) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}

	result, err := h.comments.ToggleLike(c.Request().Context(), c.Param("id"), userID)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, echo.Map{"action": result.Action, "likes": result.Likes})
}
