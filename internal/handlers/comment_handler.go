package handlers

import (
	"context"
	"net/http"

	"github.com/anonto42/circle/backend/internal/models"
	"github.com/labstack/echo/v4"
)

// CommentHandler handles HTTP requests related to comments
type CommentHandler struct {
	comments CommentService
	users    UserService
	pages    PageSizes
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(comments CommentService, users UserService, pages PageSizes) *CommentHandler {
	return &CommentHandler{comments: comments, users: users, pages: pages}
}

// RegisterCommentRoutes registers comment-related routes
func (h *CommentHandler) RegisterCommentRoutes(g *echo.Group) {
	g.POST("/posts/:id/comments", h.CreateComment)
	g.GET("/posts/:id/comments", h.GetComments)
	g.POST("/comments/:id/replies", h.CreateReply)
	g.GET("/comments/:id/replies", h.GetReplies)
	g.PUT("/comments/:id", h.UpdateComment)
	g.DELETE("/comments/:id", h.DeleteComment)
}

// EnrichedComment is a comment with its author's public profile
type EnrichedComment struct {
	models.Comment
	Author     models.UserCompact `json:"author"`
	IsLiked    bool               `json:"is_liked"`
	LikesCount int                `json:"likes_count"`
}

func (h *CommentHandler) enrichComments(ctx context.Context, viewerID uint, comments []models.Comment) []EnrichedComment {
	ids := make([]uint, 0, len(comments))
	for i := range comments {
		ids = append(ids, comments[i].AuthorID)
	}
	authors := h.users.Compacts(ctx, ids)

	enriched := make([]EnrichedComment, len(comments))
	for i, cm := range comments {
		author, found := authors[cm.AuthorID]
		if !found {
			author = models.UserCompact{ID: cm.AuthorID}
		}
		isLiked := false
		for _, id := range cm.Likes {
			if id == viewerID {
				isLiked = true
				break
			}
		}
		enriched[i] = EnrichedComment{Comment: cm, Author: author, IsLiked: isLiked, LikesCount: len(cm.Likes)}
	}
	return enriched
}

// CreateComment creates a new root comment on a post
func (h *CommentHandler) CreateComment(c echo.Context) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}

	var req models.CreateCommentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	comment, err := h.comments.AddRootComment(c.Request().Context(), c.Param("id"), userID, req.Content)
	if err != nil {
		return err
	}
	return ok(c, http.StatusCreated, comment)
}

// CreateReply answers a root comment. Replies to replies are rejected.
func (h *CommentHandler) CreateReply(c echo.Context) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}

	var req models.CreateCommentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	reply, err := h.comments.AddReply(c.Request().Context(), c.Param("id"), userID, req.Content)
	if err != nil {
		return err
	}
	return ok(c, http.StatusCreated, reply)
}

// GetComments lists root comments newest first. Without page or limit the
// whole thread is returned.
func (h *CommentHandler) GetComments(c echo.Context) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}

	page := parseOptionalPagination(c, h.pages.Comments, h.pages.Max)
	comments, total, err := h.comments.ListRootComments(c.Request().Context(), c.Param("id"), userID, page)
	if err != nil {
		return err
	}
	return paginated(c, "comments", h.enrichComments(c.Request().Context(), userID, comments), page, total)
}

func (h *CommentHandler) GetReplies(c echo.Context) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}

	page := parseOptionalPagination(c, h.pages.Comments, h.pages.Max)
	replies, total, err := h.comments.ListReplies(c.Request().Context(), c.Param("id"), userID, page)
	if err != nil {
		return err
	}
	return paginated(c, "replies", h.enrichComments(c.Request().Context(), userID, replies), page, total)
}

// UpdateComment updates an existing comment
func (h *CommentHandler) UpdateComment(c echo.Context) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}

	var req models.UpdateCommentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	comment, err := h.comments.EditComment(c.Request().Context(), c.Param("id"), userID, req.Content)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, comment)
}

// DeleteComment soft-deletes a comment; its replies stay visible.
func (h *CommentHandler) DeleteComment(c echo.Context) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}

	if err := h.comments.SoftDelete(c.Request().Context(), c.Param("id"), userID); err != nil {
		return err
	}
	return ok(c, http.StatusOK, echo.Map{"message": "comment deleted"})
}
