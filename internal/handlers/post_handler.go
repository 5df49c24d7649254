package handlers

import (
	"context"
	"net/http"

	"github.com/anonto42/circle/backend/internal/models"
	"github.com/anonto42/circle/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// PostHandler handles HTTP requests related to posts
type PostHandler struct {
	posts PostService
	users UserService
	pages PageSizes
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(posts PostService, users UserService, pages PageSizes) *PostHandler {
	return &PostHandler{posts: posts, users: users, pages: pages}
}

// RegisterPostRoutes registers post-related routes
func (h *PostHandler) RegisterPostRoutes(g *echo.Group) {
	g.POST("/posts", h.CreatePost)
	g.GET("/posts", h.GetPublicPosts)
	g.GET("/posts/feed", h.GetFeed)
	g.GET("/posts/my", h.GetMyPosts)
	g.GET("/posts/user/:userId", h.GetUserPosts)
	g.GET("/posts/:id", h.GetPost)
	g.PUT("/posts/:id", h.UpdatePost)
	g.DELETE("/posts/:id", h.DeletePost)
	g.POST("/posts/:id/share", h.SharePost)
	g.POST("/posts/:id/view", h.ViewPost)
}

// EnrichedPost is a post with author info and viewer-specific flags
type EnrichedPost struct {
	models.Post
	Author      models.UserCompact `json:"author"`
	IsLiked     bool               `json:"is_liked"`
	LikesCount  int                `json:"likes_count"`
	ViewsCount  int                `json:"views_count"`
	SharesCount int                `json:"shares_count"`
	Origin      *SharedOrigin      `json:"origin,omitempty"`
}

// SharedOrigin is the readable origin of a share together with its author.
type SharedOrigin struct {
	models.Post
	Author models.UserCompact `json:"author"`
}

func (h *PostHandler) enrichPosts(ctx context.Context, viewerID uint, posts []services.PostDetail) []EnrichedPost {
	ids := make([]uint, 0, len(posts))
	for i := range posts {
		ids = append(ids, posts[i].OwnerID)
		if posts[i].Origin != nil {
			ids = append(ids, posts[i].Origin.OwnerID)
		}
	}
	authors := h.users.Compacts(ctx, ids)

	enriched := make([]EnrichedPost, len(posts))
	for i := range posts {
		enriched[i] = enrichPost(posts[i], viewerID, authors)
	}
	return enriched
}

func authorOf(ownerID uint, authors map[uint]models.UserCompact) models.UserCompact {
	if author, found := authors[ownerID]; found {
		return author
	}
	return models.UserCompact{ID: ownerID}
}

func enrichPost(detail services.PostDetail, viewerID uint, authors map[uint]models.UserCompact) EnrichedPost {
	post := detail.Post

	var origin *SharedOrigin
	if detail.Origin != nil {
		origin = &SharedOrigin{Post: *detail.Origin, Author: authorOf(detail.Origin.OwnerID, authors)}
	}

	isLiked := false
	for _, id := range post.Likes {
		if id == viewerID {
			isLiked = true
			break
		}
	}

	return EnrichedPost{
		Post:        post,
		Author:      authorOf(post.OwnerID, authors),
		IsLiked:     isLiked,
		LikesCount:  len(post.Likes),
		ViewsCount:  len(post.Views),
		SharesCount: len(post.Shares),
		Origin:      origin,
	}
}

// CreatePost creates a new post
func (h *PostHandler) CreatePost(c echo.Context) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}

	var req models.CreatePostRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	post, err := h.posts.CreatePost(c.Request().Context(), userID, services.CreatePostInput{
		Content:    req.Content,
		Images:     req.Images,
		Visibility: models.Visibility(req.Visibility),
		Tags:       req.Tags,
	})
	if err != nil {
		return err
	}
	return ok(c, http.StatusCreated, post)
}

// GetPost retrieves a post by ID. Unreadable posts answer exactly like missing ones.
func (h *PostHandler) GetPost(c echo.Context) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	detail, err := h.posts.GetPost(ctx, c.Param("id"), userID)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, h.enrichPosts(ctx, userID, []services.PostDetail{*detail})[0])
}

// UpdatePost updates an existing post
func (h *PostHandler) UpdatePost(c echo.Context) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}

	var req models.UpdatePostRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	patch := models.PostPatch{
		Content: req.Content,
		Images:  req.Images,
		Tags:    req.Tags,
	}
	if req.Visibility != nil {
		v := models.Visibility(*req.Visibility)
		patch.Visibility = &v
	}

	post, err := h.posts.UpdatePost(c.Request().Context(), c.Param("id"), userID, patch)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, post)
}

// DeletePost soft-deletes a post
func (h *PostHandler) DeletePost(c echo.Context) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}

	if err := h.posts.DeletePost(c.Request().Context(), c.Param("id"), userID); err != nil {
		return err
	}
	return ok(c, http.StatusOK, echo.Map{"message": "post deleted"})
}

func (h *PostHandler) SharePost(c echo.Context) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}

	var req models.SharePostRequest
	if c.Request().ContentLength > 0 {
		if err := bindAndValidate(c, &req); err != nil {
			return err
		}
	}

	post, err := h.posts.SharePost(c.Request().Context(), c.Param("id"), userID, req.Note)
	if err != nil {
		return err
	}
	return ok(c, http.StatusCreated, post)
}

func (h *PostHandler) ViewPost(c echo.Context) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}

	post, err := h.posts.ViewPost(c.Request().Context(), c.Param("id"), userID)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, echo.Map{"views": len(post.Views)})
}

// GetPublicPosts returns the global timeline of public posts.
func (h *PostHandler) GetPublicPosts(c echo.Context) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}

	page := parsePagination(c, h.pages.Posts, h.pages.Max)
	posts, total, err := h.posts.ListPublic(c.Request().Context(), userID, page)
	if err != nil {
		return err
	}
	return paginated(c, "posts", h.enrichPosts(c.Request().Context(), userID, posts), page, total)
}

// GetFeed returns the viewer's own posts plus readable posts of followed users.
func (h *PostHandler) GetFeed(c echo.Context) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}

	page := parsePagination(c, h.pages.Posts, h.pages.Max)
	posts, total, err := h.posts.Feed(c.Request().Context(), userID, page)
	if err != nil {
		return err
	}
	return paginated(c, "posts", h.enrichPosts(c.Request().Context(), userID, posts), page, total)
}

func (h *PostHandler) GetMyPosts(c echo.Context) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}

	page := parsePagination(c, h.pages.Posts, h.pages.Max)
	posts, total, err := h.posts.ListMine(c.Request().Context(), userID, page)
	if err != nil {
		return err
	}
	return paginated(c, "posts", h.enrichPosts(c.Request().Context(), userID, posts), page, total)
}

// GetUserPosts lists a profile's posts filtered by what the viewer may read.
func (h *PostHandler) GetUserPosts(c echo.Context) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}
	ownerID, err := parseUserIDParam(c, "userId")
	if err != nil {
		return err
	}

	page := parsePagination(c, h.pages.Posts, h.pages.Max)
	posts, total, err := h.posts.ListForViewer(c.Request().Context(), ownerID, userID, page)
	if err != nil {
		return err
	}
	return paginated(c, "posts", h.enrichPosts(c.Request().Context(), userID, posts), page, total)
}
