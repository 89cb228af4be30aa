package handlers

import (
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/sociogram/backend/internal/models"
	"github.com/sociogram/backend/internal/repositories"
)

// PostHandler handles HTTP requests related to posts
type PostHandler struct {
	store repositories.Store
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(store repositories.Store) *PostHandler {
	return &PostHandler{store: store}
}

// RegisterPostRoutes registers post-related routes
func (h *PostHandler) RegisterPostRoutes(g *echo.Group) {
	g.POST("/posts", h.CreatePost)
	g.GET("/posts", h.GetPosts)
	g.GET("/posts/:id", h.GetPost)
	g.GET("/posts/user/:user_id", h.GetUserPosts)
	g.PUT("/posts/:id", h.UpdatePost)
	g.DELETE("/posts/:id", h.DeletePost)
}

// CreatePost creates a new post
func (h *PostHandler) CreatePost(c echo.Context) error {
	user, err := currentUser(c, h.store)
	if err != nil {
		return err
	}

	var req models.CreatePostRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	post := &models.Post{
		UserID:   user.ID,
		Content:  req.Content,
		ImageURL: req.ImageURL,
	}
	if err := h.store.Posts().CreatePost(c.Request().Context(), post); err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, newPostResponse(post, user.AsAuthor()))
}

// pageParams reads the page/size query parameters, zero-based page
func pageParams(c echo.Context) (page, size int) {
	page, _ = strconv.Atoi(c.QueryParam("page"))
	size, _ = strconv.Atoi(c.QueryParam("size"))
	if page < 0 {
		page = 0
	}
	if size < 1 || size > 50 {
		size = 10
	}
	return page, size
}

// GetPosts retrieves the feed, newest first, wrapped in a page envelope
func (h *PostHandler) GetPosts(c echo.Context) error {
	page, size := pageParams(c)
	ctx := c.Request().Context()

	posts, err := h.store.Posts().GetPosts(ctx, page*size, size)
	if err != nil {
		return err
	}
	total, err := h.store.Posts().CountPosts(ctx)
	if err != nil {
		return err
	}

	return h.renderPage(c, posts, page, size, total)
}

// GetUserPosts retrieves one user's posts, newest first
func (h *PostHandler) GetUserPosts(c echo.Context) error {
	userID, err := parseID(c, "user_id")
	if err != nil {
		return err
	}
	page, size := pageParams(c)
	ctx := c.Request().Context()

	posts, err := h.store.Posts().GetPostsByUserID(ctx, userID, page*size, size)
	if err != nil {
		return err
	}
	total, err := h.store.Posts().CountPostsByUserID(ctx, userID)
	if err != nil {
		return err
	}

	return h.renderPage(c, posts, page, size, total)
}

func (h *PostHandler) renderPage(c echo.Context, posts []models.Post, page, size int, total int64) error {
	ctx := c.Request().Context()

	ids := make([]uint, 0, len(posts))
	for i := range posts {
		ids = append(ids, posts[i].UserID)
	}
	authors, err := loadAuthors(ctx, h.store, ids)
	if err != nil {
		return err
	}

	content := make([]models.PostResponse, 0, len(posts))
	for i := range posts {
		content = append(content, newPostResponse(&posts[i], authors[posts[i].UserID]))
	}

	return c.JSON(http.StatusOK, models.PostPage{
		Content:       content,
		Page:          page,
		Size:          size,
		TotalElements: total,
		TotalPages:    int(math.Ceil(float64(total) / float64(size))),
	})
}

// GetPost retrieves a post by ID
func (h *PostHandler) GetPost(c echo.Context) error {
	postID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	post, err := h.store.Posts().GetPostByID(ctx, postID)
	if errors.Is(err, repositories.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "Post not found")
	}
	if err != nil {
		return err
	}

	author, err := h.store.Users().GetUserByID(ctx, post.UserID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newPostResponse(post, author.AsAuthor()))
}

// UpdatePost updates an existing post. Only the author may update it.
func (h *PostHandler) UpdatePost(c echo.Context) error {
	user, err := currentUser(c, h.store)
	if err != nil {
		return err
	}
	postID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var req models.UpdatePostRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	ctx := c.Request().Context()

	post, err := h.store.Posts().GetPostByID(ctx, postID)
	if errors.Is(err, repositories.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "Post not found")
	}
	if err != nil {
		return err
	}
	if post.UserID != user.ID {
		return echo.NewHTTPError(http.StatusForbidden, "You are not authorized to update this post")
	}

	post.Content = req.Content
	post.ImageURL = req.ImageURL
	if err := h.store.Posts().UpdatePost(ctx, post); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, newPostResponse(post, user.AsAuthor()))
}

// DeletePost deletes a post together with its comments, their replies and
// its likes, as one explicit cascade inside a transaction. Only the author
// may delete it.
func (h *PostHandler) DeletePost(c echo.Context) error {
	user, err := currentUser(c, h.store)
	if err != nil {
		return err
	}
	postID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	err = h.store.Atomically(ctx, func(s repositories.Store) error {
		post, err := s.Posts().GetPostByID(ctx, postID)
		if errors.Is(err, repositories.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Post not found")
		}
		if err != nil {
			return err
		}
		if post.UserID != user.ID {
			return echo.NewHTTPError(http.StatusForbidden, "You are not authorized to delete this post")
		}
		// Children first: replies hang off comments, so they go before
		// the comments they belong to.
		if err := s.Replies().DeleteRepliesByPostID(ctx, postID); err != nil {
			return err
		}
		if err := s.Comments().DeleteCommentsByPostID(ctx, postID); err != nil {
			return err
		}
		if err := s.Likes().DeleteLikesByPostID(ctx, postID); err != nil {
			return err
		}
		return s.Posts().DeletePost(ctx, postID)
	})
	if err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}
