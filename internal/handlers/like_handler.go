package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sociogram/backend/internal/events"
	"github.com/sociogram/backend/internal/models"
	"github.com/sociogram/backend/internal/repositories"
)

// LikeHandler handles HTTP requests related to likes
type LikeHandler struct {
	store       repositories.Store
	broadcaster *events.Broadcaster
	waker       events.Waker
}

// NewLikeHandler creates a new LikeHandler
func NewLikeHandler(store repositories.Store, broadcaster *events.Broadcaster, waker events.Waker) *LikeHandler {
	return &LikeHandler{store: store, broadcaster: broadcaster, waker: waker}
}

// RegisterLikeRoutes registers like-related routes
func (h *LikeHandler) RegisterLikeRoutes(g *echo.Group) {
	g.POST("/likes/post/:post_id", h.ToggleLike)
	g.GET("/likes/post/:post_id/status", h.GetLikeStatus)
	g.GET("/likes/post/:post_id/count", h.GetLikeCount)
}

// ToggleLike likes the post if the user has not liked it yet, otherwise
// removes the like. Either way the post's likes count is adjusted and an
// event is staged for the post's subscribers.
func (h *LikeHandler) ToggleLike(c echo.Context) error {
	user, err := currentUser(c, h.store)
	if err != nil {
		return err
	}
	postID, err := parseID(c, "post_id")
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	var liked bool
	err = h.store.Atomically(ctx, func(s repositories.Store) error {
		post, err := s.Posts().GetPostByID(ctx, postID)
		if errors.Is(err, repositories.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Post not found")
		}
		if err != nil {
			return err
		}

		hasLiked, err := s.Likes().HasUserLikedPost(ctx, postID, user.ID)
		if err != nil {
			return err
		}

		if hasLiked {
			if err := s.Likes().DeleteLike(ctx, postID, user.ID); err != nil {
				return err
			}
			if err := s.Posts().DecrementLikesCount(ctx, postID); err != nil {
				return err
			}
			liked = false
			// Event count is derived from the row read before the
			// decrement, not re-fetched after it.
			count := post.LikesCount - 1
			if count < 0 {
				count = 0
			}
			return h.broadcaster.StageLike(ctx, s, user, postID, count, events.ActionUnlike)
		}

		if err := s.Likes().CreateLike(ctx, &models.Like{PostID: postID, UserID: user.ID}); err != nil {
			if errors.Is(err, repositories.ErrDuplicate) {
				return echo.NewHTTPError(http.StatusConflict, "Post already liked by this user")
			}
			return err
		}
		if err := s.Posts().IncrementLikesCount(ctx, postID); err != nil {
			return err
		}
		liked = true
		return h.broadcaster.StageLike(ctx, s, user, postID, post.LikesCount+1, events.ActionLike)
	})
	if err != nil {
		return err
	}
	h.waker.Wake()

	message := "Post unliked"
	if liked {
		message = "Post liked"
	}
	return c.JSON(http.StatusOK, echo.Map{"liked": liked, "message": message})
}

// GetLikeStatus reports whether the authenticated user has liked the post
func (h *LikeHandler) GetLikeStatus(c echo.Context) error {
	user, err := currentUser(c, h.store)
	if err != nil {
		return err
	}
	postID, err := parseID(c, "post_id")
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	if _, err := h.store.Posts().GetPostByID(ctx, postID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Post not found")
		}
		return err
	}

	liked, err := h.store.Likes().HasUserLikedPost(ctx, postID, user.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"liked": liked})
}

// GetLikeCount returns the authoritative number of like rows for the post
func (h *LikeHandler) GetLikeCount(c echo.Context) error {
	postID, err := parseID(c, "post_id")
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	if _, err := h.store.Posts().GetPostByID(ctx, postID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Post not found")
		}
		return err
	}

	count, err := h.store.Likes().GetLikesCountByPostID(ctx, postID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"count": count})
}
