package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/sociogram/backend/internal/events"
	"github.com/sociogram/backend/internal/models"
	"github.com/sociogram/backend/internal/repositories"
)

// CommentHandler handles HTTP requests related to comments and replies
type CommentHandler struct {
	store       repositories.Store
	broadcaster *events.Broadcaster
	waker       events.Waker
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(store repositories.Store, broadcaster *events.Broadcaster, waker events.Waker) *CommentHandler {
	return &CommentHandler{store: store, broadcaster: broadcaster, waker: waker}
}

// RegisterCommentRoutes registers comment-related routes
func (h *CommentHandler) RegisterCommentRoutes(g *echo.Group) {
	g.POST("/comments/post/:post_id", h.CreateComment)
	g.GET("/comments/post/:post_id", h.GetPostComments)
	g.POST("/comments/:comment_id/replies", h.CreateReply)
	g.GET("/comments/:comment_id/replies", h.GetCommentReplies)
	g.DELETE("/comments/:comment_id", h.DeleteComment)
	g.DELETE("/comments/replies/:reply_id", h.DeleteReply)
}

// bindContent binds and validates a comment/reply body, rejecting
// whitespace-only content that the "required" tag lets through
func bindContent(c echo.Context) (string, error) {
	var req models.CommentRequest
	if err := c.Bind(&req); err != nil {
		return "", echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return "", err
	}
	if strings.TrimSpace(req.Content) == "" {
		return "", echo.NewHTTPError(http.StatusBadRequest, "Content must not be blank")
	}
	return req.Content, nil
}

// CreateComment creates a new comment on a post
func (h *CommentHandler) CreateComment(c echo.Context) error {
	user, err := currentUser(c, h.store)
	if err != nil {
		return err
	}
	postID, err := parseID(c, "post_id")
	if err != nil {
		return err
	}
	content, err := bindContent(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	comment := &models.Comment{PostID: postID, UserID: user.ID, Content: content}
	err = h.store.Atomically(ctx, func(s repositories.Store) error {
		post, err := s.Posts().GetPostByID(ctx, postID)
		if errors.Is(err, repositories.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Post not found")
		}
		if err != nil {
			return err
		}
		if err := s.Comments().CreateComment(ctx, comment); err != nil {
			return err
		}
		if err := s.Posts().IncrementCommentsCount(ctx, postID); err != nil {
			return err
		}
		// The event's postID comes from the path parameter, not from the
		// freshly written row.
		return h.broadcaster.StageComment(ctx, s, user, postID, comment.ID, comment.Content, post.CommentsCount+1, nil, events.ActionCommentAdded)
	})
	if err != nil {
		return err
	}
	h.waker.Wake()

	return c.JSON(http.StatusCreated, newCommentResponse(comment, user.AsAuthor()))
}

// GetPostComments retrieves all comments for a post, oldest first
func (h *CommentHandler) GetPostComments(c echo.Context) error {
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

	comments, err := h.store.Comments().GetCommentsByPostID(ctx, postID)
	if err != nil {
		return err
	}

	ids := make([]uint, 0, len(comments))
	for i := range comments {
		ids = append(ids, comments[i].UserID)
	}
	authors, err := loadAuthors(ctx, h.store, ids)
	if err != nil {
		return err
	}

	responses := make([]models.CommentResponse, 0, len(comments))
	for i := range comments {
		responses = append(responses, newCommentResponse(&comments[i], authors[comments[i].UserID]))
	}
	return c.JSON(http.StatusOK, responses)
}

// CreateReply creates a new reply under a comment
func (h *CommentHandler) CreateReply(c echo.Context) error {
	user, err := currentUser(c, h.store)
	if err != nil {
		return err
	}
	commentID, err := parseID(c, "comment_id")
	if err != nil {
		return err
	}
	content, err := bindContent(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	reply := &models.Reply{CommentID: commentID, UserID: user.ID, Content: content}
	err = h.store.Atomically(ctx, func(s repositories.Store) error {
		comment, err := s.Comments().GetCommentByID(ctx, commentID)
		if errors.Is(err, repositories.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Comment not found")
		}
		if err != nil {
			return err
		}
		// Replies do not reference the post directly; the event's postID
		// comes from the parent comment's post FK.
		post, err := s.Posts().GetPostByID(ctx, comment.PostID)
		if err != nil {
			return err
		}
		if err := s.Replies().CreateReply(ctx, reply); err != nil {
			return err
		}
		if err := s.Comments().IncrementRepliesCount(ctx, commentID); err != nil {
			return err
		}
		return h.broadcaster.StageComment(ctx, s, user, comment.PostID, reply.ID, reply.Content, post.CommentsCount, &comment.ID, events.ActionReplyAdded)
	})
	if err != nil {
		return err
	}
	h.waker.Wake()

	return c.JSON(http.StatusCreated, newReplyResponse(reply, user.AsAuthor()))
}

// GetCommentReplies retrieves all replies for a comment, oldest first
func (h *CommentHandler) GetCommentReplies(c echo.Context) error {
	commentID, err := parseID(c, "comment_id")
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	if _, err := h.store.Comments().GetCommentByID(ctx, commentID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Comment not found")
		}
		return err
	}

	replies, err := h.store.Replies().GetRepliesByCommentID(ctx, commentID)
	if err != nil {
		return err
	}

	ids := make([]uint, 0, len(replies))
	for i := range replies {
		ids = append(ids, replies[i].UserID)
	}
	authors, err := loadAuthors(ctx, h.store, ids)
	if err != nil {
		return err
	}

	responses := make([]models.ReplyResponse, 0, len(replies))
	for i := range replies {
		responses = append(responses, newReplyResponse(&replies[i], authors[replies[i].UserID]))
	}
	return c.JSON(http.StatusOK, responses)
}

// DeleteComment deletes a comment together with its replies. Only the
// author may delete it.
func (h *CommentHandler) DeleteComment(c echo.Context) error {
	user, err := currentUser(c, h.store)
	if err != nil {
		return err
	}
	commentID, err := parseID(c, "comment_id")
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	err = h.store.Atomically(ctx, func(s repositories.Store) error {
		comment, err := s.Comments().GetCommentByID(ctx, commentID)
		if errors.Is(err, repositories.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Comment not found")
		}
		if err != nil {
			return err
		}
		if comment.UserID != user.ID {
			return echo.NewHTTPError(http.StatusForbidden, "You are not authorized to delete this comment")
		}
		post, err := s.Posts().GetPostByID(ctx, comment.PostID)
		if err != nil {
			return err
		}
		if err := s.Replies().DeleteRepliesByCommentID(ctx, commentID); err != nil {
			return err
		}
		if err := s.Comments().DeleteComment(ctx, commentID); err != nil {
			return err
		}
		if err := s.Posts().DecrementCommentsCount(ctx, comment.PostID); err != nil {
			return err
		}
		count := post.CommentsCount - 1
		if count < 0 {
			count = 0
		}
		return h.broadcaster.StageComment(ctx, s, user, comment.PostID, comment.ID, comment.Content, count, nil, events.ActionCommentDeleted)
	})
	if err != nil {
		return err
	}
	h.waker.Wake()

	return c.NoContent(http.StatusNoContent)
}

// DeleteReply deletes a reply and decrements the parent comment's replies
// count. Only the author may delete it.
func (h *CommentHandler) DeleteReply(c echo.Context) error {
	user, err := currentUser(c, h.store)
	if err != nil {
		return err
	}
	replyID, err := parseID(c, "reply_id")
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	err = h.store.Atomically(ctx, func(s repositories.Store) error {
		reply, err := s.Replies().GetReplyByID(ctx, replyID)
		if errors.Is(err, repositories.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Reply not found")
		}
		if err != nil {
			return err
		}
		if reply.UserID != user.ID {
			return echo.NewHTTPError(http.StatusForbidden, "You are not authorized to delete this reply")
		}
		comment, err := s.Comments().GetCommentByID(ctx, reply.CommentID)
		if err != nil {
			return err
		}
		post, err := s.Posts().GetPostByID(ctx, comment.PostID)
		if err != nil {
			return err
		}
		if err := s.Replies().DeleteReply(ctx, replyID); err != nil {
			return err
		}
		if err := s.Comments().DecrementRepliesCount(ctx, reply.CommentID); err != nil {
			return err
		}
		return h.broadcaster.StageComment(ctx, s, user, comment.PostID, reply.ID, reply.Content, post.CommentsCount, &comment.ID, events.ActionReplyDeleted)
	})
	if err != nil {
		return err
	}
	h.waker.Wake()

	return c.NoContent(http.StatusNoContent)
}
