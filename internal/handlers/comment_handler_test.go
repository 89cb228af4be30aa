package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/sociogram/backend/internal/events"
	"github.com/sociogram/backend/internal/models"
	"github.com/sociogram/backend/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCommentHandler(env *testEnv) *CommentHandler {
	return NewCommentHandler(env.store, events.NewBroadcaster(), nopWaker{})
}

func TestCreateComment(t *testing.T) {
	env := newTestEnv()
	h := newCommentHandler(env)
	alice := env.newUser(t, "alice")
	post := env.newPost(t, alice, "hello")

	c, rec := env.newContext(http.MethodPost, `{"content":"nice post"}`, alice)
	setParam(c, "post_id", post.ID)
	require.NoError(t, h.CreateComment(c))
	assert.Equal(t, http.StatusCreated, rec.Code)

	var resp models.CommentResponse
	decodeBody(t, rec, &resp)
	assert.Equal(t, "nice post", resp.Content)
	assert.Equal(t, post.ID, resp.PostID)
	assert.Equal(t, "alice", resp.User.Username)

	got, err := env.store.Posts().GetPostByID(context.Background(), post.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.CommentsCount)

	pending := env.pendingEvents(t)
	require.Len(t, pending, 1)
	assert.Equal(t, events.CommentsTopic(post.ID), pending[0].Topic)
	var evt events.CommentEvent
	decodePayload(t, pending[0].Payload, &evt)
	assert.Equal(t, post.ID, evt.PostID)
	assert.Equal(t, resp.ID, evt.CommentID)
	assert.Equal(t, 1, evt.CommentsCount)
	assert.Equal(t, events.ActionCommentAdded, evt.Action)
	assert.Nil(t, evt.ParentCommentID)
}

func TestCreateCommentRejectsBlankContent(t *testing.T) {
	env := newTestEnv()
	h := newCommentHandler(env)
	alice := env.newUser(t, "alice")
	post := env.newPost(t, alice, "hello")

	for _, body := range []string{`{"content":""}`, `{"content":"   "}`, `{"content":"\n\t"}`} {
		c, _ := env.newContext(http.MethodPost, body, alice)
		setParam(c, "post_id", post.ID)
		requireHTTPError(t, h.CreateComment(c), http.StatusBadRequest)
	}

	got, err := env.store.Posts().GetPostByID(context.Background(), post.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.CommentsCount)
	assert.Empty(t, env.pendingEvents(t))
}

func TestCreateCommentUnknownPost(t *testing.T) {
	env := newTestEnv()
	h := newCommentHandler(env)
	alice := env.newUser(t, "alice")

	c, _ := env.newContext(http.MethodPost, `{"content":"hi"}`, alice)
	setParam(c, "post_id", 999)
	requireHTTPError(t, h.CreateComment(c), http.StatusNotFound)
}

func TestCreateReply(t *testing.T) {
	env := newTestEnv()
	h := newCommentHandler(env)
	alice := env.newUser(t, "alice")
	bob := env.newUser(t, "bob")
	post := env.newPost(t, alice, "hello")
	comment := env.newComment(t, alice, post, "first")

	c, rec := env.newContext(http.MethodPost, `{"content":"agreed"}`, bob)
	setParam(c, "comment_id", comment.ID)
	require.NoError(t, h.CreateReply(c))
	assert.Equal(t, http.StatusCreated, rec.Code)

	var resp models.ReplyResponse
	decodeBody(t, rec, &resp)
	assert.Equal(t, comment.ID, resp.CommentID)
	assert.Equal(t, "bob", resp.User.Username)

	gotComment, err := env.store.Comments().GetCommentByID(context.Background(), comment.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, gotComment.RepliesCount)

	// The reply row has no post FK; the event's postID must come from the
	// parent comment.
	pending := env.pendingEvents(t)
	require.Len(t, pending, 1)
	assert.Equal(t, events.CommentsTopic(post.ID), pending[0].Topic)
	var evt events.CommentEvent
	decodePayload(t, pending[0].Payload, &evt)
	assert.Equal(t, post.ID, evt.PostID)
	assert.Equal(t, events.ActionReplyAdded, evt.Action)
	require.NotNil(t, evt.ParentCommentID)
	assert.Equal(t, comment.ID, *evt.ParentCommentID)
}

func TestCreateReplyUnknownComment(t *testing.T) {
	env := newTestEnv()
	h := newCommentHandler(env)
	alice := env.newUser(t, "alice")

	c, _ := env.newContext(http.MethodPost, `{"content":"hi"}`, alice)
	setParam(c, "comment_id", 999)
	requireHTTPError(t, h.CreateReply(c), http.StatusNotFound)
}

func TestDeleteCommentOwnerOnly(t *testing.T) {
	env := newTestEnv()
	h := newCommentHandler(env)
	alice := env.newUser(t, "alice")
	bob := env.newUser(t, "bob")
	post := env.newPost(t, alice, "hello")
	comment := env.newComment(t, alice, post, "first")

	c, _ := env.newContext(http.MethodDelete, "", bob)
	setParam(c, "comment_id", comment.ID)
	requireHTTPError(t, h.DeleteComment(c), http.StatusForbidden)

	// Nothing changed and nothing was staged.
	_, err := env.store.Comments().GetCommentByID(context.Background(), comment.ID)
	assert.NoError(t, err)
	got, err := env.store.Posts().GetPostByID(context.Background(), post.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.CommentsCount)
	assert.Empty(t, env.pendingEvents(t))
}

func TestDeleteCommentCascadesReplies(t *testing.T) {
	env := newTestEnv()
	h := newCommentHandler(env)
	alice := env.newUser(t, "alice")
	post := env.newPost(t, alice, "hello")
	comment := env.newComment(t, alice, post, "first")
	reply := env.newReply(t, alice, comment, "self reply")

	c, rec := env.newContext(http.MethodDelete, "", alice)
	setParam(c, "comment_id", comment.ID)
	require.NoError(t, h.DeleteComment(c))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	_, err := env.store.Comments().GetCommentByID(context.Background(), comment.ID)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
	_, err = env.store.Replies().GetReplyByID(context.Background(), reply.ID)
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	got, err := env.store.Posts().GetPostByID(context.Background(), post.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.CommentsCount)

	pending := env.pendingEvents(t)
	require.Len(t, pending, 1)
	var evt events.CommentEvent
	decodePayload(t, pending[0].Payload, &evt)
	assert.Equal(t, events.ActionCommentDeleted, evt.Action)
	assert.Equal(t, 0, evt.CommentsCount)
}

func TestDeleteReply(t *testing.T) {
	env := newTestEnv()
	h := newCommentHandler(env)
	alice := env.newUser(t, "alice")
	bob := env.newUser(t, "bob")
	post := env.newPost(t, alice, "hello")
	comment := env.newComment(t, alice, post, "first")
	reply := env.newReply(t, bob, comment, "me too")

	// Only the author may delete.
	c, _ := env.newContext(http.MethodDelete, "", alice)
	setParam(c, "reply_id", reply.ID)
	requireHTTPError(t, h.DeleteReply(c), http.StatusForbidden)

	c, rec := env.newContext(http.MethodDelete, "", bob)
	setParam(c, "reply_id", reply.ID)
	require.NoError(t, h.DeleteReply(c))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	gotComment, err := env.store.Comments().GetCommentByID(context.Background(), comment.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, gotComment.RepliesCount)

	pending := env.pendingEvents(t)
	require.Len(t, pending, 1)
	var evt events.CommentEvent
	decodePayload(t, pending[0].Payload, &evt)
	assert.Equal(t, events.ActionReplyDeleted, evt.Action)
	require.NotNil(t, evt.ParentCommentID)
	assert.Equal(t, comment.ID, *evt.ParentCommentID)
}

func TestGetPostCommentsOldestFirst(t *testing.T) {
	env := newTestEnv()
	h := newCommentHandler(env)
	alice := env.newUser(t, "alice")
	post := env.newPost(t, alice, "hello")
	env.newComment(t, alice, post, "first")
	env.newComment(t, alice, post, "second")

	c, rec := env.newContext(http.MethodGet, "", alice)
	setParam(c, "post_id", post.ID)
	require.NoError(t, h.GetPostComments(c))

	var resp []models.CommentResponse
	decodeBody(t, rec, &resp)
	require.Len(t, resp, 2)
	assert.Equal(t, "first", resp[0].Content)
	assert.Equal(t, "second", resp[1].Content)
	assert.Equal(t, "alice", resp[0].User.Username)
}
