package repositories

import (
	"context"
	"testing"

	"github.com/sociogram/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedPost(t *testing.T, s *MemoryStore, userID uint) *models.Post {
	t.Helper()
	post := &models.Post{UserID: userID, Content: "content"}
	require.NoError(t, s.Posts().CreatePost(context.Background(), post))
	return post
}

func TestCreateLikeRejectsDuplicate(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	post := seedPost(t, s, 1)

	require.NoError(t, s.Likes().CreateLike(ctx, &models.Like{PostID: post.ID, UserID: 7}))
	err := s.Likes().CreateLike(ctx, &models.Like{PostID: post.ID, UserID: 7})
	assert.ErrorIs(t, err, ErrDuplicate)

	// A different user on the same post is fine.
	assert.NoError(t, s.Likes().CreateLike(ctx, &models.Like{PostID: post.ID, UserID: 8}))

	count, err := s.Likes().GetLikesCountByPostID(ctx, post.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)
}

func TestDeleteLikeNotFound(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	post := seedPost(t, s, 1)

	assert.ErrorIs(t, s.Likes().DeleteLike(ctx, post.ID, 7), ErrNotFound)

	require.NoError(t, s.Likes().CreateLike(ctx, &models.Like{PostID: post.ID, UserID: 7}))
	require.NoError(t, s.Likes().DeleteLike(ctx, post.ID, 7))

	liked, err := s.Likes().HasUserLikedPost(ctx, post.ID, 7)
	require.NoError(t, err)
	assert.False(t, liked)
}

func TestCountersFloorAtZero(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	post := seedPost(t, s, 1)

	require.NoError(t, s.Posts().DecrementLikesCount(ctx, post.ID))
	require.NoError(t, s.Posts().DecrementCommentsCount(ctx, post.ID))

	got, err := s.Posts().GetPostByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.LikesCount)
	assert.Equal(t, 0, got.CommentsCount)

	require.NoError(t, s.Posts().IncrementLikesCount(ctx, post.ID))
	require.NoError(t, s.Posts().IncrementLikesCount(ctx, post.ID))
	require.NoError(t, s.Posts().DecrementLikesCount(ctx, post.ID))

	got, err = s.Posts().GetPostByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.LikesCount)
}

func TestRepliesCountFloorAtZero(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	post := seedPost(t, s, 1)
	comment := &models.Comment{PostID: post.ID, UserID: 1, Content: "c"}
	require.NoError(t, s.Comments().CreateComment(ctx, comment))

	require.NoError(t, s.Comments().DecrementRepliesCount(ctx, comment.ID))
	got, err := s.Comments().GetCommentByID(ctx, comment.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.RepliesCount)
}

func TestCommentsOrderedOldestFirst(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	post := seedPost(t, s, 1)

	for _, content := range []string{"first", "second", "third"} {
		require.NoError(t, s.Comments().CreateComment(ctx, &models.Comment{PostID: post.ID, UserID: 1, Content: content}))
	}

	comments, err := s.Comments().GetCommentsByPostID(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, comments, 3)
	assert.Equal(t, "first", comments[0].Content)
	assert.Equal(t, "third", comments[2].Content)
}

func TestPostsNewestFirstWithPagination(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	for _, content := range []string{"one", "two", "three"} {
		require.NoError(t, s.Posts().CreatePost(ctx, &models.Post{UserID: 1, Content: content}))
	}

	page, err := s.Posts().GetPosts(ctx, 0, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "three", page[0].Content)
	assert.Equal(t, "two", page[1].Content)

	page, err = s.Posts().GetPosts(ctx, 2, 2)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "one", page[0].Content)

	page, err = s.Posts().GetPosts(ctx, 10, 2)
	require.NoError(t, err)
	assert.Empty(t, page)

	total, err := s.Posts().CountPosts(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
}

func TestDeleteRepliesByPostID(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	postA := seedPost(t, s, 1)
	postB := seedPost(t, s, 1)

	commentA := &models.Comment{PostID: postA.ID, UserID: 1, Content: "a"}
	commentB := &models.Comment{PostID: postB.ID, UserID: 1, Content: "b"}
	require.NoError(t, s.Comments().CreateComment(ctx, commentA))
	require.NoError(t, s.Comments().CreateComment(ctx, commentB))

	replyA := &models.Reply{CommentID: commentA.ID, UserID: 1, Content: "ra"}
	replyB := &models.Reply{CommentID: commentB.ID, UserID: 1, Content: "rb"}
	require.NoError(t, s.Replies().CreateReply(ctx, replyA))
	require.NoError(t, s.Replies().CreateReply(ctx, replyB))

	require.NoError(t, s.Replies().DeleteRepliesByPostID(ctx, postA.ID))

	_, err := s.Replies().GetReplyByID(ctx, replyA.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.Replies().GetReplyByID(ctx, replyB.ID)
	assert.NoError(t, err)
}

func TestOutboxLifecycle(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	first := &models.OutboxEvent{Topic: "post/1/likes", Payload: `{"n":1}`}
	second := &models.OutboxEvent{Topic: "post/1/comments", Payload: `{"n":2}`}
	require.NoError(t, s.Outbox().Enqueue(ctx, first))
	require.NoError(t, s.Outbox().Enqueue(ctx, second))

	pending, err := s.Outbox().FetchPending(ctx, 10, 5)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, first.ID, pending[0].ID) // oldest first
	assert.Equal(t, second.ID, pending[1].ID)

	require.NoError(t, s.Outbox().MarkPublished(ctx, first.ID))
	pending, err = s.Outbox().FetchPending(ctx, 10, 5)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, second.ID, pending[0].ID)
}

func TestOutboxFetchRespectsAttemptCap(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	evt := &models.OutboxEvent{Topic: "post/1/likes", Payload: `{}`}
	require.NoError(t, s.Outbox().Enqueue(ctx, evt))

	for i := 0; i < 5; i++ {
		require.NoError(t, s.Outbox().RecordFailure(ctx, evt.ID))
	}

	pending, err := s.Outbox().FetchPending(ctx, 10, 5)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestOutboxFetchHonorsLimit(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		require.NoError(t, s.Outbox().Enqueue(ctx, &models.OutboxEvent{Topic: "post/1/likes", Payload: `{}`}))
	}

	pending, err := s.Outbox().FetchPending(ctx, 3, 5)
	require.NoError(t, err)
	assert.Len(t, pending, 3)
}
