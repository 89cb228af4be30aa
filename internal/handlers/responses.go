package handlers

import (
	"context"

	"github.com/sociogram/backend/internal/models"
	"github.com/sociogram/backend/internal/repositories"
)

func newPostResponse(post *models.Post, author models.Author) models.PostResponse {
	return models.PostResponse{
		ID:            post.ID,
		Content:       post.Content,
		ImageURL:      post.ImageURL,
		LikesCount:    post.LikesCount,
		CommentsCount: post.CommentsCount,
		CreatedAt:     post.CreatedAt,
		User:          author,
	}
}

func newCommentResponse(comment *models.Comment, author models.Author) models.CommentResponse {
	return models.CommentResponse{
		ID:           comment.ID,
		PostID:       comment.PostID,
		Content:      comment.Content,
		RepliesCount: comment.RepliesCount,
		CreatedAt:    comment.CreatedAt,
		User:         author,
	}
}

func newReplyResponse(reply *models.Reply, author models.Author) models.ReplyResponse {
	return models.ReplyResponse{
		ID:        reply.ID,
		CommentID: reply.CommentID,
		Content:   reply.Content,
		CreatedAt: reply.CreatedAt,
		User:      author,
	}
}

// loadAuthors batch-fetches the users behind a set of author IDs
func loadAuthors(ctx context.Context, store repositories.Store, ids []uint) (map[uint]models.Author, error) {
	users, err := store.Users().GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	authors := make(map[uint]models.Author, len(users))
	for id, u := range users {
		authors[id] = u.AsAuthor()
	}
	return authors, nil
}
