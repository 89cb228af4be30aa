package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/sociogram/backend/internal/models"
	"github.com/sociogram/backend/internal/repositories"
)

// Broadcaster builds notification payloads and stages them in the outbox.
// Callers pass the Store bound to their transaction, so the event row
// commits together with the write that produced it.
type Broadcaster struct {
	now func() time.Time
}

// NewBroadcaster creates a new Broadcaster
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{now: time.Now}
}

// StageLike stages a LIKE/UNLIKE event. likesCount is the count the caller
// derived from the post row it read before issuing the counter update.
func (b *Broadcaster) StageLike(ctx context.Context, s repositories.Store, actor *models.User, postID uint, likesCount int, action string) error {
	evt := LikeEvent{
		PostID:     postID,
		UserID:     actor.ID,
		Username:   actor.Username,
		LikesCount: likesCount,
		Action:     action,
		Timestamp:  b.now().UnixMilli(),
	}
	return b.stage(ctx, s, LikesTopic(postID), evt)
}

// StageComment stages a comment or reply event. postID always comes from the
// caller's own lookup (path parameter for comments, parent comment FK for
// replies), never from an association hanging off the freshly written row.
func (b *Broadcaster) StageComment(ctx context.Context, s repositories.Store, actor *models.User, postID, commentID uint, content string, commentsCount int, parentCommentID *uint, action string) error {
	evt := CommentEvent{
		CommentID:       commentID,
		PostID:          postID,
		UserID:          actor.ID,
		Username:        actor.Username,
		Content:         content,
		CommentsCount:   commentsCount,
		Action:          action,
		ParentCommentID: parentCommentID,
		Timestamp:       b.now().UnixMilli(),
	}
	return b.stage(ctx, s, CommentsTopic(postID), evt)
}

func (b *Broadcaster) stage(ctx context.Context, s repositories.Store, topic string, evt interface{}) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	return s.Outbox().Enqueue(ctx, &models.OutboxEvent{
		Topic:   topic,
		Payload: string(payload),
	})
}
