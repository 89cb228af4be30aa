package events

import "fmt"

// Actions carried by realtime events.
const (
	ActionLike           = "LIKE"
	ActionUnlike         = "UNLIKE"
	ActionCommentAdded   = "COMMENT_ADDED"
	ActionReplyAdded     = "REPLY_ADDED"
	ActionCommentDeleted = "COMMENT_DELETED"
	ActionReplyDeleted   = "REPLY_DELETED"
)

// LikeEvent is pushed to subscribers of post/{id}/likes when someone
// likes or unlikes the post.
type LikeEvent struct {
	PostID     uint   `json:"postId"`
	UserID     uint   `json:"userId"`
	Username   string `json:"username"`
	LikesCount int    `json:"likesCount"`
	Action     string `json:"action"`
	Timestamp  int64  `json:"timestamp"` // milliseconds
}

// CommentEvent is pushed to subscribers of post/{id}/comments when a
// comment or reply is added or removed. ParentCommentID is nil for
// top-level comments.
type CommentEvent struct {
	CommentID       uint   `json:"commentId"`
	PostID          uint   `json:"postId"`
	UserID          uint   `json:"userId"`
	Username        string `json:"username"`
	Content         string `json:"content"`
	CommentsCount   int    `json:"commentsCount"`
	Action          string `json:"action"`
	ParentCommentID *uint  `json:"parentCommentId"`
	Timestamp       int64  `json:"timestamp"` // milliseconds
}

// LikesTopic names the channel carrying like events for a post
func LikesTopic(postID uint) string {
	return fmt.Sprintf("post/%d/likes", postID)
}

// CommentsTopic names the channel carrying comment and reply events for a post
func CommentsTopic(postID uint) string {
	return fmt.Sprintf("post/%d/comments", postID)
}
