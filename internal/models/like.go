package models

import "time"

// Like represents a user's like on a post. The composite unique index on
// (post_id, user_id) is the source of truth for the one-like-per-user rule;
// the application-level existence check before insert is best effort.
type Like struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	PostID    uint      `json:"postId" gorm:"not null;uniqueIndex:idx_likes_post_user"`
	UserID    uint      `json:"userId" gorm:"not null;uniqueIndex:idx_likes_post_user"`
	CreatedAt time.Time `json:"createdAt"`
}
