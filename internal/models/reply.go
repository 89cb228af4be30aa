package models

import "time"

// Reply represents a reply to a comment. Replies reference their parent
// comment only; the owning post is reachable through the comment's post FK.
type Reply struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CommentID uint      `json:"commentId" gorm:"index;not null"`
	UserID    uint      `json:"userId" gorm:"index;not null"`
	Content   string    `json:"content" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"createdAt"`
}

// ReplyResponse is the reply representation sent to clients, with the author embedded
type ReplyResponse struct {
	ID        uint      `json:"id"`
	CommentID uint      `json:"commentId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	User      Author    `json:"user"`
}
