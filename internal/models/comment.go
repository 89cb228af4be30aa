package models

import "time"

// Comment represents a top-level comment on a post
type Comment struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	PostID       uint      `json:"postId" gorm:"index;not null"`
	UserID       uint      `json:"userId" gorm:"index;not null"`
	Content      string    `json:"content" gorm:"type:text;not null"`
	RepliesCount int       `json:"repliesCount" gorm:"not null;default:0"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// CommentRequest defines the request body for creating a comment or a reply
type CommentRequest struct {
	Content string `json:"content" validate:"required,max=500"`
}

// CommentResponse is the comment representation sent to clients, with the author embedded
type CommentResponse struct {
	ID           uint      `json:"id"`
	PostID       uint      `json:"postId"`
	Content      string    `json:"content"`
	RepliesCount int       `json:"repliesCount"`
	CreatedAt    time.Time `json:"createdAt"`
	User         Author    `json:"user"`
}
