package models

import "time"

// Post represents a social media post
type Post struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	UserID        uint      `json:"userId" gorm:"index;not null"` // ID of the user who created the post
	Content       string    `json:"content" gorm:"type:text;not null"`
	ImageURL      string    `json:"imageUrl,omitempty"`
	LikesCount    int       `json:"likesCount" gorm:"not null;default:0"`
	CommentsCount int       `json:"commentsCount" gorm:"not null;default:0"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// CreatePostRequest defines the request body for creating a new post
type CreatePostRequest struct {
	Content  string `json:"content" validate:"required,max=2000"`
	ImageURL string `json:"imageUrl,omitempty" validate:"omitempty,url"`
}

// UpdatePostRequest defines the request body for updating an existing post
type UpdatePostRequest struct {
	Content  string `json:"content" validate:"required,max=2000"`
	ImageURL string `json:"imageUrl,omitempty" validate:"omitempty,url"`
}

// PostResponse is the post representation sent to clients, with the author embedded
type PostResponse struct {
	ID            uint      `json:"id"`
	Content       string    `json:"content"`
	ImageURL      string    `json:"imageUrl,omitempty"`
	LikesCount    int       `json:"likesCount"`
	CommentsCount int       `json:"commentsCount"`
	CreatedAt     time.Time `json:"createdAt"`
	User          Author    `json:"user"`
}

// PostPage wraps a page of posts in the envelope the feed endpoints return
type PostPage struct {
	Content       []PostResponse `json:"content"`
	Page          int            `json:"page"`
	Size          int            `json:"size"`
	TotalElements int64          `json:"totalElements"`
	TotalPages    int            `json:"totalPages"`
}
