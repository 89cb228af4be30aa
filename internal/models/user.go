package models

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// User represents an account on the platform
type User struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	Username       string    `json:"username" gorm:"uniqueIndex;size:50;not null"`
	Email          string    `json:"email" gorm:"uniqueIndex;size:100;not null"`
	Password       string    `json:"-" gorm:"size:255;not null"` // Store hashed password, ignore for JSON serialization
	FullName       string    `json:"fullName,omitempty" gorm:"size:100"`
	Bio            string    `json:"bio,omitempty" gorm:"type:text"`
	ProfilePicture string    `json:"profilePicture,omitempty"`
	FirebaseUID    string    `json:"-" gorm:"index"` // Link to Firebase User UID, empty for local accounts
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// Author is the public subset of a user embedded in post and comment payloads
type Author struct {
	ID             uint   `json:"id"`
	Username       string `json:"username"`
	FullName       string `json:"fullName,omitempty"`
	ProfilePicture string `json:"profilePicture,omitempty"`
}

// AsAuthor strips the user down to the fields safe to embed in responses
func (u *User) AsAuthor() Author {
	return Author{
		ID:             u.ID,
		Username:       u.Username,
		FullName:       u.FullName,
		ProfilePicture: u.ProfilePicture,
	}
}

// RegisterRequest defines the request body for local registration
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	FullName string `json:"fullName,omitempty" validate:"omitempty,max=100"`
	Bio      string `json:"bio,omitempty" validate:"omitempty,max=500"`
}

// LoginRequest defines the request body for local login
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse is returned by register and login with a freshly issued token
type AuthResponse struct {
	Token          string `json:"token"`
	Type           string `json:"type"`
	ID             uint   `json:"id"`
	Username       string `json:"username"`
	Email          string `json:"email"`
	FullName       string `json:"fullName,omitempty"`
	Bio            string `json:"bio,omitempty"`
	ProfilePicture string `json:"profilePicture,omitempty"`
}

// JwtCustomClaims are custom claims extending standard jwt.RegisteredClaims
type JwtCustomClaims struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}
