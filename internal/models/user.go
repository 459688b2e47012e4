package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID            uuid.UUID   `json:"id" db:"id"`
	Username      string      `json:"username" db:"username"`
	Email         string      `json:"email" db:"email"`
	PasswordHash  string      `json:"-" db:"password_hash"`
	ProfilePic    *string     `json:"profile_pic,omitempty" db:"profile_pic"`
	Channels      []uuid.UUID `json:"channels"`
	Subscriptions []uuid.UUID `json:"subscriptions"`
	CreatedAt     time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at" db:"updated_at"`
}

// Validate checks basic user fields
func (u *User) Validate() error {
	if u.Username == "" {
		return fmt.Errorf("username is required")
	}
	if len(u.Username) < 3 || len(u.Username) > 50 {
		return fmt.Errorf("username length invalid")
	}
	if strings.ContainsAny(u.Username, " \t\n/") {
		return fmt.Errorf("username contains invalid characters")
	}
	if u.Email == "" {
		return fmt.Errorf("email is required")
	}
	if !strings.Contains(u.Email, "@") {
		return fmt.Errorf("invalid email")
	}
	return nil
}

// Ref returns the public reference embedded in videos and comments.
func (u *User) Ref() *UserRef {
	return &UserRef{ID: u.ID, Username: u.Username}
}

// UserRef is the projection of a user attached to other entities.
type UserRef struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
}

// RegisterRequest is bound from the multipart register form. The optional
// profile image travels as the "profilePic" file part.
type RegisterRequest struct {
	Username string `form:"username" json:"username" binding:"required"`
	Email    string `form:"email" json:"email" binding:"required,email"`
	Password string `form:"password" json:"password" binding:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
	User    User   `json:"user"`
}
