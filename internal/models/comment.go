package models

import (
	"time"

	"github.com/google/uuid"
)

type Comment struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Text      string    `json:"text" db:"text"`
	AuthorID  uuid.UUID `json:"author_id" db:"author_id"`
	VideoID   uuid.UUID `json:"video_id" db:"video_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`

	Author *UserRef `json:"author,omitempty"`
}

type CommentRequest struct {
	Text string `json:"text"`
}
