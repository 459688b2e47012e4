package models

import (
	"time"

	"github.com/google/uuid"
)

// Reaction is a user's engagement with a video. A user holds at most one.
type Reaction int8

const (
	ReactionNone    Reaction = 0
	ReactionLike    Reaction = 1
	ReactionDislike Reaction = -1
)

// Toggle returns the reaction a user ends up with after requesting next while
// holding r: requesting the held reaction clears it, anything else replaces it.
func (r Reaction) Toggle(next Reaction) Reaction {
	if r == next {
		return ReactionNone
	}
	return next
}

type Video struct {
	ID                uuid.UUID   `json:"id" db:"id"`
	Title             string      `json:"title" db:"title"`
	Description       string      `json:"description" db:"description"`
	Category          string      `json:"category" db:"category"`
	VideoURL          string      `json:"video_url" db:"video_url"`
	VideoPublicID     string      `json:"-" db:"video_public_id"`
	ThumbnailURL      string      `json:"thumbnail_url" db:"thumbnail_url"`
	ThumbnailPublicID string      `json:"-" db:"thumbnail_public_id"`
	UploaderID        uuid.UUID   `json:"uploader_id" db:"uploader_id"`
	ChannelID         uuid.UUID   `json:"channel_id" db:"channel_id"`
	Likes             []uuid.UUID `json:"likes"`
	Dislikes          []uuid.UUID `json:"dislikes"`
	Comments          []uuid.UUID `json:"comments"`
	Duration          int         `json:"duration" db:"duration"`
	Views             int64       `json:"views" db:"views"`
	CreatedAt         time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time   `json:"updated_at" db:"updated_at"`

	Uploader *UserRef    `json:"uploader,omitempty"`
	Channel  *ChannelRef `json:"channel,omitempty"`
}

// ReactionOf returns the reaction userID currently holds on the video.
func (v *Video) ReactionOf(userID uuid.UUID) Reaction {
	for _, id := range v.Likes {
		if id == userID {
			return ReactionLike
		}
	}
	for _, id := range v.Dislikes {
		if id == userID {
			return ReactionDislike
		}
	}
	return ReactionNone
}

// SetReaction moves userID into the set matching r, removing it from the other.
func (v *Video) SetReaction(userID uuid.UUID, r Reaction) {
	v.Likes = without(v.Likes, userID)
	v.Dislikes = without(v.Dislikes, userID)
	switch r {
	case ReactionLike:
		v.Likes = append(v.Likes, userID)
	case ReactionDislike:
		v.Dislikes = append(v.Dislikes, userID)
	}
}

func without(ids []uuid.UUID, id uuid.UUID) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(ids))
	for _, x := range ids {
		if x != id {
			out = append(out, x)
		}
	}
	return out
}

// VideoUpdate holds the optional fields of a video update.
type VideoUpdate struct {
	Title             *string
	Description       *string
	Category          *string
	VideoURL          *string
	VideoPublicID     *string
	ThumbnailURL      *string
	ThumbnailPublicID *string
	Duration          *int
}

// VideoFilter narrows a listing. Zero values mean no constraint.
type VideoFilter struct {
	UploaderID uuid.UUID
	ChannelID  uuid.UUID
	Query      string
}

type VideoRequest struct {
	Title       string `form:"title" json:"title"`
	Description string `form:"description" json:"description"`
	Category    string `form:"category" json:"category"`
}

// VideoDetail is a video with its comments, newest first.
type VideoDetail struct {
	Video        *Video    `json:"video"`
	CommentItems []Comment `json:"comment_items"`
}
