package models

import (
	"time"

	"github.com/google/uuid"
)

type Channel struct {
	ID             uuid.UUID   `json:"id" db:"id"`
	Handle         string      `json:"handle" db:"handle"`
	OwnerID        uuid.UUID   `json:"owner_id" db:"owner_id"`
	Name           string      `json:"channel_name" db:"name"`
	Description    string      `json:"description" db:"description"`
	BannerURL      *string     `json:"channel_banner,omitempty" db:"banner_url"`
	BannerPublicID *string     `json:"-" db:"banner_public_id"`
	Subscribes     int         `json:"subscribes"`
	SubscriberList []uuid.UUID `json:"subscriber_list"`
	Videos         []uuid.UUID `json:"videos"`
	CreatedAt      time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at" db:"updated_at"`
}

// SetSubscribers replaces the subscriber set and recomputes the counter from it.
func (c *Channel) SetSubscribers(ids []uuid.UUID) {
	c.SubscriberList = ids
	c.Subscribes = len(ids)
}

// HasSubscriber reports whether userID is in the subscriber set.
func (c *Channel) HasSubscriber(userID uuid.UUID) bool {
	for _, id := range c.SubscriberList {
		if id == userID {
			return true
		}
	}
	return false
}

// Ref returns the projection embedded in video listings.
func (c *Channel) Ref() *ChannelRef {
	return &ChannelRef{ID: c.ID, Name: c.Name, BannerURL: c.BannerURL}
}

// ChannelRef is the projection of a channel attached to videos.
type ChannelRef struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"channel_name"`
	BannerURL *string   `json:"channel_banner,omitempty"`
}

// ChannelUpdate holds the optional fields of a channel update. Nil leaves the
// stored value unchanged.
type ChannelUpdate struct {
	Name           *string
	Description    *string
	BannerURL      *string
	BannerPublicID *string
}

type ChannelRequest struct {
	Name        string `form:"channel_name" json:"channel_name"`
	Description string `form:"description" json:"description"`
}

// ChannelPage is the public view of a channel together with its videos.
type ChannelPage struct {
	Channel *Channel `json:"channel"`
	Videos  []Video  `json:"videos"`
}
