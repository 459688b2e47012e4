// Package access decides whether a requester may mutate an entity.
//
// Every mutating operation on a channel, video or comment goes through Check
// so that the ownership rules live in one place.
package access

import (
	"github.com/google/uuid"
	"github.com/vidshare/backend/internal/errs"
	"github.com/vidshare/backend/internal/models"
)

// Relation is the link a requester must have with a resource.
type Relation string

const (
	Owner    Relation = "owner"
	Uploader Relation = "uploader"
	Author   Relation = "author"
)

// Resource is anything that can name the principal holding a relation on it.
type Resource interface {
	// Principal returns the user holding rel, and false when the resource does
	// not support that relation.
	Principal(rel Relation) (uuid.UUID, bool)
}

// Check returns nil when requester holds rel on res and a Forbidden error otherwise.
func Check(res Resource, requester uuid.UUID, rel Relation) error {
	if res == nil || requester == uuid.Nil {
		return errs.Forbidden("access denied")
	}
	principal, ok := res.Principal(rel)
	if !ok || principal != requester {
		return errs.Forbidden(deniedMessage(rel))
	}
	return nil
}

func deniedMessage(rel Relation) string {
	switch rel {
	case Owner:
		return "only the channel owner can do this"
	case Uploader:
		return "only the uploader can do this"
	case Author:
		return "only the comment author can do this"
	default:
		return "access denied"
	}
}

// Channel adapts a channel to Resource.
type Channel struct{ *models.Channel }

func (c Channel) Principal(rel Relation) (uuid.UUID, bool) {
	if rel != Owner {
		return uuid.Nil, false
	}
	return c.OwnerID, true
}

// Video adapts a video to Resource.
type Video struct{ *models.Video }

func (v Video) Principal(rel Relation) (uuid.UUID, bool) {
	if rel != Uploader {
		return uuid.Nil, false
	}
	return v.UploaderID, true
}

// Comment adapts a comment to Resource.
type Comment struct{ *models.Comment }

func (c Comment) Principal(rel Relation) (uuid.UUID, bool) {
	if rel != Author {
		return uuid.Nil, false
	}
	return c.AuthorID, true
}
