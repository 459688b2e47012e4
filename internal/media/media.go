// Package media stores uploaded images and videos with an external hosting
// service and validates uploads before they are sent.
package media

import (
	"context"
	"path"

	"github.com/gabriel-vasile/mimetype"
	"github.com/vidshare/backend/internal/errs"
)

type Kind string

const (
	KindImage Kind = "image"
	KindVideo Kind = "video"
)

// Folders under the configured root.
const (
	FolderVideos     = "videos"
	FolderThumbnails = "thumbnails"
	FolderProfiles   = "profiles"
	FolderBanners    = "channel-banners"
)

// Asset is the result of a successful upload.
type Asset struct {
	URL      string
	PublicID string
	// Duration in seconds, reported for videos only.
	Duration float64
}

// Store is the media hosting collaborator.
type Store interface {
	Upload(ctx context.Context, data []byte, kind Kind, folder string) (*Asset, error)
	Delete(ctx context.Context, publicID string, kind Kind) error
}

var allowed = map[Kind][]string{
	KindImage: {"image/jpeg", "image/png", "image/jpg"},
	KindVideo: {"video/mp4", "video/quicktime", "video/x-msvideo"},
}

// Validate sniffs data and rejects anything outside the allow-list for kind.
func Validate(data []byte, kind Kind) error {
	if len(data) == 0 {
		return errs.Validation("empty file")
	}
	types, ok := allowed[kind]
	if !ok {
		return errs.Validation("unsupported media kind")
	}
	detected := mimetype.Detect(data)
	for _, t := range types {
		if detected.Is(t) {
			return nil
		}
	}
	return errs.Validation("Invalid file type. Only images and videos are allowed!")
}

// Folder joins a sub-folder onto root.
func Folder(root, sub string) string {
	if root == "" {
		return sub
	}
	return path.Join(root, sub)
}
