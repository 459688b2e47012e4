package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/vidshare/backend/internal/access"
	"github.com/vidshare/backend/internal/errs"
	"github.com/vidshare/backend/internal/media"
	"github.com/vidshare/backend/internal/models"
	"github.com/vidshare/backend/internal/repository"
)

type VideoService struct {
	store repository.Store
	media media.Store
}

func NewVideoService(store repository.Store, mediaStore media.Store) *VideoService {
	return &VideoService{store: store, media: mediaStore}
}

// Upload publishes a video on the uploader's channel. The video file is
// uploaded before the thumbnail; nothing is persisted unless both succeed.
func (s *VideoService) Upload(ctx context.Context, uploaderID uuid.UUID, req models.VideoRequest, videoFile, thumbnail []byte) (*models.Video, error) {
	ch, err := s.store.Channels().GetByOwner(ctx, uploaderID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil, errs.Validation("You need to create a channel before uploading videos")
		}
		return nil, err
	}

	title := trimmed(req.Title)
	if title == "" {
		return nil, errs.Validation("Title is required")
	}
	if len(videoFile) == 0 || len(thumbnail) == 0 {
		return nil, errs.Validation("Video and thumbnail files are required")
	}
	if err := media.Validate(videoFile, media.KindVideo); err != nil {
		return nil, err
	}
	if err := media.Validate(thumbnail, media.KindImage); err != nil {
		return nil, err
	}

	videoAsset, err := s.media.Upload(ctx, videoFile, media.KindVideo, media.FolderVideos)
	if err != nil {
		return nil, asUploadFailed(err)
	}
	thumbAsset, err := s.media.Upload(ctx, thumbnail, media.KindImage, media.FolderThumbnails)
	if err != nil {
		discardMedia(ctx, s.media, "video upload aborted", mediaRef{videoAsset.PublicID, media.KindVideo})
		return nil, asUploadFailed(err)
	}

	now := time.Now()
	video := &models.Video{
		ID:                uuid.New(),
		Title:             title,
		Description:       trimmed(req.Description),
		Category:          trimmed(req.Category),
		VideoURL:          videoAsset.URL,
		VideoPublicID:     videoAsset.PublicID,
		ThumbnailURL:      thumbAsset.URL,
		ThumbnailPublicID: thumbAsset.PublicID,
		UploaderID:        uploaderID,
		ChannelID:         ch.ID,
		Duration:          floorSeconds(videoAsset.Duration),
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := s.store.Videos().Create(ctx, video); err != nil {
		discardMedia(ctx, s.media, "video upload aborted",
			mediaRef{videoAsset.PublicID, media.KindVideo},
			mediaRef{thumbAsset.PublicID, media.KindImage},
		)
		return nil, err
	}

	slog.Info("video uploaded", "video_id", video.ID, "channel_id", ch.ID, "duration", video.Duration)
	return s.store.Videos().GetByID(ctx, video.ID)
}

// Update applies the supplied metadata and replaces media files that were
// given. Each replacement is uploaded before the old asset is removed.
func (s *VideoService) Update(ctx context.Context, id, requester uuid.UUID, req models.VideoRequest, videoFile, thumbnail []byte) (*models.Video, error) {
	video, err := s.store.Videos().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := access.Check(access.Video{Video: video}, requester, access.Uploader); err != nil {
		return nil, err
	}

	var upd models.VideoUpdate
	if v := trimmed(req.Title); v != "" {
		upd.Title = &v
	}
	if v := trimmed(req.Description); v != "" {
		upd.Description = &v
	}
	if v := trimmed(req.Category); v != "" {
		upd.Category = &v
	}

	if len(videoFile) > 0 {
		if err := media.Validate(videoFile, media.KindVideo); err != nil {
			return nil, err
		}
	}
	if len(thumbnail) > 0 {
		if err := media.Validate(thumbnail, media.KindImage); err != nil {
			return nil, err
		}
	}

	var fresh, stale []mediaRef
	if len(videoFile) > 0 {
		asset, err := s.media.Upload(ctx, videoFile, media.KindVideo, media.FolderVideos)
		if err != nil {
			return nil, asUploadFailed(err)
		}
		fresh = append(fresh, mediaRef{asset.PublicID, media.KindVideo})
		stale = append(stale, mediaRef{video.VideoPublicID, media.KindVideo})
		duration := floorSeconds(asset.Duration)
		upd.VideoURL, upd.VideoPublicID, upd.Duration = &asset.URL, &asset.PublicID, &duration
	}
	if len(thumbnail) > 0 {
		asset, err := s.media.Upload(ctx, thumbnail, media.KindImage, media.FolderThumbnails)
		if err != nil {
			discardMedia(ctx, s.media, "video update aborted", fresh...)
			return nil, asUploadFailed(err)
		}
		fresh = append(fresh, mediaRef{asset.PublicID, media.KindImage})
		stale = append(stale, mediaRef{video.ThumbnailPublicID, media.KindImage})
		upd.ThumbnailURL, upd.ThumbnailPublicID = &asset.URL, &asset.PublicID
	}
	discardMedia(ctx, s.media, "video media replaced", stale...)

	updated, err := s.store.Videos().Update(ctx, id, upd)
	if err != nil {
		discardMedia(ctx, s.media, "video update aborted", fresh...)
		return nil, err
	}
	return updated, nil
}

// Delete removes the video and its comments, then its hosted media.
func (s *VideoService) Delete(ctx context.Context, id, requester uuid.UUID) error {
	video, err := s.store.Videos().GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := access.Check(access.Video{Video: video}, requester, access.Uploader); err != nil {
		return err
	}

	var comments int64
	err = s.store.InTx(ctx, func(tx repository.Store) error {
		var err error
		if comments, err = tx.Comments().DeleteByVideos(ctx, []uuid.UUID{id}); err != nil {
			return err
		}
		return tx.Videos().Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	failed := discardMedia(ctx, s.media, "video deleted",
		mediaRef{video.VideoPublicID, media.KindVideo},
		mediaRef{video.ThumbnailPublicID, media.KindImage},
	)
	slog.Info("video deleted", "video_id", id, "comments", comments, "media_failures", failed)
	return nil
}

func (s *VideoService) Like(ctx context.Context, id, userID uuid.UUID) (*models.Video, error) {
	return s.react(ctx, id, userID, models.ReactionLike)
}

func (s *VideoService) Dislike(ctx context.Context, id, userID uuid.UUID) (*models.Video, error) {
	return s.react(ctx, id, userID, models.ReactionDislike)
}

// react toggles r for userID: repeating a reaction clears it, and switching
// replaces the opposite one.
func (s *VideoService) react(ctx context.Context, id, userID uuid.UUID, r models.Reaction) (*models.Video, error) {
	var out *models.Video
	err := s.store.InTx(ctx, func(tx repository.Store) error {
		videos := tx.Videos()
		video, err := videos.GetByID(ctx, id)
		if err != nil {
			return err
		}
		next := video.ReactionOf(userID).Toggle(r)
		if err := videos.SetReaction(ctx, id, userID, next); err != nil {
			return err
		}
		out, err = videos.GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// IncrementViews counts one view. It needs no session.
func (s *VideoService) IncrementViews(ctx context.Context, id uuid.UUID) (*models.Video, error) {
	return s.store.Videos().IncrementViews(ctx, id)
}

// Search matches query case-insensitively against titles and descriptions.
func (s *VideoService) Search(ctx context.Context, query string) ([]models.Video, error) {
	q := trimmed(query)
	if q == "" {
		return nil, errs.Validation("Search query is required")
	}
	return s.store.Videos().List(ctx, models.VideoFilter{Query: q})
}

// List returns videos newest first, optionally only those of one uploader.
func (s *VideoService) List(ctx context.Context, uploaderID uuid.UUID) ([]models.Video, error) {
	return s.store.Videos().List(ctx, models.VideoFilter{UploaderID: uploaderID})
}

// Get returns the video together with its comments.
func (s *VideoService) Get(ctx context.Context, id uuid.UUID) (*models.VideoDetail, error) {
	video, err := s.store.Videos().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	comments, err := s.store.Comments().ListByVideo(ctx, id)
	if err != nil {
		return nil, err
	}
	return &models.VideoDetail{Video: video, CommentItems: comments}, nil
}
