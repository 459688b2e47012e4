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

type ChannelService struct {
	store repository.Store
	media media.Store
}

func NewChannelService(store repository.Store, mediaStore media.Store) *ChannelService {
	return &ChannelService{store: store, media: mediaStore}
}

// Create opens the owner's channel. A user owns at most one.
func (s *ChannelService) Create(ctx context.Context, ownerID uuid.UUID, req models.ChannelRequest, banner []byte) (*models.Channel, error) {
	name, description := trimmed(req.Name), trimmed(req.Description)
	if name == "" || description == "" {
		return nil, errs.Validation("Channel name and description are required")
	}

	_, err := s.store.Channels().GetByOwner(ctx, ownerID)
	switch {
	case err == nil:
		return nil, errs.Conflict("You already have a channel")
	case !errors.Is(err, errs.ErrNotFound):
		return nil, err
	}

	now := time.Now()
	ch := &models.Channel{
		ID:          uuid.New(),
		Handle:      newHandle(),
		OwnerID:     ownerID,
		Name:        name,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	var uploaded *media.Asset
	if len(banner) > 0 {
		if err := media.Validate(banner, media.KindImage); err != nil {
			return nil, err
		}
		uploaded, err = s.media.Upload(ctx, banner, media.KindImage, media.FolderBanners)
		if err != nil {
			return nil, asUploadFailed(err)
		}
		ch.BannerURL = &uploaded.URL
		ch.BannerPublicID = &uploaded.PublicID
	}

	if err := s.store.Channels().Create(ctx, ch); err != nil {
		if uploaded != nil {
			discardMedia(ctx, s.media, "channel create aborted", mediaRef{uploaded.PublicID, media.KindImage})
		}
		return nil, err
	}

	slog.Info("channel created", "channel_id", ch.ID, "owner_id", ownerID)
	return ch, nil
}

// Get returns the channel with its videos, newest first.
func (s *ChannelService) Get(ctx context.Context, id uuid.UUID) (*models.ChannelPage, error) {
	ch, err := s.store.Channels().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	videos, err := s.store.Videos().List(ctx, models.VideoFilter{ChannelID: id})
	if err != nil {
		return nil, err
	}
	return &models.ChannelPage{Channel: ch, Videos: videos}, nil
}

// Update changes the fields that were supplied. A new banner is uploaded
// first; the previous one is then removed on a best-effort basis.
func (s *ChannelService) Update(ctx context.Context, id, requester uuid.UUID, req models.ChannelRequest, banner []byte) (*models.Channel, error) {
	ch, err := s.store.Channels().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := access.Check(access.Channel{Channel: ch}, requester, access.Owner); err != nil {
		return nil, err
	}

	var upd models.ChannelUpdate
	if name := trimmed(req.Name); name != "" {
		upd.Name = &name
	}
	if description := trimmed(req.Description); description != "" {
		upd.Description = &description
	}

	var uploaded *media.Asset
	if len(banner) > 0 {
		if err := media.Validate(banner, media.KindImage); err != nil {
			return nil, err
		}
		uploaded, err = s.media.Upload(ctx, banner, media.KindImage, media.FolderBanners)
		if err != nil {
			return nil, asUploadFailed(err)
		}
		if ch.BannerPublicID != nil {
			discardMedia(ctx, s.media, "banner replaced", mediaRef{*ch.BannerPublicID, media.KindImage})
		}
		upd.BannerURL = &uploaded.URL
		upd.BannerPublicID = &uploaded.PublicID
	}

	updated, err := s.store.Channels().Update(ctx, id, upd)
	if err != nil {
		if uploaded != nil {
			discardMedia(ctx, s.media, "channel update aborted", mediaRef{uploaded.PublicID, media.KindImage})
		}
		return nil, err
	}
	return updated, nil
}

// Delete removes the channel, its videos and every comment on them in one
// transaction, then removes the hosted media.
func (s *ChannelService) Delete(ctx context.Context, id, requester uuid.UUID) error {
	ch, err := s.store.Channels().GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := access.Check(access.Channel{Channel: ch}, requester, access.Owner); err != nil {
		return err
	}

	videos, err := s.store.Videos().List(ctx, models.VideoFilter{ChannelID: id})
	if err != nil {
		return err
	}
	videoIDs := make([]uuid.UUID, 0, len(videos))
	refs := make([]mediaRef, 0, 2*len(videos)+1)
	for _, v := range videos {
		videoIDs = append(videoIDs, v.ID)
		refs = append(refs,
			mediaRef{v.VideoPublicID, media.KindVideo},
			mediaRef{v.ThumbnailPublicID, media.KindImage},
		)
	}
	if ch.BannerPublicID != nil {
		refs = append(refs, mediaRef{*ch.BannerPublicID, media.KindImage})
	}

	var comments, deletedVideos int64
	err = s.store.InTx(ctx, func(tx repository.Store) error {
		var err error
		if comments, err = tx.Comments().DeleteByVideos(ctx, videoIDs); err != nil {
			return err
		}
		if deletedVideos, err = tx.Videos().DeleteByChannel(ctx, id); err != nil {
			return err
		}
		return tx.Channels().Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	failed := discardMedia(ctx, s.media, "channel deleted", refs...)
	slog.Info("channel deleted",
		"channel_id", id,
		"videos", deletedVideos,
		"comments", comments,
		"media_failures", failed,
	)
	return nil
}

// ToggleSubscription subscribes the requester, or unsubscribes them when
// they already are.
func (s *ChannelService) ToggleSubscription(ctx context.Context, id, requester uuid.UUID) (*models.Channel, error) {
	var out *models.Channel
	err := s.store.InTx(ctx, func(tx repository.Store) error {
		channels := tx.Channels()
		if _, err := channels.GetByID(ctx, id); err != nil {
			return err
		}
		subscribed, err := channels.IsSubscriber(ctx, id, requester)
		if err != nil {
			return err
		}
		if subscribed {
			err = channels.RemoveSubscriber(ctx, id, requester)
		} else {
			err = channels.AddSubscriber(ctx, id, requester)
		}
		if err != nil {
			return err
		}
		out, err = channels.GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
