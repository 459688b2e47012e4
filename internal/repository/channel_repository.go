package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/vidshare/backend/internal/errs"
	"github.com/vidshare/backend/internal/models"
)

type ChannelRepository struct {
	db DBTX
}

func NewChannelRepository(db DBTX) *ChannelRepository {
	return &ChannelRepository{db: db}
}

const channelColumns = `
	ch.id, ch.handle, ch.owner_id, ch.name, ch.description, ch.banner_url, ch.banner_public_id,
	ch.created_at, ch.updated_at,
	ARRAY(SELECT s.user_id::text FROM channel_subscriptions s WHERE s.channel_id = ch.id ORDER BY s.created_at),
	ARRAY(SELECT v.id::text FROM videos v WHERE v.channel_id = ch.id ORDER BY v.created_at)
`

func (r *ChannelRepository) Create(ctx context.Context, channel *models.Channel) error {
	query := `
		INSERT INTO channels (id, handle, owner_id, name, description, banner_url, banner_public_id, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		channel.ID,
		channel.Handle,
		channel.OwnerID,
		channel.Name,
		channel.Description,
		channel.BannerURL,
		channel.BannerPublicID,
		channel.CreatedAt,
		channel.UpdatedAt,
	).Scan(&channel.ID, &channel.CreatedAt, &channel.UpdatedAt)
	if err != nil {
		return mapError(err, "channel")
	}

	channel.SetSubscribers([]uuid.UUID{})
	channel.Videos = []uuid.UUID{}
	return nil
}

func (r *ChannelRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Channel, error) {
	return r.getOne(ctx, `SELECT `+channelColumns+` FROM channels ch WHERE ch.id = $1`, id)
}

// GetByOwner returns the channel owned by ownerID
func (r *ChannelRepository) GetByOwner(ctx context.Context, ownerID uuid.UUID) (*models.Channel, error) {
	return r.getOne(ctx, `SELECT `+channelColumns+` FROM channels ch WHERE ch.owner_id = $1`, ownerID)
}

func (r *ChannelRepository) getOne(ctx context.Context, query string, arg any) (*models.Channel, error) {
	ch := &models.Channel{}
	var subscribers, videos []string
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&ch.ID,
		&ch.Handle,
		&ch.OwnerID,
		&ch.Name,
		&ch.Description,
		&ch.BannerURL,
		&ch.BannerPublicID,
		&ch.CreatedAt,
		&ch.UpdatedAt,
		pq.Array(&subscribers),
		pq.Array(&videos),
	)
	if err != nil {
		return nil, mapError(err, "channel")
	}

	subs, err := parseUUIDs(subscribers)
	if err != nil {
		return nil, err
	}
	ch.SetSubscribers(subs)
	if ch.Videos, err = parseUUIDs(videos); err != nil {
		return nil, err
	}
	return ch, nil
}

// Update applies the non-nil fields of upd
func (r *ChannelRepository) Update(ctx context.Context, id uuid.UUID, upd models.ChannelUpdate) (*models.Channel, error) {
	query := `
		UPDATE channels
		SET name = COALESCE($1, name),
			description = COALESCE($2, description),
			banner_url = COALESCE($3, banner_url),
			banner_public_id = COALESCE($4, banner_public_id),
			updated_at = NOW()
		WHERE id = $5
	`
	res, err := r.db.ExecContext(ctx, query, upd.Name, upd.Description, upd.BannerURL, upd.BannerPublicID, id)
	if err != nil {
		return nil, mapError(err, "channel")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, errs.NotFound("channel not found")
	}
	return r.GetByID(ctx, id)
}

func (r *ChannelRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM channels WHERE id = $1`, id)
	if err != nil {
		return mapError(err, "channel")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errs.NotFound("channel not found")
	}
	return nil
}

// IsSubscriber checks if a user subscribes to a channel
func (r *ChannelRepository) IsSubscriber(ctx context.Context, channelID, userID uuid.UUID) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM channel_subscriptions WHERE channel_id = $1 AND user_id = $2)`
	var exists bool
	if err := r.db.QueryRowContext(ctx, query, channelID, userID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check subscriber: %w", err)
	}
	return exists, nil
}

// AddSubscriber creates the subscription row shared by both sides of the relation
func (r *ChannelRepository) AddSubscriber(ctx context.Context, channelID, userID uuid.UUID) error {
	query := `INSERT INTO channel_subscriptions (channel_id, user_id, created_at) VALUES ($1, $2, NOW()) ON CONFLICT (channel_id, user_id) DO NOTHING`
	if _, err := r.db.ExecContext(ctx, query, channelID, userID); err != nil {
		return fmt.Errorf("failed to add subscriber: %w", err)
	}
	return nil
}

// RemoveSubscriber removes a subscription row
func (r *ChannelRepository) RemoveSubscriber(ctx context.Context, channelID, userID uuid.UUID) error {
	query := `DELETE FROM channel_subscriptions WHERE channel_id = $1 AND user_id = $2`
	if _, err := r.db.ExecContext(ctx, query, channelID, userID); err != nil {
		return fmt.Errorf("failed to remove subscriber: %w", err)
	}
	return nil
}
