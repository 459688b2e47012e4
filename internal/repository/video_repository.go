package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/vidshare/backend/internal/errs"
	"github.com/vidshare/backend/internal/models"
)

type VideoRepository struct {
	db DBTX
}

func NewVideoRepository(db DBTX) *VideoRepository {
	return &VideoRepository{db: db}
}

const videoSelect = `
	SELECT v.id, v.title, v.description, v.category, v.video_url, v.video_public_id,
		v.thumbnail_url, v.thumbnail_public_id, v.uploader_id, v.channel_id,
		v.duration, v.views, v.created_at, v.updated_at,
		u.username, ch.name, ch.banner_url,
		ARRAY(SELECT r.user_id::text FROM video_reactions r WHERE r.video_id = v.id AND r.value = 1 ORDER BY r.created_at),
		ARRAY(SELECT r.user_id::text FROM video_reactions r WHERE r.video_id = v.id AND r.value = -1 ORDER BY r.created_at),
		ARRAY(SELECT cm.id::text FROM comments cm WHERE cm.video_id = v.id ORDER BY cm.created_at DESC)
	FROM videos v
	JOIN users u ON u.id = v.uploader_id
	JOIN channels ch ON ch.id = v.channel_id
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanVideo(row rowScanner) (*models.Video, error) {
	v := &models.Video{}
	var (
		username, channelName string
		bannerURL             *string
		likes, dislikes, cmts []string
	)
	err := row.Scan(
		&v.ID,
		&v.Title,
		&v.Description,
		&v.Category,
		&v.VideoURL,
		&v.VideoPublicID,
		&v.ThumbnailURL,
		&v.ThumbnailPublicID,
		&v.UploaderID,
		&v.ChannelID,
		&v.Duration,
		&v.Views,
		&v.CreatedAt,
		&v.UpdatedAt,
		&username,
		&channelName,
		&bannerURL,
		pq.Array(&likes),
		pq.Array(&dislikes),
		pq.Array(&cmts),
	)
	if err != nil {
		return nil, err
	}

	if v.Likes, err = parseUUIDs(likes); err != nil {
		return nil, err
	}
	if v.Dislikes, err = parseUUIDs(dislikes); err != nil {
		return nil, err
	}
	if v.Comments, err = parseUUIDs(cmts); err != nil {
		return nil, err
	}
	v.Uploader = &models.UserRef{ID: v.UploaderID, Username: username}
	v.Channel = &models.ChannelRef{ID: v.ChannelID, Name: channelName, BannerURL: bannerURL}
	return v, nil
}

func (r *VideoRepository) Create(ctx context.Context, v *models.Video) error {
	query := `
		INSERT INTO videos (id, channel_id, uploader_id, title, description, category,
			video_url, video_public_id, thumbnail_url, thumbnail_public_id, duration, views, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		v.ID,
		v.ChannelID,
		v.UploaderID,
		v.Title,
		v.Description,
		v.Category,
		v.VideoURL,
		v.VideoPublicID,
		v.ThumbnailURL,
		v.ThumbnailPublicID,
		v.Duration,
		v.Views,
		v.CreatedAt,
		v.UpdatedAt,
	).Scan(&v.ID, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		return mapError(err, "video")
	}

	v.Likes = []uuid.UUID{}
	v.Dislikes = []uuid.UUID{}
	v.Comments = []uuid.UUID{}
	return nil
}

func (r *VideoRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Video, error) {
	v, err := scanVideo(r.db.QueryRowContext(ctx, videoSelect+` WHERE v.id = $1`, id))
	if err != nil {
		return nil, mapError(err, "video")
	}
	return v, nil
}

// List returns videos matching filter, newest first
func (r *VideoRepository) List(ctx context.Context, filter models.VideoFilter) ([]models.Video, error) {
	var (
		where []string
		args  []any
	)
	if filter.UploaderID != uuid.Nil {
		args = append(args, filter.UploaderID)
		where = append(where, fmt.Sprintf("v.uploader_id = $%d", len(args)))
	}
	if filter.ChannelID != uuid.Nil {
		args = append(args, filter.ChannelID)
		where = append(where, fmt.Sprintf("v.channel_id = $%d", len(args)))
	}
	if q := strings.TrimSpace(filter.Query); q != "" {
		args = append(args, likePattern(q))
		where = append(where, fmt.Sprintf("(v.title ILIKE $%d OR v.description ILIKE $%d)", len(args), len(args)))
	}

	query := videoSelect
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY v.created_at DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list videos: %w", err)
	}
	defer rows.Close()

	videos := []models.Video{}
	for rows.Next() {
		v, err := scanVideo(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan video: %w", err)
		}
		videos = append(videos, *v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list videos: %w", err)
	}
	return videos, nil
}

// Update applies the non-nil fields of upd
func (r *VideoRepository) Update(ctx context.Context, id uuid.UUID, upd models.VideoUpdate) (*models.Video, error) {
	query := `
		UPDATE videos
		SET title = COALESCE($1, title),
			description = COALESCE($2, description),
			category = COALESCE($3, category),
			video_url = COALESCE($4, video_url),
			video_public_id = COALESCE($5, video_public_id),
			thumbnail_url = COALESCE($6, thumbnail_url),
			thumbnail_public_id = COALESCE($7, thumbnail_public_id),
			duration = COALESCE($8, duration),
			updated_at = NOW()
		WHERE id = $9
	`
	res, err := r.db.ExecContext(ctx, query,
		upd.Title,
		upd.Description,
		upd.Category,
		upd.VideoURL,
		upd.VideoPublicID,
		upd.ThumbnailURL,
		upd.ThumbnailPublicID,
		upd.Duration,
		id,
	)
	if err != nil {
		return nil, mapError(err, "video")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, errs.NotFound("video not found")
	}
	return r.GetByID(ctx, id)
}

// IncrementViews adds one view atomically
func (r *VideoRepository) IncrementViews(ctx context.Context, id uuid.UUID) (*models.Video, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE videos SET views = views + 1 WHERE id = $1`, id)
	if err != nil {
		return nil, mapError(err, "video")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, errs.NotFound("video not found")
	}
	return r.GetByID(ctx, id)
}

// SetReaction stores the user's reaction; ReactionNone removes it
func (r *VideoRepository) SetReaction(ctx context.Context, videoID, userID uuid.UUID, reaction models.Reaction) error {
	if reaction == models.ReactionNone {
		_, err := r.db.ExecContext(ctx, `DELETE FROM video_reactions WHERE video_id = $1 AND user_id = $2`, videoID, userID)
		if err != nil {
			return fmt.Errorf("failed to clear reaction: %w", err)
		}
		return nil
	}

	query := `
		INSERT INTO video_reactions (video_id, user_id, value, created_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (video_id, user_id) DO UPDATE SET value = EXCLUDED.value, created_at = NOW()
	`
	if _, err := r.db.ExecContext(ctx, query, videoID, userID, int16(reaction)); err != nil {
		return fmt.Errorf("failed to set reaction: %w", err)
	}
	return nil
}

func (r *VideoRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM videos WHERE id = $1`, id)
	if err != nil {
		return mapError(err, "video")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errs.NotFound("video not found")
	}
	return nil
}

// DeleteByChannel removes every video of a channel and returns how many went
func (r *VideoRepository) DeleteByChannel(ctx context.Context, channelID uuid.UUID) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM videos WHERE channel_id = $1`, channelID)
	if err != nil {
		return 0, mapError(err, "video")
	}
	n, _ := res.RowsAffected()
	return n, nil
}
