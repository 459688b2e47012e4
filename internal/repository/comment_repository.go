package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/vidshare/backend/internal/errs"
	"github.com/vidshare/backend/internal/models"
)

type CommentRepository struct {
	db DBTX
}

func NewCommentRepository(db DBTX) *CommentRepository {
	return &CommentRepository{db: db}
}

const commentSelect = `
	SELECT cm.id, cm.text, cm.author_id, cm.video_id, cm.created_at, cm.updated_at, u.username
	FROM comments cm
	JOIN users u ON u.id = cm.author_id
`

func scanComment(row rowScanner) (*models.Comment, error) {
	c := &models.Comment{}
	var username string
	if err := row.Scan(&c.ID, &c.Text, &c.AuthorID, &c.VideoID, &c.CreatedAt, &c.UpdatedAt, &username); err != nil {
		return nil, err
	}
	c.Author = &models.UserRef{ID: c.AuthorID, Username: username}
	return c, nil
}

func (r *CommentRepository) Create(ctx context.Context, c *models.Comment) error {
	query := `
		INSERT INTO comments (id, video_id, author_id, text, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query, c.ID, c.VideoID, c.AuthorID, c.Text, c.CreatedAt, c.UpdatedAt).
		Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return mapError(err, "comment")
	}
	return nil
}

func (r *CommentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Comment, error) {
	c, err := scanComment(r.db.QueryRowContext(ctx, commentSelect+` WHERE cm.id = $1`, id))
	if err != nil {
		return nil, mapError(err, "comment")
	}
	return c, nil
}

// ListByVideo returns the comments of a video, newest first
func (r *CommentRepository) ListByVideo(ctx context.Context, videoID uuid.UUID) ([]models.Comment, error) {
	rows, err := r.db.QueryContext(ctx, commentSelect+` WHERE cm.video_id = $1 ORDER BY cm.created_at DESC`, videoID)
	if err != nil {
		return nil, fmt.Errorf("failed to get comments: %w", err)
	}
	defer rows.Close()

	comments := []models.Comment{}
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		comments = append(comments, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to get comments: %w", err)
	}
	return comments, nil
}

func (r *CommentRepository) UpdateText(ctx context.Context, id uuid.UUID, text string) (*models.Comment, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE comments SET text = $1, updated_at = NOW() WHERE id = $2`, text, id)
	if err != nil {
		return nil, mapError(err, "comment")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, errs.NotFound("comment not found")
	}
	return r.GetByID(ctx, id)
}

func (r *CommentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return mapError(err, "comment")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errs.NotFound("comment not found")
	}
	return nil
}

// DeleteByVideos removes every comment attached to one of videoIDs
func (r *CommentRepository) DeleteByVideos(ctx context.Context, videoIDs []uuid.UUID) (int64, error) {
	if len(videoIDs) == 0 {
		return 0, nil
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM comments WHERE video_id = ANY($1::uuid[])`, pq.Array(uuidStrings(videoIDs)))
	if err != nil {
		return 0, mapError(err, "comment")
	}
	n, _ := res.RowsAffected()
	return n, nil
}
