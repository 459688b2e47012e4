package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/vidshare/backend/internal/access"
	"github.com/vidshare/backend/internal/errs"
	"github.com/vidshare/backend/internal/models"
	"github.com/vidshare/backend/internal/repository"
)

type CommentService struct {
	store repository.Store
}

func NewCommentService(store repository.Store) *CommentService {
	return &CommentService{store: store}
}

func (s *CommentService) Add(ctx context.Context, videoID, authorID uuid.UUID, text string) (*models.Comment, error) {
	text = trimmed(text)
	if text == "" || videoID == uuid.Nil {
		return nil, errs.Validation("Text and videoId are required")
	}
	if _, err := s.store.Videos().GetByID(ctx, videoID); err != nil {
		return nil, err
	}

	now := time.Now()
	comment := &models.Comment{
		ID:        uuid.New(),
		Text:      text,
		AuthorID:  authorID,
		VideoID:   videoID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Comments().Create(ctx, comment); err != nil {
		return nil, err
	}
	return s.store.Comments().GetByID(ctx, comment.ID)
}

// ListByVideo returns the video's comments, newest first.
func (s *CommentService) ListByVideo(ctx context.Context, videoID uuid.UUID) ([]models.Comment, error) {
	if _, err := s.store.Videos().GetByID(ctx, videoID); err != nil {
		return nil, err
	}
	return s.store.Comments().ListByVideo(ctx, videoID)
}

func (s *CommentService) Edit(ctx context.Context, videoID, commentID, requester uuid.UUID, text string) (*models.Comment, error) {
	text = trimmed(text)
	if text == "" {
		return nil, errs.Validation("Text is required")
	}
	comment, err := s.find(ctx, videoID, commentID)
	if err != nil {
		return nil, err
	}
	if err := access.Check(access.Comment{Comment: comment}, requester, access.Author); err != nil {
		return nil, err
	}
	return s.store.Comments().UpdateText(ctx, commentID, text)
}

func (s *CommentService) Delete(ctx context.Context, videoID, commentID, requester uuid.UUID) error {
	comment, err := s.find(ctx, videoID, commentID)
	if err != nil {
		return err
	}
	if err := access.Check(access.Comment{Comment: comment}, requester, access.Author); err != nil {
		return err
	}
	return s.store.Comments().Delete(ctx, commentID)
}

// find loads a comment and checks that it is attached to videoID.
func (s *CommentService) find(ctx context.Context, videoID, commentID uuid.UUID) (*models.Comment, error) {
	comment, err := s.store.Comments().GetByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if videoID != uuid.Nil && comment.VideoID != videoID {
		return nil, errs.NotFound("comment not found")
	}
	return comment, nil
}
