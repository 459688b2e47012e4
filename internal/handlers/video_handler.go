package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/vidshare/backend/internal/middleware"
	"github.com/vidshare/backend/internal/models"
	"github.com/vidshare/backend/internal/service"
)

type VideoHandler struct {
	videos    *service.VideoService
	maxUpload int64
}

func NewVideoHandler(videos *service.VideoService, maxUpload int64) *VideoHandler {
	return &VideoHandler{videos: videos, maxUpload: maxUpload}
}

// GetVideos lists every video, newest first
func (h *VideoHandler) GetVideos(c *gin.Context) {
	videos, err := h.videos.List(c.Request.Context(), uuid.Nil)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, videos)
}

// GetMyVideos lists the caller's uploads
func (h *VideoHandler) GetMyVideos(c *gin.Context) {
	userID, _ := middleware.UserID(c)
	videos, err := h.videos.List(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, videos)
}

func (h *VideoHandler) Search(c *gin.Context) {
	videos, err := h.videos.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, videos)
}

func (h *VideoHandler) GetVideo(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	detail, err := h.videos.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// Upload accepts the "video" and "thumbnail" files plus metadata fields
func (h *VideoHandler) Upload(c *gin.Context) {
	userID, _ := middleware.UserID(c)

	req, videoFile, thumbnail, ok := h.bindUpload(c)
	if !ok {
		return
	}

	video, err := h.videos.Upload(c.Request.Context(), userID, req, videoFile, thumbnail)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Video uploaded successfully",
		"video":   video,
	})
}

func (h *VideoHandler) UpdateVideo(c *gin.Context) {
	userID, _ := middleware.UserID(c)
	id, err := paramID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	req, videoFile, thumbnail, ok := h.bindUpload(c)
	if !ok {
		return
	}

	video, err := h.videos.Update(c.Request.Context(), id, userID, req, videoFile, thumbnail)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, video)
}

func (h *VideoHandler) bindUpload(c *gin.Context) (req models.VideoRequest, videoFile, thumbnail []byte, ok bool) {
	if err := c.ShouldBind(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return req, nil, nil, false
	}
	var err error
	if videoFile, err = formFile(c, "video", h.maxUpload); err != nil {
		respondError(c, err)
		return req, nil, nil, false
	}
	if thumbnail, err = formFile(c, "thumbnail", h.maxUpload); err != nil {
		respondError(c, err)
		return req, nil, nil, false
	}
	return req, videoFile, thumbnail, true
}

func (h *VideoHandler) DeleteVideo(c *gin.Context) {
	userID, _ := middleware.UserID(c)
	id, err := paramID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.videos.Delete(c.Request.Context(), id, userID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Video deleted successfully"})
}

func (h *VideoHandler) Like(c *gin.Context) {
	h.react(c, h.videos.Like)
}

func (h *VideoHandler) Dislike(c *gin.Context) {
	h.react(c, h.videos.Dislike)
}

func (h *VideoHandler) react(c *gin.Context, toggle func(ctx context.Context, id, userID uuid.UUID) (*models.Video, error)) {
	userID, _ := middleware.UserID(c)
	id, err := paramID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	video, err := toggle(c.Request.Context(), id, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, video)
}

// IncreaseViews counts a view; no session required
func (h *VideoHandler) IncreaseViews(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	video, err := h.videos.IncrementViews(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, video)
}
